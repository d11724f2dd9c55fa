package http

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/greeter/pkg/domain/types"
)

const (
	signatureHeader = "X-Hub-Signature-256"
	signaturePrefix = "sha256="
)

// SignatureVerifier checks X-Hub-Signature-256 against a shared secret
type SignatureVerifier struct {
	secret []byte
}

// NewSignatureVerifier creates a verifier. An empty secret is a configuration
// error, not a per-request failure.
func NewSignatureVerifier(secret string) (*SignatureVerifier, error) {
	if secret == "" {
		return nil, goerr.New("webhook secret is not configured", goerr.T(types.ErrTagConfig))
	}
	return &SignatureVerifier{secret: []byte(secret)}, nil
}

// Verify reports whether signature is the HMAC-SHA256 of payload. It returns
// false for a missing or malformed header as well as a mismatched digest.
func (v *SignatureVerifier) Verify(payload []byte, signature string) bool {
	return VerifySignature(payload, signature, v.secret)
}

// VerifySignature validates a GitHub webhook signature of the form
// "sha256=<lowercase hex>". The comparison is constant time over the whole
// header value, so any change to it, including hex case, fails.
func VerifySignature(payload []byte, signature string, secret []byte) bool {
	if len(secret) == 0 {
		return false
	}
	if !strings.HasPrefix(signature, signaturePrefix) {
		return false
	}

	mac := hmac.New(sha256.New, secret)
	mac.Write(payload)
	expected := signaturePrefix + hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(signature), []byte(expected))
}
