package http_test

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	controller "github.com/m-mizutani/greeter/pkg/controller/http"
	"github.com/m-mizutani/greeter/pkg/domain/types"
)

// generateSignature generates HMAC-SHA256 signature for testing
func generateSignature(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	secret := []byte("mysecret")
	payload := []byte(`{"test": "data"}`)

	tests := []struct {
		name      string
		payload   []byte
		signature string
		secret    []byte
		want      bool
	}{
		{
			name:      "valid signature",
			payload:   payload,
			signature: generateSignature("mysecret", payload),
			secret:    secret,
			want:      true,
		},
		{
			name:      "invalid signature",
			payload:   payload,
			signature: "sha256=invalid",
			secret:    secret,
			want:      false,
		},
		{
			name:      "missing header",
			payload:   payload,
			signature: "",
			secret:    secret,
			want:      false,
		},
		{
			name:      "missing sha256 prefix",
			payload:   payload,
			signature: generateSignature("mysecret", payload)[len("sha256="):],
			secret:    secret,
			want:      false,
		},
		{
			name:      "sha1 signature",
			payload:   payload,
			signature: "sha1=0123456789abcdef0123456789abcdef01234567",
			secret:    secret,
			want:      false,
		},
		{
			name:      "wrong secret",
			payload:   payload,
			signature: generateSignature("other", payload),
			secret:    secret,
			want:      false,
		},
		{
			name:      "empty secret rejects signature",
			payload:   payload,
			signature: generateSignature("", payload),
			secret:    nil,
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.V(t, controller.VerifySignature(tt.payload, tt.signature, tt.secret)).Equal(tt.want)
		})
	}
}

func TestVerifySignature_SingleBitMutation(t *testing.T) {
	const secret = "It's a Secret to Everybody"
	payloads := [][]byte{
		[]byte("Hello, World!"),
		[]byte(`{"action":"opened","number":1}`),
		{0x00},
	}

	for _, payload := range payloads {
		signature := generateSignature(secret, payload)
		gt.True(t, controller.VerifySignature(payload, signature, []byte(secret)))

		for i := range payload {
			for bit := 0; bit < 8; bit++ {
				mutated := append([]byte(nil), payload...)
				mutated[i] ^= 1 << bit
				if controller.VerifySignature(mutated, signature, []byte(secret)) {
					t.Fatalf("mutated payload byte %d bit %d verified", i, bit)
				}
			}
		}

		sig := []byte(signature)
		for i := range sig {
			for bit := 0; bit < 8; bit++ {
				mutated := append([]byte(nil), sig...)
				mutated[i] ^= 1 << bit
				if controller.VerifySignature(payload, string(mutated), []byte(secret)) {
					t.Fatalf("mutated signature byte %d bit %d verified", i, bit)
				}
			}
		}
	}
}

func TestVerifySignature_KnownVector(t *testing.T) {
	// Example from GitHub's "Validating webhook deliveries" documentation
	gt.True(t, controller.VerifySignature(
		[]byte("Hello, World!"),
		"sha256=757107ea0eb2509fc211221cce984b8a37570b6d7586c22c46f4379c8b043e17",
		[]byte("It's a Secret to Everybody"),
	))
}

func TestNewSignatureVerifier(t *testing.T) {
	_, err := controller.NewSignatureVerifier("")
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, types.ErrTagConfig))

	v, err := controller.NewSignatureVerifier("secret")
	gt.NoError(t, err)
	payload := []byte(`{}`)
	gt.True(t, v.Verify(payload, generateSignature("secret", payload)))
	gt.False(t, v.Verify(payload, ""))
}
