package cli_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/greeter/pkg/cli"
	"github.com/m-mizutani/greeter/pkg/domain/types"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ID", "PRIVATE_KEY", "WEBHOOK_SECRET", "ENTERPRISE_HOSTNAME",
		"PORT", "NODE_ENV", "WEBHOOK_PATH", "ASYNC_DISPATCH", "MESSAGE_PATH",
		"LOG_LEVEL", "LOG_FORMAT", "SENTRY_DSN", "SENTRY_ENV",
	} {
		// Setenv restores the original value after the test
		t.Setenv(key, "")
		gt.NoError(t, os.Unsetenv(key))
	}
}

func TestRun_MissingConfiguration(t *testing.T) {
	clearEnv(t)

	err := cli.Run(context.Background(), []string{"greeter", "serve"})
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, types.ErrTagConfig))
}

func TestRun_InvalidLogLevel(t *testing.T) {
	clearEnv(t)

	err := cli.Run(context.Background(), []string{"greeter", "--log-level", "verbose", "serve"})
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, types.ErrTagConfig))
}

func TestRun_MissingMessageTemplate(t *testing.T) {
	clearEnv(t)

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	gt.NoError(t, err)
	privateKey := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})

	err = cli.Run(context.Background(), []string{
		"greeter", "serve",
		"--app-id", "123",
		"--private-key", string(privateKey),
		"--webhook-secret", "secret",
		"--message", t.TempDir() + "/missing.md",
	})
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, types.ErrTagConfig))
}
