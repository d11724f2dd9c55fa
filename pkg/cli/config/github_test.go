package config_test

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"strings"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/greeter/pkg/cli/config"
	"github.com/m-mizutani/greeter/pkg/domain/types"
)

func rsaPEM(t *testing.T) string {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	gt.NoError(t, err)
	return string(pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	}))
}

func ecPEM(t *testing.T) string {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	gt.NoError(t, err)
	der, err := x509.MarshalECPrivateKey(key)
	gt.NoError(t, err)
	return string(pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: der}))
}

func TestGitHubApp_Validate(t *testing.T) {
	key := rsaPEM(t)

	tests := []struct {
		name    string
		cfg     config.GitHubApp
		wantErr bool
	}{
		{
			name: "Valid configuration",
			cfg:  config.GitHubApp{AppID: "123", PrivateKey: key, WebhookSecret: "s"},
		},
		{
			name: "Escaped newlines in private key",
			cfg: config.GitHubApp{
				AppID:         "123",
				PrivateKey:    strings.ReplaceAll(key, "\n", `\n`),
				WebhookSecret: "s",
			},
		},
		{
			name:    "Missing app ID",
			cfg:     config.GitHubApp{PrivateKey: key, WebhookSecret: "s"},
			wantErr: true,
		},
		{
			name:    "Non numeric app ID",
			cfg:     config.GitHubApp{AppID: "my-app", PrivateKey: key, WebhookSecret: "s"},
			wantErr: true,
		},
		{
			name:    "Missing private key",
			cfg:     config.GitHubApp{AppID: "123", WebhookSecret: "s"},
			wantErr: true,
		},
		{
			name:    "Malformed private key",
			cfg:     config.GitHubApp{AppID: "123", PrivateKey: "not a key", WebhookSecret: "s"},
			wantErr: true,
		},
		{
			name:    "Non RSA private key",
			cfg:     config.GitHubApp{AppID: "123", PrivateKey: ecPEM(t), WebhookSecret: "s"},
			wantErr: true,
		},
		{
			name:    "Missing webhook secret",
			cfg:     config.GitHubApp{AppID: "123", PrivateKey: key},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				gt.Error(t, err)
				gt.True(t, goerr.HasTag(err, types.ErrTagConfig))
				return
			}
			gt.NoError(t, err)
		})
	}
}

func TestGitHubApp_Key(t *testing.T) {
	key := rsaPEM(t)
	cfg := config.GitHubApp{PrivateKey: strings.ReplaceAll(key, "\n", `\n`)}

	got, err := cfg.Key()
	gt.NoError(t, err)
	gt.V(t, string(got)).Equal(key)
}

func TestGitHubApp_ID(t *testing.T) {
	cfg := config.GitHubApp{AppID: "98765"}
	id, err := cfg.ID()
	gt.NoError(t, err)
	gt.V(t, id).Equal(int64(98765))

	cfg.AppID = "-1"
	_, err = cfg.ID()
	gt.Error(t, err)
}

func TestGitHubApp_BaseURL(t *testing.T) {
	cfg := config.GitHubApp{}
	gt.V(t, cfg.BaseURL()).Equal("https://api.github.com")

	cfg.EnterpriseHostname = "ghe.example.com"
	gt.V(t, cfg.BaseURL()).Equal("https://ghe.example.com/api/v3")
}
