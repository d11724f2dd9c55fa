package config_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/greeter/pkg/cli/config"
)

func TestServer_Addr(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Server
		wantURL string
	}{
		{
			name:    "Development binds loopback",
			cfg:     config.Server{Port: 3000, WebhookPath: "/api/webhook"},
			wantURL: "http://localhost:3000/api/webhook",
		},
		{
			name:    "Production binds every interface",
			cfg:     config.Server{Port: 8080, Env: "production", WebhookPath: "/api/webhook"},
			wantURL: "http://0.0.0.0:8080/api/webhook",
		},
		{
			name:    "Custom webhook path",
			cfg:     config.Server{Port: 8080, Env: "test", WebhookPath: "/hooks"},
			wantURL: "http://localhost:8080/hooks",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.NoError(t, tt.cfg.Validate())
			gt.V(t, tt.cfg.WebhookURL()).Equal(tt.wantURL)
		})
	}
}

func TestServer_Validate(t *testing.T) {
	gt.Error(t, (&config.Server{Port: 70000, WebhookPath: "/api/webhook"}).Validate())
	gt.Error(t, (&config.Server{Port: 8080, WebhookPath: "api/webhook"}).Validate())
	gt.Error(t, (&config.Server{Port: 8080}).Validate())
}
