package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/gt"

	controller "github.com/m-mizutani/greeter/pkg/controller/http"
	"github.com/m-mizutani/greeter/pkg/domain/model"
	"github.com/m-mizutani/greeter/pkg/usecase"
)

func TestRootEndpoint(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		opts []controller.Option
	}{
		{
			name: "Fully configured",
			opts: []controller.Option{controller.WithWebhookSecret("test-secret")},
		},
		{
			name: "Webhook secret missing",
			opts: nil,
		},
		{
			name: "Custom webhook path",
			opts: []controller.Option{
				controller.WithWebhookSecret("test-secret"),
				controller.WithWebhookPath("/hooks/github"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, err := controller.NewServer(ctx, usecase.NewWebhook(usecase.NewRouter()), tt.opts...)
			gt.NoError(t, err)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			w := httptest.NewRecorder()
			server.Handler.ServeHTTP(w, req)

			gt.V(t, w.Code).Equal(http.StatusOK)
			gt.V(t, w.Header().Get("Content-Type")).Equal("text/plain")
			gt.V(t, w.Body.String()).Equal("Server is running.")
		})
	}
}

func TestHealthEndpoint(t *testing.T) {
	ctx := context.Background()

	server, err := controller.NewServer(
		ctx,
		usecase.NewWebhook(usecase.NewRouter()),
		controller.WithAddr("localhost:0"),
		controller.WithWebhookSecret("test-secret"),
	)
	gt.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	server.Handler.ServeHTTP(w, req)

	gt.V(t, w.Code).Equal(http.StatusOK)

	var status model.HealthStatus
	gt.NoError(t, json.NewDecoder(w.Body).Decode(&status))
	gt.V(t, status.Status).Equal("healthy")
	gt.V(t, status.Service).Equal("greeter")
	gt.V(t, status.Webhook).Equal(controller.DefaultWebhookPath)
	gt.V(t, status.Version).NotEqual("")
}

func TestUnknownPath(t *testing.T) {
	server, err := controller.NewServer(
		context.Background(),
		usecase.NewWebhook(usecase.NewRouter()),
		controller.WithWebhookSecret("test-secret"),
	)
	gt.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/does-not-exist", nil)
	w := httptest.NewRecorder()
	server.Handler.ServeHTTP(w, req)
	gt.V(t, w.Code).Equal(http.StatusNotFound)

	req = httptest.NewRequest(http.MethodGet, controller.DefaultWebhookPath, nil)
	w = httptest.NewRecorder()
	server.Handler.ServeHTTP(w, req)
	gt.V(t, w.Code).Equal(http.StatusMethodNotAllowed)
}
