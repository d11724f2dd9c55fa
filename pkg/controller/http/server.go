package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/greeter/pkg/domain/interfaces"
)

// DefaultWebhookPath is where GitHub deliveries are expected
const DefaultWebhookPath = "/api/webhook"

// config holds internal HTTP server configuration
type config struct {
	addr          string
	webhookPath   string
	webhookSecret string
	dispatcher    Dispatcher
}

// Option is a functional option for Server configuration
type Option func(*config)

// WithAddr sets the server address
func WithAddr(addr string) Option {
	return func(c *config) {
		c.addr = addr
	}
}

// WithWebhookPath sets the path GitHub deliveries are posted to
func WithWebhookPath(path string) Option {
	return func(c *config) {
		c.webhookPath = path
	}
}

// WithWebhookSecret sets the webhook secret
func WithWebhookSecret(secret string) Option {
	return func(c *config) {
		c.webhookSecret = secret
	}
}

// WithDispatcher makes the webhook endpoint answer 202 Accepted and process
// events in the background
func WithDispatcher(d Dispatcher) Option {
	return func(c *config) {
		c.dispatcher = d
	}
}

// Server represents the HTTP server
type Server struct {
	*http.Server
}

// NewServer creates a new HTTP server
func NewServer(
	ctx context.Context,
	webhookUC interfaces.WebhookUseCase,
	opts ...Option,
) (*Server, error) {
	// Default configuration
	cfg := &config{
		addr:        "localhost:8080",
		webhookPath: DefaultWebhookPath,
	}

	// Apply options
	for _, opt := range opts {
		opt(cfg)
	}

	var verifier *SignatureVerifier
	if cfg.webhookSecret != "" {
		v, err := NewSignatureVerifier(cfg.webhookSecret)
		if err != nil {
			return nil, err
		}
		verifier = v
	} else {
		ctxlog.From(ctx).Warn("Webhook secret is not set, all deliveries will be refused")
	}

	router := chi.NewRouter()

	// Global middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(LoggingMiddleware(ctx))
	router.Use(middleware.Recoverer)

	// Liveness check, independent of webhook configuration
	router.Get("/", handleRoot)
	router.Get("/health", handleHealth(cfg.webhookPath))

	// Webhook endpoint
	webhookHandler := NewWebhookHandler(verifier, webhookUC, cfg.dispatcher)
	router.Post(cfg.webhookPath, webhookHandler.Handle)

	server := &Server{
		Server: &http.Server{
			Addr:              cfg.addr,
			Handler:           router,
			ReadHeaderTimeout: 15 * time.Second,
		},
	}

	return server, nil
}
