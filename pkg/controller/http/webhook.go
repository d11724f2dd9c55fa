package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/google/go-github/v75/github"
	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/greeter/pkg/domain/interfaces"
	"github.com/m-mizutani/greeter/pkg/domain/model"
	"github.com/m-mizutani/greeter/pkg/domain/types"
)

// GitHub caps webhook payloads at 25 MB
const maxPayloadSize = 25 << 20

const eventHeader = github.EventTypeHeader

// Dispatcher runs event processing in the background
type Dispatcher interface {
	Dispatch(ctx context.Context, handler func(ctx context.Context) error)
}

// Accessors generated by go-github for the fields shared by most event payloads
type (
	actionGetter       interface{ GetAction() string }
	installationGetter interface{ GetInstallation() *github.Installation }
	repoGetter         interface{ GetRepo() *github.Repository }
	senderGetter       interface{ GetSender() *github.User }
)

// WebhookHandler handles GitHub webhooks
type WebhookHandler struct {
	verifier   *SignatureVerifier
	webhookUC  interfaces.WebhookUseCase
	dispatcher Dispatcher
}

// NewWebhookHandler creates a new WebhookHandler. With a nil verifier every
// delivery is refused. With a nil dispatcher, events are processed before the
// response is written.
func NewWebhookHandler(verifier *SignatureVerifier, webhookUC interfaces.WebhookUseCase, dispatcher Dispatcher) *WebhookHandler {
	return &WebhookHandler{
		verifier:   verifier,
		webhookUC:  webhookUC,
		dispatcher: dispatcher,
	}
}

// Handle processes webhook requests
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := ctxlog.From(ctx)

	eventType := github.WebHookType(r)
	deliveryID := github.DeliveryID(r)
	if deliveryID == "" {
		deliveryID = uuid.NewString()
		logger.Debug("Delivery ID missing, generated one", "delivery_id", deliveryID)
	}
	logger = logger.With("delivery_id", deliveryID)
	ctx = ctxlog.With(ctx, logger)

	if h.verifier == nil {
		writeError(w, goerr.New("webhook secret not configured", goerr.T(types.ErrTagConfig)), http.StatusInternalServerError)
		return
	}

	if r.ContentLength > maxPayloadSize {
		writeError(w, goerr.New("payload too large"), http.StatusRequestEntityTooLarge)
		return
	}

	// One byte over the limit tells a truncated chunked body apart from a full one
	body, err := io.ReadAll(io.LimitReader(r.Body, maxPayloadSize+1))
	if err != nil {
		logger.Error("Failed to read request body", "error", err)
		writeError(w, goerr.Wrap(err, "failed to read request body"), http.StatusBadRequest)
		return
	}
	defer func() {
		_ = r.Body.Close()
	}()
	if len(body) > maxPayloadSize {
		writeError(w, goerr.New("payload too large"), http.StatusRequestEntityTooLarge)
		return
	}

	// Nothing in the body is trusted before this point
	if !h.verifier.Verify(body, r.Header.Get(signatureHeader)) {
		err := goerr.New("signature does not match event payload and secret", goerr.T(types.ErrTagSignature))
		logger.Warn("Invalid webhook signature", "event_type", eventType, "remote_addr", r.RemoteAddr)
		writeError(w, err, http.StatusBadRequest)
		return
	}

	if eventType == "" {
		writeError(w, goerr.New("required header missing: "+eventHeader), http.StatusBadRequest)
		return
	}

	event := &model.WebhookEvent{
		ID:         deliveryID,
		Type:       model.WebhookEventType(eventType),
		ReceivedAt: time.Now(),
		RawPayload: body,
	}

	if github.EventForType(eventType) == nil {
		// Event types go-github does not know are still routed by type alone
		if !json.Valid(body) {
			writeError(w, goerr.New("invalid JSON payload"), http.StatusBadRequest)
			return
		}
		logger.Debug("Unknown event type", "event_type", eventType)
	} else {
		payload, err := github.ParseWebHook(eventType, body)
		if err != nil {
			logger.Error("Failed to parse webhook payload", "error", err)
			writeError(w, goerr.Wrap(err, "invalid JSON payload"), http.StatusBadRequest)
			return
		}
		fillEvent(event, payload)
	}

	if h.dispatcher != nil {
		h.dispatcher.Dispatch(ctx, func(ctx context.Context) error {
			return h.webhookUC.ProcessEvent(ctx, event)
		})
		writeStatus(ctx, w, http.StatusAccepted, "accepted")
		return
	}

	if err := h.webhookUC.ProcessEvent(ctx, event); err != nil {
		logger.Error("Failed to process webhook event", "error", err)
		writeError(w, err, http.StatusInternalServerError)
		return
	}

	writeStatus(ctx, w, http.StatusOK, "success")
}

// fillEvent copies routing and logging fields out of a parsed payload
func fillEvent(event *model.WebhookEvent, payload any) {
	if p, ok := payload.(actionGetter); ok {
		event.Action = p.GetAction()
	}
	if p, ok := payload.(installationGetter); ok {
		event.InstallationID = p.GetInstallation().GetID()
	}
	if p, ok := payload.(repoGetter); ok {
		event.Repository = p.GetRepo().GetFullName()
	}
	if p, ok := payload.(senderGetter); ok {
		event.Sender = p.GetSender().GetLogin()
	}
}

func writeStatus(ctx context.Context, w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(map[string]string{
		"status": status,
	}); err != nil {
		ctxlog.From(ctx).Error("Failed to encode response", "error", err)
	}
}
