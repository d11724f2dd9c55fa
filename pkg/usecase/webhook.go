package usecase

import (
	"context"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/greeter/pkg/domain/model"
)

type webhookUseCase struct {
	router *Router
}

// NewWebhook creates a new instance of WebhookUseCase backed by router
func NewWebhook(router *Router) *webhookUseCase {
	return &webhookUseCase{
		router: router,
	}
}

// ProcessEvent logs the event and dispatches it. Handler failures have
// already been reported through the router's error hook when returned.
func (uc *webhookUseCase) ProcessEvent(ctx context.Context, event *model.WebhookEvent) error {
	logger := ctxlog.From(ctx)

	logger.Info("Processing webhook event",
		"id", event.ID,
		"type", event.Type,
		"action", event.Action,
		"installation_id", event.InstallationID,
		"repository", event.Repository,
		"sender", event.Sender,
	)

	return uc.router.Dispatch(ctx, event)
}
