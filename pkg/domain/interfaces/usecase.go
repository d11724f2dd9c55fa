package interfaces

import (
	"context"

	"github.com/m-mizutani/greeter/pkg/domain/model"
)

// WebhookUseCase defines the interface for webhook event processing
type WebhookUseCase interface {
	// ProcessEvent routes a verified webhook event to its handler
	ProcessEvent(ctx context.Context, event *model.WebhookEvent) error
}

// GreetingUseCase posts the configured greeting on newly opened pull requests
type GreetingUseCase interface {
	GreetPullRequest(ctx context.Context, info *model.PullRequestInfo) error
}
