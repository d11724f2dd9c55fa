package github

import (
	"context"
	"encoding/json"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/greeter/pkg/domain/interfaces"
	"github.com/m-mizutani/greeter/pkg/domain/model"
)

// EventProcessor turns GitHub webhook payloads into use case calls
type EventProcessor struct {
	greetingUC interfaces.GreetingUseCase
}

// NewEventProcessor creates a new GitHub event processor
func NewEventProcessor(greetingUC interfaces.GreetingUseCase) *EventProcessor {
	return &EventProcessor{
		greetingUC: greetingUC,
	}
}

// HandlePullRequestOpened handles pull_request.opened
func (p *EventProcessor) HandlePullRequestOpened(ctx context.Context, event *model.WebhookEvent) error {
	logger := ctxlog.From(ctx)

	var prEvent github.PullRequestEvent
	if err := json.Unmarshal(event.RawPayload, &prEvent); err != nil {
		return goerr.Wrap(err, "failed to unmarshal pull_request event", goerr.V("delivery_id", event.ID))
	}

	info, err := extractPRInfo(&prEvent)
	if err != nil {
		return goerr.Wrap(err, "invalid pull_request event", goerr.V("delivery_id", event.ID))
	}

	logger.Info("Received a pull request event",
		"number", info.Number,
		"owner", info.Owner,
		"repo", info.Repo,
		"installation_id", info.InstallationID,
	)

	return p.greetingUC.GreetPullRequest(ctx, info)
}

// extractPRInfo extracts the fields needed to comment on the pull request
func extractPRInfo(event *github.PullRequestEvent) (*model.PullRequestInfo, error) {
	if event.GetRepo() == nil {
		return nil, goerr.New("missing repository information in pull_request event")
	}
	if event.GetPullRequest() == nil {
		return nil, goerr.New("missing pull_request information in pull_request event")
	}

	info := &model.PullRequestInfo{
		InstallationID: event.GetInstallation().GetID(),
		Owner:          event.GetRepo().GetOwner().GetLogin(),
		Repo:           event.GetRepo().GetName(),
		Number:         event.GetPullRequest().GetNumber(),
		Title:          event.GetPullRequest().GetTitle(),
		Author:         event.GetPullRequest().GetUser().GetLogin(),
	}

	if info.Owner == "" || info.Repo == "" || info.Number == 0 {
		return nil, goerr.New("missing required fields",
			goerr.V("owner", info.Owner),
			goerr.V("repo", info.Repo),
			goerr.V("number", info.Number),
		)
	}

	return info, nil
}
