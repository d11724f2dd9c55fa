package usecase

import (
	"context"
	"errors"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/greeter/pkg/domain/interfaces"
	"github.com/m-mizutani/greeter/pkg/domain/model"
	"github.com/m-mizutani/greeter/pkg/domain/types"
)

type greetingUseCase struct {
	credentials interfaces.CredentialProvider
	poster      *CommentPoster
	message     string
}

// NewGreeting creates a GreetingUseCase that posts message on every opened pull request
func NewGreeting(credentials interfaces.CredentialProvider, poster *CommentPoster, message string) interfaces.GreetingUseCase {
	return &greetingUseCase{
		credentials: credentials,
		poster:      poster,
		message:     message,
	}
}

// GreetPullRequest posts the greeting comment. Failures of the comment call
// itself are logged and swallowed; credential failures are returned so the
// router reports them through its error hook.
func (uc *greetingUseCase) GreetPullRequest(ctx context.Context, info *model.PullRequestInfo) error {
	logger := ctxlog.From(ctx)

	client, err := uc.credentials.InstallationClient(ctx, info.InstallationID)
	if err != nil {
		return goerr.Wrap(err, "failed to get installation client",
			goerr.V("installation_id", info.InstallationID),
		)
	}

	req := &model.CommentRequest{
		Owner:       info.Owner,
		Repo:        info.Repo,
		IssueNumber: info.Number,
		Body:        uc.message,
	}

	if _, err := uc.poster.PostComment(ctx, client, req); err != nil {
		if goerr.HasTag(err, types.ErrTagAuth) {
			return err
		}

		var httpErr *types.HTTPError
		if errors.As(err, &httpErr) {
			logger.Error("Failed to post comment",
				"status", httpErr.Status,
				"message", httpErr.Message,
				"owner", info.Owner,
				"repo", info.Repo,
				"number", info.Number,
			)
			return nil
		}

		logger.Error("Failed to post comment", "error", err,
			"owner", info.Owner,
			"repo", info.Repo,
			"number", info.Number,
		)
		return nil
	}

	return nil
}
