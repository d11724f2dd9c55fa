package usecase

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/greeter/pkg/domain/interfaces"
	"github.com/m-mizutani/greeter/pkg/domain/model"
	"github.com/m-mizutani/greeter/pkg/domain/types"
)

// CommentPoster issues "create issue comment" calls and classifies failures.
// Calls are never retried, and repeated deliveries of the same event will
// post repeated comments.
type CommentPoster struct{}

// NewCommentPoster creates a new CommentPoster
func NewCommentPoster() *CommentPoster {
	return &CommentPoster{}
}

// PostComment sends exactly one create-comment request. Failures are returned
// as one of:
//   - types.HTTPError tagged ErrTagHTTP for non-2xx responses
//   - an error tagged ErrTagAuth when the installation token could not be minted
//   - an error tagged ErrTagNetwork for anything else
func (p *CommentPoster) PostComment(ctx context.Context, client interfaces.GitHubClient, req *model.CommentRequest) (*github.IssueComment, error) {
	logger := ctxlog.From(ctx)

	comment, _, err := client.CreateComment(ctx, req.Owner, req.Repo, req.IssueNumber, &github.IssueComment{
		Body: github.Ptr(req.Body),
	})
	if err != nil {
		return nil, classifyPostError(err, req)
	}

	logger.Info("Posted comment",
		"owner", req.Owner,
		"repo", req.Repo,
		"number", req.IssueNumber,
		"comment_id", comment.GetID(),
	)

	return comment, nil
}

func classifyPostError(err error, req *model.CommentRequest) error {
	vars := []goerr.Option{
		goerr.V("owner", req.Owner),
		goerr.V("repo", req.Repo),
		goerr.V("number", req.IssueNumber),
	}

	if goerr.HasTag(err, types.ErrTagAuth) {
		return goerr.Wrap(err, "failed to authenticate for comment", vars...)
	}

	if httpErr := httpErrorOf(err); httpErr != nil {
		return goerr.Wrap(httpErr, "failed to create comment",
			append(vars, goerr.T(types.ErrTagHTTP), goerr.V("status", httpErr.Status))...)
	}

	return goerr.Wrap(err, "failed to send create comment request",
		append(vars, goerr.T(types.ErrTagNetwork))...)
}

// httpErrorOf extracts status and message from the error types go-github
// returns for non-2xx responses. It returns nil for transport failures.
func httpErrorOf(err error) *types.HTTPError {
	var errResp *github.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		return &types.HTTPError{Status: errResp.Response.StatusCode, Message: errResp.Message}
	}

	// 403/429 with rate limit headers
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) && rateErr.Response != nil {
		return &types.HTTPError{Status: rateErr.Response.StatusCode, Message: rateErr.Message}
	}

	// 403 secondary rate limit, also returned without a request while go-github
	// is still backing off from a previous one
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) && abuseErr.Response != nil {
		return &types.HTTPError{Status: abuseErr.Response.StatusCode, Message: abuseErr.Message}
	}

	var tfaErr *github.TwoFactorAuthError
	if errors.As(err, &tfaErr) && tfaErr.Response != nil {
		return &types.HTTPError{Status: tfaErr.Response.StatusCode, Message: tfaErr.Message}
	}

	// 3xx when redirects are not followed
	var redirectErr *github.RedirectionError
	if errors.As(err, &redirectErr) && redirectErr.Response != nil {
		return &types.HTTPError{Status: redirectErr.StatusCode, Message: http.StatusText(redirectErr.StatusCode)}
	}

	return nil
}
