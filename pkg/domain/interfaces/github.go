package interfaces

import (
	"context"

	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/greeter/pkg/domain/model"
)

// GitHubClient defines operations for interacting with GitHub API as an app installation
type GitHubClient interface {
	// CreateComment creates a comment on a pull request or issue
	CreateComment(ctx context.Context, owner, repo string, number int, comment *github.IssueComment) (*github.IssueComment, *github.Response, error)
}

// CredentialProvider exchanges the app identity for installation-scoped clients
type CredentialProvider interface {
	// InstallationClient returns a client authenticated as the given installation.
	// Tokens are minted lazily and cached until shortly before expiry.
	InstallationClient(ctx context.Context, installationID int64) (GitHubClient, error)

	// App returns the identity of the authenticated GitHub App
	App(ctx context.Context) (*model.AppIdentity, error)
}
