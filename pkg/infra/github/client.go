package github

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/codeGROOVE-dev/retry"
	"github.com/google/go-github/v75/github"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/greeter/pkg/domain/interfaces"
	"github.com/m-mizutani/greeter/pkg/domain/model"
	"github.com/m-mizutani/greeter/pkg/domain/types"
)

// DefaultBaseURL is the public GitHub REST endpoint
const DefaultBaseURL = "https://api.github.com"

// EnterpriseBaseURL returns the REST endpoint of a GitHub Enterprise Server host
func EnterpriseBaseURL(hostname string) string {
	return "https://" + hostname + "/api/v3"
}

// Option is a functional option for Provider configuration
type Option func(*Provider)

// WithBaseURL sets the REST API base URL, e.g. https://ghe.example.com/api/v3
func WithBaseURL(baseURL string) Option {
	return func(p *Provider) {
		p.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithTransport sets the underlying HTTP transport
func WithTransport(tr http.RoundTripper) Option {
	return func(p *Provider) {
		p.transport = tr
	}
}

// Provider holds the GitHub App identity and hands out installation clients.
// Installation transports are cached per installation ID; each one keeps its
// own token and refreshes it under a lock, so concurrent callers share a token.
type Provider struct {
	appID     int64
	baseURL   string
	transport http.RoundTripper
	appsTr    *ghinstallation.AppsTransport

	mu      sync.Mutex
	clients map[int64]*client
}

// NewProvider creates a credential provider with GitHub App authentication
func NewProvider(appID int64, privateKey []byte, opts ...Option) (*Provider, error) {
	p := &Provider{
		appID:     appID,
		baseURL:   DefaultBaseURL,
		transport: http.DefaultTransport,
		clients:   make(map[int64]*client),
	}
	for _, opt := range opts {
		opt(p)
	}

	atr, err := ghinstallation.NewAppsTransport(p.transport, appID, privateKey)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create GitHub App transport",
			goerr.T(types.ErrTagAuth),
			goerr.V("app_id", appID),
		)
	}
	atr.BaseURL = p.baseURL
	p.appsTr = atr

	return p, nil
}

// InstallationClient returns a client authenticated as the installation
func (p *Provider) InstallationClient(ctx context.Context, installationID int64) (interfaces.GitHubClient, error) {
	if installationID <= 0 {
		return nil, goerr.New("event has no installation id",
			goerr.T(types.ErrTagAuth),
			goerr.V("installation_id", installationID),
		)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := p.clients[installationID]; ok {
		return c, nil
	}

	itr := ghinstallation.NewFromAppsTransport(p.appsTr, installationID)
	githubClient, err := p.newGitHubClient(itr)
	if err != nil {
		return nil, err
	}

	c := &client{
		githubClient:   githubClient,
		installationID: installationID,
	}
	p.clients[installationID] = c

	ctxlog.From(ctx).Debug("Created installation client", "installation_id", installationID)
	return c, nil
}

// App fetches GET /app with the app JWT. Transient failures are retried; 4xx
// responses are not.
func (p *Provider) App(ctx context.Context) (*model.AppIdentity, error) {
	githubClient, err := p.newGitHubClient(p.appsTr)
	if err != nil {
		return nil, err
	}

	var app *github.App
	err = retry.Do(
		func() error {
			a, _, err := githubClient.Apps.Get(ctx, "")
			if err != nil {
				var errResp *github.ErrorResponse
				if errors.As(err, &errResp) && errResp.Response != nil && errResp.Response.StatusCode < 500 {
					return retry.Unrecoverable(err)
				}
				ctxlog.From(ctx).Warn("GitHub API request failed (will retry)", "error", err)
				return err
			}
			app = a
			return nil
		},
		retry.Attempts(3),
		retry.DelayType(retry.BackOffDelay),
		retry.MaxDelay(10*time.Second),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get authenticated app",
			goerr.T(types.ErrTagAuth),
			goerr.V("app_id", p.appID),
			goerr.V("base_url", p.baseURL),
		)
	}

	return &model.AppIdentity{
		ID:    app.GetID(),
		Slug:  app.GetSlug(),
		Name:  app.GetName(),
		Owner: app.GetOwner().GetLogin(),
	}, nil
}

func (p *Provider) newGitHubClient(tr http.RoundTripper) (*github.Client, error) {
	githubClient := github.NewClient(&http.Client{Transport: tr})
	if p.baseURL == DefaultBaseURL {
		return githubClient, nil
	}

	uploadURL := strings.TrimSuffix(p.baseURL, "/api/v3") + "/api/uploads/"
	githubClient, err := githubClient.WithEnterpriseURLs(p.baseURL+"/", uploadURL)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid GitHub Enterprise URL", goerr.V("base_url", p.baseURL))
	}
	return githubClient, nil
}

type client struct {
	githubClient   *github.Client
	installationID int64
}

// CreateComment creates a comment on a pull request or issue. A failure to
// mint the installation token is tagged as an auth error.
func (c *client) CreateComment(ctx context.Context, owner, repo string, number int, comment *github.IssueComment) (*github.IssueComment, *github.Response, error) {
	created, resp, err := c.githubClient.Issues.CreateComment(ctx, owner, repo, number, comment)
	if err != nil {
		var tokenErr *ghinstallation.HTTPError
		if errors.As(err, &tokenErr) {
			return nil, resp, goerr.Wrap(err, "failed to mint installation token",
				goerr.T(types.ErrTagAuth),
				goerr.V("installation_id", c.installationID),
			)
		}
		return nil, resp, err
	}

	return created, resp, nil
}
