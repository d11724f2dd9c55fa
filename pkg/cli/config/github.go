package config

import (
	"strconv"
	"strings"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/greeter/pkg/domain/types"
	githubinfra "github.com/m-mizutani/greeter/pkg/infra/github"
	"github.com/urfave/cli/v3"
)

// GitHubApp holds GitHub App credentials
type GitHubApp struct {
	AppID              string
	PrivateKey         string `masq:"secret"`
	WebhookSecret      string `masq:"secret"`
	EnterpriseHostname string
}

// Flags returns CLI flags for GitHub App configuration
func (c *GitHubApp) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "app-id",
			Usage:       "GitHub App ID",
			Destination: &c.AppID,
			Sources:     cli.EnvVars("APP_ID"),
		},
		&cli.StringFlag{
			Name:        "private-key",
			Usage:       "GitHub App private key in PEM format",
			Destination: &c.PrivateKey,
			Sources:     cli.EnvVars("PRIVATE_KEY"),
		},
		&cli.StringFlag{
			Name:        "webhook-secret",
			Usage:       "GitHub webhook secret",
			Destination: &c.WebhookSecret,
			Sources:     cli.EnvVars("WEBHOOK_SECRET"),
		},
		&cli.StringFlag{
			Name:        "enterprise-hostname",
			Usage:       "GitHub Enterprise Server hostname (empty for github.com)",
			Destination: &c.EnterpriseHostname,
			Sources:     cli.EnvVars("ENTERPRISE_HOSTNAME"),
		},
	}
}

// Validate checks every required value is present and well formed
func (c *GitHubApp) Validate() error {
	if _, err := c.ID(); err != nil {
		return err
	}
	if _, err := c.Key(); err != nil {
		return err
	}
	if c.WebhookSecret == "" {
		return goerr.New("webhook secret is required", goerr.T(types.ErrTagConfig))
	}
	return nil
}

// ID returns the numeric App ID
func (c *GitHubApp) ID() (int64, error) {
	if c.AppID == "" {
		return 0, goerr.New("app ID is required", goerr.T(types.ErrTagConfig))
	}
	id, err := strconv.ParseInt(c.AppID, 10, 64)
	if err != nil || id <= 0 {
		return 0, goerr.New("app ID must be a positive integer", goerr.V("app_id", c.AppID), goerr.T(types.ErrTagConfig))
	}
	return id, nil
}

// Key returns the PEM encoded private key. Escaped newlines, as commonly
// found in single line environment variables, are restored.
func (c *GitHubApp) Key() ([]byte, error) {
	if c.PrivateKey == "" {
		return nil, goerr.New("private key is required", goerr.T(types.ErrTagConfig))
	}

	pem := []byte(strings.ReplaceAll(c.PrivateKey, `\n`, "\n"))
	key, err := jwk.ParseKey(pem, jwk.WithPEM(true))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse private key", goerr.T(types.ErrTagConfig))
	}
	if _, ok := key.(jwk.RSAPrivateKey); !ok {
		return nil, goerr.New("private key must be an RSA private key",
			goerr.V("key_type", key.KeyType()),
			goerr.T(types.ErrTagConfig))
	}

	return pem, nil
}

// BaseURL returns the REST API root for github.com or the configured
// Enterprise Server
func (c *GitHubApp) BaseURL() string {
	if c.EnterpriseHostname == "" {
		return githubinfra.DefaultBaseURL
	}
	return githubinfra.EnterpriseBaseURL(c.EnterpriseHostname)
}
