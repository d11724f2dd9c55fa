package config

import (
	"net"
	"strconv"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/greeter/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

// Server holds server configuration
type Server struct {
	Port          int
	Env           string
	WebhookPath   string
	AsyncDispatch bool
}

// Flags returns CLI flags for server configuration
func (c *Server) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:        "port",
			Usage:       "Port to listen on",
			Value:       8080,
			Destination: &c.Port,
			Sources:     cli.EnvVars("PORT"),
		},
		&cli.StringFlag{
			Name:        "env",
			Usage:       "Runtime environment; \"production\" listens on all interfaces",
			Destination: &c.Env,
			Sources:     cli.EnvVars("NODE_ENV"),
		},
		&cli.StringFlag{
			Name:        "webhook-path",
			Usage:       "Path GitHub deliveries are posted to",
			Value:       "/api/webhook",
			Destination: &c.WebhookPath,
			Sources:     cli.EnvVars("WEBHOOK_PATH"),
		},
		&cli.BoolFlag{
			Name:        "async-dispatch",
			Usage:       "Acknowledge deliveries with 202 and process them in the background",
			Destination: &c.AsyncDispatch,
			Sources:     cli.EnvVars("ASYNC_DISPATCH"),
		},
	}
}

// Validate checks port range and path shape
func (c *Server) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return goerr.New("port out of range", goerr.V("port", c.Port), goerr.T(types.ErrTagConfig))
	}
	if len(c.WebhookPath) == 0 || c.WebhookPath[0] != '/' {
		return goerr.New("webhook path must start with '/'", goerr.V("path", c.WebhookPath), goerr.T(types.ErrTagConfig))
	}
	return nil
}

// Host returns the interface to bind: every interface in production,
// loopback otherwise
func (c *Server) Host() string {
	if c.Env == "production" {
		return "0.0.0.0"
	}
	return "localhost"
}

// Addr returns the listen address
func (c *Server) Addr() string {
	return net.JoinHostPort(c.Host(), strconv.Itoa(c.Port))
}

// WebhookURL returns the local URL deliveries are accepted at
func (c *Server) WebhookURL() string {
	return "http://" + c.Addr() + c.WebhookPath
}
