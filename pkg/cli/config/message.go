package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/greeter/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

// Message locates the comment template posted on new pull requests
type Message struct {
	Path string
}

// Flags returns CLI flags for message configuration
func (c *Message) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "message",
			Usage:       "Path to the comment template",
			Value:       "./message.md",
			Destination: &c.Path,
			Sources:     cli.EnvVars("MESSAGE_PATH"),
		},
	}
}

// Load reads the template once. Its content is posted verbatim.
func (c *Message) Load() (string, error) {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		return "", goerr.Wrap(err, "failed to read message template",
			goerr.V("path", c.Path),
			goerr.T(types.ErrTagConfig))
	}
	return string(data), nil
}
