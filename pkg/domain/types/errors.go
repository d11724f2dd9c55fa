package types

import (
	"fmt"

	"github.com/m-mizutani/goerr/v2"
)

var (
	// ErrTagConfig marks fatal startup errors (missing env var, unreadable template).
	ErrTagConfig = goerr.NewTag("config")

	// ErrTagAuth marks failures to mint or use app credentials.
	ErrTagAuth = goerr.NewTag("auth")

	// ErrTagSignature marks webhook deliveries whose signature did not verify.
	ErrTagSignature = goerr.NewTag("signature")

	// ErrTagDispatch marks errors returned or raised by an event handler.
	ErrTagDispatch = goerr.NewTag("dispatch")

	// ErrTagHTTP marks non-2xx responses from the GitHub API.
	ErrTagHTTP = goerr.NewTag("http")

	// ErrTagNetwork marks transport failures talking to the GitHub API.
	ErrTagNetwork = goerr.NewTag("network")
)

// HTTPError is a non-2xx response returned by the GitHub API.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("github api responded %d: %s", e.Status, e.Message)
}
