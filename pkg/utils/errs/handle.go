package errs

import (
	"context"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// Handle logs err and, when a Sentry client is configured, reports it.
// Extra tags (e.g. delivery_id) are attached to the Sentry event only.
func Handle(ctx context.Context, msg string, err error, tags map[string]string) {
	logger := ctxlog.From(ctx)

	attrs := []any{"error", err}
	for k, v := range tags {
		attrs = append(attrs, k, v)
	}
	logger.Error(msg, attrs...)

	hub := sentry.CurrentHub()
	if hub.Client() == nil {
		return
	}

	local := hub.Clone()
	local.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		if e := goerr.Unwrap(err); e != nil {
			scope.SetContext("goerr", e.Values())
		}
		evID := local.CaptureException(err)
		if evID != nil {
			logger.Debug("Reported error to Sentry", "event_id", string(*evID))
		}
	})
}
