package usecase

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/greeter/pkg/domain/model"
	"github.com/m-mizutani/greeter/pkg/domain/types"
)

// EventHandler handles one verified webhook event
type EventHandler func(ctx context.Context, event *model.WebhookEvent) error

// ErrorHook receives errors raised by handlers along with the event that caused them
type ErrorHook func(ctx context.Context, event *model.WebhookEvent, err error)

// Router maps (event type, action) pairs to handlers. At most one handler is
// registered per key; an exact action match takes precedence over ActionAny.
type Router struct {
	mu        sync.RWMutex
	handlers  map[model.EventKey]EventHandler
	errorHook ErrorHook
}

// NewRouter creates an empty router
func NewRouter() *Router {
	return &Router{
		handlers: make(map[model.EventKey]EventHandler),
	}
}

// Register binds handler to the event type and action. Registering the same
// key again replaces the previous handler.
func (r *Router) Register(eventType model.WebhookEventType, action string, handler EventHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[model.EventKey{Type: eventType, Action: action}] = handler
}

// OnError sets the error hook. The last registration wins.
func (r *Router) OnError(hook ErrorHook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errorHook = hook
}

// Lookup returns the handler for the event, or nil when none is registered
func (r *Router) Lookup(event *model.WebhookEvent) EventHandler {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if h, ok := r.handlers[event.Key()]; ok {
		return h
	}
	if h, ok := r.handlers[model.EventKey{Type: event.Type, Action: model.ActionAny}]; ok {
		return h
	}
	return nil
}

// Dispatch invokes the handler registered for the event. Unregistered events
// are dropped silently and yield nil. A handler error or panic is passed to
// the error hook and then returned tagged ErrTagDispatch.
func (r *Router) Dispatch(ctx context.Context, event *model.WebhookEvent) error {
	logger := ctxlog.From(ctx)

	handler := r.Lookup(event)
	if handler == nil {
		logger.Debug("No handler registered for event",
			"delivery_id", event.ID,
			"event", event.Key().String(),
		)
		return nil
	}

	if err := invoke(ctx, handler, event); err != nil {
		r.mu.RLock()
		hook := r.errorHook
		r.mu.RUnlock()

		err = goerr.Wrap(err, "event handler failed",
			goerr.T(types.ErrTagDispatch),
			goerr.V("delivery_id", event.ID),
			goerr.V("event", event.Key().String()),
		)

		if hook == nil {
			logger.Error("Error processing request", "delivery_id", event.ID, "error", err)
		} else {
			hook(ctx, event, err)
		}
		return err
	}

	return nil
}

func invoke(ctx context.Context, handler EventHandler, event *model.WebhookEvent) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = goerr.New(fmt.Sprintf("panic in event handler: %v", rec),
				goerr.V("stack", string(debug.Stack())),
			)
		}
	}()

	return handler(ctx, event)
}
