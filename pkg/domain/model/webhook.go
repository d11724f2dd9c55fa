package model

import "time"

// WebhookEventType represents the X-GitHub-Event header value
type WebhookEventType string

const (
	EventTypePullRequest WebhookEventType = "pull_request"
	EventTypePing        WebhookEventType = "ping"
)

// ActionAny matches every action of an event type when registering a handler
const ActionAny = "*"

// EventKey identifies a handler slot in the router
type EventKey struct {
	Type   WebhookEventType
	Action string
}

// String returns the "type.action" form, e.g. "pull_request.opened"
func (k EventKey) String() string {
	if k.Action == "" {
		return string(k.Type)
	}
	return string(k.Type) + "." + k.Action
}

// WebhookEvent represents a verified webhook delivery from GitHub. It is created
// per request and must not be mutated by handlers.
type WebhookEvent struct {
	ID             string           // Retrieved from X-GitHub-Delivery header
	Type           WebhookEventType // Retrieved from X-GitHub-Event header
	Action         string           // Event action (e.g., opened, closed)
	InstallationID int64            // App installation that produced the event, 0 if absent
	Repository     string           // Repository full name
	Sender         string           // Sender username
	ReceivedAt     time.Time
	RawPayload     []byte
}

// Key returns the routing key of the event
func (e *WebhookEvent) Key() EventKey {
	return EventKey{Type: e.Type, Action: e.Action}
}
