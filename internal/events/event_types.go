package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventSessionCreated   EventType = "session_created"
	EventSessionCleared   EventType = "session_cleared"
	EventAccessDenied     EventType = "access_denied"
	EventCacheInvalidated EventType = "cache_invalidated"
)

// Event represents something that happened to a session, a request or the cache.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// New stamps an event with an id and the current time.
func New(eventType EventType, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// SessionPayload describes a session that was created or cleared.
type SessionPayload struct {
	Email  string `json:"email"`
	Role   string `json:"role"`
	Reason string `json:"reason,omitempty"`
}

// AccessDeniedPayload describes a forbidden request that tore down a session.
type AccessDeniedPayload struct {
	Path       string `json:"path"`
	Role       string `json:"role"`
	RouteClass string `json:"route_class"`
	RequestID  string `json:"request_id,omitempty"`
	RemoteIP   string `json:"remote_ip,omitempty"`
	UserAgent  string `json:"user_agent,omitempty"`
}

// CacheInvalidatedPayload lists the tags a mutation invalidated.
type CacheInvalidatedPayload struct {
	Endpoint string   `json:"endpoint"`
	Tags     []string `json:"tags"`
	Entries  int      `json:"entries"`
}
