package domain

import "time"

// AccessDenial records a request the access gate rejected with a session teardown.
type AccessDenial struct {
	ID         string    `json:"id"`
	Path       string    `json:"path"`
	Role       string    `json:"role"`
	RouteClass string    `json:"route_class"`
	RequestID  string    `json:"request_id"`
	RemoteIP   string    `json:"remote_ip"`
	UserAgent  string    `json:"user_agent"`
	OccurredAt time.Time `json:"occurred_at"`
}
