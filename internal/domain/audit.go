package domain

import "time"

// AuditEntry is an append-only record of a completed mutation.
type AuditEntry struct {
	ID           string
	Action       string
	ActorID      string
	ResourceKind string
	Details      map[string]any
	CreatedAt    time.Time
}
