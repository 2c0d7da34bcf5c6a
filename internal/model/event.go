package model

import "time"

// EventType names a lifecycle transition.
type EventType string

const (
	EventDraftCreated     EventType = "draft_created"
	EventPublishedCreated EventType = "published_created"
	EventPromoted         EventType = "promoted"
	EventRemoved          EventType = "removed"
)

// LifecycleEvent is broadcast after a successful transition.
type LifecycleEvent struct {
	Type       EventType `json:"type"`
	DocumentID string    `json:"document_id"`
	Status     Status    `json:"status,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}
