// Package audit publishes security-relevant gateway events to Kafka. The
// caller-visible response never carries the rejection category; the audit
// trail does.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventType names the audited event categories.
type EventType string

const (
	EventAdmissionRejected EventType = "admission_rejected"
	EventLoginSucceeded    EventType = "login_succeeded"
	EventLoginFailed       EventType = "login_failed"
	EventFlagChanged       EventType = "feature_flag_changed"
	EventAllowlistChanged  EventType = "allowlist_changed"
	EventSettingsApplied   EventType = "settings_applied"
)

// Event is one audit record. Details carry event-specific fields (rejection
// reason, flag name and state, settings domain, device summary).
type Event struct {
	ID         uuid.UUID         `json:"id"`
	Type       EventType         `json:"type"`
	OccurredAt time.Time         `json:"occurred_at"`
	Actor      string            `json:"actor,omitempty"`
	ClientIP   string            `json:"client_ip,omitempty"`
	RequestID  string            `json:"request_id,omitempty"`
	Details    map[string]string `json:"details,omitempty"`
}

// NewEvent builds an event with a fresh ID and timestamp.
func NewEvent(eventType EventType, occurredAt time.Time) Event {
	return Event{
		ID:         uuid.New(),
		Type:       eventType,
		OccurredAt: occurredAt,
		Details:    make(map[string]string),
	}
}

// Publisher accepts audit events. Publishing is fire-and-forget: the request
// path never blocks on the audit pipeline.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

// NopPublisher drops events. Used when Kafka is not configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) {}
