// Package audit records the wizard lifecycle events a regulator-facing portal
// must be able to account for: who started a session, saved a draft, and what
// every submission attempt produced.
package audit

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType labels one auditable wizard action.
type EventType string

const (
	EventSessionStarted     EventType = "session_started"
	EventDraftSaved         EventType = "draft_saved"
	EventSubmissionAccepted EventType = "submission_accepted"
	EventSubmissionRejected EventType = "submission_rejected"
	EventSubmissionFailed   EventType = "submission_failed"
)

// Event is one audit trail entry.
type Event struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	SessionID  string    `json:"sessionId"`
	CompanyID  string    `json:"companyId,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
	Detail     string    `json:"detail,omitempty"`
}

// NewEvent builds an event with a fresh id and timestamp.
func NewEvent(typ EventType, sessionID, companyID, detail string) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       typ,
		SessionID:  sessionID,
		CompanyID:  companyID,
		OccurredAt: time.Now().UTC(),
		Detail:     detail,
	}
}

// Publisher delivers audit events to a sink. Publishing is best effort:
// callers log failures but never fail the user action over them.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// MemoryPublisher collects events in memory. Used in tests and as the default
// sink when no broker is configured.
type MemoryPublisher struct {
	mu     sync.RWMutex
	events []Event
}

func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{}
}

func (p *MemoryPublisher) Publish(_ context.Context, event Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

// Events returns a copy of everything published so far.
func (p *MemoryPublisher) Events() []Event {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]Event{}, p.events...)
}
