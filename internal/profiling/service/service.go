// Package service owns the profiling wizard: the mutable record, the step
// state machine, and the submit pipeline. Each wizard session is the single
// source of truth for its record; no other component holds a mutable
// reference.
package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"offsite/internal/audit"
	"offsite/internal/platform/metrics"
	"offsite/internal/profiling/draft"
	"offsite/internal/profiling/models"
	"offsite/internal/profiling/validation"
	dErrors "offsite/pkg/domain-errors"
	"offsite/pkg/platform/sentinel"
)

// Submitter is the network boundary the submit pipeline delegates to.
type Submitter interface {
	Submit(ctx context.Context, payload map[string]any) (map[string]any, error)
}

// Service manages wizard sessions and runs their pipelines.
type Service struct {
	drafts    draft.Store
	submitter Submitter
	publisher audit.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	idleTTL   time.Duration
	clock     func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Wizard
}

// Option configures a Service.
type Option func(*Service)

// WithIdleTTL overrides how long an untouched session survives.
func WithIdleTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.idleTTL = ttl
		}
	}
}

// WithClock sets the clock, for tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewService wires the wizard service.
func NewService(drafts draft.Store, submitter Submitter, publisher audit.Publisher, m *metrics.Metrics, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		drafts:    drafts,
		submitter: submitter,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
		idleTTL:   4 * time.Hour,
		clock:     time.Now,
		sessions:  make(map[string]*Wizard),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Start creates a wizard session. The record comes from, in priority order:
// the caller-supplied seed, the stored draft, or an empty skeleton. A company
// identifier remembered from an earlier session pre-fills a blank record.
func (s *Service) Start(ctx context.Context, seed *models.ProfilingRecord) (State, error) {
	record := seed
	if record == nil {
		stored, err := s.drafts.LoadDraft(ctx)
		switch {
		case err == nil:
			record = stored
		case errors.Is(err, sentinel.ErrNotFound):
			record = models.NewRecord()
		default:
			return State{}, dErrors.Wrap(dErrors.CodeInternal, "load draft", err)
		}
	}
	if record.CompanyID == "" {
		if companyID, err := s.drafts.LoadCompanyID(ctx); err == nil {
			record.CompanyID = companyID
		} else if !errors.Is(err, sentinel.ErrNotFound) {
			s.logger.WarnContext(ctx, "load remembered company id", "error", err.Error())
		}
	}

	w := &Wizard{
		id:          uuid.NewString(),
		record:      record,
		step:        validation.FirstStep,
		fieldErrors: map[string]string{},
		touched:     s.clock(),
	}

	s.mu.Lock()
	s.pruneIdleLocked()
	s.sessions[w.id] = w
	s.mu.Unlock()

	s.metrics.SessionsStarted.Inc()
	s.publish(ctx, audit.NewEvent(audit.EventSessionStarted, w.id, record.CompanyID, ""))
	return w.State(), nil
}

// session returns the live wizard for id. Idle sessions are pruned on every
// lookup, so a session past its TTL is gone even when no new ones start.
func (s *Service) session(id string) (*Wizard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneIdleLocked()
	w, ok := s.sessions[id]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "wizard session not found")
	}
	return w, nil
}

// SessionState snapshots the session for id.
func (s *Service) SessionState(id string) (State, error) {
	w, err := s.session(id)
	if err != nil {
		return State{}, err
	}
	return w.State(), nil
}

// SessionDiagnostics returns the last request/response artifacts captured by
// the most recent submission attempt for id.
func (s *Service) SessionDiagnostics(id string) (Diagnostics, error) {
	w, err := s.session(id)
	if err != nil {
		return Diagnostics{}, err
	}
	return w.Diagnostics(), nil
}

// pruneIdleLocked drops sessions untouched for longer than the idle TTL.
// Caller holds s.mu.
func (s *Service) pruneIdleLocked() {
	cutoff := s.clock().Add(-s.idleTTL)
	for id, w := range s.sessions {
		w.mu.Lock()
		idle := w.touched.Before(cutoff) && !w.inFlight
		w.mu.Unlock()
		if idle {
			delete(s.sessions, id)
		}
	}
}

// publish sends an audit event, logging failures. The audit trail is best
// effort and never fails the user action.
func (s *Service) publish(ctx context.Context, event audit.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "publish audit event",
			"event_type", string(event.Type),
			"session_id", event.SessionID,
			"error", err.Error(),
		)
	}
}
