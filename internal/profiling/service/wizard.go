package service

import (
	"strconv"
	"sync"
	"time"

	"offsite/internal/profiling/models"
	"offsite/internal/profiling/validation"
	dErrors "offsite/pkg/domain-errors"
)

// Wizard is one profiling session: a mutable record plus the step state
// machine over 1..7. All access goes through its mutex; the submit pipeline
// additionally holds the in-flight guard across the network call.
type Wizard struct {
	id string

	mu          sync.Mutex
	record      *models.ProfilingRecord
	step        int
	fieldErrors map[string]string
	inFlight    bool
	completed   bool
	diags       Diagnostics
	touched     time.Time
}

// Diagnostics preserves what the user needs to relay to support after a
// failed submission: the exact normalized payload that was sent and the raw
// or parsed response.
type Diagnostics struct {
	LastRequest  map[string]any `json:"lastRequest,omitempty"`
	LastResponse any            `json:"lastResponse,omitempty"`
	LastError    string         `json:"lastError,omitempty"`
}

// State is a read-only view of a session for the transport layer.
type State struct {
	SessionID   string                  `json:"sessionId"`
	Step        int                     `json:"step"`
	FieldErrors map[string]string       `json:"fieldErrors"`
	Completed   bool                    `json:"completed"`
	Record      *models.ProfilingRecord `json:"record,omitempty"`
}

// State snapshots the session. The returned record is a deep copy so callers
// cannot mutate the wizard's aggregate from outside.
func (w *Wizard) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stateLocked()
}

// Diagnostics returns the captured last request/response artifacts.
func (w *Wizard) Diagnostics() Diagnostics {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.diags
}

// Advance validates the current step. On success the step increments (capped
// at the final step) and the active error map resets; on failure the step is
// unchanged and the returned field errors replace the active map. The record
// is never mutated either way.
func (s *Service) Advance(id string) (State, error) {
	w, err := s.session(id)
	if err != nil {
		return State{}, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.ensureOpenLocked(); err != nil {
		return State{}, err
	}
	w.touched = s.clock()

	res := validation.ValidateStep(w.step, w.record)
	if !res.Valid {
		w.fieldErrors = res.Errors
		s.metrics.ValidationFailures.WithLabelValues(stepLabel(w.step)).Inc()
		return w.stateLocked(), nil
	}
	if w.step < validation.LastStep {
		w.step++
	}
	w.fieldErrors = map[string]string{}
	return w.stateLocked(), nil
}

// Retreat always succeeds: a user may go backward to fix earlier data even if
// later steps hold unsaved partial entries. No validation runs.
func (s *Service) Retreat(id string) (State, error) {
	w, err := s.session(id)
	if err != nil {
		return State{}, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.ensureOpenLocked(); err != nil {
		return State{}, err
	}
	w.touched = s.clock()
	if w.step > validation.FirstStep {
		w.step--
	}
	return w.stateLocked(), nil
}

// UpdateRecord replaces the session's record with the edited copy. Field
// edits are free-form; validation only runs on forward navigation and submit.
func (s *Service) UpdateRecord(id string, record *models.ProfilingRecord) (State, error) {
	if record == nil {
		return State{}, dErrors.New(dErrors.CodeInvalidInput, "record body is required")
	}
	w, err := s.session(id)
	if err != nil {
		return State{}, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.ensureOpenLocked(); err != nil {
		return State{}, err
	}
	if w.inFlight {
		return State{}, dErrors.New(dErrors.CodeConflict, "a submission is in flight")
	}
	w.touched = s.clock()
	w.record = record
	return w.stateLocked(), nil
}

// ensureOpenLocked rejects operations on a session whose record was already
// submitted and discarded. Caller holds w.mu.
func (w *Wizard) ensureOpenLocked() error {
	if w.completed {
		return dErrors.New(dErrors.CodeConflict, "wizard session already completed")
	}
	return nil
}

// stateLocked builds a State view. Caller holds w.mu.
func (w *Wizard) stateLocked() State {
	st := State{
		SessionID:   w.id,
		Step:        w.step,
		FieldErrors: copyErrors(w.fieldErrors),
		Completed:   w.completed,
	}
	if w.record != nil {
		st.Record = w.record.Clone()
	}
	return st
}

func copyErrors(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func stepLabel(step int) string {
	return strconv.Itoa(step)
}
