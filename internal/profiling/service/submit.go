package service

import (
	"context"
	"errors"
	"time"

	"offsite/internal/audit"
	"offsite/internal/profiling/ingest"
	"offsite/internal/profiling/normalize"
	"offsite/internal/profiling/ratios"
	"offsite/internal/profiling/validation"
	dErrors "offsite/pkg/domain-errors"
)

// SubmitResult is the outcome of an accepted submission.
type SubmitResult struct {
	Response map[string]any `json:"response"`
}

// Submit runs the terminal pipeline: re-validate the final step, fail closed
// on a structurally invalid company identifier, recompute derived ratios,
// normalize a snapshot, send it, and record diagnostics either way. A failed
// submission never destroys the record: the user can correct data and try
// again without re-entering the form.
func (s *Service) Submit(ctx context.Context, id string) (*SubmitResult, error) {
	w, err := s.session(id)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	if err := w.ensureOpenLocked(); err != nil {
		w.mu.Unlock()
		return nil, err
	}
	// Exactly one submission in flight per session.
	if w.inFlight {
		w.mu.Unlock()
		return nil, dErrors.New(dErrors.CodeConflict, "a submission is already in flight")
	}
	if w.step != validation.LastStep {
		w.mu.Unlock()
		return nil, dErrors.New(dErrors.CodeConflict, "submit is only available on the final step")
	}
	w.touched = s.clock()

	if res := validation.ValidateStep(w.step, w.record); !res.Valid {
		w.fieldErrors = res.Errors
		s.metrics.ValidationFailures.WithLabelValues(stepLabel(w.step)).Inc()
		w.mu.Unlock()
		return nil, dErrors.New(dErrors.CodeInvalidInput, "the final step did not pass validation")
	}

	// Non-skippable identifier gate, checked again regardless of earlier
	// step-validation history. No network call happens past an invalid id.
	companyID := w.record.CompanyID
	if !validation.ValidCompanyID(companyID) {
		w.mu.Unlock()
		return nil, dErrors.New(dErrors.CodeInvalidIdentifier, "company identifier is not a valid UUID")
	}

	// Derived fields are recomputed from raw inputs on every attempt so a
	// stale working capital or adequacy ratio can never reach the backend.
	ratios.Apply(w.record)
	snapshot := w.record.Clone()

	w.inFlight = true
	w.mu.Unlock()
	defer func() {
		w.mu.Lock()
		w.inFlight = false
		w.mu.Unlock()
	}()

	payload, err := normalize.Payload(snapshot)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "normalize payload", err)
	}

	// The normalized payload is retained as the last-request artifact no
	// matter how the attempt ends.
	w.mu.Lock()
	w.diags = Diagnostics{LastRequest: payload}
	w.mu.Unlock()

	start := s.clock()
	response, err := s.submitter.Submit(ctx, payload)
	elapsed := s.clock().Sub(start)
	if err != nil {
		return nil, s.recordFailure(ctx, w, companyID, elapsed, err)
	}

	s.metrics.ObserveSubmit("accepted", elapsed)
	s.publish(ctx, audit.NewEvent(audit.EventSubmissionAccepted, w.id, companyID, ""))

	w.mu.Lock()
	w.diags.LastResponse = response
	w.completed = true
	w.record = nil // the submitted record is discarded; caller navigates away
	w.mu.Unlock()

	if err := s.drafts.DeleteDraft(ctx); err != nil {
		s.logger.WarnContext(ctx, "delete draft after submission", "session_id", w.id, "error", err.Error())
	}
	return &SubmitResult{Response: response}, nil
}

// recordFailure captures diagnostics for a failed attempt and translates the
// failure into a domain error carrying the best available message.
func (s *Service) recordFailure(ctx context.Context, w *Wizard, companyID string, elapsed time.Duration, err error) error {
	message := err.Error()
	var lastResponse any

	var subErr *ingest.SubmitError
	if errors.As(err, &subErr) {
		message = subErr.Message
		if subErr.Payload != nil {
			lastResponse = subErr.Payload
		} else {
			lastResponse = subErr.Raw
		}
	}

	// A backend that answered with an error status rejected the submission;
	// anything else (transport failure, timeout) never reached it.
	outcome := "failed"
	eventType := audit.EventSubmissionFailed
	if subErr != nil && subErr.Status != 0 {
		outcome = "rejected"
		eventType = audit.EventSubmissionRejected
	}
	s.metrics.ObserveSubmit(outcome, elapsed)

	w.mu.Lock()
	w.diags.LastResponse = lastResponse
	w.diags.LastError = message
	w.mu.Unlock()

	s.logger.ErrorContext(ctx, "submission failed",
		"session_id", w.id,
		"company_id", companyID,
		"error", message,
	)
	s.publish(ctx, audit.NewEvent(eventType, w.id, companyID, message))
	return dErrors.Wrap(dErrors.CodeUpstream, message, err)
}

// SaveDraft serializes the record verbatim into the single draft slot and
// remembers the company identifier for the next visit. Wizard state is
// otherwise unchanged.
func (s *Service) SaveDraft(ctx context.Context, id string) error {
	w, err := s.session(id)
	if err != nil {
		return err
	}
	w.mu.Lock()
	if err := w.ensureOpenLocked(); err != nil {
		w.mu.Unlock()
		return err
	}
	w.touched = s.clock()
	snapshot := w.record.Clone()
	w.mu.Unlock()

	if err := s.drafts.SaveDraft(ctx, snapshot); err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "save draft", err)
	}
	if validation.ValidCompanyID(snapshot.CompanyID) {
		if err := s.drafts.SaveCompanyID(ctx, snapshot.CompanyID); err != nil {
			s.logger.WarnContext(ctx, "remember company id", "session_id", w.id, "error", err.Error())
		}
	}

	s.metrics.DraftsSaved.Inc()
	s.publish(ctx, audit.NewEvent(audit.EventDraftSaved, w.id, snapshot.CompanyID, ""))
	return nil
}
