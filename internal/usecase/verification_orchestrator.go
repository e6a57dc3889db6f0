package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"examgate/internal/domain"

	"github.com/google/uuid"
)

// VerificationOrchestrator sequences the configured verification steps for
// an exam and renders the authorization verdict. Policy (required/optional,
// ordering) lives here; capture mechanics live in the StepRunner.
type VerificationOrchestrator struct {
	sessions VerificationSessionRepository
	runner   *StepRunner
	now      func() time.Time
	newID    func() string
}

func NewVerificationOrchestrator(sessions VerificationSessionRepository, runner *StepRunner, now func() time.Time) *VerificationOrchestrator {
	if now == nil {
		now = time.Now
	}
	return &VerificationOrchestrator{
		sessions: sessions,
		runner:   runner,
		now:      now,
		newID:    uuid.NewString,
	}
}

// VerificationVerdict is the orchestrator's answer for the authorization
// engine. Absence of a completed session counts as not authorized.
type VerificationVerdict struct {
	Required           bool
	IsAuthorized       bool
	UnauthorizedReason string
}

const reasonVerificationIncomplete = "verification not completed"

// Begin returns the open session for the pair, creating one in its initial
// state if none exists. An exam with no enabled steps finalizes
// immediately with an empty outcome list.
func (o *VerificationOrchestrator) Begin(ctx context.Context, exam domain.Exam, subjectID string) (*domain.VerificationSession, error) {
	session, err := o.sessions.GetOpen(ctx, exam.ID, subjectID)
	if err == nil {
		return session, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("load verification session: %w", err)
	}

	session = &domain.VerificationSession{
		ID:        o.newID(),
		ExamID:    exam.ID,
		SubjectID: subjectID,
		State:     initialState(exam),
		StartedAt: o.now().UTC(),
	}
	if session.State == domain.StateFinalizing {
		o.finalize(exam, session)
	}
	if err := o.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save verification session: %w", err)
	}
	return session, nil
}

// SubmitCapture records a capture outcome for the session's current step.
// A failed required step does not advance the session; the caller retries
// or aborts.
func (o *VerificationOrchestrator) SubmitCapture(ctx context.Context, exam domain.Exam, subjectID string, req CaptureRequest) (*domain.VerificationSession, error) {
	session, err := o.Begin(ctx, exam, subjectID)
	if err != nil {
		return nil, err
	}
	if err := o.checkStep(exam, session, req.Step); err != nil {
		return nil, err
	}
	outcome, err := o.runner.Capture(ctx, req)
	if err != nil {
		return nil, err
	}
	o.apply(exam, session, outcome)
	if err := o.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save verification session: %w", err)
	}
	return session, nil
}

// SubmitSkip records an explicit skip of the current step. Rejected with
// domain.ErrStepRequired when the step is required.
func (o *VerificationOrchestrator) SubmitSkip(ctx context.Context, exam domain.Exam, subjectID string, step domain.StepKind) (*domain.VerificationSession, error) {
	session, err := o.Begin(ctx, exam, subjectID)
	if err != nil {
		return nil, err
	}
	if err := o.checkStep(exam, session, step); err != nil {
		return nil, err
	}
	if exam.StepConfig(step).Required {
		return nil, domain.ErrStepRequired
	}
	o.apply(exam, session, o.runner.Skip(step))
	if err := o.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save verification session: %w", err)
	}
	return session, nil
}

// Reset discards the open session's outcomes and returns it to its initial
// state: the caller-driven retry after a failed run. Completed sessions
// are immutable; with no open session this is a no-op and the next Begin
// starts fresh.
func (o *VerificationOrchestrator) Reset(ctx context.Context, exam domain.Exam, subjectID string) (*domain.VerificationSession, error) {
	session, err := o.sessions.GetOpen(ctx, exam.ID, subjectID)
	if errors.Is(err, domain.ErrNotFound) {
		return o.Begin(ctx, exam, subjectID)
	}
	if err != nil {
		return nil, fmt.Errorf("load verification session: %w", err)
	}
	session.Outcomes = nil
	session.State = initialState(exam)
	session.IsAuthorized = false
	session.UnauthorizedReason = ""
	if session.State == domain.StateFinalizing {
		o.finalize(exam, session)
	}
	if err := o.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save verification session: %w", err)
	}
	return session, nil
}

// Abort finalizes the open session as it stands. An aborted run with a
// missing or failed required step completes unauthorized.
func (o *VerificationOrchestrator) Abort(ctx context.Context, exam domain.Exam, subjectID string) (*domain.VerificationSession, error) {
	session, err := o.sessions.GetOpen(ctx, exam.ID, subjectID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("load verification session: %w", err)
	}
	o.finalize(exam, session)
	if err := o.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save verification session: %w", err)
	}
	return session, nil
}

// Verdict reports whether the subject's latest completed session
// authorizes the attempt. Exams with no enabled steps are always
// authorized.
func (o *VerificationOrchestrator) Verdict(ctx context.Context, exam domain.Exam, subjectID string) (VerificationVerdict, error) {
	if !exam.RequiresVerification() {
		return VerificationVerdict{Required: false, IsAuthorized: true}, nil
	}
	session, err := o.sessions.GetLatestFinalized(ctx, exam.ID, subjectID)
	if errors.Is(err, domain.ErrNotFound) {
		return VerificationVerdict{
			Required:           true,
			UnauthorizedReason: reasonVerificationIncomplete,
		}, nil
	}
	if err != nil {
		return VerificationVerdict{}, fmt.Errorf("load verification session: %w", err)
	}
	return VerificationVerdict{
		Required:           true,
		IsAuthorized:       session.IsAuthorized,
		UnauthorizedReason: session.UnauthorizedReason,
	}, nil
}

func (o *VerificationOrchestrator) checkStep(exam domain.Exam, session *domain.VerificationSession, step domain.StepKind) error {
	if session.Finalized() {
		return domain.ErrSessionFinalized
	}
	if !exam.StepConfig(step).Enabled {
		return domain.ErrStepDisabled
	}
	if stateFor(step) != session.State {
		return domain.ErrStepNotCurrent
	}
	return nil
}

// apply records the outcome and advances the machine. Reattempted steps
// overwrite their previous outcome: the audit trail keeps the final
// outcome per step.
func (o *VerificationOrchestrator) apply(exam domain.Exam, session *domain.VerificationSession, outcome domain.VerificationOutcome) {
	replaced := false
	for i := range session.Outcomes {
		if session.Outcomes[i].Step == outcome.Step {
			session.Outcomes[i] = outcome
			replaced = true
			break
		}
	}
	if !replaced {
		session.Outcomes = append(session.Outcomes, outcome)
	}

	cfg := exam.StepConfig(outcome.Step)
	if cfg.Required && !outcome.Verified && !outcome.Skipped {
		// Failed required step: hold position, caller retries or aborts.
		return
	}

	next := nextEnabledStep(exam, outcome.Step)
	if next == "" {
		session.State = domain.StateFinalizing
		o.finalize(exam, session)
		return
	}
	session.State = stateFor(next)
}

// finalize computes the terminal verdict and moves the session to
// Completed. Runs once; Completed sessions are never touched again.
func (o *VerificationOrchestrator) finalize(exam domain.Exam, session *domain.VerificationSession) {
	session.State = domain.StateCompleted
	session.IsAuthorized = true
	for _, step := range domain.StepOrder {
		cfg := exam.StepConfig(step)
		if !cfg.Enabled || !cfg.Required {
			continue
		}
		outcome, ok := session.Outcome(step)
		if !ok || !outcome.Verified {
			session.IsAuthorized = false
			session.UnauthorizedReason = string(step) + " verification failed"
			break
		}
	}
	finalizedAt := o.now().UTC()
	session.FinalizedAt = &finalizedAt
}

func initialState(exam domain.Exam) domain.SessionState {
	for _, step := range domain.StepOrder {
		if exam.StepConfig(step).Enabled {
			return stateFor(step)
		}
	}
	return domain.StateFinalizing
}

func nextEnabledStep(exam domain.Exam, after domain.StepKind) domain.StepKind {
	seen := false
	for _, step := range domain.StepOrder {
		if step == after {
			seen = true
			continue
		}
		if seen && exam.StepConfig(step).Enabled {
			return step
		}
	}
	return ""
}

func stateFor(step domain.StepKind) domain.SessionState {
	switch step {
	case domain.StepIdentity:
		return domain.StateAwaitingIdentityStep
	case domain.StepFace:
		return domain.StateAwaitingFaceStep
	default:
		return domain.StateNotStarted
	}
}
