package usecase

import (
	"context"
	"fmt"
	"time"

	"examgate/internal/domain"
)

// StepRunner executes a single verification factor. It records that
// capture occurred and where the artifact went; it performs no face
// matching or document inspection itself.
type StepRunner struct {
	artifacts ArtifactStore
	now       func() time.Time
}

func NewStepRunner(artifacts ArtifactStore, now func() time.Time) *StepRunner {
	if now == nil {
		now = time.Now
	}
	return &StepRunner{artifacts: artifacts, now: now}
}

type CaptureRequest struct {
	Step      domain.StepKind
	MediaType string
	Raw       []byte
	// Verified is reported by the capturing client (or an external
	// matcher); the runner stamps it as-is.
	Verified bool
}

// Capture stores the raw artifact and returns the stamped outcome. Raw
// bytes never cross the core boundary past this call.
func (r *StepRunner) Capture(ctx context.Context, req CaptureRequest) (domain.VerificationOutcome, error) {
	ref, err := r.artifacts.Store(ctx, req.MediaType, req.Raw)
	if err != nil {
		return domain.VerificationOutcome{}, fmt.Errorf("store artifact: %w", err)
	}
	return domain.VerificationOutcome{
		Step:        req.Step,
		Verified:    req.Verified,
		ArtifactRef: ref,
		Timestamp:   r.now().UTC(),
	}, nil
}

// Skip records an explicitly skipped step. Legal only when the step is not
// required; the orchestrator enforces that precondition, not the runner.
func (r *StepRunner) Skip(step domain.StepKind) domain.VerificationOutcome {
	return domain.VerificationOutcome{
		Step:      step,
		Verified:  false,
		Skipped:   true,
		Timestamp: r.now().UTC(),
	}
}
