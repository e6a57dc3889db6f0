package domain

import "time"

type StepKind string

const (
	StepIdentity StepKind = "identity"
	StepFace     StepKind = "face"
)

// StepOrder is the configured sequence of verification steps. Identity
// precedes face; finalization reports failures in this order.
var StepOrder = []StepKind{StepIdentity, StepFace}

// VerificationStepConfig is per-exam policy for a single step. Read-only
// to the core.
type VerificationStepConfig struct {
	Kind     StepKind `json:"kind"`
	Enabled  bool     `json:"enabled"`
	Required bool     `json:"required"`

	// RecheckInterval, when non-zero, asks the caller to re-run the step
	// periodically during the attempt. The core records it only.
	RecheckInterval time.Duration `json:"recheck_interval,omitempty"`
}

type Exam struct {
	ID          string
	Title       string
	StartDate   time.Time
	EndDate     time.Time
	MaxAttempts int // -1 means unlimited
	Steps       []VerificationStepConfig
}

// StepConfig returns the config for kind, or a zero (disabled) config.
func (e Exam) StepConfig(kind StepKind) VerificationStepConfig {
	for _, s := range e.Steps {
		if s.Kind == kind {
			return s
		}
	}
	return VerificationStepConfig{Kind: kind}
}

// RequiresVerification reports whether any verification step is enabled.
func (e Exam) RequiresVerification() bool {
	for _, s := range e.Steps {
		if s.Enabled {
			return true
		}
	}
	return false
}

// InWindow reports whether now falls inside the exam's active window,
// boundaries inclusive.
func (e Exam) InWindow(now time.Time) bool {
	return !now.Before(e.StartDate) && !now.After(e.EndDate)
}
