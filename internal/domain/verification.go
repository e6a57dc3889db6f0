package domain

import "time"

type SessionState string

const (
	StateNotStarted           SessionState = "not_started"
	StateAwaitingIdentityStep SessionState = "awaiting_identity_step"
	StateAwaitingFaceStep     SessionState = "awaiting_face_step"
	StateFinalizing           SessionState = "finalizing"
	StateCompleted            SessionState = "completed"
)

// VerificationOutcome is the recorded result of one step execution. The
// runner stamps it; it carries a reference to the captured artifact, never
// the bytes.
type VerificationOutcome struct {
	Step        StepKind  `json:"step"`
	Verified    bool      `json:"verified"`
	Skipped     bool      `json:"skipped"`
	ArtifactRef string    `json:"artifact_ref,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// VerificationSession aggregates step outcomes for one (exam, subject)
// pair. A Completed session is terminal and immutable; a session abandoned
// before completion carries no authorization weight.
type VerificationSession struct {
	ID                 string
	ExamID             string
	SubjectID          string
	State              SessionState
	Outcomes           []VerificationOutcome
	IsAuthorized       bool
	UnauthorizedReason string
	StartedAt          time.Time
	FinalizedAt        *time.Time
}

// Outcome returns the last recorded outcome for kind. Reattempted steps
// overwrite: only the final outcome per step counts.
func (s *VerificationSession) Outcome(kind StepKind) (VerificationOutcome, bool) {
	for i := len(s.Outcomes) - 1; i >= 0; i-- {
		if s.Outcomes[i].Step == kind {
			return s.Outcomes[i], true
		}
	}
	return VerificationOutcome{}, false
}

func (s *VerificationSession) Finalized() bool {
	return s.State == StateCompleted
}
