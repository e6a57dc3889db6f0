package domain

import "time"

type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptSubmitted  AttemptStatus = "submitted"
	AttemptExpired    AttemptStatus = "expired"
)

type Attempt struct {
	ID          string
	ExamID      string
	SubjectID   string
	Status      AttemptStatus
	StartedAt   time.Time
	SubmittedAt *time.Time
}

// UnlimitedAttempts is the MaxAttempts sentinel for no attempt limit.
const UnlimitedAttempts = -1

// AttemptQuotaState is a derived, read-only view over the attempt history
// for one (exam, subject) pair. Recomputed per authorization check; never
// persisted.
type AttemptQuotaState struct {
	AttemptsMade     int
	MaxAttempts      int
	HasActiveAttempt bool
	ActiveAttemptID  string
}

// Exhausted reports whether the quota permits no further attempts. The
// unlimited sentinel never exhausts.
func (q AttemptQuotaState) Exhausted() bool {
	return q.MaxAttempts != UnlimitedAttempts && q.AttemptsMade >= q.MaxAttempts
}
