package db

import "time"

type ExamModel struct {
	ID          string    `gorm:"type:uuid;primaryKey"`
	Title       string    `gorm:"not null"`
	StartDate   time.Time `gorm:"not null"`
	EndDate     time.Time `gorm:"not null"`
	MaxAttempts int       `gorm:"not null;default:-1"`
	StepsJSON   []byte    `gorm:"type:jsonb;not null"`
	CreatedAt   time.Time `gorm:"not null"`
}

// AttemptModel carries a partial unique index over active attempts: the
// database, not the engine, is the enforcement point for "at most one
// in-progress attempt per (exam, subject)".
type AttemptModel struct {
	ID          string    `gorm:"type:uuid;primaryKey"`
	ExamID      string    `gorm:"type:uuid;index:idx_attempts_pair;index:idx_attempts_active,unique,where:status = 'in_progress';not null"`
	SubjectID   string    `gorm:"index:idx_attempts_pair;index:idx_attempts_active,unique,where:status = 'in_progress';not null"`
	Status      string    `gorm:"not null"`
	StartedAt   time.Time `gorm:"not null"`
	SubmittedAt *time.Time
}

type VerificationSessionModel struct {
	ID                 string `gorm:"type:uuid;primaryKey"`
	ExamID             string `gorm:"type:uuid;index:idx_sessions_pair;not null"`
	SubjectID          string `gorm:"index:idx_sessions_pair;not null"`
	State              string `gorm:"not null"`
	Finalized          bool   `gorm:"index;not null"`
	IsAuthorized       bool   `gorm:"not null"`
	UnauthorizedReason string
	OutcomesJSON       []byte    `gorm:"type:jsonb"`
	StartedAt          time.Time `gorm:"not null"`
	FinalizedAt        *time.Time
}

type ArtifactModel struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	HashValue string    `gorm:"index;not null"`
	MediaType string    `gorm:"not null"`
	Bytes     []byte    `gorm:"type:bytea;not null"`
	CreatedAt time.Time `gorm:"not null"`
}
