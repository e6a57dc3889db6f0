package usecase

import (
	"context"

	"examgate/internal/domain"
)

type ExamRepository interface {
	GetExam(ctx context.Context, examID string) (*domain.Exam, error)
}

type AttemptRepository interface {
	ListAttempts(ctx context.Context, examID, subjectID string) ([]domain.Attempt, error)
	// CreateAttemptIfAllowed inserts a new in-progress attempt only if the
	// subject has no active attempt and the quota is not exceeded. The check
	// and insert are atomic at the store; a losing concurrent start gets
	// domain.ErrConflict.
	CreateAttemptIfAllowed(ctx context.Context, examID, subjectID string, maxAttempts int) (domain.Attempt, error)
}

type VerificationSessionRepository interface {
	// GetOpen returns the unfinalized session for the pair, or
	// domain.ErrNotFound.
	GetOpen(ctx context.Context, examID, subjectID string) (*domain.VerificationSession, error)
	// GetLatestFinalized returns the most recently completed session for
	// the pair, or domain.ErrNotFound.
	GetLatestFinalized(ctx context.Context, examID, subjectID string) (*domain.VerificationSession, error)
	Save(ctx context.Context, session *domain.VerificationSession) error
}

type ArtifactStore interface {
	Store(ctx context.Context, mediaType string, raw []byte) (ref string, err error)
}

type SecretProvider interface {
	SigningKey() ([]byte, error)
}

// CredentialSigner computes and checks the signature over a credential's
// payload. The signature must cover every field, device fingerprint
// included.
type CredentialSigner interface {
	Sign(cred domain.SessionCredential) []byte
	Verify(cred domain.SessionCredential) bool
}
