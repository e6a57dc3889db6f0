package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"examgate/internal/domain"
)

// AttemptService runs the full authorization pipeline for a subject
// against an exam and, on allow, creates the attempt through the atomic
// conditional insert.
type AttemptService struct {
	exams        ExamRepository
	attempts     AttemptRepository
	ledger       *QuotaLedger
	orchestrator *VerificationOrchestrator
	now          func() time.Time
}

func NewAttemptService(exams ExamRepository, attempts AttemptRepository, ledger *QuotaLedger, orchestrator *VerificationOrchestrator, now func() time.Time) *AttemptService {
	if now == nil {
		now = time.Now
	}
	return &AttemptService{
		exams:        exams,
		attempts:     attempts,
		ledger:       ledger,
		orchestrator: orchestrator,
		now:          now,
	}
}

// Authorize computes the verdict for the pair without side effects.
func (s *AttemptService) Authorize(ctx context.Context, examID, subjectID string, credential domain.CredentialVerdict) (domain.AuthorizationVerdict, error) {
	exam, err := s.exams.GetExam(ctx, examID)
	if err != nil {
		return domain.AuthorizationVerdict{}, fmt.Errorf("load exam: %w", err)
	}
	quota, err := s.ledger.ComputeQuotaState(ctx, exam.ID, subjectID, exam.MaxAttempts)
	if err != nil {
		return domain.AuthorizationVerdict{}, err
	}
	verification, err := s.orchestrator.Verdict(ctx, *exam, subjectID)
	if err != nil {
		return domain.AuthorizationVerdict{}, err
	}
	return AuthorizeAttempt(*exam, s.now(), credential, verification, quota), nil
}

// StartAttempt authorizes and then creates the attempt record. The
// engine's verdict is advisory; the store re-validates atomically, and a
// losing concurrent start surfaces as ResumeActiveAttempt rather than a
// hard failure, since the practical effect is identical to having resumed.
func (s *AttemptService) StartAttempt(ctx context.Context, examID, subjectID string, credential domain.CredentialVerdict) (domain.AuthorizationVerdict, *domain.Attempt, error) {
	verdict, err := s.Authorize(ctx, examID, subjectID, credential)
	if err != nil {
		return domain.AuthorizationVerdict{}, nil, err
	}
	if verdict.Decision != domain.DecisionAllowNew {
		return verdict, nil, nil
	}

	exam, err := s.exams.GetExam(ctx, examID)
	if err != nil {
		return domain.AuthorizationVerdict{}, nil, fmt.Errorf("load exam: %w", err)
	}
	attempt, err := s.attempts.CreateAttemptIfAllowed(ctx, exam.ID, subjectID, exam.MaxAttempts)
	if errors.Is(err, domain.ErrConflict) {
		return domain.AuthorizationVerdict{
			Decision: domain.DecisionResumeActive,
			Reason:   "active attempt open",
		}, nil, nil
	}
	if err != nil {
		return domain.AuthorizationVerdict{}, nil, fmt.Errorf("create attempt: %w", err)
	}
	return verdict, &attempt, nil
}
