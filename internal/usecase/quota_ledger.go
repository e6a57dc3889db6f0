package usecase

import (
	"context"
	"fmt"

	"examgate/internal/domain"
)

// QuotaLedger derives the attempt quota state for one (exam, subject) pair
// from the attempt history store. Pure read; safe to call repeatedly and
// concurrently. The result is advisory: attempt creation re-validates
// atomically at write time.
type QuotaLedger struct {
	attempts AttemptRepository
}

func NewQuotaLedger(attempts AttemptRepository) *QuotaLedger {
	return &QuotaLedger{attempts: attempts}
}

func (l *QuotaLedger) ComputeQuotaState(ctx context.Context, examID, subjectID string, maxAttempts int) (domain.AttemptQuotaState, error) {
	history, err := l.attempts.ListAttempts(ctx, examID, subjectID)
	if err != nil {
		return domain.AttemptQuotaState{}, fmt.Errorf("list attempts: %w", err)
	}
	state := domain.AttemptQuotaState{
		AttemptsMade: len(history),
		MaxAttempts:  maxAttempts,
	}
	for _, attempt := range history {
		if attempt.Status == domain.AttemptInProgress {
			state.HasActiveAttempt = true
			state.ActiveAttemptID = attempt.ID
			break
		}
	}
	return state, nil
}
