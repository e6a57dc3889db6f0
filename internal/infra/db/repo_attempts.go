package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"examgate/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AttemptRepository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{db: db, now: time.Now}
}

func (r *AttemptRepository) ListAttempts(ctx context.Context, examID, subjectID string) ([]domain.Attempt, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var models []AttemptModel
	err := r.db.WithContext(ctx).
		Where("exam_id = ? AND subject_id = ?", examID, subjectID).
		Order("started_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	attempts := make([]domain.Attempt, 0, len(models))
	for _, m := range models {
		attempts = append(attempts, attemptFromModel(m))
	}
	return attempts, nil
}

// CreateAttemptIfAllowed is the atomic "insert if no active attempt and
// quota not exceeded" write. The transaction locks the pair's attempt rows
// and re-counts; the partial unique index on in-progress attempts backstops
// the no-rows case, where row locks cannot exclude a concurrent insert.
func (r *AttemptRepository) CreateAttemptIfAllowed(ctx context.Context, examID, subjectID string, maxAttempts int) (domain.Attempt, error) {
	if r.db == nil {
		return domain.Attempt{}, errDBUnavailable
	}
	attempt := domain.Attempt{
		ID:        uuid.NewString(),
		ExamID:    examID,
		SubjectID: subjectID,
		Status:    domain.AttemptInProgress,
		StartedAt: r.now().UTC(),
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var history []AttemptModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("exam_id = ? AND subject_id = ?", examID, subjectID).
			Find(&history).Error; err != nil {
			return fmt.Errorf("lock attempts: %w", err)
		}
		for _, m := range history {
			if m.Status == string(domain.AttemptInProgress) {
				return domain.ErrConflict
			}
		}
		if maxAttempts != domain.UnlimitedAttempts && len(history) >= maxAttempts {
			return domain.ErrConflict
		}
		model := AttemptModel{
			ID:        attempt.ID,
			ExamID:    attempt.ExamID,
			SubjectID: attempt.SubjectID,
			Status:    string(attempt.Status),
			StartedAt: attempt.StartedAt,
		}
		return tx.Create(&model).Error
	})
	if errors.Is(err, domain.ErrConflict) || errors.Is(err, gorm.ErrDuplicatedKey) {
		return domain.Attempt{}, domain.ErrConflict
	}
	if err != nil {
		return domain.Attempt{}, fmt.Errorf("create attempt: %w", err)
	}
	return attempt, nil
}

// MarkSubmitted closes an in-progress attempt.
func (r *AttemptRepository) MarkSubmitted(ctx context.Context, attemptID string) error {
	if r.db == nil {
		return errDBUnavailable
	}
	submittedAt := r.now().UTC()
	result := r.db.WithContext(ctx).Model(&AttemptModel{}).
		Where("id = ? AND status = ?", attemptID, string(domain.AttemptInProgress)).
		Updates(map[string]any{
			"status":       string(domain.AttemptSubmitted),
			"submitted_at": submittedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("mark submitted: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func attemptFromModel(m AttemptModel) domain.Attempt {
	return domain.Attempt{
		ID:          m.ID,
		ExamID:      m.ExamID,
		SubjectID:   m.SubjectID,
		Status:      domain.AttemptStatus(m.Status),
		StartedAt:   m.StartedAt,
		SubmittedAt: m.SubmittedAt,
	}
}
