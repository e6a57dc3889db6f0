package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"examgate/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VerificationSessionRepository struct {
	db *gorm.DB
}

func NewVerificationSessionRepository(db *gorm.DB) *VerificationSessionRepository {
	return &VerificationSessionRepository{db: db}
}

func (r *VerificationSessionRepository) GetOpen(ctx context.Context, examID, subjectID string) (*domain.VerificationSession, error) {
	return r.getWhere(ctx, "exam_id = ? AND subject_id = ? AND finalized = ?", examID, subjectID, false)
}

func (r *VerificationSessionRepository) GetLatestFinalized(ctx context.Context, examID, subjectID string) (*domain.VerificationSession, error) {
	return r.getWhere(ctx, "exam_id = ? AND subject_id = ? AND finalized = ?", examID, subjectID, true)
}

func (r *VerificationSessionRepository) getWhere(ctx context.Context, query string, args ...any) (*domain.VerificationSession, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model VerificationSessionModel
	err := r.db.WithContext(ctx).
		Where(query, args...).
		Order("started_at DESC").
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load verification session: %w", err)
	}
	return sessionFromModel(model)
}

// Save upserts the session by ID. Finalized sessions are written once and
// never updated afterwards; the orchestrator guarantees that.
func (r *VerificationSessionRepository) Save(ctx context.Context, session *domain.VerificationSession) error {
	if r.db == nil {
		return errDBUnavailable
	}
	outcomesJSON, err := json.Marshal(session.Outcomes)
	if err != nil {
		return fmt.Errorf("encode outcomes: %w", err)
	}
	model := VerificationSessionModel{
		ID:                 session.ID,
		ExamID:             session.ExamID,
		SubjectID:          session.SubjectID,
		State:              string(session.State),
		Finalized:          session.Finalized(),
		IsAuthorized:       session.IsAuthorized,
		UnauthorizedReason: session.UnauthorizedReason,
		OutcomesJSON:       outcomesJSON,
		StartedAt:          session.StartedAt,
		FinalizedAt:        session.FinalizedAt,
	}
	err = r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&model).Error
	if err != nil {
		return fmt.Errorf("save verification session: %w", err)
	}
	return nil
}

func sessionFromModel(model VerificationSessionModel) (*domain.VerificationSession, error) {
	var outcomes []domain.VerificationOutcome
	if len(model.OutcomesJSON) > 0 {
		if err := json.Unmarshal(model.OutcomesJSON, &outcomes); err != nil {
			return nil, fmt.Errorf("decode outcomes: %w", err)
		}
	}
	return &domain.VerificationSession{
		ID:                 model.ID,
		ExamID:             model.ExamID,
		SubjectID:          model.SubjectID,
		State:              domain.SessionState(model.State),
		Outcomes:           outcomes,
		IsAuthorized:       model.IsAuthorized,
		UnauthorizedReason: model.UnauthorizedReason,
		StartedAt:          model.StartedAt,
		FinalizedAt:        model.FinalizedAt,
	}, nil
}
