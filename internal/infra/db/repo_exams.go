package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"examgate/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ExamRepository struct {
	db *gorm.DB
}

func NewExamRepository(db *gorm.DB) *ExamRepository {
	return &ExamRepository{db: db}
}

func (r *ExamRepository) GetExam(ctx context.Context, examID string) (*domain.Exam, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	var model ExamModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", examID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load exam: %w", err)
	}
	return examFromModel(model)
}

func (r *ExamRepository) CreateExam(ctx context.Context, exam domain.Exam) (domain.Exam, error) {
	if r.db == nil {
		return domain.Exam{}, errDBUnavailable
	}
	if exam.ID == "" {
		exam.ID = uuid.NewString()
	}
	stepsJSON, err := json.Marshal(exam.Steps)
	if err != nil {
		return domain.Exam{}, fmt.Errorf("encode step config: %w", err)
	}
	model := ExamModel{
		ID:          exam.ID,
		Title:       exam.Title,
		StartDate:   exam.StartDate.UTC(),
		EndDate:     exam.EndDate.UTC(),
		MaxAttempts: exam.MaxAttempts,
		StepsJSON:   stepsJSON,
		CreatedAt:   time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.Exam{}, domain.ErrConflict
		}
		return domain.Exam{}, fmt.Errorf("create exam: %w", err)
	}
	return exam, nil
}

func examFromModel(model ExamModel) (*domain.Exam, error) {
	var steps []domain.VerificationStepConfig
	if len(model.StepsJSON) > 0 {
		if err := json.Unmarshal(model.StepsJSON, &steps); err != nil {
			return nil, fmt.Errorf("decode step config: %w", err)
		}
	}
	return &domain.Exam{
		ID:          model.ID,
		Title:       model.Title,
		StartDate:   model.StartDate,
		EndDate:     model.EndDate,
		MaxAttempts: model.MaxAttempts,
		Steps:       steps,
	}, nil
}
