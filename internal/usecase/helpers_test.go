package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"examgate/internal/domain"
)

// Shared in-memory fakes for the repository interfaces.

type memExamRepo struct {
	exams map[string]domain.Exam
}

func (r *memExamRepo) GetExam(_ context.Context, examID string) (*domain.Exam, error) {
	exam, ok := r.exams[examID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &exam, nil
}

type memAttemptRepo struct {
	mu       sync.Mutex
	attempts []domain.Attempt
	seq      int
}

func (r *memAttemptRepo) ListAttempts(_ context.Context, examID, subjectID string) ([]domain.Attempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Attempt
	for _, a := range r.attempts {
		if a.ExamID == examID && a.SubjectID == subjectID {
			out = append(out, a)
		}
	}
	return out, nil
}

// CreateAttemptIfAllowed mirrors the store's conditional-write guarantee:
// check and insert under one lock.
func (r *memAttemptRepo) CreateAttemptIfAllowed(_ context.Context, examID, subjectID string, maxAttempts int) (domain.Attempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, a := range r.attempts {
		if a.ExamID != examID || a.SubjectID != subjectID {
			continue
		}
		if a.Status == domain.AttemptInProgress {
			return domain.Attempt{}, domain.ErrConflict
		}
		count++
	}
	if maxAttempts != domain.UnlimitedAttempts && count >= maxAttempts {
		return domain.Attempt{}, domain.ErrConflict
	}
	r.seq++
	attempt := domain.Attempt{
		ID:        fmt.Sprintf("attempt-%d", r.seq),
		ExamID:    examID,
		SubjectID: subjectID,
		Status:    domain.AttemptInProgress,
		StartedAt: time.Now().UTC(),
	}
	r.attempts = append(r.attempts, attempt)
	return attempt, nil
}

type memSessionRepo struct {
	mu       sync.Mutex
	sessions []*domain.VerificationSession
}

func (r *memSessionRepo) GetOpen(_ context.Context, examID, subjectID string) (*domain.VerificationSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.sessions) - 1; i >= 0; i-- {
		s := r.sessions[i]
		if s.ExamID == examID && s.SubjectID == subjectID && !s.Finalized() {
			clone := *s
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memSessionRepo) GetLatestFinalized(_ context.Context, examID, subjectID string) (*domain.VerificationSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.sessions) - 1; i >= 0; i-- {
		s := r.sessions[i]
		if s.ExamID == examID && s.SubjectID == subjectID && s.Finalized() {
			clone := *s
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memSessionRepo) Save(_ context.Context, session *domain.VerificationSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *session
	for i, s := range r.sessions {
		if s.ID == session.ID {
			r.sessions[i] = &clone
			return nil
		}
	}
	r.sessions = append(r.sessions, &clone)
	return nil
}

type memArtifactStore struct {
	mu     sync.Mutex
	stored int
	fail   error
}

func (s *memArtifactStore) Store(_ context.Context, mediaType string, raw []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return "", s.fail
	}
	s.stored++
	return fmt.Sprintf("artifact-%d", s.stored), nil
}

type memRevocationList struct {
	mu      sync.Mutex
	revoked map[string]bool
}

func (l *memRevocationList) Revoke(_ context.Context, key string, _ time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.revoked == nil {
		l.revoked = make(map[string]bool)
	}
	l.revoked[key] = true
	return nil
}

func (l *memRevocationList) IsRevoked(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.revoked[key], nil
}

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func examWithSteps(steps ...domain.VerificationStepConfig) domain.Exam {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	return domain.Exam{
		ID:          "exam-1",
		Title:       "Midterm",
		StartDate:   start,
		EndDate:     start.Add(30 * 24 * time.Hour),
		MaxAttempts: 3,
		Steps:       steps,
	}
}
