package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"examgate/internal/domain"
)

func newTestAttemptService(t *testing.T, exam domain.Exam, attempts *memAttemptRepo, now time.Time) *AttemptService {
	t.Helper()
	exams := &memExamRepo{exams: map[string]domain.Exam{exam.ID: exam}}
	sessions := &memSessionRepo{}
	runner := NewStepRunner(&memArtifactStore{}, fixedNow(now))
	orchestrator := NewVerificationOrchestrator(sessions, runner, fixedNow(now))
	ledger := NewQuotaLedger(attempts)
	return NewAttemptService(exams, attempts, ledger, orchestrator, fixedNow(now))
}

func TestAttemptService_AllowCreatesAttempt(t *testing.T) {
	now := examStart.Add(30 * time.Minute)
	repo := &memAttemptRepo{}
	svc := newTestAttemptService(t, windowedExam(1), repo, now)

	verdict, attempt, err := svc.StartAttempt(context.Background(), "exam-1", "student-1", validCredential())
	if err != nil {
		t.Fatalf("start attempt: %v", err)
	}
	if verdict.Decision != domain.DecisionAllowNew {
		t.Fatalf("decision = %s, want allow", verdict.Decision)
	}
	if attempt == nil || attempt.Status != domain.AttemptInProgress {
		t.Fatalf("attempt = %+v, want in-progress record", attempt)
	}
}

func TestAttemptService_DenyDoesNotCreate(t *testing.T) {
	now := examStart.Add(-time.Hour)
	repo := &memAttemptRepo{}
	svc := newTestAttemptService(t, windowedExam(1), repo, now)

	verdict, attempt, err := svc.StartAttempt(context.Background(), "exam-1", "student-1", validCredential())
	if err != nil {
		t.Fatalf("start attempt: %v", err)
	}
	if verdict.Decision != domain.DecisionDeny || attempt != nil {
		t.Fatalf("verdict = %+v attempt = %+v, want deny without record", verdict, attempt)
	}
	history, _ := repo.ListAttempts(context.Background(), "exam-1", "student-1")
	if len(history) != 0 {
		t.Fatalf("denied start must not write an attempt")
	}
}

func TestAttemptService_ActiveAttemptResumes(t *testing.T) {
	now := examStart.Add(30 * time.Minute)
	repo := &memAttemptRepo{attempts: []domain.Attempt{
		{ID: "a1", ExamID: "exam-1", SubjectID: "student-1", Status: domain.AttemptInProgress, StartedAt: now.Add(-time.Minute)},
	}}
	svc := newTestAttemptService(t, windowedExam(1), repo, now)

	verdict, attempt, err := svc.StartAttempt(context.Background(), "exam-1", "student-1", validCredential())
	if err != nil {
		t.Fatalf("start attempt: %v", err)
	}
	if verdict.Decision != domain.DecisionResumeActive || attempt != nil {
		t.Fatalf("verdict = %+v attempt = %+v, want resume without new record", verdict, attempt)
	}
}

func TestAttemptService_ConflictSurfacesAsResume(t *testing.T) {
	// The engine's verdict is advisory: between authorize and insert,
	// another request may have created the active attempt. The conditional
	// write reports the conflict and the caller sees a resume, not an
	// error.
	now := examStart.Add(30 * time.Minute)
	repo := &memAttemptRepo{}
	svc := newTestAttemptService(t, windowedExam(5), repo, now)
	ctx := context.Background()

	if _, _, err := svc.StartAttempt(ctx, "exam-1", "student-1", validCredential()); err != nil {
		t.Fatalf("first start: %v", err)
	}
	verdict, attempt, err := svc.StartAttempt(ctx, "exam-1", "student-1", validCredential())
	if err != nil {
		t.Fatalf("second start: %v", err)
	}
	if verdict.Decision != domain.DecisionResumeActive || attempt != nil {
		t.Fatalf("verdict = %+v attempt = %+v, want resume", verdict, attempt)
	}
}

func TestAttemptService_ConcurrentStartsCreateOneAttempt(t *testing.T) {
	// The main correctness hazard: two simultaneous authorized starts for
	// the same pair. The store's atomic conditional write, not the engine,
	// is the enforcement point.
	now := examStart.Add(30 * time.Minute)
	repo := &memAttemptRepo{}
	svc := newTestAttemptService(t, windowedExam(10), repo, now)
	ctx := context.Background()

	const workers = 16
	var wg sync.WaitGroup
	created := make(chan string, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, attempt, err := svc.StartAttempt(ctx, "exam-1", "student-1", validCredential())
			if err != nil {
				t.Errorf("start attempt: %v", err)
				return
			}
			if attempt != nil {
				created <- attempt.ID
			}
		}()
	}
	wg.Wait()
	close(created)

	var ids []string
	for id := range created {
		ids = append(ids, id)
	}
	if len(ids) != 1 {
		t.Fatalf("expected exactly one created attempt, got %d (%v)", len(ids), ids)
	}
	history, _ := repo.ListAttempts(ctx, "exam-1", "student-1")
	if len(history) != 1 {
		t.Fatalf("expected one attempt record, got %d", len(history))
	}
}

func TestAttemptService_VerificationGatesNewAttempt(t *testing.T) {
	now := examStart.Add(30 * time.Minute)
	repo := &memAttemptRepo{}
	exam := windowedExam(2, domain.VerificationStepConfig{Kind: domain.StepIdentity, Enabled: true, Required: true})
	svc := newTestAttemptService(t, exam, repo, now)
	ctx := context.Background()

	verdict, err := svc.Authorize(ctx, "exam-1", "student-1", validCredential())
	if err != nil {
		t.Fatalf("authorize: %v", err)
	}
	if verdict.Decision != domain.DecisionDeny {
		t.Fatalf("decision = %s, want deny while verification incomplete", verdict.Decision)
	}

	if _, err := svc.orchestrator.SubmitCapture(ctx, exam, "student-1", CaptureRequest{
		Step: domain.StepIdentity, MediaType: "image/jpeg", Raw: []byte{0x01}, Verified: true,
	}); err != nil {
		t.Fatalf("capture: %v", err)
	}

	verdict, err = svc.Authorize(ctx, "exam-1", "student-1", validCredential())
	if err != nil {
		t.Fatalf("authorize: %v", err)
	}
	if verdict.Decision != domain.DecisionAllowNew {
		t.Fatalf("decision = %s, want allow after verification", verdict.Decision)
	}
}
