package usecase

import (
	"context"
	"testing"
	"time"

	"examgate/internal/domain"
)

func TestQuotaLedger_Derivation(t *testing.T) {
	started := time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC)
	cases := []struct {
		name        string
		attempts    []domain.Attempt
		maxAttempts int
		want        domain.AttemptQuotaState
	}{
		{
			name:        "no history",
			maxAttempts: 2,
			want:        domain.AttemptQuotaState{AttemptsMade: 0, MaxAttempts: 2},
		},
		{
			name: "mixed statuses counted regardless",
			attempts: []domain.Attempt{
				{ID: "a1", ExamID: "exam-1", SubjectID: "s1", Status: domain.AttemptSubmitted, StartedAt: started},
				{ID: "a2", ExamID: "exam-1", SubjectID: "s1", Status: domain.AttemptExpired, StartedAt: started.Add(time.Hour)},
			},
			maxAttempts: 3,
			want:        domain.AttemptQuotaState{AttemptsMade: 2, MaxAttempts: 3},
		},
		{
			name: "active attempt detected",
			attempts: []domain.Attempt{
				{ID: "a1", ExamID: "exam-1", SubjectID: "s1", Status: domain.AttemptSubmitted, StartedAt: started},
				{ID: "a2", ExamID: "exam-1", SubjectID: "s1", Status: domain.AttemptInProgress, StartedAt: started.Add(time.Hour)},
			},
			maxAttempts: 3,
			want: domain.AttemptQuotaState{
				AttemptsMade:     2,
				MaxAttempts:      3,
				HasActiveAttempt: true,
				ActiveAttemptID:  "a2",
			},
		},
		{
			name: "other pairs ignored",
			attempts: []domain.Attempt{
				{ID: "a1", ExamID: "exam-2", SubjectID: "s1", Status: domain.AttemptInProgress, StartedAt: started},
				{ID: "a2", ExamID: "exam-1", SubjectID: "s2", Status: domain.AttemptInProgress, StartedAt: started},
			},
			maxAttempts: 1,
			want:        domain.AttemptQuotaState{AttemptsMade: 0, MaxAttempts: 1},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &memAttemptRepo{attempts: tc.attempts}
			ledger := NewQuotaLedger(repo)
			got, err := ledger.ComputeQuotaState(context.Background(), "exam-1", "s1", tc.maxAttempts)
			if err != nil {
				t.Fatalf("compute quota state: %v", err)
			}
			if got != tc.want {
				t.Fatalf("state = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestQuotaState_Exhausted(t *testing.T) {
	cases := []struct {
		name  string
		state domain.AttemptQuotaState
		want  bool
	}{
		{"under limit", domain.AttemptQuotaState{AttemptsMade: 1, MaxAttempts: 2}, false},
		{"at limit", domain.AttemptQuotaState{AttemptsMade: 2, MaxAttempts: 2}, true},
		{"over limit", domain.AttemptQuotaState{AttemptsMade: 5, MaxAttempts: 2}, true},
		{"unlimited sentinel", domain.AttemptQuotaState{AttemptsMade: 1000, MaxAttempts: domain.UnlimitedAttempts}, false},
		{"zero max", domain.AttemptQuotaState{AttemptsMade: 0, MaxAttempts: 0}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.state.Exhausted(); got != tc.want {
				t.Fatalf("exhausted = %v, want %v", got, tc.want)
			}
		})
	}
}
