package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"examgate/internal/domain"
)

func TestStepRunner_CaptureStoresArtifact(t *testing.T) {
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	store := &memArtifactStore{}
	runner := NewStepRunner(store, fixedNow(now))

	outcome, err := runner.Capture(context.Background(), CaptureRequest{
		Step:      domain.StepFace,
		MediaType: "image/png",
		Raw:       []byte{0x89, 0x50},
		Verified:  true,
	})
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if outcome.Step != domain.StepFace || !outcome.Verified || outcome.Skipped {
		t.Fatalf("outcome = %+v", outcome)
	}
	if outcome.ArtifactRef == "" {
		t.Fatalf("capture must record an artifact reference")
	}
	if !outcome.Timestamp.Equal(now) {
		t.Fatalf("timestamp = %v, want %v", outcome.Timestamp, now)
	}
}

func TestStepRunner_CaptureStoreFailure(t *testing.T) {
	storeErr := errors.New("bucket unavailable")
	runner := NewStepRunner(&memArtifactStore{fail: storeErr}, nil)

	_, err := runner.Capture(context.Background(), CaptureRequest{
		Step: domain.StepIdentity, MediaType: "image/jpeg", Raw: []byte{0x01}, Verified: true,
	})
	if !errors.Is(err, storeErr) {
		t.Fatalf("err = %v, want wrapped store error", err)
	}
}

func TestStepRunner_Skip(t *testing.T) {
	now := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)
	runner := NewStepRunner(&memArtifactStore{}, fixedNow(now))

	outcome := runner.Skip(domain.StepIdentity)
	if !outcome.Skipped || outcome.Verified || outcome.ArtifactRef != "" {
		t.Fatalf("outcome = %+v, want skipped with no artifact", outcome)
	}
}
