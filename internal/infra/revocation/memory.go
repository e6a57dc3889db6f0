package revocation

import (
	"context"
	"sync"
	"time"

	"examgate/internal/domain"
)

type memoryList struct {
	mu   sync.Mutex
	now  func() time.Time
	data map[string]time.Time
}

func NewMemoryList(now func() time.Time) domain.RevocationList {
	if now == nil {
		now = time.Now
	}
	return &memoryList{now: now, data: make(map[string]time.Time)}
}

func (m *memoryList) Revoke(_ context.Context, credentialKey string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[credentialKey] = m.now().Add(ttl)
	return nil
}

func (m *memoryList) IsRevoked(_ context.Context, credentialKey string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	expiry, ok := m.data[credentialKey]
	if !ok {
		return false, nil
	}
	if m.now().After(expiry) {
		delete(m.data, credentialKey)
		return false, nil
	}
	return true, nil
}
