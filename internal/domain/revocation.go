package domain

import (
	"context"
	"time"
)

// RevocationList tracks explicitly revoked credentials until their natural
// expiry. Entries past ttl are free to disappear; an expired credential
// fails verification on its own.
type RevocationList interface {
	Revoke(ctx context.Context, credentialKey string, ttl time.Duration) error
	IsRevoked(ctx context.Context, credentialKey string) (bool, error)
}
