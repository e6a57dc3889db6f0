package revocation

import (
	"context"
	"errors"
	"time"

	"examgate/internal/domain"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "examgate:revoked:"

type redisList struct {
	client *redis.Client
}

// NewRedisList backs the revocation list with Redis; entries expire with
// the credential so the list never needs sweeping.
func NewRedisList(addr, password string, db int) (domain.RevocationList, error) {
	if addr == "" {
		return nil, errors.New("redis addr is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &redisList{client: client}, nil
}

func (r *redisList) Revoke(ctx context.Context, credentialKey string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, keyPrefix+credentialKey, "1", ttl).Err()
}

func (r *redisList) IsRevoked(ctx context.Context, credentialKey string) (bool, error) {
	n, err := r.client.Exists(ctx, keyPrefix+credentialKey).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
