package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// ClaimStore implements ports.CompletionClaimStore using Redis SET NX.
type ClaimStore struct {
	client *goredis.Client
	prefix string
}

// NewClaimStore creates a new Redis-backed completion claim store.
func NewClaimStore(client *goredis.Client) *ClaimStore {
	return &ClaimStore{
		client: client,
		prefix: "claim:",
	}
}

// Claim atomically takes ownership of orderID. Only the first caller within
// ttl gets true.
func (s *ClaimStore) Claim(ctx context.Context, orderID string, ttl time.Duration) (bool, error) {
	result, err := s.client.SetArgs(ctx, s.prefix+orderID, 1, goredis.SetArgs{
		Mode: "NX",
		TTL:  ttl,
	}).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			// Someone else holds the claim
			return false, nil
		}
		return false, fmt.Errorf("redis claim: %w", err)
	}
	return result == "OK", nil
}

// Release drops a claim so the order can be retried.
func (s *ClaimStore) Release(ctx context.Context, orderID string) error {
	if err := s.client.Del(ctx, s.prefix+orderID).Err(); err != nil {
		return fmt.Errorf("redis claim release: %w", err)
	}
	return nil
}
