package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationStore keeps revoked token ids and per-user revocation cutoffs.
// Every key expires once no token it could match is still valid.
//
// Key formats:
//
//	revoked:jti:<token id>       -> "1"
//	revoked:before:<username>    -> unix seconds
type RevocationStore struct {
	client redis.Cmdable
}

func NewRevocationStore(client redis.Cmdable) *RevocationStore {
	return &RevocationStore{client: client}
}

func (s *RevocationStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if err := s.client.Set(ctx, jtiKey(tokenID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (s *RevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, jtiKey(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("revocation check: %w", err)
	}
	return n > 0, nil
}

func (s *RevocationStore) RevokeBefore(ctx context.Context, subject string, cutoff time.Time, ttl time.Duration) error {
	if err := s.client.Set(ctx, cutoffKey(subject), strconv.FormatInt(cutoff.Unix(), 10), ttl).Err(); err != nil {
		return fmt.Errorf("revoke before: %w", err)
	}
	return nil
}

// RevokedBefore returns the zero time when no cutoff is set.
func (s *RevocationStore) RevokedBefore(ctx context.Context, subject string) (time.Time, error) {
	v, err := s.client.Get(ctx, cutoffKey(subject)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("revocation cutoff: %w", err)
	}
	sec, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("revocation cutoff: malformed value %q", v)
	}
	return time.Unix(sec, 0).UTC(), nil
}

func jtiKey(tokenID string) string { return "revoked:jti:" + tokenID }
func cutoffKey(subject string) string { return "revoked:before:" + subject }
