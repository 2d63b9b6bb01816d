// Package cache keeps the precomputed due-fee digest in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/segyhp/feedesk/internal/domain"
	customError "github.com/segyhp/feedesk/pkg/errors"
)

// DigestKey is the single key the latest digest lives under
const DigestKey = "feedesk:digest:due-fees"

type DigestStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewDigestStore(client *redis.Client, ttl time.Duration) *DigestStore {
	return &DigestStore{client: client, ttl: ttl}
}

// Save replaces the stored digest; it expires after the configured TTL
func (s *DigestStore) Save(ctx context.Context, digest *domain.Digest) error {
	payload, err := json.Marshal(digest)
	if err != nil {
		return fmt.Errorf("encode digest: %w", err)
	}

	if err := s.client.Set(ctx, DigestKey, payload, s.ttl).Err(); err != nil {
		return customError.WrapCacheError(err)
	}
	return nil
}

// Latest returns the stored digest, or a DIGEST_NOT_FOUND error when none is cached
func (s *DigestStore) Latest(ctx context.Context) (*domain.Digest, error) {
	payload, err := s.client.Get(ctx, DigestKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, customError.WrapDigestNotFound()
		}
		return nil, customError.WrapCacheError(err)
	}

	var digest domain.Digest
	if err := json.Unmarshal(payload, &digest); err != nil {
		return nil, customError.WrapCacheError(fmt.Errorf("decode digest: %w", err))
	}
	return &digest, nil
}

func (s *DigestStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
