package redis

// Package redis provides Redis-based adapters for cross-instance auth event
// fan-out and durable UI preference storage.

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/target/studio-ui-auth/internal/errors"
)

// PrefsStore implements ports.PrefsStore as a Redis hash per user. Only a
// small non-sensitive slice of UI state belongs here; sessions and the
// authentication flag are never written.
type PrefsStore struct {
	client redis.UniversalClient
	prefix string
}

// NewPrefsStore creates a preference store with the default key prefix.
func NewPrefsStore(client redis.UniversalClient) *PrefsStore {
	return &PrefsStore{client: client, prefix: "prefs:"}
}

// NewPrefsStoreWithPrefix creates a preference store with a custom key prefix.
func NewPrefsStoreWithPrefix(client redis.UniversalClient, prefix string) *PrefsStore {
	return &PrefsStore{client: client, prefix: prefix}
}

func (s *PrefsStore) key(userID string) string {
	return s.prefix + userID
}

// Get returns the stored value for the key, or a not-found error.
func (s *PrefsStore) Get(ctx context.Context, userID, key string) (string, error) {
	if userID == "" || key == "" {
		return "", apperrors.Validation("user ID and key are required")
	}

	val, err := s.client.HGet(ctx, s.key(userID), key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", apperrors.NotFoundf("preference %q not set", key)
		}
		return "", fmt.Errorf("redis hget: %w", err)
	}
	return val, nil
}

// Set stores the value under the user's preference hash.
func (s *PrefsStore) Set(ctx context.Context, userID, key, value string) error {
	if userID == "" || key == "" {
		return apperrors.Validation("user ID and key are required")
	}
	if err := s.client.HSet(ctx, s.key(userID), key, value).Err(); err != nil {
		return fmt.Errorf("redis hset: %w", err)
	}
	return nil
}

// Delete removes the key from the user's preference hash. Deleting an absent
// key is not an error.
func (s *PrefsStore) Delete(ctx context.Context, userID, key string) error {
	if userID == "" || key == "" {
		return nil
	}
	if err := s.client.HDel(ctx, s.key(userID), key).Err(); err != nil {
		return fmt.Errorf("redis hdel: %w", err)
	}
	return nil
}
