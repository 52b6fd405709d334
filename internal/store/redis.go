package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/couchcryptid/soacha-risk-dashboard/internal/domain"
	"github.com/go-redis/redis/v8"
)

// RedisStore keeps the document as a single JSON value under one key.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore returns a store that reads and writes key on client.
func NewRedisStore(client *redis.Client, key string) *RedisStore {
	return &RedisStore{client: client, key: key}
}

// Load reads the document. A missing key yields an empty document.
func (s *RedisStore) Load(ctx context.Context) (domain.Document, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.NewDocument(), nil
	}
	if err != nil {
		return domain.Document{}, fmt.Errorf("redis get %s: %w", s.key, err)
	}
	return decodeDocument(data)
}

// Save replaces the document with a single SET.
func (s *RedisStore) Save(ctx context.Context, doc domain.Document) error {
	data, err := encodeDocument(doc)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key, err)
	}
	return nil
}

// Ping checks the connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the client connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
