package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/eldtechnologies/wiremail/internal/models"
)

const (
	inboxTTL      = 7 * 24 * time.Hour
	recentSetSize = 100
)

// RedisStore caches recently relayed emails per inbox and backs the HTTP
// rate limiter. It is a best-effort layer on top of the durable store, never
// the source of truth.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a new Redis store.
func NewRedisStore(ctx context.Context, redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisStore{client: client}, nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping checks the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Client exposes the underlying client for the rate limiter middleware.
func (s *RedisStore) Client() *redis.Client {
	return s.client
}

// inboxKey returns the key for an address's recent-email sorted set.
func inboxKey(address string) string {
	return fmt.Sprintf("inbox:%s:recent", address)
}

// CacheEmail adds a stored email to the recipient's recent-inbox cache.
func (s *RedisStore) CacheEmail(ctx context.Context, email *models.Email) error {
	data, err := json.Marshal(email)
	if err != nil {
		return err
	}

	key := inboxKey(email.To)

	pipe := s.client.Pipeline()
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(email.CreatedAt.UnixMilli()),
		Member: string(data),
	})
	// Keep the set bounded; trim everything below the newest N entries.
	pipe.ZRemRangeByRank(ctx, key, 0, int64(-recentSetSize-1))
	pipe.Expire(ctx, key, inboxTTL)
	_, err = pipe.Exec(ctx)
	return err
}

// GetRecentEmails retrieves the most recently cached emails for an address,
// newest first.
func (s *RedisStore) GetRecentEmails(ctx context.Context, address string, limit int) ([]models.Email, error) {
	if limit <= 0 {
		limit = recentSetSize
	}

	key := inboxKey(address)
	results, err := s.client.ZRevRange(ctx, key, 0, int64(limit)-1).Result()
	if err != nil {
		return nil, err
	}

	emails := make([]models.Email, 0, len(results))
	for _, data := range results {
		var email models.Email
		if err := json.Unmarshal([]byte(data), &email); err != nil {
			continue
		}
		emails = append(emails, email)
	}

	return emails, nil
}
