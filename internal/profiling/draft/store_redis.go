package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"offsite/internal/profiling/models"
	"offsite/pkg/platform/sentinel"
)

// RedisStore persists the draft slots in Redis. Recommended where several
// portal instances must share the saved draft.
type RedisStore struct {
	client *redis.Client
	clock  func() time.Time
}

// RedisStoreOption configures a RedisStore instance.
type RedisStoreOption func(*RedisStore)

// WithRedisClock sets the clock used for envelope timestamps, for tests.
func WithRedisClock(clock func() time.Time) RedisStoreOption {
	return func(s *RedisStore) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func NewRedisStore(client *redis.Client, opts ...RedisStoreOption) *RedisStore {
	s := &RedisStore{client: client, clock: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *RedisStore) SaveDraft(ctx context.Context, record *models.ProfilingRecord) error {
	raw, err := json.Marshal(Envelope{Version: EnvelopeVersion, SavedAt: s.clock(), Record: record})
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	// No expiry: a draft stays until overwritten or the record is submitted.
	return s.client.Set(ctx, DraftKey, raw, 0).Err()
}

func (s *RedisStore) LoadDraft(ctx context.Context) (*models.ProfilingRecord, error) {
	raw, err := s.client.Get(ctx, DraftKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load draft: %w", err)
	}
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode draft: %w", err)
	}
	return env.Record, nil
}

func (s *RedisStore) DeleteDraft(ctx context.Context) error {
	return s.client.Del(ctx, DraftKey).Err()
}

func (s *RedisStore) SaveCompanyID(ctx context.Context, companyID string) error {
	return s.client.Set(ctx, CompanyIDKey, companyID, 0).Err()
}

func (s *RedisStore) LoadCompanyID(ctx context.Context) (string, error) {
	v, err := s.client.Get(ctx, CompanyIDKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", sentinel.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("load company id: %w", err)
	}
	return v, nil
}
