package jobs

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/codeatlas/codeatlas/pkg/errors"
)

const redisKeyPrefix = "codeatlas:job:"

// RedisStore is a Redis-backed job store for multi-instance deployments,
// where the API replica answering a status poll may not be the one that ran
// the job. Jobs are stored as JSON with a TTL; Redis handles expiration.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to Redis at the given address (host:port) and
// verifies the connection with a ping.
func NewRedisStore(ctx context.Context, addr string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "failed to connect to redis at %s", addr)
	}
	return &RedisStore{client: client, ttl: DefaultTTL}, nil
}

// NewRedisStoreFromClient wraps an existing Redis client.
func NewRedisStoreFromClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, ttl: DefaultTTL}
}

// Create persists a new job.
func (s *RedisStore) Create(ctx context.Context, job *Job) error {
	return s.set(ctx, job)
}

// Get retrieves a job by ID.
func (s *RedisStore) Get(ctx context.Context, id string) (*Job, error) {
	data, err := s.client.Get(ctx, redisKeyPrefix+id).Bytes()
	if err == redis.Nil {
		return nil, errors.New(errors.ErrCodeJobNotFound, "job %q not found", id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "failed to read job %q", id)
	}

	var job Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "failed to decode job %q", id)
	}
	return &job, nil
}

// Update persists the job's current state.
func (s *RedisStore) Update(ctx context.Context, job *Job) error {
	return s.set(ctx, job)
}

// Close closes the underlying Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) set(ctx context.Context, job *Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "failed to encode job %q", job.ID)
	}
	if err := s.client.Set(ctx, redisKeyPrefix+job.ID, data, s.ttl).Err(); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "failed to write job %q", job.ID)
	}
	return nil
}

var _ Store = (*RedisStore)(nil)
