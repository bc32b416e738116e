package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// DefaultThreadTTL bounds how long an idle justification thread survives.
const DefaultThreadTTL = 24 * time.Hour

// ThreadStore is the durable per-thread message log. History trimming is
// performed by replacing the whole log, so Replace is deliberately the
// only write: truncated messages are unrecoverable by design.
type ThreadStore interface {
	// Load returns the thread's message log. An unknown thread is an
	// empty log, not an error: the manager treats it as a first turn.
	Load(ctx context.Context, threadID string) ([]ChatMessage, error)
	// Replace overwrites the thread's message log.
	Replace(ctx context.Context, threadID string, history []ChatMessage) error
}

// RedisThreadStore keeps each thread's log as one JSON blob in Redis.
type RedisThreadStore struct {
	redis  *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
}

// NewRedisThreadStore creates a thread store over the given Redis client.
// A non-positive ttl falls back to DefaultThreadTTL.
func NewRedisThreadStore(client *redis.Client, ttl time.Duration, tracer trace.Tracer) *RedisThreadStore {
	if client == nil {
		panic("conversation: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = DefaultThreadTTL
	}
	if tracer == nil {
		tracer = otel.Tracer("copilot.internal.conversation.threads")
	}
	return &RedisThreadStore{redis: client, ttl: ttl, tracer: tracer}
}

func (s *RedisThreadStore) Load(ctx context.Context, threadID string) ([]ChatMessage, error) {
	ctx, span := s.tracer.Start(ctx, "conversation.load_thread")
	defer span.End()

	data, err := s.redis.Get(ctx, threadKey(threadID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: failed to load thread %s: %w", threadID, err)
	}

	var history []ChatMessage
	if err := json.Unmarshal(data, &history); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("conversation: failed to decode thread %s: %w", threadID, err)
	}
	return history, nil
}

func (s *RedisThreadStore) Replace(ctx context.Context, threadID string, history []ChatMessage) error {
	ctx, span := s.tracer.Start(ctx, "conversation.replace_thread")
	defer span.End()

	data, err := json.Marshal(history)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: failed to marshal thread %s: %w", threadID, err)
	}
	if err := s.redis.Set(ctx, threadKey(threadID), data, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("conversation: failed to persist thread %s: %w", threadID, err)
	}
	return nil
}

func threadKey(id string) string {
	return fmt.Sprintf("thread:%s", id)
}
