// internal/convo/store.go
package convo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"sales-assistant/internal/common/config"
	"sales-assistant/internal/common/logger"
)

// State is the conversational context of one session.
type State struct {
	Pending        string
	LastSuccessful string
	LastAttempted  string
}

// Store keeps per-session conversational context in Redis. Every write
// refreshes the session TTL, so context expires together after a quiet
// period instead of field by field.
type Store struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger logger.Logger
}

func NewStore(client *redis.Client, cfg config.SessionConfig, log logger.Logger) *Store {
	return &Store{
		client: client,
		prefix: cfg.KeyPrefix,
		ttl:    cfg.GetTTL(),
		logger: log,
	}
}

// NewSessionID mints an identifier for a fresh conversation.
func NewSessionID() string {
	return uuid.NewString()
}

func (s *Store) key(sessionID, field string) string {
	return fmt.Sprintf("%s:%s:%s", s.prefix, sessionID, field)
}

// Load reads the full conversational state for a session. Missing
// fields come back empty, never as errors.
func (s *Store) Load(ctx context.Context, sessionID string) (*State, error) {
	state := &State{}
	fields := []struct {
		name string
		dst  *string
	}{
		{"pending", &state.Pending},
		{"success", &state.LastSuccessful},
		{"attempted", &state.LastAttempted},
	}
	for _, f := range fields {
		val, err := s.client.Get(ctx, s.key(sessionID, f.name)).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("load session %s: %w", sessionID, err)
		}
		*f.dst = val
	}
	return state, nil
}

// SetPending records a query waiting on clarification.
func (s *Store) SetPending(ctx context.Context, sessionID, query string) error {
	return s.client.Set(ctx, s.key(sessionID, "pending"), query, s.ttl).Err()
}

// ClearPending drops the outstanding clarification.
func (s *Store) ClearPending(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, s.key(sessionID, "pending")).Err()
}

// SetLastSuccessful records the query text a handler answered. The
// attempted marker is cleared since the conversation moved on.
func (s *Store) SetLastSuccessful(ctx context.Context, sessionID, query string) error {
	if err := s.client.Set(ctx, s.key(sessionID, "success"), query, s.ttl).Err(); err != nil {
		return err
	}
	return s.client.Del(ctx, s.key(sessionID, "attempted")).Err()
}

// SetLastAttempted records a query that fell through to clarification.
func (s *Store) SetLastAttempted(ctx context.Context, sessionID, query string) error {
	return s.client.Set(ctx, s.key(sessionID, "attempted"), query, s.ttl).Err()
}
