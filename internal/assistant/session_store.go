package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/glowdesk/receptionist/internal/booking"
)

const defaultSessionTTL = 24 * time.Hour

// SessionStore persists in-flight booking sessions between turns so the
// slot cursor survives process restarts without replaying chat history.
type SessionStore struct {
	redis  *redis.Client
	tracer trace.Tracer
	ttl    time.Duration
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	if client == nil {
		panic("assistant: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &SessionStore{
		redis:  client,
		tracer: otel.Tracer("receptionist.internal.assistant.session"),
		ttl:    ttl,
	}
}

// Load returns the stored session for a conversation, or (nil, nil) when
// none exists.
func (s *SessionStore) Load(ctx context.Context, conversationID string) (*booking.Session, error) {
	ctx, span := s.tracer.Start(ctx, "assistant.load_session")
	defer span.End()

	data, err := s.redis.Get(ctx, sessionKey(conversationID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("assistant: failed to load session: %w", err)
	}

	var session booking.Session
	if err := json.Unmarshal(data, &session); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("assistant: failed to decode session: %w", err)
	}
	return &session, nil
}

// Save persists the session under the conversation's key.
func (s *SessionStore) Save(ctx context.Context, conversationID string, session *booking.Session) error {
	ctx, span := s.tracer.Start(ctx, "assistant.save_session")
	defer span.End()

	data, err := json.Marshal(session)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("assistant: failed to marshal session: %w", err)
	}
	if err := s.redis.Set(ctx, sessionKey(conversationID), data, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("assistant: failed to persist session: %w", err)
	}
	return nil
}

// Clear removes the stored session once a booking completes.
func (s *SessionStore) Clear(ctx context.Context, conversationID string) error {
	ctx, span := s.tracer.Start(ctx, "assistant.clear_session")
	defer span.End()

	if err := s.redis.Del(ctx, sessionKey(conversationID)).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("assistant: failed to clear session: %w", err)
	}
	return nil
}

func sessionKey(id string) string {
	return fmt.Sprintf("booking:session:%s", id)
}
