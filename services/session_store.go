package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	reviewSessionKeyPrefix = "talentgrid:review-session:"
	reviewSessionTTL       = 7 * 24 * time.Hour
)

// ReviewSession is a reviewer's saved position on a candidate's review
// screen, so a reviewer returning to a candidate resumes where they left
// off. Sessions are per (reviewer, candidate) and expire after a week.
type ReviewSession struct {
	ScrollOffset     int       `json:"scroll_offset"`
	ActiveQuestionID string    `json:"active_question_id,omitempty"`
	DashboardTab     string    `json:"dashboard_tab,omitempty"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// ReviewSessionStore persists review sessions. Get returns nil when no
// session exists for the pair.
type ReviewSessionStore interface {
	Get(ctx context.Context, userID, candidateID string) (*ReviewSession, error)
	Save(ctx context.Context, userID, candidateID string, session *ReviewSession) error
	Delete(ctx context.Context, userID, candidateID string) error
}

// RedisSessionStore keeps review sessions in Redis with a TTL.
type RedisSessionStore struct {
	client *redis.Client
}

func NewRedisSessionStore(redisURL string) (*RedisSessionStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	slog.Info("Redis session store initialized")
	return &RedisSessionStore{client: client}, nil
}

func sessionKey(userID, candidateID string) string {
	return reviewSessionKeyPrefix + userID + ":" + candidateID
}

func (s *RedisSessionStore) Get(ctx context.Context, userID, candidateID string) (*ReviewSession, error) {
	data, err := s.client.Get(ctx, sessionKey(userID, candidateID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		slog.Error("Failed to get review session", "error", err, "user_id", userID, "candidate_id", candidateID)
		return nil, err
	}

	var session ReviewSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to decode review session: %w", err)
	}
	return &session, nil
}

func (s *RedisSessionStore) Save(ctx context.Context, userID, candidateID string, session *ReviewSession) error {
	session.UpdatedAt = time.Now()

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode review session: %w", err)
	}

	if err := s.client.Set(ctx, sessionKey(userID, candidateID), data, reviewSessionTTL).Err(); err != nil {
		slog.Error("Failed to save review session", "error", err, "user_id", userID, "candidate_id", candidateID)
		return err
	}
	return nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, userID, candidateID string) error {
	if err := s.client.Del(ctx, sessionKey(userID, candidateID)).Err(); err != nil {
		slog.Error("Failed to delete review session", "error", err, "user_id", userID, "candidate_id", candidateID)
		return err
	}
	return nil
}

// MemorySessionStore is the fallback when Redis is not configured. Sessions
// survive only for the process lifetime.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*ReviewSession
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]*ReviewSession)}
}

func (s *MemorySessionStore) Get(ctx context.Context, userID, candidateID string) (*ReviewSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[sessionKey(userID, candidateID)]
	if !ok {
		return nil, nil
	}
	copied := *session
	return &copied, nil
}

func (s *MemorySessionStore) Save(ctx context.Context, userID, candidateID string, session *ReviewSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session.UpdatedAt = time.Now()
	copied := *session
	s.sessions[sessionKey(userID, candidateID)] = &copied
	return nil
}

func (s *MemorySessionStore) Delete(ctx context.Context, userID, candidateID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionKey(userID, candidateID))
	return nil
}
