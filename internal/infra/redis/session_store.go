package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"stress-quiz/internal/app"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Sessions run in-process on their own event loop, so the live objects stay
// in a local map; Redis only carries a liveness marker per session so other
// instances and operators can count them.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*app.Session),
	}
}

func (s *SessionStore) Add(session *app.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID()] = session
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(session.ID()), string(session.Mode()), s.ttl).Err()
}

func (s *SessionStore) Get(id string) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	return session, ok
}

// Touch refreshes the liveness marker.
func (s *SessionStore) Touch(ctx context.Context, id string) error {
	return s.client.Expire(ctx, s.key(id), s.ttl).Err()
}

func (s *SessionStore) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return
	}
	delete(s.sessions, id)
	_ = s.client.Del(context.Background(), s.key(id)).Err()
}

func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *SessionStore) key(id string) string {
	return "quiz:session:" + id
}
