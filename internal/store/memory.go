package store

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/calvinwijaya/concentor/internal/session"
)

var ErrNotFound = errors.New("session not found")

// MemoryStore is an in-memory implementation of session storage
type MemoryStore struct {
	sessions map[string]*session.Session
	mu       sync.RWMutex
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*session.Session),
	}
}

// NewID returns a fresh session identifier.
func NewID() string {
	return uuid.New().String()
}

// SaveSession saves a session to the store
func (s *MemoryStore) SaveSession(sess *session.Session) error {
	if sess == nil || sess.ID == "" {
		return errors.New("session has no id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[sess.ID] = sess
	return nil
}

// GetSession retrieves a session by ID
func (s *MemoryStore) GetSession(id string) (*session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, exists := s.sessions[id]
	if !exists {
		return nil, ErrNotFound
	}

	return sess, nil
}

// DeleteSession closes and removes a session
func (s *MemoryStore) DeleteSession(id string) error {
	s.mu.Lock()
	sess, exists := s.sessions[id]
	if exists {
		delete(s.sessions, id)
	}
	s.mu.Unlock()

	if !exists {
		return ErrNotFound
	}
	sess.Close()
	return nil
}

// AllSessions returns every live session ordered by ID
func (s *MemoryStore) AllSessions() ([]*session.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]*session.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sessions = append(sessions, sess)
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].ID < sessions[j].ID
	})

	return sessions, nil
}

// Reap closes and removes sessions idle since before cutoff
func (s *MemoryStore) Reap(cutoff time.Time) []string {
	s.mu.Lock()
	var stale []*session.Session
	for id, sess := range s.sessions {
		if sess.LastActive().Before(cutoff) {
			stale = append(stale, sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	ids := make([]string, 0, len(stale))
	for _, sess := range stale {
		sess.Close()
		ids = append(ids, sess.ID)
	}
	sort.Strings(ids)
	return ids
}
