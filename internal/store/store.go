package store

import (
	"time"

	"github.com/calvinwijaya/concentor/internal/session"
)

// Store defines the interface for session storage
type Store interface {
	// SaveSession saves a session to the store
	SaveSession(s *session.Session) error

	// GetSession retrieves a session by ID
	GetSession(id string) (*session.Session, error)

	// DeleteSession closes and removes a session
	DeleteSession(id string) error

	// AllSessions returns every live session
	AllSessions() ([]*session.Session, error)

	// Reap closes and removes sessions idle since before cutoff
	Reap(cutoff time.Time) []string
}
