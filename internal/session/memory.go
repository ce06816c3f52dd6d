package session

import (
	"sync"

	"github.com/spec-kit/retailer-dashboard/internal/domain"
)

// MemoryStore holds the in-memory mirror of the session. Writers replace the whole record.
type MemoryStore struct {
	mu      sync.RWMutex
	session domain.Session
	present bool
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Get returns the mirrored session.
func (m *MemoryStore) Get() (domain.Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session, m.present
}

// Set replaces the mirrored session. Incomplete records clear the store.
func (m *MemoryStore) Set(sess domain.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !sess.Complete() {
		m.session, m.present = domain.Session{}, false
		return
	}
	m.session, m.present = sess, true
}

// Clear drops the mirrored session.
func (m *MemoryStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session, m.present = domain.Session{}, false
}
