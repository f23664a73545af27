// Package session keeps the single undo slot of each (user, session) pair.
// A slot holds the state needed to reverse the most recent commit and is
// replaced by every later commit in the same session.
package session

import (
	"context"
	"sync"
	"time"

	"weddingbudget/internal/budget"
)

// UndoStore holds at most one undo record per key.
type UndoStore interface {
	Put(ctx context.Context, key string, rec budget.UndoRecord) error
	// Get returns the record without removing it.
	Get(ctx context.Context, key string) (*budget.UndoRecord, error)
	Clear(ctx context.Context, key string) error
}

// Key returns the slot key for a user and session.
func Key(userID, sessionID string) string {
	return userID + ":" + sessionID
}

type entry struct {
	rec     budget.UndoRecord
	expires time.Time
}

// MemoryStore is an in-process UndoStore with per-slot expiry.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string]entry
	ttl  time.Duration
	now  func() time.Time
}

// NewMemoryStore returns a MemoryStore whose slots expire after ttl.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{data: make(map[string]entry), ttl: ttl, now: time.Now}
}

func (m *MemoryStore) Put(_ context.Context, key string, rec budget.UndoRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = entry{rec: rec, expires: m.now().Add(m.ttl)}
	return nil
}

func (m *MemoryStore) Get(_ context.Context, key string) (*budget.UndoRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lookup(key), nil
}

func (m *MemoryStore) Clear(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// lookup must be called with mu held.
func (m *MemoryStore) lookup(key string) *budget.UndoRecord {
	e, ok := m.data[key]
	if !ok {
		return nil
	}
	if m.ttl > 0 && !m.now().Before(e.expires) {
		delete(m.data, key)
		return nil
	}
	rec := e.rec
	return &rec
}
