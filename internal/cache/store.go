package cache

import (
	"context"
	"sync"
	"time"
)

// Entry is a stored response together with the tags it provides.
type Entry struct {
	Data     []byte    `json:"data"`
	Tags     []Tag     `json:"tags"`
	StoredAt time.Time `json:"stored_at"`
	Stale    bool      `json:"stale,omitempty"`
}

// Store keeps entries and the tag index that maps tags to entries.
type Store interface {
	// Get returns the entry for key. Stale entries are returned with Stale set.
	Get(ctx context.Context, key Key) (Entry, bool, error)
	// Put stores entry under key and indexes it by its tags.
	Put(ctx context.Context, key Key, entry Entry, ttl time.Duration) error
	// PutIfCurrent stores entry only while the generation of key.Scope still
	// equals gen, and reports whether it did.
	PutIfCurrent(ctx context.Context, key Key, entry Entry, ttl time.Duration, gen uint64) (bool, error)
	// Invalidate marks every entry of scope carrying one of tags as stale,
	// advances the scope generation and reports how many entries were affected.
	Invalidate(ctx context.Context, scope string, tags []Tag) (int, error)
	// Generation returns the invalidation counter of scope.
	Generation(ctx context.Context, scope string) (uint64, error)
}

type memoryRecord struct {
	entry     Entry
	expiresAt time.Time
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[Key]*memoryRecord
	// index: scope -> tag type -> tag id -> keys
	index map[string]map[string]map[string]map[Key]struct{}
	gens  map[string]uint64
	now   func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[Key]*memoryRecord),
		index:   make(map[string]map[string]map[string]map[Key]struct{}),
		gens:    make(map[string]uint64),
		now:     time.Now,
	}
}

// Get implements Store.
func (m *MemoryStore) Get(_ context.Context, key Key) (Entry, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.entries[key]
	if !ok {
		return Entry{}, false, nil
	}
	if !rec.expiresAt.IsZero() && !m.now().Before(rec.expiresAt) {
		m.removeLocked(key, rec)
		return Entry{}, false, nil
	}
	return rec.entry, true, nil
}

// Put implements Store.
func (m *MemoryStore) Put(_ context.Context, key Key, entry Entry, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putLocked(key, entry, ttl)
	return nil
}

// PutIfCurrent implements Store.
func (m *MemoryStore) PutIfCurrent(_ context.Context, key Key, entry Entry, ttl time.Duration, gen uint64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gens[key.Scope] != gen {
		return false, nil
	}
	m.putLocked(key, entry, ttl)
	return true, nil
}

// Generation implements Store.
func (m *MemoryStore) Generation(_ context.Context, scope string) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gens[scope], nil
}

func (m *MemoryStore) putLocked(key Key, entry Entry, ttl time.Duration) {
	if old, ok := m.entries[key]; ok {
		m.removeLocked(key, old)
	}

	rec := &memoryRecord{entry: entry}
	if ttl > 0 {
		rec.expiresAt = m.now().Add(ttl)
	}
	m.entries[key] = rec

	for _, tag := range entry.Tags {
		byType := m.index[key.Scope]
		if byType == nil {
			byType = make(map[string]map[string]map[Key]struct{})
			m.index[key.Scope] = byType
		}
		byID := byType[tag.Type]
		if byID == nil {
			byID = make(map[string]map[Key]struct{})
			byType[tag.Type] = byID
		}
		keys := byID[tag.ID]
		if keys == nil {
			keys = make(map[Key]struct{})
			byID[tag.ID] = keys
		}
		keys[key] = struct{}{}
	}
}

// Invalidate implements Store.
func (m *MemoryStore) Invalidate(_ context.Context, scope string, tags []Tag) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.gens[scope]++
	byType := m.index[scope]
	if byType == nil {
		return 0, nil
	}

	affected := make(map[Key]struct{})
	for _, tag := range tags {
		byID := byType[tag.Type]
		if byID == nil {
			continue
		}
		if tag.ID == "" {
			for _, keys := range byID {
				for k := range keys {
					affected[k] = struct{}{}
				}
			}
			continue
		}
		for k := range byID[tag.ID] {
			affected[k] = struct{}{}
		}
	}

	count := 0
	for k := range affected {
		if rec, ok := m.entries[k]; ok && !rec.entry.Stale {
			rec.entry.Stale = true
			count++
		}
	}
	return count, nil
}

// Len reports the number of stored entries, fresh or stale.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *MemoryStore) removeLocked(key Key, rec *memoryRecord) {
	delete(m.entries, key)
	byType := m.index[key.Scope]
	if byType == nil {
		return
	}
	for _, tag := range rec.entry.Tags {
		byID := byType[tag.Type]
		if byID == nil {
			continue
		}
		if keys := byID[tag.ID]; keys != nil {
			delete(keys, key)
			if len(keys) == 0 {
				delete(byID, tag.ID)
			}
		}
		if len(byID) == 0 {
			delete(byType, tag.Type)
		}
	}
	if len(byType) == 0 {
		delete(m.index, key.Scope)
	}
}
