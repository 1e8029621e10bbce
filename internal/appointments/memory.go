package appointments

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory append-only store. Distinct sessions share
// the read path, so access is guarded even though turns within a session
// are sequential.
type MemoryStore struct {
	mu      sync.RWMutex
	records []Record
	lastID  int
	now     func() time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

// NewMemoryStoreSeeded creates a store pre-loaded with existing records,
// typically parsed from the serialized appointments config string.
func NewMemoryStoreSeeded(records []Record) *MemoryStore {
	s := NewMemoryStore()
	s.records = append(s.records, records...)
	for _, r := range records {
		if r.ID > s.lastID {
			s.lastID = r.ID
		}
	}
	return s
}

// WithClock pins the creation timestamp source. Test hook.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.now = now
	return s
}

// List returns a copy of all records in insertion order.
func (s *MemoryStore) List(_ context.Context) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out, nil
}

// Append assigns the next identifier past the highest seen, so seeded
// records with arbitrary IDs never collide with new ones.
func (s *MemoryStore) Append(_ context.Context, r Record) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastID++
	r.ID = s.lastID
	r.CreatedAt = timestamp(s.now())
	s.records = append(s.records, r)
	return r, nil
}
