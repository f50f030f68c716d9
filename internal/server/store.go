package server

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/a11yscan/a11yscan/internal/model"
)

// defaultResultTTL is how long a result stays retrievable after a run.
const defaultResultTTL = 1 * time.Hour

// resultEntry holds the outcomes of one submitted audit.
type resultEntry struct {
	// request is the submitted audit request (profile field unused;
	// each outcome carries its own).
	request model.AuditRequest

	// outcomes holds one outcome per device profile, in run order.
	outcomes []model.AuditOutcome

	// created is when the entry was stored, for TTL expiry.
	created time.Time
}

// resultStore keeps completed runs in memory, keyed by random ID.
//
// Design decision: Annotated documents can be large, so results are
// not kept forever: expired entries are pruned on every Put. The
// random UUID key keeps result URLs unguessable.
type resultStore struct {
	mu      sync.RWMutex
	entries map[string]*resultEntry
	ttl     time.Duration
}

// newResultStore creates a store with the given TTL.
// A non-positive TTL falls back to the default.
func newResultStore(ttl time.Duration) *resultStore {
	if ttl <= 0 {
		ttl = defaultResultTTL
	}
	return &resultStore{
		entries: make(map[string]*resultEntry),
		ttl:     ttl,
	}
}

// Put stores the outcomes of a run and returns the new result ID.
func (s *resultStore) Put(req model.AuditRequest, outcomes []model.AuditOutcome) string {
	id := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.prune()
	s.entries[id] = &resultEntry{
		request:  req,
		outcomes: outcomes,
		created:  time.Now(),
	}

	return id
}

// Get retrieves a stored result by ID.
func (s *resultStore) Get(id string) (*resultEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[id]
	if !ok || time.Since(entry.created) > s.ttl {
		return nil, false
	}
	return entry, true
}

// prune removes expired entries. Caller must hold the write lock.
func (s *resultStore) prune() {
	for id, entry := range s.entries {
		if time.Since(entry.created) > s.ttl {
			delete(s.entries, id)
		}
	}
}
