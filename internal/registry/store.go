package registry

import (
	"fmt"
	"sync"

	"github.com/vk/geoscenego/internal/resource"
	"github.com/vk/geoscenego/internal/scene"
)

// record is one committed registry entry. Provenance is fixed for the record's
// lifetime; a resource changes provenance only by being removed and re-added.
type record struct {
	provenance resource.Provenance
	handle     scene.Handle
}

// store holds every resource of a single kind in one map keyed by id, with
// provenance carried on the record. A single lookup therefore enforces the
// uniqueness rule across both provenance classes.
//
// The pending set reserves ids for adds whose scene creation is still in
// flight (geo-overlay loading is asynchronous), so a concurrent duplicate add
// fails fast instead of racing the commit.
type store struct {
	mu      sync.Mutex
	byID    map[string]*record
	pending map[string]struct{}

	// replaceOnDuplicate is the imagery-layer exception: a duplicate id
	// evicts the existing record instead of failing the add.
	replaceOnDuplicate bool
}

func newStore(replaceOnDuplicate bool) *store {
	return &store{
		byID:               make(map[string]*record),
		pending:            make(map[string]struct{}),
		replaceOnDuplicate: replaceOnDuplicate,
	}
}

// reserve claims id for an in-flight add. For replace-on-duplicate stores an
// existing record is evicted and returned so the caller can destroy its scene
// object; for all others a live or pending id fails with ErrDuplicateID.
func (s *store) reserve(id string) (evicted *record, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, inFlight := s.pending[id]; inFlight {
		return nil, fmt.Errorf("%w: %q (add in flight)", ErrDuplicateID, id)
	}

	if existing, ok := s.byID[id]; ok {
		if !s.replaceOnDuplicate {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateID, id)
		}
		evicted = existing
		delete(s.byID, id)
	}

	s.pending[id] = struct{}{}
	return evicted, nil
}

// commit turns a reservation into a live record.
func (s *store) commit(id string, prov resource.Provenance, h scene.Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.pending, id)
	s.byID[id] = &record{provenance: prov, handle: h}
}

// release rolls a reservation back after a failed scene creation.
func (s *store) release(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, id)
}

// lookup returns the committed record for id. In-flight reservations are not
// visible to readers.
func (s *store) lookup(id string) (*record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.byID[id]
	return rec, ok
}

// drop removes the entry for id, but only if it still holds rec: a concurrent
// replace may have swapped the record between the caller's lookup and now.
func (s *store) drop(id string, rec *record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if current, ok := s.byID[id]; ok && current == rec {
		delete(s.byID, id)
	}
}

// idsInScope snapshots the ids whose provenance falls inside scope.
func (s *store) idsInScope(scope resource.Scope) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []string
	for id, rec := range s.byID {
		if scope.Matches(rec.provenance) {
			ids = append(ids, id)
		}
	}
	return ids
}

// lenScope counts committed records inside scope.
func (s *store) lenScope(scope resource.Scope) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, rec := range s.byID {
		if scope.Matches(rec.provenance) {
			n++
		}
	}
	return n
}
