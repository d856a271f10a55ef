package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/vk/geoscenego/internal/ctxlog"
	"github.com/vk/geoscenego/internal/resource"
	"github.com/vk/geoscenego/internal/scene"
)

// ErrDuplicateID is returned when an add collides with a live or in-flight id
// of the same kind, regardless of provenance. Imagery layers are the one
// exception: their duplicates replace instead of failing.
var ErrDuplicateID = errors.New("duplicate resource id")

// Manager is the resource registry: four per-kind stores plus the scene
// adapter every mutation is routed through.
type Manager struct {
	adapter *scene.Adapter
	stores  map[resource.Kind]*store
}

// New creates an empty registry bound to the given scene adapter.
func New(adapter *scene.Adapter) *Manager {
	stores := make(map[resource.Kind]*store, len(resource.Kinds()))
	for _, kind := range resource.Kinds() {
		stores[kind] = newStore(kind == resource.KindImageryLayer)
	}
	return &Manager{adapter: adapter, stores: stores}
}

// Adapter returns the scene adapter the registry mutates through.
func (m *Manager) Adapter() *scene.Adapter {
	return m.adapter
}

func (m *Manager) store(kind resource.Kind) *store {
	st, ok := m.stores[kind]
	if !ok {
		panic(fmt.Sprintf("unknown resource kind %q", kind))
	}
	return st
}

// Add validates the spec, creates the scene object, and commits the record
// under the given provenance. The id is reserved for the whole scene call
// (overlay creation can suspend on its data-source load), so a concurrent
// duplicate add fails fast with ErrDuplicateID. If the scene creation fails,
// the reservation is rolled back and nothing is stored.
//
// For imagery layers a duplicate id is an implicit replace: the previous
// scene object is destroyed exactly once, then the add proceeds.
func (m *Manager) Add(ctx context.Context, prov resource.Provenance, spec resource.Spec) (scene.Handle, error) {
	logger := ctxlog.FromContext(ctx)

	if err := spec.Validate(); err != nil {
		return nil, err
	}

	id := spec.ResourceID()
	st := m.store(spec.Kind())

	evicted, err := st.reserve(id)
	if err != nil {
		return nil, err
	}
	if evicted != nil {
		if !m.adapter.Remove(ctx, evicted.handle) {
			logger.Warn("Replaced layer's scene object did not confirm removal.",
				"kind", spec.Kind(), "id", id)
		} else {
			logger.Debug("Replaced existing layer.", "id", id)
		}
	}

	handle, err := m.adapter.Create(ctx, spec)
	if err != nil {
		st.release(id)
		return nil, fmt.Errorf("creating %s %q: %w", spec.Kind(), id, err)
	}

	st.commit(id, prov, handle)
	logger.Debug("Resource added.", "kind", spec.Kind(), "id", id, "provenance", prov)
	return handle, nil
}

// Get returns the handle stored for id, if any. Provenance does not matter
// for lookups: the single-map store resolves an id in one step.
func (m *Manager) Get(kind resource.Kind, id string) (scene.Handle, bool) {
	rec, ok := m.store(kind).lookup(id)
	if !ok {
		return nil, false
	}
	return rec.handle, true
}

// Remove destroys the scene object behind id and drops the record. A missing
// id is non-fatal (expected race in interactive callers): false plus a
// warning. When the scene refuses the removal the record is retained so the
// registry never claims an object gone that may still be live.
func (m *Manager) Remove(ctx context.Context, kind resource.Kind, id string) bool {
	logger := ctxlog.FromContext(ctx)
	st := m.store(kind)

	rec, ok := st.lookup(id)
	if !ok {
		logger.Warn("Remove requested for unknown resource.", "kind", kind, "id", id)
		return false
	}

	if !m.adapter.Remove(ctx, rec.handle) {
		logger.Warn("Scene did not confirm removal, keeping registry entry.", "kind", kind, "id", id)
		return false
	}

	st.drop(id, rec)
	logger.Debug("Resource removed.", "kind", kind, "id", id)
	return true
}

// RemoveBatch removes each id independently and reports how many succeeded.
// Best-effort, not transactional: a failure on one id never aborts the rest.
func (m *Manager) RemoveBatch(ctx context.Context, kind resource.Kind, ids []string) int {
	removed := 0
	for _, id := range ids {
		if m.Remove(ctx, kind, id) {
			removed++
		}
	}
	return removed
}

// Clear removes every resource of the kind whose provenance falls inside
// scope, returning how many were actually torn down. Entries whose scene
// removal fails stay registered.
func (m *Manager) Clear(ctx context.Context, kind resource.Kind, scope resource.Scope) int {
	ids := m.store(kind).idsInScope(scope)
	removed := m.RemoveBatch(ctx, kind, ids)
	ctxlog.FromContext(ctx).Debug("Scoped clear finished.",
		"kind", kind, "scope", scope, "targeted", len(ids), "removed", removed)
	return removed
}

// ClearAll clears every kind sequentially (entities, primitive batches,
// imagery layers, geo overlays) and returns per-kind removal counts. There is
// no atomicity across kinds: a failure partway leaves earlier kinds cleared
// and later ones untouched, and the counts make that visible.
func (m *Manager) ClearAll(ctx context.Context, scope resource.Scope) map[resource.Kind]int {
	counts := make(map[resource.Kind]int, len(resource.Kinds()))
	for _, kind := range resource.Kinds() {
		counts[kind] = m.Clear(ctx, kind, scope)
	}
	return counts
}

// Len reports the number of committed records of a kind.
func (m *Manager) Len(kind resource.Kind) int {
	return m.store(kind).lenScope(resource.ScopeAll)
}

// LenScope reports the number of committed records of a kind inside scope.
func (m *Manager) LenScope(kind resource.Kind, scope resource.Scope) int {
	return m.store(kind).lenScope(scope)
}
