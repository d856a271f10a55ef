// Package memscene provides an ephemeral, in-memory implementation of the
// scene.Graph interface. It records created specs keyed by handle and is
// suitable for tests and dry runs, where applying a manifest against a real
// viewer is not wanted.
package memscene

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/vk/geoscenego/internal/resource"
	"github.com/vk/geoscenego/internal/scene"
)

// ErrSceneDestroyed is returned by creates after Destroy; the instance is
// terminal and not reentrant, matching the external viewer's lifecycle.
var ErrSceneDestroyed = errors.New("scene graph destroyed")

// Graph is an in-memory scene.Graph. All methods are safe for concurrent use.
type Graph struct {
	mu        sync.Mutex
	next      int
	objects   map[string]resource.Spec
	destroyed bool

	// Failure toggles for exercising rollback and retention paths in tests.
	FailCreates bool
	FailRemoves bool
}

// New creates an empty in-memory scene graph.
func New() *Graph {
	return &Graph{objects: make(map[string]resource.Spec)}
}

func (g *Graph) create(spec resource.Spec) (scene.Handle, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.destroyed {
		return nil, ErrSceneDestroyed
	}
	if g.FailCreates {
		return nil, fmt.Errorf("create %s %q: scene refused", spec.Kind(), spec.ResourceID())
	}

	g.next++
	handle := fmt.Sprintf("%s#%d", spec.Kind(), g.next)
	g.objects[handle] = spec
	return handle, nil
}

func (g *Graph) CreateEntity(ctx context.Context, spec resource.EntitySpec) (scene.Handle, error) {
	return g.create(spec)
}

func (g *Graph) CreatePrimitiveBatch(ctx context.Context, spec resource.PrimitiveSpec) (scene.Handle, error) {
	return g.create(spec)
}

func (g *Graph) CreateImageryLayer(ctx context.Context, spec resource.LayerSpec) (scene.Handle, error) {
	return g.create(spec)
}

func (g *Graph) CreateGeoOverlay(ctx context.Context, spec resource.OverlaySpec) (scene.Handle, error) {
	return g.create(spec)
}

// Remove drops the object behind h. Unknown handles and removals after
// Destroy report false.
func (g *Graph) Remove(ctx context.Context, h scene.Handle) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.destroyed || g.FailRemoves {
		return false
	}
	key, ok := h.(string)
	if !ok {
		return false
	}
	if _, ok := g.objects[key]; !ok {
		return false
	}
	delete(g.objects, key)
	return true
}

// Destroy empties the graph and marks it terminal.
func (g *Graph) Destroy(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.objects = make(map[string]resource.Spec)
	g.destroyed = true
	return nil
}

// Len reports how many live objects the graph holds.
func (g *Graph) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.objects)
}

// Spec returns the spec recorded for a handle, for assertions in tests.
func (g *Graph) Spec(h scene.Handle) (resource.Spec, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	key, ok := h.(string)
	if !ok {
		return nil, false
	}
	spec, ok := g.objects[key]
	return spec, ok
}
