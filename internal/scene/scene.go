// Package scene defines the boundary to the externally-owned 3D geospatial
// viewer. The Graph interface is the opaque capability the viewer exposes;
// the Adapter owns the single live Graph, enforces its init/destroy lifecycle,
// and translates registry operations into creation and removal calls.
package scene

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/vk/geoscenego/internal/ctxlog"
	"github.com/vk/geoscenego/internal/resource"
)

// ErrNoActiveScene is returned when a creation is attempted before a viewer
// graph has been attached. Fatal for the operation, recoverable for the
// application: retry once a scene exists.
var ErrNoActiveScene = errors.New("no active scene")

// Handle is an opaque reference identifying a live object inside the external
// scene graph. The registry stores handles without inspecting them.
type Handle any

// Graph is the capability the external viewer exposes. Create calls return an
// opaque handle; Remove reports success as a plain boolean; Destroy tears the
// whole scene down and is terminal for the instance.
type Graph interface {
	CreateEntity(ctx context.Context, spec resource.EntitySpec) (Handle, error)
	CreatePrimitiveBatch(ctx context.Context, spec resource.PrimitiveSpec) (Handle, error)
	CreateImageryLayer(ctx context.Context, spec resource.LayerSpec) (Handle, error)
	CreateGeoOverlay(ctx context.Context, spec resource.OverlaySpec) (Handle, error)
	Remove(ctx context.Context, h Handle) bool
	Destroy(ctx context.Context) error
}

// Adapter mediates between the registry and the external scene graph. It is
// the only component permitted to mutate the viewer, and it holds the one
// reassignable Graph reference: a previous live graph must be destroyed before
// a replacement is attached.
type Adapter struct {
	mu    sync.Mutex
	graph Graph
}

// NewAdapter returns an Adapter with no graph attached. Creates fail with
// ErrNoActiveScene until Attach is called.
func NewAdapter() *Adapter {
	return &Adapter{}
}

// Attach installs g as the active scene graph. Any previously attached graph
// is destroyed first; if that teardown fails, the attach is aborted so the old
// instance is not silently leaked.
func (a *Adapter) Attach(ctx context.Context, g Graph) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.graph != nil {
		if err := a.graph.Destroy(ctx); err != nil {
			return fmt.Errorf("destroying previous scene graph: %w", err)
		}
		ctxlog.FromContext(ctx).Debug("Previous scene graph destroyed before replacement.")
	}
	a.graph = g
	return nil
}

// Detach destroys the active graph and leaves the adapter sceneless.
// Detaching when nothing is attached is a no-op.
func (a *Adapter) Detach(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.graph == nil {
		return nil
	}
	if err := a.graph.Destroy(ctx); err != nil {
		return fmt.Errorf("destroying scene graph: %w", err)
	}
	a.graph = nil
	return nil
}

// Active reports whether a scene graph is currently attached.
func (a *Adapter) Active() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.graph != nil
}

func (a *Adapter) active() (Graph, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.graph == nil {
		return nil, ErrNoActiveScene
	}
	return a.graph, nil
}

// Create translates a resource spec into the matching scene creation call and
// returns the handle the viewer reported. The spec must already be validated.
func (a *Adapter) Create(ctx context.Context, spec resource.Spec) (Handle, error) {
	g, err := a.active()
	if err != nil {
		return nil, err
	}

	switch s := spec.(type) {
	case resource.EntitySpec:
		return g.CreateEntity(ctx, s)
	case resource.PrimitiveSpec:
		return g.CreatePrimitiveBatch(ctx, s)
	case resource.LayerSpec:
		return g.CreateImageryLayer(ctx, s)
	case resource.OverlaySpec:
		return g.CreateGeoOverlay(ctx, s)
	default:
		panic(fmt.Sprintf("unknown resource spec type %T", spec))
	}
}

// Remove destroys the scene object behind h. A missing graph degrades to
// false with a warning rather than an error, so bulk clears running during
// viewer teardown never cascade.
func (a *Adapter) Remove(ctx context.Context, h Handle) bool {
	g, err := a.active()
	if err != nil {
		ctxlog.FromContext(ctx).Warn("Scene removal skipped, no active scene.")
		return false
	}
	return g.Remove(ctx, h)
}
