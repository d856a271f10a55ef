// Package remotescene implements scene.Graph against a viewer process
// reachable over socket.io. Creation and removal requests are emitted as
// events carrying a correlation id; the viewer answers on "scene:ack" with
// the resulting handle or an error message, so the registry's
// commit-after-scene-success rule holds across the wire.
package remotescene

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vk/geoscenego/internal/ctxlog"
	"github.com/vk/geoscenego/internal/resource"
	"github.com/vk/geoscenego/internal/scene"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// Event names of the viewer protocol.
const (
	eventCreate  = "scene:create"
	eventRemove  = "scene:remove"
	eventDestroy = "scene:destroy"
	eventAck     = "scene:ack"
)

// DefaultAckTimeout bounds how long a single scene operation may wait for the
// viewer's acknowledgement. Overlay creates routinely take the longest since
// the viewer acks only after its data-source load resolves.
const DefaultAckTimeout = 10 * time.Second

// Options configures the connection to the remote viewer.
type Options struct {
	// URL of the viewer's socket.io endpoint, e.g. "http://localhost:8080/scene".
	URL string
	// Namespace to join; defaults to "/".
	Namespace string
	// AckTimeout per operation; defaults to DefaultAckTimeout.
	AckTimeout time.Duration
}

// ackResult carries one acknowledgement through a waiter channel.
type ackResult struct {
	handle scene.Handle
	err    error
}

// Graph is a scene.Graph talking to a remote viewer. Safe for concurrent use.
type Graph struct {
	io         *socket.Socket
	ackTimeout time.Duration
	destroyed  atomic.Bool
	seq        atomic.Uint64

	mu      sync.Mutex
	waiters map[string]chan ackResult
}

// Connect dials the viewer and waits for the socket.io session to establish.
func Connect(ctx context.Context, opts Options) (*Graph, error) {
	logger := ctxlog.FromContext(ctx).With("viewer_url", opts.URL)
	logger.Debug("Connecting to remote viewer.")

	parsedURL, err := url.Parse(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse viewer URL: %w", err)
	}

	namespace := opts.Namespace
	if namespace == "" {
		namespace = "/"
	}
	ackTimeout := opts.AckTimeout
	if ackTimeout <= 0 {
		ackTimeout = DefaultAckTimeout
	}

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	sockOpts := socket.DefaultOptions()
	sockOpts.SetPath(parsedURL.Path)
	sockOpts.SetTransports(types.NewSet(transports.WebSocket))

	manager := socket.NewManager(baseURL, sockOpts)
	io := manager.Socket(namespace, sockOpts)

	g := &Graph{
		io:         io,
		ackTimeout: ackTimeout,
		waiters:    make(map[string]chan ackResult),
	}

	connected := make(chan error, 1)
	io.On(types.EventName("connect"), func(...any) {
		logger.Info("Connected to remote viewer.", "namespace", namespace, "sid", io.Id())
		select {
		case connected <- nil:
		default:
		}
	})
	io.On(types.EventName("connect_error"), func(errs ...any) {
		err := fmt.Errorf("viewer connection failed")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		select {
		case connected <- err:
		default:
		}
	})
	io.On(types.EventName(eventAck), func(data ...any) {
		g.dispatchAck(data...)
	})

	io.Connect()

	select {
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("connecting to viewer: %w", ctx.Err())
	case err := <-connected:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("connecting to viewer: %w", err)
		}
	}

	return g, nil
}

// dispatchAck routes one "scene:ack" payload to the waiter registered under
// its correlation id. Acks for ids nobody waits on (late arrivals after a
// timeout) are dropped.
func (g *Graph) dispatchAck(data ...any) {
	if len(data) == 0 {
		return
	}
	payload, ok := data[0].(map[string]any)
	if !ok {
		return
	}
	req, _ := payload["req"].(string)

	g.mu.Lock()
	ch, ok := g.waiters[req]
	if ok {
		delete(g.waiters, req)
	}
	g.mu.Unlock()
	if !ok {
		return
	}

	if msg, ok := payload["error"].(string); ok && msg != "" {
		ch <- ackResult{err: fmt.Errorf("viewer rejected request: %s", msg)}
		return
	}
	ch <- ackResult{handle: payload["handle"]}
}

// request emits one event and blocks until the viewer acknowledges the
// correlation id or the per-operation timeout elapses.
func (g *Graph) request(ctx context.Context, event string, payload map[string]any) (scene.Handle, error) {
	if g.destroyed.Load() {
		return nil, fmt.Errorf("scene graph destroyed")
	}

	req := fmt.Sprintf("req-%d", g.seq.Add(1))
	ch := make(chan ackResult, 1)

	g.mu.Lock()
	g.waiters[req] = ch
	g.mu.Unlock()

	payload["req"] = req
	g.io.Emit(event, payload)

	opCtx, cancel := context.WithTimeout(ctx, g.ackTimeout)
	defer cancel()

	select {
	case <-opCtx.Done():
		g.mu.Lock()
		delete(g.waiters, req)
		g.mu.Unlock()
		return nil, fmt.Errorf("waiting for %s acknowledgement: %w", event, opCtx.Err())
	case res := <-ch:
		return res.handle, res.err
	}
}

func (g *Graph) create(ctx context.Context, kind resource.Kind, spec map[string]any) (scene.Handle, error) {
	return g.request(ctx, eventCreate, map[string]any{
		"kind": string(kind),
		"spec": spec,
	})
}

func (g *Graph) CreateEntity(ctx context.Context, spec resource.EntitySpec) (scene.Handle, error) {
	return g.create(ctx, spec.Kind(), map[string]any{
		"id":        spec.ID,
		"longitude": spec.Position.Longitude,
		"latitude":  spec.Position.Latitude,
		"srid":      spec.Position.SRID,
		"label":     spec.Label,
		"billboard": spec.Billboard,
	})
}

func (g *Graph) CreatePrimitiveBatch(ctx context.Context, spec resource.PrimitiveSpec) (scene.Handle, error) {
	return g.create(ctx, spec.Kind(), map[string]any{
		"id":     spec.ID,
		"type":   spec.Type,
		"params": spec.Params,
	})
}

func (g *Graph) CreateImageryLayer(ctx context.Context, spec resource.LayerSpec) (scene.Handle, error) {
	return g.create(ctx, spec.Kind(), map[string]any{
		"id":         spec.ID,
		"url":        spec.URL,
		"alpha":      spec.Alpha,
		"brightness": spec.Brightness,
	})
}

func (g *Graph) CreateGeoOverlay(ctx context.Context, spec resource.OverlaySpec) (scene.Handle, error) {
	// The viewer loads the data source itself and acks once the load
	// resolves, which makes overlay creation the one long-running call.
	return g.create(ctx, spec.Kind(), map[string]any{
		"id":     spec.ID,
		"source": spec.Source,
		"stroke": spec.Stroke,
		"fill":   spec.Fill,
	})
}

// Remove asks the viewer to drop the object behind h. Timeouts and rejections
// degrade to false; the registry keeps its entry in that case.
func (g *Graph) Remove(ctx context.Context, h scene.Handle) bool {
	res, err := g.request(ctx, eventRemove, map[string]any{"handle": h})
	if err != nil {
		ctxlog.FromContext(ctx).Warn("Viewer did not confirm removal.", "error", err)
		return false
	}
	confirmed, ok := res.(bool)
	return !ok || confirmed
}

// Destroy tells the viewer to tear the scene down and closes the connection.
// The graph is terminal afterwards; repeated destroys are no-ops.
func (g *Graph) Destroy(ctx context.Context) error {
	if g.destroyed.Load() {
		return nil
	}

	_, err := g.request(ctx, eventDestroy, map[string]any{})
	g.destroyed.Store(true)
	g.io.Disconnect()

	if err != nil {
		return fmt.Errorf("destroying remote scene: %w", err)
	}
	return nil
}
