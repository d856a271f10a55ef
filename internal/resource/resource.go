// Package resource defines the shared vocabulary for scene resources: the
// four resource kinds, the Default/Custom provenance split, clear scopes, and
// the spec structs handed to the scene graph when a resource is created.
package resource

import (
	"errors"
	"fmt"

	"github.com/vk/geoscenego/internal/ewkb"
)

// ErrInvalidSpec is wrapped by every spec validation failure. Validation runs
// before any scene mutation, so a failed spec never leaves partial state.
var ErrInvalidSpec = errors.New("invalid resource spec")

// Kind identifies one of the four resource families. Identities live in
// separate spaces per kind; ids are never compared across kinds.
type Kind string

const (
	KindEntity         Kind = "entity"
	KindPrimitiveBatch Kind = "primitive"
	KindImageryLayer   Kind = "layer"
	KindGeoOverlay     Kind = "overlay"
)

// Kinds lists every resource kind in the order bulk operations visit them.
func Kinds() []Kind {
	return []Kind{KindEntity, KindPrimitiveBatch, KindImageryLayer, KindGeoOverlay}
}

// Provenance records whether a resource was system-seeded or user-added. It
// is fixed at creation time; changing provenance means remove and re-add.
type Provenance string

const (
	Default Provenance = "default"
	Custom  Provenance = "custom"
)

// Scope selects which provenance partitions a bulk clear targets.
type Scope string

const (
	ScopeDefault Scope = "default"
	ScopeCustom  Scope = "custom"
	ScopeAll     Scope = "all"
)

// Matches reports whether a resource of the given provenance falls inside the
// scope.
func (s Scope) Matches(p Provenance) bool {
	switch s {
	case ScopeAll:
		return true
	case ScopeDefault:
		return p == Default
	case ScopeCustom:
		return p == Custom
	default:
		return false
	}
}

// Spec describes one resource to be created on the scene graph. Concrete spec
// types carry the per-kind creation parameters; the registry only needs the
// identity, the kind, and a fail-fast validation hook.
type Spec interface {
	ResourceID() string
	Kind() Kind
	Validate() error
}

// EntitySpec describes a point entity (position plus optional billboard and
// label decoration).
type EntitySpec struct {
	ID        string
	Position  ewkb.Point
	Label     string
	Billboard string // image URL or data URI shown at the position
}

func (s EntitySpec) ResourceID() string { return s.ID }
func (s EntitySpec) Kind() Kind         { return KindEntity }

func (s EntitySpec) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("%w: entity id must not be empty", ErrInvalidSpec)
	}
	return nil
}

// PrimitiveSpec describes a batched geometry primitive. Params carries the
// primitive-type-specific construction arguments untouched; the scene graph
// interprets them.
type PrimitiveSpec struct {
	ID     string
	Type   string // e.g. "polyline", "polygon", "billboard-collection"
	Params map[string]any
}

func (s PrimitiveSpec) ResourceID() string { return s.ID }
func (s PrimitiveSpec) Kind() Kind         { return KindPrimitiveBatch }

func (s PrimitiveSpec) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("%w: primitive id must not be empty", ErrInvalidSpec)
	}
	if s.Type == "" {
		return fmt.Errorf("%w: primitive %q has no type", ErrInvalidSpec, s.ID)
	}
	return nil
}

// LayerSpec describes a raster imagery layer fetched from a tile service.
type LayerSpec struct {
	ID         string
	URL        string
	Alpha      float64
	Brightness float64
}

func (s LayerSpec) ResourceID() string { return s.ID }
func (s LayerSpec) Kind() Kind         { return KindImageryLayer }

func (s LayerSpec) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("%w: layer id must not be empty", ErrInvalidSpec)
	}
	if s.URL == "" {
		return fmt.Errorf("%w: layer %q has no tile url", ErrInvalidSpec, s.ID)
	}
	return nil
}

// OverlaySpec describes a vector data-source overlay. Source is passed through
// to the scene graph's own loader (file path or URL of a GeoJSON document);
// this module never parses it.
type OverlaySpec struct {
	ID     string
	Source string
	Stroke string
	Fill   string
}

func (s OverlaySpec) ResourceID() string { return s.ID }
func (s OverlaySpec) Kind() Kind         { return KindGeoOverlay }

func (s OverlaySpec) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("%w: overlay id must not be empty", ErrInvalidSpec)
	}
	if s.Source == "" {
		return fmt.Errorf("%w: overlay %q has no source", ErrInvalidSpec, s.ID)
	}
	return nil
}
