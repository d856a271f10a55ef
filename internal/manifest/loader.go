// Package manifest loads HCL scene manifests: the declarative description of
// the resources a view starts with, plus the connection settings for the
// remote viewer.
//
// Entity positions arrive as EWKB hex strings and are decoded at load time,
// so a malformed position fails the load naming the offending file instead of
// surfacing later as a half-applied scene.
package manifest

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/geoscenego/internal/ctxlog"
	"github.com/vk/geoscenego/internal/ewkb"
	"github.com/vk/geoscenego/internal/fsutil"
	"github.com/vk/geoscenego/internal/resource"
	"github.com/zclconf/go-cty/cty"
)

// fileRoot decodes all possible top-level blocks from any manifest file.
type fileRoot struct {
	Scene      *sceneBlock       `hcl:"scene,block"`
	Entities   []*entityBlock    `hcl:"entity,block"`
	Primitives []*primitiveBlock `hcl:"primitive,block"`
	Layers     []*layerBlock     `hcl:"layer,block"`
	Overlays   []*overlayBlock   `hcl:"overlay,block"`
	Remain     hcl.Body          `hcl:",remain"`
}

type sceneBlock struct {
	ViewerURL  *string `hcl:"viewer_url"`
	Namespace  *string `hcl:"namespace"`
	AckTimeout *string `hcl:"ack_timeout"`
}

type entityBlock struct {
	ID        string  `hcl:"id,label"`
	Position  string  `hcl:"position"`
	Label     *string `hcl:"label"`
	Billboard *string `hcl:"billboard"`
}

type primitiveBlock struct {
	ID     string    `hcl:"id,label"`
	Type   string    `hcl:"type"`
	Params cty.Value `hcl:"params,optional"`
}

type layerBlock struct {
	ID         string   `hcl:"id,label"`
	URL        string   `hcl:"url"`
	Alpha      *float64 `hcl:"alpha"`
	Brightness *float64 `hcl:"brightness"`
}

type overlayBlock struct {
	ID     string  `hcl:"id,label"`
	Source string  `hcl:"source"`
	Stroke *string `hcl:"stroke"`
	Fill   *string `hcl:"fill"`
}

// Loader parses HCL scene manifests into the Manifest model.
type Loader struct{}

// NewLoader creates a new HCL manifest loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load parses every .hcl file under the given paths and merges the results.
// Duplicate resource ids within a kind fail the load here, where the file can
// be named, rather than later at the registry.
func (l *Loader) Load(ctx context.Context, paths ...string) (*Manifest, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Manifest loader started.", "path_count", len(paths))

	files, err := fsutil.FindFilesByExtension(".hcl", paths...)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered manifest files.", "count", len(files))

	manifest := &Manifest{}
	parser := hclparse.NewParser()
	seen := map[resource.Kind]map[string]string{} // kind -> id -> declaring file
	sceneFile := ""

	claim := func(kind resource.Kind, id, file string) error {
		ids, ok := seen[kind]
		if !ok {
			ids = make(map[string]string)
			seen[kind] = ids
		}
		if prev, dup := ids[id]; dup {
			return fmt.Errorf("%s %q in %s already declared in %s", kind, id, file, prev)
		}
		ids[id] = file
		return nil
	}

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse manifest file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode manifest file %s: %w", file, diags)
		}

		if root.Scene != nil {
			if sceneFile != "" {
				return nil, fmt.Errorf("scene block in %s already declared in %s", file, sceneFile)
			}
			sceneFile = file
			settings, err := translateScene(root.Scene)
			if err != nil {
				return nil, fmt.Errorf("invalid scene block in %s: %w", file, err)
			}
			manifest.Scene = settings
		}

		for _, block := range root.Entities {
			if err := claim(resource.KindEntity, block.ID, file); err != nil {
				return nil, err
			}
			spec, err := translateEntity(block)
			if err != nil {
				return nil, fmt.Errorf("invalid entity %q in %s: %w", block.ID, file, err)
			}
			manifest.Entities = append(manifest.Entities, spec)
		}

		for _, block := range root.Primitives {
			if err := claim(resource.KindPrimitiveBatch, block.ID, file); err != nil {
				return nil, err
			}
			spec, err := translatePrimitive(block)
			if err != nil {
				return nil, fmt.Errorf("invalid primitive %q in %s: %w", block.ID, file, err)
			}
			manifest.Primitives = append(manifest.Primitives, spec)
		}

		for _, block := range root.Layers {
			if err := claim(resource.KindImageryLayer, block.ID, file); err != nil {
				return nil, err
			}
			manifest.Layers = append(manifest.Layers, translateLayer(block))
		}

		for _, block := range root.Overlays {
			if err := claim(resource.KindGeoOverlay, block.ID, file); err != nil {
				return nil, err
			}
			manifest.Overlays = append(manifest.Overlays, translateOverlay(block))
		}
	}

	logger.Debug("Manifest loading complete.",
		"entities", len(manifest.Entities), "primitives", len(manifest.Primitives),
		"layers", len(manifest.Layers), "overlays", len(manifest.Overlays))
	return manifest, nil
}

func translateScene(block *sceneBlock) (SceneSettings, error) {
	settings := SceneSettings{}
	if block.ViewerURL != nil {
		settings.ViewerURL = *block.ViewerURL
	}
	if block.Namespace != nil {
		settings.Namespace = *block.Namespace
	}
	if block.AckTimeout != nil {
		d, err := time.ParseDuration(*block.AckTimeout)
		if err != nil {
			return settings, fmt.Errorf("bad ack_timeout: %w", err)
		}
		settings.AckTimeout = d
	}
	return settings, nil
}

func translateEntity(block *entityBlock) (resource.EntitySpec, error) {
	position, err := ewkb.Decode(block.Position)
	if err != nil {
		return resource.EntitySpec{}, fmt.Errorf("bad position: %w", err)
	}

	spec := resource.EntitySpec{ID: block.ID, Position: position}
	if block.Label != nil {
		spec.Label = *block.Label
	}
	if block.Billboard != nil {
		spec.Billboard = *block.Billboard
	}
	return spec, nil
}

func translatePrimitive(block *primitiveBlock) (resource.PrimitiveSpec, error) {
	spec := resource.PrimitiveSpec{ID: block.ID, Type: block.Type}

	if !block.Params.IsNull() {
		native, err := ctyToNative(block.Params)
		if err != nil {
			return spec, fmt.Errorf("bad params: %w", err)
		}
		params, ok := native.(map[string]any)
		if !ok {
			return spec, fmt.Errorf("params must be an object, got %s", block.Params.Type().FriendlyName())
		}
		spec.Params = params
	}
	return spec, nil
}

func translateLayer(block *layerBlock) resource.LayerSpec {
	spec := resource.LayerSpec{ID: block.ID, URL: block.URL, Alpha: 1.0, Brightness: 1.0}
	if block.Alpha != nil {
		spec.Alpha = *block.Alpha
	}
	if block.Brightness != nil {
		spec.Brightness = *block.Brightness
	}
	return spec
}

func translateOverlay(block *overlayBlock) resource.OverlaySpec {
	spec := resource.OverlaySpec{ID: block.ID, Source: block.Source}
	if block.Stroke != nil {
		spec.Stroke = *block.Stroke
	}
	if block.Fill != nil {
		spec.Fill = *block.Fill
	}
	return spec
}
