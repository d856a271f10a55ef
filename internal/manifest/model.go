package manifest

import (
	"time"

	"github.com/vk/geoscenego/internal/resource"
)

// Manifest is the merged result of loading every scene file in the configured
// paths. Resources declared here are seeded into the registry's Default
// partition at startup.
type Manifest struct {
	Scene      SceneSettings
	Entities   []resource.EntitySpec
	Primitives []resource.PrimitiveSpec
	Layers     []resource.LayerSpec
	Overlays   []resource.OverlaySpec
}

// SceneSettings comes from the optional scene {} block: where the viewer
// lives and how long to wait for its acknowledgements.
type SceneSettings struct {
	ViewerURL  string
	Namespace  string
	AckTimeout time.Duration
}

// ResourceCount reports how many resources the manifest declares in total.
func (m *Manifest) ResourceCount() int {
	return len(m.Entities) + len(m.Primitives) + len(m.Layers) + len(m.Overlays)
}
