package app

import (
	"context"

	"github.com/vk/geoscenego/internal/ctxlog"
	"github.com/vk/geoscenego/internal/resource"
)

// seedDefaults adds every manifest resource under Default provenance.
// Imagery layers go first so the base map exists before anything is drawn
// over it, then entities, primitive batches, and finally the overlays, whose
// creation can suspend on data-source loading. Seeding is best-effort per
// resource; failures are logged and counted, not fatal mid-stream.
func (a *App) seedDefaults(ctx context.Context) (seeded, failed int) {
	logger := ctxlog.FromContext(ctx)

	var specs []resource.Spec
	for _, s := range a.manifest.Layers {
		specs = append(specs, s)
	}
	for _, s := range a.manifest.Entities {
		specs = append(specs, s)
	}
	for _, s := range a.manifest.Primitives {
		specs = append(specs, s)
	}
	for _, s := range a.manifest.Overlays {
		specs = append(specs, s)
	}

	for _, spec := range specs {
		if _, err := a.resources.Add(ctx, resource.Default, spec); err != nil {
			logger.Error("Failed to seed resource.",
				"kind", spec.Kind(), "id", spec.ResourceID(), "error", err)
			failed++
			continue
		}
		seeded++
	}
	return seeded, failed
}
