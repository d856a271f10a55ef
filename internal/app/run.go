package app

import (
	"context"
	"fmt"

	"github.com/vk/geoscenego/internal/ctxlog"
	"github.com/vk/geoscenego/internal/memscene"
	"github.com/vk/geoscenego/internal/remotescene"
	"github.com/vk/geoscenego/internal/scene"
)

// Run attaches a scene graph, seeds every manifest resource into the Default
// partition, reports counts, and tears the scene down again.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	graph, err := a.buildGraph(ctx)
	if err != nil {
		return err
	}

	if err := a.adapter.Attach(ctx, graph); err != nil {
		return fmt.Errorf("failed to attach scene graph: %w", err)
	}
	// Teardown must run even when seeding errored or ctx is already done.
	defer func() {
		if err := a.adapter.Detach(context.WithoutCancel(ctx)); err != nil {
			a.logger.Warn("Scene teardown reported an error.", "error", err)
		}
	}()

	seeded, failed := a.seedDefaults(ctx)
	a.logger.Info("Scene manifest applied.",
		"seeded", seeded, "failed", failed, "declared", a.manifest.ResourceCount())

	if failed > 0 {
		return fmt.Errorf("%d of %d manifest resources failed to seed", failed, a.manifest.ResourceCount())
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

// buildGraph selects the scene graph implementation for this run: in-memory
// for dry runs, otherwise the remote viewer the settings name.
func (a *App) buildGraph(ctx context.Context) (scene.Graph, error) {
	if a.config.DryRun {
		a.logger.Info("Dry run, using in-memory scene graph.")
		return memscene.New(), nil
	}

	settings := a.viewerSettings()
	if settings.ViewerURL == "" {
		return nil, fmt.Errorf("no viewer URL configured; set one in the scene block or pass --viewer-url (or use --dry-run)")
	}

	graph, err := remotescene.Connect(ctx, remotescene.Options{
		URL:        settings.ViewerURL,
		Namespace:  settings.Namespace,
		AckTimeout: settings.AckTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to viewer: %w", err)
	}
	return graph, nil
}
