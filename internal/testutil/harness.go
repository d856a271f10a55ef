// Package testutil provides shared helpers for integration-style tests:
// a thread-safe log buffer and a harness that applies scene manifest files
// against an in-memory scene graph.
package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/geoscenego/internal/app"
	"github.com/vk/geoscenego/internal/manifest"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// HarnessResult holds the outcomes of a dry-run application of a manifest.
type HarnessResult struct {
	LogOutput string
	Err       error
	App       *app.App
}

// WriteManifestFiles writes the given relative-path -> content map into a
// fresh temp directory and returns its root.
func WriteManifestFiles(t *testing.T, files map[string]string) string {
	t.Helper()

	tmpDir := t.TempDir()
	for name, content := range files {
		filePath := filepath.Join(tmpDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0644))
	}
	return tmpDir
}

// ApplyDryRun builds an App over the given manifest files and runs it against
// an in-memory scene graph, returning the run error, the app, and everything
// it logged.
func ApplyDryRun(t *testing.T, files map[string]string) *HarnessResult {
	t.Helper()

	scenePath := WriteManifestFiles(t, files)

	cfg, err := app.NewConfig(app.Config{
		ScenePath: scenePath,
		DryRun:    true,
		LogFormat: "text",
		LogLevel:  "debug",
	})
	require.NoError(t, err)

	var buf SafeBuffer
	sceneApp := app.NewApp(&buf, cfg, manifest.NewLoader())
	runErr := sceneApp.Run(context.Background())

	return &HarnessResult{
		LogOutput: buf.String(),
		Err:       runErr,
		App:       sceneApp,
	}
}
