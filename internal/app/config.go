package app

import (
	"errors"
	"time"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// ScenePath points at a .hcl manifest file or a directory of them.
	ScenePath string

	// ViewerURL, when set, overrides the manifest's scene block and selects
	// the remote viewer to drive. Empty with DryRun unset means the manifest
	// must name one.
	ViewerURL  string
	Namespace  string
	AckTimeout time.Duration

	// DryRun applies the manifest against an in-memory scene graph instead
	// of a viewer.
	DryRun bool

	LogFormat string
	LogLevel  string
}

// NewConfig validates a Config. ScenePath is the only required field.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.ScenePath == "" {
		return nil, errors.New("ScenePath is a required configuration field and cannot be empty")
	}

	return &cfg, nil
}
