package app

import (
	"errors"
	"fmt"
	"slices"

	"github.com/vk/catalogplan/internal/entity"
)

// Directions accepted by Config.Direction.
const (
	DirectionInstall   = "install"
	DirectionUninstall = "uninstall"
	DirectionBoth      = "both"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ManifestPaths []string // hcl files or directories
	SettingsPath  string   // yaml, optional

	// CatalogPath is the badger directory holding the catalog. When empty
	// the catalog lives in memory, seeded from CatalogSeed.
	CatalogPath string
	CatalogSeed string

	SpoolDir     string
	ReplaceSpool bool // replace a spool that still holds a plan
	Direction    string
	Architecture string // overrides the settings file
	Interactive  bool

	MetricsFile string
	TraceFile   string

	LogFormat string
	LogLevel  string
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.ManifestPaths) == 0 {
		return nil, errors.New("at least one manifest path is required")
	}
	if cfg.SpoolDir == "" {
		return nil, errors.New("SpoolDir is a required configuration field and cannot be empty")
	}
	if cfg.Direction == "" {
		cfg.Direction = DirectionBoth
	}
	if !slices.Contains([]string{DirectionInstall, DirectionUninstall, DirectionBoth}, cfg.Direction) {
		return nil, fmt.Errorf("unknown direction %q", cfg.Direction)
	}
	if cfg.CatalogPath != "" && cfg.CatalogSeed != "" {
		return nil, errors.New("a catalog seed only applies to the in-memory catalog")
	}
	return &cfg, nil
}

// Directions returns the passes to run, uninstall first.
func (c *Config) Directions() []entity.Direction {
	switch c.Direction {
	case DirectionInstall:
		return []entity.Direction{entity.DirectionInstall}
	case DirectionUninstall:
		return []entity.Direction{entity.DirectionUninstall}
	default:
		return []entity.Direction{entity.DirectionUninstall, entity.DirectionInstall}
	}
}
