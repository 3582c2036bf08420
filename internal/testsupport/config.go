// Package testsupport provides fixtures shared by Slate package tests: a
// temp-directory config builder and in-process fakes for the drive, camera,
// and detector capabilities.
package testsupport

import (
	"path/filepath"
	"testing"

	"slate/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test
// and the standard six-dish geometry.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.OutputDir = filepath.Join(base, "runs")
	cfg.Paths.GeometryFile = filepath.Join(base, "geometry.toml")
	cfg.Paths.LockFile = filepath.Join(base, "slate.lock")
	cfg.Geometry = Geometry()

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// Geometry returns a six-dish baseplate with a 96-well plate grid.
func Geometry() config.Geometry {
	return config.Geometry{
		Dishes: []config.DishPosition{
			{ID: 1, X: 70, Y: 35},
			{ID: 2, X: 70, Y: 135},
			{ID: 3, X: 70, Y: 235},
			{ID: 4, X: 170, Y: 35},
			{ID: 5, X: 170, Y: 135},
			{ID: 6, X: 170, Y: 235},
		},
		Sterilizer: config.SterilizerPosition{X: 455, Y: 195},
		Wells:      config.WellGrid{OriginX: 290, OriginY: 80, Pitch: 9, Rows: 8, Columns: 12},
	}
}

// WithDishCount overrides the configured dish count.
func WithDishCount(count int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Sampling.DishCount = count
	}
}

// WithHolds overrides the sterilizer dwell and cooling times in seconds.
func WithHolds(dwell, cooling float64) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Sampling.SterilizerDwellSeconds = dwell
		cfg.Sampling.CoolingSeconds = cooling
	}
}
