// Package preflight verifies the instrument environment before a run is
// allowed to start: external tool binaries, the drive serial device, the
// output location, and the geometry document.
package preflight

import (
	"slate/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every preflight check for the given config.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	return []Result{
		CheckBinary("Camera grabber", cfg.Camera.Grabber),
		CheckBinary("Colony analyzer", cfg.Detector.Analyzer),
		CheckSerialPort("Drive serial port", cfg.Drive.Port),
		CheckOutputDir("Output directory", cfg.Paths.OutputDir),
		CheckFreeSpace("Output free space", cfg.Paths.OutputDir, MinFreeBytes),
		CheckGeometry("Geometry file", cfg.Paths.GeometryFile),
	}
}

// Passed reports whether every result passed.
func Passed(results []Result) bool {
	for _, result := range results {
		if !result.Passed {
			return false
		}
	}
	return true
}
