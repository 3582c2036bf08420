// Package config loads, normalizes, and validates Slate configuration data.
//
// Two TOML documents feed a run: the parameters file (camera, drive, motion
// depths, sampling defaults, output paths) and the geometry file it points to
// (dish positions, sterilizer position, well plate grid). Both are loaded
// once at worker construction and are immutable for the run's lifetime.
//
// Always obtain settings through this package so downstream code receives
// expanded paths, canonical log formats, and clear validation errors.
package config
