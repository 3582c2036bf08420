package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

//go:embed sample_geometry.toml
var sampleGeometry string

// Paths contains directory and file location configuration.
type Paths struct {
	OutputDir    string `toml:"output_dir"`
	GeometryFile string `toml:"geometry_file"`
	LockFile     string `toml:"lock_file"`
}

// Camera contains configuration for the image grabber tool.
type Camera struct {
	Grabber  string  `toml:"grabber"`
	Device   string  `toml:"device"`
	Width    int     `toml:"width"`
	Height   int     `toml:"height"`
	Exposure float64 `toml:"exposure"`
	Attempts int     `toml:"attempts"`
}

// Detector contains configuration for the colony detection tool.
type Detector struct {
	Analyzer string `toml:"analyzer"`
	Annotate bool   `toml:"annotate"`
}

// Drive contains serial connection settings for the motion controller.
type Drive struct {
	Port     string `toml:"port"`
	BaudRate int    `toml:"baud_rate"`
}

// Motion contains tool-head offsets and Z depths in millimeters.
type Motion struct {
	CameraOffsetX  float64 `toml:"camera_offset_x"`
	CameraOffsetY  float64 `toml:"camera_offset_y"`
	PickDepth      float64 `toml:"pick_depth"`
	DepositDepth   float64 `toml:"deposit_depth"`
	CruiseDepth    float64 `toml:"cruise_depth"`
	SterilizeDepth float64 `toml:"sterilize_depth"`
	ParkX          float64 `toml:"park_x"`
	ParkY          float64 `toml:"park_y"`
	ParkZ          float64 `toml:"park_z"`
}

// Sampling contains per-run defaults the operator can override at start.
type Sampling struct {
	DishCount              int     `toml:"dish_count"`
	SterilizerDwellSeconds float64 `toml:"sterilizer_dwell_seconds"`
	CoolingSeconds         float64 `toml:"cooling_seconds"`
	WellCapacity           int     `toml:"well_capacity"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// DishPosition is one configured petri dish slot on the baseplate.
type DishPosition struct {
	ID int     `toml:"id"`
	X  float64 `toml:"x"`
	Y  float64 `toml:"y"`
}

// SterilizerPosition locates the sterilizer bath.
type SterilizerPosition struct {
	X float64 `toml:"x"`
	Y float64 `toml:"y"`
}

// WellGrid describes the destination multiwell plate as a regular grid.
// Well ids run row-major from the origin corner.
type WellGrid struct {
	OriginX float64 `toml:"origin_x"`
	OriginY float64 `toml:"origin_y"`
	Pitch   float64 `toml:"pitch"`
	Rows    int     `toml:"rows"`
	Columns int     `toml:"columns"`
}

// Geometry is the immutable baseplate layout document.
type Geometry struct {
	Dishes     []DishPosition     `toml:"dishes"`
	Sterilizer SterilizerPosition `toml:"sterilizer"`
	Wells      WellGrid           `toml:"wells"`
}

// Config encapsulates all configuration values for Slate.
type Config struct {
	Paths    Paths    `toml:"paths"`
	Camera   Camera   `toml:"camera"`
	Detector Detector `toml:"detector"`
	Drive    Drive    `toml:"drive"`
	Motion   Motion   `toml:"motion"`
	Sampling Sampling `toml:"sampling"`
	Logging  Logging  `toml:"logging"`

	Geometry Geometry `toml:"-"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return ExpandPath("~/.config/slate/slate.toml")
}

// Load locates, parses, and validates the parameter document plus the
// geometry document it references. The returned config has all path fields
// expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		if err := decodeTOMLFile(resolvedPath, &cfg); err != nil {
			return nil, "", false, err
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	geometry, err := LoadGeometry(cfg.Paths.GeometryFile)
	if err != nil {
		return nil, "", false, err
	}
	cfg.Geometry = *geometry

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// LoadGeometry parses and validates a geometry document.
func LoadGeometry(path string) (*Geometry, error) {
	expanded, err := ExpandPath(path)
	if err != nil {
		return nil, fmt.Errorf("geometry path: %w", err)
	}
	var geometry Geometry
	if err := decodeTOMLFile(expanded, &geometry); err != nil {
		return nil, err
	}
	if err := geometry.validate(); err != nil {
		return nil, err
	}
	return &geometry, nil
}

func decodeTOMLFile(path string, target any) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer file.Close()

	decoder := toml.NewDecoder(file)
	if err := decoder.Decode(target); err != nil {
		return fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := ExpandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("slate.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// SampleConfig returns the embedded sample parameter document.
func SampleConfig() string { return sampleConfig }

// SampleGeometry returns the embedded sample geometry document.
func SampleGeometry() string { return sampleGeometry }

// ExpandPath resolves ~ prefixes and returns an absolute path.
func ExpandPath(pathValue string) (string, error) {
	trimmed := strings.TrimSpace(pathValue)
	if trimmed == "" {
		return "", errors.New("path must not be empty")
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if trimmed == "~" {
			trimmed = home
		} else {
			trimmed = filepath.Join(home, trimmed[2:])
		}
	}
	absolute, err := filepath.Abs(trimmed)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}
	return absolute, nil
}
