// Package detect exposes the colony-detection capability.
//
// The production implementation shells out to an external analyzer over the
// run's raw image directory and parses the per-dish detection document it
// writes. Offsets in the document are relative to the dish origin; turning
// them into absolute colony positions is the pipeline's job.
package detect

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"slate/internal/config"
	"slate/internal/logging"
	"slate/internal/services"
)

// DetectionsFile is the document name the analyzer writes into its output
// directory.
const DetectionsFile = "detections.json"

// Detection is one colony offset from the dish origin, in millimeters.
type Detection struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DishResult holds the detections for one dish, keyed by the operator name
// encoded in the raw image filename.
type DishResult struct {
	Name           string      `json:"name"`
	Colonies       []Detection `json:"colonies"`
	AnnotatedImage string      `json:"annotated_image,omitempty"`
}

// Result is the full analyzer output for a run.
type Result struct {
	Dishes []DishResult `json:"dishes"`
}

// ByName indexes the result per dish name.
func (r *Result) ByName() map[string]DishResult {
	indexed := make(map[string]DishResult, len(r.Dishes))
	for _, dish := range r.Dishes {
		indexed[dish.Name] = dish
	}
	return indexed
}

// Detector is the capability contract for colony detection.
type Detector interface {
	// Detect analyzes every raw image under rawDir and writes detection
	// output (and annotated images when enabled) under outDir.
	Detect(ctx context.Context, rawDir, outDir string) (*Result, error)
}

// Analyzer runs the configured external detection tool.
type Analyzer struct {
	cfg    config.Detector
	logger *slog.Logger
}

var _ Detector = (*Analyzer)(nil)

// NewAnalyzer builds a detector backed by the configured analyzer tool.
func NewAnalyzer(cfg config.Detector, logger *slog.Logger) *Analyzer {
	return &Analyzer{cfg: cfg, logger: logging.NewComponentLogger(logger, "detect")}
}

func (a *Analyzer) Detect(ctx context.Context, rawDir, outDir string) (*Result, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrDetection, "IMG_PROC", "create output directory", outDir, err)
	}

	args := []string{"--input", rawDir, "--output", outDir}
	if a.cfg.Annotate {
		args = append(args, "--annotate")
	}
	cmd := exec.CommandContext(ctx, a.cfg.Analyzer, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return nil, services.Wrap(services.ErrDetection, "IMG_PROC", "run analyzer",
			fmt.Sprintf("%s: %s", a.cfg.Analyzer, string(output)), err)
	}

	result, err := ReadResult(filepath.Join(outDir, DetectionsFile))
	if err != nil {
		return nil, err
	}

	total := 0
	for _, dish := range result.Dishes {
		total += len(dish.Colonies)
	}
	a.logger.Info("detection complete",
		logging.Int("dishes", len(result.Dishes)),
		logging.Int("colonies", total),
	)
	return result, nil
}

// ReadResult parses a detection document from disk.
func ReadResult(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, services.Wrap(services.ErrDetection, "IMG_PROC", "read detections", path, err)
	}
	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, services.Wrap(services.ErrDetection, "IMG_PROC", "parse detections", path, err)
	}
	return &result, nil
}
