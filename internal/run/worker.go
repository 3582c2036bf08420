package run

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"slate/internal/camera"
	"slate/internal/config"
	"slate/internal/detect"
	"slate/internal/drive"
	"slate/internal/logging"
	"slate/internal/notifications"
	"slate/internal/plan"
	"slate/internal/services"
)

// Request carries the operator's per-run parameters.
type Request struct {
	// DishNames are operator labels for the active dishes, one per active
	// slot in ascending slot order.
	DishNames []string
	// DishCount is the number of active dishes, counted from slot 1.
	DishCount int
	// SterilizerDwell is how long the tool holds in the sterilizer bath.
	SterilizerDwell time.Duration
	// Cooling is how long the tool holds above the bath after sterilizing.
	Cooling time.Duration
}

// Stats summarizes what a run accomplished.
type Stats struct {
	TotalColonies  int
	Targets        int
	Transfers      int
	Sterilizations int
}

// Worker executes one picking run. Construct with New, start with Run, steer
// with Pause, Resume, and Stop from other goroutines.
type Worker struct {
	cfg      *config.Config
	drive    drive.Controller
	camera   camera.Camera
	detector detect.Detector
	notifier *notifications.Publisher
	logger   *slog.Logger
	rng      *rand.Rand

	runID     string
	outDir    string
	rawDir    string
	detectDir string

	dishes []*plan.Dish
	wells  []plan.Well

	dwell   time.Duration
	cooling time.Duration

	mu             sync.Mutex
	paused         bool
	pauseCond      *sync.Cond
	cameraReleased bool
	driveReleased  bool
	stats          Stats
}

// Option adjusts worker construction.
type Option func(*Worker)

// WithRand fixes the selection RNG, used by tests for determinism.
func WithRand(rng *rand.Rand) Option {
	return func(w *Worker) { w.rng = rng }
}

// WithRunID fixes the run identifier instead of generating one.
func WithRunID(id string) Option {
	return func(w *Worker) { w.runID = id }
}

// New constructs a worker bound to the given capabilities. The logger is
// used until the run directory exists, after which logging switches to the
// per-run log file.
func New(cfg *config.Config, drv drive.Controller, cam camera.Camera, det detect.Detector, notifier *notifications.Publisher, logger *slog.Logger, opts ...Option) *Worker {
	if logger == nil {
		logger = logging.NewNop()
	}
	w := &Worker{
		cfg:      cfg,
		drive:    drv,
		camera:   cam,
		detector: det,
		notifier: notifier,
		logger:   logger,
	}
	w.pauseCond = sync.NewCond(&w.mu)
	for _, opt := range opts {
		opt(w)
	}
	if w.runID == "" {
		w.runID = uuid.NewString()
	}
	return w
}

// RunID returns the run identifier.
func (w *Worker) RunID() string { return w.runID }

// OutputDir returns the run directory, empty until Run has prepared it.
func (w *Worker) OutputDir() string { return w.outDir }

// Stats returns a snapshot of the run counters.
func (w *Worker) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

// Pause halts in-flight motion and gates the pipeline at its next
// checkpoint. Dwell timers keep running while paused.
func (w *Worker) Pause(ctx context.Context) error {
	w.mu.Lock()
	w.paused = true
	w.mu.Unlock()
	return w.drive.Stop(ctx)
}

// Resume clears the pause gate and the drive abort flag.
func (w *Worker) Resume(ctx context.Context) error {
	w.mu.Lock()
	w.paused = false
	w.pauseCond.Broadcast()
	w.mu.Unlock()
	return w.drive.Resume(ctx)
}

// Stop requests run cancellation. The abort flag stays latched so the
// pipeline unwinds through its checkpoints into teardown.
func (w *Worker) Stop(ctx context.Context) error {
	w.mu.Lock()
	w.paused = false
	w.pauseCond.Broadcast()
	w.mu.Unlock()
	return w.drive.Stop(ctx)
}

// waitIfPaused blocks the pipeline while the pause gate is closed.
func (w *Worker) waitIfPaused() {
	w.mu.Lock()
	for w.paused {
		w.pauseCond.Wait()
	}
	w.mu.Unlock()
}

// checkpoint blocks while paused, then reports whether the run should
// unwind. The gate is waited on before the abort flag is read because a
// pause also halts the drive: Resume clears the flag, while Stop opens the
// gate and leaves it latched.
func (w *Worker) checkpoint() bool {
	w.waitIfPaused()
	return w.drive.Aborted()
}

// prepare validates the request, builds the run plan skeleton, creates the
// run directory tree, and switches logging to the per-run log file.
func (w *Worker) prepare(req Request) error {
	if req.SterilizerDwell < 0 || req.SterilizerDwell > maxHold {
		return services.Wrap(services.ErrValidation, "", "prepare",
			fmt.Sprintf("sterilizer dwell %s outside range [0s, %s]", req.SterilizerDwell, maxHold), nil)
	}
	if req.Cooling < 0 || req.Cooling > maxHold {
		return services.Wrap(services.ErrValidation, "", "prepare",
			fmt.Sprintf("cooling time %s outside range [0s, %s]", req.Cooling, maxHold), nil)
	}
	dishes, err := plan.BuildDishes(w.cfg.Geometry, req.DishNames, req.DishCount)
	if err != nil {
		return services.Wrap(services.ErrValidation, "", "prepare", err.Error(), nil)
	}
	w.dishes = dishes
	w.wells = plan.BuildWells(w.cfg.Geometry, w.cfg.Sampling.WellCapacity)
	w.dwell = req.SterilizerDwell
	w.cooling = req.Cooling

	stamp := time.Now().UTC().Format("20060102-150405")
	w.outDir = filepath.Join(w.cfg.Paths.OutputDir, fmt.Sprintf("%s-%.8s", stamp, w.runID))
	w.rawDir = filepath.Join(w.outDir, "raw_images")
	w.detectDir = filepath.Join(w.outDir, "detections")
	for _, dir := range []string{w.outDir, w.rawDir, w.detectDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return services.Wrap(services.ErrPersistence, "", "prepare",
				fmt.Sprintf("create run directory %s", dir), err)
		}
	}

	runLogger, err := logging.New(logging.Options{
		Level:       w.cfg.Logging.Level,
		Format:      "json",
		OutputPaths: []string{filepath.Join(w.outDir, "process.log")},
	})
	if err != nil {
		return services.Wrap(services.ErrPersistence, "", "prepare", "open run log", err)
	}
	w.logger = runLogger.With(logging.String(logging.FieldRunID, w.runID))
	return nil
}

// maxHold bounds operator-supplied dwell and cooling times.
const maxHold = 1000 * time.Second
