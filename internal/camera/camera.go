// Package camera exposes the frame-capture capability.
//
// The production implementation shells out to an external grabber tool per
// frame. Cheap camera firmware returns a stale buffered frame on the first
// read after a reposition, so every capture discards one frame before taking
// the frame that is kept. A capture that still fails after the configured
// attempts is a fault; the pipeline does not retry above this layer.
package camera

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"sync"

	"slate/internal/config"
	"slate/internal/logging"
	"slate/internal/services"
)

// Camera is the capability contract for image acquisition.
type Camera interface {
	// Configure prepares the device for the run.
	Configure(ctx context.Context) error
	// Capture writes one fresh frame to destPath.
	Capture(ctx context.Context, destPath string) error
	// Release frees the device. Safe to call more than once; the device is
	// released exactly once.
	Release() error
}

// Grabber captures frames by invoking an external grabber binary.
type Grabber struct {
	cfg    config.Camera
	logger *slog.Logger

	mu         sync.Mutex
	configured bool
	released   bool
}

var _ Camera = (*Grabber)(nil)

// NewGrabber builds a camera backed by the configured grabber tool.
func NewGrabber(cfg config.Camera, logger *slog.Logger) *Grabber {
	return &Grabber{cfg: cfg, logger: logging.NewComponentLogger(logger, "camera")}
}

func (g *Grabber) Configure(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.configured {
		return nil
	}
	if _, err := exec.LookPath(g.cfg.Grabber); err != nil {
		return services.Wrap(services.ErrCapture, "CAM_INIT", "locate grabber", g.cfg.Grabber, err)
	}
	g.configured = true
	g.released = false
	g.logger.Info("camera configured",
		logging.String("device", g.cfg.Device),
		logging.Int("width", g.cfg.Width),
		logging.Int("height", g.cfg.Height),
	)
	return nil
}

func (g *Grabber) Capture(ctx context.Context, destPath string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.configured || g.released {
		return services.Wrap(services.ErrCapture, "IMG_CAP", "capture frame", "camera not configured", nil)
	}

	// The discard frame flushes the device buffer; its outcome is irrelevant.
	stale := destPath + ".stale"
	if err := g.grab(ctx, stale); err != nil {
		g.logger.Debug("stale frame discard failed", logging.Error(err))
	}
	_ = os.Remove(stale)

	var lastErr error
	for attempt := 1; attempt <= g.cfg.Attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := g.grab(ctx, destPath); err != nil {
			lastErr = err
			g.logger.Warn("frame capture attempt failed",
				logging.Int("attempt", attempt),
				logging.Error(err),
			)
			continue
		}
		if err := validFrame(destPath); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return services.Wrap(services.ErrCapture, "IMG_CAP", "capture frame",
		fmt.Sprintf("no valid frame after %d attempts", g.cfg.Attempts), lastErr)
}

func (g *Grabber) Release() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.released || !g.configured {
		return nil
	}
	g.released = true
	g.configured = false
	g.logger.Info("camera released")
	return nil
}

func (g *Grabber) grab(ctx context.Context, destPath string) error {
	args := []string{
		"--device", g.cfg.Device,
		"--width", strconv.Itoa(g.cfg.Width),
		"--height", strconv.Itoa(g.cfg.Height),
		"--exposure", strconv.FormatFloat(g.cfg.Exposure, 'f', -1, 64),
		"--output", destPath,
	}
	cmd := exec.CommandContext(ctx, g.cfg.Grabber, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", g.cfg.Grabber, err, string(output))
	}
	return nil
}

func validFrame(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.Size() == 0 {
		return fmt.Errorf("empty frame file %s", path)
	}
	return nil
}
