package run

import (
	"context"
	"time"

	"slate/internal/logging"
	"slate/internal/services"
)

// Run executes the full pipeline and blocks until the run reaches a terminal
// state. The same outcome is reported twice: through the notifications
// channel (finished or fault, after which the channel closes) and as the
// return value, nil for a completed or operator-stopped run.
func (w *Worker) Run(ctx context.Context, req Request) error {
	if err := w.prepare(req); err != nil {
		w.logger.Error("run rejected", logging.Error(err))
		w.notifier.Fault(services.Details(err).Message)
		return err
	}
	ctx = services.WithRunID(ctx, w.runID)
	w.logger.Info("run started",
		logging.String("output_dir", w.outDir),
		logging.Int("dish_count", req.DishCount),
		logging.Duration("sterilizer_dwell", w.dwell),
		logging.Duration("cooling", w.cooling))

	var runErr error
	for _, stage := range w.stageTable() {
		if stage.abortable {
			if w.checkpoint() {
				break
			}
		} else {
			w.waitIfPaused()
		}

		stageCtx := services.WithStage(ctx, string(stage.name))
		logger := logging.WithContext(stageCtx, w.logger)
		w.notifier.Stage(string(stage.name))
		w.notifier.Status(stage.status)
		logger.Info("stage started")

		start := time.Now()
		if err := stage.fn(stageCtx); err != nil {
			logger.Error("stage failed",
				logging.Duration("elapsed", time.Since(start)),
				logging.Error(err))
			runErr = err
			break
		}
		logger.Info("stage completed", logging.Duration("elapsed", time.Since(start)))
	}
	aborted := runErr == nil && w.drive.Aborted()

	// Persistence and teardown always run, even on the fault path.
	w.notifier.Stage(string(StageSaveTable))
	w.notifier.Status("Saving results")
	if err := w.stageSaveTable(ctx); err != nil {
		if runErr == nil {
			runErr = err
		} else {
			// Best effort during recovery; the original fault wins.
			w.logger.Error("report persistence failed during recovery", logging.Error(err))
		}
	}

	w.notifier.Stage(string(StageTerminate))
	w.notifier.Status("Releasing hardware")
	w.release(ctx, runErr == nil && !aborted)

	if runErr != nil {
		w.logger.Error("run faulted", logging.Error(runErr))
		w.notifier.Fault(services.Details(runErr).Message)
		return runErr
	}
	if aborted {
		w.logger.Info("run stopped by operator", logging.Int("transfers", w.Stats().Transfers))
	} else {
		w.notifier.Stage(string(StageDone))
		w.logger.Info("run completed", logging.Int("transfers", w.Stats().Transfers))
	}
	w.notifier.Finished(aborted)
	return runErr
}

// release frees the camera and drive exactly once each. Polite drive
// termination parks the tool; fault and stop paths skip the park move.
func (w *Worker) release(ctx context.Context, polite bool) {
	w.mu.Lock()
	releaseCamera := !w.cameraReleased
	releaseDrive := !w.driveReleased
	w.cameraReleased = true
	w.driveReleased = true
	w.mu.Unlock()

	if releaseCamera {
		if err := w.camera.Release(); err != nil {
			w.logger.Warn("camera release failed", logging.Error(err))
		}
	}
	if releaseDrive {
		if err := w.drive.Terminate(ctx, polite); err != nil {
			w.logger.Warn("drive termination failed", logging.Error(err))
		}
	}
}

// releaseCamera frees the camera ahead of teardown once imaging is done.
func (w *Worker) releaseCamera() {
	w.mu.Lock()
	release := !w.cameraReleased
	w.cameraReleased = true
	w.mu.Unlock()
	if release {
		if err := w.camera.Release(); err != nil {
			w.logger.Warn("camera release failed", logging.Error(err))
		}
	}
}

// hold sleeps for the given duration. Context cancellation cuts the hold
// short; the drive abort flag does not, because sterilizer and cooling holds
// must run to completion once started.
func (w *Worker) hold(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
