package run

import (
	"context"
	"fmt"
	"path/filepath"

	"slate/internal/drive"
	"slate/internal/logging"
	"slate/internal/services"
	"slate/internal/textutil"
)

func (w *Worker) stageCameraInit(ctx context.Context) error {
	return w.camera.Configure(ctx)
}

func (w *Worker) stageDriveInit(ctx context.Context) error {
	return w.drive.Initialize(ctx)
}

// stageDriveHome homes Z first so the tool clears the baseplate before any
// horizontal homing motion.
func (w *Worker) stageDriveHome(ctx context.Context) error {
	for _, axis := range []drive.Axis{drive.AxisZ, drive.AxisX, drive.AxisY} {
		if w.checkpoint() {
			return nil
		}
		if err := w.drive.Home(ctx, axis); err != nil {
			return err
		}
	}
	return nil
}

// stageCapture images each active dish in turn, then releases the camera so
// it is free before the long sampling stage begins.
func (w *Worker) stageCapture(ctx context.Context) error {
	for _, dish := range w.dishes {
		if !dish.Active {
			continue
		}
		if w.checkpoint() {
			return nil
		}

		dishCtx := services.WithDish(ctx, dish.Name)
		logger := logging.WithContext(dishCtx, w.logger)
		w.notifier.Status(fmt.Sprintf("Imaging dish %s", dish.Name))

		err := w.drive.MoveDirect(dishCtx,
			dish.Pos.X+w.cfg.Motion.CameraOffsetX,
			dish.Pos.Y+w.cfg.Motion.CameraOffsetY,
			w.cfg.Motion.CruiseDepth)
		if err != nil {
			return err
		}
		if w.checkpoint() {
			return nil
		}

		dest := filepath.Join(w.rawDir, textutil.SanitizeFileName(dish.Name)+".png")
		if err := w.camera.Capture(dishCtx, dest); err != nil {
			return err
		}
		dish.RawImagePath = dest
		logger.Info("dish imaged", logging.String("image", dest))
	}
	w.releaseCamera()
	return nil
}
