package run

import (
	"context"
	"path/filepath"

	"slate/internal/logging"
	"slate/internal/plan"
)

// stageProcess runs colony detection over the captured images, builds the
// colony plan, draws the sampling targets, and maps targets onto wells. The
// progress maximum is announced exactly once, here, after selection.
func (w *Worker) stageProcess(ctx context.Context) error {
	result, err := w.detector.Detect(ctx, w.rawDir, w.detectDir)
	if err != nil {
		return err
	}

	byName := result.ByName()
	nextID := 0
	for _, dish := range w.dishes {
		if !dish.Active {
			continue
		}
		res, ok := byName[dish.Name]
		if !ok {
			continue
		}
		offsets := make([]plan.Position, 0, len(res.Colonies))
		for _, det := range res.Colonies {
			offsets = append(offsets, plan.Position{X: det.X, Y: det.Y})
		}
		nextID = plan.AddColonies(dish, offsets, nextID)
		if res.AnnotatedImage != "" {
			dish.AnnotatedImagePath = filepath.Join(w.detectDir, res.AnnotatedImage)
		}
	}

	total := plan.TotalColonies(w.dishes)
	targets := plan.SelectTargets(w.dishes, len(w.wells), w.rng)
	plan.AssignWells(w.dishes, w.wells)

	w.mu.Lock()
	w.stats.TotalColonies = total
	w.stats.Targets = targets
	w.mu.Unlock()

	w.logger.Info("colonies located",
		logging.Int("detected", total),
		logging.Int("targets", targets))
	w.notifier.ProgressMax(targets)
	return nil
}
