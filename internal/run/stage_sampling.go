package run

import (
	"context"
	"fmt"
	"time"

	"slate/internal/plan"
)

// stageSampling performs the transfer cycles: sterilize once up front, then
// for each target colony pick, deposit, and sterilize again. The abort flag
// is checked after each transfer and before the follow-up sterilization, so
// a stopped run ends with the completed transfers on record and no trailing
// sterilization cycle.
func (w *Worker) stageSampling(ctx context.Context) error {
	targets := plan.TargetColonies(w.dishes)
	if len(targets) == 0 {
		return nil
	}

	if err := w.sterilize(ctx); err != nil {
		return err
	}
	for i, colony := range targets {
		if w.checkpoint() {
			return nil
		}

		w.notifier.Status(fmt.Sprintf("Sampling colony %d of %d", i+1, len(targets)))
		start := time.Now()
		if err := w.drive.Move(ctx, colony.Pos.X, colony.Pos.Y, w.cfg.Motion.PickDepth); err != nil {
			return err
		}
		well := w.wells[colony.Well]
		if err := w.drive.Move(ctx, well.Pos.X, well.Pos.Y, w.cfg.Motion.DepositDepth); err != nil {
			return err
		}
		colony.SampleDuration = time.Since(start)
		colony.Sampled = true
		w.wells[colony.Well].HasSample = true

		w.mu.Lock()
		w.stats.Transfers++
		w.mu.Unlock()
		w.notifier.Progress(i + 1)

		if w.checkpoint() {
			return nil
		}
		if err := w.sterilize(ctx); err != nil {
			return err
		}
	}
	return nil
}

// sterilize runs one bath cycle: descend into the sterilizer, dwell, raise
// to cruise height, and cool. Holds run to completion even when a stop
// request arrives mid-hold.
func (w *Worker) sterilize(ctx context.Context) error {
	bath := w.cfg.Geometry.Sterilizer
	if err := w.drive.Move(ctx, bath.X, bath.Y, w.cfg.Motion.SterilizeDepth); err != nil {
		return err
	}
	w.hold(ctx, w.dwell)
	if err := w.drive.Move(ctx, bath.X, bath.Y, w.cfg.Motion.CruiseDepth); err != nil {
		return err
	}
	w.hold(ctx, w.cooling)

	w.mu.Lock()
	w.stats.Sterilizations++
	w.mu.Unlock()
	return nil
}
