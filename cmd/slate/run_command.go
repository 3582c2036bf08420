package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"slate/internal/camera"
	"slate/internal/config"
	"slate/internal/detect"
	"slate/internal/drive"
	"slate/internal/logging"
	"slate/internal/notifications"
	"slate/internal/run"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var names []string
	var count int
	var dwellSeconds float64
	var coolingSeconds float64

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute a colony picking run",
		Long: `Execute a colony picking run: image the active dishes, locate colonies,
and transfer the selected targets into the multiwell plate.

Press Ctrl-C once to request a stop; the run finishes its current motion,
records completed transfers, and parks safely.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if count <= 0 {
				count = cfg.Sampling.DishCount
			}
			if dwellSeconds < 0 {
				dwellSeconds = cfg.Sampling.SterilizerDwellSeconds
			}
			if coolingSeconds < 0 {
				coolingSeconds = cfg.Sampling.CoolingSeconds
			}
			if len(names) == 0 {
				for i := 1; i <= count; i++ {
					names = append(names, fmt.Sprintf("P%d", i))
				}
			}

			// One run per instrument at a time.
			lock := flock.New(cfg.Paths.LockFile)
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire instrument lock: %w", err)
			}
			if !locked {
				return fmt.Errorf("another run holds the instrument lock at %s", cfg.Paths.LockFile)
			}
			defer lock.Unlock()

			logger, err := newCommandLogger(cfg)
			if err != nil {
				return fmt.Errorf("configure logging: %w", err)
			}

			notifier := notifications.NewPublisher(0)
			worker := run.New(cfg,
				drive.NewSerialController(cfg.Drive, cfg.Motion, logger),
				camera.NewGrabber(cfg.Camera, logger),
				detect.NewAnalyzer(cfg.Detector, logger),
				notifier, logger)

			runCtx := cmd.Context()
			signals := make(chan os.Signal, 2)
			signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(signals)
			go func() {
				<-signals
				fmt.Fprintln(cmd.ErrOrStderr(), "stop requested, finishing current motion")
				if err := worker.Stop(runCtx); err != nil {
					logger.Warn("stop request failed", logging.Error(err))
				}
			}()

			done := make(chan error, 1)
			go func() {
				done <- worker.Run(runCtx, run.Request{
					DishNames:       names,
					DishCount:       count,
					SterilizerDwell: time.Duration(dwellSeconds * float64(time.Second)),
					Cooling:         time.Duration(coolingSeconds * float64(time.Second)),
				})
			}()

			renderer := newEventRenderer(cmd.OutOrStdout(), isatty.IsTerminal(os.Stdout.Fd()))
			for event := range notifier.Events() {
				renderer.render(event)
			}
			if err := <-done; err != nil {
				return fmt.Errorf("run %s failed: %w", worker.RunID(), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Results in %s\n", worker.OutputDir())
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&names, "name", "n", nil, "Dish name, repeatable, one per active dish")
	cmd.Flags().IntVarP(&count, "dishes", "d", 0, "Number of active dishes (default from config)")
	cmd.Flags().Float64Var(&dwellSeconds, "dwell", -1, "Sterilizer dwell time in seconds (default from config)")
	cmd.Flags().Float64Var(&coolingSeconds, "cool", -1, "Cooling time in seconds (default from config)")
	return cmd
}

func newCommandLogger(cfg *config.Config) (*slog.Logger, error) {
	format := cfg.Logging.Format
	if format == "" {
		if isatty.IsTerminal(os.Stderr.Fd()) {
			format = "console"
		} else {
			format = "json"
		}
	}
	return logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      format,
		OutputPaths: []string{"stderr"},
	})
}
