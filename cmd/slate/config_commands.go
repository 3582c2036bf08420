package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"slate/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigShowCommand(ctx))

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create sample parameter and geometry files",
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			out := cmd.OutOrStdout()
			if err := writeSample(target, config.SampleConfig(), overwrite); err != nil {
				return err
			}
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)

			geometryPath := filepath.Join(dir, "geometry.toml")
			if err := writeSample(geometryPath, config.SampleGeometry(), overwrite); err != nil {
				return err
			}
			fmt.Fprintf(out, "Wrote sample geometry to %s\n", geometryPath)
			fmt.Fprintln(out, "Adjust dish, sterilizer, and well coordinates to the calibrated baseplate before running.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing files if present")
	return cmd
}

func writeSample(path, body string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --overwrite to replace it)", path)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("check %s: %w", path, err)
		}
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the parameter and geometry documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration valid (%s)\n", ctx.configPath)
			fmt.Fprintf(cmd.OutOrStdout(), "Geometry: %d dish slots, %d wells\n",
				len(cfg.Geometry.Dishes), cfg.Geometry.WellCount())
			return nil
		},
	}
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the resolved configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			rows := [][]string{
				{"Config file", ctx.configPath},
				{"Output directory", cfg.Paths.OutputDir},
				{"Geometry file", cfg.Paths.GeometryFile},
				{"Lock file", cfg.Paths.LockFile},
				{"Camera grabber", cfg.Camera.Grabber},
				{"Colony analyzer", cfg.Detector.Analyzer},
				{"Drive port", fmt.Sprintf("%s @ %d", cfg.Drive.Port, cfg.Drive.BaudRate)},
				{"Dish count", strconv.Itoa(cfg.Sampling.DishCount)},
				{"Sterilizer dwell", fmt.Sprintf("%.1fs", cfg.Sampling.SterilizerDwellSeconds)},
				{"Cooling", fmt.Sprintf("%.1fs", cfg.Sampling.CoolingSeconds)},
				{"Well capacity", strconv.Itoa(cfg.Sampling.WellCapacity)},
				{"Log level", cfg.Logging.Level},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Setting", "Value"}, rows))
			return nil
		},
	}
}
