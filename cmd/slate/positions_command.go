package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"slate/internal/plan"
)

func newPositionsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "positions",
		Short: "Show the configured baseplate geometry",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			geometry := cfg.Geometry

			dishRows := make([][]string, 0, len(geometry.Dishes))
			for _, dish := range geometry.Dishes {
				dishRows = append(dishRows, []string{
					strconv.Itoa(dish.ID),
					formatMM(dish.X),
					formatMM(dish.Y),
				})
			}
			fmt.Fprintln(out, "Dish slots")
			fmt.Fprintln(out, renderTable([]string{"Slot", "X (mm)", "Y (mm)"}, dishRows, 2, 3))

			fmt.Fprintln(out, "Sterilizer")
			fmt.Fprintln(out, renderTable([]string{"X (mm)", "Y (mm)"},
				[][]string{{formatMM(geometry.Sterilizer.X), formatMM(geometry.Sterilizer.Y)}}, 1, 2))

			grid := geometry.Wells
			corners := []int{0, grid.Columns - 1, (grid.Rows - 1) * grid.Columns, grid.Rows*grid.Columns - 1}
			wellRows := make([][]string, 0, len(corners))
			for _, id := range corners {
				x, y := geometry.WellPosition(id)
				wellRows = append(wellRows, []string{
					plan.WellLabel(id, grid.Columns),
					formatMM(x),
					formatMM(y),
				})
			}
			fmt.Fprintf(out, "Well plate (%dx%d, %.1fmm pitch, corners shown)\n", grid.Rows, grid.Columns, grid.Pitch)
			fmt.Fprintln(out, renderTable([]string{"Well", "X (mm)", "Y (mm)"}, wellRows, 2, 3))
			return nil
		},
	}
}

func formatMM(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
