package run

import (
	"context"
	"path/filepath"

	"slate/internal/logging"
	"slate/internal/plan"
	"slate/internal/report"
)

// ReportName is the results workbook filename within the run directory.
const ReportName = "results.xlsx"

// stageSaveTable persists the results workbook: one sheet per active dish
// holding its transferred colonies, annotated image attached when detection
// produced one. Dishes without transfers still get a header-only sheet.
func (w *Worker) stageSaveTable(_ context.Context) error {
	wb := report.NewWorkbook(w.logger)
	defer wb.Close()

	columns := w.cfg.Geometry.Wells.Columns
	for _, dish := range w.dishes {
		if !dish.Active {
			continue
		}
		rows := make([]report.Row, 0, len(dish.Colonies))
		for _, colony := range dish.Colonies {
			if !colony.Sampled {
				continue
			}
			rows = append(rows, report.Row{
				Well:          plan.WellLabel(colony.Well, columns),
				OriginX:       colony.Pos.X,
				OriginY:       colony.Pos.Y,
				CycleDuration: colony.SampleDuration,
			})
		}
		image := dish.AnnotatedImagePath
		if image == "" {
			image = dish.RawImagePath
		}
		if err := wb.AddDishSheet(dish.Name, rows, image); err != nil {
			return err
		}
	}

	path := filepath.Join(w.outDir, ReportName)
	if err := wb.Save(path); err != nil {
		return err
	}
	w.logger.Info("results saved", logging.String("report", path))
	return nil
}
