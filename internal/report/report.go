// Package report assembles the per-run results workbook.
//
// Each dish gets its own sheet: a header row, one row per transferred colony,
// and the dish's raw captured image embedded for audit. The workbook is built
// on the abort and fault paths too, so a partial run is never silently lost.
package report

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/xuri/excelize/v2"

	"slate/internal/logging"
	"slate/internal/services"
	"slate/internal/textutil"
)

var header = []any{"Well", "Origin X", "Origin Y", "Cycle Duration"}

// Row is one transferred colony.
type Row struct {
	Well          string
	OriginX       float64
	OriginY       float64
	CycleDuration time.Duration
}

// Workbook accumulates dish sheets and persists them as a single file.
type Workbook struct {
	file   *excelize.File
	logger *slog.Logger
	sheets int
}

// NewWorkbook creates an empty results workbook.
func NewWorkbook(logger *slog.Logger) *Workbook {
	return &Workbook{
		file:   excelize.NewFile(),
		logger: logging.NewComponentLogger(logger, "report"),
	}
}

// AddDishSheet appends one sheet named after the dish with the given data
// rows. When imagePath names an existing file it is embedded below the data
// block; a missing image (a run aborted before capture) is skipped, not an
// error.
func (w *Workbook) AddDishSheet(dishName string, rows []Row, imagePath string) error {
	sheet := w.uniqueSheetName(textutil.SanitizeSheetName(dishName))
	if _, err := w.file.NewSheet(sheet); err != nil {
		return services.Wrap(services.ErrPersistence, "SAV_TAB", "create sheet", sheet, err)
	}
	w.sheets++

	if err := w.file.SetSheetRow(sheet, "A1", &header); err != nil {
		return services.Wrap(services.ErrPersistence, "SAV_TAB", "write header", sheet, err)
	}
	for i, row := range rows {
		cell := fmt.Sprintf("A%d", i+2)
		values := []any{row.Well, row.OriginX, row.OriginY, row.CycleDuration.Round(time.Millisecond).Seconds()}
		if err := w.file.SetSheetRow(sheet, cell, &values); err != nil {
			return services.Wrap(services.ErrPersistence, "SAV_TAB", "write row", cell, err)
		}
	}

	if imagePath != "" {
		if _, err := os.Stat(imagePath); err == nil {
			anchor := fmt.Sprintf("A%d", len(rows)+4)
			if err := w.file.AddPicture(sheet, anchor, imagePath, nil); err != nil {
				return services.Wrap(services.ErrPersistence, "SAV_TAB", "embed image", imagePath, err)
			}
		} else {
			w.logger.Warn("raw image missing, sheet written without embed",
				logging.String("dish", dishName),
				logging.String("image", imagePath),
			)
		}
	}
	return nil
}

// Save persists the workbook. The default placeholder sheet is dropped once
// real dish sheets exist.
func (w *Workbook) Save(path string) error {
	if w.sheets > 0 {
		if err := w.file.DeleteSheet("Sheet1"); err != nil {
			w.logger.Debug("default sheet removal failed", logging.Error(err))
		}
	}
	if err := w.file.SaveAs(path); err != nil {
		return services.Wrap(services.ErrPersistence, "SAV_TAB", "save workbook", path, err)
	}
	w.logger.Info("workbook saved",
		logging.String("path", path),
		logging.Int("sheets", w.sheets),
	)
	return nil
}

// Close releases workbook resources without saving.
func (w *Workbook) Close() error {
	return w.file.Close()
}

func (w *Workbook) uniqueSheetName(base string) string {
	name := base
	for i := 2; ; i++ {
		if index, _ := w.file.GetSheetIndex(name); index < 0 {
			return name
		}
		suffix := fmt.Sprintf("_%d", i)
		if len(base)+len(suffix) > 31 {
			name = base[:31-len(suffix)] + suffix
		} else {
			name = base + suffix
		}
	}
}
