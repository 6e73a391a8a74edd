// Package export writes the batch result table to an Excel workbook.
package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/ironsheep/blueprint-area/internal/area"
)

// ErrNoData is returned when there are no rows to export. No file is
// written in that case.
var ErrNoData = errors.New("no data to export")

// Sheet is the worksheet rows are written to.
const Sheet = "Sheet1"

// Headers are the column titles, in column order.
var Headers = []string{
	"Имя файла",
	"Общая площадь (м²)",
	"Количество жилых комнат",
	"Путь к изображению",
}

// Workbook builds a workbook with a header row followed by one row per
// aggregate, in order. Callers must Close the returned file.
func Workbook(rows []area.ImageAggregate) (*excelize.File, error) {
	if len(rows) == 0 {
		return nil, ErrNoData
	}

	f := excelize.NewFile()
	for i, h := range Headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(Sheet, cell, h); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	for i, r := range rows {
		row := i + 2
		write := func(col int, v any) error {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			return f.SetCellValue(Sheet, cell, v)
		}
		for col, v := range []any{r.SourceName, r.TotalArea, r.RoomCount, r.SourcePath} {
			if err := write(col+1, v); err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to write row %d: %w", row, err)
			}
		}
	}

	_ = f.SetColWidth(Sheet, "A", "A", 28) // file name
	_ = f.SetColWidth(Sheet, "B", "C", 22) // area, rooms
	_ = f.SetColWidth(Sheet, "D", "D", 60) // path

	return f, nil
}

// Bytes returns the workbook for rows as XLSX bytes.
func Bytes(rows []area.ImageAggregate) ([]byte, error) {
	f, err := Workbook(rows)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile writes the workbook for rows to path, creating parent
// directories as needed.
func WriteFile(path string, rows []area.ImageAggregate) error {
	data, err := Bytes(rows)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}
