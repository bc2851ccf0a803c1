// =============================================================================
// Loyverse Export - XLSX Writer Module
// =============================================================================
//
// This module is the output boundary of the pipeline: it persists named
// tables as sheets of one xlsx workbook using excelize.
//
// FORMAT CONSTRAINTS:
//   - Sheet names are truncated to 31 characters (xlsx limit).
//   - The first sheet replaces the workbook's default "Sheet1".
//   - Row 1 is the header row; data rows follow.
//
// WRITE SAFETY:
//   The workbook is serialized to "<path>.tmp" and renamed into place, so a
//   failed export never leaves a partial file under the final name.
//
// =============================================================================

package xlsxwriter

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/loyverse-export/internal/record"
)

// maxSheetNameLength is the xlsx sheet name limit.
const maxSheetNameLength = 31

// Sheet is one named table to persist.
type Sheet struct {
	// Name is the sheet name; truncated to 31 characters on write.
	Name string

	// Table holds the header row and data rows.
	Table record.Table
}

// Writer persists sheets as an xlsx workbook.
type Writer struct{}

// New creates a new Writer.
func New() *Writer {
	return &Writer{}
}

// Write persists the sheets to an xlsx file at path, in slice order.
//
// PARAMETERS:
//   - path: The final workbook path.
//   - sheets: The sheets to write, first slice element first. Must not be
//     empty.
//
// RETURNS:
//   - An error if no sheets are given or serialization fails. On failure no
//     file exists at path.
func (w *Writer) Write(path string, sheets []Sheet) error {
	if len(sheets) == 0 {
		return fmt.Errorf("no sheets to write")
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		name := truncateName(sheet.Name)

		if i == 0 {
			// Rename the default sheet instead of leaving an empty Sheet1.
			if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
				return fmt.Errorf("failed to name sheet %s: %w", name, err)
			}
		} else {
			if _, err := f.NewSheet(name); err != nil {
				return fmt.Errorf("failed to create sheet %s: %w", name, err)
			}
		}

		if err := writeTable(f, name, sheet.Table); err != nil {
			return fmt.Errorf("failed to write sheet %s: %w", name, err)
		}
	}

	// Serialize next to the final path, then rename into place.
	tmpPath := path + ".tmp"
	if err := f.SaveAs(tmpPath); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to move workbook into place: %w", err)
	}

	return nil
}

// writeTable writes the header row and data rows of one table.
func writeTable(f *excelize.File, sheetName string, table record.Table) error {
	for col, header := range table.Headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return err
		}
	}

	for rowIdx, row := range table.Rows {
		for col, value := range row {
			cellValue := toCellValue(value)
			if cellValue == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheetName, cell, cellValue); err != nil {
				return err
			}
		}
	}

	return nil
}

// toCellValue converts a table cell into a value excelize can store.
// Decimals become numeric cells; nested structures (taxes, discounts,
// payment details) are serialized as JSON text; nil stays blank.
func toCellValue(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case decimal.Decimal:
		return t.InexactFloat64()
	case string, bool, float64, int, int64:
		return t
	case map[string]any, []any:
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}
		return string(data)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// truncateName enforces the xlsx sheet name length limit.
func truncateName(name string) string {
	if len(name) > maxSheetNameLength {
		return name[:maxSheetNameLength]
	}
	return name
}
