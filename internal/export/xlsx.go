// Package export writes the record set to an XLSX workbook, one row per
// record on a sheet named "Notas".
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"notas/internal/core"
)

const sheetName = "Notas"

var headers = []string{"Data", "Empresa", "Numero", "Valor", "Observações"}

// WriteXLSX writes records to path, overwriting any existing file. Dates
// are rendered dd/mm/yyyy and amounts as decimal values.
func WriteXLSX(records []core.Record, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}

	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	for i, rec := range records {
		row := i + 2
		values := []any{
			formatDateBR(rec.Date),
			rec.Company,
			rec.Number,
			rec.Amount.Float(),
			rec.Note,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return fmt.Errorf("cell name: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return fmt.Errorf("write row %d: %w", row, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// formatDateBR turns YYYY-MM-DD into dd/mm/yyyy.
func formatDateBR(date string) string {
	if len(date) != 10 {
		return date
	}
	return date[8:10] + "/" + date[5:7] + "/" + date[0:4]
}
