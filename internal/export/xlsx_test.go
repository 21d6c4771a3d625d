package export

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"notas/internal/core"
)

func TestWriteXLSX(t *testing.T) {
	records := []core.Record{
		{ID: 1, Date: "2025-01-05", Company: "Acme", Number: "10", Amount: core.Money{Cents: 10050}, Note: "jan"},
		{ID: 2, Date: "2025-02-01", Company: "Beta", Number: "11", Amount: core.Money{Cents: 7500}},
	}

	path := filepath.Join(t.TempDir(), "notas.xlsx")
	if err := WriteXLSX(records, path); err != nil {
		t.Fatalf("write xlsx: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Notas")
	if err != nil {
		t.Fatalf("read sheet: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "Data" || rows[0][4] != "Observações" {
		t.Fatalf("unexpected header: %v", rows[0])
	}
	if rows[1][0] != "05/01/2025" || rows[1][1] != "Acme" {
		t.Fatalf("unexpected first row: %v", rows[1])
	}
	if rows[2][3] != "75" {
		t.Fatalf("unexpected amount cell: %v", rows[2])
	}
}

func TestWriteXLSXEmptySet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	if err := WriteXLSX(nil, path); err != nil {
		t.Fatalf("write empty xlsx: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Notas")
	if err != nil {
		t.Fatalf("read sheet: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected header only, got %d rows", len(rows))
	}
}
