package csvexport

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"boothscan/internal/domain"
)

const xlsxSheet = "Records"

// ExportXLSX renders the records of a named profile as an XLSX workbook.
// Like Export, it returns domain.ErrNothingToExport when no row qualifies.
func ExportXLSX(records []domain.ExtractedRecord, profile domain.ExportProfile) ([]byte, error) {
	filter, err := ProfileFilter(profile)
	if err != nil {
		return nil, err
	}
	return ToXLSX(records, DefaultColumns, filter)
}

// ToXLSX writes a single-sheet workbook with a header row and one row per
// record accepted by filter. Every cell is written as a string.
func ToXLSX(records []domain.ExtractedRecord, columns []Column, filter Filter) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), xlsxSheet); err != nil {
		return nil, fmt.Errorf("naming sheet: %w", err)
	}

	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c.Label
	}
	if err := f.SetSheetRow(xlsxSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("writing header: %w", err)
	}

	row := 2
	for i := range records {
		rec := &records[i]
		if filter != nil && !filter(rec) {
			continue
		}
		values := recordToRow(rec, columns)
		cells := make([]interface{}, len(values))
		for j, v := range values {
			cells[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(xlsxSheet, cell, &cells); err != nil {
			return nil, fmt.Errorf("writing row %d: %w", row, err)
		}
		row++
	}
	if row == 2 {
		return nil, domain.ErrNothingToExport
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}
	return buf.Bytes(), nil
}
