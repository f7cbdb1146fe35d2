// Package spreadsheet renders a schedule as an .xlsx workbook.
//
// The workbook has a single sheet holding a header row followed by one row per
// session. Header cells are bold on a light-gray fill and the written range is
// wrapped in a table named Table1 using the TableStyleMedium9 style with row
// and column stripes.
package spreadsheet

import (
	"fmt"

	"github.com/pfrederiksen/sugarfit-crawler/internal/session"
	"github.com/xuri/excelize/v2"
)

const (
	SheetName  = "Sheet1"
	TableName  = "Table1"
	TableStyle = "TableStyleMedium9"
	HeaderFill = "DDDDDD"
)

// Build writes the rows into a new workbook and returns the file bytes
func Build(rows []session.Row) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	columns := session.Columns()
	if err := writeRow(f, 1, columns); err != nil {
		return nil, fmt.Errorf("writing header: %w", err)
	}
	for i, row := range rows {
		if err := writeRow(f, i+2, row.Values()); err != nil {
			return nil, fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(columns))
	if err != nil {
		return nil, fmt.Errorf("resolving last column: %w", err)
	}

	if err := styleHeader(f, lastCol); err != nil {
		return nil, err
	}

	// A table needs at least one data row
	if len(rows) > 0 {
		showStripes := true
		table := &excelize.Table{
			Range:             fmt.Sprintf("A1:%s%d", lastCol, len(rows)+1),
			Name:              TableName,
			StyleName:         TableStyle,
			ShowRowStripes:    &showStripes,
			ShowColumnStripes: true,
		}
		if err := f.AddTable(SheetName, table); err != nil {
			return nil, fmt.Errorf("adding table: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("encoding workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, rowNum int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}

	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return f.SetSheetRow(SheetName, cell, &cells)
}

func styleHeader(f *excelize.File, lastCol string) error {
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{HeaderFill}},
	})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	if err := f.SetCellStyle(SheetName, "A1", lastCol+"1", style); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}
	return nil
}
