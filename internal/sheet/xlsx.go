package sheet

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/bill-scanner/internal/record"
)

// encode renders the table as a single-sheet workbook: header row, then one row per record.
func encode(t *Table, sheetName string) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	if sheetName != "" && sheetName != sheet {
		if err := f.SetSheetName(sheet, sheetName); err != nil {
			return nil, fmt.Errorf("rename sheet: %w", err)
		}
		sheet = sheetName
	}

	header := make([]interface{}, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("set header: %w", err)
	}

	for r, row := range t.Rows {
		for c, col := range t.Columns {
			v, ok := row.Get(col)
			if !ok || v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("set %s: %w", cell, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

// decode reads the first row as the header and every later row as a record.
// Numeric cells come back as int64 or float64, booleans as bool, everything else as string.
func decode(data []byte, sheetName string) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("xlsx open: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := sheetName
	if idx, _ := f.GetSheetIndex(sheet); sheet == "" || idx == -1 {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("xlsx rows: %w", err)
	}
	t := &Table{}
	if len(rows) == 0 {
		return t, nil
	}
	for i, h := range rows[0] {
		if strings.TrimSpace(h) == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		t.Columns = append(t.Columns, h)
	}

	for r := 2; r <= len(rows); r++ {
		rec := record.New()
		for c, col := range t.Columns {
			cell, err := excelize.CoordinatesToCellName(c+1, r)
			if err != nil {
				return nil, err
			}
			v, err := readCell(f, sheet, cell)
			if err != nil {
				return nil, err
			}
			if v != nil {
				rec.Set(col, v)
			}
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}

func readCell(f *excelize.File, sheet, cell string) (any, error) {
	raw, err := f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", cell, err)
	}
	if raw == "" {
		return nil, nil
	}
	typ, err := f.GetCellType(sheet, cell)
	if err != nil {
		return nil, fmt.Errorf("type %s: %w", cell, err)
	}
	switch typ {
	case excelize.CellTypeBool:
		switch strings.ToUpper(raw) {
		case "1", "TRUE":
			return true, nil
		case "0", "FALSE":
			return false, nil
		}
		return raw, nil
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeFormula:
		return raw, nil
	default:
		// numeric cells carry no type attribute
		if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return i, nil
		}
		if fl, err := strconv.ParseFloat(raw, 64); err == nil {
			return fl, nil
		}
		return raw, nil
	}
}
