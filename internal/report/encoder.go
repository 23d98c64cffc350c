package report

import (
	"encoding/json"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/sistemasreportes/reportes-backend/internal/domain"
)

// SheetName is the name of the single worksheet in every export.
const SheetName = "Reporte"

// ContentType is the media type of the encoded workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Encode writes the table as an in-memory xlsx workbook: a header row with the
// column labels followed by one row per record, values left unformatted.
func Encode(t *Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, Encoding(fmt.Errorf("failed to name sheet: %w", err))
	}

	header := make([]interface{}, len(t.Columns))
	for i, label := range t.Headers() {
		header[i] = label
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, Encoding(fmt.Errorf("failed to write header: %w", err))
	}

	for i, row := range t.Rows {
		values := make([]interface{}, len(row.Cells))
		for j, cell := range row.Cells {
			v, err := cellValue(cell)
			if err != nil {
				return nil, Encoding(fmt.Errorf("row %s: %w", row.ID, err))
			}
			values[j] = v
		}

		axis, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, Encoding(err)
		}
		if err := f.SetSheetRow(SheetName, axis, &values); err != nil {
			return nil, Encoding(fmt.Errorf("failed to write row %s: %w", row.ID, err))
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, Encoding(fmt.Errorf("failed to serialize workbook: %w", err))
	}
	return buf.Bytes(), nil
}

// cellValue converts a record value into something excelize stores natively.
// JSON numbers become numeric cells; strings stay text even when they look numeric.
func cellValue(v domain.Value) (interface{}, error) {
	if !v.Present() {
		return nil, nil
	}

	switch raw := v.Raw().(type) {
	case json.Number:
		if i, err := raw.Int64(); err == nil {
			return i, nil
		}
		f, err := raw.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", raw.String(), err)
		}
		return f, nil
	case string, bool, float64, float32, int, int64:
		return raw, nil
	default:
		// Nested objects or lists are written as their JSON text
		data, err := json.Marshal(raw)
		if err != nil {
			return nil, err
		}
		return string(data), nil
	}
}
