package report

import (
	"strings"

	"github.com/sistemasreportes/reportes-backend/internal/domain"
)

// Row is one exported record. Cells line up with Table.Columns; absent fields are
// absent Values.
type Row struct {
	ID    string
	Cells []domain.Value
}

// Table is the projected, relabeled report ready for encoding.
type Table struct {
	Columns []Column
	Rows    []Row
}

// Headers returns the column labels in output order.
func (t *Table) Headers() []string {
	headers := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		headers[i] = col.Label
	}
	return headers
}

// Build filters records by the optional date prefix and projects them onto Columns.
// records must be in the order the store returned them; that order is kept.
// Columns no surviving record carries are left out entirely.
func Build(records []domain.ActivityRecord, date string) (*Table, error) {
	if len(records) == 0 {
		return nil, NoData()
	}

	selected := records
	if date != "" {
		selected = make([]domain.ActivityRecord, 0, len(records))
		for _, rec := range records {
			if matchesDate(rec, date) {
				selected = append(selected, rec)
			}
		}
	}

	if len(selected) == 0 {
		return nil, NoMatch(date)
	}

	table := &Table{Columns: presentColumns(selected)}
	table.Rows = make([]Row, len(selected))
	for i, rec := range selected {
		cells := make([]domain.Value, len(table.Columns))
		for j, col := range table.Columns {
			cells[j] = rec.Field(col.Field)
		}
		table.Rows[i] = Row{ID: rec.ID, Cells: cells}
	}

	return table, nil
}

// matchesDate is a literal, case-sensitive prefix match on a text timestamp.
func matchesDate(rec domain.ActivityRecord, date string) bool {
	ts, ok := rec.Timestamp.Text()
	return ok && strings.HasPrefix(ts, date)
}

func presentColumns(records []domain.ActivityRecord) []Column {
	cols := make([]Column, 0, len(Columns))
	for _, col := range Columns {
		for _, rec := range records {
			if rec.Field(col.Field).Present() {
				cols = append(cols, col)
				break
			}
		}
	}
	return cols
}
