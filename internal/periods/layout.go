package periods

import (
	"strings"

	"github.com/CalibrantLtd/Slido/internal/claims"
)

// LabelColumns is the number of leading columns a summary row fills with the
// period label and the month label.
const LabelColumns = 2

// monthFieldPrefix marks backend month fields, which may sit in the label
// columns.
const monthFieldPrefix = "months."

var labelFieldNames = map[string]struct{}{"label": {}, "month": {}, "period": {}}

func isLabelField(name string) bool {
	if strings.HasPrefix(name, monthFieldPrefix) {
		return true
	}
	_, ok := labelFieldNames[strings.ToLower(name)]
	return ok
}

// HasLabelColumns reports whether columns 0 and 1 are free for labels, that
// is, only month or label fields are mapped there.
func HasLabelColumns(columns claims.Columns) bool {
	for name, idx := range columns {
		if idx >= 0 && idx < LabelColumns && !isLabelField(name) {
			return false
		}
	}
	return true
}

// WithLabelColumns returns rows and columns whose first two columns can take
// summary labels. Layouts that already leave them free are returned as is.
// Otherwise every row gets two leading cells holding its month and every
// column index shifts by two. The inputs are never modified.
func WithLabelColumns(rows claims.Rows, columns claims.Columns) (claims.Rows, claims.Columns) {
	if HasLabelColumns(columns) {
		return rows, columns
	}
	monthCol := columns.Index(claims.ColumnMonth)
	shifted := make(claims.Columns, len(columns))
	for name, idx := range columns {
		if idx < 0 {
			continue
		}
		shifted[name] = idx + LabelColumns
	}
	out := make(claims.Rows, len(rows))
	for i, row := range rows {
		month := cellAt(row, monthCol)
		r := make(claims.Row, 0, len(row)+LabelColumns)
		r = append(r, month, month)
		out[i] = append(r, row...)
	}
	return out, shifted
}
