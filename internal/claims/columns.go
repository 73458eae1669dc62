package claims

import (
	"sort"
	"strings"
)

// Cell is a raw value as delivered by the data backend: a number, a numeric
// string, a label or nil.
type Cell = any

// Row is one reporting period. Columns 0 and 1 hold labels in summary rows.
type Row []Cell

// Rows is a dense, 0-indexed row collection.
type Rows []Row

// Columns maps a field name to its index within a Row.
type Columns map[string]int

// Fixed column names read by the engine and the period aggregator.
const (
	ColumnMonth = "months.MONTH"
	ColumnGEP   = "uw_data.GEP_AMOUNT"
	ColumnGWP   = "uws.GWP_SUM"

	ColumnExposureCountPrefix = "uw_data.exposure.sum.count."
	ColumnPolicyCount         = ColumnExposureCountPrefix + "Policy Count"

	commissionMarker = "uw_data.COM"
)

// Index returns the position of name, or -1 when absent.
func (c Columns) Index(name string) int {
	if idx, ok := c[name]; ok && idx >= 0 {
		return idx
	}
	return -1
}

// Width is one past the largest mapped index.
func (c Columns) Width() int {
	width := 0
	for _, idx := range c {
		if idx+1 > width {
			width = idx + 1
		}
	}
	return width
}

// FieldKind enumerates the per-category fields of a row.
type FieldKind int

const (
	FieldPaid FieldKind = iota
	FieldIncurred
	FieldIBNR
	FieldModel
	FieldSeasonality
	FieldUnearnedApriori
)

var fieldKinds = []FieldKind{FieldPaid, FieldIncurred, FieldIBNR, FieldModel, FieldSeasonality, FieldUnearnedApriori}

// Key renders the external column name of the field for a category.
func (k FieldKind) Key(category string) string {
	switch k {
	case FieldPaid:
		return "claims_data." + category + "_paid"
	case FieldIncurred:
		return "claims_data." + category + "_inc"
	case FieldIBNR:
		return category + "_ibnr"
	case FieldModel:
		return "uw_data." + category + "_MODEL"
	case FieldSeasonality:
		return "uw_data." + category + "_seasonality"
	case FieldUnearnedApriori:
		return category + "_unearned_apriori"
	}
	return ""
}

type fieldRef struct {
	kind     FieldKind
	category string
}

// fieldTable resolves every (kind, category) pair of the declared categories
// once. Unknown pairs fall back to a direct column lookup.
type fieldTable struct {
	columns Columns
	index   map[fieldRef]int
}

func newFieldTable(columns Columns, categories []string) fieldTable {
	index := make(map[fieldRef]int, len(categories)*len(fieldKinds))
	for _, c := range categories {
		for _, k := range fieldKinds {
			index[fieldRef{kind: k, category: c}] = columns.Index(k.Key(c))
		}
	}
	return fieldTable{columns: columns, index: index}
}

func (t fieldTable) lookup(kind FieldKind, category string) int {
	if idx, ok := t.index[fieldRef{kind: kind, category: category}]; ok {
		return idx
	}
	return t.columns.Index(kind.Key(category))
}

// commissionColumns discovers earned-side commission columns by substring and
// pairs each with its written-side ("uws") mirror.
func commissionColumns(columns Columns) (names []string, earned, written []int) {
	for name := range columns {
		if strings.Contains(name, commissionMarker) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	earned = make([]int, len(names))
	written = make([]int, len(names))
	for i, name := range names {
		earned[i] = columns.Index(name)
		written[i] = columns.Index(strings.Replace(name, "uw_data", "uws", 1))
	}
	return names, earned, written
}
