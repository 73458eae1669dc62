package periods

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/CalibrantLtd/Slido/internal/claims"
)

// TotalLabel labels the grand total row.
const TotalLabel = "Total"

// Segment is a maximal run of rows sharing a label. End is inclusive.
type Segment struct {
	Label string
	Start int
	End   int
}

// Len is the number of rows in the segment.
func (s Segment) Len() int {
	return s.End - s.Start + 1
}

// Summary is the collapsed row of one segment, keyed by the index of the
// segment's last source row.
type Summary struct {
	End   int        `json:"end"`
	Label string     `json:"label"`
	Row   claims.Row `json:"row"`
}

// Segments splits labels into contiguous runs of equal values.
func Segments(labels []string) []Segment {
	var out []Segment
	start := 0
	for i := 1; i <= len(labels); i++ {
		if i == len(labels) || labels[i] != labels[i-1] {
			out = append(out, Segment{Label: labels[start], Start: start, End: i - 1})
			start = i
		}
	}
	return out
}

// Aggregate collapses rows into one summary per contiguous period, in
// ascending order of segment end. Summary rows carry the period label and
// the month in columns 0 and 1, so those columns must not hold data fields;
// see WithLabelColumns.
func Aggregate(g Granularity, rows claims.Rows, columns claims.Columns, exposures []claims.Exposure, binders []string) ([]Summary, error) {
	labels, err := Labels(rows, columns, g, binders)
	if err != nil {
		return nil, err
	}
	monthCol := columns.Index(claims.ColumnMonth)
	policies := columnPolicies(columns, exposures)
	segments := Segments(labels)
	out := make([]Summary, 0, len(segments))
	for _, seg := range segments {
		part := rows[seg.Start : seg.End+1]
		out = append(out, Summary{
			End:   seg.End,
			Label: seg.Label,
			Row:   summarise(part, policies, seg.Label, cellAt(rows[seg.End], monthCol)),
		})
	}
	return out, nil
}

// SummaryRows returns the rows of summaries in order.
func SummaryRows(summaries []Summary) claims.Rows {
	out := make(claims.Rows, len(summaries))
	for i, s := range summaries {
		out[i] = s.Row
	}
	return out
}

// Summarise collapses rows into a single summary row labelled with label and
// month in columns 0 and 1.
func Summarise(rows claims.Rows, columns claims.Columns, exposures []claims.Exposure, label string, month claims.Cell) claims.Row {
	return summarise(rows, columnPolicies(columns, exposures), label, month)
}

// Total collapses every row into the grand total row.
func Total(rows claims.Rows, columns claims.Columns, exposures []claims.Exposure) claims.Row {
	return Summarise(rows, columns, exposures, TotalLabel, TotalLabel)
}

type policy int

const (
	policySum policy = iota
	policySumPositive
	policyMinPositive
	policyMaxPositive
	policyMean
)

// columnPolicies resolves the aggregation rule of every column. Seasonality
// columns are always averaged; exposure columns follow their method; all
// other columns are summed.
func columnPolicies(columns claims.Columns, exposures []claims.Exposure) []policy {
	width := columns.Width()
	if width < 2 {
		width = 2
	}
	byColumn := make(map[string]claims.Method, len(exposures))
	for _, exp := range exposures {
		byColumn[exp.Column()] = exp.Method
	}
	out := make([]policy, width)
	for name, idx := range columns {
		if idx < 0 || idx >= width {
			continue
		}
		if strings.Contains(name, "_seasonality") {
			out[idx] = policyMean
			continue
		}
		if out[idx] == policyMean {
			continue
		}
		method, ok := byColumn[name]
		if !ok {
			continue
		}
		switch method {
		case claims.MethodSum:
			out[idx] = policySumPositive
		case claims.MethodMin:
			out[idx] = policyMinPositive
		case claims.MethodMax:
			out[idx] = policyMaxPositive
		case claims.MethodAvg, claims.MethodAverage:
			out[idx] = policyMean
		}
	}
	return out
}

type accumulator struct {
	total float64
	found bool
}

func summarise(rows claims.Rows, policies []policy, label string, month claims.Cell) claims.Row {
	acc := make([]accumulator, len(policies))
	for i := range acc {
		switch policies[i] {
		case policyMinPositive:
			acc[i].total = math.Inf(1)
		case policyMaxPositive:
			acc[i].total = math.Inf(-1)
		}
	}
	for _, row := range rows {
		for col := 2; col < len(policies) && col < len(row); col++ {
			v, ok := number(row[col])
			if !ok {
				continue
			}
			a := &acc[col]
			switch policies[col] {
			case policySum, policyMean:
				a.total += v
			case policySumPositive:
				if v > 0 {
					a.total += v
				}
			case policyMinPositive:
				if v > 0 && v < a.total {
					a.total, a.found = v, true
				}
			case policyMaxPositive:
				if v > 0 && v > a.total {
					a.total, a.found = v, true
				}
			}
		}
	}

	out := make(claims.Row, len(policies))
	out[0] = label
	out[1] = month
	for col := 2; col < len(policies); col++ {
		a := acc[col]
		switch policies[col] {
		case policyMinPositive, policyMaxPositive:
			if !a.found {
				out[col] = 0.0
				continue
			}
			out[col] = a.total
		case policyMean:
			out[col] = claims.SafeDivide(a.total, float64(len(rows)))
		default:
			out[col] = a.total
		}
	}
	return out
}

// number reports the value of numeric cells. Strings, including numeric
// strings, are not aggregated.
func number(c claims.Cell) (float64, bool) {
	switch v := c.(type) {
	case float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, uintptr:
		return claims.ToFloat(v), true
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
