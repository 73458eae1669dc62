// Package claims computes loss-ratio metrics over one row of a claims and
// underwriting time series. Every formula is total: missing columns, bad
// cells and zero denominators degrade to 0 rather than failing.
package claims

// Engine evaluates formulas against an immutable row collection. It holds no
// per-call state and is safe for concurrent use as long as callers do not
// mutate the rows.
type Engine struct {
	rows       Rows
	columns    Columns
	categories []string
	fields     fieldTable

	gep         int
	gwp         int
	policyCount int

	commissionNames   []string
	earnedCommission  []int
	writtenCommission []int
}

// NewEngine freezes rows, column map and claims categories. Commission columns
// are discovered here from the column names.
func NewEngine(rows Rows, columns Columns, categories []string) *Engine {
	cats := append([]string(nil), categories...)
	names, earned, written := commissionColumns(columns)
	return &Engine{
		rows:              rows,
		columns:           columns,
		categories:        cats,
		fields:            newFieldTable(columns, cats),
		gep:               columns.Index(ColumnGEP),
		gwp:               columns.Index(ColumnGWP),
		policyCount:       columns.Index(ColumnPolicyCount),
		commissionNames:   names,
		earnedCommission:  earned,
		writtenCommission: written,
	}
}

// Categories returns the claims categories in configured order.
func (e *Engine) Categories() []string {
	return append([]string(nil), e.categories...)
}

// CommissionColumns returns the discovered earned-side commission columns.
func (e *Engine) CommissionColumns() []string {
	return append([]string(nil), e.commissionNames...)
}

// Len is the number of rows.
func (e *Engine) Len() int {
	return len(e.rows)
}

func (e *Engine) cell(idx, col int) float64 {
	if col < 0 || idx < 0 || idx >= len(e.rows) {
		return 0
	}
	row := e.rows[idx]
	if col >= len(row) {
		return 0
	}
	return ToFloat(row[col])
}

func (e *Engine) field(idx int, kind FieldKind, category string) float64 {
	return e.cell(idx, e.fields.lookup(kind, category))
}

func (e *Engine) named(idx int, name string) float64 {
	return e.cell(idx, e.columns.Index(name))
}

func (e *Engine) sumCategories(fn func(category string) float64) float64 {
	total := 0.0
	for _, c := range e.categories {
		total += fn(c)
	}
	return total
}

func (e *Engine) sumColumns(idx int, cols []int) float64 {
	total := 0.0
	for _, col := range cols {
		total += e.cell(idx, col)
	}
	return total
}

// modelled is MODEL x seasonality for a category.
func (e *Engine) modelled(idx int, category string) float64 {
	return e.field(idx, FieldModel, category) * e.field(idx, FieldSeasonality, category)
}

// Paid is the paid claims amount for a category.
func (e *Engine) Paid(idx int, category string) float64 {
	return e.field(idx, FieldPaid, category)
}

// PaidTotal sums Paid over the categories.
func (e *Engine) PaidTotal(idx int) float64 {
	return e.sumCategories(func(c string) float64 { return e.Paid(idx, c) })
}

// OS is the outstanding amount: incurred minus paid.
func (e *Engine) OS(idx int, category string) float64 {
	return e.field(idx, FieldIncurred, category) - e.field(idx, FieldPaid, category)
}

// OSTotal sums OS over the categories.
func (e *Engine) OSTotal(idx int) float64 {
	return e.sumCategories(func(c string) float64 { return e.OS(idx, c) })
}

// Incurred is the raw incurred amount, or the modelled amount when the
// category is normalised.
func (e *Engine) Incurred(idx int, category string, normalise NormaliseSet) float64 {
	if normalise.Contains(category) {
		return e.modelled(idx, category)
	}
	return e.field(idx, FieldIncurred, category)
}

// IncurredTotal sums Incurred over the categories, mixing raw and modelled
// values category by category.
func (e *Engine) IncurredTotal(idx int, normalise NormaliseSet) float64 {
	return e.sumCategories(func(c string) float64 { return e.Incurred(idx, c, normalise) })
}

// IBNR is the incurred-but-not-reported reserve for a category.
func (e *Engine) IBNR(idx int, category string) float64 {
	return e.field(idx, FieldIBNR, category)
}

// IBNRTotal sums IBNR over the categories.
func (e *Engine) IBNRTotal(idx int) float64 {
	return e.sumCategories(func(c string) float64 { return e.IBNR(idx, c) })
}

// Unearned is the unearned apriori loss for a category.
func (e *Engine) Unearned(idx int, category string) float64 {
	return e.field(idx, FieldUnearnedApriori, category)
}

// UnearnedTotal sums Unearned over the categories.
func (e *Engine) UnearnedTotal(idx int) float64 {
	return e.sumCategories(func(c string) float64 { return e.Unearned(idx, c) })
}

// Ultimate projects the final loss for a category. Written premium on an
// underwriting basis adds the unearned apriori loss.
func (e *Engine) Ultimate(idx int, category string, regime Regime, normalise NormaliseSet, excludeIBNR bool) float64 {
	var modelled float64
	if normalise.Contains(category) {
		modelled = e.modelled(idx, category)
	} else {
		modelled = e.field(idx, FieldIncurred, category)
		if !excludeIBNR {
			modelled += e.IBNR(idx, category)
		}
	}
	if regime.WrittenUW() {
		return e.Unearned(idx, category) + modelled
	}
	return modelled
}

// UltimateTotal sums Ultimate over the categories.
func (e *Engine) UltimateTotal(idx int, regime Regime, normalise NormaliseSet, excludeIBNR bool) float64 {
	return e.sumCategories(func(c string) float64 {
		return e.Ultimate(idx, c, regime, normalise, excludeIBNR)
	})
}

// AverageGWP is gross written premium per policy.
func (e *Engine) AverageGWP(idx int) float64 {
	return SafeDivide(e.cell(idx, e.gwp), e.cell(idx, e.policyCount))
}

// Commission sums the earned-side commission columns.
func (e *Engine) Commission(idx int) float64 {
	return e.sumColumns(idx, e.earnedCommission)
}

// WrittenCommission sums the written-side ("uws") mirrors of the commission
// columns.
func (e *Engine) WrittenCommission(idx int) float64 {
	return e.sumColumns(idx, e.writtenCommission)
}

// GEPAmount is gross earned premium.
func (e *Engine) GEPAmount(idx int) float64 {
	return e.cell(idx, e.gep)
}

// GWPNWPAmount is gross written premium, or net written premium when kind is
// NWP.
func (e *Engine) GWPNWPAmount(idx int, kind PremiumKind) float64 {
	if kind == PremiumNWP {
		return e.cell(idx, e.gwp) - e.WrittenCommission(idx)
	}
	return e.cell(idx, e.gwp)
}

// NEPAmount is gross earned premium net of commission.
func (e *Engine) NEPAmount(idx int) float64 {
	return e.GEPAmount(idx) - e.Commission(idx)
}

// GWPSumOrGEPAmount selects the premium denominator for the regime.
func (e *Engine) GWPSumOrGEPAmount(idx int, regime Regime) float64 {
	if regime.WrittenUW() {
		return e.cell(idx, e.gwp)
	}
	return e.GEPAmount(idx)
}

// Exposure reads an exposure measure. Avg exposures are divided by their
// count column and read 0 when the count is 0.
func (e *Engine) Exposure(idx int, exp Exposure) float64 {
	switch exp.Method {
	case MethodAvg:
		count := e.named(idx, exp.CountColumn())
		if count == 0 {
			return 0
		}
		return SafeDivide(e.named(idx, exp.Column()), count)
	case MethodSum, MethodMin, MethodMax, MethodAverage:
		return e.named(idx, exp.Column())
	}
	return 0
}
