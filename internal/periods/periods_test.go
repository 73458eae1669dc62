package periods

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CalibrantLtd/Slido/internal/claims"
)

func TestLabel(t *testing.T) {
	cases := []struct {
		month any
		g     Granularity
		want  string
	}{
		{month: "Jan-2024", g: Quarter, want: "Q1-2024"},
		{month: "Mar-2024", g: Quarter, want: "Q1-2024"},
		{month: "Apr-2024", g: Quarter, want: "Q2-2024"},
		{month: "dec-2023", g: Quarter, want: "Q4-2023"},
		{month: "SEP-2022", g: Year, want: "2022"},
		{month: "September-2022", g: Month, want: "Sep-2022"},
		{month: "Jul-2021", g: Binder, want: "2021"},
		{month: "Sept-2024", g: Quarter, want: "Q3-2024"},
		{month: "Jan 2024", g: Month, want: "Jan-2024"},
		{month: "feb/2024", g: Quarter, want: "Q1-2024"},
		{month: "Ja-2024", g: Year, want: InvalidDate},
		{month: "Jan-24", g: Year, want: InvalidDate},
		{month: "Janx-2024", g: Year, want: InvalidDate},
		{month: "2024-01", g: Year, want: InvalidDate},
		{month: "Foo-2024", g: Year, want: InvalidDate},
		{month: 202401.0, g: Year, want: InvalidDate},
		{month: nil, g: Quarter, want: InvalidDate},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Label(tc.month, tc.g), "month %v granularity %s", tc.month, tc.g)
	}
}

func TestParseGranularity(t *testing.T) {
	g, err := ParseGranularity("Quarter")
	require.NoError(t, err)
	assert.Equal(t, Quarter, g)

	_, err = ParseGranularity("week")
	assert.ErrorIs(t, err, claims.ErrInvalidParameter)
}

func TestSegments(t *testing.T) {
	got := Segments([]string{"Q1-2024", "Q1-2024", "Q1-2024", "Q2-2024", "Q1-2024"})
	assert.Equal(t, []Segment{
		{Label: "Q1-2024", Start: 0, End: 2},
		{Label: "Q2-2024", Start: 3, End: 3},
		{Label: "Q1-2024", Start: 4, End: 4},
	}, got)
	assert.Equal(t, 3, got[0].Len())
	assert.Empty(t, Segments(nil))
}

var testColumns = claims.Columns{
	"label":                         0,
	"months.MONTH":                  1,
	"uw_data.GEP_AMOUNT":            2,
	"uw_data.exposure.sum.Risks":    3,
	"uw_data.exposure.min.Limit":    4,
	"uw_data.exposure.max.Limit":    5,
	"uw_data.exposure.avg.Vehicles": 6,
	"uw_data.X_seasonality":         7,
	"claims_data.X_inc":             8,
}

var testExposures = []claims.Exposure{
	{Name: "Risks", Method: claims.MethodSum},
	{Name: "Limit", Method: claims.MethodMin},
	{Name: "Limit", Method: claims.MethodMax},
	{Name: "Vehicles", Method: claims.MethodAvg},
}

func testRows() claims.Rows {
	return claims.Rows{
		{"Jan-2024", "Jan-2024", 100.0, 5.0, 5.0, 5.0, 10.0, 1.0, -4.0},
		{"Feb-2024", "Feb-2024", 200.0, -1.0, -1.0, -1.0, 20.0, 2.0, 10.0},
		{"Mar-2024", "Mar-2024", 300.0, 3.0, 3.0, 3.0, 30.0, 3.0, "n/a"},
		{"Apr-2024", "Apr-2024", 400.0, 7.0, -2.0, -2.0, -6.0, 1.5, json.Number("2.5")},
	}
}

func TestAggregateQuarter(t *testing.T) {
	got, err := Aggregate(Quarter, testRows(), testColumns, testExposures, nil)
	require.NoError(t, err)
	require.Len(t, got, 2)

	q1 := got[0]
	assert.Equal(t, 2, q1.End)
	assert.Equal(t, "Q1-2024", q1.Label)
	assert.Equal(t, claims.Row{"Q1-2024", "Mar-2024", 600.0, 8.0, 3.0, 5.0, 20.0, 2.0, 6.0}, q1.Row)

	q2 := got[1]
	assert.Equal(t, 3, q2.End)
	assert.Equal(t, claims.Row{"Q2-2024", "Apr-2024", 400.0, 7.0, 0.0, 0.0, -6.0, 1.5, 2.5}, q2.Row)
}

func TestAggregateYearAndBinder(t *testing.T) {
	rows := testRows()

	years, err := Aggregate(Year, rows, testColumns, testExposures, nil)
	require.NoError(t, err)
	require.Len(t, years, 1)
	assert.Equal(t, "2024", years[0].Label)
	assert.Equal(t, 1000.0, years[0].Row[2])

	fallback, err := Aggregate(Binder, rows, testColumns, testExposures, nil)
	require.NoError(t, err)
	assert.Equal(t, years, fallback)

	binders, err := Aggregate(Binder, rows, testColumns, testExposures, []string{"B1", "B1", "B2", "B2"})
	require.NoError(t, err)
	require.Len(t, binders, 2)
	assert.Equal(t, "B1", binders[0].Label)
	assert.Equal(t, 300.0, binders[0].Row[2])
	assert.Equal(t, 700.0, binders[1].Row[2])

	_, err = Aggregate(Binder, rows, testColumns, testExposures, []string{"B1"})
	assert.ErrorIs(t, err, ErrBinderLength)
}

func TestAggregateDoesNotAliasSource(t *testing.T) {
	rows := testRows()
	got, err := Aggregate(Month, rows, testColumns, testExposures, nil)
	require.NoError(t, err)
	require.Len(t, got, 4)

	got[0].Row[2] = -1.0
	assert.Equal(t, 100.0, rows[0][2])
	assert.Len(t, SummaryRows(got), 4)
}

func TestTotal(t *testing.T) {
	row := Total(testRows(), testColumns, testExposures)

	assert.Equal(t, TotalLabel, row[0])
	assert.Equal(t, TotalLabel, row[1])
	assert.Equal(t, 1000.0, row[2])
	assert.Equal(t, 15.0, row[3])
	assert.Equal(t, 3.0, row[4])
	assert.Equal(t, 5.0, row[5])
	assert.Equal(t, 13.5, row[6])
	assert.Equal(t, 1.875, row[7])
}

func TestSummaryRowsFeedTheEngine(t *testing.T) {
	columns := claims.Columns{
		"label":              0,
		"months.MONTH":       1,
		"uw_data.GEP_AMOUNT": 2,
		"claims_data.X_inc":  3,
		"X_ibnr":             4,
	}
	rows := claims.Rows{
		{"Jan-2024", "Jan-2024", 100.0, 10.0, 5.0},
		{"Feb-2024", "Feb-2024", 300.0, 30.0, 15.0},
	}
	summaries, err := Aggregate(Quarter, rows, columns, nil, nil)
	require.NoError(t, err)

	engine := claims.NewEngine(SummaryRows(summaries), columns, []string{"X"})
	regime := claims.Regime{Basis: claims.AccrualEarned, Attribution: claims.AttributionAccident}
	assert.InDelta(t, 60.0/400.0, engine.CCR(0, regime, false), 1e-12)
}

func TestWithLabelColumns(t *testing.T) {
	columns := claims.Columns{"months.MONTH": 0, "uw_data.GEP_AMOUNT": 1, "uws.GWP_SUM": 2}
	rows := claims.Rows{
		{"Jan-2024", 400.0, 500.0},
		{"Feb-2024", 100.0, 50.0},
	}
	require.False(t, HasLabelColumns(columns))

	shifted, shiftedCols := WithLabelColumns(rows, columns)
	require.True(t, HasLabelColumns(shiftedCols))
	assert.Equal(t, 3, shiftedCols.Index(claims.ColumnGEP))
	assert.Equal(t, claims.Row{"Jan-2024", "Jan-2024", "Jan-2024", 400.0, 500.0}, shifted[0])
	assert.Len(t, rows[0], 3)
	assert.Equal(t, 1, columns.Index(claims.ColumnGEP))

	summaries, err := Aggregate(Quarter, shifted, shiftedCols, nil, nil)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "Q1-2024", summaries[0].Row[0])
	assert.Equal(t, "Feb-2024", summaries[0].Row[1])

	engine := claims.NewEngine(SummaryRows(summaries), shiftedCols, nil)
	assert.Equal(t, 500.0, engine.GEPAmount(0))

	total := Total(shifted, shiftedCols, nil)
	assert.Equal(t, 500.0, total[shiftedCols.Index(claims.ColumnGEP)])
	assert.Equal(t, 550.0, total[shiftedCols.Index(claims.ColumnGWP)])
}

func TestWithLabelColumnsKeepsLabelLayouts(t *testing.T) {
	rows := testRows()
	got, cols := WithLabelColumns(rows, testColumns)
	assert.Equal(t, testColumns, cols)
	assert.Equal(t, rows, got)
}
