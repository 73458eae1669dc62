package claims

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseParameters(t *testing.T) {
	basis, err := ParseAccrualBasis(" written ")
	require.NoError(t, err)
	assert.Equal(t, AccrualWritten, basis)

	attr, err := ParseAttribution("Underwriting")
	require.NoError(t, err)
	assert.Equal(t, AttributionUnderwriting, attr)

	kind, err := ParseRatioKind("nlr")
	require.NoError(t, err)
	assert.Equal(t, RatioNLR, kind)

	premium, err := ParsePremiumKind("NWP")
	require.NoError(t, err)
	assert.Equal(t, PremiumNWP, premium)

	_, err = ParseAccrualBasis("booked")
	assert.ErrorIs(t, err, ErrInvalidParameter)
	_, err = ParseAttribution("calendar")
	assert.ErrorIs(t, err, ErrInvalidParameter)
	_, err = ParseRatioKind("LR")
	assert.ErrorIs(t, err, ErrInvalidParameter)
	_, err = ParsePremiumKind("GEP")
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestRegimeWrittenUW(t *testing.T) {
	assert.True(t, Regime{Basis: AccrualWritten, Attribution: AttributionUnderwriting}.WrittenUW())
	assert.False(t, Regime{Basis: AccrualWritten, Attribution: AttributionAccident}.WrittenUW())
	assert.False(t, Regime{Basis: AccrualEarned, Attribution: AttributionUnderwriting}.WrittenUW())
}

func TestNormaliseSet(t *testing.T) {
	categories := []string{"ATTRITIONAL", "LARGE", "CAT"}

	set := NormaliseFromFlags(categories, []bool{false, true})
	assert.False(t, set.Contains("ATTRITIONAL"))
	assert.True(t, set.Contains("LARGE"))
	assert.False(t, set.Contains("CAT"))
	assert.Equal(t, []string{"LARGE"}, set.Names(categories))

	var empty NormaliseSet
	assert.False(t, empty.Contains("LARGE"))
	assert.Empty(t, empty.Names(categories))
}

func TestExposureColumns(t *testing.T) {
	exp, err := ParseExposure("Policy Count", "AVG")
	require.NoError(t, err)
	assert.Equal(t, MethodAvg, exp.Method)
	assert.Equal(t, "uw_data.exposure.avg.Policy Count", exp.Column())
	assert.Equal(t, "uw_data.exposure.sum.count.Policy Count", exp.CountColumn())

	_, err = ParseExposure("Risks", "median")
	assert.ErrorIs(t, err, ErrInvalidParameter)
	_, err = ParseExposure(" ", "sum")
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestFieldKeys(t *testing.T) {
	assert.Equal(t, "claims_data.LARGE_paid", FieldPaid.Key("LARGE"))
	assert.Equal(t, "claims_data.LARGE_inc", FieldIncurred.Key("LARGE"))
	assert.Equal(t, "LARGE_ibnr", FieldIBNR.Key("LARGE"))
	assert.Equal(t, "uw_data.LARGE_MODEL", FieldModel.Key("LARGE"))
	assert.Equal(t, "uw_data.LARGE_seasonality", FieldSeasonality.Key("LARGE"))
	assert.Equal(t, "LARGE_unearned_apriori", FieldUnearnedApriori.Key("LARGE"))
}
