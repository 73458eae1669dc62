package claims

// Query carries every parameter a Snapshot needs. It replaces global
// dashboard state: the engine itself holds none.
type Query struct {
	Regime       Regime
	Ratio        RatioKind
	Premium      PremiumKind
	Normalise    NormaliseSet
	SeasonFactor bool
	ExcludeIBNR  bool
	Exposures    []Exposure
}

// CategoryMetrics are the per-category figures of one row.
type CategoryMetrics struct {
	Category    string  `json:"category"`
	Paid        float64 `json:"paid"`
	OS          float64 `json:"os"`
	Incurred    float64 `json:"incurred"`
	IBNR        float64 `json:"ibnr"`
	Unearned    float64 `json:"unearned"`
	Ultimate    float64 `json:"ultimate"`
	Apriori     float64 `json:"apriori"`
	Seasonality float64 `json:"seasonality"`
}

// ExposureMetric is one exposure measure of a row.
type ExposureMetric struct {
	Name   string  `json:"name"`
	Method string  `json:"method"`
	Value  float64 `json:"value"`
}

// Metrics are all scalar figures of one row under a Query.
type Metrics struct {
	Premium             float64           `json:"premium"`
	PremiumDenominator  float64           `json:"premium_denominator"`
	GEP                 float64           `json:"gep"`
	NEP                 float64           `json:"nep"`
	AverageGWP          float64           `json:"average_gwp"`
	Commission          float64           `json:"commission"`
	WrittenCommission   float64           `json:"written_commission"`
	Paid                float64           `json:"paid"`
	OS                  float64           `json:"os"`
	Incurred            float64           `json:"incurred"`
	IBNR                float64           `json:"ibnr"`
	Unearned            float64           `json:"unearned"`
	Ultimate            float64           `json:"ultimate"`
	Ratio               float64           `json:"ratio"`
	NormalisedRatio     float64           `json:"normalised_ratio"`
	SeasonAdjustedRatio float64           `json:"season_adjusted_ratio"`
	Categories          []CategoryMetrics `json:"categories"`
	Exposures           []ExposureMetric  `json:"exposures,omitempty"`
}

// Snapshot evaluates every formula for row idx.
func (e *Engine) Snapshot(idx int, q Query) Metrics {
	m := Metrics{
		Premium:             e.GWPNWPAmount(idx, q.Premium),
		PremiumDenominator:  e.GWPSumOrGEPAmount(idx, q.Regime),
		GEP:                 e.GEPAmount(idx),
		NEP:                 e.NEPAmount(idx),
		AverageGWP:          e.AverageGWP(idx),
		Commission:          e.Commission(idx),
		WrittenCommission:   e.WrittenCommission(idx),
		Paid:                e.PaidTotal(idx),
		OS:                  e.OSTotal(idx),
		Incurred:            e.IncurredTotal(idx, q.Normalise),
		IBNR:                e.IBNRTotal(idx),
		Unearned:            e.UnearnedTotal(idx),
		Ultimate:            e.UltimateTotal(idx, q.Regime, q.Normalise, q.ExcludeIBNR),
		Ratio:               e.Ratio(idx, q.Regime, q.Ratio, q.ExcludeIBNR),
		NormalisedRatio:     e.NormalisedRatio(idx, q.Regime, q.Normalise, q.Ratio, q.SeasonFactor, q.ExcludeIBNR),
		SeasonAdjustedRatio: e.SeasonAdjustedRatio(idx, q.Regime, q.SeasonFactor, q.Ratio),
		Categories:          make([]CategoryMetrics, 0, len(e.categories)),
	}
	for _, c := range e.categories {
		m.Categories = append(m.Categories, CategoryMetrics{
			Category:    c,
			Paid:        e.Paid(idx, c),
			OS:          e.OS(idx, c),
			Incurred:    e.Incurred(idx, c, q.Normalise),
			IBNR:        e.IBNR(idx, c),
			Unearned:    e.Unearned(idx, c),
			Ultimate:    e.Ultimate(idx, c, q.Regime, q.Normalise, q.ExcludeIBNR),
			Apriori:     e.SeasonAdjustedApriori(idx, q.Regime, q.SeasonFactor, c),
			Seasonality: e.Seasonality(idx, q.Regime, c),
		})
	}
	for _, exp := range q.Exposures {
		m.Exposures = append(m.Exposures, ExposureMetric{
			Name:   exp.Name,
			Method: exp.Method.String(),
			Value:  e.Exposure(idx, exp),
		})
	}
	return m
}
