package claims

// Ratio dispatches to CCR or NLR.
func (e *Engine) Ratio(idx int, regime Regime, kind RatioKind, excludeIBNR bool) float64 {
	if kind == RatioCCR {
		return e.CCR(idx, regime, excludeIBNR)
	}
	return e.NLR(idx, regime, excludeIBNR)
}

// CCR is the combined claims ratio. On written premium with underwriting
// attribution the numerator adds unearned apriori over GWP and commission is
// taken over GEP; otherwise everything is taken over GEP. Rows with zero GEP
// read 0.
func (e *Engine) CCR(idx int, regime Regime, excludeIBNR bool) float64 {
	gep := e.GEPAmount(idx)
	if gep == 0 {
		return 0
	}
	claims := e.IncurredTotal(idx, nil)
	ibnr := e.ibnrTerm(idx, nil, excludeIBNR)
	if regime.WrittenUW() {
		return SafeDivide(claims+ibnr+e.UnearnedTotal(idx), e.cell(idx, e.gwp)) +
			SafeDivide(e.Commission(idx), gep)
	}
	return SafeDivide(claims+ibnr+e.Commission(idx), gep)
}

// NLR is the net loss ratio: claims and reserves over premium net of
// commission. Written premium on an underwriting basis nets the written-side
// commission off GWP. Rows with zero GEP read 0.
func (e *Engine) NLR(idx int, regime Regime, excludeIBNR bool) float64 {
	gep := e.GEPAmount(idx)
	if gep == 0 {
		return 0
	}
	claims := e.IncurredTotal(idx, nil)
	ibnr := e.ibnrTerm(idx, nil, excludeIBNR)
	if regime.WrittenUW() {
		return SafeDivide(claims+ibnr+e.UnearnedTotal(idx), e.cell(idx, e.gwp)-e.WrittenCommission(idx))
	}
	return SafeDivide(claims+ibnr, gep-e.Commission(idx))
}

// NormalisedRatio dispatches to NormalisedCCR or NormalisedNLR.
func (e *Engine) NormalisedRatio(idx int, regime Regime, normalise NormaliseSet, kind RatioKind, seasonFactor, excludeIBNR bool) float64 {
	if kind == RatioCCR {
		return e.NormalisedCCR(idx, regime, normalise, seasonFactor, excludeIBNR)
	}
	return e.NormalisedNLR(idx, regime, normalise, seasonFactor, excludeIBNR)
}

// NormalisedCCR is CCR with normalised categories read at their modelled
// value and without their IBNR. seasonFactor does not change the result; the
// modelled value always carries seasonality.
func (e *Engine) NormalisedCCR(idx int, regime Regime, normalise NormaliseSet, seasonFactor, excludeIBNR bool) float64 {
	gep := e.GEPAmount(idx)
	if gep == 0 {
		return 0
	}
	claims := e.IncurredTotal(idx, normalise)
	ibnr := e.ibnrTerm(idx, normalise, excludeIBNR)
	if regime.WrittenUW() {
		return SafeDivide(claims+ibnr+e.UnearnedTotal(idx), e.cell(idx, e.gwp)) +
			SafeDivide(e.Commission(idx), gep)
	}
	return SafeDivide(claims+ibnr+e.Commission(idx), gep)
}

// NormalisedNLR is NLR with normalised categories read at their modelled
// value and without their IBNR.
func (e *Engine) NormalisedNLR(idx int, regime Regime, normalise NormaliseSet, seasonFactor, excludeIBNR bool) float64 {
	gep := e.GEPAmount(idx)
	if gep == 0 {
		return 0
	}
	claims := e.IncurredTotal(idx, normalise)
	ibnr := e.ibnrTerm(idx, normalise, excludeIBNR)
	if regime.WrittenUW() {
		return SafeDivide(claims+ibnr+e.UnearnedTotal(idx), e.cell(idx, e.gwp)-e.WrittenCommission(idx))
	}
	return SafeDivide(claims+ibnr, gep-e.Commission(idx))
}

// SeasonAdjustedRatio dispatches to SeasonAdjustedCCR or SeasonAdjustedNLR.
func (e *Engine) SeasonAdjustedRatio(idx int, regime Regime, seasonFactor bool, kind RatioKind) float64 {
	if kind == RatioCCR {
		return e.SeasonAdjustedCCR(idx, regime, seasonFactor)
	}
	return e.SeasonAdjustedNLR(idx, regime, seasonFactor)
}

// SeasonAdjustedCCR reads every category at its model value, scaled by
// seasonality when seasonFactor is set outside the written/uw regime, plus
// commission, all over GEP.
func (e *Engine) SeasonAdjustedCCR(idx int, regime Regime, seasonFactor bool) float64 {
	gep := e.GEPAmount(idx)
	if gep == 0 {
		return 0
	}
	return SafeDivide(e.seasonAdjustedModel(idx, regime, seasonFactor)+e.Commission(idx), gep)
}

// SeasonAdjustedNLR reads every category at its model value over NEP.
func (e *Engine) SeasonAdjustedNLR(idx int, regime Regime, seasonFactor bool) float64 {
	gep := e.GEPAmount(idx)
	if gep == 0 {
		return 0
	}
	return SafeDivide(e.seasonAdjustedModel(idx, regime, seasonFactor), gep-e.Commission(idx))
}

// SeasonAdjustedApriori is the model loss for a category. Outside the
// written/uw regime, with seasonFactor set, it is scaled by the seasonality
// factor rounded to two decimals.
func (e *Engine) SeasonAdjustedApriori(idx int, regime Regime, seasonFactor bool, category string) float64 {
	model := e.field(idx, FieldModel, category)
	if regime.WrittenUW() {
		return model
	}
	if !seasonFactor {
		return model
	}
	return model * round2(e.field(idx, FieldSeasonality, category))
}

// Seasonality is the seasonality factor of a category, fixed at 1 for the
// written/uw regime.
func (e *Engine) Seasonality(idx int, regime Regime, category string) float64 {
	if regime.WrittenUW() {
		return 1.0
	}
	return e.field(idx, FieldSeasonality, category)
}

// ibnrTerm sums IBNR over categories that are not normalised.
func (e *Engine) ibnrTerm(idx int, normalise NormaliseSet, excludeIBNR bool) float64 {
	if excludeIBNR {
		return 0
	}
	return e.sumCategories(func(c string) float64 {
		if normalise.Contains(c) {
			return 0
		}
		return e.IBNR(idx, c)
	})
}

func (e *Engine) seasonAdjustedModel(idx int, regime Regime, seasonFactor bool) float64 {
	return e.sumCategories(func(c string) float64 {
		factor := 1.0
		if seasonFactor && !regime.WrittenUW() {
			factor = e.field(idx, FieldSeasonality, c)
		}
		return e.field(idx, FieldModel, c) * factor
	})
}
