package claims

// TargetCCR converts a target loss ratio into a combined claims ratio target
// by adding the commission ratio.
func TargetCCR(target, commission float64) float64 {
	return target + commission
}

// TargetNLR grosses a target loss ratio up by the commission percentage.
// A 100% commission yields 0.
func TargetNLR(target, commissionPct float64) float64 {
	return SafeDivide(target, 1-commissionPct/100)
}
