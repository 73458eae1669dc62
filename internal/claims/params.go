package claims

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidParameter signals an unrecognised engine parameter spelling.
var ErrInvalidParameter = errors.New("claims: invalid parameter")

// AccrualBasis selects written or earned premium recognition.
type AccrualBasis string

const (
	// AccrualWritten books premium when written.
	AccrualWritten AccrualBasis = "Written"
	// AccrualEarned recognises premium over the policy period.
	AccrualEarned AccrualBasis = "Earned"
)

// Attribution selects how claims and premium are allocated to a period.
type Attribution string

const (
	// AttributionAccident allocates by accident month.
	AttributionAccident Attribution = "acc"
	// AttributionUnderwriting allocates by underwriting month.
	AttributionUnderwriting Attribution = "uw"
)

// RatioKind chooses between the combined claims ratio and the net loss ratio.
type RatioKind string

const (
	RatioCCR RatioKind = "CCR"
	RatioNLR RatioKind = "NLR"
)

// PremiumKind chooses gross or net written premium.
type PremiumKind string

const (
	PremiumGWP PremiumKind = "GWP"
	PremiumNWP PremiumKind = "NWP"
)

// Regime is the accrual basis and attribution pair every formula branches on.
type Regime struct {
	Basis       AccrualBasis
	Attribution Attribution
}

// WrittenUW reports whether the regime is written premium on an underwriting
// year basis. Formulas switch premium denominator and add unearned apriori
// only in this case.
func (r Regime) WrittenUW() bool {
	return r.Basis == AccrualWritten && r.Attribution == AttributionUnderwriting
}

// ParseAccrualBasis resolves "Written" or "Earned" (case-insensitive).
func ParseAccrualBasis(s string) (AccrualBasis, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "written":
		return AccrualWritten, nil
	case "earned":
		return AccrualEarned, nil
	}
	return "", fmt.Errorf("%w: accrual basis %q", ErrInvalidParameter, s)
}

// ParseAttribution resolves "uw" or "acc" (case-insensitive).
func ParseAttribution(s string) (Attribution, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "uw", "underwriting":
		return AttributionUnderwriting, nil
	case "acc", "accident":
		return AttributionAccident, nil
	}
	return "", fmt.Errorf("%w: attribution %q", ErrInvalidParameter, s)
}

// ParseRatioKind resolves "CCR" or "NLR" (case-insensitive).
func ParseRatioKind(s string) (RatioKind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "CCR":
		return RatioCCR, nil
	case "NLR":
		return RatioNLR, nil
	}
	return "", fmt.Errorf("%w: ratio %q", ErrInvalidParameter, s)
}

// ParsePremiumKind resolves "GWP" or "NWP" (case-insensitive).
func ParsePremiumKind(s string) (PremiumKind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "GWP":
		return PremiumGWP, nil
	case "NWP":
		return PremiumNWP, nil
	}
	return "", fmt.Errorf("%w: premium %q", ErrInvalidParameter, s)
}

// NormaliseSet holds the categories whose incurred value is replaced by the
// seasonality adjusted model value. The zero value normalises nothing.
type NormaliseSet map[string]struct{}

// NewNormaliseSet builds a set from category names.
func NewNormaliseSet(categories ...string) NormaliseSet {
	set := make(NormaliseSet, len(categories))
	for _, c := range categories {
		set[c] = struct{}{}
	}
	return set
}

// NormaliseFromFlags pairs per-category flags with the category list. Missing
// flags count as false.
func NormaliseFromFlags(categories []string, flags []bool) NormaliseSet {
	set := make(NormaliseSet)
	for i, c := range categories {
		if i < len(flags) && flags[i] {
			set[c] = struct{}{}
		}
	}
	return set
}

// Contains reports whether the category is normalised.
func (s NormaliseSet) Contains(category string) bool {
	if s == nil {
		return false
	}
	_, ok := s[category]
	return ok
}

// Names returns the normalised categories in the order of the given list.
func (s NormaliseSet) Names(categories []string) []string {
	out := make([]string, 0, len(s))
	for _, c := range categories {
		if s.Contains(c) {
			out = append(out, c)
		}
	}
	return out
}
