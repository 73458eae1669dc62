package claims

import (
	"fmt"
	"strings"
)

// Method is the aggregation rule attached to an exposure measure.
type Method int

const (
	MethodSum Method = iota
	MethodMin
	MethodMax
	// MethodAvg reads a summed exposure weighted by its count column.
	MethodAvg
	// MethodAverage aggregates like MethodAvg across periods but reads its
	// column as-is at row level.
	MethodAverage
)

// String returns the token used in column names.
func (m Method) String() string {
	switch m {
	case MethodSum:
		return "sum"
	case MethodMin:
		return "min"
	case MethodMax:
		return "max"
	case MethodAvg:
		return "avg"
	case MethodAverage:
		return "average"
	}
	return fmt.Sprintf("method(%d)", int(m))
}

// ParseMethod resolves an exposure method token.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sum":
		return MethodSum, nil
	case "min":
		return MethodMin, nil
	case "max":
		return MethodMax, nil
	case "avg":
		return MethodAvg, nil
	case "average":
		return MethodAverage, nil
	}
	return 0, fmt.Errorf("%w: exposure method %q", ErrInvalidParameter, s)
}

// Exposure names an exposure measure and its aggregation method.
type Exposure struct {
	Name   string
	Method Method
}

// ParseExposure builds an Exposure from its configured name and method.
func ParseExposure(name, method string) (Exposure, error) {
	m, err := ParseMethod(method)
	if err != nil {
		return Exposure{}, err
	}
	if strings.TrimSpace(name) == "" {
		return Exposure{}, fmt.Errorf("%w: exposure name required", ErrInvalidParameter)
	}
	return Exposure{Name: name, Method: m}, nil
}

// Column is the exposure value column, e.g. "uw_data.exposure.sum.Total Risk Count".
func (e Exposure) Column() string {
	return "uw_data.exposure." + e.Method.String() + "." + e.Name
}

// CountColumn is the policy count column used to weight averages.
func (e Exposure) CountColumn() string {
	return ColumnExposureCountPrefix + e.Name
}
