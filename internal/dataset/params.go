package dataset

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/CalibrantLtd/Slido/internal/dashboard"
)

// Portfolio is the on-disk parameter file of a portfolio.
type Portfolio struct {
	ClaimsNature []string          `yaml:"claims_nature"`
	Exposure     []ExposureSpec    `yaml:"exposure"`
	Normalise    []string          `yaml:"normalise"`
	Binders      []string          `yaml:"binders"`
	Defaults     DashboardDefaults `yaml:"default_dashboard"`
}

// ExposureSpec names an exposure measure and its aggregation method.
type ExposureSpec struct {
	Name   string `yaml:"name"`
	Method string `yaml:"method"`
}

// DashboardDefaults are the initial dashboard selections of a portfolio.
type DashboardDefaults struct {
	AccidentUnderwriting string `yaml:"accident_underwriting"`
	Cohort               string `yaml:"cohort"`
	Accrual              string `yaml:"accrual"`
	Ratio                string `yaml:"ratio"`
	Premium              string `yaml:"premium"`
	SeasonFactor         bool   `yaml:"season_factor"`
	ExcludeIBNR          bool   `yaml:"exclude_ibnr"`
}

// LoadParameters reads a YAML portfolio file into dashboard parameters.
func LoadParameters(path string) (dashboard.Parameters, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return dashboard.Parameters{}, fmt.Errorf("dataset: read parameters: %w", err)
	}
	return ParseParameters(raw)
}

// ParseParameters decodes a YAML portfolio document.
func ParseParameters(raw []byte) (dashboard.Parameters, error) {
	var p Portfolio
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return dashboard.Parameters{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return p.Parameters(), nil
}

// Parameters converts the portfolio file into request parameters. The
// backend's numeric attribution flag (1 underwriting, 0 accident) is accepted.
func (p Portfolio) Parameters() dashboard.Parameters {
	exposures := make([]dashboard.ExposureParam, 0, len(p.Exposure))
	for _, e := range p.Exposure {
		exposures = append(exposures, dashboard.ExposureParam{Name: e.Name, Method: e.Method})
	}
	attribution := strings.TrimSpace(p.Defaults.AccidentUnderwriting)
	switch attribution {
	case "1":
		attribution = "uw"
	case "0":
		attribution = "acc"
	}
	return dashboard.Parameters{
		Categories:   p.ClaimsNature,
		Exposures:    exposures,
		Normalise:    p.Normalise,
		Accrual:      p.Defaults.Accrual,
		Attribution:  attribution,
		Period:       p.Defaults.Cohort,
		Ratio:        p.Defaults.Ratio,
		Premium:      p.Defaults.Premium,
		SeasonFactor: p.Defaults.SeasonFactor,
		ExcludeIBNR:  p.Defaults.ExcludeIBNR,
		Binders:      p.Binders,
	}
}
