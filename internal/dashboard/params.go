package dashboard

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/CalibrantLtd/Slido/internal/claims"
	"github.com/CalibrantLtd/Slido/internal/periods"
)

// ErrInvalidParameters marks a dashboard request that cannot be evaluated.
var ErrInvalidParameters = errors.New("dashboard: invalid parameters")

// DefaultCategories are used when a request names no claims categories.
var DefaultCategories = []string{"ATTRITIONAL", "LARGE"}

// ExposureParam is one configured exposure measure.
type ExposureParam struct {
	Name   string `json:"name" yaml:"name" validate:"required"`
	Method string `json:"method" yaml:"method" validate:"required"`
}

// Parameters select how a dataset is evaluated.
type Parameters struct {
	Categories   []string        `json:"claims_nature" validate:"required,min=1,dive,required"`
	Exposures    []ExposureParam `json:"exposure" validate:"dive"`
	Normalise    []string        `json:"normalise" validate:"dive,required"`
	Accrual      string          `json:"accrual"`
	Attribution  string          `json:"accident_underwriting"`
	Period       string          `json:"period"`
	Ratio        string          `json:"ratio"`
	Premium      string          `json:"premium"`
	SeasonFactor bool            `json:"season_factor"`
	ExcludeIBNR  bool            `json:"exclude_ibnr"`
	Binders      []string        `json:"binders,omitempty"`
}

// WithDefaults fills unset selections: written premium on an underwriting
// basis, quarterly periods, CCR over GWP.
func (p Parameters) WithDefaults() Parameters {
	if len(p.Categories) == 0 {
		p.Categories = append([]string(nil), DefaultCategories...)
	}
	if p.Accrual == "" {
		p.Accrual = string(claims.AccrualWritten)
	}
	if p.Attribution == "" {
		p.Attribution = string(claims.AttributionUnderwriting)
	}
	if p.Period == "" {
		p.Period = string(periods.Quarter)
	}
	if p.Ratio == "" {
		p.Ratio = string(claims.RatioCCR)
	}
	if p.Premium == "" {
		p.Premium = string(claims.PremiumGWP)
	}
	return p
}

// Digest identifies the parameter set in cache keys.
func (p Parameters) Digest() string {
	raw, _ := json.Marshal(p)
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:12])
}

type resolved struct {
	categories  []string
	exposures   []claims.Exposure
	granularity periods.Granularity
	binders     []string
	query       claims.Query
}

func (s *Service) resolve(p Parameters) (resolved, error) {
	if err := s.validate.Struct(p); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return resolved{}, fmt.Errorf("%w: %s failed on %s", ErrInvalidParameters, fieldErrs[0].Namespace(), fieldErrs[0].Tag())
		}
		return resolved{}, fmt.Errorf("%w: %v", ErrInvalidParameters, err)
	}
	basis, err := claims.ParseAccrualBasis(p.Accrual)
	if err != nil {
		return resolved{}, fmt.Errorf("%w: %w", ErrInvalidParameters, err)
	}
	attribution, err := claims.ParseAttribution(p.Attribution)
	if err != nil {
		return resolved{}, fmt.Errorf("%w: %w", ErrInvalidParameters, err)
	}
	granularity, err := periods.ParseGranularity(p.Period)
	if err != nil {
		return resolved{}, fmt.Errorf("%w: %w", ErrInvalidParameters, err)
	}
	ratio, err := claims.ParseRatioKind(p.Ratio)
	if err != nil {
		return resolved{}, fmt.Errorf("%w: %w", ErrInvalidParameters, err)
	}
	premium, err := claims.ParsePremiumKind(p.Premium)
	if err != nil {
		return resolved{}, fmt.Errorf("%w: %w", ErrInvalidParameters, err)
	}
	exposures := make([]claims.Exposure, 0, len(p.Exposures))
	for _, e := range p.Exposures {
		exp, err := claims.ParseExposure(e.Name, e.Method)
		if err != nil {
			return resolved{}, fmt.Errorf("%w: %w", ErrInvalidParameters, err)
		}
		exposures = append(exposures, exp)
	}
	return resolved{
		categories:  p.Categories,
		exposures:   exposures,
		granularity: granularity,
		binders:     p.Binders,
		query: claims.Query{
			Regime:       claims.Regime{Basis: basis, Attribution: attribution},
			Ratio:        ratio,
			Premium:      premium,
			Normalise:    claims.NewNormaliseSet(p.Normalise...),
			SeasonFactor: p.SeasonFactor,
			ExcludeIBNR:  p.ExcludeIBNR,
			Exposures:    exposures,
		},
	}, nil
}
