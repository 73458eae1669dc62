// Package dashboard evaluates claims datasets into period tables, caching the
// results in Redis.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/CalibrantLtd/Slido/internal/claims"
	"github.com/CalibrantLtd/Slido/internal/periods"
)

// ErrRowNotFound is returned for a row index outside the dataset.
var ErrRowNotFound = errors.New("dashboard: row not found")

// Dataset is one backend result set: rows plus the column map that
// addresses them. Datasets without an ID are never cached.
type Dataset struct {
	ID      string         `json:"id,omitempty"`
	Rows    claims.Rows    `json:"data"`
	Columns claims.Columns `json:"column"`
}

// Line is one period of a dashboard table.
type Line struct {
	Label   string         `json:"label"`
	Month   string         `json:"month"`
	End     int            `json:"end"`
	Metrics claims.Metrics `json:"metrics"`
}

// Table is a computed dashboard: one line per period plus the grand total.
type Table struct {
	DatasetID         string    `json:"dataset_id,omitempty"`
	Period            string    `json:"period"`
	Ratio             string    `json:"ratio"`
	CommissionColumns []string  `json:"commission_columns"`
	Lines             []Line    `json:"lines"`
	Total             Line      `json:"total"`
	GeneratedAt       time.Time `json:"generated_at"`
	Cached            bool      `json:"cached"`
}

// Recorder observes dashboard builds.
type Recorder interface {
	ObserveBuild(period string, cached bool, duration time.Duration, err error)
}

// Option customises a Service.
type Option func(*Service)

// WithRecorder attaches build instrumentation.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithLogger sets the logger used for cache degradation warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Service coordinates engine evaluation with the cache layer.
type Service struct {
	cache    *Cache
	validate *validator.Validate
	group    singleflight.Group
	recorder Recorder
	logger   *slog.Logger
	now      func() time.Time
}

// NewService wires a Cache helper. cache may be nil.
func NewService(cache *Cache, opts ...Option) *Service {
	s := &Service{
		cache:    cache,
		validate: validator.New(),
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Build evaluates the dataset per period. Identical concurrent builds of a
// cached dataset share one computation.
func (s *Service) Build(ctx context.Context, ds Dataset, params Parameters) (table Table, err error) {
	start := time.Now()
	params = params.WithDefaults()
	defer func() {
		if s.recorder != nil {
			s.recorder.ObserveBuild(params.Period, table.Cached, time.Since(start), err)
		}
	}()

	r, err := s.resolve(params)
	if err != nil {
		return Table{}, err
	}
	if err := checkDataset(ds); err != nil {
		return Table{}, err
	}
	if ds.ID == "" || s.cache == nil {
		return s.compute(ctx, ds, r)
	}

	key, err := s.cache.BuildKey(ctx, "slido", "dashboard", ds.ID, params.Digest())
	if err != nil {
		s.logger.Warn("dashboard cache unavailable", slog.String("dataset", ds.ID), slog.Any("error", err))
		return s.compute(ctx, ds, r)
	}
	table, _, err = s.do(ctx, key, func(ctx context.Context) (Table, error) {
		var computeErr error
		loader := func(ctx context.Context) (any, error) {
			t, err := s.compute(ctx, ds, r)
			computeErr = err
			return t, err
		}
		var cachedTable Table
		cached, err := s.cache.FetchJSON(ctx, key, &cachedTable, loader)
		if err != nil {
			if computeErr != nil {
				return Table{}, computeErr
			}
			s.logger.Warn("dashboard cache unavailable", slog.String("dataset", ds.ID), slog.Any("error", err))
			return s.compute(ctx, ds, r)
		}
		cachedTable.Cached = cached
		return cachedTable, nil
	})
	return table, err
}

// RowMetrics evaluates a single raw row.
func (s *Service) RowMetrics(ctx context.Context, ds Dataset, params Parameters, idx int) (claims.Metrics, error) {
	r, err := s.resolve(params.WithDefaults())
	if err != nil {
		return claims.Metrics{}, err
	}
	if idx < 0 || idx >= len(ds.Rows) {
		return claims.Metrics{}, fmt.Errorf("%w: %d of %d", ErrRowNotFound, idx, len(ds.Rows))
	}
	if err := ctx.Err(); err != nil {
		return claims.Metrics{}, err
	}
	engine := claims.NewEngine(ds.Rows, ds.Columns, r.categories)
	return sanitise(engine.Snapshot(idx, r.query)), nil
}

// Periods returns the period summary rows without evaluating ratios. The
// rows follow the column map of ds.Layout().
func (s *Service) Periods(ctx context.Context, ds Dataset, params Parameters) ([]periods.Summary, error) {
	r, err := s.resolve(params.WithDefaults())
	if err != nil {
		return nil, err
	}
	if err := checkDataset(ds); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ds = ds.Layout()
	out, err := periods.Aggregate(r.granularity, ds.Rows, ds.Columns, r.exposures, r.binders)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidParameters, err)
	}
	return out, nil
}

// Invalidate drops every cached dashboard.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.Bump(ctx)
}

// Layout returns the dataset with columns 0 and 1 free for period labels,
// shifting data fields that a loader placed there.
func (ds Dataset) Layout() Dataset {
	ds.Rows, ds.Columns = periods.WithLabelColumns(ds.Rows, ds.Columns)
	return ds
}

func checkDataset(ds Dataset) error {
	if len(ds.Columns) == 0 {
		return fmt.Errorf("%w: dataset has no columns", ErrInvalidParameters)
	}
	return nil
}

func (s *Service) compute(ctx context.Context, ds Dataset, r resolved) (Table, error) {
	ds = ds.Layout()
	var (
		summaries []periods.Summary
		total     claims.Row
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if r.granularity == periods.Month {
			summaries = monthly(ds)
			return nil
		}
		out, err := periods.Aggregate(r.granularity, ds.Rows, ds.Columns, r.exposures, r.binders)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidParameters, err)
		}
		summaries = out
		return gctx.Err()
	})
	g.Go(func() error {
		total = periods.Total(ds.Rows, ds.Columns, r.exposures)
		return gctx.Err()
	})
	if err := g.Wait(); err != nil {
		return Table{}, err
	}

	rows := append(periods.SummaryRows(summaries), total)
	engine := claims.NewEngine(rows, ds.Columns, r.categories)
	lines := make([]Line, 0, len(summaries))
	for i, sum := range summaries {
		month := monthOf(sum.Row)
		if r.granularity == periods.Month {
			month = sum.Label
		}
		lines = append(lines, Line{
			Label:   sum.Label,
			Month:   month,
			End:     sum.End,
			Metrics: sanitise(engine.Snapshot(i, r.query)),
		})
	}
	return Table{
		DatasetID:         ds.ID,
		Period:            string(r.granularity),
		Ratio:             string(r.query.Ratio),
		CommissionColumns: engine.CommissionColumns(),
		Lines:             lines,
		Total: Line{
			Label:   periods.TotalLabel,
			Month:   periods.TotalLabel,
			End:     len(ds.Rows) - 1,
			Metrics: sanitise(engine.Snapshot(len(summaries), r.query)),
		},
		GeneratedAt: s.now().UTC(),
	}, nil
}

// monthly keeps raw rows at month granularity so that numeric strings still
// reach the engine.
func monthly(ds Dataset) []periods.Summary {
	col := ds.Columns.Index(claims.ColumnMonth)
	out := make([]periods.Summary, len(ds.Rows))
	for i, row := range ds.Rows {
		var month claims.Cell
		if col >= 0 && col < len(row) {
			month = row[col]
		}
		label := periods.Label(month, periods.Month)
		if label == periods.InvalidDate {
			if s, ok := month.(string); ok && s != "" {
				label = s
			}
		}
		out[i] = periods.Summary{End: i, Label: label, Row: row}
	}
	return out
}

func monthOf(row claims.Row) string {
	if len(row) < 2 {
		return ""
	}
	if s, ok := row[1].(string); ok {
		return s
	}
	return ""
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// sanitise zeroes non-finite figures so tables stay JSON encodable.
func sanitise(m claims.Metrics) claims.Metrics {
	for _, f := range []*float64{
		&m.Premium, &m.PremiumDenominator, &m.GEP, &m.NEP, &m.AverageGWP,
		&m.Commission, &m.WrittenCommission, &m.Paid, &m.OS, &m.Incurred,
		&m.IBNR, &m.Unearned, &m.Ultimate, &m.Ratio, &m.NormalisedRatio,
		&m.SeasonAdjustedRatio,
	} {
		*f = finite(*f)
	}
	categories := make([]claims.CategoryMetrics, len(m.Categories))
	for i, c := range m.Categories {
		c.Paid, c.OS, c.Incurred = finite(c.Paid), finite(c.OS), finite(c.Incurred)
		c.IBNR, c.Unearned, c.Ultimate = finite(c.IBNR), finite(c.Unearned), finite(c.Ultimate)
		c.Apriori, c.Seasonality = finite(c.Apriori), finite(c.Seasonality)
		categories[i] = c
	}
	m.Categories = categories
	if len(m.Exposures) > 0 {
		exposures := make([]claims.ExposureMetric, len(m.Exposures))
		for i, e := range m.Exposures {
			e.Value = finite(e.Value)
			exposures[i] = e
		}
		m.Exposures = exposures
	}
	return m
}
