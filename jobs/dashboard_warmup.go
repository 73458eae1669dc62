package jobs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/CalibrantLtd/Slido/internal/dashboard"
	jobmetrics "github.com/CalibrantLtd/Slido/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// DashboardBuilder is the slice of the dashboard service the jobs use.
type DashboardBuilder interface {
	Build(ctx context.Context, ds dashboard.Dataset, params dashboard.Parameters) (dashboard.Table, error)
	Invalidate(ctx context.Context) error
}

// DashboardWarmupJob builds dashboards ahead of user requests.
type DashboardWarmupJob struct {
	Dashboards DashboardBuilder
	Logger     *slog.Logger
	Metrics    *jobmetrics.Metrics
	timeout    time.Duration
}

// NewDashboardWarmupJob wires dependencies for the warm-up handler.
func NewDashboardWarmupJob(builder DashboardBuilder, logger *slog.Logger, metrics *jobmetrics.Metrics) *DashboardWarmupJob {
	return &DashboardWarmupJob{
		Dashboards: builder,
		Logger:     logger,
		Metrics:    metrics,
		timeout:    30 * time.Second,
	}
}

// Handle processes TaskDashboardWarmup tasks.
func (j *DashboardWarmupJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Dashboards == nil {
		return errors.New("dashboard warmup: handler not configured")
	}
	var payload DashboardWarmupPayload
	dec := json.NewDecoder(bytes.NewReader(t.Payload()))
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil {
		return fmt.Errorf("dashboard warmup: decode payload: %v: %w", err, asynq.SkipRetry)
	}
	if payload.Dataset.ID == "" {
		return fmt.Errorf("dashboard warmup: dataset id required: %w", asynq.SkipRetry)
	}
	if len(payload.Parameters) == 0 {
		payload.Parameters = []dashboard.Parameters{{}}
	}

	tracker := j.metrics().Track(TaskDashboardWarmup)
	defer func() { err = tracker.End(err) }()

	logger := j.logger().With(slog.String("dataset", payload.Dataset.ID))
	logger.Info("starting dashboard warmup", slog.Int("parameter_sets", len(payload.Parameters)))
	start := time.Now()

	for i, params := range payload.Parameters {
		buildCtx, cancel := context.WithTimeout(ctx, j.timeout)
		table, err := j.Dashboards.Build(buildCtx, payload.Dataset, params)
		cancel()
		if errors.Is(err, dashboard.ErrInvalidParameters) {
			logger.Warn("skip invalid parameter set", slog.Int("index", i), slog.Any("error", err))
			continue
		}
		if err != nil {
			logger.Error("build dashboard", slog.Int("index", i), slog.Any("error", err))
			return err
		}
		j.metrics().AddRows(TaskDashboardWarmup, len(payload.Dataset.Rows))
		logger.Debug("dashboard warmed", slog.String("period", table.Period), slog.Bool("cached", table.Cached))
	}

	logger.Info("completed dashboard warmup", slog.Duration("duration", time.Since(start)))
	return nil
}

// HandleInvalidate processes TaskCacheInvalidate tasks.
func (j *DashboardWarmupJob) HandleInvalidate(ctx context.Context, _ *asynq.Task) (err error) {
	if j == nil || j.Dashboards == nil {
		return errors.New("cache invalidate: handler not configured")
	}
	tracker := j.metrics().Track(TaskCacheInvalidate)
	defer func() { err = tracker.End(err) }()
	if err := j.Dashboards.Invalidate(ctx); err != nil {
		j.logger().Error("invalidate dashboard cache", slog.Any("error", err))
		return err
	}
	j.logger().Info("dashboard cache invalidated")
	return nil
}

func (j *DashboardWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}

func (j *DashboardWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
