package dashboardhttp

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/CalibrantLtd/Slido/internal/claims"
	"github.com/CalibrantLtd/Slido/internal/dashboard"
	"github.com/CalibrantLtd/Slido/internal/periods"
	"github.com/CalibrantLtd/Slido/internal/platform/httpx"
)

const (
	defaultRequestTimeout = 5 * time.Second
	defaultMaxBody        = 32 << 20
	defaultRateLimit      = 60
)

// DashboardService defines the evaluation contract used by the handler.
type DashboardService interface {
	Build(ctx context.Context, ds dashboard.Dataset, params dashboard.Parameters) (dashboard.Table, error)
	RowMetrics(ctx context.Context, ds dashboard.Dataset, params dashboard.Parameters, idx int) (claims.Metrics, error)
	Periods(ctx context.Context, ds dashboard.Dataset, params dashboard.Parameters) ([]periods.Summary, error)
	Invalidate(ctx context.Context) error
}

// WarmupEnqueuer schedules background dashboard builds.
type WarmupEnqueuer interface {
	EnqueueDashboardWarmup(ctx context.Context, ds dashboard.Dataset, params dashboard.Parameters) (string, error)
}

// Options tune request handling. Zero values take defaults.
type Options struct {
	RequestTimeout time.Duration
	MaxBodyBytes   int64
	RatePerMinute  int
}

// Handler serves claims dashboard computations over JSON.
type Handler struct {
	logger  *slog.Logger
	service DashboardService
	warmup  WarmupEnqueuer
	opts    Options
}

// NewHandler constructs the dashboard HTTP handler. warmup may be nil, in
// which case the warm-up endpoint answers 503.
func NewHandler(logger *slog.Logger, service DashboardService, warmup WarmupEnqueuer, opts Options) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = defaultRequestTimeout
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBody
	}
	if opts.RatePerMinute <= 0 {
		opts.RatePerMinute = defaultRateLimit
	}
	return &Handler{logger: logger, service: service, warmup: warmup, opts: opts}
}

type dashboardRequest struct {
	Dataset    dashboard.Dataset    `json:"dataset"`
	Parameters dashboard.Parameters `json:"parameters"`
}

type metricsRequest struct {
	dashboardRequest
	Row int `json:"row"`
}

type periodsResponse struct {
	Period    string            `json:"period"`
	Columns   claims.Columns    `json:"column"`
	Summaries []periods.Summary `json:"summaries"`
}

type warmupResponse struct {
	DatasetID string `json:"dataset_id"`
	TaskID    string `json:"task_id"`
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	var req dashboardRequest
	if err := httpx.DecodeJSON(w, r, h.opts.MaxBodyBytes, &req); err != nil {
		h.respondError(w, "decode dashboard", err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.opts.RequestTimeout)
	defer cancel()

	table, err := h.service.Build(ctx, req.Dataset, req.Parameters)
	if err != nil {
		h.respondError(w, "build dashboard", err)
		return
	}
	httpx.JSON(w, http.StatusOK, table)
}

func (h *Handler) handleMetrics(w http.ResponseWriter, r *http.Request) {
	var req metricsRequest
	if err := httpx.DecodeJSON(w, r, h.opts.MaxBodyBytes, &req); err != nil {
		h.respondError(w, "decode metrics", err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.opts.RequestTimeout)
	defer cancel()

	metrics, err := h.service.RowMetrics(ctx, req.Dataset, req.Parameters, req.Row)
	if err != nil {
		h.respondError(w, "row metrics", err)
		return
	}
	httpx.JSON(w, http.StatusOK, metrics)
}

func (h *Handler) handlePeriods(w http.ResponseWriter, r *http.Request) {
	var req dashboardRequest
	if err := httpx.DecodeJSON(w, r, h.opts.MaxBodyBytes, &req); err != nil {
		h.respondError(w, "decode periods", err)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), h.opts.RequestTimeout)
	defer cancel()

	summaries, err := h.service.Periods(ctx, req.Dataset, req.Parameters)
	if err != nil {
		h.respondError(w, "aggregate periods", err)
		return
	}
	httpx.JSON(w, http.StatusOK, periodsResponse{
		Period:    req.Parameters.WithDefaults().Period,
		Columns:   req.Dataset.Layout().Columns,
		Summaries: summaries,
	})
}

func (h *Handler) handleWarmup(w http.ResponseWriter, r *http.Request) {
	if h.warmup == nil {
		httpx.Problem(w, http.StatusServiceUnavailable, "Unavailable", "background worker not configured")
		return
	}
	var req dashboardRequest
	if err := httpx.DecodeJSON(w, r, h.opts.MaxBodyBytes, &req); err != nil {
		h.respondError(w, "decode warmup", err)
		return
	}
	if req.Dataset.ID == "" {
		req.Dataset.ID = uuid.NewString()
	}
	taskID, err := h.warmup.EnqueueDashboardWarmup(r.Context(), req.Dataset, req.Parameters)
	if err != nil {
		h.respondError(w, "enqueue warmup", err)
		return
	}
	httpx.JSON(w, http.StatusAccepted, warmupResponse{DatasetID: req.Dataset.ID, TaskID: taskID})
}

func (h *Handler) handleInvalidate(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Invalidate(r.Context()); err != nil {
		h.respondError(w, "invalidate cache", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, dashboard.ErrInvalidParameters):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
	case errors.Is(err, dashboard.ErrRowNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, httpx.ErrBadRequest), errors.Is(err, context.DeadlineExceeded):
		httpx.RespondError(w, err)
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
