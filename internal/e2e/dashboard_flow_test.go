package e2e

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/CalibrantLtd/Slido/internal/app"
	"github.com/CalibrantLtd/Slido/internal/dashboard"
	dashboardhttp "github.com/CalibrantLtd/Slido/internal/dashboard/http"
	jobmetrics "github.com/CalibrantLtd/Slido/internal/jobs"
	"github.com/CalibrantLtd/Slido/internal/observability"
	"github.com/CalibrantLtd/Slido/jobs"
)

// inlineQueue runs warm-up tasks synchronously instead of enqueueing them.
type inlineQueue struct {
	job *jobs.DashboardWarmupJob
}

func (q inlineQueue) EnqueueDashboardWarmup(ctx context.Context, ds dashboard.Dataset, params dashboard.Parameters) (string, error) {
	task, err := jobs.NewDashboardWarmupTask(jobs.DashboardWarmupPayload{Dataset: ds, Parameters: []dashboard.Parameters{params}})
	if err != nil {
		return "", err
	}
	if err := q.job.Handle(ctx, task); err != nil {
		return "", err
	}
	return "inline-" + ds.ID, nil
}

const flowBody = `{
	"dataset": {
		"id": "portfolio-42",
		"column": {"months.MONTH": 0, "uw_data.GEP_AMOUNT": 1, "uws.GWP_SUM": 2, "claims_data.X_inc": 3, "X_ibnr": 4},
		"data": [
			["Jan-2024", 400, 500, 100, 20],
			["Feb-2024", 100, 100, 10, 0],
			["Jul-2024", 500, 400, 60, 5]
		]
	},
	"parameters": {"claims_nature": ["X"], "period": "quarter"}
}`

func post(t *testing.T, srv *httptest.Server, method, path, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func decodeTable(t *testing.T, resp *http.Response) dashboard.Table {
	t.Helper()
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("unexpected status %d: %s", resp.StatusCode, body)
	}
	var table dashboard.Table
	if err := json.NewDecoder(resp.Body).Decode(&table); err != nil {
		t.Fatalf("decode table: %v", err)
	}
	return table
}

func TestDashboardWarmupThenCachedBuild(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetrics()
	service := dashboard.NewService(dashboard.NewCache(client, time.Minute),
		dashboard.WithLogger(logger),
		dashboard.WithRecorder(metrics),
	)
	job := jobs.NewDashboardWarmupJob(service, logger, jobmetrics.NewMetrics(prometheus.NewRegistry()))
	handler := dashboardhttp.NewHandler(logger, service, inlineQueue{job: job}, dashboardhttp.Options{})

	srv := httptest.NewServer(app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           &app.Config{AppEnv: "test"},
		DashboardHandler: handler,
		Metrics:          metrics,
	}))
	defer srv.Close()

	resp := post(t, srv, http.MethodPost, "/claims/dashboard/warmup", flowBody)
	resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("warmup status %d", resp.StatusCode)
	}

	table := decodeTable(t, post(t, srv, http.MethodPost, "/claims/dashboard", flowBody))
	if !table.Cached {
		t.Fatal("expected dashboard to be served from the warmed cache")
	}
	if table.DatasetID != "portfolio-42" || len(table.Lines) != 2 {
		t.Fatalf("unexpected table: id=%q lines=%d", table.DatasetID, len(table.Lines))
	}
	if got := table.Total.Metrics.GEP; got != 1000 {
		t.Fatalf("expected total GEP 1000, got %v", got)
	}

	resp = post(t, srv, http.MethodDelete, "/claims/dashboard/cache", "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("invalidate status %d", resp.StatusCode)
	}

	table = decodeTable(t, post(t, srv, http.MethodPost, "/claims/dashboard", flowBody))
	if table.Cached {
		t.Fatal("expected a fresh build after invalidation")
	}

	resp, err := srv.Client().Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `slido_dashboard_builds_total{cache="hit",period="quarter",result="ok"} 1`) {
		t.Fatalf("expected one cache hit in metrics:\n%s", body)
	}
}
