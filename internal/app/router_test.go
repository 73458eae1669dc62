package app

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CalibrantLtd/Slido/internal/dashboard"
	dashboardhttp "github.com/CalibrantLtd/Slido/internal/dashboard/http"
	"github.com/CalibrantLtd/Slido/internal/observability"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := &Config{AppEnv: "test"}
	metrics := observability.NewMetrics()
	handler := dashboardhttp.NewHandler(nil, dashboard.NewService(nil), nil, dashboardhttp.Options{})
	return NewRouter(RouterParams{
		Config:           cfg,
		DashboardHandler: handler,
		Metrics:          metrics,
	})
}

func TestRouterHealthz(t *testing.T) {
	srv := httptest.NewServer(newTestRouter(t))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "DENY", resp.Header.Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.NotEmpty(t, resp.Header.Get("Content-Security-Policy"))
	body, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestRouterMountsDashboardAndMetrics(t *testing.T) {
	router := newTestRouter(t)

	body := `{"dataset":{"data":[["Jan-2024",100],["Apr-2024",50]],"column":{"months.MONTH":0,"uw_data.GEP_AMOUNT":1}},"parameters":{"period":"quarter"}}`
	req := httptest.NewRequest(http.MethodPost, "/claims/periods", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "slido_http_requests_total")
}
