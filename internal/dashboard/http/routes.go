// Package dashboardhttp exposes claims dashboard computations over HTTP.
package dashboardhttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/CalibrantLtd/Slido/internal/platform/httpx"
)

// MountRoutes registers claims endpoints onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	limiter := httprate.Limit(h.opts.RatePerMinute, time.Minute,
		httprate.WithKeyFuncs(rateLimitKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			httpx.Problem(w, http.StatusTooManyRequests, "Too Many Requests", "rate limit exceeded")
		}),
	)

	r.Group(func(gr chi.Router) {
		gr.Use(limiter)
		gr.Post("/claims/dashboard", h.handleDashboard)
		gr.Post("/claims/metrics", h.handleMetrics)
		gr.Post("/claims/periods", h.handlePeriods)
		gr.Post("/claims/dashboard/warmup", h.handleWarmup)
	})
	r.Delete("/claims/dashboard/cache", h.handleInvalidate)
}

func rateLimitKey(r *http.Request) (string, error) {
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + key, nil
}
