// AngelaMos | 2026
// handler.go

package health

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/templates/lms-backend/internal/core"
)

const checkTimeout = 5 * time.Second

const (
	StatusOK           = "ok"
	StatusDegraded     = "degraded"
	StatusNotReady     = "not_ready"
	StatusShuttingDown = "shutting_down"
)

type Checker interface {
	Ping(ctx context.Context) error
}

// Check names a dependency that readiness pings. A nil Checker reports
// unhealthy. Optional checks are reported but never degrade the server.
type Check struct {
	Name     string
	Checker  Checker
	Optional bool
}

type Options struct {
	Version string
	Driver  string
	Checks  []Check
}

type Handler struct {
	version  string
	driver   string
	started  time.Time
	checks   []Check
	ready    atomic.Bool
	shutdown atomic.Bool
}

func NewHandler(opts Options) *Handler {
	h := &Handler{
		version: opts.Version,
		driver:  opts.Driver,
		started: time.Now(),
		checks:  opts.Checks,
	}
	h.ready.Store(true)
	return h
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.Liveness)
	r.Get("/livez", h.Liveness)
	r.Get("/readyz", h.Readiness)
}

func (h *Handler) Liveness(w http.ResponseWriter, _ *http.Request) {
	resp := LivenessResponse{
		Status:  StatusOK,
		Version: h.version,
		Uptime:  time.Since(h.started).Round(time.Second).String(),
	}

	code := http.StatusOK
	if h.shutdown.Load() {
		resp.Status = StatusShuttingDown
		code = http.StatusServiceUnavailable
	}

	writeStatus(w, code, resp)
}

func (h *Handler) Readiness(w http.ResponseWriter, r *http.Request) {
	switch {
	case h.shutdown.Load():
		writeStatus(w, http.StatusServiceUnavailable, ReadinessResponse{
			Status: StatusShuttingDown,
			Driver: h.driver,
		})
		return
	case !h.ready.Load():
		writeStatus(w, http.StatusServiceUnavailable, ReadinessResponse{
			Status: StatusNotReady,
			Driver: h.driver,
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	results := h.runChecks(ctx)

	resp := ReadinessResponse{Status: StatusOK, Driver: h.driver, Checks: results}
	code := http.StatusOK
	for i, res := range results {
		if !res.Healthy && !h.checks[i].Optional {
			resp.Status = StatusDegraded
			code = http.StatusServiceUnavailable
			break
		}
	}

	writeStatus(w, code, resp)
}

func (h *Handler) runChecks(ctx context.Context) []CheckResult {
	var wg sync.WaitGroup
	results := make([]CheckResult, len(h.checks))

	for i, c := range h.checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = runCheck(ctx, c)
		}()
	}

	wg.Wait()
	return results
}

func runCheck(ctx context.Context, c Check) CheckResult {
	res := CheckResult{Name: c.Name, Healthy: true, Optional: c.Optional}

	if c.Checker == nil {
		res.Healthy = false
		res.Message = c.Name + " checker not configured"
		return res
	}

	start := time.Now()
	err := c.Checker.Ping(ctx)
	res.LatencyMs = float64(time.Since(start).Microseconds()) / 1000

	if err != nil {
		res.Healthy = false
		res.Message = "ping failed"
	}

	return res
}

func (h *Handler) SetReady(ready bool) {
	h.ready.Store(ready)
}

func (h *Handler) SetShutdown(shutdown bool) {
	h.shutdown.Store(shutdown)
}

func writeStatus(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	core.JSON(w, code, data)
}

type LivenessResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Uptime  string `json:"uptime,omitempty"`
}

type ReadinessResponse struct {
	Status string        `json:"status"`
	Driver string        `json:"driver,omitempty"`
	Checks []CheckResult `json:"checks,omitempty"`
}

type CheckResult struct {
	Name      string  `json:"name"`
	Healthy   bool    `json:"healthy"`
	Optional  bool    `json:"optional,omitempty"`
	LatencyMs float64 `json:"latencyMs"`
	Message   string  `json:"message,omitempty"`
}
