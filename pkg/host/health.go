package host

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"

	checkTimeout = 5 * time.Second
)

// CheckFunc reports whether a dependency is usable.
type CheckFunc func(ctx context.Context) error

// Checks maps check names to their functions.
type Checks map[string]CheckFunc

// HealthReport is the JSON body of the health endpoint.
type HealthReport struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func liveness(w http.ResponseWriter, r *http.Request) {
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, HealthReport{Status: StatusHealthy})
		return
	}
	_, _ = w.Write([]byte("OK"))
}

func readiness(checks Checks, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := runChecks(r.Context(), checks, log)

		status := http.StatusOK
		if report.Status != StatusHealthy {
			status = http.StatusServiceUnavailable
		}
		if wantsJSON(r) {
			writeJSON(w, status, report)
			return
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(http.StatusText(status)))
	}
}

// runChecks runs every check in parallel. A failing check never cancels the
// others.
func runChecks(ctx context.Context, checks Checks, log *slog.Logger) HealthReport {
	report := HealthReport{Status: StatusHealthy}
	if len(checks) == 0 {
		return report
	}

	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	report.Checks = make(map[string]string, len(checks))
	for name, check := range checks {
		g.Go(func() error {
			result := StatusHealthy
			if err := check(ctx); err != nil {
				result = err.Error()
				log.WarnContext(ctx, "health check failed",
					slog.String("check", name),
					slog.Any("error", err),
				)
			}
			mu.Lock()
			defer mu.Unlock()
			report.Checks[name] = result
			if result != StatusHealthy {
				report.Status = StatusUnhealthy
			}
			return nil
		})
	}
	_ = g.Wait()
	return report
}

func wantsJSON(r *http.Request) bool {
	if r.URL.Query().Get("format") == "json" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
