// Package health runs dependency probes for the liveness and readiness
// endpoints.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"
)

type Status string

const (
	StatusUp       Status = "up"
	StatusDegraded Status = "degraded"
	StatusDown     Status = "down"
)

// Probe returns nil when the dependency is usable.
type Probe func(ctx context.Context) error

type Result struct {
	Status    Status `json:"status"`
	Error     string `json:"error,omitempty"`
	LatencyMs int64  `json:"latency_ms"`
}

type Report struct {
	Status     Status            `json:"status"`
	Components map[string]Result `json:"components"`
	CheckedAt  time.Time         `json:"checked_at"`
}

type check struct {
	probe    Probe
	critical bool
}

// Checker holds named probes. A failing critical probe marks the service
// down; any other failure only degrades it.
type Checker struct {
	mu      sync.RWMutex
	checks  map[string]check
	timeout time.Duration
}

func NewChecker(timeout time.Duration) *Checker {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Checker{checks: make(map[string]check), timeout: timeout}
}

func (c *Checker) Critical(name string, p Probe) { c.add(name, p, true) }

func (c *Checker) Optional(name string, p Probe) { c.add(name, p, false) }

func (c *Checker) add(name string, p Probe, critical bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check{probe: p, critical: critical}
}

// Names lists registered probes in sorted order.
func (c *Checker) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.checks))
	for n := range c.checks {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Run executes every probe concurrently, each under the checker timeout.
func (c *Checker) Run(ctx context.Context) Report {
	c.mu.RLock()
	checks := make(map[string]check, len(c.checks))
	for n, ch := range c.checks {
		checks[n] = ch
	}
	c.mu.RUnlock()

	report := Report{
		Status:     StatusUp,
		Components: make(map[string]Result, len(checks)),
		CheckedAt:  time.Now().UTC(),
	}
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for name, ch := range checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pctx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()
			start := time.Now()
			err := ch.probe(pctx)
			res := Result{Status: StatusUp, LatencyMs: time.Since(start).Milliseconds()}
			if err != nil {
				res.Status = StatusDegraded
				if ch.critical {
					res.Status = StatusDown
				}
				res.Error = err.Error()
			}
			mu.Lock()
			report.Components[name] = res
			if worse(res.Status, report.Status) {
				report.Status = res.Status
			}
			mu.Unlock()
		}()
	}
	wg.Wait()
	return report
}

func worse(a, b Status) bool {
	rank := map[Status]int{StatusUp: 0, StatusDegraded: 1, StatusDown: 2}
	return rank[a] > rank[b]
}

// Register mounts /health/live and /health/ready.
func (c *Checker) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health/live", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
	})
	mux.HandleFunc("GET /health/ready", func(w http.ResponseWriter, r *http.Request) {
		report := c.Run(r.Context())
		status := http.StatusOK
		if report.Status == StatusDown {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, report)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
