package health

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates an auxiliary component is failing; search still works uncached.
	Degraded Status = "degraded"
	// Unhealthy indicates the provider database is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	CheckOK    CheckResult = "ok"
	CheckError CheckResult = "error"
)

const (
	database = "database"
	// DefaultCheckTimeout bounds each component ping.
	DefaultCheckTimeout = 2 * time.Second
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

type component struct {
	name   string
	pinger Pinger
}

// Service pings every registered component concurrently.
type Service struct {
	components []component
	timeout    time.Duration
}

// New creates a Service. cache and profiles can be nil.
func New(db, cache, profiles Pinger) *Service {
	s := &Service{timeout: DefaultCheckTimeout}
	s.add(database, db)
	s.add("cache", cache)
	s.add("profiles", profiles)
	return s
}

// WithModel adds the chat model API to the checks. Its failure degrades the status.
func (s *Service) WithModel(model Pinger) *Service {
	s.add("model", model)
	return s
}

// WithTimeout overrides the per-component ping timeout.
func (s *Service) WithTimeout(d time.Duration) *Service {
	if d > 0 {
		s.timeout = d
	}
	return s
}

func (s *Service) add(name string, p Pinger) {
	if p != nil {
		s.components = append(s.components, component{name: name, pinger: p})
	}
}

// Check runs all pings in parallel. A failing database makes the service
// Unhealthy; any other failure makes it Degraded.
func (s *Service) Check(ctx context.Context) Report {
	results := make([]CheckResult, len(s.components))

	var g errgroup.Group
	for i, c := range s.components {
		g.Go(func() error {
			pctx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()
			results[i] = ping(pctx, c.pinger)
			return nil
		})
	}
	_ = g.Wait()

	report := Report{Status: Healthy, Checks: make(map[string]CheckResult, len(s.components))}
	for i, c := range s.components {
		report.Checks[c.name] = results[i]
		if results[i] != CheckError {
			continue
		}
		if c.name == database {
			report.Status = Unhealthy
		} else if report.Status == Healthy {
			report.Status = Degraded
		}
	}
	return report
}

func ping(ctx context.Context, p Pinger) CheckResult {
	if err := p.Ping(ctx); err != nil {
		return CheckError
	}
	return CheckOK
}
