package health

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wildone/asset-share-commons/internal/logger"
)

// DefaultCheckTimeout bounds each component check.
const DefaultCheckTimeout = 2 * time.Second

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates total failure.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

type check struct {
	name string
	fn   func(ctx context.Context) error
}

// Service coordinates health checks. Checks run concurrently, each under its own timeout.
type Service struct {
	checks  []check
	timeout time.Duration
}

// New creates a Service. index can be nil.
func New(db DBPinger, index IndexChecker) *Service {
	s := &Service{timeout: DefaultCheckTimeout}
	s.checks = append(s.checks, check{name: "database", fn: db.Ping})
	if index != nil {
		s.checks = append(s.checks, check{name: "search_index", fn: index.CheckIndex})
	}
	return s
}

// WithTimeout overrides the per-check timeout.
func (s *Service) WithTimeout(d time.Duration) *Service {
	if d > 0 {
		s.timeout = d
	}
	return s
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	log := logger.FromContext(ctx)
	checks := make(map[string]CheckResult, len(s.checks))

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	for _, c := range s.checks {
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()

			res := CheckOK
			if err := c.fn(cctx); err != nil {
				log.Warn("Health check failed", zap.String("check", c.name), zap.Error(err))
				res = CheckError
			}
			mu.Lock()
			checks[c.name] = res
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, v := range checks {
		if v == CheckError {
			failed++
		}
	}

	status := Healthy
	switch {
	case failed == len(checks):
		status = Unhealthy
	case failed > 0:
		status = Degraded
	}

	return Report{Status: status, Checks: checks}
}
