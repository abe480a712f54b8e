package health

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates an optional component is failing; notes are stored without
	// summaries or embeddings until it recovers.
	Degraded Status = "degraded"
	// Unhealthy indicates storage is unreachable.
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

// DefaultCheckTimeout bounds each individual check.
const DefaultCheckTimeout = 3 * time.Second

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	db       Pinger
	checkers map[string]Checker
	timeout  time.Duration
	logger   *zap.Logger
}

// New creates a Service around the required storage check.
func New(db Pinger, logger *zap.Logger) *Service {
	return &Service{
		db:       db,
		checkers: make(map[string]Checker),
		timeout:  DefaultCheckTimeout,
		logger:   logger,
	}
}

// WithChecker adds an optional component, e.g. "embedding" or "summarizer".
// A nil checker is ignored.
func (s *Service) WithChecker(name string, c Checker) *Service {
	if c != nil {
		s.checkers[name] = c
	}
	return s
}

// WithTimeout sets the per-check timeout.
func (s *Service) WithTimeout(d time.Duration) *Service {
	if d > 0 {
		s.timeout = d
	}
	return s
}

// Check runs all checks concurrently. A storage failure makes the service Unhealthy,
// any other failure Degraded.
func (s *Service) Check(ctx context.Context) Report {
	var (
		mu     sync.Mutex
		checks = make(map[string]CheckResult, len(s.checkers)+1)
	)
	record := func(name string, err error) {
		res := CheckOK
		if err != nil {
			res = CheckError
			s.logger.Warn("Health check failed", zap.String("component", name), zap.Error(err))
		}
		mu.Lock()
		checks[name] = res
		mu.Unlock()
	}

	var g errgroup.Group
	g.Go(func() error {
		cctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		record("database", s.db.Ping(cctx))
		return nil
	})
	for name, c := range s.checkers {
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()
			record(name, c.HealthCheck(cctx))
			return nil
		})
	}
	_ = g.Wait() // checks report through record

	status := Healthy
	for name, v := range checks {
		if v != CheckError {
			continue
		}
		if name == "database" {
			status = Unhealthy
			break
		}
		status = Degraded
	}

	return Report{Status: status, Checks: checks}
}
