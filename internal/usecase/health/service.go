package health

import (
	"context"
	"sort"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates at least one component failed its check.
	Degraded Status = "degraded"
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

// Service coordinates health checks over named components.
type Service struct {
	components map[string]Pinger
}

// New creates a Service. Nil pingers are skipped, so optional backends can be passed as-is.
func New(components map[string]Pinger) *Service {
	c := make(map[string]Pinger, len(components))
	for name, p := range components {
		if p != nil {
			c[name] = p
		}
	}
	return &Service{components: c}
}

// Check pings every component.
func (s *Service) Check(ctx context.Context) Report {
	names := make([]string, 0, len(s.components))
	for name := range s.components {
		names = append(names, name)
	}
	sort.Strings(names)

	checks := make(map[string]CheckResult, len(names))
	status := Healthy
	for _, name := range names {
		if err := s.components[name].Ping(ctx); err != nil {
			checks[name] = CheckError
			status = Degraded
			continue
		}
		checks[name] = CheckOK
	}
	return Report{Status: status, Checks: checks}
}
