package health

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"docbrains-backend/internal/shared/server/respond"
	"docbrains-backend/internal/shared/telemetry"
)

const defaultTimeout = 2 * time.Second

// Check pings one dependency.
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

// Report is the health payload.
type Report struct {
	OK     bool              `json:"ok"`
	Checks map[string]string `json:"checks"`
}

// Service encapsulates health-related checks.
type Service struct {
	Checks  []Check
	Timeout time.Duration
}

// NewService constructs a new health service.
func NewService(checks ...Check) *Service {
	return &Service{Checks: checks, Timeout: defaultTimeout}
}

// Status runs every check concurrently and reports "ok" or the failure per dependency.
func (s *Service) Status(ctx context.Context) Report {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	report := Report{OK: true, Checks: make(map[string]string, len(s.Checks))}
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, check := range s.Checks {
		wg.Add(1)
		go func(check Check) {
			defer wg.Done()
			result := "ok"
			if err := check.Ping(ctx); err != nil {
				result = err.Error()
			}
			mu.Lock()
			defer mu.Unlock()
			report.Checks[check.Name] = result
			if result != "ok" {
				report.OK = false
			}
		}(check)
	}
	wg.Wait()
	return report
}

// Handler serves the report, with 503 when any dependency fails.
func (s *Service) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		report := s.Status(c.Request.Context())
		status := http.StatusOK
		if !report.OK {
			status = http.StatusServiceUnavailable
			telemetry.Warn("health.degraded", map[string]any{"checks": failing(report)})
		}
		respond.JSON(c, status, report)
	}
}

func failing(r Report) []string {
	var names []string
	for name, result := range r.Checks {
		if result != "ok" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
