package registry

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/codeready-toolchain/pathwright/pkg/breaker"
	"github.com/codeready-toolchain/pathwright/pkg/metrics"
)

// Monitor runs a background health-check loop against every registered
// non-embedded service, feeding success/failure into its circuit breaker.
type Monitor struct {
	registry *Registry
	breakers *breaker.Registry
	client   *http.Client
	metrics  *metrics.Collector

	checkInterval time.Duration
	pingTimeout   time.Duration

	cancel context.CancelFunc
	done   chan struct{}
	logger *slog.Logger
}

// NewMonitor creates a health monitor for the given registry and breaker
// registry. mcollector may be nil in tests that don't care about metrics.
func NewMonitor(reg *Registry, breakers *breaker.Registry, mcollector *metrics.Collector, checkInterval time.Duration, pingTimeout time.Duration) *Monitor {
	return &Monitor{
		registry:      reg,
		breakers:      breakers,
		client:        &http.Client{Timeout: pingTimeout},
		metrics:       mcollector,
		checkInterval: checkInterval,
		pingTimeout:   pingTimeout,
		logger:        slog.Default(),
	}
}

// Start launches the background health-check loop. Calling Start on an
// already-running monitor is a no-op.
func (m *Monitor) Start(ctx context.Context) {
	if m.cancel != nil {
		return
	}
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})
	go m.loop(ctx)
	m.logger.Info("health monitor started", "interval", m.checkInterval)
}

// Stop gracefully shuts down the monitor. After Stop returns, Start may be
// called again.
func (m *Monitor) Stop() {
	if m.cancel != nil {
		m.cancel()
	}
	if m.done != nil {
		<-m.done
	}
	m.cancel = nil
	m.done = nil
	m.logger.Info("health monitor stopped")
}

func (m *Monitor) loop(ctx context.Context) {
	defer close(m.done)

	m.checkAll(ctx)

	ticker := time.NewTicker(m.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			func() {
				defer func() {
					if r := recover(); r != nil {
						m.logger.Error("health check loop panicked", "recover", r)
						// Back off before the next round so a repeating
						// failure cannot spin the loop.
						select {
						case <-ctx.Done():
						case <-time.After(5 * time.Second):
						}
					}
				}()
				m.checkAll(ctx)
			}()
		}
	}
}

func (m *Monitor) checkAll(ctx context.Context) {
	services := m.registry.Probeable()
	var wg sync.WaitGroup
	for _, svc := range services {
		wg.Add(1)
		go func(svc *service) {
			defer wg.Done()
			m.checkOne(ctx, svc)
		}(svc)
	}
	wg.Wait()
}

func (m *Monitor) checkOne(ctx context.Context, svc *service) {
	cb := m.breakers.Get(svc.name)
	url := fmt.Sprintf("%s/health", svc.url)

	checkCtx, cancel := context.WithTimeout(ctx, m.pingTimeout)
	defer cancel()

	start := time.Now()
	req, err := http.NewRequestWithContext(checkCtx, http.MethodGet, url, nil)
	if err != nil {
		svc.recordUnhealthy(err.Error())
		m.recordResult(svc.name, "unhealthy", cb)
		return
	}

	resp, err := m.client.Do(req)
	elapsedMs := float64(time.Since(start).Microseconds()) / 1000.0

	if err != nil {
		svc.recordUnhealthy(truncateErr(err))
		m.recordResult(svc.name, "unhealthy", cb)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		svc.recordSuccess(elapsedMs)
		m.recordResult(svc.name, "healthy", cb)
		return
	}

	svc.recordDegraded(fmt.Sprintf("HTTP %d", resp.StatusCode), elapsedMs)
	m.recordResult(svc.name, "degraded", cb)
}

// recordResult feeds a probe outcome into the circuit breaker and emits the
// matching metrics, recording a trip only on the closed/half_open → open
// transition rather than on every failure.
func (m *Monitor) recordResult(service, result string, cb *breaker.Breaker) {
	wasOpen := cb.State() == breaker.StateOpen

	if result == "healthy" {
		cb.RecordSuccess()
	} else {
		cb.RecordFailure()
	}

	if m.metrics == nil {
		return
	}
	m.metrics.RecordHealthCheck(service, result)
	if !wasOpen && cb.State() == breaker.StateOpen {
		m.metrics.RecordCircuitTrip(service)
	}
}

func truncateErr(err error) string {
	s := err.Error()
	if len(s) > 100 {
		return s[:100]
	}
	return s
}

// IsHealthy reports whether a service is usable for routing: embedded
// services are always healthy; others are healthy iff their breaker isn't
// open.
func (m *Monitor) IsHealthy(name string) bool {
	status, ok := m.registry.Get(name)
	if !ok {
		return false
	}
	if status.IsEmbedded {
		return true
	}
	return m.breakers.Get(name).State() != breaker.StateOpen
}

// HealthMap returns a map of service name → is-healthy, for the decision
// engine's candidate filter.
func (m *Monitor) HealthMap() map[string]bool {
	statuses := m.registry.AllStatus()
	out := make(map[string]bool, len(statuses))
	for name := range statuses {
		out[name] = m.IsHealthy(name)
	}
	return out
}
