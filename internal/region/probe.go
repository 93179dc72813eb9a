// Package region implements per-region health probing.
package region

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"github.com/meridian-dr/meridian/internal/provider"
	"github.com/meridian-dr/meridian/pkg/types"
)

// StoreFactory builds a ReplicaStore for an arbitrary region. Factories are
// called at most once per region; the resulting store is cached.
type StoreFactory func(ctx context.Context, region types.Region) (provider.ReplicaStore, error)

// Probe answers "is this region reachable for core storage operations right
// now?". It never returns an error: any failure, timeout, or open breaker is
// reported as unhealthy. Safe for concurrent use across regions.
type Probe struct {
	factory StoreFactory
	timeout time.Duration
	logger  *slog.Logger

	mu       sync.Mutex
	stores   map[types.Region]provider.ReplicaStore
	breakers map[types.Region]*gobreaker.CircuitBreaker
}

// NewProbe creates a Probe with the given store factory and per-call timeout.
func NewProbe(factory StoreFactory, timeout time.Duration, logger *slog.Logger) *Probe {
	if logger == nil {
		logger = slog.Default()
	}
	return &Probe{
		factory:  factory,
		timeout:  timeout,
		logger:   logger,
		stores:   make(map[types.Region]provider.ReplicaStore),
		breakers: make(map[types.Region]*gobreaker.CircuitBreaker),
	}
}

// Register seeds the store cache; probes for this region skip the factory.
func (p *Probe) Register(store provider.ReplicaStore) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stores[store.Region()] = store
}

// Healthy reports whether the region's storage endpoint answers a minimal
// capability check within the probe timeout. Fails closed on any error.
func (p *Probe) Healthy(ctx context.Context, region types.Region) bool {
	store, err := p.store(ctx, region)
	if err != nil {
		p.logger.Warn("probe could not reach region", "region", region, "error", err)
		return false
	}

	_, err = p.breaker(region).Execute(func() (interface{}, error) {
		pingCtx, cancel := context.WithTimeout(ctx, p.timeout)
		defer cancel()
		return nil, store.Ping(pingCtx)
	})
	if err != nil {
		p.logger.Warn("region probe failed", "region", region, "error", err)
		return false
	}
	return true
}

func (p *Probe) store(ctx context.Context, region types.Region) (provider.ReplicaStore, error) {
	p.mu.Lock()
	if s, ok := p.stores[region]; ok {
		p.mu.Unlock()
		return s, nil
	}
	p.mu.Unlock()

	if p.factory == nil {
		return nil, fmt.Errorf("no store registered for region %s", region)
	}
	s, err := p.factory(ctx, region)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if cached, ok := p.stores[region]; ok {
		return cached, nil
	}
	p.stores[region] = s
	return s, nil
}

func (p *Probe) breaker(region types.Region) *gobreaker.CircuitBreaker {
	p.mu.Lock()
	defer p.mu.Unlock()
	cb, ok := p.breakers[region]
	if !ok {
		cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "probe-" + region.String(),
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		})
		p.breakers[region] = cb
	}
	return cb
}
