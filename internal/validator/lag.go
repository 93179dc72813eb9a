package validator

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/meridian-dr/meridian/internal/metrics"
	"github.com/meridian-dr/meridian/internal/provider"
	"github.com/meridian-dr/meridian/pkg/types"
)

// markerSource tags sentinel markers so operators can tell probe writes from
// application writes in the sentinel table.
const markerSource = "validator"

// LagProber measures replication delay by writing a throwaway marker to the
// primary sentinel table and polling the secondary until it appears. The
// probe introduces real wall-clock delay bounded by interval × maxAttempts;
// callers must treat MeasureLag as slow and blocking.
type LagProber struct {
	primary   provider.ReplicaStore
	secondary provider.ReplicaStore
	interval  time.Duration
	attempts  int
	logger    *slog.Logger

	// sleep is swapped out by tests to avoid real delays.
	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

// NewLagProber creates a LagProber with the given poll bounds.
func NewLagProber(primary, secondary provider.ReplicaStore, interval time.Duration, attempts int, logger *slog.Logger) *LagProber {
	if logger == nil {
		logger = slog.Default()
	}
	return &LagProber{
		primary:   primary,
		secondary: secondary,
		interval:  interval,
		attempts:  attempts,
		logger:    logger,
		sleep:     sleepCtx,
		now:       time.Now,
	}
}

// MeasureLag returns the observed replication delay in whole seconds, or nil
// when the marker never became visible ("no signal"). It never returns an
// error: a failed write, a poll timeout, and a cancelled context all yield
// nil. The marker is deleted best-effort afterward.
func (p *LagProber) MeasureLag(ctx context.Context) *int64 {
	id := ulid.MustNew(ulid.Timestamp(p.now()), rand.New(rand.NewSource(p.now().UnixNano()))).String()
	marker := types.SentinelMarker{
		ID:        "lag-test-" + id,
		Timestamp: p.now().Unix(),
		Source:    markerSource,
	}

	if err := p.primary.PutSentinel(ctx, marker); err != nil {
		p.logger.Warn("lag probe could not write marker", "error", err)
		return nil
	}
	defer func() {
		// Cleanup failure does not affect the measurement.
		if err := p.primary.DeleteSentinel(context.WithoutCancel(ctx), marker.ID); err != nil {
			p.logger.Warn("lag probe could not delete marker", "marker", marker.ID, "error", err)
		}
	}()

	start := p.now()
	for i := 0; i < p.attempts; i++ {
		found, err := p.secondary.GetSentinel(ctx, marker.ID)
		if err != nil {
			p.logger.Warn("lag probe poll failed", "attempt", i+1, "error", err)
		} else if found {
			lag := int64(p.now().Sub(start) / time.Second)
			return &lag
		}
		if err := p.sleep(ctx, p.interval); err != nil {
			p.logger.Warn("lag probe cancelled", "error", err)
			return nil
		}
	}

	metrics.LagProbeTimeouts.Add(1)
	p.logger.Warn("lag probe marker never replicated", "marker", marker.ID,
		"attempts", p.attempts)
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
