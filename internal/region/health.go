package region

import (
	"context"
	"log/slog"
	"time"

	"github.com/meridian-dr/meridian/internal/provider"
	"github.com/meridian-dr/meridian/pkg/types"
)

// HealthPublisher receives the per-service signals of a finished check.
type HealthPublisher interface {
	PublishHealth(ctx context.Context, health types.ServiceHealth)
}

// Checker runs the full health check for one region: storage reachability,
// blob-storage reachability, and the passive replication age read from the
// persistent sentinel row. Unlike the active lag probe it completes in one
// round trip per service.
type Checker struct {
	store     provider.ReplicaStore
	blob      *S3Probe
	publisher HealthPublisher
	logger    *slog.Logger
	now       func() time.Time
}

// CheckerOption configures a Checker.
type CheckerOption func(*Checker)

// WithHealthPublisher wires a metrics publisher into the check.
func WithHealthPublisher(p HealthPublisher) CheckerOption {
	return func(c *Checker) { c.publisher = p }
}

// WithCheckerClock overrides the timestamp source for tests.
func WithCheckerClock(now func() time.Time) CheckerOption {
	return func(c *Checker) { c.now = now }
}

// NewChecker creates a health Checker for the region the store points at.
// blob may be nil when no bucket is configured; that service then reports
// unhealthy.
func NewChecker(store provider.ReplicaStore, blob *S3Probe, logger *slog.Logger, opts ...CheckerOption) *Checker {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Checker{
		store:  store,
		blob:   blob,
		logger: logger,
		now:    time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Check runs one health check. The region is healthy only when both storage
// services answer; replication age is informational and never affects the
// verdict.
func (c *Checker) Check(ctx context.Context) types.HealthResponse {
	svc := types.ServiceHealth{}

	if err := c.store.Ping(ctx); err != nil {
		c.logger.Warn("dynamodb unreachable", "region", c.store.Region(), "error", err)
	} else {
		svc.DynamoDB = true
	}

	if c.blob != nil {
		svc.S3 = c.blob.Healthy(ctx)
	}

	if svc.DynamoDB {
		if lastUpdated, ok, err := c.store.GetSentinelRecord(ctx); err != nil {
			c.logger.Warn("could not read sentinel record", "region", c.store.Region(), "error", err)
		} else if ok {
			lag := c.now().Unix() - lastUpdated
			if lag < 0 {
				lag = 0
			}
			svc.ReplicationLag = &lag
		}
	}

	status := "unhealthy"
	if svc.DynamoDB && svc.S3 {
		status = "healthy"
	}

	if c.publisher != nil {
		c.publisher.PublishHealth(ctx, svc)
	}

	c.logger.Info("health check finished",
		"region", c.store.Region(), "status", status,
		"dynamodb", svc.DynamoDB, "s3", svc.S3)

	return types.HealthResponse{
		Status:    status,
		Region:    c.store.Region().String(),
		Timestamp: c.now().UTC().Format(time.RFC3339),
		Services:  svc,
	}
}
