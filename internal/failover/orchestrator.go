// Package failover implements the region transition orchestrator: request
// validation, the target health gate, and the durable status record.
package failover

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/meridian-dr/meridian/internal/metrics"
	"github.com/meridian-dr/meridian/internal/provider"
	"github.com/meridian-dr/meridian/pkg/types"
)

// HealthChecker gates uncoerced transitions on target region health.
type HealthChecker interface {
	Healthy(ctx context.Context, region types.Region) bool
}

// AlertFunc is called after a committed transition.
type AlertFunc func(ctx context.Context, alert types.Alert)

// Orchestrator executes failover and failback requests. It holds no state of
// its own; the latest committed transition lives in the state store.
type Orchestrator struct {
	state  provider.StateStore
	probe  HealthChecker
	source types.Region
	alert  AlertFunc
	logger *slog.Logger
	now    func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithAlertFunc wires a committed-transition alert callback.
func WithAlertFunc(f AlertFunc) Option {
	return func(o *Orchestrator) { o.alert = f }
}

// WithLogger overrides the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithClock overrides the timestamp source for tests.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// New creates an Orchestrator. source is the configured primary region,
// recorded as the origin of every transition.
func New(state provider.StateStore, probe HealthChecker, source types.Region, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		state:  state,
		probe:  probe,
		source: source,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Execute runs one transition request. A rejected request leaves no durable
// trace: the stored record only ever describes committed transitions.
func (o *Orchestrator) Execute(ctx context.Context, req types.FailoverRequest) types.FailoverResponse {
	if !types.ValidFailoverAction(req.Action) {
		return o.failed(req.Action, fmt.Sprintf("Invalid action: %s", req.Action))
	}

	target, err := types.ParseRegion(req.TargetRegion)
	if err != nil {
		return o.failed(req.Action, fmt.Sprintf("Invalid target region: %s", req.TargetRegion))
	}

	if !req.Force && !o.probe.Healthy(ctx, target) {
		metrics.FailoversRejected.Add(1)
		o.logger.Warn("transition rejected, target unhealthy",
			"action", req.Action, "target", target)
		return o.failed(req.Action, fmt.Sprintf("Target region %s is not healthy", target))
	}

	ts := o.now().UTC()
	rec := types.FailoverRecord{
		Action:       types.FailoverAction(req.Action),
		SourceRegion: o.source,
		TargetRegion: target,
		Status:       types.RecordCompleted,
		Timestamp:    ts,
	}
	if err := o.state.PutFailoverRecord(ctx, rec); err != nil {
		o.logger.Error("failed to record transition", "action", req.Action, "error", err)
		return o.failed(req.Action, "Failed to record failover status")
	}

	metrics.FailoversCommitted.Add(1)
	o.logger.Info("transition committed",
		"action", req.Action, "source", o.source, "target", target, "force", req.Force)

	msg := fmt.Sprintf("Failover to region %s completed", target)
	if rec.Action == types.ActionFailback {
		msg = fmt.Sprintf("Failback to region %s completed", target)
	}
	if o.alert != nil {
		o.alert(ctx, types.Alert{
			Level:     types.AlertLevelWarning,
			Region:    target.String(),
			Component: "failover",
			Message:   msg,
			Timestamp: ts,
		})
	}

	return types.FailoverResponse{
		Status:    "success",
		Message:   msg,
		Action:    req.Action,
		Timestamp: ts.Format(time.RFC3339),
	}
}

// Status returns the latest committed transition, or nil when none exists.
func (o *Orchestrator) Status(ctx context.Context) (*types.FailoverRecord, error) {
	return o.state.GetFailoverRecord(ctx)
}

func (o *Orchestrator) failed(action, msg string) types.FailoverResponse {
	return types.FailoverResponse{
		Status:    "failed",
		Message:   msg,
		Action:    action,
		Timestamp: o.now().UTC().Format(time.RFC3339),
	}
}
