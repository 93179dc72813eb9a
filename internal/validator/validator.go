// Package validator implements cross-region consistency validation: per-table
// count and sample comparison, active replication lag measurement, backup
// freshness, and the scoring that turns those signals into a status and
// operator recommendations.
package validator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/meridian-dr/meridian/internal/metrics"
	"github.com/meridian-dr/meridian/pkg/types"
)

// LagMeasurer measures replication delay; nil means no signal.
type LagMeasurer interface {
	MeasureLag(ctx context.Context) *int64
}

// FreshnessChecker summarizes backup metadata into a BackupStatus.
type FreshnessChecker interface {
	Freshness(ctx context.Context) types.BackupStatus
}

// Publisher receives the numeric results of a finished run. Publishing is
// best-effort and must not block the validation outcome.
type Publisher interface {
	PublishValidation(ctx context.Context, results types.ValidationResults)
}

// AlertFunc is called when a run finishes degraded.
type AlertFunc func(ctx context.Context, alert types.Alert)

// Validator runs one validation pass and aggregates the results. Sub-checks
// run concurrently; a single pass may still take seconds because the lag
// probe waits on real replication.
type Validator struct {
	sampler       *Sampler
	lag           LagMeasurer
	freshness     FreshnessChecker
	thresholds    types.Thresholds
	defaultTables []types.TableName
	publisher     Publisher
	alert         AlertFunc
	logger        *slog.Logger
	now           func() time.Time
}

// Option configures a Validator.
type Option func(*Validator)

// WithPublisher wires a metrics publisher into the run.
func WithPublisher(p Publisher) Option {
	return func(v *Validator) { v.publisher = p }
}

// WithAlertFunc wires a degraded-run alert callback.
func WithAlertFunc(f AlertFunc) Option {
	return func(v *Validator) { v.alert = f }
}

// WithLogger overrides the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(v *Validator) { v.logger = l }
}

// WithClock overrides the timestamp source for tests.
func WithClock(now func() time.Time) Option {
	return func(v *Validator) { v.now = now }
}

// New creates a Validator. lag and freshness may be nil, in which case the
// corresponding signal is simply absent from the results.
func New(sampler *Sampler, lag LagMeasurer, freshness FreshnessChecker, thresholds types.Thresholds, defaultTables []types.TableName, opts ...Option) *Validator {
	v := &Validator{
		sampler:       sampler,
		lag:           lag,
		freshness:     freshness,
		thresholds:    thresholds,
		defaultTables: defaultTables,
		logger:        slog.Default(),
		now:           time.Now,
	}
	for _, o := range opts {
		o(v)
	}
	return v
}

// Run executes one validation pass. It always returns a well-formed response;
// a table that cannot be validated is excluded from the aggregate rather than
// failing the run.
func (v *Validator) Run(ctx context.Context, req types.ValidationRequest) types.ValidationResponse {
	req.ApplyDefaults()

	// The stores are wired at init; a request naming a different pair would
	// silently get answers about the wrong regions, so it fails instead.
	if req.SourceRegion != "" && req.SourceRegion != v.sampler.primary.Region().String() {
		return v.failed(req, fmt.Sprintf(
			"Requested source region %s does not match configured %s.",
			req.SourceRegion, v.sampler.primary.Region()))
	}
	if req.TargetRegion != "" && req.TargetRegion != v.sampler.secondary.Region().String() {
		return v.failed(req, fmt.Sprintf(
			"Requested target region %s does not match configured %s.",
			req.TargetRegion, v.sampler.secondary.Region()))
	}

	tables := v.selectTables(req)

	v.logger.Info("validation started",
		"mode", req.ValidationMode, "action", req.Action, "tables", len(tables))

	var (
		mu          sync.Mutex
		tableResult = make([]*types.TableValidation, len(tables))
		lag         *int64
		backups     types.BackupStatus
	)

	g, gctx := errgroup.WithContext(ctx)
	for i, table := range tables {
		g.Go(func() error {
			res, err := v.sampler.SampleTable(gctx, table)
			if err != nil {
				metrics.TablesSkipped.Add(1)
				v.logger.Error("table validation failed", "table", table, "error", err)
				return nil
			}
			mu.Lock()
			tableResult[i] = &res
			mu.Unlock()
			return nil
		})
	}
	if v.lag != nil {
		g.Go(func() error {
			lag = v.lag.MeasureLag(gctx)
			return nil
		})
	}
	if v.freshness != nil {
		g.Go(func() error {
			backups = v.freshness.Freshness(gctx)
			return nil
		})
	}
	_ = g.Wait() // goroutines never return errors

	results := types.ValidationResults{
		ReplicationLagSeconds: lag,
		BackupStatus:          backups,
	}
	for _, tr := range tableResult {
		if tr == nil {
			continue
		}
		results.TablesValidated++
		results.RecordsChecked += tr.PrimaryCount
		results.MismatchesFound += tr.Mismatches()
		if req.Action == types.ActionSync && tr.PrimaryCount > tr.SecondaryCount {
			// Reported only; repairing divergence is an operator action.
			v.logger.Warn("sync requested but not performed",
				"table", tr.Table, "outstanding", tr.PrimaryCount-tr.SecondaryCount)
		}
	}
	results.ConsistencyScore = score(results.RecordsChecked, results.MismatchesFound)

	status := types.StatusHealthy
	if results.ConsistencyScore < v.thresholds.MinConsistencyScore {
		status = types.StatusDegraded
	}

	metrics.ValidationsTotal.Add(1)
	if status == types.StatusDegraded {
		metrics.ValidationsDegraded.Add(1)
	}

	if v.publisher != nil {
		v.publisher.PublishValidation(ctx, results)
	}
	if v.alert != nil && status == types.StatusDegraded {
		v.alert(ctx, types.Alert{
			Level:     types.AlertLevelWarning,
			Component: "validator",
			Message:   "validation degraded",
			Timestamp: v.now(),
		})
	}

	v.logger.Info("validation finished",
		"status", status,
		"score", results.ConsistencyScore,
		"tables", results.TablesValidated,
		"mismatches", results.MismatchesFound)

	return types.ValidationResponse{
		Status:          status,
		ValidationMode:  req.ValidationMode,
		Timestamp:       v.now().UTC(),
		Results:         results,
		Recommendations: Recommendations(v.thresholds, results),
	}
}

func (v *Validator) failed(req types.ValidationRequest, msg string) types.ValidationResponse {
	v.logger.Warn("validation rejected", "reason", msg)
	return types.ValidationResponse{
		Status:          types.StatusFailed,
		ValidationMode:  req.ValidationMode,
		Timestamp:       v.now().UTC(),
		Recommendations: []string{msg},
	}
}

// selectTables resolves the table set for a run. A named table wins
// regardless of mode; otherwise the configured default set is used.
func (v *Validator) selectTables(req types.ValidationRequest) []types.TableName {
	if req.TableName != "" {
		return []types.TableName{types.TableName(req.TableName)}
	}
	return v.defaultTables
}

// score is the consistency percentage: 100 when nothing was checked,
// otherwise the checked fraction that matched, floored at zero.
func score(records, mismatches int) float64 {
	if records == 0 {
		return 100.0
	}
	s := 100.0 * (1.0 - float64(mismatches)/float64(records))
	if s < 0 {
		return 0.0
	}
	return s
}
