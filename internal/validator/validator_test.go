package validator

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/meridian-dr/meridian/internal/provider/providertest"
	"github.com/meridian-dr/meridian/pkg/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var testThresholds = types.Thresholds{
	MinConsistencyScore: 95.0,
	MaxReplicationLag:   60,
	MaxBackupAgeHours:   24.0,
	MaxRetentionDays:    30.0,
}

func newTestValidator(t *testing.T, primary, secondary *providertest.MemoryRegion, tables []types.TableName, opts ...Option) *Validator {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	sampler := NewSampler(primary, secondary, logger)
	opts = append(opts, WithLogger(logger))
	return New(sampler, nil, nil, testThresholds, tables, opts...)
}

func TestRun_AllTablesConsistent(t *testing.T) {
	primary := providertest.NewMemoryRegion("us-east-1")
	secondary := providertest.NewMemoryRegion("us-west-2")
	primary.SeedTable("orders", 50, "a", "b", "c")
	secondary.SeedTable("orders", 50, "a", "b", "c")
	primary.SeedTable("users", 20, "x")
	secondary.SeedTable("users", 20, "x")

	v := newTestValidator(t, primary, secondary, []types.TableName{"orders", "users"})
	resp := v.Run(context.Background(), types.ValidationRequest{})

	assert.Equal(t, types.StatusHealthy, resp.Status)
	assert.Equal(t, types.ModeIncremental, resp.ValidationMode)
	assert.Equal(t, 2, resp.Results.TablesValidated)
	assert.Equal(t, 70, resp.Results.RecordsChecked)
	assert.Equal(t, 0, resp.Results.MismatchesFound)
	assert.InDelta(t, 100.0, resp.Results.ConsistencyScore, 0.001)
	require.Len(t, resp.Recommendations, 1)
	assert.Equal(t, "All validation checks passed. System is healthy.", resp.Recommendations[0])
}

func TestRun_CountDeltaPlusSampleMisses(t *testing.T) {
	primary := providertest.NewMemoryRegion("us-east-1")
	secondary := providertest.NewMemoryRegion("us-west-2")
	// 100 vs 90 items, and two sampled items missing from the secondary.
	primary.SeedTable("orders", 100, "a", "b", "c", "d")
	secondary.SeedTable("orders", 90, "a", "b")

	v := newTestValidator(t, primary, secondary, []types.TableName{"orders"})
	resp := v.Run(context.Background(), types.ValidationRequest{})

	assert.Equal(t, types.StatusDegraded, resp.Status)
	assert.Equal(t, 100, resp.Results.RecordsChecked)
	assert.Equal(t, 12, resp.Results.MismatchesFound)
	assert.InDelta(t, 88.0, resp.Results.ConsistencyScore, 0.001)
	require.NotEmpty(t, resp.Recommendations)
	assert.Equal(t,
		"Data consistency is below 95% (88.0%). Investigate mismatches immediately.",
		resp.Recommendations[0])
}

func TestRun_NoRecordsIsHealthy(t *testing.T) {
	primary := providertest.NewMemoryRegion("us-east-1")
	secondary := providertest.NewMemoryRegion("us-west-2")
	primary.SeedTable("empty", 0)
	secondary.SeedTable("empty", 0)

	v := newTestValidator(t, primary, secondary, []types.TableName{"empty"})
	resp := v.Run(context.Background(), types.ValidationRequest{})

	assert.Equal(t, types.StatusHealthy, resp.Status)
	assert.InDelta(t, 100.0, resp.Results.ConsistencyScore, 0.001)
}

func TestRun_FailedTableExcludedFromAggregate(t *testing.T) {
	primary := providertest.NewMemoryRegion("us-east-1")
	secondary := providertest.NewMemoryRegion("us-west-2")
	primary.SeedTable("good", 10, "a")
	secondary.SeedTable("good", 10, "a")
	primary.SeedTable("broken", 10)
	primary.CountErr["broken"] = context.DeadlineExceeded

	v := newTestValidator(t, primary, secondary, []types.TableName{"good", "broken"})
	resp := v.Run(context.Background(), types.ValidationRequest{})

	assert.Equal(t, 1, resp.Results.TablesValidated)
	assert.Equal(t, 10, resp.Results.RecordsChecked)
	assert.Equal(t, types.StatusHealthy, resp.Status)
}

func TestRun_SpecificModeValidatesOneTable(t *testing.T) {
	primary := providertest.NewMemoryRegion("us-east-1")
	secondary := providertest.NewMemoryRegion("us-west-2")
	primary.SeedTable("orders", 5, "a")
	secondary.SeedTable("orders", 5, "a")
	primary.SeedTable("users", 5, "b")
	secondary.SeedTable("users", 5, "b")

	v := newTestValidator(t, primary, secondary, []types.TableName{"orders", "users"})
	resp := v.Run(context.Background(), types.ValidationRequest{
		ValidationMode: types.ModeSpecific,
		TableName:      "orders",
	})

	assert.Equal(t, 1, resp.Results.TablesValidated)
	assert.Equal(t, 5, resp.Results.RecordsChecked)
}

func TestRun_NamedTableWinsRegardlessOfMode(t *testing.T) {
	primary := providertest.NewMemoryRegion("us-east-1")
	secondary := providertest.NewMemoryRegion("us-west-2")
	primary.SeedTable("orders", 5, "a")
	secondary.SeedTable("orders", 5, "a")
	primary.SeedTable("users", 5, "b")
	secondary.SeedTable("users", 5, "b")

	v := newTestValidator(t, primary, secondary, []types.TableName{"orders", "users"})
	// No mode given: the named table still narrows the run.
	resp := v.Run(context.Background(), types.ValidationRequest{TableName: "orders"})

	assert.Equal(t, 1, resp.Results.TablesValidated)
	assert.Equal(t, 5, resp.Results.RecordsChecked)
}

func TestRun_RecordsCheckedIsPrimaryCount(t *testing.T) {
	primary := providertest.NewMemoryRegion("us-east-1")
	secondary := providertest.NewMemoryRegion("us-west-2")
	// The secondary holds more items than the primary; the denominator is
	// still the primary count, so the delta alone zeroes the score.
	primary.SeedTable("orders", 10, "a")
	secondary.SeedTable("orders", 20, "a")

	v := newTestValidator(t, primary, secondary, []types.TableName{"orders"})
	resp := v.Run(context.Background(), types.ValidationRequest{})

	assert.Equal(t, 10, resp.Results.RecordsChecked)
	assert.Equal(t, 10, resp.Results.MismatchesFound)
	assert.Equal(t, 0.0, resp.Results.ConsistencyScore)
	assert.Equal(t, types.StatusDegraded, resp.Status)
}

func TestRun_MismatchedRegionRejected(t *testing.T) {
	primary := providertest.NewMemoryRegion("us-east-1")
	secondary := providertest.NewMemoryRegion("us-west-2")
	primary.SeedTable("orders", 5, "a")
	secondary.SeedTable("orders", 5, "a")

	v := newTestValidator(t, primary, secondary, []types.TableName{"orders"})
	resp := v.Run(context.Background(), types.ValidationRequest{SourceRegion: "eu-west-1"})

	assert.Equal(t, types.StatusFailed, resp.Status)
	assert.Equal(t, 0, resp.Results.TablesValidated)
	require.Len(t, resp.Recommendations, 1)
	assert.Equal(t,
		"Requested source region eu-west-1 does not match configured us-east-1.",
		resp.Recommendations[0])

	resp = v.Run(context.Background(), types.ValidationRequest{TargetRegion: "eu-west-1"})
	assert.Equal(t, types.StatusFailed, resp.Status)

	// Naming the configured pair explicitly still runs.
	resp = v.Run(context.Background(), types.ValidationRequest{
		SourceRegion: "us-east-1",
		TargetRegion: "us-west-2",
	})
	assert.Equal(t, types.StatusHealthy, resp.Status)
	assert.Equal(t, 1, resp.Results.TablesValidated)
}

type stubLag struct{ lag *int64 }

func (s stubLag) MeasureLag(context.Context) *int64 { return s.lag }

type stubFreshness struct{ status types.BackupStatus }

func (s stubFreshness) Freshness(context.Context) types.BackupStatus { return s.status }

func TestRun_LagAndBackupRecommendations(t *testing.T) {
	primary := providertest.NewMemoryRegion("us-east-1")
	secondary := providertest.NewMemoryRegion("us-west-2")
	primary.SeedTable("orders", 10, "a")
	secondary.SeedTable("orders", 10, "a")

	lag := int64(120)
	age := 48.5
	oldest := 45.0
	logger := slog.New(slog.DiscardHandler)
	sampler := NewSampler(primary, secondary, logger)
	v := New(sampler, stubLag{&lag}, stubFreshness{types.BackupStatus{
		LastBackupAgeHours: &age,
		BackupCount:        3,
		OldestBackupDays:   &oldest,
	}}, testThresholds, []types.TableName{"orders"}, WithLogger(logger))

	resp := v.Run(context.Background(), types.ValidationRequest{})

	require.NotNil(t, resp.Results.ReplicationLagSeconds)
	assert.Equal(t, int64(120), *resp.Results.ReplicationLagSeconds)
	assert.Equal(t, 3, resp.Results.BackupStatus.BackupCount)
	// Consistency is fine, so the remaining three rules fire in order.
	require.Len(t, resp.Recommendations, 3)
	assert.Equal(t,
		"Replication lag is 120 seconds. Consider investigating DynamoDB Global Tables health.",
		resp.Recommendations[0])
	assert.Equal(t,
		"Last backup is 48.5 hours old. Consider running a manual backup.",
		resp.Recommendations[1])
	assert.Equal(t,
		"Oldest backup is 45 days old. Consider reviewing retention policy.",
		resp.Recommendations[2])
	assert.Equal(t, types.StatusHealthy, resp.Status)
}

type capturePublisher struct{ got *types.ValidationResults }

func (c *capturePublisher) PublishValidation(_ context.Context, r types.ValidationResults) {
	c.got = &r
}

func TestRun_PublishesAndAlertsWhenDegraded(t *testing.T) {
	primary := providertest.NewMemoryRegion("us-east-1")
	secondary := providertest.NewMemoryRegion("us-west-2")
	primary.SeedTable("orders", 100, "a")
	secondary.SeedTable("orders", 50)

	pub := &capturePublisher{}
	var alerted *types.Alert
	v := newTestValidator(t, primary, secondary, []types.TableName{"orders"},
		WithPublisher(pub),
		WithAlertFunc(func(_ context.Context, a types.Alert) { alerted = &a }))

	resp := v.Run(context.Background(), types.ValidationRequest{})

	assert.Equal(t, types.StatusDegraded, resp.Status)
	require.NotNil(t, pub.got)
	assert.InDelta(t, resp.Results.ConsistencyScore, pub.got.ConsistencyScore, 0.001)
	require.NotNil(t, alerted)
	assert.Equal(t, types.AlertLevelWarning, alerted.Level)
	assert.Equal(t, "validator", alerted.Component)
}

func TestRun_ScoreFlooredAtZero(t *testing.T) {
	primary := providertest.NewMemoryRegion("us-east-1")
	secondary := providertest.NewMemoryRegion("us-west-2")
	// Delta alone exceeds the records checked, pushing the raw score negative.
	primary.SeedTable("orders", 2, "a", "b")
	secondary.SeedTable("orders", 8)

	v := newTestValidator(t, primary, secondary, []types.TableName{"orders"})
	resp := v.Run(context.Background(), types.ValidationRequest{})

	assert.Equal(t, 0.0, resp.Results.ConsistencyScore)
	assert.Equal(t, types.StatusDegraded, resp.Status)
}

func TestSampleTable_LookupErrorSkipped(t *testing.T) {
	primary := providertest.NewMemoryRegion("us-east-1")
	secondary := providertest.NewMemoryRegion("us-west-2")
	primary.SeedTable("orders", 3, "a", "b", "c")
	secondary.SeedTable("orders", 3, "a", "c")
	secondary.LookupErr["b"] = context.DeadlineExceeded

	s := NewSampler(primary, secondary, slog.New(slog.DiscardHandler))
	res, err := s.SampleTable(context.Background(), "orders")
	require.NoError(t, err)

	// The failed lookup is neither a match nor a mismatch.
	assert.Empty(t, res.SampleMismatches)
	assert.Equal(t, 0, res.Mismatches())
}

func TestSampleTable_MismatchMessageFormat(t *testing.T) {
	primary := providertest.NewMemoryRegion("us-east-1")
	secondary := providertest.NewMemoryRegion("us-west-2")
	primary.SeedTable("orders", 2, "a", "b")
	secondary.SeedTable("orders", 2, "a")

	s := NewSampler(primary, secondary, slog.New(slog.DiscardHandler))
	res, err := s.SampleTable(context.Background(), "orders")
	require.NoError(t, err)

	require.Len(t, res.SampleMismatches, 1)
	assert.Equal(t, "Item b not found in DR", res.SampleMismatches[0])
}

func newTestLagProber(primary, secondary *providertest.MemoryRegion, attempts int) *LagProber {
	p := NewLagProber(primary, secondary, time.Second, attempts, slog.New(slog.DiscardHandler))
	p.sleep = func(context.Context, time.Duration) error { return nil }
	return p
}

func TestMeasureLag_MarkerReplicates(t *testing.T) {
	primary := providertest.NewMemoryRegion("us-east-1")
	secondary := providertest.NewMemoryRegion("us-west-2")
	primary.LinkReplication(secondary, 3)

	p := newTestLagProber(primary, secondary, 10)
	lag := p.MeasureLag(context.Background())

	require.NotNil(t, lag)
	assert.GreaterOrEqual(t, *lag, int64(0))
	// The probe cleans its marker out of the primary afterward.
	assert.Len(t, primary.DeletedMarkers(), 1)
}

func TestMeasureLag_NoSignal(t *testing.T) {
	primary := providertest.NewMemoryRegion("us-east-1")
	secondary := providertest.NewMemoryRegion("us-west-2")
	primary.LinkReplication(secondary, -1)

	p := newTestLagProber(primary, secondary, 3)
	lag := p.MeasureLag(context.Background())

	assert.Nil(t, lag)
	assert.Len(t, primary.DeletedMarkers(), 1)
}

func TestMeasureLag_WriteFailure(t *testing.T) {
	primary := providertest.NewMemoryRegion("us-east-1")
	secondary := providertest.NewMemoryRegion("us-west-2")
	primary.SentinelErr = context.DeadlineExceeded

	p := newTestLagProber(primary, secondary, 3)
	assert.Nil(t, p.MeasureLag(context.Background()))
}

func TestMeasureLag_CancelledContext(t *testing.T) {
	primary := providertest.NewMemoryRegion("us-east-1")
	secondary := providertest.NewMemoryRegion("us-west-2")
	primary.LinkReplication(secondary, -1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := NewLagProber(primary, secondary, time.Second, 5, slog.New(slog.DiscardHandler))
	assert.Nil(t, p.MeasureLag(ctx))
}

func TestRecommendations_OrderAndAllClear(t *testing.T) {
	lag := int64(90)
	age := 30.0
	r := types.ValidationResults{
		ConsistencyScore:      80.0,
		ReplicationLagSeconds: &lag,
		BackupStatus:          types.BackupStatus{LastBackupAgeHours: &age},
	}
	recs := Recommendations(testThresholds, r)
	require.Len(t, recs, 3)
	assert.Contains(t, recs[0], "Data consistency is below")
	assert.Contains(t, recs[1], "Replication lag is 90 seconds")
	assert.Contains(t, recs[2], "Last backup is 30.0 hours old")

	clean := Recommendations(testThresholds, types.ValidationResults{ConsistencyScore: 100.0})
	assert.Equal(t, []string{"All validation checks passed. System is healthy."}, clean)
}
