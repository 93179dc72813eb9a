// Package lambda wires shared dependencies for the Lambda entrypoints.
package lambda

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/meridian-dr/meridian/internal/alert"
	"github.com/meridian-dr/meridian/internal/backup"
	"github.com/meridian-dr/meridian/internal/config"
	"github.com/meridian-dr/meridian/internal/failover"
	"github.com/meridian-dr/meridian/internal/provider"
	"github.com/meridian-dr/meridian/internal/provider/dynamodb"
	"github.com/meridian-dr/meridian/internal/region"
	"github.com/meridian-dr/meridian/internal/report"
	"github.com/meridian-dr/meridian/internal/validator"
	"github.com/meridian-dr/meridian/pkg/types"
)

// Deps holds shared dependencies for Lambda handlers.
type Deps struct {
	Source       provider.ReplicaStore
	Target       provider.ReplicaStore
	State        provider.StateStore
	Validator    *validator.Validator
	Orchestrator *failover.Orchestrator
	Backup       *backup.Manager
	Checkers     map[types.Region]*region.Checker
	SourceRegion types.Region
	TargetRegion types.Region
	AlertFn      func(context.Context, types.Alert)
	Logger       *slog.Logger
}

// Init creates shared dependencies from environment variables.
// Reads: REGION_SOURCE, REGION_TARGET, SENTINEL_TABLE, METADATA_TABLE,
// BACKUP_BUCKET, SNS_TOPIC_ARN, METRICS_NAMESPACE, DEFAULT_TABLES.
func Init(ctx context.Context) (*Deps, error) {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	source, err := types.ParseRegion(envOrDefault("REGION_SOURCE", types.DefaultSourceRegion.String()))
	if err != nil {
		return nil, fmt.Errorf("REGION_SOURCE: %w", err)
	}
	target, err := types.ParseRegion(envOrDefault("REGION_TARGET", types.DefaultTargetRegion.String()))
	if err != nil {
		return nil, fmt.Errorf("REGION_TARGET: %w", err)
	}
	if source == target {
		return nil, fmt.Errorf("REGION_SOURCE and REGION_TARGET must differ")
	}

	sentinelTable := envOrDefault("SENTINEL_TABLE", config.DefaultSentinelTable)
	metadataTable := envOrDefault("METADATA_TABLE", config.DefaultMetadataTable)
	bucket := os.Getenv("BACKUP_BUCKET")
	namespace := envOrDefault("METRICS_NAMESPACE", config.DefaultNamespace)

	sourceStore, err := dynamodb.NewReplicaStore(ctx, dynamodb.Config{
		Region:        source.String(),
		SentinelTable: sentinelTable,
		MetadataTable: metadataTable,
	})
	if err != nil {
		return nil, fmt.Errorf("creating %s store: %w", source, err)
	}
	targetStore, err := dynamodb.NewReplicaStore(ctx, dynamodb.Config{
		Region:        target.String(),
		SentinelTable: sentinelTable,
		MetadataTable: metadataTable,
	})
	if err != nil {
		return nil, fmt.Errorf("creating %s store: %w", target, err)
	}
	state, err := dynamodb.NewStateStore(ctx, dynamodb.Config{
		Region:        source.String(),
		MetadataTable: metadataTable,
	})
	if err != nil {
		return nil, fmt.Errorf("creating state store: %w", err)
	}

	alertFn := buildAlertFn(logger)

	reporter, err := report.NewReporter(ctx, source.String(), namespace, logger)
	if err != nil {
		return nil, fmt.Errorf("creating reporter: %w", err)
	}

	thresholds := types.Thresholds{
		MinConsistencyScore: config.DefaultMinConsistencyScore,
		MaxReplicationLag:   config.DefaultMaxReplicationLag,
		MaxBackupAgeHours:   config.DefaultMaxBackupAgeHours,
		MaxRetentionDays:    config.DefaultMaxRetentionDays,
	}

	var tables []types.TableName
	for _, t := range strings.Split(envOrDefault("DEFAULT_TABLES", strings.Join(config.DefaultTables, ",")), ",") {
		if t = strings.TrimSpace(t); t != "" {
			tables = append(tables, types.TableName(t))
		}
	}

	prober := validator.NewLagProber(sourceStore, targetStore,
		config.DefaultLagPollInterval, config.DefaultLagMaxAttempts, logger)
	freshness := backup.NewFreshness(state, logger)
	sampler := validator.NewSampler(sourceStore, targetStore, logger)
	val := validator.New(sampler, prober, freshness, thresholds, tables,
		validator.WithPublisher(reporter),
		validator.WithAlertFunc(validator.AlertFunc(alertFn)),
		validator.WithLogger(logger))

	probe := region.NewProbe(storeFactory(sentinelTable, metadataTable),
		config.DefaultProbeTimeout, logger)
	probe.Register(sourceStore)
	probe.Register(targetStore)

	orch := failover.New(state, probe, source,
		failover.WithAlertFunc(failover.AlertFunc(alertFn)),
		failover.WithLogger(logger))

	var mgr *backup.Manager
	checkers := make(map[types.Region]*region.Checker)
	if bucket != "" {
		for _, r := range []struct {
			region types.Region
			store  provider.ReplicaStore
		}{{source, sourceStore}, {target, targetStore}} {
			awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(r.region.String()))
			if err != nil {
				return nil, fmt.Errorf("loading AWS config for %s: %w", r.region, err)
			}
			s3Client := s3.NewFromConfig(awsCfg)
			blob := region.NewS3Probe(s3Client, bucket, config.DefaultProbeTimeout)
			checkers[r.region] = region.NewChecker(r.store, blob, logger,
				region.WithHealthPublisher(reporter))
			if r.region == source {
				mgr = backup.NewManager(sourceStore, state, s3Client, bucket,
					config.DefaultBackupPrefix, backup.WithLogger(logger))
			}
		}
	} else {
		checkers[source] = region.NewChecker(sourceStore, nil, logger,
			region.WithHealthPublisher(reporter))
		checkers[target] = region.NewChecker(targetStore, nil, logger,
			region.WithHealthPublisher(reporter))
	}

	return &Deps{
		Source:       sourceStore,
		Target:       targetStore,
		State:        state,
		Validator:    val,
		Orchestrator: orch,
		Backup:       mgr,
		Checkers:     checkers,
		SourceRegion: source,
		TargetRegion: target,
		AlertFn:      alertFn,
		Logger:       logger,
	}, nil
}

// CheckerFor returns the health checker for a region, defaulting to the
// source region when the request names none.
func (d *Deps) CheckerFor(r string) (*region.Checker, error) {
	if r == "" {
		return d.Checkers[d.SourceRegion], nil
	}
	parsed, err := types.ParseRegion(r)
	if err != nil {
		return nil, err
	}
	c, ok := d.Checkers[parsed]
	if !ok {
		return nil, fmt.Errorf("region %s is not managed", parsed)
	}
	return c, nil
}

func buildAlertFn(logger *slog.Logger) func(context.Context, types.Alert) {
	if topicARN := os.Getenv("SNS_TOPIC_ARN"); topicARN != "" {
		snsSink, err := alert.NewSNSSink(topicARN)
		if err != nil {
			logger.Warn("falling back to log alerts", "error", err)
		} else {
			dispatcher, _ := alert.NewDispatcher(nil, logger)
			dispatcher.AddSink(snsSink)
			return dispatcher.AlertFunc()
		}
	}
	return func(_ context.Context, a types.Alert) {
		logger.Info("alert", "level", a.Level, "component", a.Component, "message", a.Message)
	}
}

func storeFactory(sentinelTable, metadataTable string) region.StoreFactory {
	return func(ctx context.Context, r types.Region) (provider.ReplicaStore, error) {
		return dynamodb.NewReplicaStore(ctx, dynamodb.Config{
			Region:        r.String(),
			SentinelTable: sentinelTable,
			MetadataTable: metadataTable,
		})
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
