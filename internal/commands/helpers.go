// Package commands implements the CLI subcommands for the meridian binary.
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/meridian-dr/meridian/internal/alert"
	"github.com/meridian-dr/meridian/internal/backup"
	"github.com/meridian-dr/meridian/internal/config"
	"github.com/meridian-dr/meridian/internal/failover"
	"github.com/meridian-dr/meridian/internal/provider"
	ddbprov "github.com/meridian-dr/meridian/internal/provider/dynamodb"
	"github.com/meridian-dr/meridian/internal/region"
	"github.com/meridian-dr/meridian/internal/server"
	"github.com/meridian-dr/meridian/internal/validator"
	"github.com/meridian-dr/meridian/pkg/types"
)

// stores bundles the per-region and control-state storage handles.
type stores struct {
	source provider.ReplicaStore
	target provider.ReplicaStore
	state  provider.StateStore
}

func buildStores(ctx context.Context, cfg *types.ProjectConfig) (*stores, error) {
	source, err := ddbprov.NewReplicaStore(ctx, ddbprov.Config{
		Region:        cfg.Regions.Source,
		SentinelTable: cfg.Tables.Sentinel,
		MetadataTable: cfg.Tables.Metadata,
		Endpoint:      cfg.Endpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("creating %s store: %w", cfg.Regions.Source, err)
	}
	target, err := ddbprov.NewReplicaStore(ctx, ddbprov.Config{
		Region:        cfg.Regions.Target,
		SentinelTable: cfg.Tables.Sentinel,
		MetadataTable: cfg.Tables.Metadata,
		Endpoint:      cfg.Endpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("creating %s store: %w", cfg.Regions.Target, err)
	}
	state, err := ddbprov.NewStateStore(ctx, ddbprov.Config{
		Region:        cfg.Regions.Source,
		MetadataTable: cfg.Tables.Metadata,
		Endpoint:      cfg.Endpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("creating state store: %w", err)
	}
	return &stores{source: source, target: target, state: state}, nil
}

// buildServices wires every domain component from the loaded config.
func buildServices(ctx context.Context, cfg *types.ProjectConfig, logger *slog.Logger) (server.Services, error) {
	st, err := buildStores(ctx, cfg)
	if err != nil {
		return server.Services{}, err
	}

	alertFn := func(context.Context, types.Alert) {}
	if len(cfg.Alerts) > 0 {
		dispatcher, err := alert.NewDispatcher(cfg.Alerts, logger)
		if err != nil {
			return server.Services{}, fmt.Errorf("creating alert dispatcher: %w", err)
		}
		alertFn = dispatcher.AlertFunc()
	}

	var tables []types.TableName
	for _, t := range cfg.Tables.Default {
		tables = append(tables, types.TableName(t))
	}

	prober := validator.NewLagProber(st.source, st.target,
		config.PollInterval(cfg), cfg.LagProbe.MaxAttempts, logger)
	freshness := backup.NewFreshness(st.state, logger)
	sampler := validator.NewSampler(st.source, st.target, logger)
	val := validator.New(sampler, prober, freshness, cfg.Thresholds, tables,
		validator.WithAlertFunc(validator.AlertFunc(alertFn)),
		validator.WithLogger(logger))

	probe := region.NewProbe(storeFactory(cfg), config.ProbeTimeout(cfg), logger)
	probe.Register(st.source)
	probe.Register(st.target)

	orch := failover.New(st.state, probe, types.Region(cfg.Regions.Source),
		failover.WithAlertFunc(failover.AlertFunc(alertFn)),
		failover.WithLogger(logger))

	services := server.Services{
		Validator:    val,
		Orchestrator: orch,
		Checkers:     make(map[types.Region]*region.Checker),
		SourceRegion: types.Region(cfg.Regions.Source),
	}

	regionStores := map[types.Region]provider.ReplicaStore{
		types.Region(cfg.Regions.Source): st.source,
		types.Region(cfg.Regions.Target): st.target,
	}
	for r, store := range regionStores {
		var blob *region.S3Probe
		if cfg.Backup.Bucket != "" {
			awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(r.String()))
			if err != nil {
				return server.Services{}, fmt.Errorf("loading AWS config for %s: %w", r, err)
			}
			client := s3.NewFromConfig(awsCfg)
			blob = region.NewS3Probe(client, cfg.Backup.Bucket, config.ProbeTimeout(cfg))
			if r == types.Region(cfg.Regions.Source) {
				services.Backup = backup.NewManager(st.source, st.state, client,
					cfg.Backup.Bucket, cfg.Backup.Prefix, backup.WithLogger(logger))
			}
		}
		services.Checkers[r] = region.NewChecker(store, blob, logger)
	}

	return services, nil
}

func storeFactory(cfg *types.ProjectConfig) region.StoreFactory {
	return func(ctx context.Context, r types.Region) (provider.ReplicaStore, error) {
		return ddbprov.NewReplicaStore(ctx, ddbprov.Config{
			Region:        r.String(),
			SentinelTable: cfg.Tables.Sentinel,
			MetadataTable: cfg.Tables.Metadata,
			Endpoint:      cfg.Endpoint,
		})
	}
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}

// printJSON writes v to stdout, indented.
func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
