// Package config handles loading and validation of meridian.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/meridian-dr/meridian/pkg/types"
)

// Defaults applied to unset fields at load time. Thresholds are
// configuration, not literals scattered through the scoring code.
const (
	DefaultMinConsistencyScore = 95.0
	DefaultMaxReplicationLag   = int64(60)
	DefaultMaxBackupAgeHours   = 24.0
	DefaultMaxRetentionDays    = 30.0

	DefaultLagPollInterval = time.Second
	DefaultLagMaxAttempts  = 10
	DefaultProbeTimeout    = 3 * time.Second

	DefaultSentinelTable = "dr-sentinel-table"
	DefaultMetadataTable = "dr-backup-metadata"
	DefaultBackupPrefix  = "backups"
	DefaultNamespace     = "DisasterRecovery"
	DefaultServerAddr    = ":8080"
)

// DefaultTables is the table set validated when a request names no table.
var DefaultTables = []string{"dr-application-table", "dr-sentinel-table"}

// Load reads and parses meridian.yaml from the given directory.
func Load(dir string) (*types.ProjectConfig, error) {
	path := filepath.Join(dir, "meridian.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg types.ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &cfg, nil
}

// Default returns a config with every field at its documented default.
func Default() *types.ProjectConfig {
	cfg := &types.ProjectConfig{
		Regions: types.RegionsConfig{
			Source: types.DefaultSourceRegion.String(),
			Target: types.DefaultTargetRegion.String(),
		},
	}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills unset fields with the documented defaults.
func ApplyDefaults(cfg *types.ProjectConfig) {
	if cfg.Regions.Source == "" {
		cfg.Regions.Source = types.DefaultSourceRegion.String()
	}
	if cfg.Regions.Target == "" {
		cfg.Regions.Target = types.DefaultTargetRegion.String()
	}
	if len(cfg.Tables.Default) == 0 {
		cfg.Tables.Default = append([]string(nil), DefaultTables...)
	}
	if cfg.Tables.Sentinel == "" {
		cfg.Tables.Sentinel = DefaultSentinelTable
	}
	if cfg.Tables.Metadata == "" {
		cfg.Tables.Metadata = DefaultMetadataTable
	}
	if cfg.Thresholds.MinConsistencyScore == 0 {
		cfg.Thresholds.MinConsistencyScore = DefaultMinConsistencyScore
	}
	if cfg.Thresholds.MaxReplicationLag == 0 {
		cfg.Thresholds.MaxReplicationLag = DefaultMaxReplicationLag
	}
	if cfg.Thresholds.MaxBackupAgeHours == 0 {
		cfg.Thresholds.MaxBackupAgeHours = DefaultMaxBackupAgeHours
	}
	if cfg.Thresholds.MaxRetentionDays == 0 {
		cfg.Thresholds.MaxRetentionDays = DefaultMaxRetentionDays
	}
	if cfg.LagProbe.PollInterval == "" {
		cfg.LagProbe.PollInterval = DefaultLagPollInterval.String()
	}
	if cfg.LagProbe.MaxAttempts == 0 {
		cfg.LagProbe.MaxAttempts = DefaultLagMaxAttempts
	}
	if cfg.Probe.Timeout == "" {
		cfg.Probe.Timeout = DefaultProbeTimeout.String()
	}
	if cfg.Backup.Prefix == "" {
		cfg.Backup.Prefix = DefaultBackupPrefix
	}
	if cfg.MetricsNamespace == "" {
		cfg.MetricsNamespace = DefaultNamespace
	}
	if cfg.ServerAddr == "" {
		cfg.ServerAddr = DefaultServerAddr
	}
}

func validate(cfg *types.ProjectConfig) error {
	if _, err := types.ParseRegion(cfg.Regions.Source); err != nil {
		return fmt.Errorf("regions.source: %w", err)
	}
	if _, err := types.ParseRegion(cfg.Regions.Target); err != nil {
		return fmt.Errorf("regions.target: %w", err)
	}
	if cfg.Regions.Source == cfg.Regions.Target {
		return fmt.Errorf("regions.source and regions.target must differ")
	}
	if _, err := time.ParseDuration(cfg.LagProbe.PollInterval); err != nil {
		return fmt.Errorf("lagProbe.pollInterval: %w", err)
	}
	if cfg.LagProbe.MaxAttempts < 1 {
		return fmt.Errorf("lagProbe.maxAttempts must be at least 1")
	}
	if _, err := time.ParseDuration(cfg.Probe.Timeout); err != nil {
		return fmt.Errorf("probe.timeout: %w", err)
	}
	if cfg.Thresholds.MinConsistencyScore < 0 || cfg.Thresholds.MinConsistencyScore > 100 {
		return fmt.Errorf("thresholds.minConsistencyScore must be in [0,100]")
	}
	for _, a := range cfg.Alerts {
		if err := validateAlert(a); err != nil {
			return err
		}
	}
	return nil
}

func validateAlert(a types.AlertConfig) error {
	switch a.Type {
	case types.AlertConsole:
		return nil
	case types.AlertWebhook:
		if a.URL == "" {
			return fmt.Errorf("alerts: webhook URL required")
		}
	case types.AlertFile:
		if a.Path == "" {
			return fmt.Errorf("alerts: file path required")
		}
	case types.AlertSNS:
		if a.TopicARN == "" {
			return fmt.Errorf("alerts: SNS topicArn required")
		}
	case types.AlertS3:
		if a.Bucket == "" {
			return fmt.Errorf("alerts: S3 bucket required")
		}
	default:
		return fmt.Errorf("alerts: unknown type %q", a.Type)
	}
	return nil
}

// PollInterval returns the parsed lag-probe poll interval.
func PollInterval(cfg *types.ProjectConfig) time.Duration {
	d, err := time.ParseDuration(cfg.LagProbe.PollInterval)
	if err != nil || d <= 0 {
		return DefaultLagPollInterval
	}
	return d
}

// ProbeTimeout returns the parsed health-probe timeout.
func ProbeTimeout(cfg *types.ProjectConfig) time.Duration {
	d, err := time.ParseDuration(cfg.Probe.Timeout)
	if err != nil || d <= 0 {
		return DefaultProbeTimeout
	}
	return d
}
