package types

// RegionsConfig names the primary and DR regions of the deployment.
type RegionsConfig struct {
	Source string `yaml:"source" json:"source"`
	Target string `yaml:"target" json:"target"`
}

// TablesConfig names the tables the control plane operates on.
type TablesConfig struct {
	// Default is the table set validated when a request names no table.
	Default []string `yaml:"default" json:"default"`
	// Sentinel is the table the lag prober writes throwaway markers to.
	Sentinel string `yaml:"sentinel" json:"sentinel"`
	// Metadata holds backup records and the failover status record.
	Metadata string `yaml:"metadata" json:"metadata"`
}

// Thresholds are the tunable limits behind status and recommendations.
// Zero values are replaced by documented defaults at config load.
type Thresholds struct {
	MinConsistencyScore float64 `yaml:"minConsistencyScore" json:"minConsistencyScore"` // percent, default 95
	MaxReplicationLag   int64   `yaml:"maxReplicationLagSeconds" json:"maxReplicationLagSeconds"` // default 60
	MaxBackupAgeHours   float64 `yaml:"maxBackupAgeHours" json:"maxBackupAgeHours"`     // default 24
	MaxRetentionDays    float64 `yaml:"maxRetentionDays" json:"maxRetentionDays"`       // default 30
}

// LagProbeConfig bounds the sentinel replication prober.
type LagProbeConfig struct {
	PollInterval string `yaml:"pollInterval,omitempty" json:"pollInterval,omitempty"` // default "1s"
	MaxAttempts  int    `yaml:"maxAttempts,omitempty" json:"maxAttempts,omitempty"`   // default 10
}

// ProbeConfig bounds the per-region health probe.
type ProbeConfig struct {
	Timeout string `yaml:"timeout,omitempty" json:"timeout,omitempty"` // default "3s"
}

// BackupConfig configures the backup archiver.
type BackupConfig struct {
	Bucket string `yaml:"bucket" json:"bucket"`
	Prefix string `yaml:"prefix,omitempty" json:"prefix,omitempty"` // default "backups"
}

// AlertConfig selects and configures one alert sink.
type AlertConfig struct {
	Type     AlertType `yaml:"type" json:"type"`
	URL      string    `yaml:"url,omitempty" json:"url,omitempty"`           // webhook
	Path     string    `yaml:"path,omitempty" json:"path,omitempty"`         // file
	TopicARN string    `yaml:"topicArn,omitempty" json:"topicArn,omitempty"` // sns
	Bucket   string    `yaml:"bucket,omitempty" json:"bucket,omitempty"`     // s3
	Prefix   string    `yaml:"prefix,omitempty" json:"prefix,omitempty"`     // s3
}

// ProjectConfig is the parsed meridian.yaml.
type ProjectConfig struct {
	Regions    RegionsConfig  `yaml:"regions" json:"regions"`
	Tables     TablesConfig   `yaml:"tables" json:"tables"`
	Thresholds Thresholds     `yaml:"thresholds,omitempty" json:"thresholds,omitempty"`
	LagProbe   LagProbeConfig `yaml:"lagProbe,omitempty" json:"lagProbe,omitempty"`
	Probe      ProbeConfig    `yaml:"probe,omitempty" json:"probe,omitempty"`
	Backup     BackupConfig   `yaml:"backup,omitempty" json:"backup,omitempty"`
	Alerts     []AlertConfig  `yaml:"alerts,omitempty" json:"alerts,omitempty"`
	// Endpoint overrides the DynamoDB endpoint for local development.
	Endpoint string `yaml:"endpoint,omitempty" json:"endpoint,omitempty"`
	// MetricsNamespace is the CloudWatch namespace for published signals.
	MetricsNamespace string `yaml:"metricsNamespace,omitempty" json:"metricsNamespace,omitempty"`
	// ServerAddr is the listen address for `meridian serve`.
	ServerAddr string `yaml:"serverAddr,omitempty" json:"serverAddr,omitempty"`
}
