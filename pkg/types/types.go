package types

import (
	"fmt"
	"strings"
	"time"
)

// Default regions used when a request omits them.
const (
	DefaultSourceRegion = Region("us-east-1")
	DefaultTargetRegion = Region("us-west-2")
)

// Region names a deployment location, e.g. "us-east-1". Construct via
// ParseRegion to get format validation; the zero value is invalid.
type Region string

// ParseRegion validates a provider region name. The check is intentionally
// loose: non-empty, contains a separator, long enough to be plausible.
func ParseRegion(s string) (Region, error) {
	if len(s) < 5 || !strings.Contains(s, "-") {
		return "", fmt.Errorf("invalid region %q", s)
	}
	return Region(s), nil
}

func (r Region) String() string { return string(r) }

// TableName names a logical dataset replicated across regions.
type TableName string

func (t TableName) String() string { return string(t) }

// MaxSampleMismatches bounds the per-table mismatch detail list.
const MaxSampleMismatches = 10

// TableValidation is the per-table result of one consistency sample.
// It is consumed by the aggregator and never persisted.
type TableValidation struct {
	Table            TableName
	PrimaryCount     int
	SecondaryCount   int
	SampleMismatches []string
}

// Mismatches is the per-table mismatch count: the count delta plus every
// anecdotal sample miss. The two sources can overlap, so the total may
// exceed the number of genuinely divergent items.
func (v TableValidation) Mismatches() int {
	delta := v.PrimaryCount - v.SecondaryCount
	if delta < 0 {
		delta = -delta
	}
	return delta + len(v.SampleMismatches)
}

// BackupStatus summarizes backup freshness from the metadata table.
// Pointer fields are nil when no backups exist.
type BackupStatus struct {
	LastBackupAgeHours *float64 `json:"last_backup_age_hours,omitempty"`
	BackupCount        int      `json:"backup_count"`
	OldestBackupDays   *float64 `json:"oldest_backup_days,omitempty"`
}

// ValidationRequest is the public request shape for a validation run.
// All fields are optional. Empty regions mean the configured pair; naming a
// region the deployment does not serve fails the request.
type ValidationRequest struct {
	ValidationMode ValidationMode `json:"validation_mode,omitempty"`
	TableName      string         `json:"table_name,omitempty"`
	SourceRegion   string         `json:"source_region,omitempty"`
	TargetRegion   string         `json:"target_region,omitempty"`
	Action         ActionType     `json:"action,omitempty"`
}

// ApplyDefaults fills unset fields with the documented defaults. Regions are
// left empty; the validator resolves them against its configured stores.
func (r *ValidationRequest) ApplyDefaults() {
	if r.ValidationMode == "" {
		r.ValidationMode = DefaultValidationMode
	}
	if r.Action == "" {
		r.Action = DefaultActionType
	}
}

// ValidationResults carries the numeric signals of one validation run.
type ValidationResults struct {
	TablesValidated       int          `json:"tables_validated"`
	RecordsChecked        int          `json:"records_checked"`
	MismatchesFound       int          `json:"mismatches_found"`
	ReplicationLagSeconds *int64       `json:"replication_lag_seconds,omitempty"`
	BackupStatus          BackupStatus `json:"backup_status"`
	ConsistencyScore      float64      `json:"consistency_score"`
}

// ValidationResponse is the public response shape for a validation run.
// Built once after all sub-results resolve; never mutated afterward.
type ValidationResponse struct {
	Status          ValidationStatus  `json:"status"`
	ValidationMode  ValidationMode    `json:"validation_mode"`
	Timestamp       time.Time         `json:"timestamp"`
	Results         ValidationResults `json:"results"`
	Recommendations []string          `json:"recommendations"`
}

// FailoverRequest asks the orchestrator to switch traffic to target_region.
// Force skips the target health gate.
type FailoverRequest struct {
	Action       string `json:"action"`
	TargetRegion string `json:"target_region"`
	Force        bool   `json:"force,omitempty"`
}

// FailoverResponse is the public response shape for a failover invocation.
type FailoverResponse struct {
	Status    string `json:"status"` // "success" or "failed"
	Message   string `json:"message"`
	Action    string `json:"action"`
	Timestamp string `json:"timestamp"` // RFC3339
}

// FailoverRecord is the single durable row recording the latest committed
// region transition. Stored under a fixed id; each write overwrites the
// previous record. This is current state, not an audit trail.
type FailoverRecord struct {
	Action       FailoverAction `json:"action"`
	SourceRegion Region         `json:"source_region"`
	TargetRegion Region         `json:"target_region"`
	Status       RecordStatus   `json:"status"`
	Timestamp    time.Time      `json:"timestamp"`
}

// BackupRequest asks the backup manager to extract one table to blob storage.
type BackupRequest struct {
	TableName  string `json:"table_name"`
	BackupType string `json:"backup_type,omitempty"` // "full" or "incremental"
}

// BackupResponse reports a completed backup run.
type BackupResponse struct {
	Status        string `json:"status"`
	BackupID      string `json:"backup_id"`
	Timestamp     string `json:"timestamp"` // RFC3339
	ItemsBackedUp int    `json:"items_backed_up"`
}

// BackupRecord is one row in the backup metadata table.
type BackupRecord struct {
	BackupID   string `json:"backup_id"`
	TableName  string `json:"table_name"`
	Timestamp  int64  `json:"timestamp"` // unix seconds
	ItemsCount int    `json:"items_count"`
	Status     string `json:"status"`
}

// SentinelMarker is the throwaway record written to measure replication lag.
type SentinelMarker struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"timestamp"` // unix seconds
	Source    string `json:"source"`
}

// HealthRequest asks for a point-in-time health check of one region.
type HealthRequest struct {
	Region string `json:"region,omitempty"`
}

// ServiceHealth reports per-service reachability of one region.
type ServiceHealth struct {
	DynamoDB       bool   `json:"dynamodb"`
	S3             bool   `json:"s3"`
	ReplicationLag *int64 `json:"replication_lag,omitempty"`
}

// HealthResponse is the public response shape for a region health check.
type HealthResponse struct {
	Status    string        `json:"status"` // "healthy" or "unhealthy"
	Region    string        `json:"region"`
	Timestamp string        `json:"timestamp"` // RFC3339
	Services  ServiceHealth `json:"services"`
}

// Alert is an operator notification dispatched to configured sinks.
type Alert struct {
	Level     AlertLevel `json:"level"`
	Region    string     `json:"region,omitempty"`
	Component string     `json:"component"`
	Message   string     `json:"message"`
	Timestamp time.Time  `json:"timestamp"`
}
