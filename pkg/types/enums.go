// Package types defines the public domain types for the Meridian DR control plane.
package types

// ValidationMode selects how much of the dataset a validation run covers.
type ValidationMode string

// ValidationMode values enumerate the supported validation scopes.
const (
	ModeFull        ValidationMode = "full"
	ModeIncremental ValidationMode = "incremental"
	ModeSpecific    ValidationMode = "specific"
)

// DefaultValidationMode is used when a request omits validation_mode.
const DefaultValidationMode = ModeIncremental

// ActionType selects what a validation run does with detected mismatches.
type ActionType string

// ActionType values enumerate the supported validation actions.
const (
	ActionValidate ActionType = "validate"
	ActionSync     ActionType = "sync"
)

// DefaultActionType is used when a request omits action.
const DefaultActionType = ActionValidate

// ValidationStatus is the aggregated health verdict of a validation run.
type ValidationStatus string

// ValidationStatus values. Scoring produces healthy or degraded; StatusFailed
// marks a request rejected before any table was checked.
const (
	StatusHealthy  ValidationStatus = "healthy"
	StatusDegraded ValidationStatus = "degraded"
	StatusFailed   ValidationStatus = "failed"
)

// FailoverAction is the requested region transition.
type FailoverAction string

// FailoverAction values enumerate the two supported transitions.
const (
	ActionFailover FailoverAction = "failover"
	ActionFailback FailoverAction = "failback"
)

// ValidFailoverAction reports whether s names a supported transition.
func ValidFailoverAction(s string) bool {
	return s == string(ActionFailover) || s == string(ActionFailback)
}

// RecordStatus is the persisted outcome of a failover invocation.
type RecordStatus string

// RecordStatus values for the durable failover record.
const (
	RecordCompleted RecordStatus = "completed"
	RecordRejected  RecordStatus = "rejected"
)

// BackupStatusCompleted marks a finished backup in the metadata table.
const BackupStatusCompleted = "completed"

// AlertType defines the alert sink type.
type AlertType string

// AlertType values enumerate the supported alert sink backends.
const (
	AlertConsole AlertType = "console"
	AlertWebhook AlertType = "webhook"
	AlertFile    AlertType = "file"
	AlertSNS     AlertType = "sns"
	AlertS3      AlertType = "s3"
)

// AlertLevel classifies alert severity.
type AlertLevel string

const (
	AlertLevelError   AlertLevel = "error"
	AlertLevelWarning AlertLevel = "warning"
	AlertLevelInfo    AlertLevel = "info"
)
