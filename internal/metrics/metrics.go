// Package metrics exposes runtime counters via expvar.
package metrics

import "expvar"

var (
	ValidationsTotal     = expvar.NewInt("validations_total")
	ValidationsDegraded  = expvar.NewInt("validations_degraded")
	TablesSkipped        = expvar.NewInt("tables_skipped")
	FailoversCommitted   = expvar.NewInt("failovers_committed")
	FailoversRejected    = expvar.NewInt("failovers_rejected")
	BackupsTotal         = expvar.NewInt("backups_total")
	BackupsFailed        = expvar.NewInt("backups_failed")
	MetricPublishErrors  = expvar.NewInt("metric_publish_errors")
	LagProbeTimeouts     = expvar.NewInt("lag_probe_timeouts")
	AlertsDispatched     = expvar.NewInt("alerts_dispatched")
	AlertsFailed         = expvar.NewInt("alerts_failed")
)
