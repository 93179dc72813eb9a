package validator

import (
	"fmt"

	"github.com/meridian-dr/meridian/pkg/types"
)

// Recommendations turns validation results into operator guidance. Rules are
// evaluated in a fixed order so the output is stable for a given input; when
// nothing fires a single all-clear line is returned.
func Recommendations(t types.Thresholds, r types.ValidationResults) []string {
	var out []string

	if r.ConsistencyScore < t.MinConsistencyScore {
		out = append(out, fmt.Sprintf(
			"Data consistency is below %.0f%% (%.1f%%). Investigate mismatches immediately.",
			t.MinConsistencyScore, r.ConsistencyScore))
	}

	if r.ReplicationLagSeconds != nil && *r.ReplicationLagSeconds > t.MaxReplicationLag {
		out = append(out, fmt.Sprintf(
			"Replication lag is %d seconds. Consider investigating DynamoDB Global Tables health.",
			*r.ReplicationLagSeconds))
	}

	if age := r.BackupStatus.LastBackupAgeHours; age != nil && *age > t.MaxBackupAgeHours {
		out = append(out, fmt.Sprintf(
			"Last backup is %.1f hours old. Consider running a manual backup.", *age))
	}

	if oldest := r.BackupStatus.OldestBackupDays; oldest != nil && *oldest > t.MaxRetentionDays {
		out = append(out, fmt.Sprintf(
			"Oldest backup is %.0f days old. Consider reviewing retention policy.", *oldest))
	}

	if len(out) == 0 {
		out = append(out, "All validation checks passed. System is healthy.")
	}
	return out
}
