package backup

import (
	"context"
	"log/slog"
	"time"

	"github.com/meridian-dr/meridian/internal/provider"
	"github.com/meridian-dr/meridian/pkg/types"
)

// Freshness summarizes the backup metadata table into a BackupStatus.
type Freshness struct {
	state  provider.StateStore
	logger *slog.Logger
	now    func() time.Time
}

// NewFreshness creates a Freshness reader over the given state store.
func NewFreshness(state provider.StateStore, logger *slog.Logger) *Freshness {
	if logger == nil {
		logger = slog.Default()
	}
	return &Freshness{state: state, logger: logger, now: time.Now}
}

// Freshness returns backup age and count. A metadata read failure yields the
// zero status (no backups known) rather than an error; the validator treats
// absent signals as absent, not broken.
func (f *Freshness) Freshness(ctx context.Context) types.BackupStatus {
	recs, err := f.state.ListBackupRecords(ctx)
	if err != nil {
		f.logger.Warn("could not list backup records", "error", err)
		return types.BackupStatus{}
	}
	if len(recs) == 0 {
		return types.BackupStatus{}
	}

	newest, oldest := recs[0].Timestamp, recs[0].Timestamp
	for _, r := range recs[1:] {
		if r.Timestamp > newest {
			newest = r.Timestamp
		}
		if r.Timestamp < oldest {
			oldest = r.Timestamp
		}
	}

	now := f.now().Unix()
	ageHours := float64(now-newest) / 3600.0
	oldestDays := float64(now-oldest) / 86400.0
	return types.BackupStatus{
		LastBackupAgeHours: &ageHours,
		BackupCount:        len(recs),
		OldestBackupDays:   &oldestDays,
	}
}
