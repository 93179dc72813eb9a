// Package provider defines the storage backend interfaces for Meridian.
package provider

import (
	"context"
	"errors"

	"github.com/meridian-dr/meridian/pkg/types"
)

// ErrUnavailable marks a hard backend failure: the store could not even be
// asked. Callers distinguish it from soft per-item lookup failures.
var ErrUnavailable = errors.New("backend unavailable")

// Item is one sampled row, reduced to its identifying attribute.
type Item struct {
	ID string
}

// ReplicaStore is one region's view of the replicated dataset. Implementations
// must be safe for concurrent use; all methods honor ctx cancellation.
type ReplicaStore interface {
	// Region names the region this store talks to.
	Region() types.Region

	// CountItems returns the (possibly approximate) item count of a table.
	// Failures wrap ErrUnavailable.
	CountItems(ctx context.Context, table types.TableName) (int, error)

	// SampleItems returns up to limit items from the table.
	SampleItems(ctx context.Context, table types.TableName, limit int) ([]Item, error)

	// HasItem reports whether the table contains an item with the given id.
	HasItem(ctx context.Context, table types.TableName, id string) (bool, error)

	// ScanAll returns every item of a table as generic attribute maps,
	// following pagination. Used by the backup extractor.
	ScanAll(ctx context.Context, table types.TableName) ([]map[string]interface{}, error)

	// PutSentinel writes a replication marker to the sentinel table.
	PutSentinel(ctx context.Context, marker types.SentinelMarker) error

	// GetSentinel reports whether the marker with the given id has arrived.
	GetSentinel(ctx context.Context, id string) (bool, error)

	// GetSentinelRecord reads the well-known persistent sentinel row and
	// returns its last_updated unix timestamp, or false if absent.
	GetSentinelRecord(ctx context.Context) (int64, bool, error)

	// DeleteSentinel removes a marker. Best-effort cleanup.
	DeleteSentinel(ctx context.Context, id string) error

	// Ping performs a minimal capability check against the region.
	Ping(ctx context.Context) error
}

// StateStore is the durable, externally-owned control-plane state: the
// single-slot failover record and the backup metadata rows.
type StateStore interface {
	// PutFailoverRecord overwrites the single failover status record.
	PutFailoverRecord(ctx context.Context, rec types.FailoverRecord) error

	// GetFailoverRecord returns the current failover record, or nil if no
	// transition has ever been committed.
	GetFailoverRecord(ctx context.Context) (*types.FailoverRecord, error)

	// PutBackupRecord appends one backup metadata row.
	PutBackupRecord(ctx context.Context, rec types.BackupRecord) error

	// ListBackupRecords returns all backup metadata rows.
	ListBackupRecords(ctx context.Context) ([]types.BackupRecord, error)
}
