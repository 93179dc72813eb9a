// Package providertest provides in-memory store implementations for testing.
package providertest

import (
	"context"
	"fmt"
	"sync"

	"github.com/meridian-dr/meridian/internal/provider"
	"github.com/meridian-dr/meridian/pkg/types"
)

// Compile-time interface satisfaction checks.
var (
	_ provider.ReplicaStore = (*MemoryRegion)(nil)
	_ provider.StateStore   = (*MemoryState)(nil)
)

type memTable struct {
	count int
	ids   []string
	raw   []map[string]interface{}
}

// MemoryRegion is an in-memory ReplicaStore with fault-injection knobs.
type MemoryRegion struct {
	mu     sync.Mutex
	region types.Region
	tables map[types.TableName]*memTable

	// sentinels maps marker id to the number of GetSentinel polls remaining
	// before it becomes visible; negative means never.
	sentinels       map[string]int
	sentinelRecord  *int64
	deletedMarkers  []string

	// Fault injection.
	CountErr    map[types.TableName]error
	LookupErr   map[string]error
	PingErr     error
	SentinelErr error

	// replTarget receives sentinel markers written here, mimicking
	// cross-region replication. replPolls is the visibility delay in polls.
	replTarget *MemoryRegion
	replPolls  int
}

// NewMemoryRegion creates an empty in-memory region store.
func NewMemoryRegion(region types.Region) *MemoryRegion {
	return &MemoryRegion{
		region:    region,
		tables:    make(map[types.TableName]*memTable),
		sentinels: make(map[string]int),
		CountErr:  make(map[types.TableName]error),
		LookupErr: make(map[string]error),
	}
}

// LinkReplication makes sentinel markers written to m appear in target after
// the given number of GetSentinel polls. Negative polls means never.
func (m *MemoryRegion) LinkReplication(target *MemoryRegion, polls int) {
	m.replTarget = target
	m.replPolls = polls
}

// SeedTable sets a table's item count and the ids returned by sampling.
func (m *MemoryRegion) SeedTable(table types.TableName, count int, ids ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.ensureTable(table)
	t.count = count
	t.ids = ids
}

// SeedItems sets a table's raw items for ScanAll; count follows len(items).
func (m *MemoryRegion) SeedItems(table types.TableName, items []map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.ensureTable(table)
	t.raw = items
	t.count = len(items)
}

// SetSentinelRecord seeds the persistent sentinel row's last_updated value.
func (m *MemoryRegion) SetSentinelRecord(lastUpdated int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sentinelRecord = &lastUpdated
}

// DeletedMarkers returns the marker ids removed via DeleteSentinel.
func (m *MemoryRegion) DeletedMarkers() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deletedMarkers...)
}

func (m *MemoryRegion) ensureTable(table types.TableName) *memTable {
	t, ok := m.tables[table]
	if !ok {
		t = &memTable{}
		m.tables[table] = t
	}
	return t
}

func (m *MemoryRegion) Region() types.Region { return m.region }

func (m *MemoryRegion) CountItems(_ context.Context, table types.TableName) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.CountErr[table]; err != nil {
		return 0, fmt.Errorf("%w: %w", provider.ErrUnavailable, err)
	}
	t, ok := m.tables[table]
	if !ok {
		return 0, nil
	}
	return t.count, nil
}

func (m *MemoryRegion) SampleItems(_ context.Context, table types.TableName, limit int) ([]provider.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tables[table]
	if !ok {
		return nil, nil
	}
	ids := t.ids
	if len(ids) > limit {
		ids = ids[:limit]
	}
	items := make([]provider.Item, 0, len(ids))
	for _, id := range ids {
		items = append(items, provider.Item{ID: id})
	}
	return items, nil
}

func (m *MemoryRegion) HasItem(_ context.Context, table types.TableName, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.LookupErr[id]; err != nil {
		return false, err
	}
	t, ok := m.tables[table]
	if !ok {
		return false, nil
	}
	for _, existing := range t.ids {
		if existing == id {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemoryRegion) ScanAll(_ context.Context, table types.TableName) ([]map[string]interface{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.CountErr[table]; err != nil {
		return nil, err
	}
	t, ok := m.tables[table]
	if !ok {
		return nil, nil
	}
	return append([]map[string]interface{}(nil), t.raw...), nil
}

func (m *MemoryRegion) PutSentinel(_ context.Context, marker types.SentinelMarker) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SentinelErr != nil {
		return m.SentinelErr
	}
	m.sentinels[marker.ID] = 0
	if m.replTarget != nil {
		m.replTarget.mu.Lock()
		m.replTarget.sentinels[marker.ID] = m.replPolls
		m.replTarget.mu.Unlock()
	}
	return nil
}

func (m *MemoryRegion) GetSentinel(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	remaining, ok := m.sentinels[id]
	if !ok {
		return false, nil
	}
	if remaining < 0 {
		return false, nil
	}
	if remaining == 0 {
		return true, nil
	}
	m.sentinels[id] = remaining - 1
	return false, nil
}

func (m *MemoryRegion) GetSentinelRecord(_ context.Context) (int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sentinelRecord == nil {
		return 0, false, nil
	}
	return *m.sentinelRecord, true, nil
}

func (m *MemoryRegion) DeleteSentinel(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SentinelErr != nil {
		return m.SentinelErr
	}
	delete(m.sentinels, id)
	m.deletedMarkers = append(m.deletedMarkers, id)
	return nil
}

func (m *MemoryRegion) Ping(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.PingErr
}

// MemoryState is an in-memory StateStore.
type MemoryState struct {
	mu       sync.Mutex
	failover *types.FailoverRecord
	backups  []types.BackupRecord

	// Fault injection.
	PutErr  error
	ListErr error

	writes int
}

// NewMemoryState creates an empty in-memory state store.
func NewMemoryState() *MemoryState {
	return &MemoryState{}
}

// Writes returns how many failover records have been written.
func (m *MemoryState) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

func (m *MemoryState) PutFailoverRecord(_ context.Context, rec types.FailoverRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PutErr != nil {
		return m.PutErr
	}
	m.failover = &rec
	m.writes++
	return nil
}

func (m *MemoryState) GetFailoverRecord(_ context.Context) (*types.FailoverRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failover == nil {
		return nil, nil
	}
	rec := *m.failover
	return &rec, nil
}

func (m *MemoryState) PutBackupRecord(_ context.Context, rec types.BackupRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PutErr != nil {
		return m.PutErr
	}
	m.backups = append(m.backups, rec)
	return nil
}

func (m *MemoryState) ListBackupRecords(_ context.Context) ([]types.BackupRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return append([]types.BackupRecord(nil), m.backups...), nil
}
