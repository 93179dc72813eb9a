package dynamodb

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/meridian-dr/meridian/pkg/types"
)

// failoverRecordID is the fixed key of the single-slot failover record.
const failoverRecordID = "failover_status"

// StateStore implements provider.StateStore on the metadata table.
type StateStore struct {
	client        DDBAPI
	metadataTable string
	logger        *slog.Logger
}

// NewStateStore creates a StateStore using the given region's client.
func NewStateStore(ctx context.Context, cfg Config) (*StateStore, error) {
	client, err := NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &StateStore{
		client:        client,
		metadataTable: cfg.MetadataTable,
		logger:        slog.Default(),
	}, nil
}

// NewStateStoreWithClient wires an existing client; used by tests.
func NewStateStoreWithClient(client DDBAPI, metadataTable string) *StateStore {
	return &StateStore{client: client, metadataTable: metadataTable, logger: slog.Default()}
}

// PutFailoverRecord overwrites the single failover status record.
// Last writer wins; concurrent invocations are not serialized.
func (s *StateStore) PutFailoverRecord(ctx context.Context, rec types.FailoverRecord) error {
	_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.metadataTable),
		Item: map[string]ddbtypes.AttributeValue{
			"backup_id":     &ddbtypes.AttributeValueMemberS{Value: failoverRecordID},
			"timestamp":     &ddbtypes.AttributeValueMemberN{Value: strconv.FormatInt(rec.Timestamp.Unix(), 10)},
			"action":        &ddbtypes.AttributeValueMemberS{Value: string(rec.Action)},
			"source_region": &ddbtypes.AttributeValueMemberS{Value: rec.SourceRegion.String()},
			"target_region": &ddbtypes.AttributeValueMemberS{Value: rec.TargetRegion.String()},
			"status":        &ddbtypes.AttributeValueMemberS{Value: string(rec.Status)},
		},
	})
	if err != nil {
		return fmt.Errorf("writing failover record: %w", err)
	}
	return nil
}

// GetFailoverRecord returns the current failover record, or nil when no
// transition has ever been committed.
func (s *StateStore) GetFailoverRecord(ctx context.Context) (*types.FailoverRecord, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.metadataTable),
		Key: map[string]ddbtypes.AttributeValue{
			"backup_id": &ddbtypes.AttributeValueMemberS{Value: failoverRecordID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("reading failover record: %w", err)
	}
	if out.Item == nil {
		return nil, nil
	}

	rec := &types.FailoverRecord{
		Action:       types.FailoverAction(stringAttr(out.Item, "action")),
		SourceRegion: types.Region(stringAttr(out.Item, "source_region")),
		TargetRegion: types.Region(stringAttr(out.Item, "target_region")),
		Status:       types.RecordStatus(stringAttr(out.Item, "status")),
	}
	if n, ok := out.Item["timestamp"].(*ddbtypes.AttributeValueMemberN); ok {
		if ts, err := strconv.ParseInt(n.Value, 10, 64); err == nil {
			rec.Timestamp = time.Unix(ts, 0).UTC()
		}
	}
	return rec, nil
}

// PutBackupRecord appends one backup metadata row, keyed by backup_id.
func (s *StateStore) PutBackupRecord(ctx context.Context, rec types.BackupRecord) error {
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("marshaling backup record: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.metadataTable),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("writing backup record: %w", err)
	}
	return nil
}

// ListBackupRecords scans the metadata table for backup rows. The failover
// status row shares the table and is filtered out.
func (s *StateStore) ListBackupRecords(ctx context.Context) ([]types.BackupRecord, error) {
	var records []types.BackupRecord
	var startKey map[string]ddbtypes.AttributeValue

	for {
		out, err := s.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(s.metadataTable),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("scanning backup metadata: %w", err)
		}

		for _, raw := range out.Items {
			if stringAttr(raw, "backup_id") == failoverRecordID {
				continue
			}
			var rec types.BackupRecord
			if err := attributevalue.UnmarshalMap(raw, &rec); err != nil {
				s.logger.Warn("skipping undecodable backup record", "error", err)
				continue
			}
			records = append(records, rec)
		}

		if out.LastEvaluatedKey == nil {
			return records, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

func stringAttr(item map[string]ddbtypes.AttributeValue, name string) string {
	if s, ok := item[name].(*ddbtypes.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}
