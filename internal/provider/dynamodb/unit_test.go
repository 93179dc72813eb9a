package dynamodb

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-dr/meridian/internal/provider"
	"github.com/meridian-dr/meridian/pkg/types"
)

// mockDDB is a minimal mock of the DDBAPI interface for unit testing.
type mockDDB struct {
	describeTableFn func(ctx context.Context, input *dynamodb.DescribeTableInput, opts ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	scanFn          func(ctx context.Context, input *dynamodb.ScanInput, opts ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	getItemFn       func(ctx context.Context, input *dynamodb.GetItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	putItemFn       func(ctx context.Context, input *dynamodb.PutItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	deleteItemFn    func(ctx context.Context, input *dynamodb.DeleteItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	listTablesFn    func(ctx context.Context, input *dynamodb.ListTablesInput, opts ...func(*dynamodb.Options)) (*dynamodb.ListTablesOutput, error)
}

func (m *mockDDB) DescribeTable(ctx context.Context, input *dynamodb.DescribeTableInput, opts ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	if m.describeTableFn != nil {
		return m.describeTableFn(ctx, input, opts...)
	}
	return &dynamodb.DescribeTableOutput{}, nil
}

func (m *mockDDB) Scan(ctx context.Context, input *dynamodb.ScanInput, opts ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	if m.scanFn != nil {
		return m.scanFn(ctx, input, opts...)
	}
	return &dynamodb.ScanOutput{}, nil
}

func (m *mockDDB) GetItem(ctx context.Context, input *dynamodb.GetItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if m.getItemFn != nil {
		return m.getItemFn(ctx, input, opts...)
	}
	return &dynamodb.GetItemOutput{}, nil
}

func (m *mockDDB) PutItem(ctx context.Context, input *dynamodb.PutItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	if m.putItemFn != nil {
		return m.putItemFn(ctx, input, opts...)
	}
	return &dynamodb.PutItemOutput{}, nil
}

func (m *mockDDB) DeleteItem(ctx context.Context, input *dynamodb.DeleteItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	if m.deleteItemFn != nil {
		return m.deleteItemFn(ctx, input, opts...)
	}
	return &dynamodb.DeleteItemOutput{}, nil
}

func (m *mockDDB) ListTables(ctx context.Context, input *dynamodb.ListTablesInput, opts ...func(*dynamodb.Options)) (*dynamodb.ListTablesOutput, error) {
	if m.listTablesFn != nil {
		return m.listTablesFn(ctx, input, opts...)
	}
	return &dynamodb.ListTablesOutput{}, nil
}

func testReplica(client DDBAPI) *ReplicaStore {
	return NewReplicaStoreWithClient(client, "us-east-1", "dr-sentinel-table")
}

func TestCountItems(t *testing.T) {
	mock := &mockDDB{
		describeTableFn: func(_ context.Context, input *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
			assert.Equal(t, "dr-application-table", *input.TableName)
			return &dynamodb.DescribeTableOutput{
				Table: &ddbtypes.TableDescription{ItemCount: aws.Int64(123)},
			}, nil
		},
	}

	count, err := testReplica(mock).CountItems(context.Background(), "dr-application-table")
	require.NoError(t, err)
	assert.Equal(t, 123, count)
}

func TestCountItems_UnavailableOnError(t *testing.T) {
	mock := &mockDDB{
		describeTableFn: func(_ context.Context, _ *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
			return nil, errors.New("connection refused")
		},
	}

	_, err := testReplica(mock).CountItems(context.Background(), "dr-application-table")
	require.Error(t, err)
	assert.ErrorIs(t, err, provider.ErrUnavailable)
}

func TestSampleItems_SkipsItemsWithoutID(t *testing.T) {
	mock := &mockDDB{
		scanFn: func(_ context.Context, input *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
			assert.EqualValues(t, 10, *input.Limit)
			return &dynamodb.ScanOutput{
				Items: []map[string]ddbtypes.AttributeValue{
					{"id": &ddbtypes.AttributeValueMemberS{Value: "a"}},
					{"other": &ddbtypes.AttributeValueMemberS{Value: "x"}},
					{"id": &ddbtypes.AttributeValueMemberN{Value: "7"}},
					{"id": &ddbtypes.AttributeValueMemberS{Value: "b"}},
				},
			}, nil
		},
	}

	items, err := testReplica(mock).SampleItems(context.Background(), "dr-application-table", 10)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "a", items[0].ID)
	assert.Equal(t, "b", items[1].ID)
}

func TestScanAll_FollowsPagination(t *testing.T) {
	page := 0
	mock := &mockDDB{
		scanFn: func(_ context.Context, input *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
			page++
			if page == 1 {
				assert.Nil(t, input.ExclusiveStartKey)
				return &dynamodb.ScanOutput{
					Items: []map[string]ddbtypes.AttributeValue{
						{"id": &ddbtypes.AttributeValueMemberS{Value: "a"}},
					},
					LastEvaluatedKey: map[string]ddbtypes.AttributeValue{
						"id": &ddbtypes.AttributeValueMemberS{Value: "a"},
					},
				}, nil
			}
			assert.NotNil(t, input.ExclusiveStartKey)
			return &dynamodb.ScanOutput{
				Items: []map[string]ddbtypes.AttributeValue{
					{"id": &ddbtypes.AttributeValueMemberS{Value: "b"}},
				},
			}, nil
		},
	}

	items, err := testReplica(mock).ScanAll(context.Background(), "dr-application-table")
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, 2, page)
}

func TestSentinelRoundTrip(t *testing.T) {
	var stored map[string]ddbtypes.AttributeValue
	mock := &mockDDB{
		putItemFn: func(_ context.Context, input *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
			assert.Equal(t, "dr-sentinel-table", *input.TableName)
			stored = input.Item
			return &dynamodb.PutItemOutput{}, nil
		},
		getItemFn: func(_ context.Context, _ *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
			return &dynamodb.GetItemOutput{Item: stored}, nil
		},
	}

	store := testReplica(mock)
	marker := types.SentinelMarker{ID: "lag-test-1", Timestamp: 1700000000, Source: "validator"}
	require.NoError(t, store.PutSentinel(context.Background(), marker))

	found, err := store.GetSentinel(context.Background(), "lag-test-1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "validator", stored["source"].(*ddbtypes.AttributeValueMemberS).Value)
}

func TestGetSentinelRecord(t *testing.T) {
	mock := &mockDDB{
		getItemFn: func(_ context.Context, input *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
			assert.Equal(t, "sentinel", input.Key["id"].(*ddbtypes.AttributeValueMemberS).Value)
			return &dynamodb.GetItemOutput{
				Item: map[string]ddbtypes.AttributeValue{
					"id":           &ddbtypes.AttributeValueMemberS{Value: "sentinel"},
					"last_updated": &ddbtypes.AttributeValueMemberN{Value: "1700000000"},
				},
			}, nil
		},
	}

	ts, ok, err := testReplica(mock).GetSentinelRecord(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.EqualValues(t, 1700000000, ts)
}

func TestFailoverRecordRoundTrip(t *testing.T) {
	var stored map[string]ddbtypes.AttributeValue
	mock := &mockDDB{
		putItemFn: func(_ context.Context, input *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
			assert.Equal(t, "dr-backup-metadata", *input.TableName)
			stored = input.Item
			return &dynamodb.PutItemOutput{}, nil
		},
		getItemFn: func(_ context.Context, input *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
			assert.Equal(t, failoverRecordID, input.Key["backup_id"].(*ddbtypes.AttributeValueMemberS).Value)
			return &dynamodb.GetItemOutput{Item: stored}, nil
		},
	}

	store := NewStateStoreWithClient(mock, "dr-backup-metadata")
	in := types.FailoverRecord{
		Action:       types.ActionFailover,
		SourceRegion: "us-east-1",
		TargetRegion: "us-west-2",
		Status:       types.RecordCompleted,
	}
	require.NoError(t, store.PutFailoverRecord(context.Background(), in))

	// The slot is keyed by the fixed record id.
	assert.Equal(t, failoverRecordID, stored["backup_id"].(*ddbtypes.AttributeValueMemberS).Value)

	out, err := store.GetFailoverRecord(context.Background())
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, types.ActionFailover, out.Action)
	assert.Equal(t, types.Region("us-west-2"), out.TargetRegion)
	assert.Equal(t, types.RecordCompleted, out.Status)
}

func TestListBackupRecords_FiltersFailoverSlot(t *testing.T) {
	mock := &mockDDB{
		scanFn: func(_ context.Context, _ *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
			return &dynamodb.ScanOutput{
				Items: []map[string]ddbtypes.AttributeValue{
					{
						"backup_id":   &ddbtypes.AttributeValueMemberS{Value: "t-full-1700000000"},
						"table_name":  &ddbtypes.AttributeValueMemberS{Value: "t"},
						"timestamp":   &ddbtypes.AttributeValueMemberN{Value: strconv.Itoa(1700000000)},
						"items_count": &ddbtypes.AttributeValueMemberN{Value: "10"},
						"status":      &ddbtypes.AttributeValueMemberS{Value: "completed"},
					},
					{
						"backup_id": &ddbtypes.AttributeValueMemberS{Value: failoverRecordID},
						"status":    &ddbtypes.AttributeValueMemberS{Value: "completed"},
					},
				},
			}, nil
		},
	}

	records, err := NewStateStoreWithClient(mock, "dr-backup-metadata").ListBackupRecords(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "t-full-1700000000", records[0].BackupID)
	assert.Equal(t, 10, records[0].ItemsCount)
}
