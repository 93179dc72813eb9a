package dynamodb

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/meridian-dr/meridian/pkg/types"
)

// sentinelRecordID is the well-known row the replication writer keeps fresh;
// its last_updated age gives a passive lag estimate without a probe write.
const sentinelRecordID = "sentinel"

// PutSentinel writes a replication marker to the sentinel table.
func (s *ReplicaStore) PutSentinel(ctx context.Context, marker types.SentinelMarker) error {
	_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.sentinelTable),
		Item: map[string]ddbtypes.AttributeValue{
			"id":        &ddbtypes.AttributeValueMemberS{Value: marker.ID},
			"timestamp": &ddbtypes.AttributeValueMemberN{Value: strconv.FormatInt(marker.Timestamp, 10)},
			"source":    &ddbtypes.AttributeValueMemberS{Value: marker.Source},
		},
	})
	if err != nil {
		return fmt.Errorf("writing sentinel marker to %s: %w", s.region, err)
	}
	return nil
}

// GetSentinel reports whether the marker with the given id has replicated.
func (s *ReplicaStore) GetSentinel(ctx context.Context, id string) (bool, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.sentinelTable),
		Key: map[string]ddbtypes.AttributeValue{
			"id": &ddbtypes.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return false, err
	}
	return out.Item != nil, nil
}

// GetSentinelRecord reads the persistent sentinel row's last_updated unix
// timestamp. Returns false when the row or attribute is absent.
func (s *ReplicaStore) GetSentinelRecord(ctx context.Context) (int64, bool, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.sentinelTable),
		Key: map[string]ddbtypes.AttributeValue{
			"id": &ddbtypes.AttributeValueMemberS{Value: sentinelRecordID},
		},
	})
	if err != nil {
		return 0, false, err
	}
	if out.Item == nil {
		return 0, false, nil
	}
	attr, ok := out.Item["last_updated"].(*ddbtypes.AttributeValueMemberN)
	if !ok {
		return 0, false, nil
	}
	ts, err := strconv.ParseInt(attr.Value, 10, 64)
	if err != nil {
		return 0, false, nil
	}
	return ts, true, nil
}

// DeleteSentinel removes a marker from the sentinel table.
func (s *ReplicaStore) DeleteSentinel(ctx context.Context, id string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.sentinelTable),
		Key: map[string]ddbtypes.AttributeValue{
			"id": &ddbtypes.AttributeValueMemberS{Value: id},
		},
	})
	return err
}
