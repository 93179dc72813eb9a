package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/meridian-dr/meridian/internal/provider"
	"github.com/meridian-dr/meridian/pkg/types"
)

// CountItems returns the table's item count from table metadata. DynamoDB
// refreshes this figure roughly every six hours; approximate counts are an
// accepted trade-off over paying for a full scan.
func (s *ReplicaStore) CountItems(ctx context.Context, table types.TableName) (int, error) {
	out, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(table.String()),
	})
	if err != nil {
		return 0, fmt.Errorf("%w: describe %s in %s: %w", provider.ErrUnavailable, table, s.region, err)
	}
	if out.Table == nil || out.Table.ItemCount == nil {
		return 0, nil
	}
	return int(*out.Table.ItemCount), nil
}

// SampleItems returns up to limit items from the head of a table scan.
func (s *ReplicaStore) SampleItems(ctx context.Context, table types.TableName, limit int) ([]provider.Item, error) {
	out, err := s.client.Scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(table.String()),
		Limit:     aws.Int32(int32(limit)),
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s in %s: %w", table, s.region, err)
	}

	items := make([]provider.Item, 0, len(out.Items))
	for _, item := range out.Items {
		id, ok := itemID(item)
		if !ok {
			continue
		}
		items = append(items, provider.Item{ID: id})
	}
	return items, nil
}

// HasItem reports whether the table contains an item with the given id.
func (s *ReplicaStore) HasItem(ctx context.Context, table types.TableName, id string) (bool, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(table.String()),
		Key: map[string]ddbtypes.AttributeValue{
			"id": &ddbtypes.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return false, fmt.Errorf("getting %s from %s in %s: %w", id, table, s.region, err)
	}
	return out.Item != nil, nil
}

// ScanAll returns every item of a table as generic attribute maps, following
// pagination until exhaustion.
func (s *ReplicaStore) ScanAll(ctx context.Context, table types.TableName) ([]map[string]interface{}, error) {
	var items []map[string]interface{}
	var startKey map[string]ddbtypes.AttributeValue

	for {
		out, err := s.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(table.String()),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("scanning %s in %s: %w", table, s.region, err)
		}

		for _, raw := range out.Items {
			var item map[string]interface{}
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				s.logger.Warn("skipping undecodable item", "table", table, "error", err)
				continue
			}
			items = append(items, item)
		}

		if out.LastEvaluatedKey == nil {
			return items, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

func itemID(item map[string]ddbtypes.AttributeValue) (string, bool) {
	attr, ok := item["id"]
	if !ok {
		return "", false
	}
	s, ok := attr.(*ddbtypes.AttributeValueMemberS)
	if !ok || s.Value == "" {
		return "", false
	}
	return s.Value, true
}
