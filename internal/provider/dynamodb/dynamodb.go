// Package dynamodb implements the provider interfaces using AWS DynamoDB.
package dynamodb

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/meridian-dr/meridian/internal/provider"
	"github.com/meridian-dr/meridian/pkg/types"
)

// Compile-time interface satisfaction checks.
var (
	_ provider.ReplicaStore = (*ReplicaStore)(nil)
	_ provider.StateStore   = (*StateStore)(nil)
)

// DDBAPI is the subset of the DynamoDB client used by this package.
type DDBAPI interface {
	DescribeTable(ctx context.Context, input *dynamodb.DescribeTableInput, opts ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	Scan(ctx context.Context, input *dynamodb.ScanInput, opts ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	GetItem(ctx context.Context, input *dynamodb.GetItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, input *dynamodb.PutItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, input *dynamodb.DeleteItemInput, opts ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	ListTables(ctx context.Context, input *dynamodb.ListTablesInput, opts ...func(*dynamodb.Options)) (*dynamodb.ListTablesOutput, error)
}

// Config holds DynamoDB connection settings for one region.
type Config struct {
	Region        string `yaml:"region" json:"region"`
	SentinelTable string `yaml:"sentinelTable" json:"sentinelTable"`
	MetadataTable string `yaml:"metadataTable" json:"metadataTable"`
	Endpoint      string `yaml:"endpoint,omitempty" json:"endpoint,omitempty"`
}

// NewClient builds a DynamoDB client for a region. For DynamoDB Local,
// Endpoint overrides the target and static credentials are used.
func NewClient(ctx context.Context, cfg Config) (*dynamodb.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.Endpoint != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider("local", "local", ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	var clientOpts []func(*dynamodb.Options)
	if cfg.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *dynamodb.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}

	return dynamodb.NewFromConfig(awsCfg, clientOpts...), nil
}

// ReplicaStore implements provider.ReplicaStore against one region.
type ReplicaStore struct {
	client        DDBAPI
	region        types.Region
	sentinelTable string
	logger        *slog.Logger
}

// NewReplicaStore creates a ReplicaStore for the given region.
func NewReplicaStore(ctx context.Context, cfg Config) (*ReplicaStore, error) {
	region, err := types.ParseRegion(cfg.Region)
	if err != nil {
		return nil, err
	}
	client, err := NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &ReplicaStore{
		client:        client,
		region:        region,
		sentinelTable: cfg.SentinelTable,
		logger:        slog.Default(),
	}, nil
}

// NewReplicaStoreWithClient wires an existing client; used by tests.
func NewReplicaStoreWithClient(client DDBAPI, region types.Region, sentinelTable string) *ReplicaStore {
	return &ReplicaStore{
		client:        client,
		region:        region,
		sentinelTable: sentinelTable,
		logger:        slog.Default(),
	}
}

// SetLogger overrides the default logger.
func (s *ReplicaStore) SetLogger(l *slog.Logger) {
	if l != nil {
		s.logger = l
	}
}

// Region names the region this store talks to.
func (s *ReplicaStore) Region() types.Region { return s.region }

// Ping checks connectivity with a bounded table listing.
func (s *ReplicaStore) Ping(ctx context.Context) error {
	_, err := s.client.ListTables(ctx, &dynamodb.ListTablesInput{
		Limit: aws.Int32(1),
	})
	if err != nil {
		return fmt.Errorf("dynamodb ping %s: %w", s.region, err)
	}
	return nil
}
