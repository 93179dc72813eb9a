// Package report publishes validation and health signals to CloudWatch.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/meridian-dr/meridian/internal/metrics"
	"github.com/meridian-dr/meridian/pkg/types"
)

// Metric names published to the collector.
const (
	MetricConsistencyScore = "ValidationConsistencyScore"
	MetricMismatches       = "ValidationMismatches"
	MetricDynamoDBHealth   = "DynamoDBHealth"
	MetricS3Health         = "S3Health"
	MetricReplicationLag   = "ReplicationLag"
)

// CWAPI is the subset of the CloudWatch client used by the Reporter.
type CWAPI interface {
	PutMetricData(ctx context.Context, input *cloudwatch.PutMetricDataInput, opts ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// Reporter publishes numeric signals to CloudWatch. All publishing is
// fire-and-forget from the caller's perspective: convenience methods log
// per-metric failures and never return them.
type Reporter struct {
	client    CWAPI
	namespace string
	logger    *slog.Logger
	now       func() time.Time
}

// ReporterOption configures a Reporter.
type ReporterOption func(*Reporter)

// WithClient sets a custom CloudWatch client (useful for testing).
func WithClient(c CWAPI) ReporterOption {
	return func(r *Reporter) { r.client = c }
}

// WithClock overrides the timestamp source; used by tests.
func WithClock(now func() time.Time) ReporterOption {
	return func(r *Reporter) { r.now = now }
}

// NewReporter creates a Reporter for the given namespace and region.
func NewReporter(ctx context.Context, awsRegion, namespace string, logger *slog.Logger, opts ...ReporterOption) (*Reporter, error) {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Reporter{namespace: namespace, logger: logger, now: time.Now}
	for _, o := range opts {
		o(r)
	}
	if r.client == nil {
		cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(awsRegion))
		if err != nil {
			return nil, fmt.Errorf("loading AWS config: %w", err)
		}
		r.client = cloudwatch.NewFromConfig(cfg)
	}
	return r, nil
}

// Publish sends one metric datum. Returns the transport error so callers
// that batch can log each failure individually.
func (r *Reporter) Publish(ctx context.Context, name string, value float64, unit cwtypes.StandardUnit) error {
	_, err := r.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(r.namespace),
		MetricData: []cwtypes.MetricDatum{{
			MetricName: aws.String(name),
			Value:      aws.Float64(value),
			Unit:       unit,
			Timestamp:  aws.Time(r.now()),
		}},
	})
	if err != nil {
		return fmt.Errorf("publishing metric %s: %w", name, err)
	}
	return nil
}

// PublishValidation publishes the validator's signals. Each metric's failure
// is logged on its own; one failure does not block the others.
func (r *Reporter) PublishValidation(ctx context.Context, results types.ValidationResults) {
	if err := r.Publish(ctx, MetricConsistencyScore, results.ConsistencyScore, cwtypes.StandardUnitPercent); err != nil {
		metrics.MetricPublishErrors.Add(1)
		r.logger.Error("failed to publish consistency score", "error", err)
	}
	if err := r.Publish(ctx, MetricMismatches, float64(results.MismatchesFound), cwtypes.StandardUnitCount); err != nil {
		metrics.MetricPublishErrors.Add(1)
		r.logger.Error("failed to publish mismatch count", "error", err)
	}
}

// PublishHealth publishes the per-region health signals in one batch call.
func (r *Reporter) PublishHealth(ctx context.Context, health types.ServiceHealth) {
	ts := aws.Time(r.now())
	data := []cwtypes.MetricDatum{
		{
			MetricName: aws.String(MetricDynamoDBHealth),
			Value:      aws.Float64(boolValue(health.DynamoDB)),
			Unit:       cwtypes.StandardUnitNone,
			Timestamp:  ts,
		},
		{
			MetricName: aws.String(MetricS3Health),
			Value:      aws.Float64(boolValue(health.S3)),
			Unit:       cwtypes.StandardUnitNone,
			Timestamp:  ts,
		},
	}
	if health.ReplicationLag != nil {
		data = append(data, cwtypes.MetricDatum{
			MetricName: aws.String(MetricReplicationLag),
			Value:      aws.Float64(float64(*health.ReplicationLag)),
			Unit:       cwtypes.StandardUnitSeconds,
			Timestamp:  ts,
		})
	}

	_, err := r.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(r.namespace),
		MetricData: data,
	})
	if err != nil {
		metrics.MetricPublishErrors.Add(1)
		r.logger.Error("failed to publish health metrics", "error", err)
	}
}

func boolValue(b bool) float64 {
	if b {
		return 1.0
	}
	return 0.0
}
