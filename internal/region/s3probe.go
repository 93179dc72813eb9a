package region

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API is the subset of the S3 client used by the blob-storage probe.
type S3API interface {
	ListObjectsV2(ctx context.Context, input *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Probe checks blob-storage reachability with a bounded listing call.
type S3Probe struct {
	client  S3API
	bucket  string
	timeout time.Duration
}

// NewS3Probe creates an S3Probe against the given bucket.
func NewS3Probe(client S3API, bucket string, timeout time.Duration) *S3Probe {
	return &S3Probe{client: client, bucket: bucket, timeout: timeout}
}

// Healthy reports whether the bucket answers a single-key listing within the
// timeout. Fails closed on any error.
func (p *S3Probe) Healthy(ctx context.Context) bool {
	listCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	_, err := p.client.ListObjectsV2(listCtx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(p.bucket),
		MaxKeys: aws.Int32(1),
	})
	return err == nil
}
