package storage

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
)

// BucketChecker verifies that a bucket is reachable with the configured credentials.
type BucketChecker struct {
	client *storage.Client
}

func NewBucketChecker(client *storage.Client) *BucketChecker {
	if client == nil {
		panic("storage client is required")
	}
	return &BucketChecker{client: client}
}

// Check reads bucket attributes; nothing is written.
func (c *BucketChecker) Check(ctx context.Context, bucket string) error {
	if bucket == "" {
		return fmt.Errorf("bucket required")
	}
	if _, err := c.client.Bucket(bucket).Attrs(ctx); err != nil {
		return fmt.Errorf("bucket %s: %w", bucket, err)
	}
	return nil
}

var _ interface {
	Check(context.Context, string) error
} = (*BucketChecker)(nil)
