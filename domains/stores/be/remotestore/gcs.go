package remotestore

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"

	"github.com/zenGate-Global/pwa-studio/domains/stores/be/publishing"
	platformstorage "github.com/zenGate-Global/pwa-studio/platform/go/storage"
)

// GCSConnector publishes into a Cloud Storage bucket. Directories are object
// prefixes, so they exist as soon as an object is written below them.
type GCSConnector struct {
	Client  *storage.Client
	Bucket  string
	checker *platformstorage.BucketChecker
	logger  *zap.Logger
}

func NewGCSConnector(client *storage.Client, bucket string, logger *zap.Logger) *GCSConnector {
	if client == nil {
		panic("gcs connector requires client")
	}
	if bucket == "" {
		panic("gcs connector requires bucket")
	}
	if logger == nil {
		panic("gcs connector requires logger")
	}
	return &GCSConnector{
		Client:  client,
		Bucket:  bucket,
		checker: platformstorage.NewBucketChecker(client),
		logger:  logger,
	}
}

// Connect verifies bucket access; FTP credentials do not apply here.
func (c *GCSConnector) Connect(ctx context.Context, _ publishing.Credentials) (publishing.Session, error) {
	if err := c.checker.Check(ctx, c.Bucket); err != nil {
		return nil, err
	}
	return &gcsSession{bucket: c.Client.Bucket(c.Bucket), name: c.Bucket, logger: c.logger}, nil
}

type gcsSession struct {
	bucket *storage.BucketHandle
	name   string
	logger *zap.Logger
}

func (s *gcsSession) EnsureDir(ctx context.Context, dir string) error {
	if platformstorage.DirPrefix(dir) == "" {
		return errors.New("directory prefix is required")
	}
	return ctx.Err()
}

func (s *gcsSession) Write(ctx context.Context, remotePath string, r io.Reader) error {
	loc, err := platformstorage.ResolveObjectLocation(s.name, remotePath)
	if err != nil {
		return err
	}
	w := s.bucket.Object(loc.FullPath).NewWriter(ctx)
	if typed, ok := r.(publishing.ContentTyper); ok {
		w.ContentType = typed.ContentType()
	}
	w.CacheControl = "no-cache"
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return fmt.Errorf("write object %s: %w", loc.FullPath, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize object %s: %w", loc.FullPath, err)
	}
	return nil
}

func (s *gcsSession) Clear(ctx context.Context, dir string) error {
	prefix := platformstorage.DirPrefix(dir)
	if prefix == "" {
		return errors.New("refusing to clear bucket root")
	}
	it := s.bucket.Objects(ctx, &storage.Query{Prefix: prefix})
	removed := 0
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return fmt.Errorf("list prefix %s: %w", prefix, err)
		}
		if err := s.bucket.Object(attrs.Name).Delete(ctx); err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
			return fmt.Errorf("delete object %s: %w", attrs.Name, err)
		}
		removed++
	}
	s.logger.Debug("gcs prefix cleared", zap.String("prefix", prefix), zap.Int("objects", removed))
	return nil
}

func (s *gcsSession) Close() error { return nil }

var _ publishing.Connector = (*GCSConnector)(nil)
