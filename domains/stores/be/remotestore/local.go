package remotestore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/zenGate-Global/pwa-studio/domains/stores/be/publishing"
)

// LocalConnector publishes into a directory tree on the local filesystem.
// Remote paths are resolved below BasePath.
type LocalConnector struct {
	BasePath string
	logger   *zap.Logger
}

func NewLocalConnector(basePath string, logger *zap.Logger) *LocalConnector {
	if basePath == "" {
		panic("local connector requires basePath")
	}
	if logger == nil {
		panic("local connector requires logger")
	}
	return &LocalConnector{BasePath: basePath, logger: logger}
}

func (c *LocalConnector) Connect(ctx context.Context, _ publishing.Credentials) (publishing.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(c.BasePath, 0o755); err != nil {
		return nil, fmt.Errorf("create base path: %w", err)
	}
	return &localSession{base: c.BasePath}, nil
}

type localSession struct {
	base string
}

func (s *localSession) resolve(remotePath string) string {
	return filepath.Join(s.base, filepath.FromSlash(path.Clean("/"+remotePath)))
}

func (s *localSession) EnsureDir(ctx context.Context, dir string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.resolve(dir), 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	return nil
}

// Write replaces the target atomically through a temp file in the same directory.
func (s *localSession) Write(ctx context.Context, remotePath string, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target := s.resolve(remotePath)
	tmp, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", remotePath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", remotePath, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", remotePath, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("rename %s: %w", remotePath, err)
	}
	return nil
}

func (s *localSession) Clear(ctx context.Context, dir string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full := s.resolve(dir)
	if full == filepath.Clean(s.base) {
		return fmt.Errorf("refusing to clear base path")
	}
	entries, err := os.ReadDir(full)
	if err != nil {
		return fmt.Errorf("read dir: %w", err)
	}
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(full, entry.Name())); err != nil {
			return fmt.Errorf("remove %s: %w", entry.Name(), err)
		}
	}
	return nil
}

func (s *localSession) Close() error { return nil }

var _ publishing.Connector = (*LocalConnector)(nil)
