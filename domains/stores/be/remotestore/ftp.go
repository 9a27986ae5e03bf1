package remotestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/jlaffaye/ftp"
	"go.uber.org/zap"

	"github.com/zenGate-Global/pwa-studio/domains/stores/be/publishing"
)

const defaultDialTimeout = 10 * time.Second

// ftpConn is the subset of *ftp.ServerConn the sessions use.
type ftpConn interface {
	Login(user, password string) error
	MakeDir(path string) error
	ChangeDir(path string) error
	Stor(path string, r io.Reader) error
	RemoveDirRecur(path string) error
	Quit() error
}

type ftpDialFunc func(ctx context.Context, addr string, timeout time.Duration) (ftpConn, error)

// FTPConnector opens FTP sessions. Every control and data connection it dials
// carries the caller's context deadline, so no transfer can block past it.
type FTPConnector struct {
	DialTimeout time.Duration
	logger      *zap.Logger
	dial        ftpDialFunc
}

func NewFTPConnector(dialTimeout time.Duration, logger *zap.Logger) *FTPConnector {
	if logger == nil {
		panic("ftp connector requires logger")
	}
	if dialTimeout <= 0 {
		dialTimeout = defaultDialTimeout
	}
	return &FTPConnector{DialTimeout: dialTimeout, logger: logger, dial: dialFTP}
}

func dialFTP(ctx context.Context, addr string, timeout time.Duration) (ftpConn, error) {
	dialer := &net.Dialer{Timeout: timeout}
	conn, err := ftp.Dial(addr,
		ftp.DialWithTimeout(timeout),
		ftp.DialWithContext(ctx),
		ftp.DialWithDialFunc(func(network, address string) (net.Conn, error) {
			c, err := dialer.DialContext(ctx, network, address)
			if err != nil {
				return nil, err
			}
			if deadline, ok := ctx.Deadline(); ok {
				if err := c.SetDeadline(deadline); err != nil {
					_ = c.Close()
					return nil, err
				}
			}
			return c, nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

func (c *FTPConnector) Connect(ctx context.Context, creds publishing.Credentials) (publishing.Session, error) {
	if strings.TrimSpace(creds.Host) == "" {
		return nil, fmt.Errorf("ftp host is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	conn, err := c.dial(ctx, creds.Address(), c.DialTimeout)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", creds.Address(), err)
	}
	if err := conn.Login(creds.User, creds.Password); err != nil {
		_ = conn.Quit()
		return nil, fmt.Errorf("login %s: %w", creds.String(), err)
	}

	c.logger.Debug("ftp session opened", zap.String("remote", creds.String()))
	return &ftpSession{conn: conn, logger: c.logger}, nil
}

// ftpSession serializes every command because an FTP control connection
// carries one command at a time.
type ftpSession struct {
	mu        sync.Mutex
	conn      ftpConn
	logger    *zap.Logger
	closeOnce sync.Once
	closeErr  error
}

func (s *ftpSession) EnsureDir(ctx context.Context, dir string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := ""
	for _, segment := range strings.Split(strings.Trim(path.Clean("/"+dir), "/"), "/") {
		if segment == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		current += "/" + segment
		if err := s.conn.MakeDir(current); err != nil {
			// Existing directories refuse MKD; confirm by entering them.
			if cdErr := s.conn.ChangeDir(current); cdErr != nil {
				return fmt.Errorf("make dir %s: %w", current, err)
			}
		}
	}
	return nil
}

func (s *ftpSession) Write(ctx context.Context, remotePath string, r io.Reader) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.conn.Stor(remotePath, r); err != nil {
		return fmt.Errorf("stor %s: %w", remotePath, err)
	}
	return nil
}

func (s *ftpSession) Clear(ctx context.Context, dir string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	dir = path.Clean("/" + dir)
	if dir == "/" {
		return errors.New("refusing to clear remote root")
	}
	if err := s.conn.RemoveDirRecur(dir); err != nil {
		return fmt.Errorf("remove %s: %w", dir, err)
	}
	if err := s.conn.MakeDir(dir); err != nil {
		return fmt.Errorf("recreate %s: %w", dir, err)
	}
	return nil
}

func (s *ftpSession) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.closeErr = s.conn.Quit()
		s.logger.Debug("ftp session closed")
	})
	return s.closeErr
}

var _ publishing.Connector = (*FTPConnector)(nil)
