package publishing

import (
	"context"
	"fmt"
	"io"
)

// Credentials authenticate a session against the remote file store. They are
// passed explicitly on every publish; nothing is read from the environment here.
type Credentials struct {
	Host     string
	User     string
	Password string
	Port     int
}

// Address returns host:port, defaulting the port to 21.
func (c Credentials) Address() string {
	port := c.Port
	if port == 0 {
		port = 21
	}
	return fmt.Sprintf("%s:%d", c.Host, port)
}

// String never includes the password.
func (c Credentials) String() string {
	return fmt.Sprintf("%s@%s", c.User, c.Address())
}

// Connector opens remote file-store sessions.
type Connector interface {
	Connect(ctx context.Context, creds Credentials) (Session, error)
}

// Session is a single authenticated conversation with the remote store.
// All paths are absolute, slash-separated remote paths.
// EnsureDir is idempotent: an existing directory is not an error.
type Session interface {
	EnsureDir(ctx context.Context, dir string) error
	Write(ctx context.Context, path string, r io.Reader) error
	// Clear removes everything below dir, leaving dir itself in place.
	Clear(ctx context.Context, dir string) error
	Close() error
}

// ContentTyper is implemented by readers that know the MIME type of what
// they carry; backends with object metadata use it.
type ContentTyper interface {
	ContentType() string
}
