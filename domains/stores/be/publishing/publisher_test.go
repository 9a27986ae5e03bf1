package publishing

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/zenGate-Global/pwa-studio/domains/stores/be/bundle"
)

type connectorMock struct {
	connectFn func(ctx context.Context, creds Credentials) (Session, error)
}

func (m *connectorMock) Connect(ctx context.Context, creds Credentials) (Session, error) {
	if m.connectFn == nil {
		panic("connectFn not configured")
	}
	return m.connectFn(ctx, creds)
}

type sessionMock struct {
	ensureDirFn func(ctx context.Context, dir string) error
	writeFn     func(ctx context.Context, path string, data []byte) error
	clearFn     func(ctx context.Context, dir string) error
	closeFn     func() error

	mu      sync.Mutex
	calls   []string
	written map[string][]byte
	types   map[string]string
	closed  int
}

func newSessionMock() *sessionMock {
	return &sessionMock{written: map[string][]byte{}, types: map[string]string{}}
}

func (m *sessionMock) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, call)
}

func (m *sessionMock) EnsureDir(ctx context.Context, dir string) error {
	m.record("mkdir " + dir)
	if m.ensureDirFn != nil {
		return m.ensureDirFn(ctx, dir)
	}
	return nil
}

func (m *sessionMock) Write(ctx context.Context, path string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.record("write " + path)
	if m.writeFn != nil {
		if err := m.writeFn(ctx, path, data); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.written[path] = data
	if ct, ok := r.(ContentTyper); ok {
		m.types[path] = ct.ContentType()
	}
	return nil
}

func (m *sessionMock) Clear(ctx context.Context, dir string) error {
	m.record("clear " + dir)
	if m.clearFn != nil {
		return m.clearFn(ctx, dir)
	}
	return nil
}

func (m *sessionMock) Close() error {
	m.mu.Lock()
	m.closed++
	m.mu.Unlock()
	if m.closeFn != nil {
		return m.closeFn()
	}
	return nil
}

func (m *sessionMock) closeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func sessionConnector(s *sessionMock) *connectorMock {
	return &connectorMock{connectFn: func(context.Context, Credentials) (Session, error) { return s, nil }}
}

func threeFileBundle(t *testing.T) bundle.Bundle {
	t.Helper()
	var b bundle.Bundle
	require.NoError(t, b.Add("index.html", []byte("<html></html>"), bundle.EncodingText))
	require.NoError(t, b.Add("css/app.css", []byte("body{}"), bundle.EncodingText))
	require.NoError(t, b.Add("manifest.json", []byte("{}"), bundle.EncodingText))
	return b
}

var testCreds = Credentials{Host: "ftp.example.test", User: "deploy", Password: "secret"}

func TestPublisher_Publish_success(t *testing.T) {
	t.Parallel()

	session := newSessionMock()
	publisher := New(sessionConnector(session), Options{Domain: "example.test"}, zaptest.NewLogger(t))
	fixedID := uuid.MustParse("6f1c2b0e-6a1e-4a8c-9a8e-3f0c1d2e3f40")
	publisher.newID = func() uuid.UUID { return fixedID }

	res, err := publisher.Publish(context.Background(), threeFileBundle(t), "acme", testCreds)
	require.NoError(t, err)
	require.Equal(t, "https://acme.example.test", res.URL)
	require.Equal(t, "acme", res.Tenant)
	require.Equal(t, "/public_html/acme", res.Destination)
	require.Equal(t, fixedID, res.PublishID)
	require.Equal(t, []string{"index.html", "css/app.css", "manifest.json"}, res.Files)

	require.Equal(t, 1, session.closeCount())
	require.Equal(t, []byte("body{}"), session.written["/public_html/acme/css/app.css"])
	require.Equal(t, "text/css; charset=utf-8", session.types["/public_html/acme/css/app.css"])
	require.Len(t, session.written, 3)

	// destination and nested directories precede every write
	require.Equal(t, "mkdir /public_html/acme", session.calls[0])
	require.Equal(t, "mkdir /public_html/acme/css", session.calls[1])
	writes := append([]string(nil), session.calls[2:]...)
	sort.Strings(writes)
	require.Equal(t, []string{
		"write /public_html/acme/css/app.css",
		"write /public_html/acme/index.html",
		"write /public_html/acme/manifest.json",
	}, writes)
}

func TestPublisher_Publish_partialUploadFailure(t *testing.T) {
	t.Parallel()

	session := newSessionMock()
	session.writeFn = func(_ context.Context, path string, _ []byte) error {
		if path == "/public_html/acme/css/app.css" {
			return errors.New("550 permission denied")
		}
		return nil
	}
	publisher := New(sessionConnector(session), Options{Concurrency: 1}, zaptest.NewLogger(t))

	res, err := publisher.Publish(context.Background(), threeFileBundle(t), "acme", testCreds)
	require.Error(t, err)
	require.Empty(t, res.URL)
	require.ErrorIs(t, err, ErrUpload)
	require.Equal(t, KindUpload, KindOf(err))

	var perr *Error
	require.True(t, errors.As(err, &perr))
	require.Equal(t, []string{"css/app.css"}, perr.Failed)
	require.Contains(t, err.Error(), "550 permission denied")

	// the remaining files still settled before the failure was reported
	require.Len(t, session.written, 2)
	require.Equal(t, 1, session.closeCount())
}

func TestPublisher_Publish_failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		setup      func(s *sessionMock) Connector
		opts       Options
		wantKind   Kind
		wantErr    error
		wantClosed int
	}{
		{
			name: "connection refused",
			setup: func(*sessionMock) Connector {
				return &connectorMock{connectFn: func(context.Context, Credentials) (Session, error) {
					return nil, errors.New("dial tcp: connection refused")
				}}
			},
			wantKind:   KindConnection,
			wantErr:    ErrConnection,
			wantClosed: 0,
		},
		{
			name: "destination cannot be created",
			setup: func(s *sessionMock) Connector {
				s.ensureDirFn = func(context.Context, string) error { return errors.New("553 not allowed") }
				return sessionConnector(s)
			},
			wantKind:   KindDirectory,
			wantErr:    ErrDirectory,
			wantClosed: 1,
		},
		{
			name: "nested directory cannot be created",
			setup: func(s *sessionMock) Connector {
				s.ensureDirFn = func(_ context.Context, dir string) error {
					if dir == "/public_html/acme/css" {
						return errors.New("553 not allowed")
					}
					return nil
				}
				return sessionConnector(s)
			},
			wantKind:   KindDirectory,
			wantErr:    ErrDirectory,
			wantClosed: 1,
		},
		{
			name: "clear fails",
			setup: func(s *sessionMock) Connector {
				s.clearFn = func(context.Context, string) error { return errors.New("450 busy") }
				return sessionConnector(s)
			},
			opts:       Options{ClearDestination: true},
			wantKind:   KindDirectory,
			wantErr:    ErrDirectory,
			wantClosed: 1,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			session := newSessionMock()
			publisher := New(tt.setup(session), tt.opts, zaptest.NewLogger(t))

			_, err := publisher.Publish(context.Background(), threeFileBundle(t), "acme", testCreds)
			require.Error(t, err)
			require.ErrorIs(t, err, tt.wantErr)
			require.Equal(t, tt.wantKind, KindOf(err))
			require.Equal(t, tt.wantClosed, session.closeCount())
			require.Empty(t, session.written)
		})
	}
}

func TestPublisher_Publish_rejectsBeforeIO(t *testing.T) {
	t.Parallel()

	connector := &connectorMock{} // panics if reached
	publisher := New(connector, Options{}, zaptest.NewLogger(t))

	_, err := publisher.Publish(context.Background(), threeFileBundle(t), "Not A Slug", testCreds)
	var verr *bundle.ValidationError
	require.True(t, errors.As(err, &verr))
	require.Contains(t, verr.Fields, "tenant")

	bad := bundle.Bundle{Files: []bundle.File{{Path: "index.html", Data: []byte{0xff, 0xfe}, Encoding: bundle.EncodingText}}}
	_, err = publisher.Publish(context.Background(), bad, "acme", testCreds)
	require.ErrorIs(t, err, ErrEncoding)
	require.Equal(t, KindEncoding, KindOf(err))
}

func TestPublisher_Publish_binaryPassesThrough(t *testing.T) {
	t.Parallel()

	session := newSessionMock()
	publisher := New(sessionConnector(session), Options{}, zaptest.NewLogger(t))

	var b bundle.Bundle
	payload := []byte{0x89, 'P', 'N', 'G', 0x00, 0xff}
	require.NoError(t, b.Add("icons/icon.png", payload, bundle.EncodingBinary))

	_, err := publisher.Publish(context.Background(), b, "acme", testCreds)
	require.NoError(t, err)
	require.Equal(t, payload, session.written["/public_html/acme/icons/icon.png"])
}

func TestPublisher_Publish_clearDestination(t *testing.T) {
	t.Parallel()

	session := newSessionMock()
	publisher := New(sessionConnector(session), Options{ClearDestination: true}, zaptest.NewLogger(t))

	_, err := publisher.Publish(context.Background(), threeFileBundle(t), "acme", testCreds)
	require.NoError(t, err)
	require.Equal(t, []string{"mkdir /public_html/acme", "clear /public_html/acme", "mkdir /public_html/acme/css"}, session.calls[:3])
}

func TestPublisher_Publish_noClearByDefault(t *testing.T) {
	t.Parallel()

	session := newSessionMock()
	publisher := New(sessionConnector(session), Options{}, zaptest.NewLogger(t))

	_, err := publisher.Publish(context.Background(), threeFileBundle(t), "acme", testCreds)
	require.NoError(t, err)
	for _, call := range session.calls {
		require.NotContains(t, call, "clear")
	}
}

func TestPublisher_Publish_timeout(t *testing.T) {
	t.Parallel()

	session := newSessionMock()
	session.writeFn = func(ctx context.Context, _ string, _ []byte) error {
		<-ctx.Done()
		return ctx.Err()
	}
	publisher := New(sessionConnector(session), Options{Timeout: 20 * time.Millisecond}, zaptest.NewLogger(t))

	_, err := publisher.Publish(context.Background(), threeFileBundle(t), "acme", testCreds)
	require.ErrorIs(t, err, ErrTimeout)
	require.Equal(t, KindTimeout, KindOf(err))
	require.Equal(t, 1, session.closeCount())
}

func TestPublisher_Publish_closeErrorDoesNotFail(t *testing.T) {
	t.Parallel()

	session := newSessionMock()
	session.closeFn = func() error { return errors.New("421 timeout on close") }
	publisher := New(sessionConnector(session), Options{}, zaptest.NewLogger(t))

	res, err := publisher.Publish(context.Background(), threeFileBundle(t), "acme", testCreds)
	require.NoError(t, err)
	require.Equal(t, "https://acme.mybuddymobile.com", res.URL)
}

func TestPublisher_New(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() { New(nil, Options{}, nil) })

	p := New(&connectorMock{}, Options{}, nil)
	require.Equal(t, DefaultOptions(), p.Options())
}

func TestCredentials(t *testing.T) {
	t.Parallel()

	require.Equal(t, "ftp.example.test:21", testCreds.Address())
	require.Equal(t, "ftp.example.test:2121", Credentials{Host: "ftp.example.test", Port: 2121}.Address())
	require.NotContains(t, testCreds.String(), "secret")
}

func TestError_Is(t *testing.T) {
	t.Parallel()

	err := &Error{Kind: KindDirectory, Path: "/public_html/acme", Err: errors.New("boom")}
	require.ErrorIs(t, err, ErrDirectory)
	require.NotErrorIs(t, err, ErrUpload)
	require.Equal(t, "destination directory could not be ensured (/public_html/acme): boom", err.Error())
	require.Equal(t, Kind(""), KindOf(errors.New("other")))
}
