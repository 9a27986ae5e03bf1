package remotestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/zenGate-Global/pwa-studio/domains/stores/be/bundle"
	"github.com/zenGate-Global/pwa-studio/domains/stores/be/publishing"
)

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestLocalSession_EnsureDirIsIdempotent(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	session, err := NewLocalConnector(base, zaptest.NewLogger(t)).Connect(context.Background(), publishing.Credentials{})
	require.NoError(t, err)
	defer session.Close()

	require.NoError(t, session.EnsureDir(context.Background(), "/public_html/acme"))
	require.NoError(t, session.EnsureDir(context.Background(), "/public_html/acme"))
	require.DirExists(t, filepath.Join(base, "public_html", "acme"))
}

func TestLocalSession_WriteOverwritesAndKeepsOthers(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	session, err := NewLocalConnector(base, zaptest.NewLogger(t)).Connect(context.Background(), publishing.Credentials{})
	require.NoError(t, err)
	defer session.Close()

	ctx := context.Background()
	require.NoError(t, session.EnsureDir(ctx, "/public_html/acme"))
	require.NoError(t, session.Write(ctx, "/public_html/acme/index.html", stringReader("v1")))
	require.NoError(t, session.Write(ctx, "/public_html/acme/old.html", stringReader("stale")))
	require.NoError(t, session.Write(ctx, "/public_html/acme/index.html", stringReader("v2")))

	dir := filepath.Join(base, "public_html", "acme")
	require.Equal(t, "v2", readFile(t, filepath.Join(dir, "index.html")))
	require.Equal(t, "stale", readFile(t, filepath.Join(dir, "old.html")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2, "no temp files left behind")
}

func TestLocalSession_Clear(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	session, err := NewLocalConnector(base, zaptest.NewLogger(t)).Connect(context.Background(), publishing.Credentials{})
	require.NoError(t, err)
	defer session.Close()

	ctx := context.Background()
	require.NoError(t, session.EnsureDir(ctx, "/public_html/acme/css"))
	require.NoError(t, session.Write(ctx, "/public_html/acme/css/app.css", stringReader("body{}")))
	require.NoError(t, session.Write(ctx, "/public_html/acme/old.html", stringReader("stale")))

	require.NoError(t, session.Clear(ctx, "/public_html/acme"))
	require.DirExists(t, filepath.Join(base, "public_html", "acme"))
	entries, err := os.ReadDir(filepath.Join(base, "public_html", "acme"))
	require.NoError(t, err)
	require.Empty(t, entries)

	require.Error(t, session.Clear(ctx, "/"))
}

func TestLocalConnector_PublishEndToEnd(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	logger := zaptest.NewLogger(t)
	publisher := publishing.New(NewLocalConnector(base, logger), publishing.Options{Domain: "example.test"}, logger)

	b, err := bundle.Build(bundle.StoreConfig{StoreName: "Acme"}, bundle.DefaultOptions())
	require.NoError(t, err)

	stale := filepath.Join(base, "public_html", "acme", "old.html")
	require.NoError(t, os.MkdirAll(filepath.Dir(stale), 0o755))
	require.NoError(t, os.WriteFile(stale, []byte("stale"), 0o644))

	res, err := publisher.Publish(context.Background(), b, "acme", publishing.Credentials{})
	require.NoError(t, err)
	require.Equal(t, "https://acme.example.test", res.URL)

	for _, f := range b.Files {
		require.Equal(t, string(f.Data), readFile(t, filepath.Join(base, "public_html", "acme", filepath.FromSlash(f.Path))))
	}
	require.FileExists(t, stale, "default publish leaves unrelated files alone")

	clearing := publishing.New(NewLocalConnector(base, logger), publishing.Options{ClearDestination: true}, logger)
	_, err = clearing.Publish(context.Background(), b, "acme", publishing.Credentials{})
	require.NoError(t, err)
	require.NoFileExists(t, stale)
	require.FileExists(t, filepath.Join(base, "public_html", "acme", "index.html"))
}
