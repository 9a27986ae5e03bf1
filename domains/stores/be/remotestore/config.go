package remotestore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/zenGate-Global/pwa-studio/domains/stores/be/publishing"
)

const (
	BackendFTP   = "ftp"
	BackendLocal = "local"
	BackendGCS   = "gcs"
)

// Config selects and configures the remote store backend.
type Config struct {
	Backend            string        `env:"STORE_BACKEND" envDefault:"ftp"` // ftp | local | gcs
	FTPHost            string        `env:"FTP_HOST"`
	FTPUser            string        `env:"FTP_USER"`
	FTPPass            string        `env:"FTP_PASS"`
	FTPPort            int           `env:"FTP_PORT" envDefault:"21"`
	FTPDialTimeout     time.Duration `env:"FTP_DIAL_TIMEOUT" envDefault:"10s"`
	StorageBucket      string        `env:"STORAGE_BUCKET"`                               // required when STORE_BACKEND=gcs
	StorageLocalDir    string        `env:"STORAGE_LOCAL_DIR" envDefault:"./.data/sites"` // used when STORE_BACKEND=local
	GCSCredentialsFile string        `env:"GCS_CREDENTIALS_FILE"`
}

// LoadConfig reads the backend configuration from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("load remote store config: %w", err)
	}
	return cfg, nil
}

// Credentials returns the FTP credentials handed to every publish call.
func (c Config) Credentials() publishing.Credentials {
	return publishing.Credentials{
		Host:     c.FTPHost,
		User:     c.FTPUser,
		Password: c.FTPPass,
		Port:     c.FTPPort,
	}
}

// NewConnector builds the configured backend. The returned cleanup releases
// backend clients and is always safe to call.
func NewConnector(ctx context.Context, cfg Config, logger *zap.Logger) (publishing.Connector, func(), error) {
	noop := func() {}
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case BackendFTP:
		if strings.TrimSpace(cfg.FTPHost) == "" {
			return nil, noop, fmt.Errorf("FTP_HOST required when STORE_BACKEND=ftp")
		}
		return NewFTPConnector(cfg.FTPDialTimeout, logger), noop, nil
	case BackendLocal:
		if strings.TrimSpace(cfg.StorageLocalDir) == "" {
			return nil, noop, fmt.Errorf("STORAGE_LOCAL_DIR required when STORE_BACKEND=local")
		}
		return NewLocalConnector(cfg.StorageLocalDir, logger), noop, nil
	case BackendGCS:
		if cfg.StorageBucket == "" {
			return nil, noop, fmt.Errorf("STORAGE_BUCKET required when STORE_BACKEND=gcs")
		}
		var opts []option.ClientOption
		if cfg.GCSCredentialsFile != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.GCSCredentialsFile))
		}
		client, err := storage.NewClient(ctx, opts...)
		if err != nil {
			return nil, noop, fmt.Errorf("init gcs client: %w", err)
		}
		cleanup := func() {
			if err := client.Close(); err != nil {
				logger.Warn("close gcs client", zap.Error(err))
			}
		}
		return NewGCSConnector(client, cfg.StorageBucket, logger), cleanup, nil
	default:
		return nil, noop, fmt.Errorf("invalid STORE_BACKEND %q (use ftp, local or gcs)", cfg.Backend)
	}
}
