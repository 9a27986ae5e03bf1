package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/zenGate-Global/pwa-studio/domains/stores/be/bundle"
	"github.com/zenGate-Global/pwa-studio/domains/stores/be/publishing"
	"github.com/zenGate-Global/pwa-studio/platform/go/archive"
	platformlogging "github.com/zenGate-Global/pwa-studio/platform/go/logging"
	"github.com/zenGate-Global/pwa-studio/platform/go/tenant"
)

// ArchiveName is the download name of a generated site.
const ArchiveName = "pwa-site.zip"

// Publisher is the publishing dependency; *publishing.Publisher satisfies it.
type Publisher interface {
	Publish(ctx context.Context, b bundle.Bundle, tenantSlug string, creds publishing.Credentials) (publishing.Result, error)
}

// Archive is a generated site packaged for download.
type Archive struct {
	Name        string
	ContentType string
	Data        []byte
	Files       []string
}

// Service turns store configurations into site bundles and publishes them.
type Service struct {
	publisher  Publisher
	creds      publishing.Credentials
	slugOpts   tenant.SlugOptions
	bundleOpts bundle.Options
	logger     *zap.Logger
	now        func() time.Time
}

// New constructs a Service. Credentials are handed to every publish call.
func New(publisher Publisher, creds publishing.Credentials, cfg Config, logger *zap.Logger) (*Service, error) {
	if publisher == nil {
		panic("stores publisher is required")
	}
	if logger == nil {
		panic("stores logger is required")
	}
	slugOpts, err := cfg.SlugOptions()
	if err != nil {
		return nil, err
	}
	return &Service{
		publisher:  publisher,
		creds:      creds,
		slugOpts:   slugOpts,
		bundleOpts: cfg.BundleOptions(),
		logger:     logger,
		now:        time.Now,
	}, nil
}

func (s *Service) loggerFor(ctx context.Context) *zap.Logger {
	return platformlogging.FromContextOr(ctx, s.logger)
}

// DeriveTenant returns the tenant slug for a store name.
func (s *Service) DeriveTenant(storeName string) (string, error) {
	slug, err := tenant.Slugify(storeName, s.slugOpts)
	if errors.Is(err, tenant.ErrEmptySlug) {
		fields := bundle.FieldErrors{}
		fields.Add("storeName", "must contain at least one letter or digit")
		return "", &bundle.ValidationError{Fields: fields}
	}
	if err != nil {
		return "", err
	}
	return slug, nil
}

// Generate builds the site and packages it as a zip archive.
func (s *Service) Generate(ctx context.Context, cfg bundle.StoreConfig) (Archive, error) {
	b, err := bundle.Build(cfg, s.bundleOpts)
	if err != nil {
		return Archive{}, err
	}
	data, err := archive.Zip(b, s.now())
	if err != nil {
		return Archive{}, fmt.Errorf("archive bundle: %w", err)
	}
	s.loggerFor(ctx).Info("site generated",
		zap.String("store", cfg.StoreName),
		zap.Int("files", len(b.Files)),
		zap.Int("bytes", len(data)),
	)
	return Archive{Name: ArchiveName, ContentType: archive.ContentType, Data: data, Files: b.Paths()}, nil
}

// Publish builds the site and uploads it under the tenant derived from the store name.
func (s *Service) Publish(ctx context.Context, cfg bundle.StoreConfig) (publishing.Result, error) {
	b, err := bundle.Build(cfg, s.bundleOpts)
	if err != nil {
		return publishing.Result{}, err
	}
	slug, err := s.DeriveTenant(cfg.StoreName)
	if err != nil {
		return publishing.Result{}, err
	}

	logger := s.loggerFor(ctx).With(zap.String("tenant", slug))
	res, err := s.publisher.Publish(ctx, b, slug, s.creds)
	if err != nil {
		logger.Warn("publish failed", zap.String("kind", string(publishing.KindOf(err))), zap.Error(err))
		return publishing.Result{}, err
	}
	logger.Info("site published",
		zap.String("url", res.URL),
		zap.String("publish_id", res.PublishID.String()),
		zap.Duration("duration", res.Duration),
	)
	return res, nil
}
