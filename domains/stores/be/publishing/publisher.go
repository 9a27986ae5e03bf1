package publishing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/zenGate-Global/pwa-studio/domains/stores/be/bundle"
	"github.com/zenGate-Global/pwa-studio/platform/go/storage"
	"github.com/zenGate-Global/pwa-studio/platform/go/tenant"
)

const (
	DefaultRoot        = "/public_html"
	DefaultScheme      = "https"
	DefaultDomain      = "mybuddymobile.com"
	DefaultConcurrency = 4
	DefaultTimeout     = 60 * time.Second
)

// Options tune where and how a bundle is published. Zero fields take defaults.
type Options struct {
	Root   string
	Scheme string
	Domain string
	// ClearDestination empties the tenant directory before uploading.
	// When false, same-named files are overwritten and others are left alone.
	ClearDestination bool
	Concurrency      int
	Timeout          time.Duration
}

func DefaultOptions() Options {
	return Options{
		Root:        DefaultRoot,
		Scheme:      DefaultScheme,
		Domain:      DefaultDomain,
		Concurrency: DefaultConcurrency,
		Timeout:     DefaultTimeout,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Root == "" {
		o.Root = d.Root
	}
	if o.Scheme == "" {
		o.Scheme = d.Scheme
	}
	if o.Domain == "" {
		o.Domain = d.Domain
	}
	if o.Concurrency <= 0 {
		o.Concurrency = d.Concurrency
	}
	if o.Timeout <= 0 {
		o.Timeout = d.Timeout
	}
	return o
}

// Result describes a successful publish.
type Result struct {
	URL         string
	Tenant      string
	Destination string
	PublishID   uuid.UUID
	Files       []string
	Duration    time.Duration
}

// Publisher uploads bundles to a remote file store under a tenant directory.
type Publisher struct {
	connector Connector
	opts      Options
	logger    *zap.Logger
	now       func() time.Time
	newID     func() uuid.UUID
}

func New(connector Connector, opts Options, logger *zap.Logger) *Publisher {
	if connector == nil {
		panic("publishing connector is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{
		connector: connector,
		opts:      opts.withDefaults(),
		logger:    logger,
		now:       time.Now,
		newID:     uuid.New,
	}
}

// Options returns the effective options after defaults.
func (p *Publisher) Options() Options { return p.opts }

// Publish connects, ensures <root>/<tenant>, uploads every bundle file and
// closes the session. It either reports every file written or fails with *Error.
func (p *Publisher) Publish(ctx context.Context, b bundle.Bundle, tenantSlug string, creds Credentials) (Result, error) {
	if err := tenant.ValidateSlug(tenantSlug); err != nil {
		fields := bundle.FieldErrors{}
		fields.Add("tenant", err.Error())
		return Result{}, &bundle.ValidationError{Fields: fields}
	}
	if err := b.Validate(); err != nil {
		return Result{}, &Error{Kind: KindEncoding, Err: err}
	}

	site := tenant.NewSite(tenantSlug, p.opts.Root, p.opts.Scheme, p.opts.Domain)
	remote := make([]string, len(b.Files))
	for i, f := range b.Files {
		full, err := storage.ResolveRemotePath(site.Destination, f.Path)
		if err != nil {
			return Result{}, &Error{Kind: KindEncoding, Path: f.Path, Err: err}
		}
		remote[i] = full
	}

	publishID := p.newID()
	started := p.now()
	log := p.logger.With(
		zap.String("publish_id", publishID.String()),
		zap.String("tenant", tenantSlug),
		zap.String("destination", site.Destination),
	)

	ctx, cancel := context.WithTimeout(ctx, p.opts.Timeout)
	defer cancel()

	log.Info("publish started", zap.Int("files", len(b.Files)), zap.String("remote", creds.String()))

	session, err := p.connector.Connect(ctx, creds)
	if err != nil {
		perr := p.classify(ctx, KindConnection, "", err)
		log.Error("connect failed", zap.Error(perr))
		return Result{}, perr
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			log.Warn("session close failed", zap.Error(cerr))
		}
	}()

	if err := p.prepare(ctx, session, site.Destination, b, log); err != nil {
		log.Error("destination not ready", zap.Error(err))
		return Result{}, err
	}

	if err := p.upload(ctx, session, b, remote, log); err != nil {
		log.Error("upload failed", zap.Error(err))
		return Result{}, err
	}

	res := Result{
		URL:         site.URL,
		Tenant:      tenantSlug,
		Destination: site.Destination,
		PublishID:   publishID,
		Files:       b.Paths(),
		Duration:    p.now().Sub(started),
	}
	log.Info("publish finished", zap.String("url", res.URL), zap.Duration("duration", res.Duration))
	return res, nil
}

func (p *Publisher) prepare(ctx context.Context, session Session, dest string, b bundle.Bundle, log *zap.Logger) error {
	if err := session.EnsureDir(ctx, dest); err != nil {
		return p.classify(ctx, KindDirectory, dest, err)
	}
	if p.opts.ClearDestination {
		if err := session.Clear(ctx, dest); err != nil {
			return p.classify(ctx, KindDirectory, dest, err)
		}
		log.Debug("destination cleared")
	}
	for _, dir := range b.Dirs() {
		full, err := storage.ResolveRemotePath(dest, dir)
		if err != nil {
			return &Error{Kind: KindEncoding, Path: dir, Err: err}
		}
		if err := session.EnsureDir(ctx, full); err != nil {
			return p.classify(ctx, KindDirectory, full, err)
		}
	}
	return nil
}

// upload writes every file and waits for all of them to settle before
// reporting, so a failure never hides the outcome of the others.
func (p *Publisher) upload(ctx context.Context, session Session, b bundle.Bundle, remote []string, log *zap.Logger) error {
	errs := make([]error, len(b.Files))

	var g errgroup.Group
	g.SetLimit(p.opts.Concurrency)
	for i := range b.Files {
		i := i
		f := b.Files[i]
		g.Go(func() error {
			started := p.now()
			r := &typedReader{Reader: bytes.NewReader(f.Data), contentType: f.ContentType()}
			if err := session.Write(ctx, remote[i], r); err != nil {
				errs[i] = fmt.Errorf("%s: %w", f.Path, err)
				return nil
			}
			log.Debug("file uploaded",
				zap.String("path", remote[i]),
				zap.Int("bytes", len(f.Data)),
				zap.String("encoding", f.Encoding.String()),
				zap.Duration("duration", p.now().Sub(started)),
			)
			return nil
		})
	}
	_ = g.Wait()

	var failed []string
	for i, err := range errs {
		if err != nil {
			failed = append(failed, b.Files[i].Path)
		}
	}
	if len(failed) == 0 {
		return nil
	}
	perr := p.classify(ctx, KindUpload, "", multierr.Combine(errs...))
	if perr.Kind == KindUpload {
		perr.Failed = failed
	}
	return perr
}

// classify turns a step failure into *Error, reporting an expired budget as a timeout.
func (p *Publisher) classify(ctx context.Context, kind Kind, path string, err error) *Error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		kind = KindTimeout
	}
	return &Error{Kind: kind, Path: path, Err: err}
}

type typedReader struct {
	*bytes.Reader
	contentType string
}

func (r *typedReader) ContentType() string { return r.contentType }
