package service

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/zenGate-Global/pwa-studio/domains/stores/be/bundle"
	"github.com/zenGate-Global/pwa-studio/domains/stores/be/publishing"
	"github.com/zenGate-Global/pwa-studio/platform/go/tenant"
)

// Config carries site generation and publishing settings.
type Config struct {
	PublishRoot      string        `env:"PUBLISH_ROOT" envDefault:"/public_html"`
	SiteDomain       string        `env:"SITE_DOMAIN" envDefault:"mybuddymobile.com"`
	SiteScheme       string        `env:"SITE_SCHEME" envDefault:"https"`
	ClearDestination bool          `env:"PUBLISH_CLEAR_DESTINATION" envDefault:"false"`
	Concurrency      int           `env:"PUBLISH_CONCURRENCY" envDefault:"4"`
	Timeout          time.Duration `env:"PUBLISH_TIMEOUT" envDefault:"60s"`
	SlugAlphabet     string        `env:"SLUG_ALPHABET" envDefault:"hyphenated"` // hyphenated | compact
	SlugMaxLength    int           `env:"SLUG_MAX_LENGTH" envDefault:"63"`
	InlineStyles     bool          `env:"BUNDLE_INLINE_STYLES" envDefault:"false"`
}

// LoadConfig reads the service configuration from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("load service config: %w", err)
	}
	return cfg, nil
}

func (c Config) PublishingOptions() publishing.Options {
	return publishing.Options{
		Root:             c.PublishRoot,
		Scheme:           c.SiteScheme,
		Domain:           c.SiteDomain,
		ClearDestination: c.ClearDestination,
		Concurrency:      c.Concurrency,
		Timeout:          c.Timeout,
	}
}

func (c Config) BundleOptions() bundle.Options {
	opts := bundle.DefaultOptions()
	opts.InlineStyles = c.InlineStyles
	return opts
}

func (c Config) SlugOptions() (tenant.SlugOptions, error) {
	alphabet, err := tenant.ParseAlphabet(c.SlugAlphabet)
	if err != nil {
		return tenant.SlugOptions{}, err
	}
	return tenant.SlugOptions{Alphabet: alphabet, MaxLength: c.SlugMaxLength}, nil
}
