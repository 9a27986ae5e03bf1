package tenant

import (
	"path"
	"strings"
)

// Site captures the derived addressing for one published store.
type Site struct {
	Slug        string
	Destination string
	URL         string
}

// BuildDestination returns `<root>/<slug>` as an absolute, cleaned remote path.
func BuildDestination(root, slug string) string {
	root = strings.TrimSpace(root)
	if root == "" {
		root = "/"
	}
	return path.Join("/", root, slug)
}

// BuildSiteURL returns `<scheme>://<slug>.<domain>`.
func BuildSiteURL(scheme, domain, slug string) string {
	scheme = strings.TrimSuffix(strings.TrimSpace(scheme), "://")
	if scheme == "" {
		scheme = "https"
	}
	domain = strings.Trim(strings.TrimSpace(domain), ".")
	return scheme + "://" + slug + "." + domain
}

// NewSite resolves all addressing for a slug under the given root and domain.
func NewSite(slug, root, scheme, domain string) Site {
	return Site{
		Slug:        slug,
		Destination: BuildDestination(root, slug),
		URL:         BuildSiteURL(scheme, domain, slug),
	}
}
