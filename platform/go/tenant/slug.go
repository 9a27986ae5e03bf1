package tenant

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Alphabet selects how word boundaries survive slugification.
type Alphabet string

const (
	// AlphabetHyphenated keeps word boundaries as single hyphens: [a-z0-9-].
	AlphabetHyphenated Alphabet = "hyphenated"
	// AlphabetCompact drops word boundaries entirely: [a-z0-9].
	AlphabetCompact Alphabet = "compact"
)

// DefaultMaxLength matches the DNS label limit since slugs become subdomains.
const DefaultMaxLength = 63

// ErrEmptySlug is returned when a name has no characters that survive slugification.
var ErrEmptySlug = errors.New("name produces an empty slug")

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// SlugOptions controls Slugify. The zero value means hyphenated, 63 characters.
type SlugOptions struct {
	Alphabet  Alphabet
	MaxLength int
}

// ParseAlphabet maps a configuration value onto an Alphabet.
func ParseAlphabet(value string) (Alphabet, error) {
	switch Alphabet(strings.ToLower(strings.TrimSpace(value))) {
	case "", AlphabetHyphenated:
		return AlphabetHyphenated, nil
	case AlphabetCompact:
		return AlphabetCompact, nil
	default:
		return "", fmt.Errorf("unknown slug alphabet %q (use hyphenated or compact)", value)
	}
}

// Slugify derives the tenant identifier for a store display name. It is pure:
// the same name and options always yield the same slug.
//
// Accents are folded (Café -> cafe), apostrophes and quotes are dropped so
// "Joe's" becomes "joes", and every other run of characters outside [a-z0-9]
// becomes a single separator.
func Slugify(name string, opts SlugOptions) (string, error) {
	sep := "-"
	if opts.Alphabet == AlphabetCompact {
		sep = ""
	}
	maxLen := opts.MaxLength
	if maxLen <= 0 {
		maxLen = DefaultMaxLength
	}

	folded, _, err := transform.String(transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), name)
	if err != nil {
		return "", fmt.Errorf("fold %q: %w", name, err)
	}
	folded = strings.ToLower(folded)

	var b strings.Builder
	pending := false
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pending && b.Len() > 0 {
				b.WriteString(sep)
			}
			pending = false
			b.WriteRune(r)
		case isQuote(r):
			// dropped without introducing a boundary
		default:
			pending = true
		}
	}

	slug := b.String()
	if len(slug) > maxLen {
		slug = strings.TrimRight(slug[:maxLen], "-")
	}
	if slug == "" {
		return "", ErrEmptySlug
	}
	return slug, nil
}

// ValidateSlug ensures an externally supplied slug matches the canonical
// URL-safe pattern before it is used as a remote path segment or subdomain.
func ValidateSlug(slug string) error {
	if slug == "" {
		return ErrEmptySlug
	}
	if len(slug) > DefaultMaxLength {
		return fmt.Errorf("invalid slug %q: longer than %d characters", slug, DefaultMaxLength)
	}
	if !slugPattern.MatchString(slug) {
		return fmt.Errorf("invalid slug %q: must match %s", slug, slugPattern.String())
	}
	return nil
}

func isQuote(r rune) bool {
	switch r {
	case '\'', '"', '`', '‘', '’', '“', '”':
		return true
	}
	return false
}
