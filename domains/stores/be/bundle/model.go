package bundle

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	DefaultPrimaryColor = "#22c55e"
	DefaultAccentColor  = "#9333ea"
)

// StoreConfig is the branding and catalogue input for one storefront.
type StoreConfig struct {
	StoreName    string
	PrimaryColor string
	AccentColor  string
	Products     []Product
	// FirebaseConfig is emitted verbatim into js/firebase-init.js and never interpreted.
	FirebaseConfig json.RawMessage
}

// Product is a single catalogue entry rendered in input order.
type Product struct {
	Name  string `json:"name"`
	Price Price  `json:"price"`
}

// Price keeps the verbatim JSON lexeme of a number, or the raw value of a
// string. It is never parsed numerically.
type Price struct {
	raw    string
	number bool
	set    bool
}

// NumberPrice builds a Price from a JSON number lexeme such as "3" or "3.50".
func NumberPrice(lexeme string) Price {
	return Price{raw: lexeme, number: true, set: true}
}

// TextPrice builds a Price from a free-form string such as "4.99 each".
func TextPrice(value string) Price {
	return Price{raw: value, set: true}
}

// String returns the verbatim price text, empty when unset.
func (p Price) String() string { return p.raw }

// IsSet reports whether a price was supplied.
func (p Price) IsSet() bool { return p.set && p.raw != "" }

func (p *Price) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")):
		*p = Price{}
	case trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return fmt.Errorf("decode price: %w", err)
		}
		*p = TextPrice(s)
	case trimmed[0] == '-' || (trimmed[0] >= '0' && trimmed[0] <= '9'):
		var n json.Number
		if err := json.Unmarshal(trimmed, &n); err != nil {
			return fmt.Errorf("decode price: %w", err)
		}
		*p = NumberPrice(string(trimmed))
	default:
		return errors.New("price must be a number or a string")
	}
	return nil
}

func (p Price) MarshalJSON() ([]byte, error) {
	if !p.set {
		return []byte("null"), nil
	}
	if p.number {
		return []byte(p.raw), nil
	}
	return json.Marshal(p.raw)
}

// FieldErrors maps input fields to validation issues.
type FieldErrors map[string][]string

// ValidationError is returned when the store configuration is unusable.
type ValidationError struct {
	Fields FieldErrors
}

func (v *ValidationError) Error() string {
	if len(v.Fields) == 0 {
		return "validation error"
	}
	keys := make([]string, 0, len(v.Fields))
	for k := range v.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(v.Fields[k], ", "))
	}
	return "validation error: " + strings.Join(parts, "; ")
}

// Add records an issue for field.
func (f FieldErrors) Add(field, issue string) {
	f[field] = append(f[field], issue)
}

// Encoding declares how a file's bytes must be treated in transfer.
type Encoding int

const (
	// EncodingText files must be valid UTF-8.
	EncodingText Encoding = iota
	// EncodingBinary files are transferred byte for byte.
	EncodingBinary
)

func (e Encoding) String() string {
	if e == EncodingBinary {
		return "binary"
	}
	return "text"
}

// File is one entry of a Bundle.
type File struct {
	Path     string
	Data     []byte
	Encoding Encoding
}

// ContentType guesses a MIME type from the file extension.
func (f File) ContentType() string {
	switch path.Ext(f.Path) {
	case ".html":
		return "text/html; charset=utf-8"
	case ".css":
		return "text/css; charset=utf-8"
	case ".js":
		return "text/javascript; charset=utf-8"
	case ".json":
		return "application/json"
	case ".png":
		return "image/png"
	case ".svg":
		return "image/svg+xml"
	default:
		return "application/octet-stream"
	}
}

// Bundle is the ordered set of generated files for one store.
type Bundle struct {
	Files []File
}

// Errors returned by Bundle.Validate.
var (
	ErrInvalidPath   = errors.New("invalid bundle path")
	ErrDuplicatePath = errors.New("duplicate bundle path")
	ErrInvalidText   = errors.New("text file is not valid UTF-8")
)

// Add appends a file, rejecting invalid or duplicate paths.
func (b *Bundle) Add(p string, data []byte, enc Encoding) error {
	if err := ValidatePath(p); err != nil {
		return err
	}
	if _, ok := b.Get(p); ok {
		return fmt.Errorf("%w: %s", ErrDuplicatePath, p)
	}
	b.Files = append(b.Files, File{Path: p, Data: data, Encoding: enc})
	return nil
}

// Get returns the file stored at p.
func (b Bundle) Get(p string) (File, bool) {
	for _, f := range b.Files {
		if f.Path == p {
			return f, true
		}
	}
	return File{}, false
}

// Paths lists file paths in bundle order.
func (b Bundle) Paths() []string {
	out := make([]string, 0, len(b.Files))
	for _, f := range b.Files {
		out = append(out, f.Path)
	}
	return out
}

// Dirs lists the distinct parent directories implied by nested paths, sorted
// so that parents precede children.
func (b Bundle) Dirs() []string {
	seen := make(map[string]struct{})
	for _, f := range b.Files {
		for dir := path.Dir(f.Path); dir != "." && dir != "/"; dir = path.Dir(dir) {
			seen[dir] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for dir := range seen {
		out = append(out, dir)
	}
	sort.Strings(out)
	return out
}

// Validate checks the path invariants and text encodings of every file.
func (b Bundle) Validate() error {
	seen := make(map[string]struct{}, len(b.Files))
	for _, f := range b.Files {
		if err := ValidatePath(f.Path); err != nil {
			return err
		}
		if _, dup := seen[f.Path]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicatePath, f.Path)
		}
		seen[f.Path] = struct{}{}
		if f.Encoding == EncodingText && !utf8.Valid(f.Data) {
			return fmt.Errorf("%w: %s", ErrInvalidText, f.Path)
		}
	}
	return nil
}

// ValidatePath enforces relative, slash-separated paths without dot segments.
func ValidatePath(p string) error {
	if p == "" {
		return fmt.Errorf("%w: empty", ErrInvalidPath)
	}
	if strings.HasPrefix(p, "/") || strings.Contains(p, `\`) {
		return fmt.Errorf("%w: %s must be relative and use '/'", ErrInvalidPath, p)
	}
	for _, seg := range strings.Split(p, "/") {
		switch seg {
		case "", ".", "..":
			return fmt.Errorf("%w: %s", ErrInvalidPath, p)
		}
	}
	return nil
}
