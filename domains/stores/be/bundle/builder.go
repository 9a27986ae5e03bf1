package bundle

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"text/template"
)

//go:embed templates/*
var templateFS embed.FS

var (
	htmlEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
	)

	templates = template.Must(
		template.New("bundle").
			Funcs(template.FuncMap{"esc": EscapeHTML}).
			ParseFS(templateFS, "templates/*.tmpl"),
	)

	serviceWorkerJS = mustReadTemplate("templates/service-worker.js")

	// Colors land inside CSS and attribute values; anything outside this set falls back to the default.
	colorPattern = regexp.MustCompile(`^[#a-zA-Z0-9(),.% -]{1,64}$`)
)

const shortNameLength = 12

// Options selects which optional files a bundle carries.
type Options struct {
	// InlineStyles renders the stylesheet inside index.html instead of css/app.css.
	InlineStyles bool
	// FirebaseInit emits js/firebase-init.js with the verbatim firebase config.
	FirebaseInit bool
	// AppScript emits js/app.js.
	AppScript bool
}

// DefaultOptions produces the full split layout.
func DefaultOptions() Options {
	return Options{FirebaseInit: true, AppScript: true}
}

// EscapeHTML escapes &, <, > and " for interpolation into markup.
// The apostrophe is intentionally left alone.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

type productView struct {
	Name  string
	Price string
}

type pageView struct {
	StoreName    string
	PrimaryColor string
	AccentColor  string
	Products     []productView
	Stylesheet   string
	InlineStyles bool
	FirebaseInit bool
	AppScript    bool
	ProductsJSON string
	FirebaseJSON string
}

type manifest struct {
	Name            string `json:"name"`
	ShortName       string `json:"short_name"`
	StartURL        string `json:"start_url"`
	Display         string `json:"display"`
	BackgroundColor string `json:"background_color"`
	ThemeColor      string `json:"theme_color"`
	Icons           []any  `json:"icons"`
}

// Build renders the static site for cfg. It performs no I/O and only fails
// when the configuration itself is invalid; in that case no file is built.
func Build(cfg StoreConfig, opts Options) (Bundle, error) {
	if err := Validate(cfg); err != nil {
		return Bundle{}, err
	}

	view, err := newPageView(cfg, opts)
	if err != nil {
		return Bundle{}, err
	}

	stylesheet, err := render("app.css.tmpl", view)
	if err != nil {
		return Bundle{}, err
	}
	view.Stylesheet = stylesheet

	index, err := render("index.html.tmpl", view)
	if err != nil {
		return Bundle{}, err
	}

	manifestJSON, err := buildManifest(view)
	if err != nil {
		return Bundle{}, err
	}

	files := []File{{Path: "index.html", Data: []byte(index)}}
	if !opts.InlineStyles {
		files = append(files, File{Path: "css/app.css", Data: []byte(stylesheet)})
	}
	if opts.AppScript {
		js, err := render("app.js.tmpl", view)
		if err != nil {
			return Bundle{}, err
		}
		files = append(files, File{Path: "js/app.js", Data: []byte(js)})
	}
	if opts.FirebaseInit {
		js, err := render("firebase-init.js.tmpl", view)
		if err != nil {
			return Bundle{}, err
		}
		files = append(files, File{Path: "js/firebase-init.js", Data: []byte(js)})
	}
	files = append(files,
		File{Path: "manifest.json", Data: manifestJSON},
		File{Path: "service-worker.js", Data: []byte(serviceWorkerJS)},
	)

	var b Bundle
	for _, f := range files {
		if err := b.Add(f.Path, f.Data, EncodingText); err != nil {
			return Bundle{}, err
		}
	}
	return b, nil
}

// Validate reports every problem with cfg as a single ValidationError.
func Validate(cfg StoreConfig) error {
	fields := FieldErrors{}
	if strings.TrimSpace(cfg.StoreName) == "" {
		fields.Add("storeName", "is required")
	}
	if len(cfg.FirebaseConfig) > 0 && !json.Valid(cfg.FirebaseConfig) {
		fields.Add("firebaseConfig", "must be a JSON value")
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// ShortName truncates name to the 12 characters allowed for manifest short_name.
func ShortName(name string) string {
	r := []rune(name)
	if len(r) > shortNameLength {
		r = r[:shortNameLength]
	}
	return string(r)
}

func newPageView(cfg StoreConfig, opts Options) (pageView, error) {
	products := make([]productView, 0, len(cfg.Products))
	for _, p := range cfg.Products {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			name = "Item"
		}
		products = append(products, productView{Name: name, Price: p.Price.String()})
	}

	productsJSON, err := json.MarshalIndent(cfg.Products, "  ", "  ")
	if err != nil {
		return pageView{}, fmt.Errorf("encode products: %w", err)
	}
	if cfg.Products == nil {
		productsJSON = []byte("[]")
	}

	firebaseJSON := []byte("{}")
	if raw := bytes.TrimSpace(cfg.FirebaseConfig); len(raw) > 0 && !bytes.Equal(raw, []byte("null")) {
		var buf bytes.Buffer
		if err := json.Indent(&buf, raw, "", "  "); err != nil {
			return pageView{}, fmt.Errorf("indent firebase config: %w", err)
		}
		firebaseJSON = buf.Bytes()
	}

	return pageView{
		StoreName:    strings.TrimSpace(cfg.StoreName),
		PrimaryColor: colorOrDefault(cfg.PrimaryColor, DefaultPrimaryColor),
		AccentColor:  colorOrDefault(cfg.AccentColor, DefaultAccentColor),
		Products:     products,
		InlineStyles: opts.InlineStyles,
		FirebaseInit: opts.FirebaseInit,
		AppScript:    opts.AppScript,
		ProductsJSON: string(productsJSON),
		FirebaseJSON: string(firebaseJSON),
	}, nil
}

func buildManifest(view pageView) ([]byte, error) {
	out, err := json.MarshalIndent(manifest{
		Name:            view.StoreName,
		ShortName:       ShortName(view.StoreName),
		StartURL:        ".",
		Display:         "standalone",
		BackgroundColor: "#ffffff",
		ThemeColor:      view.PrimaryColor,
		Icons:           []any{},
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	return out, nil
}

func colorOrDefault(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" || !colorPattern.MatchString(value) {
		return fallback
	}
	return value
}

func render(name string, view pageView) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, view); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

func mustReadTemplate(name string) string {
	data, err := templateFS.ReadFile(name)
	if err != nil {
		panic(fmt.Sprintf("read embedded %s: %v", name, err))
	}
	return string(data)
}
