package archive

import (
	"bytes"
	"fmt"
	"time"

	"github.com/klauspost/compress/zip"

	"github.com/zenGate-Global/pwa-studio/domains/stores/be/bundle"
)

// ContentType is the MIME type of archives produced by Zip.
const ContentType = "application/zip"

// Zip packs every bundle file into a deflated zip archive, preserving bundle
// order and relative paths. modified stamps every entry so callers control
// reproducibility.
func Zip(b bundle.Bundle, modified time.Time) ([]byte, error) {
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("validate bundle: %w", err)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, f := range b.Files {
		header := &zip.FileHeader{
			Name:     f.Path,
			Method:   zip.Deflate,
			Modified: modified,
		}
		w, err := zw.CreateHeader(header)
		if err != nil {
			_ = zw.Close()
			return nil, fmt.Errorf("create entry %s: %w", f.Path, err)
		}
		if _, err := w.Write(f.Data); err != nil {
			_ = zw.Close()
			return nil, fmt.Errorf("write entry %s: %w", f.Path, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize archive: %w", err)
	}
	return buf.Bytes(), nil
}
