package session

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"clusterview/internal/domain"
)

const csvMIME = "text/csv"

// OpenFile reads a file from disk into an Upload, sniffing its MIME type
// from the content.
func OpenFile(path string) (domain.Upload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Upload{}, fmt.Errorf("read %s: %w", path, err)
	}
	return NewUpload(filepath.Base(path), data), nil
}

// NewUpload wraps in-memory file content.
func NewUpload(name string, data []byte) domain.Upload {
	return domain.Upload{Name: name, MIME: mimetype.Detect(data).String(), Data: data}
}

// IsCSV accepts an upload whose MIME type is text/csv or whose name ends in .csv.
func IsCSV(u domain.Upload) bool {
	if mt, _, err := mime.ParseMediaType(u.MIME); err == nil && mt == csvMIME {
		return true
	}
	return strings.HasSuffix(u.Name, ".csv")
}
