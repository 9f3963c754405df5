package backup

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Format is the serialization of a backup document.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts json, yaml or yml in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json", "":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// FormatForPath picks the format from a file extension.
func FormatForPath(path string) (Format, error) {
	return ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
}

// Extension returns the file extension for the format, without the dot.
func (f Format) Extension() string {
	return string(f)
}

// ContentType returns the MIME type served for the format.
func (f Format) ContentType() string {
	if f == FormatYAML {
		return "application/yaml"
	}
	return "application/json"
}

// FileName returns the default backup file name for a user.
func FileName(username string, f Format, at time.Time) string {
	if username == "" {
		username = "export"
	}
	return fmt.Sprintf("bookkeeper-%s-%s.%s", username, at.UTC().Format("20060102-150405"), f.Extension())
}

// ImportOptions configures Import.
type ImportOptions struct {
	Format Format
	DryRun bool // Validate without writing
}

// ExportResult contains the outcome of an export.
type ExportResult struct {
	Manifest Manifest      `json:"manifest"`
	Bytes    int64         `json:"bytes"`
	Duration time.Duration `json:"duration"`
}

// ImportResult contains the outcome of an import.
type ImportResult struct {
	Manifest Manifest      `json:"manifest"`
	Days     int           `json:"days"`
	Rows     int           `json:"rows"`
	DryRun   bool          `json:"dry_run"`
	Duration time.Duration `json:"duration"`
}
