package backup

import (
	"fmt"
	"strings"
	"time"
)

// FormatVersion is the backup format version. Increment major on breaking changes.
const FormatVersion = "1.0"

// Manifest describes backup contents and metadata.
type Manifest struct {
	Version   string    `json:"version" yaml:"version"`
	ExportID  string    `json:"export_id" yaml:"export_id"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`

	// Owner of the exported log.
	UserID   string `json:"user_id" yaml:"user_id"`
	Username string `json:"username,omitempty" yaml:"username,omitempty"`

	// Content summary
	Rows  int `json:"rows" yaml:"rows"`
	Days  int `json:"days" yaml:"days"`
	Books int `json:"books" yaml:"books"`
}

// Validate checks the manifest is usable by this version.
func (m *Manifest) Validate() error {
	if m.Version == "" || m.ExportID == "" {
		return ErrInvalidManifest
	}
	major, _, _ := strings.Cut(m.Version, ".")
	wantMajor, _, _ := strings.Cut(FormatVersion, ".")
	if major != wantMajor {
		return fmt.Errorf("%w: %s", ErrVersionMismatch, m.Version)
	}
	return nil
}
