// Package backup exports a user's reading log as a self-describing JSON or
// YAML document and imports such documents back through the log store.
package backup

import "errors"

var (
	// ErrInvalidManifest indicates the manifest is missing or malformed.
	ErrInvalidManifest = errors.New("invalid or missing manifest")

	// ErrVersionMismatch indicates the backup version is not supported.
	ErrVersionMismatch = errors.New("backup version not supported")

	// ErrCorruptedBackup indicates the document disagrees with its manifest.
	ErrCorruptedBackup = errors.New("backup integrity check failed")

	// ErrUnknownFormat indicates a format other than json or yaml.
	ErrUnknownFormat = errors.New("unknown backup format")
)
