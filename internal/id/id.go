// Package id generates prefixed identifiers.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Prefixes for the identifiers this server issues.
const (
	PrefixUser   = "usr"
	PrefixToken  = "tok"
	PrefixImport = "imp"
)

// lowerAlphabet avoids look-alike characters in ids users may type
// into the CLI.
const lowerAlphabet = "23456789abcdefghjkmnpqrstuvwxyz"

// Generate returns prefix-<21 char nanoid>.
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// Readable returns prefix-<n lowercase characters> from an unambiguous
// alphabet.
func Readable(prefix string, n int) (string, error) {
	id, err := gonanoid.Generate(lowerAlphabet, n)
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}
