// Package auth hashes passwords and issues encrypted access tokens.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// KeyFileName is the key file kept in the data directory.
const KeyFileName = "auth.key"

// PASETO v4.local keys are 32 bytes.
const keyLength = 32

// LoadOrGenerateKey returns the token key. A non-empty override (hex, from
// configuration) wins; otherwise the key is read from <dataPath>/auth.key,
// generating and saving a new one on first start.
func LoadOrGenerateKey(override, dataPath string) ([]byte, error) {
	if override != "" {
		return decodeKey(override)
	}

	keyPath := filepath.Join(dataPath, KeyFileName)
	//#nosec G304 -- path is derived from the configured data directory
	if raw, err := os.ReadFile(keyPath); err == nil {
		return decodeKey(string(raw))
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read auth key: %w", err)
	}

	key := make([]byte, keyLength)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate auth key: %w", err)
	}
	if err := os.MkdirAll(dataPath, 0o700); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	if err := os.WriteFile(keyPath, []byte(hex.EncodeToString(key)), 0o600); err != nil {
		return nil, fmt.Errorf("save auth key: %w", err)
	}
	return key, nil
}

func decodeKey(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if len(s) != keyLength*2 {
		return nil, fmt.Errorf("invalid auth key length: expected %d hex chars, got %d", keyLength*2, len(s))
	}
	key, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid auth key: not valid hex: %w", err)
	}
	return key, nil
}
