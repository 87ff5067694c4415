// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key
// name and the file contents (trimmed) are the value.
//
// The only key lectic reads is anthropic-api-key; the ANTHROPIC_API_KEY
// environment variable takes precedence over it.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	// AnthropicAPIKey is the secret file holding the Anthropic API key.
	AnthropicAPIKey = "anthropic-api-key"

	// AnthropicAPIKeyEnv overrides the AnthropicAPIKey file.
	AnthropicAPIKeyEnv = "ANTHROPIC_API_KEY"
)

// Secrets maps secret names to their values.
type Secrets map[string]string

// Load reads all files in dir and returns their trimmed contents by name.
// A missing directory is not an error; Load returns an empty set. Dotfiles,
// subdirectories and empty files are skipped, and unreadable files are
// logged and skipped.
func Load(dir string, log logrus.FieldLogger) (Secrets, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Secrets{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(Secrets)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			if log != nil {
				log.WithError(err).WithField("secret", name).Warn("could not read secret")
			}
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// Lookup returns the value of envVar when it is set and non-empty,
// otherwise the loaded secret called name.
func (s Secrets) Lookup(name, envVar string) (string, bool) {
	if envVar != "" {
		if v := strings.TrimSpace(os.Getenv(envVar)); v != "" {
			return v, true
		}
	}
	v, ok := s[name]
	return v, ok
}
