// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads API keys and credentials. Each credential is read from
// its environment variable first and falls back to a plain-text file in the
// secrets directory, where the filename is the key name and the file contents
// (trimmed) are the value.
//
// Supported key files: exa-api-key, openai-api-key, gemini-api-key,
// email-address, email-password.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Credential names a secret by environment variable and secrets-file key.
type Credential struct {
	Env  string
	File string
}

// Known credentials.
var (
	ExaAPIKey     = Credential{Env: "EXA_API_KEY", File: "exa-api-key"}
	OpenAIAPIKey  = Credential{Env: "OPENAI_API_KEY", File: "openai-api-key"}
	GeminiAPIKey  = Credential{Env: "GEMINI_API_KEY", File: "gemini-api-key"}
	EmailAddress  = Credential{Env: "EMAIL_ADDRESS", File: "email-address"}
	EmailPassword = Credential{Env: "EMAIL_PASSWORD", File: "email-password"}
)

// Store resolves credentials from the environment and a loaded secrets directory.
type Store struct {
	files  map[string]string
	lookup func(string) (string, bool)
}

// NewStore wraps the files returned by Load. Environment lookups use os.LookupEnv.
func NewStore(files map[string]string) *Store {
	if files == nil {
		files = map[string]string{}
	}
	return &Store{files: files, lookup: os.LookupEnv}
}

// Get returns the credential value, preferring a non-empty environment variable.
func (s *Store) Get(c Credential) string {
	if v, ok := s.lookup(c.Env); ok {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return s.files[c.File]
}

// Keys returns the secrets-file keys that were loaded.
func (s *Store) Keys() []string {
	keys := make([]string, 0, len(s.files))
	for k := range s.files {
		keys = append(keys, k)
	}
	return keys
}

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files produce a warning on stderr but do not abort.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
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
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}
