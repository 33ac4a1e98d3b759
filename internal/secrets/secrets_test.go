// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package secrets

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T) string
		want  map[string]string
	}{
		{
			name: "reads key files and trims whitespace",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "exa-api-key", "  exa_abc123  \n")
				writeFile(t, dir, "openai-api-key", "sk-xyz789")
				writeFile(t, dir, "email-address", "me@example.com\n")
				return dir
			},
			want: map[string]string{
				"exa-api-key":    "exa_abc123",
				"openai-api-key": "sk-xyz789",
				"email-address":  "me@example.com",
			},
		},
		{
			name: "returns empty map for nonexistent directory",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "does-not-exist")
			},
			want: map[string]string{},
		},
		{
			name: "skips empty files",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "gemini-api-key", "valid-key")
				writeFile(t, dir, "empty-key", "")
				writeFile(t, dir, "whitespace-only", "   \n\t  ")
				return dir
			},
			want: map[string]string{
				"gemini-api-key": "valid-key",
			},
		},
		{
			name: "skips dotfiles",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, ".gitkeep", "")
				writeFile(t, dir, ".hidden-key", "secret")
				writeFile(t, dir, "email-password", "hunter2")
				return dir
			},
			want: map[string]string{
				"email-password": "hunter2",
			},
		},
		{
			name: "skips subdirectories",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				writeFile(t, dir, "exa-api-key", "ek_123")
				require.NoError(t, os.Mkdir(filepath.Join(dir, "subdir"), 0o755))
				return dir
			},
			want: map[string]string{
				"exa-api-key": "ek_123",
			},
		},
		{
			name: "returns empty map for empty directory",
			setup: func(t *testing.T) string {
				return t.TempDir()
			},
			want: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := tt.setup(t)
			got, err := Load(dir)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoadUnreadableFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("file permissions are not enforced for root")
	}
	dir := t.TempDir()
	writeFile(t, dir, "good-key", "value123")

	badPath := filepath.Join(dir, "bad-key")
	require.NoError(t, os.WriteFile(badPath, []byte("secret"), 0o000))
	t.Cleanup(func() { os.Chmod(badPath, 0o644) })

	got, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "value123", got["good-key"])
	_, hasBad := got["bad-key"]
	assert.False(t, hasBad, "unreadable file should not appear in result")
}

func TestStoreGet(t *testing.T) {
	env := map[string]string{
		"EXA_API_KEY":   "from-env",
		"EMAIL_ADDRESS": "   ",
	}
	s := NewStore(map[string]string{
		"exa-api-key":    "from-file",
		"email-address":  "file@example.com",
		"openai-api-key": "sk-file",
	})
	s.lookup = func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	assert.Equal(t, "from-env", s.Get(ExaAPIKey), "environment wins")
	assert.Equal(t, "file@example.com", s.Get(EmailAddress), "blank env falls back to file")
	assert.Equal(t, "sk-file", s.Get(OpenAIAPIKey))
	assert.Empty(t, s.Get(GeminiAPIKey))

	keys := s.Keys()
	sort.Strings(keys)
	assert.Equal(t, []string{"email-address", "exa-api-key", "openai-api-key"}, keys)
}

func TestNewStoreNilFiles(t *testing.T) {
	s := NewStore(nil)
	s.lookup = func(string) (string, bool) { return "", false }
	assert.Empty(t, s.Get(EmailPassword))
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
