// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package profile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/reviewer-outreach/pkg/types"
)

const profileYAML = `
name: Ada Lovelace
email: ada@example.edu
affiliation: Analytical Engine Lab
identity: researcher in symbolic computation
expertise:
  - domain: Machine Learning
    focus: optimization
  - domain: Theory
publications:
  - Notes on the Analytical Engine
`

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "user_profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(profileYAML), 0o644))

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", p.Name)
	assert.Equal(t, "Analytical Engine Lab", p.Affiliation)
	assert.Equal(t, "Machine Learning (optimization), Theory", p.ExpertiseSummary())
	assert.Equal(t, []string{"Notes on the Analytical Engine"}, p.Publications)
	assert.Equal(t, "Best regards,\nAda Lovelace", p.SignOff())
}

func TestParseValidation(t *testing.T) {
	tests := []struct {
		name   string
		doc    string
		errMsg string
	}{
		{"missing name", "expertise: [{domain: AI}]", "name"},
		{"missing expertise", "name: Ada", "expertise"},
		{"both missing", "affiliation: Lab", "name, expertise"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrIncomplete))
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestParseMalformed(t *testing.T) {
	_, err := Parse([]byte("name: [unterminated"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing profile")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestSampleRoundTrip(t *testing.T) {
	data, err := Marshal(Sample())
	require.NoError(t, err)
	p, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, Sample(), p)
}

func TestSignOffOverride(t *testing.T) {
	p := types.UserProfile{Name: "Ada", Signature: "Cheers,\nA.L."}
	assert.Equal(t, "Cheers,\nA.L.", p.SignOff())
}
