// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package profile loads the user profile document that describes who is
// offering to review.
package profile

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/reviewer-outreach/pkg/types"
)

// ErrIncomplete is returned when the profile lacks the fields every prompt needs.
var ErrIncomplete = errors.New("incomplete profile")

// Load reads and validates the profile at path.
func Load(path string) (types.UserProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.UserProfile{}, fmt.Errorf("reading profile %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a profile document.
func Parse(data []byte) (types.UserProfile, error) {
	var p types.UserProfile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return types.UserProfile{}, fmt.Errorf("parsing profile: %w", err)
	}
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.TrimSpace(p.Email)

	if err := Validate(p); err != nil {
		return types.UserProfile{}, err
	}
	return p, nil
}

// Validate requires a name and at least one expertise entry.
func Validate(p types.UserProfile) error {
	var missing []string
	if p.Name == "" {
		missing = append(missing, "name")
	}
	if p.ExpertiseSummary() == "" {
		missing = append(missing, "expertise")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrIncomplete, strings.Join(missing, ", "))
	}
	return nil
}

// Sample returns a starter profile written by the init target.
func Sample() types.UserProfile {
	return types.UserProfile{
		Name:        "Your Name",
		Email:       "you@example.edu",
		Affiliation: "Your University",
		Identity:    "PhD researcher working on machine learning systems",
		Expertise: []types.Expertise{
			{Domain: "Machine Learning", Focus: "representation learning"},
			{Domain: "Natural Language Processing", Focus: "evaluation"},
		},
		Publications: []string{
			"A paper title, Venue 2025",
		},
	}
}

// Marshal renders a profile as YAML.
func Marshal(p types.UserProfile) ([]byte, error) {
	return yaml.Marshal(&p)
}
