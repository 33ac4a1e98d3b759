// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strings"
)

// Expertise pairs a research domain with the user's focus inside it.
type Expertise struct {
	Domain string `json:"domain" yaml:"domain"`
	Focus  string `json:"focus" yaml:"focus"`
}

// String renders the pair as "domain (focus)".
func (e Expertise) String() string {
	if e.Focus == "" {
		return e.Domain
	}
	return fmt.Sprintf("%s (%s)", e.Domain, e.Focus)
}

// UserProfile is the static description of the person offering to review.
// It is loaded once per run and never modified.
type UserProfile struct {
	// Name is the user's display name, used in the prompt and default signature.
	Name string `json:"name" yaml:"name"`

	// Email is the sender address.
	Email string `json:"email" yaml:"email"`

	// Affiliation is the user's institution.
	Affiliation string `json:"affiliation" yaml:"affiliation"`

	// Identity is a free-text sentence describing the user's role.
	Identity string `json:"identity,omitempty" yaml:"identity,omitempty"`

	// Signature overrides the default "Best regards" sign-off.
	Signature string `json:"signature,omitempty" yaml:"signature,omitempty"`

	// Expertise lists domains and focus areas.
	Expertise []Expertise `json:"expertise" yaml:"expertise"`

	// Publications summarises relevant prior work.
	Publications []string `json:"publications" yaml:"publications"`
}

// ExpertiseSummary joins all expertise entries with ", ".
func (p UserProfile) ExpertiseSummary() string {
	parts := make([]string, 0, len(p.Expertise))
	for _, e := range p.Expertise {
		if e.Domain == "" && e.Focus == "" {
			continue
		}
		parts = append(parts, e.String())
	}
	return strings.Join(parts, ", ")
}

// SignOff returns the signature appended to every drafted message.
func (p UserProfile) SignOff() string {
	if s := strings.TrimSpace(p.Signature); s != "" {
		return s
	}
	name := p.Name
	if name == "" {
		name = "the researcher"
	}
	return "Best regards,\n" + name
}
