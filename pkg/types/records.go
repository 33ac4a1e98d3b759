// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the records and settings shared across the outreach pipeline.
// Each phase reads the previous phase's hand-off file into one of these records and
// writes its own.
//
// See docs/ARCHITECTURE.md § Hand-off Files.
package types

import (
	"fmt"
	"strings"
)

// NoMatch is the draft body written when the generation service finds no genuine
// overlap between the venue and the user's expertise. Records carrying it are
// never transmitted.
const NoMatch = "NO_MATCH"

// ListingRecord is one venue scraped from the listing page.
type ListingRecord struct {
	// Name is the venue's display name (link text on the listing page).
	Name string `json:"name" yaml:"name"`

	// URL is the absolute URL of the venue page. Unique within a listings file.
	URL string `json:"url" yaml:"url"`

	// Email is the contact address found on the venue page, empty when absent.
	Email string `json:"email,omitempty" yaml:"email,omitempty"`
}

// HasEmail reports whether a contact address was found.
func (r ListingRecord) HasEmail() bool {
	return strings.TrimSpace(r.Email) != ""
}

// ResearchedRecord is a ListingRecord augmented by the research service.
type ResearchedRecord struct {
	ListingRecord `yaml:",inline"`

	// Topics lists the research areas matched in the highlights.
	Topics []string `json:"topics" yaml:"topics"`

	// Highlights is the condensed highlight text, clipped for CSV storage.
	Highlights string `json:"highlights" yaml:"highlights"`
}

// Degraded reports whether enrichment produced nothing for this record.
func (r ResearchedRecord) Degraded() bool {
	return len(r.Topics) == 0 && r.Highlights == ""
}

// DraftRecord is a ResearchedRecord with the drafted message.
type DraftRecord struct {
	ResearchedRecord `yaml:",inline"`

	// Subject is the e-mail subject line.
	Subject string `json:"subject" yaml:"subject"`

	// Body is the drafted message or the NoMatch sentinel.
	Body string `json:"body" yaml:"body"`
}

// IsNoMatch reports whether the record must be excluded from sending.
func (r DraftRecord) IsNoMatch() bool {
	return strings.TrimSpace(r.Body) == NoMatch
}

// SubjectFor returns the subject line used for a venue.
func SubjectFor(venueName string) string {
	return fmt.Sprintf("Reviewer Opportunity - %s", venueName)
}
