// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package contacts lets an operator repair the contact addresses the collector
// could not find. Records without an address are exported to a fixes file,
// edited by hand, and merged back into the listings file.
package contacts

import (
	"strings"

	"github.com/pdiddy/reviewer-outreach/internal/handoff"
	"github.com/pdiddy/reviewer-outreach/pkg/types"
)

// Merge fills addresses from fixes. A fix matches by URL first and then by
// case-insensitive name; fixes without an address are ignored. Records are
// returned in their original order with the number of addresses changed.
func Merge(records, fixes []types.ListingRecord) ([]types.ListingRecord, int) {
	byURL := make(map[string]string)
	byName := make(map[string]string)
	for _, f := range fixes {
		email := strings.TrimSpace(f.Email)
		if email == "" {
			continue
		}
		if u := strings.TrimSpace(f.URL); u != "" {
			byURL[u] = email
		}
		if n := strings.ToLower(strings.TrimSpace(f.Name)); n != "" {
			byName[n] = email
		}
	}

	out := make([]types.ListingRecord, len(records))
	updated := 0
	for i, r := range records {
		email, ok := byURL[strings.TrimSpace(r.URL)]
		if !ok {
			email, ok = byName[strings.ToLower(strings.TrimSpace(r.Name))]
		}
		if ok && email != r.Email {
			r.Email = email
			updated++
		}
		out[i] = r
	}
	return out, updated
}

// Missing returns the records that have no contact address.
func Missing(records []types.ListingRecord) []types.ListingRecord {
	var out []types.ListingRecord
	for _, r := range records {
		if !r.HasEmail() {
			out = append(out, r)
		}
	}
	return out
}

// MergeFile applies the fixes file to the listings file in place.
func MergeFile(listingsPath, fixesPath string) (int, error) {
	records, err := handoff.ReadListings(listingsPath)
	if err != nil {
		return 0, err
	}
	fixes, err := handoff.ReadListings(fixesPath)
	if err != nil {
		return 0, err
	}
	merged, updated := Merge(records, fixes)
	if err := handoff.WriteListings(listingsPath, merged); err != nil {
		return 0, err
	}
	return updated, nil
}

// ExportMissing writes the address-less records of the listings file to outPath.
func ExportMissing(listingsPath, outPath string) (int, error) {
	records, err := handoff.ReadListings(listingsPath)
	if err != nil {
		return 0, err
	}
	missing := Missing(records)
	if err := handoff.WriteListings(outPath, missing); err != nil {
		return 0, err
	}
	return len(missing), nil
}
