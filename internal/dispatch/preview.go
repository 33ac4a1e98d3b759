// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dispatch

import (
	"strings"

	"github.com/pdiddy/reviewer-outreach/pkg/types"
)

// PreviewItem summarises one eligible record for the operator.
type PreviewItem struct {
	Name    string
	To      string
	Subject string
	Body    string
}

// Preview is shown before the mode prompt.
type Preview struct {
	Eligible int
	NoMatch  int
	Items    []PreviewItem
}

// BuildPreview counts eligible and NO_MATCH records and clips each body to
// chars runes, marking clipped bodies with "...".
func BuildPreview(records []types.DraftRecord, chars int) Preview {
	var p Preview
	for _, r := range records {
		if r.IsNoMatch() {
			p.NoMatch++
			continue
		}
		p.Eligible++
		p.Items = append(p.Items, PreviewItem{
			Name:    r.Name,
			To:      r.Email,
			Subject: r.Subject,
			Body:    clip(r.Body, chars),
		})
	}
	return p
}

func clip(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if n <= 0 || len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
