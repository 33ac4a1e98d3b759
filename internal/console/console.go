// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package console renders the operator-facing parts of a run: phase banners,
// the dispatch preview, and the closing summary.
package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pdiddy/reviewer-outreach/internal/dispatch"
)

var (
	accent = lipgloss.Color("#8BC34A")
	muted  = lipgloss.Color("#8A8F98")
	warn   = lipgloss.Color("#E5A50A")

	bannerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(muted)

	labelStyle   = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(muted)
	warnStyle    = lipgloss.NewStyle().Bold(true).Foreground(warn)
	previewStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(muted).
			Padding(0, 1)
)

// Banner prints a phase heading such as "Phase 2/4: Enrich".
func Banner(w io.Writer, title string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, bannerStyle.Render(title))
}

// Preview prints the records about to be dispatched.
func Preview(w io.Writer, p dispatch.Preview) {
	Banner(w, "Dispatch preview")
	fmt.Fprintf(w, "%s %d   %s %d\n",
		labelStyle.Render("eligible:"), p.Eligible,
		labelStyle.Render("no match (never sent):"), p.NoMatch)

	for i, item := range p.Items {
		var b strings.Builder
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render(fmt.Sprintf("%d.", i+1)), item.Name)
		fmt.Fprintf(&b, "%s %s\n", mutedStyle.Render("to:     "), orMissing(item.To))
		fmt.Fprintf(&b, "%s %s\n", mutedStyle.Render("subject:"), item.Subject)
		fmt.Fprintf(&b, "%s %s", mutedStyle.Render("body:   "), item.Body)
		fmt.Fprintln(w, previewStyle.Render(b.String()))
	}
	if p.Eligible > 0 {
		fmt.Fprintln(w, warnStyle.Render("send transmits real e-mail."))
	}
}

// Row is one line of a summary table.
type Row struct {
	Label string
	Value int
}

// Summary prints aligned counts under a heading.
func Summary(w io.Writer, title string, rows []Row) {
	Banner(w, title)
	width := 0
	for _, r := range rows {
		if len(r.Label) > width {
			width = len(r.Label)
		}
	}
	for _, r := range rows {
		fmt.Fprintf(w, "  %s %d\n", labelStyle.Render(fmt.Sprintf("%-*s", width+1, r.Label+":")), r.Value)
	}
}

func orMissing(s string) string {
	if strings.TrimSpace(s) == "" {
		return warnStyle.Render("(no address)")
	}
	return s
}
