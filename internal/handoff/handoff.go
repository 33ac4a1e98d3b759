// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package handoff reads and writes the CSV files that carry records from one
// phase to the next. Every write regenerates the whole file through a temp file
// and a rename, so a crashed phase never leaves a half-written hand-off behind.
// Row order is preserved in both directions.
package handoff

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/reviewer-outreach/pkg/types"
)

// Column layouts for each hand-off file.
var (
	ListingColumns  = []string{"name", "url", "email"}
	ResearchColumns = []string{"name", "url", "email", "topics", "highlights"}
	DraftColumns    = []string{"name", "url", "email", "topics", "highlights", "subject", "body"}
)

// TopicSeparator joins topics inside the single topics column.
const TopicSeparator = ", "

// ErrMissingColumn is returned when a hand-off file lacks a required header.
var ErrMissingColumn = errors.New("missing column")

// WriteListings writes the listings file.
func WriteListings(path string, records []types.ListingRecord) error {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{r.Name, r.URL, r.Email})
	}
	return writeCSV(path, ListingColumns, rows)
}

// ReadListings reads a listings file. Fixes files share the same layout.
func ReadListings(path string) ([]types.ListingRecord, error) {
	var out []types.ListingRecord
	err := readCSV(path, ListingColumns, func(row rowReader) {
		out = append(out, listingFrom(row))
	})
	return out, err
}

// WriteResearch writes the research file.
func WriteResearch(path string, records []types.ResearchedRecord) error {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{r.Name, r.URL, r.Email, JoinTopics(r.Topics), r.Highlights})
	}
	return writeCSV(path, ResearchColumns, rows)
}

// ReadResearch reads a research file.
func ReadResearch(path string) ([]types.ResearchedRecord, error) {
	var out []types.ResearchedRecord
	err := readCSV(path, ResearchColumns, func(row rowReader) {
		out = append(out, researchFrom(row))
	})
	return out, err
}

// WriteDrafts writes the drafts file.
func WriteDrafts(path string, records []types.DraftRecord) error {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{
			r.Name, r.URL, r.Email, JoinTopics(r.Topics), r.Highlights, r.Subject, r.Body,
		})
	}
	return writeCSV(path, DraftColumns, rows)
}

// ReadDrafts reads a drafts file.
func ReadDrafts(path string) ([]types.DraftRecord, error) {
	var out []types.DraftRecord
	err := readCSV(path, DraftColumns, func(row rowReader) {
		out = append(out, types.DraftRecord{
			ResearchedRecord: researchFrom(row),
			Subject:          row.get("subject"),
			Body:             row.get("body"),
		})
	})
	return out, err
}

// JoinTopics renders topics for the CSV column.
func JoinTopics(topics []string) string {
	return strings.Join(topics, TopicSeparator)
}

// SplitTopics parses the CSV topics column. An empty cell yields nil.
func SplitTopics(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func listingFrom(row rowReader) types.ListingRecord {
	return types.ListingRecord{
		Name:  row.get("name"),
		URL:   row.get("url"),
		Email: row.get("email"),
	}
}

func researchFrom(row rowReader) types.ResearchedRecord {
	return types.ResearchedRecord{
		ListingRecord: listingFrom(row),
		Topics:        SplitTopics(row.get("topics")),
		Highlights:    row.get("highlights"),
	}
}

// rowReader looks cells up by header name so column order in hand-edited files
// does not matter.
type rowReader struct {
	index  map[string]int
	fields []string
}

func (r rowReader) get(col string) string {
	i, ok := r.index[col]
	if !ok || i >= len(r.fields) {
		return ""
	}
	return strings.TrimSpace(r.fields[i])
}

func readCSV(path string, required []string, fn func(rowReader)) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading header of %s: %w", path, err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, col := range required {
		if _, ok := index[col]; !ok {
			return fmt.Errorf("%s: %w %q", path, ErrMissingColumn, col)
		}
	}

	for line := 2; ; line++ {
		fields, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading %s line %d: %w", path, line, err)
		}
		fn(rowReader{index: index, fields: fields})
	}
}

func writeCSV(path string, header []string, rows [][]string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmpFile, err := os.CreateTemp(dir, ".handoff-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	cw := csv.NewWriter(tmpFile)
	writeErr := cw.Write(header)
	if writeErr == nil {
		writeErr = cw.WriteAll(rows)
	}
	closeErr := tmpFile.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", path, writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
