// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ledger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTest(t *testing.T) *Ledger {
	t.Helper()
	l, err := Open(filepath.Join(t.TempDir(), "sub", "dispatch.db"))
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func TestRecordAndEntries(t *testing.T) {
	l := openTest(t)
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return fixed }
	ctx := context.Background()

	require.NoError(t, l.Record(ctx, Entry{RunID: "r1", Venue: "A", URL: "a", Recipient: "a@a.org", Mode: "send", Outcome: "sent"}))
	require.NoError(t, l.Record(ctx, Entry{RunID: "r1", Venue: "B", URL: "b", Mode: "send", Outcome: "failed-validation", Detail: "bad address"}))
	require.NoError(t, l.Record(ctx, Entry{RunID: "r2", Venue: "C", URL: "c", Mode: "dry-run", Outcome: "simulated"}))

	got, err := l.Entries(ctx, "r1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Venue)
	assert.Equal(t, "a@a.org", got[0].Recipient)
	assert.True(t, fixed.Equal(got[0].At))
	assert.Equal(t, "bad address", got[1].Detail)

	none, err := l.Entries(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCounts(t *testing.T) {
	l := openTest(t)
	ctx := context.Background()
	for _, o := range []string{"sent", "sent", "failed", "skipped"} {
		require.NoError(t, l.Record(ctx, Entry{RunID: "r", Venue: "v", Mode: "send", Outcome: o}))
	}
	require.NoError(t, l.Record(ctx, Entry{RunID: "other", Venue: "v", Mode: "send", Outcome: "sent"}))

	counts, err := l.Counts(ctx, "r")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"sent": 2, "failed": 1, "skipped": 1}, counts)
}

func TestPreviouslySent(t *testing.T) {
	l := openTest(t)
	ctx := context.Background()
	require.NoError(t, l.Record(ctx, Entry{RunID: "r", Venue: "A", URL: "a", Mode: "send", Outcome: "sent"}))
	require.NoError(t, l.Record(ctx, Entry{RunID: "r", Venue: "B", URL: "b", Mode: "dry-run", Outcome: "simulated"}))

	sent, err := l.PreviouslySent(ctx, "a")
	require.NoError(t, err)
	assert.True(t, sent)

	sent, err = l.PreviouslySent(ctx, "b")
	require.NoError(t, err)
	assert.False(t, sent)
}

func TestReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dispatch.db")
	l, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, l.Record(context.Background(), Entry{RunID: "r", Venue: "A", Mode: "skip", Outcome: "skipped"}))
	require.NoError(t, l.Close())

	l, err = Open(path)
	require.NoError(t, err)
	defer l.Close()
	got, err := l.Entries(context.Background(), "r")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
