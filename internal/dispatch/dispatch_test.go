// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dispatch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pdiddy/reviewer-outreach/internal/config"
	"github.com/pdiddy/reviewer-outreach/internal/handoff"
	"github.com/pdiddy/reviewer-outreach/internal/ledger"
	"github.com/pdiddy/reviewer-outreach/pkg/types"
)

// fakeTransport records every transmission and can fail selected recipients.
type fakeTransport struct {
	mu    sync.Mutex
	sent  []Message
	times []time.Time
	fail  map[string]error
}

func (f *fakeTransport) Send(_ context.Context, msg Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	f.times = append(f.times, time.Now())
	if err, ok := f.fail[msg.To]; ok {
		return err
	}
	return nil
}

func draft(name, email, body string) types.DraftRecord {
	return types.DraftRecord{
		ResearchedRecord: types.ResearchedRecord{
			ListingRecord: types.ListingRecord{Name: name, URL: "https://x/" + name, Email: email},
		},
		Subject: types.SubjectFor(name),
		Body:    body,
	}
}

func testOptions(tr Transport) Options {
	return Options{
		From:         "me@example.com",
		SendInterval: 10 * time.Millisecond,
		RunID:        "run-1",
		Transport:    tr,
	}
}

func fiveWithThreeNoMatch() []types.DraftRecord {
	return []types.DraftRecord{
		draft("A", "a@a.org", "Hello A"),
		draft("B", "b@b.org", types.NoMatch),
		draft("C", "c@c.org", types.NoMatch),
		draft("D", "d@d.org", "Hello D"),
		draft("E", "e@e.org", types.NoMatch),
	}
}

func TestDispatchNeverSendsNoMatch(t *testing.T) {
	tr := &fakeTransport{}
	d := New(testOptions(tr))

	summary, err := d.Dispatch(context.Background(), fiveWithThreeNoMatch(), ModeSend, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, Summary{Sent: 2, NoMatch: 3}, summary)
	assert.Equal(t, 2, summary.Processed())
	require.Len(t, tr.sent, 2)
	assert.Equal(t, "a@a.org", tr.sent[0].To)
	assert.Equal(t, "d@d.org", tr.sent[1].To)
	for _, m := range tr.sent {
		assert.NotEqual(t, types.NoMatch, m.Body)
		assert.Equal(t, "me@example.com", m.From)
	}
}

func TestDispatchDryRunTransmitsNothing(t *testing.T) {
	tr := &fakeTransport{}
	core, logs := observer.New(zapcore.InfoLevel)
	opts := testOptions(tr)
	opts.Logger = zap.New(core)
	d := New(opts)

	records := []types.DraftRecord{
		draft("A", "a@a.org", "Hello A"),
		draft("B", "b@b.org", "Hello B"),
		draft("C", "c@c.org", "Hello C"),
	}
	var out bytes.Buffer
	summary, err := d.Dispatch(context.Background(), records, ModeDryRun, &out)
	require.NoError(t, err)

	assert.Equal(t, Summary{Simulated: 3}, summary)
	assert.Empty(t, tr.sent)
	assert.Equal(t, 3, logs.FilterMessage("dispatch outcome").FilterField(zap.String("outcome", "simulated")).Len())
	assert.Contains(t, out.String(), "would send")
}

func TestDispatchDryRunProcessesOnlyEligible(t *testing.T) {
	d := New(testOptions(nil))
	summary, err := d.Dispatch(context.Background(), fiveWithThreeNoMatch(), ModeDryRun, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Simulated)
	assert.Equal(t, 2, summary.Processed())
}

func TestDispatchInvalidRecipientContinues(t *testing.T) {
	tr := &fakeTransport{}
	core, logs := observer.New(zapcore.WarnLevel)
	opts := testOptions(tr)
	opts.Logger = zap.New(core)
	d := New(opts)

	records := []types.DraftRecord{
		draft("A", "a@a.org", "Hello A"),
		draft("Bad", "not-an-address", "Hello Bad"),
		draft("Empty", "", "Hello Empty"),
		draft("D", "d@d.org", "Hello D"),
	}
	var out bytes.Buffer
	summary, err := d.Dispatch(context.Background(), records, ModeSend, &out)
	require.NoError(t, err)

	assert.Equal(t, Summary{Sent: 2, Invalid: 2}, summary)
	require.Len(t, tr.sent, 2)
	assert.Equal(t, "d@d.org", tr.sent[1].To)
	assert.Equal(t, 2, logs.FilterField(zap.String("outcome", "failed-validation")).Len())
	assert.Contains(t, out.String(), "failed-validation")
}

func TestDispatchSpacesTransmissions(t *testing.T) {
	tr := &fakeTransport{}
	opts := testOptions(tr)
	opts.SendInterval = 5 * time.Millisecond
	d := New(opts)

	var records []types.DraftRecord
	for i := 0; i < 40; i++ {
		name := fmt.Sprintf("V%d", i)
		records = append(records, draft(name, strings.ToLower(name)+"@v.org", "hello"))
	}
	_, err := d.Dispatch(context.Background(), records, ModeSend, io.Discard)
	require.NoError(t, err)

	require.Len(t, tr.times, len(records))
	for i := 1; i < len(tr.times); i++ {
		assert.GreaterOrEqual(t, tr.times[i].Sub(tr.times[i-1]), opts.SendInterval, "gap before send %d", i)
	}
}

func TestDefaultSendInterval(t *testing.T) {
	d := New(Options{})
	assert.Equal(t, config.DefaultSendInterval, d.interval)
}

func TestPaceCancelled(t *testing.T) {
	d := New(Options{SendInterval: time.Hour})
	d.lastSend = time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, d.pace(ctx), context.DeadlineExceeded)
}

// brokenHistory fails every lookup.
type brokenHistory struct{}

func (brokenHistory) PreviouslySent(context.Context, string) (bool, error) {
	return false, errors.New("database is locked")
}

func TestDispatchLedgerLookupFailureDoesNotSend(t *testing.T) {
	tr := &fakeTransport{}
	opts := testOptions(tr)
	opts.History = brokenHistory{}

	var out bytes.Buffer
	summary, err := New(opts).Dispatch(context.Background(), fiveWithThreeNoMatch(), ModeSend, &out)
	require.NoError(t, err)
	assert.Equal(t, Summary{Failed: 2, NoMatch: 3}, summary)
	assert.Empty(t, tr.sent)
	assert.Contains(t, out.String(), "database is locked")
}

func TestDryRunEncodingFailure(t *testing.T) {
	orig := encodedSize
	encodedSize = func(*mail.Msg) (int64, error) { return 0, errors.New("encode: broken header") }
	t.Cleanup(func() { encodedSize = orig })

	summary, err := New(testOptions(nil)).Dispatch(context.Background(), fiveWithThreeNoMatch(), ModeDryRun, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, Summary{Invalid: 2, NoMatch: 3}, summary)
}

func TestDispatchTransportFailureNoRetry(t *testing.T) {
	tr := &fakeTransport{fail: map[string]error{"a@a.org": errors.New("550 mailbox unavailable")}}
	d := New(testOptions(tr))

	records := []types.DraftRecord{draft("A", "a@a.org", "1"), draft("B", "b@b.org", "2")}
	var out bytes.Buffer
	summary, err := d.Dispatch(context.Background(), records, ModeSend, &out)
	require.NoError(t, err)

	assert.Equal(t, Summary{Sent: 1, Failed: 1}, summary)
	assert.True(t, summary.HasFailures())
	assert.Len(t, tr.sent, 2, "one attempt per record")
	assert.Contains(t, out.String(), "550 mailbox unavailable")
}

func TestDispatchSkipMode(t *testing.T) {
	tr := &fakeTransport{}
	d := New(testOptions(tr))

	summary, err := d.Dispatch(context.Background(), fiveWithThreeNoMatch(), ModeSkip, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, Summary{Skipped: 2, NoMatch: 3}, summary)
	assert.Empty(t, tr.sent)
}

func TestDispatchSendRequiresTransport(t *testing.T) {
	d := New(testOptions(nil))
	_, err := d.Dispatch(context.Background(), fiveWithThreeNoMatch(), ModeSend, io.Discard)
	require.Error(t, err)
}

func TestDispatchCancelled(t *testing.T) {
	tr := &fakeTransport{}
	d := New(testOptions(tr))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.Dispatch(ctx, fiveWithThreeNoMatch(), ModeSend, io.Discard)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, tr.sent)
}

func TestDispatchRecordsLedger(t *testing.T) {
	l, err := ledger.Open(filepath.Join(t.TempDir(), "dispatch.db"))
	require.NoError(t, err)
	defer l.Close()

	opts := testOptions(&fakeTransport{})
	opts.Recorder = l
	d := New(opts)

	records := append(fiveWithThreeNoMatch(), draft("Bad", "oops", "x"))
	_, err = d.Dispatch(context.Background(), records, ModeSend, io.Discard)
	require.NoError(t, err)

	counts, err := l.Counts(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"sent": 2, "no-match": 3, "failed-validation": 1}, counts)
}

func TestDispatchSkipsPreviouslySent(t *testing.T) {
	l, err := ledger.Open(filepath.Join(t.TempDir(), "dispatch.db"))
	require.NoError(t, err)
	defer l.Close()

	first := &fakeTransport{}
	opts := testOptions(first)
	opts.Recorder = l
	opts.History = l
	_, err = New(opts).Dispatch(context.Background(), fiveWithThreeNoMatch()[:1], ModeSend, io.Discard)
	require.NoError(t, err)
	require.Len(t, first.sent, 1)

	second := &fakeTransport{}
	opts.Transport = second
	opts.RunID = "run-2"
	summary, err := New(opts).Dispatch(context.Background(), fiveWithThreeNoMatch(), ModeSend, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, Summary{Sent: 1, NoMatch: 3, Skipped: 1}, summary)
	require.Len(t, second.sent, 1)
	assert.Equal(t, "d@d.org", second.sent[0].To)
}

func TestDispatchFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drafts.csv")
	require.NoError(t, handoff.WriteDrafts(path, fiveWithThreeNoMatch()))

	d := New(testOptions(nil))
	summary, err := d.DispatchFile(context.Background(), path, ModeDryRun, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, Summary{Simulated: 2, NoMatch: 3}, summary)
}

func TestDispatchEmpty(t *testing.T) {
	summary, err := New(testOptions(nil)).Dispatch(context.Background(), nil, ModeDryRun, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Total())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		rec    types.DraftRecord
		errMsg string
	}{
		{"valid", draft("A", "a@a.org", "hi"), ""},
		{"padded address ok", draft("A", " a@a.org ", "hi"), ""},
		{"missing at", draft("A", "a.org", "hi"), "recipient"},
		{"display name rejected", draft("A", "Chair <a@a.org>", "hi"), "not a bare address"},
		{"empty recipient", draft("A", "", "hi"), "no recipient"},
		{"empty body", draft("A", "a@a.org", "  "), "empty body"},
		{"empty name", draft("", "a@a.org", "hi"), "empty venue name"},
		{"empty subject", func() types.DraftRecord { r := draft("A", "a@a.org", "hi"); r.Subject = ""; return r }(), "empty subject"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.rec)
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidRecord))
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestParseMode(t *testing.T) {
	for _, m := range Modes {
		got, err := ParseMode(string(m))
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	for _, s := range []string{"SEND", "dryrun", "yes", ""} {
		_, err := ParseMode(s)
		assert.Error(t, err, s)
	}
}

func TestPromptMode(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Mode
	}{
		{"send", "send\n", ModeSend},
		{"dry-run with whitespace", "  dry-run  \n", ModeDryRun},
		{"re-prompts until valid", "yes\nSEND\nskip\n", ModeSkip},
		{"invalid then send", "go\nsend\n", ModeSend},
		{"end of input selects skip", "", ModeSkip},
		{"invalid then end of input", "maybe\n", ModeSkip},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			assert.Equal(t, tt.want, PromptMode(strings.NewReader(tt.input), &out))
			assert.Contains(t, out.String(), "Dispatch mode")
		})
	}
}

func TestBuildPreview(t *testing.T) {
	records := fiveWithThreeNoMatch()
	records[0].Body = strings.Repeat("word ", 60)

	p := BuildPreview(records, 150)
	assert.Equal(t, 2, p.Eligible)
	assert.Equal(t, 3, p.NoMatch)
	require.Len(t, p.Items, 2)
	assert.Equal(t, 153, len([]rune(p.Items[0].Body)))
	assert.True(t, strings.HasSuffix(p.Items[0].Body, "..."))
	assert.Equal(t, "Hello D", p.Items[1].Body)
}

func TestNewSMTPTransportRequiresCredentials(t *testing.T) {
	_, err := NewSMTPTransport(types.SMTPConfig{Host: "smtp.example.com", Port: 587})
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrMissingCredentials))
	assert.Contains(t, err.Error(), "EMAIL_PASSWORD")

	tr, err := NewSMTPTransport(types.SMTPConfig{Host: "smtp.example.com", Port: 587, Username: "me@example.com", Password: "pw"})
	require.NoError(t, err)
	assert.NotNil(t, tr)
}

func TestBuildMessage(t *testing.T) {
	m, err := BuildMessage(Message{From: "me@example.com", To: "pc@conf.org", Subject: "Reviewer Opportunity - X", Body: "Hi"})
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = m.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Subject: Reviewer Opportunity - X")
	assert.Contains(t, buf.String(), "pc@conf.org")

	_, err = BuildMessage(Message{From: "", To: "pc@conf.org"})
	assert.Error(t, err)
}
