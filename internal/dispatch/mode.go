// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dispatch

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Mode selects what the dispatcher does with eligible records.
type Mode string

const (
	ModeSend   Mode = "send"
	ModeDryRun Mode = "dry-run"
	ModeSkip   Mode = "skip"
)

// Modes lists the accepted tokens in prompt order.
var Modes = []Mode{ModeSend, ModeDryRun, ModeSkip}

// ParseMode accepts exactly one of the mode tokens.
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes {
		if s == string(m) {
			return m, nil
		}
	}
	return "", fmt.Errorf("invalid mode %q: want send, dry-run, or skip", s)
}

// PromptMode asks the operator for a mode until a valid token is entered.
// Surrounding whitespace is ignored; anything else re-prompts. End of input
// selects ModeSkip so an unattended run never transmits.
func PromptMode(in io.Reader, out io.Writer) Mode {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "Dispatch mode [send / dry-run / skip]: ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return ModeSkip
		}
		m, err := ParseMode(strings.TrimSpace(scanner.Text()))
		if err == nil {
			return m
		}
		fmt.Fprintln(out, err)
	}
}
