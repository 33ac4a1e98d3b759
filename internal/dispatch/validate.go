// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dispatch

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/pdiddy/reviewer-outreach/pkg/types"
)

// ErrInvalidRecord wraps every validation failure.
var ErrInvalidRecord = errors.New("invalid record")

// Validate checks that a record can be turned into a message: the recipient
// must be a bare address and the name, subject, and body must be present.
func Validate(rec types.DraftRecord) error {
	if strings.TrimSpace(rec.Name) == "" {
		return fmt.Errorf("%w: empty venue name", ErrInvalidRecord)
	}
	if strings.TrimSpace(rec.Subject) == "" {
		return fmt.Errorf("%w: empty subject", ErrInvalidRecord)
	}
	if strings.TrimSpace(rec.Body) == "" {
		return fmt.Errorf("%w: empty body", ErrInvalidRecord)
	}

	to := strings.TrimSpace(rec.Email)
	if to == "" {
		return fmt.Errorf("%w: no recipient address", ErrInvalidRecord)
	}
	addr, err := mail.ParseAddress(to)
	if err != nil {
		return fmt.Errorf("%w: recipient %q: %v", ErrInvalidRecord, to, err)
	}
	if addr.Address != to {
		return fmt.Errorf("%w: recipient %q is not a bare address", ErrInvalidRecord, to)
	}
	return nil
}
