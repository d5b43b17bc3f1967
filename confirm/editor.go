// Package confirm is the short-lived editor between extraction and
// persistence: the user corrects machine-extracted fields before they
// become a financial record.
package confirm

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"voxpense/bus"
	"voxpense/expense"
	"voxpense/log"
)

var ErrDone = errors.New("editor already finished")

// Editor wraps one confirmation draft. Field edits are independent and
// local; nothing is re-fetched. The draft survives a failed submission so
// the user can fix a field and resubmit without re-recording.
type Editor struct {
	store expense.Store
	bus   *bus.Bus
	draft expense.Draft
	done  bool
}

func NewEditor(d expense.Draft, store expense.Store, b *bus.Bus) *Editor {
	return &Editor{store: store, bus: b, draft: d}
}

// Draft returns the current edited snapshot.
func (e *Editor) Draft() expense.Draft {
	return e.draft
}

// SetAmount parses and applies an edited amount.
func (e *Editor) SetAmount(text string) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return fmt.Errorf("malformed amount %q", text)
	}
	if v <= 0 {
		return expense.ErrAmountNotPositive
	}
	e.draft.Amount = v
	return nil
}

func (e *Editor) SetMerchant(text string) {
	e.draft.Merchant = strings.TrimSpace(text)
}

// SetCategory applies an edited category; categories are freeform here,
// the store owns the taxonomy. An empty edit keeps the extracted value.
func (e *Editor) SetCategory(text string) {
	if t := strings.TrimSpace(text); t != "" {
		e.draft.Category = t
	}
}

// Confirm validates and submits the edited draft. On success the draft is
// discarded and the refresh broadcast fires; on any error the draft and
// its edits are preserved. TranscribedText never leaves the editor.
func (e *Editor) Confirm(ctx context.Context) (expense.Saved, error) {
	if e.done {
		return expense.Saved{}, ErrDone
	}
	if err := e.draft.Validate(); err != nil {
		return expense.Saved{}, err
	}

	saved, err := e.store.Create(ctx, expense.Record{
		Amount:   e.draft.Amount,
		Merchant: e.draft.Merchant,
		Category: e.draft.Category,
	})
	if err != nil {
		return expense.Saved{}, err
	}

	e.done = true
	log.ExpenseSaved(saved.ID, saved.Amount)
	if e.bus != nil {
		e.bus.Publish(bus.ExpenseRecorded{
			ID:       saved.ID,
			Amount:   saved.Amount,
			Merchant: saved.Merchant,
			Category: saved.Category,
		})
	}
	return saved, nil
}

// Cancel discards the draft.
func (e *Editor) Cancel() {
	e.done = true
	e.draft = expense.Draft{}
}

// Done reports whether the editor has been confirmed or cancelled.
func (e *Editor) Done() bool {
	return e.done
}
