// Package expense defines the confirmation draft and the persistence
// collaborator that turns a confirmed draft into a stored transaction.
package expense

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrAmountNotPositive = errors.New("amount must be greater than zero")
	ErrMerchantEmpty     = errors.New("merchant must not be empty")
)

// Draft is the editable, detached snapshot of extracted expense fields
// awaiting user approval. TranscribedText is display-only and is never
// submitted to the store.
type Draft struct {
	Amount          float64
	Merchant        string
	Category        string
	TranscribedText string
}

// Validate is the cheap client-side check before submission; the store
// remains the authority.
func (d Draft) Validate() error {
	if d.Amount <= 0 {
		return ErrAmountNotPositive
	}
	if d.Merchant == "" {
		return ErrMerchantEmpty
	}
	return nil
}

// Record is exactly what the persistence collaborator receives.
type Record struct {
	Amount   float64 `json:"amount"`
	Merchant string  `json:"merchant"`
	Category string  `json:"category"`
}

// Saved is the persisted transaction acknowledgement.
type Saved struct {
	ID       string  `json:"id"`
	Amount   float64 `json:"amount"`
	Merchant string  `json:"merchant"`
	Category string  `json:"category"`
}

// ValidationError is a field-addressed rejection from the store. The
// draft that produced it stays alive so the user can fix the field and
// resubmit without re-recording.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type Store interface {
	Create(ctx context.Context, r Record) (Saved, error)
}
