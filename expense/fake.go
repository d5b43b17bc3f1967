package expense

import (
	"context"
	"fmt"
	"sync"
)

// FakeStore records every submission and can be scripted to fail.
type FakeStore struct {
	Err error

	mu      sync.Mutex
	records []Record
}

func (f *FakeStore) Create(_ context.Context, r Record) (Saved, error) {
	if f.Err != nil {
		return Saved{}, f.Err
	}
	f.mu.Lock()
	f.records = append(f.records, r)
	id := fmt.Sprintf("exp-%d", len(f.records))
	f.mu.Unlock()
	return Saved{ID: id, Amount: r.Amount, Merchant: r.Merchant, Category: r.Category}, nil
}

// Submitted returns a copy of every record the store has accepted.
func (f *FakeStore) Submitted() []Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Record(nil), f.records...)
}
