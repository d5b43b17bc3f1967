package confirm

import (
	"context"
	"errors"
	"testing"
	"time"

	"voxpense/bus"
	"voxpense/expense"
)

func sampleDraft() expense.Draft {
	return expense.Draft{
		Amount:          12.5,
		Merchant:        "Taxi",
		Category:        "Nəqliyyat",
		TranscribedText: "12 manat yarım taksi",
	}
}

func TestEditAndConfirm(t *testing.T) {
	store := &expense.FakeStore{}
	e := NewEditor(sampleDraft(), store, nil)

	if err := e.SetAmount("15"); err != nil {
		t.Fatalf("SetAmount: %v", err)
	}
	saved, err := e.Confirm(context.Background())
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if saved.ID == "" {
		t.Error("no id on saved expense")
	}

	got := store.Submitted()
	if len(got) != 1 {
		t.Fatalf("store received %d records", len(got))
	}
	want := expense.Record{Amount: 15, Merchant: "Taxi", Category: "Nəqliyyat"}
	if got[0] != want {
		t.Errorf("submitted %+v, want %+v (untouched fields must pass through exactly)", got[0], want)
	}
}

func TestSetAmount(t *testing.T) {
	for _, tt := range []struct {
		name    string
		text    string
		wantErr bool
	}{
		{"plain", "10", false},
		{"decimal", "12.50", false},
		{"padded", "  3.5 ", false},
		{"zero", "0", true},
		{"negative", "-4", true},
		{"words", "ten", true},
		{"empty", "", true},
	} {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEditor(sampleDraft(), &expense.FakeStore{}, nil)
			err := e.SetAmount(tt.text)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("SetAmount(%q) expected error", tt.text)
				}
				if e.Draft().Amount != 12.5 {
					t.Error("rejected edit must not change the draft")
				}
				return
			}
			if err != nil {
				t.Fatalf("SetAmount(%q): %v", tt.text, err)
			}
		})
	}
}

func TestSetCategoryEmptyKeepsExtracted(t *testing.T) {
	e := NewEditor(sampleDraft(), &expense.FakeStore{}, nil)
	e.SetCategory("  ")
	if e.Draft().Category != "Nəqliyyat" {
		t.Errorf("category = %q, want the extracted value", e.Draft().Category)
	}
	e.SetCategory("Kafe")
	if e.Draft().Category != "Kafe" {
		t.Errorf("category = %q, want Kafe", e.Draft().Category)
	}
}

func TestConfirmLocalValidation(t *testing.T) {
	store := &expense.FakeStore{}
	d := sampleDraft()
	d.Merchant = ""
	e := NewEditor(d, store, nil)

	if _, err := e.Confirm(context.Background()); !errors.Is(err, expense.ErrMerchantEmpty) {
		t.Fatalf("Confirm = %v, want ErrMerchantEmpty", err)
	}
	if len(store.Submitted()) != 0 {
		t.Error("invalid draft must not reach the store")
	}
	if e.Done() {
		t.Error("editor must stay open after local rejection")
	}
}

func TestStoreRejectionPreservesDraft(t *testing.T) {
	store := &expense.FakeStore{Err: &expense.ValidationError{Field: "category", Message: "unknown category"}}
	e := NewEditor(sampleDraft(), store, nil)
	if err := e.SetAmount("20"); err != nil {
		t.Fatalf("SetAmount: %v", err)
	}

	_, err := e.Confirm(context.Background())
	var ve *expense.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("Confirm = %v, want ValidationError", err)
	}
	if e.Done() {
		t.Fatal("editor closed on store rejection")
	}
	if e.Draft().Amount != 20 {
		t.Error("edits lost on store rejection")
	}

	// fix and resubmit on the same editor
	store.Err = nil
	e.SetCategory("Taksi")
	if _, err := e.Confirm(context.Background()); err != nil {
		t.Fatalf("resubmit: %v", err)
	}
}

func TestConfirmPublishesRefresh(t *testing.T) {
	b := bus.New()
	sub := b.Subscribe()
	e := NewEditor(sampleDraft(), &expense.FakeStore{}, b)

	saved, err := e.Confirm(context.Background())
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	select {
	case ev := <-sub:
		if ev.ID != saved.ID || ev.Amount != 12.5 || ev.Merchant != "Taxi" {
			t.Errorf("event = %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("no refresh broadcast after confirm")
	}
}

func TestConfirmIsOneShot(t *testing.T) {
	e := NewEditor(sampleDraft(), &expense.FakeStore{}, nil)
	if _, err := e.Confirm(context.Background()); err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if _, err := e.Confirm(context.Background()); !errors.Is(err, ErrDone) {
		t.Fatalf("second Confirm = %v, want ErrDone", err)
	}
}

func TestCancel(t *testing.T) {
	store := &expense.FakeStore{}
	e := NewEditor(sampleDraft(), store, nil)
	e.Cancel()
	if !e.Done() {
		t.Error("Cancel must finish the editor")
	}
	if _, err := e.Confirm(context.Background()); !errors.Is(err, ErrDone) {
		t.Fatalf("Confirm after Cancel = %v, want ErrDone", err)
	}
	if len(store.Submitted()) != 0 {
		t.Error("cancelled draft reached the store")
	}
}
