package encoder

import (
	"bytes"
	"testing"
)

func TestNegotiate(t *testing.T) {
	for _, tt := range []struct {
		name     string
		accepted []string
		want     string
		wantErr  bool
	}{
		{"empty list takes preferred", nil, MIMEFlac, false},
		{"flac wins over wav", []string{MIMEWav, MIMEFlac}, MIMEFlac, false},
		{"wav fallback", []string{MIMEWav}, MIMEWav, false},
		{"nothing in common", []string{"audio/ogg"}, "", true},
	} {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Negotiate(tt.accepted)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Negotiate(%v) expected error", tt.accepted)
				}
				return
			}
			if err != nil {
				t.Fatalf("Negotiate(%v): %v", tt.accepted, err)
			}
			if got != tt.want {
				t.Errorf("Negotiate(%v) = %q, want %q", tt.accepted, got, tt.want)
			}
		})
	}
}

func TestNewUnknownFormat(t *testing.T) {
	if _, err := New("audio/ogg"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestKnown(t *testing.T) {
	for _, mime := range Preferred() {
		if !Known(mime) {
			t.Errorf("Known(%q) = false", mime)
		}
	}
	if Known("audio/ogg") {
		t.Error("Known(audio/ogg) = true")
	}
}

func TestFlacEncodeProducesFrames(t *testing.T) {
	enc, err := NewFlac()
	if err != nil {
		t.Fatalf("NewFlac: %v", err)
	}

	block := make([]int16, BlockSize)
	for i := range block {
		block[i] = int16(i % 128)
	}
	if err := enc.EncodeBlock(block); err != nil {
		t.Fatalf("EncodeBlock: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if enc.TotalFrames() != BlockSize {
		t.Errorf("TotalFrames = %d, want %d", enc.TotalFrames(), BlockSize)
	}
	data := enc.Bytes()
	if len(data) == 0 {
		t.Fatal("no encoded output")
	}
	if !bytes.HasPrefix(data, []byte("fLaC")) {
		t.Errorf("output does not start with flac marker: % x", data[:4])
	}
}

func TestWavEncode(t *testing.T) {
	enc := NewWav()
	if err := enc.EncodeBlock([]int16{1, 2, 3, 4}); err != nil {
		t.Fatalf("EncodeBlock: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if enc.TotalFrames() != 4 {
		t.Errorf("TotalFrames = %d, want 4", enc.TotalFrames())
	}
	data := enc.Bytes()
	if !bytes.HasPrefix(data, []byte("RIFF")) {
		t.Fatalf("output is not a RIFF container")
	}
	if err := enc.EncodeBlock([]int16{5}); err == nil {
		t.Error("EncodeBlock after Close should fail")
	}
}

func TestWavEmptyRecordingStillValid(t *testing.T) {
	enc := NewWav()
	if err := enc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !bytes.HasPrefix(enc.Bytes(), []byte("RIFF")) {
		t.Error("empty recording should still produce a RIFF header")
	}
}
