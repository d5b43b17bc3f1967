package capture

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"voxpense/audio"
	"voxpense/encoder"
)

func pcmChunk(samples ...int16) []byte {
	buf := make([]byte, 2*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[2*i:], uint16(s))
	}
	return buf
}

func TestSessionHappyPath(t *testing.T) {
	ctx := audio.NewFakeContext()
	s, err := Open(ctx, nil, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s.MIME() != encoder.MIMEFlac {
		t.Errorf("MIME = %q, want %q", s.MIME(), encoder.MIMEFlac)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	dev := ctx.Handle(0)
	dev.Feed(pcmChunk(1, 2, 3))
	dev.Feed(pcmChunk(4, 5))

	p, err := s.Stop()
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if p.MIME != encoder.MIMEFlac {
		t.Errorf("payload MIME = %q", p.MIME)
	}
	if !bytes.HasPrefix(p.Bytes, []byte("fLaC")) {
		t.Error("payload is not flac-encoded")
	}
	if ctx.Acquired() != 1 || ctx.Released() != 1 {
		t.Errorf("acquired=%d released=%d, want 1/1", ctx.Acquired(), ctx.Released())
	}
}

func TestSessionWavNegotiation(t *testing.T) {
	ctx := audio.NewFakeContext()
	s, err := Open(ctx, nil, []string{encoder.MIMEWav})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	ctx.Handle(0).Feed(pcmChunk(7, 8))

	p, err := s.Stop()
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if p.MIME != encoder.MIMEWav {
		t.Errorf("payload MIME = %q, want %q", p.MIME, encoder.MIMEWav)
	}
	if !bytes.HasPrefix(p.Bytes, []byte("RIFF")) {
		t.Error("payload is not a wav container")
	}
}

func TestOpenPermissionDenied(t *testing.T) {
	ctx := audio.NewFakeContext()
	ctx.DenyPermission = true
	if _, err := Open(ctx, nil, nil); !errors.Is(err, ErrPermission) {
		t.Fatalf("expected ErrPermission, got %v", err)
	}
	if ctx.Acquired() != 0 {
		t.Error("device must not be acquired on permission denial")
	}
}

func TestOpenNoCommonFormat(t *testing.T) {
	ctx := audio.NewFakeContext()
	if _, err := Open(ctx, nil, []string{"audio/ogg"}); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if ctx.Acquired() != 0 {
		t.Error("device must not be acquired when negotiation fails")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	ctx := audio.NewFakeContext()
	s, err := Open(ctx, nil, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := s.Stop(); err != nil {
		t.Fatalf("first Stop: %v", err)
	}
	if _, err := s.Stop(); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
	if ctx.Released() != 1 {
		t.Errorf("released %d times, want exactly once", ctx.Released())
	}
}

// Every order of session-ending events must release the device exactly
// once; this is the invariant the whole subsystem leans on.
func TestReleaseExactlyOnce(t *testing.T) {
	sequences := [][]string{
		{"stop", "release"},
		{"release", "stop"},
		{"stop", "stop", "release"},
		{"release", "release"},
		{"start", "stop", "release", "stop"},
		{"start", "release", "stop", "release"},
	}
	for _, seq := range sequences {
		t.Run(joinSeq(seq), func(t *testing.T) {
			ctx := audio.NewFakeContext()
			s, err := Open(ctx, nil, nil)
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			for _, ev := range seq {
				switch ev {
				case "start":
					if err := s.Start(); err != nil {
						t.Fatalf("Start: %v", err)
					}
				case "stop":
					if _, err := s.Stop(); err != nil {
						t.Fatalf("Stop: %v", err)
					}
				case "release":
					s.Release()
				}
			}
			if ctx.Released() != 1 {
				t.Errorf("sequence %v released %d times", seq, ctx.Released())
			}
		})
	}
}

func TestEmptyRecording(t *testing.T) {
	ctx := audio.NewFakeContext()
	s, err := Open(ctx, nil, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	p, err := s.Stop()
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if p.MIME != encoder.MIMEFlac {
		t.Errorf("MIME = %q", p.MIME)
	}
	if p.Duration != 0 {
		t.Errorf("Duration = %v, want 0", p.Duration)
	}
}

func TestFragmentsAfterReleaseDropped(t *testing.T) {
	ctx := audio.NewFakeContext()
	s, err := Open(ctx, nil, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	s.Release()
	// the fake drops fragments once stopped, and the session guards too
	ctx.Handle(0).Feed(pcmChunk(1))
	s.append(pcmChunk(2), 1)
	s.mu.Lock()
	n := len(s.chunks)
	s.mu.Unlock()
	if n != 0 {
		t.Errorf("buffer grew after release: %d chunks", n)
	}
}

func joinSeq(seq []string) string {
	out := ""
	for i, s := range seq {
		if i > 0 {
			out += "-"
		}
		out += s
	}
	return out
}
