// Package capture owns one microphone acquisition per recording attempt:
// the device handle, the in-memory fragment buffer, and the encoded
// payload produced on completion.
package capture

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"voxpense/audio"
	"voxpense/encoder"
)

var (
	ErrPermission        = errors.New("microphone permission denied")
	ErrUnsupportedFormat = errors.New("no audio encoding acceptable to the extraction service")
)

// Payload is the immutable result of one finished recording.
type Payload struct {
	Bytes    []byte
	MIME     string
	Duration time.Duration
}

// Session holds the microphone between Open and the first Stop or
// Release. Fragments delivered by the audio backend are appended to an
// ordered buffer and never read until Stop. The device is released
// exactly once, whichever exit path ends the session first.
type Session struct {
	mu       sync.Mutex
	dev      audio.CaptureDevice
	chunks   [][]byte
	mime     string
	released bool
}

// Open negotiates an encoding against the collaborator's accepted list
// and acquires the microphone. The platform "mic in use" indicator is
// active from here until the session ends.
func Open(ctx audio.Context, dev *audio.DeviceInfo, accepted []string) (*Session, error) {
	mime, err := encoder.Negotiate(accepted)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}

	device, err := ctx.NewCapture(dev, audio.CaptureConfig{
		SampleRate: audio.SampleRate,
		Channels:   audio.Channels,
	})
	if err != nil {
		if errors.Is(err, audio.ErrPermission) {
			return nil, fmt.Errorf("%w: %v", ErrPermission, err)
		}
		return nil, fmt.Errorf("acquiring capture device: %w", err)
	}

	s := &Session{dev: device, mime: mime}
	device.SetCallback(s.append)
	return s, nil
}

// append runs on the audio delivery thread; it must copy the fragment
// because the backend reuses its buffer.
func (s *Session) append(data []byte, _ uint32) {
	chunk := make([]byte, len(data))
	copy(chunk, data)
	s.mu.Lock()
	if !s.released {
		s.chunks = append(s.chunks, chunk)
	}
	s.mu.Unlock()
}

// Start begins fragment delivery. On failure the device is released and
// the session is dead.
func (s *Session) Start() error {
	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		return fmt.Errorf("capture session already ended")
	}
	dev := s.dev
	s.mu.Unlock()

	if err := dev.Start(); err != nil {
		s.Release()
		return fmt.Errorf("starting capture: %w", err)
	}
	return nil
}

// MIME returns the encoding negotiated at acquisition time.
func (s *Session) MIME() string {
	return s.mime
}

// Stop finalizes the recording: the device is released and the
// accumulated fragments are assembled into one payload tagged with the
// negotiated MIME type. An empty recording yields an empty but valid
// payload. Stop after the session has already ended is a no-op.
func (s *Session) Stop() (Payload, error) {
	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		return Payload{}, nil
	}
	chunks := s.chunks
	s.chunks = nil
	s.releaseLocked()
	s.mu.Unlock()

	enc, err := encoder.New(s.mime)
	if err != nil {
		return Payload{}, err
	}

	samples := pcmSamples(chunks)
	for len(samples) > 0 {
		n := min(len(samples), encoder.BlockSize)
		if err := enc.EncodeBlock(samples[:n]); err != nil {
			return Payload{}, err
		}
		samples = samples[n:]
	}
	if err := enc.Close(); err != nil {
		return Payload{}, err
	}

	duration := time.Duration(enc.TotalFrames()) * time.Second / audio.SampleRate
	return Payload{Bytes: enc.Bytes(), MIME: s.mime, Duration: duration}, nil
}

// Release ends the session without producing a payload: the forced
// teardown path. Safe to call any number of times and after Stop.
func (s *Session) Release() {
	s.mu.Lock()
	s.chunks = nil
	s.releaseLocked()
	s.mu.Unlock()
}

// releaseLocked is the single place the device handle is given back.
func (s *Session) releaseLocked() {
	if s.released {
		return
	}
	s.released = true
	s.dev.ClearCallback()
	s.dev.Stop()
	s.dev.Close()
}

func pcmSamples(chunks [][]byte) []int16 {
	total := 0
	for _, c := range chunks {
		total += len(c) / 2
	}
	samples := make([]int16, 0, total)
	for _, c := range chunks {
		for i := 0; i+1 < len(c); i += 2 {
			samples = append(samples, int16(binary.LittleEndian.Uint16(c[i:])))
		}
	}
	return samples
}
