package encoder

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/youpy/go-wav"
)

// WavEncoder is the uncompressed fallback when the collaborator does not
// accept FLAC. The RIFF header needs the sample count up front, so frames
// are buffered and the container is written at Close.
type WavEncoder struct {
	mu      sync.Mutex
	samples []wav.Sample
	buf     bytes.Buffer
	closed  bool
}

func NewWav() *WavEncoder {
	return &WavEncoder{}
}

func (e *WavEncoder) EncodeBlock(block []int16) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return fmt.Errorf("wav encoder already closed")
	}
	for _, s := range block {
		e.samples = append(e.samples, wav.Sample{Values: [2]int{int(s), 0}})
	}
	return nil
}

func (e *WavEncoder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	w := wav.NewWriter(&e.buf, uint32(len(e.samples)), Channels, SampleRate, BitsPerSample)
	if err := w.WriteSamples(e.samples); err != nil {
		return fmt.Errorf("writing wav samples: %w", err)
	}
	return nil
}

func (e *WavEncoder) Bytes() []byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.buf.Bytes()
}

func (e *WavEncoder) TotalFrames() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return uint64(len(e.samples))
}
