package encoder

import (
	"errors"
	"fmt"
	"slices"
)

const (
	SampleRate    = 16000
	Channels      = 1
	BitsPerSample = 16
	BlockSize     = 4096
)

const (
	MIMEFlac = "audio/flac"
	MIMEWav  = "audio/wav"
)

// preferred is the capability-probe order: the first entry the
// collaborator also accepts wins the negotiation.
var preferred = []string{MIMEFlac, MIMEWav}

var ErrNoSupportedFormat = errors.New("no supported audio encoding")

type Encoder interface {
	EncodeBlock(block []int16) error
	Close() error
	Bytes() []byte
	TotalFrames() uint64
}

// Preferred returns the probe order of encodings this build can produce.
func Preferred() []string {
	return slices.Clone(preferred)
}

// Known reports whether mime names an encoding this build can produce.
func Known(mime string) bool {
	return slices.Contains(preferred, mime)
}

// Negotiate picks the first locally-supported encoding the collaborator
// accepts. An empty accepted list means the collaborator takes anything.
func Negotiate(accepted []string) (string, error) {
	if len(accepted) == 0 {
		return preferred[0], nil
	}
	for _, mime := range preferred {
		if slices.Contains(accepted, mime) {
			return mime, nil
		}
	}
	return "", fmt.Errorf("%w: offered %v", ErrNoSupportedFormat, accepted)
}

// New constructs the encoder for a negotiated MIME type.
func New(mime string) (Encoder, error) {
	switch mime {
	case MIMEFlac:
		return NewFlac()
	case MIMEWav:
		return NewWav(), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrNoSupportedFormat, mime)
}
