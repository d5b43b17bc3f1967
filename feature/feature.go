// Package feature is the read-only gate in front of the voice flow.
package feature

import "context"

// Flags are the two booleans that must both be true before the capture
// surface may be entered.
type Flags struct {
	Premium      bool
	VoiceEnabled bool
}

func (f Flags) Eligible() bool {
	return f.Premium && f.VoiceEnabled
}

// Gate reads the current flags. Implementations may hit a remote
// preference store; callers treat a read error as "not eligible".
type Gate interface {
	Flags(ctx context.Context) (Flags, error)
}

// Static is a fixed gate for wiring and tests.
type Static struct {
	F Flags
}

func (s Static) Flags(context.Context) (Flags, error) {
	return s.F, nil
}

// GateFunc adapts a function to the Gate interface.
type GateFunc func(ctx context.Context) (Flags, error)

func (fn GateFunc) Flags(ctx context.Context) (Flags, error) {
	return fn(ctx)
}
