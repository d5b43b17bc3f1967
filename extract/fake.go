package extract

import (
	"context"
	"sync"

	"voxpense/capture"
)

// Fake is a scripted extractor for tests and the offline demo mode. When
// Gate is non-nil, Extract blocks until the gate channel is closed, which
// lets tests decide when the collaborator's response "arrives".
type Fake struct {
	Result *Result
	Err    error
	Gate   chan struct{}

	mu    sync.Mutex
	calls []Call
}

type Call struct {
	Payload  capture.Payload
	Language string
}

func (f *Fake) Name() string { return "fake" }

func (f *Fake) Extract(ctx context.Context, p capture.Payload, lang string) (*Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, Call{Payload: p, Language: lang})
	f.mu.Unlock()

	if f.Gate != nil {
		select {
		case <-f.Gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.Err != nil {
		return nil, f.Err
	}
	r := *f.Result
	return &r, nil
}

// Calls returns a copy of every submission the fake has seen.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}
