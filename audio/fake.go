package audio

import (
	"fmt"
	"sync"
	"time"
)

const (
	fakeFrameSize     = 1024
	fakeBytesPerFrame = 2 // 16-bit mono
)

// FakeContext is an in-memory audio backend. Tests script fragment
// delivery through FakeCapture.Feed and check the acquire/release
// counters; the demo mode feeds silence automatically.
type FakeContext struct {
	DenyPermission bool // NewCapture fails with ErrPermission
	OpenErr        error
	AutoFeed       bool // feed silence fragments while started

	mu      sync.Mutex
	handles []*FakeCapture
}

func NewFakeContext() *FakeContext {
	return &FakeContext{}
}

func (f *FakeContext) Devices() ([]DeviceInfo, error) {
	return []DeviceInfo{{ID: "fake-0", Name: "fake microphone"}}, nil
}

func (f *FakeContext) NewCapture(_ *DeviceInfo, _ CaptureConfig) (CaptureDevice, error) {
	if f.DenyPermission {
		return nil, fmt.Errorf("%w: denied by fake backend", ErrPermission)
	}
	if f.OpenErr != nil {
		return nil, f.OpenErr
	}
	c := &FakeCapture{autoFeed: f.AutoFeed}
	f.mu.Lock()
	f.handles = append(f.handles, c)
	f.mu.Unlock()
	return c, nil
}

func (f *FakeContext) Close() {}

// Acquired reports how many device handles were ever opened.
func (f *FakeContext) Acquired() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.handles)
}

// Released reports the total number of Close calls across all handles.
// A leak-free flow keeps Released equal to Acquired once idle; a value
// above Acquired means a double release.
func (f *FakeContext) Released() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, h := range f.handles {
		n += h.closes()
	}
	return n
}

// Handle returns the i-th opened capture handle.
func (f *FakeContext) Handle(i int) *FakeCapture {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.handles[i]
}

type FakeCapture struct {
	autoFeed bool

	mu       sync.Mutex
	cb       DataCallback
	started  bool
	closed   int
	stopFeed chan struct{}
}

func (c *FakeCapture) Start() error {
	c.mu.Lock()
	c.started = true
	if c.autoFeed && c.stopFeed == nil {
		c.stopFeed = make(chan struct{})
		go c.feedSilence(c.stopFeed)
	}
	c.mu.Unlock()
	return nil
}

func (c *FakeCapture) Stop() {
	c.mu.Lock()
	c.started = false
	if c.stopFeed != nil {
		close(c.stopFeed)
		c.stopFeed = nil
	}
	c.mu.Unlock()
}

func (c *FakeCapture) Close() {
	c.Stop()
	c.mu.Lock()
	c.closed++
	c.mu.Unlock()
}

func (c *FakeCapture) SetCallback(cb DataCallback) {
	c.mu.Lock()
	c.cb = cb
	c.mu.Unlock()
}

func (c *FakeCapture) ClearCallback() {
	c.mu.Lock()
	c.cb = nil
	c.mu.Unlock()
}

// Feed delivers one scripted PCM fragment, as the OS audio thread would.
// Fragments sent while the device is not started are dropped.
func (c *FakeCapture) Feed(data []byte) {
	c.mu.Lock()
	cb := c.cb
	started := c.started
	c.mu.Unlock()
	if started && cb != nil {
		cb(data, uint32(len(data)/fakeBytesPerFrame))
	}
}

// Started reports whether delivery is currently active.
func (c *FakeCapture) Started() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.started
}

func (c *FakeCapture) closes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *FakeCapture) feedSilence(stop chan struct{}) {
	silence := make([]byte, fakeFrameSize*fakeBytesPerFrame)
	interval := time.Duration(fakeFrameSize) * time.Second / SampleRate
	for {
		select {
		case <-stop:
			return
		case <-time.After(interval):
			c.Feed(silence)
		}
	}
}
