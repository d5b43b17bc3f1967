package audio

import "errors"

// Capture format shared by every backend: 16 kHz mono s16le, the rate the
// extraction service transcribes at.
const (
	SampleRate    = 16000
	Channels      = 1
	BitsPerSample = 16
)

// ErrPermission reports that the user or the OS denied microphone access.
var ErrPermission = errors.New("microphone access denied")

type DataCallback func(data []byte, frameCount uint32)

type CaptureConfig struct {
	SampleRate uint32
	Channels   uint32
}

type DeviceInfo struct {
	ID   string // opaque platform-specific identifier
	Name string
}

// Context enumerates capture devices and opens microphone handles.
type Context interface {
	Devices() ([]DeviceInfo, error)
	NewCapture(device *DeviceInfo, config CaptureConfig) (CaptureDevice, error)
	Close()
}

// CaptureDevice is one acquired microphone handle. Start begins fragment
// delivery to the registered callback; Close releases the device.
type CaptureDevice interface {
	Start() error
	Stop()
	Close()
	SetCallback(cb DataCallback)
	ClearCallback()
}
