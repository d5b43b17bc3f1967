package recorder

// State is the recording controller's lifecycle. The microphone device is
// held open if and only if the state is StateRecording.
type State int

const (
	StateIdle State = iota
	StatePermissionDenied
	StateRecording
	StateProcessing
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePermissionDenied:
		return "permission_denied"
	case StateRecording:
		return "recording"
	case StateProcessing:
		return "processing"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// FailureKind classifies a terminal flow failure for display.
type FailureKind int

const (
	FailureFormat FailureKind = iota
	FailureTranscription
	FailureTransport
)

func (k FailureKind) String() string {
	switch k {
	case FailureFormat:
		return "format"
	case FailureTranscription:
		return "transcription"
	case FailureTransport:
		return "transport"
	default:
		return "unknown"
	}
}

// Failure pairs a kind with its user-facing message.
type Failure struct {
	Kind    FailureKind
	Message string
}

func failureOf(kind FailureKind, message string) *Failure {
	if message == "" {
		switch kind {
		case FailureFormat:
			message = "Recording failed on this device"
		case FailureTranscription:
			message = "Could not understand the recording"
		case FailureTransport:
			message = "Connection lost, check your network and retry"
		}
	}
	return &Failure{Kind: kind, Message: message}
}
