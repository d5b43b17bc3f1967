// Package recorder drives the voice capture flow: a state machine that
// gates entry on feature flags, owns at most one live capture session,
// submits the finished payload for extraction and hands a confirmation
// draft to the editor. Closing the surface is a legal transition from
// every state, and a late extraction response for an abandoned attempt is
// dropped rather than resurrecting the flow.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"voxpense/audio"
	"voxpense/capture"
	"voxpense/expense"
	"voxpense/extract"
	"voxpense/feature"
	"voxpense/log"
)

var (
	ErrBusy            = errors.New("a capture attempt is already in flight")
	ErrSurfaceClosed   = errors.New("capture surface is not open")
	ErrNotRecording    = errors.New("no recording in progress")
	ErrUpgradeRequired = errors.New("voice capture requires a premium subscription")
	ErrVoiceDisabled   = errors.New("voice capture is disabled in preferences")
)

// Config wires the controller's collaborators.
type Config struct {
	Audio     audio.Context
	Device    *audio.DeviceInfo
	Extractor extract.Extractor
	Gate      feature.Gate
	Sink      EventSink
	Language  string
	Accepted  []string // payload encodings the collaborator takes
}

// Controller is safe for use by one logical actor; the mutex serializes
// the UI thread against the extraction completion goroutine.
type Controller struct {
	cfg Config

	mu      sync.Mutex
	state   State
	opened  bool
	session *capture.Session
	attempt uuid.UUID
	draft   *expense.Draft
	failure *Failure
}

func New(cfg Config) *Controller {
	if cfg.Sink == nil {
		cfg.Sink = NopSink{}
	}
	return &Controller{cfg: cfg, state: StateIdle}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Draft returns the confirmation draft while in StateSucceeded.
func (c *Controller) Draft() *expense.Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.draft == nil {
		return nil
	}
	d := *c.draft
	return &d
}

// LastFailure returns the failure while in StateFailed.
func (c *Controller) LastFailure() *Failure {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failure == nil {
		return nil
	}
	f := *c.failure
	return &f
}

// Open admits the capture surface after checking the feature gate. It
// never touches the microphone; an ineligible or unreadable gate keeps
// the surface closed so the caller can show an upgrade prompt.
func (c *Controller) Open(ctx context.Context) error {
	if err := c.checkGate(ctx); err != nil {
		return err
	}
	c.mu.Lock()
	c.opened = true
	c.mu.Unlock()
	return nil
}

// Record acquires the microphone and enters StateRecording. Only legal
// from StateIdle with the surface open. Flags are re-verified so a
// revocation between Open and Record never reaches the device.
func (c *Controller) Record(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.opened {
		return ErrSurfaceClosed
	}
	if c.state != StateIdle {
		return ErrBusy
	}
	if err := c.checkGate(ctx); err != nil {
		return err
	}

	sess, err := capture.Open(c.cfg.Audio, c.cfg.Device, c.cfg.Accepted)
	if err != nil {
		switch {
		case errors.Is(err, capture.ErrPermission):
			c.setStateLocked(StatePermissionDenied)
		default:
			c.failLocked(failureOf(FailureFormat, ""))
		}
		return err
	}
	if err := sess.Start(); err != nil {
		// the session released the device itself
		c.failLocked(failureOf(FailureFormat, ""))
		return err
	}

	c.session = sess
	c.draft = nil
	c.failure = nil
	c.setStateLocked(StateRecording)
	return nil
}

// Stop finalizes the recording and submits the payload for extraction.
// The device is released before the network leg begins; the completion
// handler only acts if this attempt is still the current one.
func (c *Controller) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateRecording {
		return ErrNotRecording
	}

	sess := c.session
	c.session = nil
	payload, err := sess.Stop()
	if err != nil {
		c.failLocked(failureOf(FailureFormat, ""))
		return err
	}

	c.attempt = uuid.New()
	c.setStateLocked(StateProcessing)
	go c.submit(c.attempt, payload)
	return nil
}

// submit runs outside the lock. The in-flight request is not aborted by a
// teardown; its result is simply dropped when it no longer matches.
func (c *Controller) submit(attempt uuid.UUID, payload capture.Payload) {
	result, err := c.cfg.Extractor.Extract(context.Background(), payload, c.cfg.Language)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateProcessing || c.attempt != attempt {
		log.StaleDrop(attempt.String())
		return
	}
	c.attempt = uuid.Nil

	if err != nil {
		var sem *extract.SemanticError
		if errors.As(err, &sem) {
			c.failLocked(failureOf(FailureTranscription, sem.Message))
		} else {
			log.Errorf("extraction transport failure: %v", err)
			c.failLocked(failureOf(FailureTransport, ""))
		}
		return
	}

	draft := expense.Draft{
		Amount:          result.Amount,
		Merchant:        result.Merchant,
		Category:        result.Category,
		TranscribedText: result.TranscribedText,
	}
	c.draft = &draft
	c.setStateLocked(StateSucceeded)
	c.cfg.Sink.DraftReady(draft)
}

// Close force-tears the flow down; legal from every state. A live device
// is released without any network call, a pending extraction attempt is
// orphaned, and the controller returns to Idle with the surface closed.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != nil {
		c.session.Release()
		c.session = nil
	}
	c.attempt = uuid.Nil
	c.opened = false
	c.draft = nil
	c.failure = nil
	if c.state != StateIdle {
		c.setStateLocked(StateIdle)
	}
}

// Retry acknowledges a failure and re-enters Idle. The original audio is
// gone; the user must press record again.
func (c *Controller) Retry() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateFailed {
		return
	}
	c.failure = nil
	c.setStateLocked(StateIdle)
}

// Acknowledge dismisses the permission-denied display.
func (c *Controller) Acknowledge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StatePermissionDenied {
		return
	}
	c.setStateLocked(StateIdle)
}

// Resolve ends the confirmation step, after either a successful submit or
// a cancel, and returns to Idle. The surface stays open: the gate was
// already checked for this flow instance, so the user may immediately
// re-record.
func (c *Controller) Resolve() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateSucceeded {
		return
	}
	c.draft = nil
	c.setStateLocked(StateIdle)
}

// checkGate fails closed: an unreadable gate refuses entry.
func (c *Controller) checkGate(ctx context.Context) error {
	flags, err := c.cfg.Gate.Flags(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpgradeRequired, err)
	}
	if !flags.Premium {
		return ErrUpgradeRequired
	}
	if !flags.VoiceEnabled {
		return ErrVoiceDisabled
	}
	return nil
}

func (c *Controller) setStateLocked(s State) {
	log.FlowState(c.state.String(), s.String())
	c.state = s
	c.cfg.Sink.StateChanged(s)
}

func (c *Controller) failLocked(f *Failure) {
	c.failure = f
	c.setStateLocked(StateFailed)
	c.cfg.Sink.FlowFailed(*f)
}
