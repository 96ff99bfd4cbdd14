// Package session provides a controller for bidirectional voice and text
// conversations with a remote conversational service.
//
// A Controller owns the connection lifecycle, routes captured microphone
// audio out, schedules synthesized speech for gapless playback, executes
// remote tool-call requests, and keeps an append-only conversation log.
// Consumers observe it exclusively through callbacks registered at
// construction.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/voxaline/live-core/core/audio"
	"github.com/voxaline/live-core/core/events"
	"github.com/voxaline/live-core/core/transport"
	"github.com/voxaline/live-core/internal/futures"
	"go.opentelemetry.io/otel/codes"
)

// Controller drives one conversational session at a time. It is safe for
// concurrent use; all state transitions go through its mutex, and stale
// asynchronous completions are discarded by epoch.
type Controller struct {
	mu    sync.Mutex
	state SessionState
	// epoch increments on every connect and teardown; async callbacks bound
	// to an older epoch become no-ops.
	epoch int

	session        *futures.Pending[transport.Session]
	sessionContext context.Context
	sessionCancel  context.CancelFunc

	transport transport.Transport
	input     AudioInput
	sink      audio.PlaybackSink

	scheduler  *playbackScheduler
	dispatcher *toolDispatcher
	log        *sessionLog

	model        string
	instructions string

	observeOptions ObserveOptions
	emit           eventEmitter

	closeOnce sync.Once
	closeErr  error
}

// NewController assembles a controller from the provided options. At minimum
// WithTransport is required before Connect can succeed.
func NewController(opts ...ControllerOption) *Controller {
	c := &Controller{state: StateDisconnected}
	// Late-bound so callbacks registered by later options are seen.
	c.emit = func(event events.Event) {
		newCallbackEventEmitter(c.observeOptions)(event)
	}
	c.log = newSessionLog(c.emit)
	c.dispatcher = newToolDispatcher(c.emit, c.log)

	for _, opt := range opts {
		opt(c)
	}

	c.scheduler = newPlaybackScheduler(c.sink, c.emit)
	return c
}

// Connect starts a session attempt. It returns immediately; progress is
// reported through the state callback. Calling it while a session is
// connecting or connected is a no-op.
func (c *Controller) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.state == StateConnecting || c.state == StateConnected {
		c.mu.Unlock()
		return nil
	}
	c.epoch++
	epoch := c.epoch
	c.state = StateConnecting

	pending := futures.New[transport.Session]()
	sessionContext, cancel := context.WithCancel(context.Background())
	c.session = pending
	c.sessionContext = sessionContext
	c.sessionCancel = cancel
	c.mu.Unlock()

	c.emit(events.NewSessionStateChanged(string(StateConnecting)))

	if c.transport == nil {
		err := errors.New("no transport configured")
		c.fail(epoch, err)
		return err
	}

	cfg := transport.Config{
		Model:            c.model,
		Instructions:     c.instructions,
		ResponseModality: transport.ModalityAudio,
		Tools:            c.dispatcher.declarations(),
	}
	callbacks := transport.Callbacks{
		OnOpen:    func() { c.handleOpen(epoch) },
		OnMessage: func(msg transport.ServerMessage) { c.handleMessage(epoch, msg) },
		OnClose:   func(err error) { c.handleClose(epoch, err) },
		OnError:   func(err error) { c.handleError(epoch, err) },
	}

	go func() {
		ctx, span := tracer.Start(ctx, "open session")
		defer span.End()

		sess, err := c.transport.Open(ctx, cfg, callbacks)
		if err != nil {
			err = fmt.Errorf("failed to open session: %w", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			pending.Reject(err)
			c.fail(epoch, err)
			return
		}
		if !pending.Resolve(sess) {
			// Torn down while the open was in flight; the session is an
			// orphan nothing else will ever close.
			if err := sess.Close(); err != nil {
				logger.Debug("failed to close orphaned session", "error", err)
			}
		}
	}()
	return nil
}

func (c *Controller) handleOpen(epoch int) {
	c.mu.Lock()
	if epoch != c.epoch {
		c.mu.Unlock()
		return
	}
	c.state = StateConnected
	pending := c.session
	sessionContext := c.sessionContext
	c.mu.Unlock()

	c.emit(events.NewSessionStateChanged(string(StateConnected)))
	c.log.Append(events.LogSourceSystem, events.LogKindPlain, "session opened")

	if c.input == nil {
		return
	}
	capture := newCapturePipeline(pending, c.emit)
	go func() {
		err := c.input.Stream(sessionContext, capture.OnBlock)
		if err != nil && sessionContext.Err() == nil {
			c.fail(epoch, fmt.Errorf("audio capture failed: %w", err))
		}
	}()
}

func (c *Controller) handleMessage(epoch int, msg transport.ServerMessage) {
	c.mu.Lock()
	if epoch != c.epoch {
		c.mu.Unlock()
		return
	}
	pending := c.session
	sessionContext := c.sessionContext
	c.mu.Unlock()

	if len(msg.Audio) > 0 {
		if err := c.scheduler.Enqueue(msg.Audio); err != nil {
			c.log.Append(events.LogSourceError, events.LogKindPlain, err.Error())
		}
	}
	if msg.Text != "" {
		c.log.Append(events.LogSourceAI, events.LogKindPlain, msg.Text)
	}
	if msg.Interrupted {
		c.scheduler.Interrupt()
		c.log.Append(events.LogSourceSystem, events.LogKindPlain, "response interrupted")
	}
	if msg.TurnComplete {
		c.scheduler.TurnComplete()
	}
	if len(msg.ToolCalls) > 0 {
		sess, _ := pending.TryGet()
		for _, call := range msg.ToolCalls {
			c.dispatcher.Dispatch(sessionContext, call, sess)
		}
	}
}

func (c *Controller) handleClose(epoch int, err error) {
	if err != nil {
		c.handleError(epoch, err)
		return
	}
	if c.teardown(epoch, StateDisconnected) {
		c.log.Append(events.LogSourceSystem, events.LogKindPlain, "session closed")
	}
}

func (c *Controller) handleError(epoch int, err error) {
	c.fail(epoch, fmt.Errorf("session failed: %w", err))
}

func (c *Controller) fail(epoch int, err error) {
	if c.teardown(epoch, StateError) {
		c.log.Append(events.LogSourceError, events.LogKindPlain, err.Error())
	}
}

// teardown retires the session bound to epoch and transitions to next. It
// reports whether it acted; a stale epoch means another teardown or a newer
// connect already won.
func (c *Controller) teardown(epoch int, next SessionState) bool {
	c.mu.Lock()
	if epoch != c.epoch {
		c.mu.Unlock()
		return false
	}
	c.epoch++
	cancel := c.sessionCancel
	pending := c.session
	c.session = nil
	c.sessionContext = nil
	c.sessionCancel = nil

	changed := c.state != next
	c.state = next
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if pending != nil {
		if sess, ok := pending.TryGet(); ok {
			if err := sess.Close(); err != nil {
				logger.Debug("failed to close session", "error", err)
			}
		} else {
			pending.Reject(errors.New("session torn down"))
		}
	}
	c.scheduler.Flush()

	if changed {
		c.emit(events.NewSessionStateChanged(string(next)))
	}
	return true
}

// Disconnect ends the current session, if any. The conversation log survives
// for the next session.
func (c *Controller) Disconnect() {
	c.mu.Lock()
	epoch := c.epoch
	idle := c.state.IsIdle()
	c.mu.Unlock()

	if idle {
		return
	}
	if c.teardown(epoch, StateDisconnected) {
		c.log.Append(events.LogSourceSystem, events.LogKindPlain, "session closed")
	}
}

// SendText submits a typed message. The entry is logged immediately; delivery
// waits for the in-flight session if the connection is still being
// established, and is dropped if the session fails instead.
func (c *Controller) SendText(text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	c.log.Append(events.LogSourceUser, events.LogKindPlain, text)

	c.mu.Lock()
	epoch := c.epoch
	pending := c.session
	sessionContext := c.sessionContext
	c.mu.Unlock()

	if pending == nil {
		logger.Debug("dropping text message, no session in progress")
		return
	}

	go func() {
		sess, err := pending.Await(sessionContext)
		if err != nil {
			logger.Debug("dropping text message", "error", err)
			return
		}
		c.mu.Lock()
		current := epoch == c.epoch
		c.mu.Unlock()
		if !current {
			return
		}

		chunk := transport.MediaChunk{Data: []byte(text), MIMEType: "text/plain"}
		if err := sess.SendMedia(chunk); err != nil {
			logger.Warn("failed to send text message", "error", err)
		}
	}()
}

// Close disconnects and releases the audio devices. The controller is not
// usable afterwards. Close is idempotent.
func (c *Controller) Close() error {
	c.closeOnce.Do(func() {
		_, span := tracer.Start(context.Background(), "close controller")
		defer span.End()

		c.Disconnect()

		var errs []error
		if c.input != nil {
			errs = append(errs, c.input.Close())
		}
		if c.sink != nil {
			errs = append(errs, c.sink.Close())
		}
		c.closeErr = errors.Join(errs...)
		if c.closeErr != nil {
			span.RecordError(c.closeErr)
			span.SetStatus(codes.Error, c.closeErr.Error())
		}
		c.log.Clear()
	})
	return c.closeErr
}

// State returns the current connection state.
func (c *Controller) State() SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Entries returns a point-in-time copy of the conversation log.
func (c *Controller) Entries() []LogEntry {
	return c.log.Entries()
}
