package session

import (
	"context"

	"github.com/voxaline/live-core/core/audio"
	"github.com/voxaline/live-core/core/events"
	"github.com/voxaline/live-core/core/transport"
)

type ControllerOption func(*Controller)

// AudioInput is a microphone capture device yielding mono floating-point
// blocks in [-1, 1] together with the granted sample rate per block.
type AudioInput interface {
	EncodingInfo() audio.EncodingInfo
	// Stream captures blocks until ctx is cancelled or a device error occurs.
	Stream(ctx context.Context, onBlock func(samples []float32, sampleRate int)) error
	Close() error
}

func WithTransport(t transport.Transport) ControllerOption {
	return func(c *Controller) { c.transport = t }
}

func WithAudioInput(input AudioInput) ControllerOption {
	return func(c *Controller) { c.input = input }
}

func WithPlaybackSink(sink audio.PlaybackSink) ControllerOption {
	return func(c *Controller) { c.sink = sink }
}

// WithModel sets the remote model requested in the session config.
func WithModel(model string) ControllerOption {
	return func(c *Controller) { c.model = model }
}

// WithInstructions sets the system persona instruction submitted on open.
func WithInstructions(instructions string) ControllerOption {
	return func(c *Controller) { c.instructions = instructions }
}

// WithTools registers additional tools the remote side may invoke.
func WithTools(tools ...Tool) ControllerOption {
	return func(c *Controller) { c.dispatcher.register(tools...) }
}

// WithBuiltinTools registers the stock capability set: open_url, set_theme
// and get_current_time.
func WithBuiltinTools() ControllerOption {
	return func(c *Controller) { c.dispatcher.register(builtinTools(c)...) }
}

// ObserveOptions holds the presentation-facing callbacks. All callbacks are
// optional and run inline on the notifying path; they should not block.
type ObserveOptions struct {
	onStateChanged      func(state SessionState)
	onLog               func(entry events.LogEntry)
	onInputLevel        func(level float64)
	onOutputLevel       func(level float64)
	onInterrupted       func()
	onTurnCompleted     func()
	onToolAction        func(summary string)
	onToolCallStarted   func(id, name, arguments string)
	onToolCallCompleted func(id, name, response string)
	onToolCallFailed    func(id, name, message string)
	onThemeChanged      func(theme string)
	onOpenURL           func(url string)
}

// WithStateChangedCallback registers a callback for connection state
// transitions.
func WithStateChangedCallback(callback func(state SessionState)) ControllerOption {
	return func(c *Controller) { c.observeOptions.onStateChanged = callback }
}

// WithLogCallback registers a callback for appended session log entries.
func WithLogCallback(callback func(entry events.LogEntry)) ControllerOption {
	return func(c *Controller) { c.observeOptions.onLog = callback }
}

// WithInputLevelCallback registers a callback for capture loudness updates,
// one per captured block.
func WithInputLevelCallback(callback func(level float64)) ControllerOption {
	return func(c *Controller) { c.observeOptions.onInputLevel = callback }
}

// WithOutputLevelCallback registers a callback for playback loudness updates.
// Level 0 signals that the remote side is not speaking.
func WithOutputLevelCallback(callback func(level float64)) ControllerOption {
	return func(c *Controller) { c.observeOptions.onOutputLevel = callback }
}

// WithInterruptedCallback registers a callback for remote playback
// preemption.
func WithInterruptedCallback(callback func()) ControllerOption {
	return func(c *Controller) { c.observeOptions.onInterrupted = callback }
}

// WithTurnCompletedCallback registers a callback for the end of the remote
// side's turn. Queued playback keeps playing past it.
func WithTurnCompletedCallback(callback func()) ControllerOption {
	return func(c *Controller) { c.observeOptions.onTurnCompleted = callback }
}

// WithToolActionCallback registers a callback for ephemeral human-facing tool
// invocation summaries. Display lifetime is the consumer's concern.
func WithToolActionCallback(callback func(summary string)) ControllerOption {
	return func(c *Controller) { c.observeOptions.onToolAction = callback }
}

// WithToolCallStartedCallback registers a callback for the start of a tool
// execution, carrying the raw request arguments.
func WithToolCallStartedCallback(callback func(id, name, arguments string)) ControllerOption {
	return func(c *Controller) { c.observeOptions.onToolCallStarted = callback }
}

// WithToolCallCompletedCallback registers a callback for successful tool
// completions.
func WithToolCallCompletedCallback(callback func(id, name, response string)) ControllerOption {
	return func(c *Controller) { c.observeOptions.onToolCallCompleted = callback }
}

// WithToolCallFailedCallback registers a callback for failed tool executions,
// including requests for tools that are not registered.
func WithToolCallFailedCallback(callback func(id, name, message string)) ControllerOption {
	return func(c *Controller) { c.observeOptions.onToolCallFailed = callback }
}

// WithThemeChangedCallback registers a callback for remote presentation mode
// changes.
func WithThemeChangedCallback(callback func(theme string)) ControllerOption {
	return func(c *Controller) { c.observeOptions.onThemeChanged = callback }
}

// WithOpenURLCallback registers a callback for remote requests to open an
// external resource.
func WithOpenURLCallback(callback func(url string)) ControllerOption {
	return func(c *Controller) { c.observeOptions.onOpenURL = callback }
}
