// Package transport defines the bidirectional message channel contract
// between the session controller and a remote conversational service.
//
// The controller only depends on this contract; concrete wire clients live in
// sub-packages.
package transport

import (
	"context"
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// Modality selects the remote service's response channel.
type Modality string

const (
	ModalityAudio Modality = "audio"
	ModalityText  Modality = "text"
)

// Config is the fixed session configuration submitted on open.
type Config struct {
	Model            string
	Instructions     string
	ResponseModality Modality
	Tools            []FunctionDeclaration
}

// FunctionDeclaration advertises one callable tool to the remote service.
type FunctionDeclaration struct {
	Name        string
	Description string
	Parameters  *jsonschema.Schema
}

// Callbacks receive asynchronous session notifications. All callbacks are
// optional; nil callbacks are skipped.
type Callbacks struct {
	// OnOpen fires once the remote side acknowledges the session setup.
	OnOpen func()
	// OnMessage fires for every classified inbound message.
	OnMessage func(msg ServerMessage)
	// OnClose fires when the channel shuts down; err is nil on a clean close.
	OnClose func(err error)
	// OnError fires on a mid-session transport failure.
	OnError func(err error)
}

// MediaChunk is one outbound payload tagged with its format. Audio chunks
// carry raw PCM with an "audio/pcm;rate=<hz>" tag; typed text travels over the
// same path tagged "text/plain".
type MediaChunk struct {
	Data     []byte
	MIMEType string
}

// ToolCall is a remote request to execute a named local capability.
type ToolCall struct {
	ID        string
	Name      string
	Arguments json.RawMessage
}

// ToolResult is the single structured answer to a ToolCall, correlated by the
// original request id.
type ToolResult struct {
	ID       string
	Name     string
	Response map[string]any
}

// ServerMessage is one inbound message classified into the channels the
// controller multiplexes. Any combination of fields may be set.
type ServerMessage struct {
	// Audio is a decoded synthesized-speech payload, nil when absent.
	Audio []byte
	// Text is inline response text, empty when absent.
	Text string
	// Interrupted signals that all current and queued playback must stop.
	Interrupted bool
	// TurnComplete signals the end of the remote side's turn.
	TurnComplete bool
	// ToolCalls are remote tool invocation requests, in arrival order.
	ToolCalls []ToolCall
}

// Session is an open bidirectional channel to the remote service.
type Session interface {
	SendMedia(chunk MediaChunk) error
	SendToolResult(result ToolResult) error
	Close() error
}

// Transport opens sessions against a remote conversational service.
type Transport interface {
	Open(ctx context.Context, cfg Config, callbacks Callbacks) (Session, error)
}
