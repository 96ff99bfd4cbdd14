// Package genlive implements the session transport contract against a
// generative live-conversation websocket endpoint.
package genlive

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/voxaline/live-core/core/transport"
	"go.opentelemetry.io/otel/codes"
)

const (
	defaultEndpoint = "wss://generativelanguage.googleapis.com/ws/google.ai.generativelanguage.v1beta.GenerativeService.BidiGenerateContent"
	defaultModel    = "models/gemini-2.0-flash-exp"
)

// Client dials live sessions against a fixed endpoint. One client can open
// any number of independent sessions.
type Client struct {
	endpoint string
	apiKey   string
	model    string
}

type Option func(*Client)

func WithEndpoint(endpoint string) Option {
	return func(c *Client) { c.endpoint = endpoint }
}

// WithAPIKey overrides the GENLIVE_API_KEY environment lookup.
func WithAPIKey(apiKey string) Option {
	return func(c *Client) { c.apiKey = apiKey }
}

// WithModel sets the model used when the session config leaves it empty.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

func NewClient(opts ...Option) *Client {
	client := &Client{endpoint: defaultEndpoint, model: defaultModel}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Open dials the endpoint, submits the session setup and starts the read
// loop. The returned session is writable immediately; callbacks.OnOpen fires
// once the remote side acknowledges the setup.
func (c *Client) Open(ctx context.Context, cfg transport.Config, callbacks transport.Callbacks) (transport.Session, error) {
	ctx, span := tracer.Start(ctx, "open live session")
	defer span.End()

	apiKey := c.apiKey
	if apiKey == "" {
		var ok bool
		if apiKey, ok = os.LookupEnv("GENLIVE_API_KEY"); !ok {
			err := fmt.Errorf("live api key not found")
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
	}

	endpoint, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint: %w", err)
	}
	queryParams := endpoint.Query()
	queryParams.Set("key", apiKey)
	endpoint.RawQuery = queryParams.Encode()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint.String(), nil)
	if err != nil {
		recordedErr := fmt.Errorf("failed to open socket connection to live endpoint: %w", err)
		span.RecordError(recordedErr)
		span.SetStatus(codes.Error, recordedErr.Error())
		return nil, recordedErr
	}

	if cfg.Model == "" {
		cfg.Model = c.model
	}

	s := &session{conn: conn}
	if err := s.writeJSON(newSetupMessage(cfg)); err != nil {
		conn.Close()
		recordedErr := fmt.Errorf("failed to submit session setup: %w", err)
		span.RecordError(recordedErr)
		span.SetStatus(codes.Error, recordedErr.Error())
		return nil, recordedErr
	}

	go s.readAndProcessMessages(conn, callbacks)

	return s, nil
}

type session struct {
	conn   *websocket.Conn
	connMu sync.Mutex
	closed bool
}

// SendMedia forwards one outbound chunk. Typed text is routed to the content
// channel with an explicit turn boundary; everything else streams as realtime
// input.
func (s *session) SendMedia(chunk transport.MediaChunk) error {
	if strings.HasPrefix(chunk.MIMEType, "text/") {
		return s.writeJSON(clientContentMessage{ClientContent: clientContent{
			Turns:        []content{{Role: "user", Parts: []part{{Text: string(chunk.Data)}}}},
			TurnComplete: true,
		}})
	}

	return s.writeJSON(realtimeInputMessage{RealtimeInput: realtimeInput{
		MediaChunks: []inlineData{{
			MIMEType: chunk.MIMEType,
			Data:     base64.StdEncoding.EncodeToString(chunk.Data),
		}},
	}})
}

func (s *session) SendToolResult(result transport.ToolResult) error {
	return s.writeJSON(toolResponseMessage{ToolResponse: toolResponse{
		FunctionResponses: []functionResponse{{
			ID:       result.ID,
			Name:     result.Name,
			Response: result.Response,
		}},
	}})
}

// Close shuts the channel down cleanly. Safe to call more than once.
func (s *session) Close() error {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	closeFrame := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	if err := s.conn.WriteMessage(websocket.CloseMessage, closeFrame); err != nil {
		s.conn.Close()
		return fmt.Errorf("failed to close live session: %w", err)
	}
	return s.conn.Close()
}

func (s *session) writeJSON(v any) error {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	if s.closed {
		return fmt.Errorf("session closed")
	}
	if err := s.conn.WriteJSON(v); err != nil {
		return fmt.Errorf("failed to write to live endpoint: %w", err)
	}
	return nil
}

func (s *session) readAndProcessMessages(conn *websocket.Conn, callbacks transport.Callbacks) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			s.connMu.Lock()
			closedLocally := s.closed
			s.closed = true
			s.connMu.Unlock()
			conn.Close()

			if closedLocally || websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				if callbacks.OnClose != nil {
					callbacks.OnClose(nil)
				}
			} else if callbacks.OnError != nil {
				callbacks.OnError(fmt.Errorf("live session read failed: %w", err))
			}
			return
		}

		msg, setupDone, err := classifyMessage(raw)
		if err != nil {
			logger.Warn("dropping malformed server message", "error", err)
			continue
		}

		if setupDone {
			if callbacks.OnOpen != nil {
				callbacks.OnOpen()
			}
			continue
		}

		if callbacks.OnMessage != nil {
			callbacks.OnMessage(msg)
		}
	}
}
