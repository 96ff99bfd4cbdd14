package genlive

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/voxaline/live-core/core/transport"
)

// Client → server envelopes.

type setupMessage struct {
	Setup setupPayload `json:"setup"`
}

type setupPayload struct {
	Model             string            `json:"model"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	Tools             []toolDeclaration `json:"tools,omitempty"`
}

type generationConfig struct {
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type toolDeclaration struct {
	FunctionDeclarations []functionDeclaration `json:"functionDeclarations"`
}

type functionDeclaration struct {
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Parameters  *jsonschema.Schema `json:"parameters,omitempty"`
}

type realtimeInputMessage struct {
	RealtimeInput realtimeInput `json:"realtimeInput"`
}

type realtimeInput struct {
	MediaChunks []inlineData `json:"mediaChunks"`
}

type clientContentMessage struct {
	ClientContent clientContent `json:"clientContent"`
}

type clientContent struct {
	Turns        []content `json:"turns"`
	TurnComplete bool      `json:"turnComplete"`
}

type toolResponseMessage struct {
	ToolResponse toolResponse `json:"toolResponse"`
}

type toolResponse struct {
	FunctionResponses []functionResponse `json:"functionResponses"`
}

type functionResponse struct {
	ID       string         `json:"id,omitempty"`
	Name     string         `json:"name"`
	Response map[string]any `json:"response"`
}

// Server → client envelopes.

type serverMessage struct {
	SetupComplete *struct{}       `json:"setupComplete,omitempty"`
	ServerContent *serverContent  `json:"serverContent,omitempty"`
	ToolCall      *serverToolCall `json:"toolCall,omitempty"`
}

type serverContent struct {
	ModelTurn    *content `json:"modelTurn,omitempty"`
	Interrupted  bool     `json:"interrupted,omitempty"`
	TurnComplete bool     `json:"turnComplete,omitempty"`
}

type serverToolCall struct {
	FunctionCalls []functionCall `json:"functionCalls"`
}

type functionCall struct {
	ID   string          `json:"id,omitempty"`
	Name string          `json:"name"`
	Args json.RawMessage `json:"args,omitempty"`
}

func newSetupMessage(cfg transport.Config) setupMessage {
	payload := setupPayload{Model: cfg.Model}

	if cfg.ResponseModality != "" {
		modality := "AUDIO"
		if cfg.ResponseModality == transport.ModalityText {
			modality = "TEXT"
		}
		payload.GenerationConfig = &generationConfig{ResponseModalities: []string{modality}}
	}

	if cfg.Instructions != "" {
		payload.SystemInstruction = &content{Parts: []part{{Text: cfg.Instructions}}}
	}

	if len(cfg.Tools) > 0 {
		declarations := make([]functionDeclaration, 0, len(cfg.Tools))
		for _, tool := range cfg.Tools {
			declarations = append(declarations, functionDeclaration{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.Parameters,
			})
		}
		payload.Tools = []toolDeclaration{{FunctionDeclarations: declarations}}
	}

	return setupMessage{Setup: payload}
}

// classifyMessage parses one inbound frame into the controller-facing message
// union. setupDone reports whether the frame acknowledged session setup.
func classifyMessage(raw []byte) (msg transport.ServerMessage, setupDone bool, err error) {
	var parsed serverMessage
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return transport.ServerMessage{}, false, fmt.Errorf("failed to unmarshal server message: %w", err)
	}

	if parsed.SetupComplete != nil {
		return transport.ServerMessage{}, true, nil
	}

	if parsed.ServerContent != nil {
		msg.Interrupted = parsed.ServerContent.Interrupted
		msg.TurnComplete = parsed.ServerContent.TurnComplete

		if turn := parsed.ServerContent.ModelTurn; turn != nil {
			for _, p := range turn.Parts {
				if p.InlineData != nil {
					audio, err := base64.StdEncoding.DecodeString(p.InlineData.Data)
					if err != nil {
						return transport.ServerMessage{}, false, fmt.Errorf("failed to decode inline audio: %w", err)
					}
					msg.Audio = append(msg.Audio, audio...)
				}
				if p.Text != "" {
					msg.Text += p.Text
				}
			}
		}
	}

	if parsed.ToolCall != nil {
		for _, call := range parsed.ToolCall.FunctionCalls {
			msg.ToolCalls = append(msg.ToolCalls, transport.ToolCall{
				ID:        call.ID,
				Name:      call.Name,
				Arguments: call.Args,
			})
		}
	}

	return msg, false, nil
}
