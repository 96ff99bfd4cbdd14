package session

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/voxaline/live-core/core/events"
	"github.com/voxaline/live-core/core/transport"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Tool is one named local capability the remote side may invoke.
type Tool struct {
	Name        string
	Description string
	Parameters  *jsonschema.Schema

	execute func(arguments json.RawMessage) (any, error)
}

// NewTool builds a tool whose JSON arguments unmarshal into T. The parameter
// schema is reflected from T and advertised to the remote service in the
// session config.
func NewTool[T any](name, description string, handler func(arguments T) (any, error)) Tool {
	reflector := jsonschema.Reflector{DoNotReference: true}
	schema := reflector.ReflectFromType(reflect.TypeFor[T]())

	return Tool{
		Name:        name,
		Description: description,
		Parameters:  schema,
		execute: func(raw json.RawMessage) (any, error) {
			var arguments T
			if len(raw) > 0 {
				if err := json.Unmarshal(raw, &arguments); err != nil {
					return nil, fmt.Errorf("failed to unmarshal arguments for tool %q: %w", name, err)
				}
			}
			return handler(arguments)
		},
	}
}

// toolDispatcher executes remote tool-call requests against the registered
// capability set. Dispatch logic never changes when capabilities are added;
// registration is the only extension point.
type toolDispatcher struct {
	mu    sync.Mutex
	tools []Tool

	emit eventEmitter
	log  *sessionLog
}

func newToolDispatcher(emit eventEmitter, log *sessionLog) *toolDispatcher {
	if emit == nil {
		emit = noopEventEmitter
	}
	return &toolDispatcher{emit: emit, log: log}
}

func (d *toolDispatcher) register(tools ...Tool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tools = append(d.tools, tools...)
}

func (d *toolDispatcher) lookup(name string) (Tool, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, tool := range d.tools {
		if tool.Name == name {
			return tool, true
		}
	}
	return Tool{}, false
}

// declarations exports the registered set for the session config.
func (d *toolDispatcher) declarations() []transport.FunctionDeclaration {
	d.mu.Lock()
	defer d.mu.Unlock()

	declarations := make([]transport.FunctionDeclaration, 0, len(d.tools))
	for _, tool := range d.tools {
		declarations = append(declarations, transport.FunctionDeclaration{
			Name:        tool.Name,
			Description: tool.Description,
			Parameters:  tool.Parameters,
		})
	}
	return declarations
}

// Dispatch executes one request and sends exactly one correlated result back,
// carrying either the handler's value or an error message. Unsupported tool
// names produce an explicit error result rather than a generic ok.
func (d *toolDispatcher) Dispatch(ctx context.Context, call transport.ToolCall, sess transport.Session) {
	ctx, span := tracer.Start(ctx, "execute tool")
	defer span.End()
	span.SetAttributes(attribute.String("tool.name", call.Name))

	if d.log != nil {
		d.log.Append(events.LogSourceAI, events.LogKindTool, describeInvocation(call))
	}
	d.emit(events.NewToolCallStarted(call.ID, call.Name, string(call.Arguments)))

	response := map[string]any{}
	var summary string

	if tool, ok := d.lookup(call.Name); !ok {
		err := fmt.Errorf("unsupported tool: %s", call.Name)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		response["error"] = err.Error()
		summary = fmt.Sprintf("%s is not supported", call.Name)
		d.emit(events.NewToolCallFailed(call.ID, call.Name, err.Error()))
	} else if result, err := tool.execute(call.Arguments); err != nil {
		err = fmt.Errorf("failed to execute tool %q: %w", call.Name, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		response["error"] = err.Error()
		summary = fmt.Sprintf("%s failed: %v", call.Name, err)
		d.emit(events.NewToolCallFailed(call.ID, call.Name, err.Error()))
	} else {
		response["result"] = result
		summary = fmt.Sprintf("%s: %v", call.Name, result)
		d.emit(events.NewToolCallCompleted(call.ID, call.Name, fmt.Sprintf("%v", result)))
	}

	d.emit(events.NewToolActionNotice(summary))

	if sess == nil {
		logger.Warn("no session to return tool result on", "tool", call.Name)
		return
	}
	if err := sess.SendToolResult(transport.ToolResult{ID: call.ID, Name: call.Name, Response: response}); err != nil {
		logger.Warn("failed to send tool result", "tool", call.Name, "error", err)
	}
}

func describeInvocation(call transport.ToolCall) string {
	arguments := strings.TrimSpace(string(call.Arguments))
	if arguments == "" || arguments == "{}" || arguments == "null" {
		return fmt.Sprintf("Executing tool %s", call.Name)
	}
	return fmt.Sprintf("Executing tool %s with %s", call.Name, arguments)
}

// builtinTools is the stock capability set wired to controller notifications.
func builtinTools(c *Controller) []Tool {
	return []Tool{
		NewTool("open_url", "Open an external URL for the user",
			func(arguments struct {
				URL string `json:"url" jsonschema:"description=The URL to open"`
			}) (any, error) {
				if arguments.URL == "" {
					return nil, fmt.Errorf("missing url")
				}
				c.emit(events.NewOpenURLRequested(arguments.URL))
				return "opened " + arguments.URL, nil
			}),
		NewTool("set_theme", "Switch the interface between light and dark mode",
			func(arguments struct {
				Theme string `json:"theme" jsonschema:"description=Either light or dark"`
			}) (any, error) {
				theme := strings.ToLower(arguments.Theme)
				if theme != "light" && theme != "dark" {
					return nil, fmt.Errorf("unknown theme: %q", arguments.Theme)
				}
				c.emit(events.NewThemeChanged(theme))
				return "theme set to " + theme, nil
			}),
		NewTool("get_current_time", "Report the current local time",
			func(struct{}) (any, error) {
				return time.Now().Format(time.RFC1123), nil
			}),
	}
}
