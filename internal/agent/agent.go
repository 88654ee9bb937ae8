// Package agent implements the think-act-observe loop: it invokes the
// model with the conversation and the registered tool declarations,
// executes whatever tool calls the model requests, and repeats until the
// model answers without requesting a tool.
package agent

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/nitrr/campus-assistant/internal/llm"
	"github.com/nitrr/campus-assistant/internal/model"
	"github.com/nitrr/campus-assistant/internal/session"
	"go.uber.org/zap"
)

const defaultMaxIterations = 8

// Handler executes a tool with the arguments supplied by the model. The
// string result is fed back to the model verbatim; a returned error is
// converted into a descriptive result, never propagated.
type Handler func(ctx context.Context, args map[string]any) (string, error)

// ToolDefinition describes one registered tool.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]any
	Handler     Handler
}

// Agent coordinates model calls and tool execution over a session.
type Agent struct {
	gen           llm.Generator
	systemPrompt  string
	tools         map[string]*ToolDefinition
	maxIterations int
	textSink      func(string)
	logger        *zap.Logger
}

// New creates an agent with no registered tools.
func New(gen llm.Generator, systemPrompt string, logger *zap.Logger) *Agent {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Agent{
		gen:           gen,
		systemPrompt:  systemPrompt,
		tools:         make(map[string]*ToolDefinition),
		maxIterations: defaultMaxIterations,
		logger:        logger,
	}
}

// Register adds a tool to the registry.
func (a *Agent) Register(td *ToolDefinition) error {
	if td == nil {
		return errors.New("tool definition cannot be nil")
	}
	if td.Name == "" {
		return errors.New("tool name cannot be empty")
	}
	if td.Handler == nil {
		return errors.New("tool handler cannot be nil")
	}

	a.tools[td.Name] = td
	return nil
}

// SetMaxIterations bounds the number of model calls per turn. The loop has
// no natural bound; exceeding this one is a fatal turn error.
func (a *Agent) SetMaxIterations(n int) {
	if n > 0 {
		a.maxIterations = n
	}
}

// SetTextSink installs a callback that receives every plain-text assistant
// response as soon as it is produced, before the loop continues.
func (a *Agent) SetTextSink(fn func(string)) {
	a.textSink = fn
}

// Specs returns the registered tools as declarations for the model, in
// stable name order.
func (a *Agent) Specs() []llm.ToolSpec {
	specs := make([]llm.ToolSpec, 0, len(a.tools))
	for _, td := range a.tools {
		specs = append(specs, llm.ToolSpec{
			Name:        td.Name,
			Description: td.Description,
			Parameters:  td.Parameters,
		})
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].Name < specs[j].Name })
	return specs
}

// RunTurn appends the user input to the session and runs the loop to
// completion, returning the model's final answer. A model failure is fatal
// to the turn; tool failures are not.
func (a *Agent) RunTurn(ctx context.Context, sess *session.Session, input string) (string, error) {
	sess.Append(model.User(input))

	for i := 0; i < a.maxIterations; i++ {
		reply, err := a.gen.Generate(ctx, a.systemPrompt, sess.Messages(), a.Specs())
		if err != nil {
			return "", fmt.Errorf("agent: model call: %w", err)
		}
		sess.Append(reply)

		if reply.Content != "" && a.textSink != nil {
			a.textSink(reply.Content)
		}

		act, err := shouldAct(sess.Messages())
		if err != nil {
			return "", fmt.Errorf("agent: %w", err)
		}
		if !act {
			return reply.Content, nil
		}

		// Every request gets exactly one reply, in request order.
		for _, call := range reply.ToolCalls {
			result := a.dispatch(ctx, call)
			sess.Append(model.ToolResult(call.ID, call.Name, result))
		}
	}

	return "", fmt.Errorf("agent: no final answer after %d model calls", a.maxIterations)
}

// shouldAct decides the loop transition from the latest message. The two
// failure cases are protocol violations, not recoverable states.
func shouldAct(msgs []model.Message) (bool, error) {
	if len(msgs) == 0 {
		return false, errors.New("conversation is empty")
	}

	last := msgs[len(msgs)-1]
	if last.Role != model.RoleAssistant {
		return false, fmt.Errorf("last message role is %q, expected assistant", last.Role)
	}

	return len(last.ToolCalls) > 0, nil
}

func (a *Agent) dispatch(ctx context.Context, call model.ToolCall) string {
	td, ok := a.tools[call.Name]
	if !ok {
		a.logger.Warn("model requested unregistered tool", zap.String("tool", call.Name))
		return fmt.Sprintf("unknown tool %q: available tools are %s", call.Name, strings.Join(a.toolNames(), ", "))
	}

	args := call.Args
	if args == nil {
		args = map[string]any{}
	}

	a.logger.Debug("executing tool", zap.String("tool", call.Name), zap.Any("args", args))

	result, err := td.Handler(ctx, args)
	if err != nil {
		a.logger.Warn("tool execution failed", zap.String("tool", call.Name), zap.Error(err))
		return fmt.Sprintf("tool %s failed: %v", call.Name, err)
	}

	return result
}

func (a *Agent) toolNames() []string {
	names := make([]string, 0, len(a.tools))
	for name := range a.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
