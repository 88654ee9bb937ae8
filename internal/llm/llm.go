// Package llm is the boundary to the language-model service. The agent
// loop and the tools depend on the small interfaces here, not on the
// Gemini client directly, so tests can substitute doubles.
package llm

import (
	"context"

	"github.com/nitrr/campus-assistant/internal/model"
)

// ToolSpec describes a callable tool to the model.
type ToolSpec struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// Generator produces the next assistant message for a conversation.
type Generator interface {
	Generate(ctx context.Context, system string, history []model.Message, tools []ToolSpec) (model.Message, error)
}

// Summarizer answers a single prompt under a system instruction. Used by
// tools that ground raw records into a natural-language answer.
type Summarizer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}
