package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/nitrr/campus-assistant/internal/model"
	"google.golang.org/genai"
)

// GeminiClient implements Generator and Summarizer over the Gemini API.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a client for the given model identifier. The API
// key may be empty, in which case the genai SDK resolves it from the
// environment.
func NewGeminiClient(ctx context.Context, modelName, apiKey string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("llm: create client: %w", err)
	}

	return &GeminiClient{client: client, model: modelName}, nil
}

// Generate invokes the model with the system prompt, the full history and
// the tool declarations, and returns the response as an assistant message.
func (c *GeminiClient) Generate(ctx context.Context, system string, history []model.Message, tools []ToolSpec) (model.Message, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		},
		Tools: toGenAITools(tools),
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, toGenAIContents(history), cfg)
	if err != nil {
		return model.Message{}, fmt.Errorf("llm: generate: %w", err)
	}

	return parseResponse(resp)
}

// Complete runs a single-shot completion with temperature 0, used for
// grounded summarization inside tools.
func (c *GeminiClient) Complete(ctx context.Context, system, prompt string) (string, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		},
		Temperature: genai.Ptr[float32](0),
	}

	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("llm: complete: %w", err)
	}

	msg, err := parseResponse(resp)
	if err != nil {
		return "", err
	}

	return msg.Content, nil
}

func toGenAITools(specs []ToolSpec) []*genai.Tool {
	if len(specs) == 0 {
		return nil
	}

	declarations := make([]*genai.FunctionDeclaration, 0, len(specs))
	for _, spec := range specs {
		declarations = append(declarations, &genai.FunctionDeclaration{
			Name:                 spec.Name,
			Description:          spec.Description,
			ParametersJsonSchema: spec.Parameters,
		})
	}

	return []*genai.Tool{{FunctionDeclarations: declarations}}
}

// toGenAIContents converts conversation messages to genai history. Tool
// results travel back to the model as user-role function responses.
func toGenAIContents(history []model.Message) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, msg := range history {
		switch msg.Role {
		case model.RoleAssistant:
			parts := []*genai.Part{}
			if msg.Content != "" {
				parts = append(parts, &genai.Part{Text: msg.Content})
			}
			for _, call := range msg.ToolCalls {
				parts = append(parts, &genai.Part{
					FunctionCall: &genai.FunctionCall{
						ID:   call.ID,
						Name: call.Name,
						Args: call.Args,
					},
				})
			}
			contents = append(contents, &genai.Content{Role: genai.RoleModel, Parts: parts})
		case model.RoleTool:
			contents = append(contents, &genai.Content{
				Role: genai.RoleUser,
				Parts: []*genai.Part{{
					FunctionResponse: &genai.FunctionResponse{
						ID:       msg.ToolCallID,
						Name:     msg.ToolName,
						Response: map[string]any{"output": msg.Content},
					},
				}},
			})
		default:
			contents = append(contents, &genai.Content{
				Role:  genai.RoleUser,
				Parts: []*genai.Part{{Text: msg.Content}},
			})
		}
	}
	return contents
}

// parseResponse converts the first candidate into an assistant message.
// Tool calls missing an id get a generated one so tool results can be
// correlated back to their requests.
func parseResponse(resp *genai.GenerateContentResponse) (model.Message, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return model.Message{}, fmt.Errorf("llm: response has no candidates")
	}

	var text strings.Builder
	var calls []model.ToolCall

	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil {
			continue
		}
		if part.FunctionCall != nil {
			id := part.FunctionCall.ID
			if id == "" {
				id = uuid.NewString()
			}
			calls = append(calls, model.ToolCall{
				ID:   id,
				Name: part.FunctionCall.Name,
				Args: part.FunctionCall.Args,
			})
			continue
		}
		text.WriteString(part.Text)
	}

	return model.Message{
		Role:      model.RoleAssistant,
		Content:   strings.TrimSpace(text.String()),
		ToolCalls: calls,
	}, nil
}
