package llm

import (
	"testing"

	"github.com/nitrr/campus-assistant/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestToGenAIContents_RoleMapping(t *testing.T) {
	history := []model.Message{
		model.User("Who is the HOD of CSE?"),
		{
			Role:    model.RoleAssistant,
			Content: "Checking.",
			ToolCalls: []model.ToolCall{{
				ID:   "fc-1",
				Name: "faculty_lookup",
				Args: map[string]any{"department": "cse"},
			}},
		},
		model.ToolResult("fc-1", "faculty_lookup", "Dr. A. Verma is the HOD."),
	}

	contents := toGenAIContents(history)
	require.Len(t, contents, 3)

	assert.Equal(t, genai.RoleUser, contents[0].Role)
	assert.Equal(t, "Who is the HOD of CSE?", contents[0].Parts[0].Text)

	assert.Equal(t, genai.RoleModel, contents[1].Role)
	require.Len(t, contents[1].Parts, 2)
	assert.Equal(t, "Checking.", contents[1].Parts[0].Text)
	require.NotNil(t, contents[1].Parts[1].FunctionCall)
	assert.Equal(t, "fc-1", contents[1].Parts[1].FunctionCall.ID)
	assert.Equal(t, "faculty_lookup", contents[1].Parts[1].FunctionCall.Name)

	assert.Equal(t, genai.RoleUser, contents[2].Role)
	require.NotNil(t, contents[2].Parts[0].FunctionResponse)
	assert.Equal(t, "fc-1", contents[2].Parts[0].FunctionResponse.ID)
	assert.Equal(t, map[string]any{"output": "Dr. A. Verma is the HOD."}, contents[2].Parts[0].FunctionResponse.Response)
}

func TestParseResponse_TextAndCalls(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Role: genai.RoleModel,
				Parts: []*genai.Part{
					{Text: "Let me check. "},
					{FunctionCall: &genai.FunctionCall{
						ID:   "fc-1",
						Name: "syllabus_lookup",
						Args: map[string]any{"department": "cse"},
					}},
				},
			},
		}},
	}

	msg, err := parseResponse(resp)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAssistant, msg.Role)
	assert.Equal(t, "Let me check.", msg.Content)
	require.Len(t, msg.ToolCalls, 1)
	assert.Equal(t, "fc-1", msg.ToolCalls[0].ID)
}

func TestParseResponse_GeneratesMissingCallID(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Role: genai.RoleModel,
				Parts: []*genai.Part{
					{FunctionCall: &genai.FunctionCall{Name: "ordinance_lookup"}},
				},
			},
		}},
	}

	msg, err := parseResponse(resp)
	require.NoError(t, err)
	require.Len(t, msg.ToolCalls, 1)
	assert.NotEmpty(t, msg.ToolCalls[0].ID)
}

func TestParseResponse_NoCandidates(t *testing.T) {
	_, err := parseResponse(&genai.GenerateContentResponse{})
	assert.Error(t, err)
}

func TestToGenAITools(t *testing.T) {
	assert.Nil(t, toGenAITools(nil))

	tools := toGenAITools([]ToolSpec{{
		Name:        "faculty_lookup",
		Description: "looks up faculty",
		Parameters:  map[string]any{"type": "object"},
	}})
	require.Len(t, tools, 1)
	require.Len(t, tools[0].FunctionDeclarations, 1)
	assert.Equal(t, "faculty_lookup", tools[0].FunctionDeclarations[0].Name)
}
