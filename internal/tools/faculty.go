// Package tools holds the three retrieval tools the agent can dispatch to:
// faculty lookup, syllabus lookup, and ordinance lookup. Validation and
// resource failures are returned as descriptive strings so the model can
// read them and self-correct; they are never raised as errors.
package tools

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/nitrr/campus-assistant/internal/agent"
	"github.com/nitrr/campus-assistant/internal/llm"
	"go.uber.org/zap"
)

// Department codes the faculty records are organized under. Input is
// matched case-insensitively.
var facultyDepartments = []string{
	"cse", "it", "electronics", "electrical", "mechanical",
	"meta", "chemical", "civil", "biotech", "biomed",
}

const facultyAnswerUnavailable = "Cannot answer the given query with the available context"

const facultySystemPrompt = `You are an academic assistant for National Institute of Technology Raipur.
Your job is to answer the user's query using *only* the provided context.

### 1. Context & Domain
The user's query is about faculty at NIT Raipur.
The context provided to you is factual data retrieved from the institute's records (names, departments, designations, office numbers, emails).

### 2. Core Rules for Answering
* **Strictly Factual:** You MUST base your entire answer *only* on the provided context.
* **DO NOT** add, infer, or assume any information not explicitly stated in the context.
* **Handle Missing Information:** If the context does not contain the information needed to answer the query, you MUST state: "That information is not available in the faculty records."
* **No Hallucination:** It is better to state that the information is unavailable than to provide an incorrect or assumed answer.

### 3. Style Guide
* **Tone:** Maintain a formal, professional, and helpful tone.
* **Format:** If the context provides a list (e.g., multiple faculty members), format your answer as a bulleted list for clarity.
* **Relevance:** Be concise and keep the answer strictly relevant to the user's query.`

const facultyDescription = `Finds specific information about faculty members from a single department at NIT Raipur.
This is the correct tool for questions about faculty names, designations (like Professor or HOD), office numbers, email addresses, or other details stored in faculty records.

The department argument MUST be a single valid department code, inferred from the user's query (e.g. "computer science" means the code "cse").
Valid department codes: cse, it, electronics, electrical, mechanical, meta, chemical, civil, biotech, biomed.

This tool can only search ONE department at a time. If the user's query involves more than one department (e.g. "List the HODs for cse and it"), call this tool multiple times (once for 'cse' and once for 'it').`

// FacultyTool answers faculty questions by loading the department's record
// file and running a grounded summarization pass over it.
type FacultyTool struct {
	dataDir    string
	summarizer llm.Summarizer
	logger     *zap.Logger
}

// NewFacultyTool creates the tool. dataDir holds one record file per
// department code (<code>.json). The summarizer is injected so tests can
// substitute a double.
func NewFacultyTool(dataDir string, summarizer llm.Summarizer, logger *zap.Logger) *FacultyTool {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FacultyTool{dataDir: dataDir, summarizer: summarizer, logger: logger}
}

// Definition returns the registration entry for the agent.
func (t *FacultyTool) Definition() *agent.ToolDefinition {
	return &agent.ToolDefinition{
		Name:        "faculty_lookup",
		Description: facultyDescription,
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"department": map[string]any{
					"type":        "string",
					"description": "A single valid department code, e.g. cse",
				},
				"query": map[string]any{
					"type":        "string",
					"description": "The specific natural-language question about that department's faculty, e.g. \"Who is the Head of Department?\"",
				},
			},
			"required": []string{"department", "query"},
		},
		Handler: t.Lookup,
	}
}

// Lookup validates the department, loads its record file whole, and asks
// the summarizer to answer strictly from that context.
func (t *FacultyTool) Lookup(ctx context.Context, args map[string]any) (string, error) {
	department, _ := args["department"].(string)
	query, _ := args["query"].(string)

	department = strings.ToLower(department)
	if !slices.Contains(facultyDepartments, department) {
		return fmt.Sprintf("department must be one of %v", facultyDepartments), nil
	}

	path := filepath.Join(t.dataDir, department+".json")
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Sprintf("no data file found for department %s", department), nil
	}
	if err != nil {
		return fmt.Sprintf("cannot fetch data file for department %s: %v", department, err), nil
	}

	t.logger.Debug("summarizing faculty records",
		zap.String("department", department),
		zap.Int("context_bytes", len(data)))

	prompt := fmt.Sprintf("Based on the following faculty data, answer the given query:\nContext:\n%s\n\nQuery:\n%s", data, query)
	answer, err := t.summarizer.Complete(ctx, facultySystemPrompt, prompt)
	if err != nil {
		return fmt.Sprintf("could not query the model to answer the query: %v", err), nil
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return facultyAnswerUnavailable, nil
	}

	return answer, nil
}
