package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"slices"

	"github.com/nitrr/campus-assistant/internal/agent"
	"github.com/nitrr/campus-assistant/internal/store"
	"go.uber.org/zap"
)

// Department codes present in the syllabus database. Matched exactly
// (case-sensitive), and the set differs slightly from the faculty tool's:
// the syllabus data also covers mining.
var syllabusDepartments = []string{
	"cse", "it", "electronics", "electrical", "mechanical",
	"meta", "civil", "chemical", "biotech", "biomed", "mining",
}

const syllabusDescription = `Retrieves detailed syllabus information for subjects at NIT Raipur.
This is the primary tool for any questions related to courses, subjects, syllabus content (units), credits, pre-requisites, or course materials.

Arguments:
1. department (required): a single valid department code, inferred from the user's query (e.g. "computer science" means the code "cse").
   Valid department codes: cse, it, electronics, electrical, mechanical, meta, civil, chemical, biotech, biomed, mining.
2. semester (optional): an integer between 1 and 8. Only provide it if the user explicitly asks for a specific semester; when omitted, subjects for all semesters of that department are returned.

This tool can only search ONE department at a time; for multi-department queries call it once per department.

Returns a JSON array of matching subject records. An empty array [] means no matches.`

// SyllabusTool answers curriculum questions with an exact-match query
// against the subjects database. Results go back to the model as
// structured JSON; no summarization pass.
type SyllabusTool struct {
	store  *store.SubjectStore
	logger *zap.Logger
}

// NewSyllabusTool creates the tool over the given store.
func NewSyllabusTool(s *store.SubjectStore, logger *zap.Logger) *SyllabusTool {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyllabusTool{store: s, logger: logger}
}

// Definition returns the registration entry for the agent.
func (t *SyllabusTool) Definition() *agent.ToolDefinition {
	return &agent.ToolDefinition{
		Name:        "syllabus_lookup",
		Description: syllabusDescription,
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"department": map[string]any{
					"type":        "string",
					"description": "A single valid department code, e.g. cse",
				},
				"semester": map[string]any{
					"type":        "integer",
					"description": "Optional semester number between 1 and 8",
				},
			},
			"required": []string{"department"},
		},
		Handler: t.Lookup,
	}
}

// Lookup validates the arguments, queries the store, and returns the
// matching subjects as a JSON array.
func (t *SyllabusTool) Lookup(ctx context.Context, args map[string]any) (string, error) {
	department, _ := args["department"].(string)
	if !slices.Contains(syllabusDepartments, department) {
		return fmt.Sprintf("department should be one of %v", syllabusDepartments), nil
	}

	semester, ok := semesterArg(args)
	if !ok {
		return "semester should be an integer between 1 and 8 inclusive", nil
	}

	subjects, err := t.store.Query(ctx, department, semester)
	if errors.Is(err, fs.ErrNotExist) {
		return "database not found. cannot retrieve syllabus", nil
	}
	if err != nil {
		return fmt.Sprintf("cannot retrieve syllabus: %v", err), nil
	}

	t.logger.Debug("syllabus query",
		zap.String("department", department),
		zap.Int("semester", semester),
		zap.Int("matches", len(subjects)))

	out, err := json.Marshal(subjects)
	if err != nil {
		return fmt.Sprintf("cannot encode syllabus records: %v", err), nil
	}

	return string(out), nil
}

// semesterArg extracts the optional semester argument. Zero means all
// semesters (an absent argument); out-of-range or non-integer values are
// rejected.
func semesterArg(args map[string]any) (int, bool) {
	raw, present := args["semester"]
	if !present || raw == nil {
		return 0, true
	}

	var semester int
	switch v := raw.(type) {
	case float64:
		if v != float64(int(v)) {
			return 0, false
		}
		semester = int(v)
	case int:
		semester = v
	default:
		return 0, false
	}

	if semester == 0 {
		return 0, true
	}
	if semester < 1 || semester > 8 {
		return 0, false
	}

	return semester, true
}
