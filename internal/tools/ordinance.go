package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/nitrr/campus-assistant/internal/agent"
	"github.com/nitrr/campus-assistant/internal/store"
	"go.uber.org/zap"
)

// Result sizes: a metadata filter narrows the candidate set, so a filtered
// query asks for more passages than an unfiltered one.
const (
	ordinanceTopKFiltered   = 5
	ordinanceTopKUnfiltered = 3
)

const ordinanceDescription = `Finds official rules, policies, and regulations from the NIT Raipur Ordinance documents.
It is the best tool for any question related to academic rules, grading, credits, attendance, examinations, or policies.

Arguments:
1. query (required): a concise semantic search query derived from the user's question. Example: for "How is the SPI for B.Tech students calculated?" use "SPI calculation for B.Tech".
2. filters (optional): a metadata filter to narrow the search, inferred from the query.

Available filter fields:
* degree: "B.Tech", "B.Arch", "M.Tech", "MCA", "PHD" or "M.SC".
* program_level: "Undergraduate" or "Postgraduate".

Filter syntax (strictly enforced):
* Single condition: use the field name as the top-level key. Example: {"degree": {"$eq": "B.Tech"}}
* Multiple conditions: use a single top-level $and operator. Example: {"$and": [{"degree": {"$eq": "B.Tech"}}, {"program_level": {"$eq": "Undergraduate"}}]}
* Never place multiple fields at the top level.
  WRONG: {"degree": "B.Tech", "program_level": "Undergraduate"}
  RIGHT: {"$and": [{"degree": {"$eq": "B.Tech"}}, {"program_level": {"$eq": "Undergraduate"}}]}

If a query compares two different programs (e.g. B.Tech and B.Arch), do not try an $or filter; call this tool once per program so each retrieval gets the correct context.`

// Index is the semantic search boundary the ordinance tool queries.
type Index interface {
	Query(ctx context.Context, query string, topK int, filter []store.Clause) ([]store.Chunk, error)
}

// OrdinanceTool retrieves ordinance passages by semantic similarity and
// returns them with source citations; the agent's model does the final
// reasoning over them.
type OrdinanceTool struct {
	index  Index
	logger *zap.Logger
}

// NewOrdinanceTool creates the tool over the given index.
func NewOrdinanceTool(index Index, logger *zap.Logger) *OrdinanceTool {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrdinanceTool{index: index, logger: logger}
}

// Definition returns the registration entry for the agent.
func (t *OrdinanceTool) Definition() *agent.ToolDefinition {
	return &agent.ToolDefinition{
		Name:        "ordinance_lookup",
		Description: ordinanceDescription,
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "A concise semantic search query",
				},
				"filters": map[string]any{
					"type":        "object",
					"description": "Optional metadata filter over degree and program_level, {\"field\": {\"$eq\": value}} or {\"$and\": [...]}",
				},
			},
			"required": []string{"query"},
		},
		Handler: t.Lookup,
	}
}

// Lookup searches the index and formats the ranked passages with their
// source document and page, separated by blank lines.
func (t *OrdinanceTool) Lookup(ctx context.Context, args map[string]any) (string, error) {
	query, _ := args["query"].(string)
	if strings.TrimSpace(query) == "" {
		return "query is required and must be a non-empty string", nil
	}

	var rawFilter map[string]any
	if raw, present := args["filters"]; present && raw != nil {
		m, ok := raw.(map[string]any)
		if !ok {
			return "filters must be an object", nil
		}
		rawFilter = m
	}

	clauses, err := store.ParseFilter(rawFilter)
	if err != nil {
		return fmt.Sprintf("invalid filters: %v", err), nil
	}

	topK := ordinanceTopKUnfiltered
	if len(clauses) > 0 {
		topK = ordinanceTopKFiltered
	}

	chunks, err := t.index.Query(ctx, query, topK, clauses)
	if err != nil {
		return fmt.Sprintf("could not search the ordinance index: %v", err), nil
	}

	t.logger.Debug("ordinance query",
		zap.String("query", query),
		zap.Int("top_k", topK),
		zap.Int("results", len(chunks)))

	blocks := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		blocks = append(blocks, fmt.Sprintf("Source: %s (Page %d)\n%s", chunk.Source, chunk.Page, chunk.Content))
	}

	return strings.Join(blocks, "\n\n"), nil
}
