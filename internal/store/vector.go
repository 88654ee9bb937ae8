package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/nitrr/campus-assistant/internal/embedding"
)

// Chunk is one indexed document passage with its citation metadata.
type Chunk struct {
	Content      string
	Source       string
	Page         int
	Degree       string
	ProgramLevel string
}

// VectorStore is the embedding-based index over ordinance documents.
// Embeddings are stored JSON-serialized next to the chunk; queries rank
// candidates by cosine similarity after applying the metadata filter as
// SQL equality predicates.
type VectorStore struct {
	path   string
	engine embedding.Engine
}

// NewVectorStore creates a store over the database file at path.
func NewVectorStore(path string, engine embedding.Engine) *VectorStore {
	return &VectorStore{path: path, engine: engine}
}

// CreateSchema creates the chunks table if it does not exist.
func (v *VectorStore) CreateSchema(ctx context.Context) error {
	db, err := sql.Open("sqlite3", v.path)
	if err != nil {
		return fmt.Errorf("store: open index: %w", err)
	}
	defer db.Close()

	_, err = db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS chunks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		content TEXT NOT NULL,
		embedding TEXT NOT NULL,
		source TEXT NOT NULL,
		page INTEGER NOT NULL,
		degree TEXT NOT NULL DEFAULT '',
		program_level TEXT NOT NULL DEFAULT ''
	)`)
	if err != nil {
		return fmt.Errorf("store: create chunks table: %w", err)
	}

	return nil
}

// Add embeds and stores the given chunks.
func (v *VectorStore) Add(ctx context.Context, chunks []Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	db, err := sql.Open("sqlite3", v.path)
	if err != nil {
		return fmt.Errorf("store: open index: %w", err)
	}
	defer db.Close()

	for _, chunk := range chunks {
		vec, err := v.engine.Embed(ctx, chunk.Content)
		if err != nil {
			return fmt.Errorf("store: embed chunk from %q: %w", chunk.Source, err)
		}

		vecJSON, err := json.Marshal(vec)
		if err != nil {
			return fmt.Errorf("store: encode embedding: %w", err)
		}

		_, err = db.ExecContext(ctx, `INSERT INTO chunks
			(content, embedding, source, page, degree, program_level)
			VALUES (?, ?, ?, ?, ?, ?)`,
			chunk.Content, string(vecJSON), chunk.Source, chunk.Page,
			chunk.Degree, chunk.ProgramLevel,
		)
		if err != nil {
			return fmt.Errorf("store: insert chunk from %q: %w", chunk.Source, err)
		}
	}

	return nil
}

// Query returns the topK chunks most similar to the query text, restricted
// to rows matching every filter clause. Results come back in rank order.
func (v *VectorStore) Query(ctx context.Context, query string, topK int, filter []Clause) ([]Chunk, error) {
	if _, err := os.Stat(v.path); err != nil {
		return nil, fmt.Errorf("store: index: %w", err)
	}

	queryVec, err := v.engine.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("store: embed query: %w", err)
	}

	db, err := sql.Open("sqlite3", v.path)
	if err != nil {
		return nil, fmt.Errorf("store: open index: %w", err)
	}
	defer db.Close()

	stmt := `SELECT content, embedding, source, page, degree, program_level FROM chunks`
	var predicates []string
	var params []any
	for _, clause := range filter {
		predicates = append(predicates, clause.Field+" = ?")
		params = append(params, clause.Value)
	}
	if len(predicates) > 0 {
		stmt += " WHERE " + strings.Join(predicates, " AND ")
	}

	rows, err := db.QueryContext(ctx, stmt, params...)
	if err != nil {
		return nil, fmt.Errorf("store: query chunks: %w", err)
	}
	defer rows.Close()

	type scored struct {
		chunk Chunk
		score float64
	}

	var candidates []scored
	for rows.Next() {
		var chunk Chunk
		var vecJSON string
		if err := rows.Scan(&chunk.Content, &vecJSON, &chunk.Source, &chunk.Page,
			&chunk.Degree, &chunk.ProgramLevel); err != nil {
			return nil, fmt.Errorf("store: scan chunk: %w", err)
		}

		var vec []float32
		if err := json.Unmarshal([]byte(vecJSON), &vec); err != nil {
			return nil, fmt.Errorf("store: decode embedding: %w", err)
		}

		score, err := embedding.CosineSimilarity(queryVec, vec)
		if err != nil {
			return nil, fmt.Errorf("store: score chunk: %w", err)
		}

		candidates = append(candidates, scored{chunk: chunk, score: score})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterate chunks: %w", err)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if topK > len(candidates) {
		topK = len(candidates)
	}

	out := make([]Chunk, topK)
	for i := range out {
		out[i] = candidates[i].chunk
	}
	return out, nil
}
