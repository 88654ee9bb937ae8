// Package ingest loads ordinance documents from a directory, chunks them,
// and writes them into the vector store with their citation metadata.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nitrr/campus-assistant/internal/store"
	"go.uber.org/zap"
)

const defaultChunkSize = 800
const manifestName = "manifest.json"

// Metadata is the per-document entry of the manifest file, keyed by
// filename. Documents without an entry are indexed without degree or
// program-level metadata and match only unfiltered queries.
type Metadata struct {
	Degree       string `json:"degree"`
	ProgramLevel string `json:"program_level"`
}

// Ingester indexes documents into a vector store.
type Ingester struct {
	store  *store.VectorStore
	logger *zap.Logger
}

// New creates an Ingester.
func New(s *store.VectorStore, logger *zap.Logger) *Ingester {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ingester{store: s, logger: logger}
}

// IngestDir indexes all .pdf, .txt, and .md files in dir and returns the
// number of chunks stored. A manifest.json in dir maps filenames to their
// degree and program_level metadata.
func (i *Ingester) IngestDir(ctx context.Context, dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("ingest: read dir: %w", err)
	}

	manifest, err := loadManifest(dir)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, entry := range entries {
		if entry.IsDir() || entry.Name() == manifestName {
			continue
		}

		name := entry.Name()
		path := filepath.Join(dir, name)
		meta := manifest[name]

		var chunks []store.Chunk
		switch strings.ToLower(filepath.Ext(name)) {
		case ".pdf":
			chunks, err = chunkPDF(path, name, meta)
		case ".txt", ".md":
			chunks, err = chunkTextFile(path, name, meta)
		default:
			continue
		}
		if err != nil {
			return total, fmt.Errorf("ingest: %q: %w", name, err)
		}

		if err := i.store.Add(ctx, chunks); err != nil {
			return total, fmt.Errorf("ingest: index %q: %w", name, err)
		}

		i.logger.Info("indexed document",
			zap.String("file", name),
			zap.Int("chunks", len(chunks)),
			zap.String("degree", meta.Degree),
			zap.String("program_level", meta.ProgramLevel))
		total += len(chunks)
	}

	return total, nil
}

func loadManifest(dir string) (map[string]Metadata, error) {
	data, err := os.ReadFile(filepath.Join(dir, manifestName))
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]Metadata{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("ingest: read manifest: %w", err)
	}

	manifest := map[string]Metadata{}
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("ingest: decode manifest: %w", err)
	}

	return manifest, nil
}

// chunkPDF extracts text page by page, so every chunk carries a real page
// number for citations.
func chunkPDF(path, source string, meta Metadata) ([]store.Chunk, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var chunks []store.Chunk
	for pageNum := 1; pageNum <= r.NumPage(); pageNum++ {
		page := r.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("read pdf page %d: %w", pageNum, err)
		}

		for _, c := range splitChunks(text, defaultChunkSize) {
			chunks = append(chunks, store.Chunk{
				Content:      c,
				Source:       source,
				Page:         pageNum,
				Degree:       meta.Degree,
				ProgramLevel: meta.ProgramLevel,
			})
		}
	}

	return chunks, nil
}

func chunkTextFile(path, source string, meta Metadata) ([]store.Chunk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var chunks []store.Chunk
	for _, c := range splitChunks(string(data), defaultChunkSize) {
		chunks = append(chunks, store.Chunk{
			Content:      c,
			Source:       source,
			Page:         1,
			Degree:       meta.Degree,
			ProgramLevel: meta.ProgramLevel,
		})
	}

	return chunks, nil
}

// splitChunks groups paragraphs into chunks of at most maxLen characters.
// A single paragraph longer than maxLen becomes its own chunk.
func splitChunks(text string, maxLen int) []string {
	paragraphs := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n")

	var chunks []string
	current := strings.Builder{}

	for _, p := range paragraphs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}

		if current.Len() > 0 && current.Len()+len(p)+2 > maxLen {
			chunks = append(chunks, strings.TrimSpace(current.String()))
			current.Reset()
		}

		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(p)
	}

	if current.Len() > 0 {
		chunks = append(chunks, strings.TrimSpace(current.String()))
	}

	return chunks
}
