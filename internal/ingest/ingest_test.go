package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nitrr/campus-assistant/internal/embedding"
	"github.com/nitrr/campus-assistant/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitChunks(t *testing.T) {
	t.Run("short paragraphs are merged", func(t *testing.T) {
		chunks := splitChunks("first paragraph\n\nsecond paragraph", 100)
		require.Len(t, chunks, 1)
		assert.Equal(t, "first paragraph\n\nsecond paragraph", chunks[0])
	})

	t.Run("splits at size boundary", func(t *testing.T) {
		a := strings.Repeat("a", 60)
		b := strings.Repeat("b", 60)
		chunks := splitChunks(a+"\n\n"+b, 100)
		require.Len(t, chunks, 2)
		assert.Equal(t, a, chunks[0])
		assert.Equal(t, b, chunks[1])
	})

	t.Run("blank paragraphs and CRLF are handled", func(t *testing.T) {
		chunks := splitChunks("one\r\n\r\n\r\n\r\ntwo", 100)
		require.Len(t, chunks, 1)
		assert.Equal(t, "one\n\ntwo", chunks[0])
	})

	t.Run("empty input yields nothing", func(t *testing.T) {
		assert.Empty(t, splitChunks("", 100))
		assert.Empty(t, splitChunks("  \n\n  ", 100))
	})
}

func TestIngestDir_TextWithManifest(t *testing.T) {
	ctx := context.Background()
	docsDir := t.TempDir()

	require.NoError(t, os.WriteFile(
		filepath.Join(docsDir, "btech-ordinance.txt"),
		[]byte("SPI is the credit weighted average of grade points.\n\nAttendance must stay above seventy five percent."),
		0o644))
	require.NoError(t, os.WriteFile(
		filepath.Join(docsDir, "manifest.json"),
		[]byte(`{"btech-ordinance.txt": {"degree": "B.Tech", "program_level": "Undergraduate"}}`),
		0o644))
	// Files with unsupported extensions are skipped.
	require.NoError(t, os.WriteFile(filepath.Join(docsDir, "notes.csv"), []byte("a,b"), 0o644))

	vectorStore := store.NewVectorStore(filepath.Join(t.TempDir(), "ordinance.db"), embedding.NewHashEngine())
	require.NoError(t, vectorStore.CreateSchema(ctx))

	n, err := New(vectorStore, nil).IngestDir(ctx, docsDir)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := vectorStore.Query(ctx, "credit weighted average", 5, []store.Clause{
		{Field: "degree", Value: "B.Tech"},
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "btech-ordinance.txt", got[0].Source)
	assert.Equal(t, 1, got[0].Page)
	assert.Equal(t, "Undergraduate", got[0].ProgramLevel)
}

func TestIngestDir_MissingDir(t *testing.T) {
	vectorStore := store.NewVectorStore(filepath.Join(t.TempDir(), "ordinance.db"), embedding.NewHashEngine())

	_, err := New(vectorStore, nil).IngestDir(context.Background(), filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}
