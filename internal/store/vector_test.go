package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/nitrr/campus-assistant/internal/embedding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempVectorStore(t *testing.T) *VectorStore {
	t.Helper()
	v := NewVectorStore(filepath.Join(t.TempDir(), "ordinance.db"), embedding.NewHashEngine())
	require.NoError(t, v.CreateSchema(context.Background()))
	return v
}

func seedChunks(t *testing.T, v *VectorStore) {
	t.Helper()
	require.NoError(t, v.Add(context.Background(), []Chunk{
		{
			Content: "SPI is computed as the credit weighted average of semester grade points",
			Source:  "Academic Ordinance 2024", Page: 15,
			Degree: "B.Tech", ProgramLevel: "Undergraduate",
		},
		{
			Content: "attendance below seventy five percent leads to debarment from examinations",
			Source:  "Academic Ordinance 2024", Page: 22,
			Degree: "B.Tech", ProgramLevel: "Undergraduate",
		},
		{
			Content: "thesis submission deadlines for doctoral candidates and committee reviews",
			Source:  "PhD Ordinance 2023", Page: 8,
			Degree: "PHD", ProgramLevel: "Postgraduate",
		},
	}))
}

func TestVectorQuery_RanksBySimilarity(t *testing.T) {
	v := tempVectorStore(t)
	seedChunks(t, v)

	got, err := v.Query(context.Background(), "credit weighted average of semester grade points", 1, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 15, got[0].Page)
	assert.Equal(t, "Academic Ordinance 2024", got[0].Source)
}

func TestVectorQuery_FilterRestrictsCandidates(t *testing.T) {
	v := tempVectorStore(t)
	seedChunks(t, v)

	got, err := v.Query(context.Background(), "rules", 10, []Clause{
		{Field: "program_level", Value: "Postgraduate"},
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "PHD", got[0].Degree)

	got, err = v.Query(context.Background(), "rules", 10, []Clause{
		{Field: "degree", Value: "B.Tech"},
		{Field: "program_level", Value: "Undergraduate"},
	})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestVectorQuery_TopKBoundsResults(t *testing.T) {
	v := tempVectorStore(t)
	seedChunks(t, v)

	got, err := v.Query(context.Background(), "ordinance", 2, nil)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = v.Query(context.Background(), "ordinance", 10, nil)
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestVectorQuery_Idempotent(t *testing.T) {
	v := tempVectorStore(t)
	seedChunks(t, v)

	first, err := v.Query(context.Background(), "examination attendance", 3, nil)
	require.NoError(t, err)
	second, err := v.Query(context.Background(), "examination attendance", 3, nil)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestVectorQuery_MissingIndex(t *testing.T) {
	v := NewVectorStore(filepath.Join(t.TempDir(), "absent.db"), embedding.NewHashEngine())

	_, err := v.Query(context.Background(), "anything", 3, nil)
	require.Error(t, err)
}
