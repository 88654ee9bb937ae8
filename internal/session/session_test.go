package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/nitrr/campus-assistant/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRepository struct {
	stored map[string][]model.Message
	saves  int
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{stored: map[string][]model.Message{}}
}

func (r *memoryRepository) Save(_ context.Context, id string, history []model.Message) error {
	r.saves++
	r.stored[id] = history
	return nil
}

func (r *memoryRepository) Load(_ context.Context, id string) ([]model.Message, error) {
	return r.stored[id], nil
}

func (r *memoryRepository) Delete(_ context.Context, id string) error {
	delete(r.stored, id)
	return nil
}

func TestSession_AppendAndCopy(t *testing.T) {
	sess := New("t")
	sess.Append(model.User("hi"), model.Assistant("hello"))

	msgs := sess.Messages()
	require.Len(t, msgs, 2)

	// Mutating the copy must not reach the session.
	msgs[0].Content = "changed"
	assert.Equal(t, "hi", sess.Messages()[0].Content)
}

func TestSession_RepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryRepository()

	sess, err := NewWithRepository(ctx, "s1", repo)
	require.NoError(t, err)
	sess.Append(model.User("hi"), model.Assistant("hello"))
	require.NoError(t, sess.Sync(ctx))
	assert.Equal(t, 1, repo.saves)

	resumed, err := NewWithRepository(ctx, "s1", repo)
	require.NoError(t, err)
	assert.Equal(t, sess.Messages(), resumed.Messages())
}

func TestWriteTranscript_Format(t *testing.T) {
	sess := New("t")
	sess.Append(
		model.User("Who is the HOD of CSE?"),
		model.Message{
			Role:    model.RoleAssistant,
			Content: "Let me look that up.",
			ToolCalls: []model.ToolCall{{
				ID:   "fc-1",
				Name: "faculty_lookup",
				Args: map[string]any{"department": "cse"},
			}},
		},
		model.ToolResult("fc-1", "faculty_lookup", "Dr. A. Verma is the HOD."),
		model.Assistant("The HOD of CSE is Dr. A. Verma."),
	)

	path := filepath.Join(t.TempDir(), "history.txt")
	require.NoError(t, sess.WriteTranscript(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, "CONVERSATION LOG")
	assert.Contains(t, text, "[USER]\nWho is the HOD of CSE?")
	assert.Contains(t, text, "[ASSISTANT]\nLet me look that up.")
	assert.Contains(t, text, "  └── tool_calls:")
	assert.Contains(t, text, "- id: fc-1")
	assert.Contains(t, text, "name: faculty_lookup")
	assert.Contains(t, text, `"department"`)
	assert.Contains(t, text, "[TOOL (faculty_lookup)]\nDr. A. Verma is the HOD.")
}

func TestWriteTranscript_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.txt")

	sess := New("t")
	sess.Append(model.User("first question"))
	require.NoError(t, sess.WriteTranscript(path))

	sess.Append(model.Assistant("first answer"))
	require.NoError(t, sess.WriteTranscript(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, countOccurrences(string(data), "first question"))
	assert.Contains(t, string(data), "first answer")
}

func TestWriteTranscript_CreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "history.txt")

	sess := New("t")
	sess.Append(model.User("hi"))
	require.NoError(t, sess.WriteTranscript(path))

	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func countOccurrences(haystack, needle string) int {
	count := 0
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			count++
		}
	}
	return count
}
