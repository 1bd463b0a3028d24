package snapshot

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nextlevelbuilder/vtgo/internal/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReadRoundTrip(t *testing.T) {
	workspaceRoot := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(workspaceRoot, "x.txt"), []byte("v1"), 0644))

	st, err := NewStore(workspaceRoot)
	require.NoError(t, err)

	meta := Meta{
		TurnNumber:    1,
		Description:   "add x.txt",
		Conversation:  []api.LLMMessage{{Role: "user", Content: "add x.txt"}},
		ModifiedFiles: []string{"x.txt"},
		CreatedAt:     time.Now(),
	}
	require.NoError(t, st.Write("sess-1", meta))

	got, err := st.Read("sess-1", 1)
	require.NoError(t, err)
	assert.Equal(t, "add x.txt", got.Description)
	assert.Equal(t, []string{"x.txt"}, got.ModifiedFiles)

	snapped := filepath.Join(workspaceRoot, "snapshots", "sess-1", "turn_1", "files", "x.txt")
	data, err := os.ReadFile(snapped)
	require.NoError(t, err)
	assert.Equal(t, "v1", string(data))
}

func TestListReturnsTurnsAscending(t *testing.T) {
	workspaceRoot := t.TempDir()
	st, err := NewStore(workspaceRoot)
	require.NoError(t, err)

	require.NoError(t, st.Write("sess-1", Meta{TurnNumber: 2, CreatedAt: time.Now()}))
	require.NoError(t, st.Write("sess-1", Meta{TurnNumber: 1, CreatedAt: time.Now()}))

	turns, err := st.List("sess-1")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, turns)
}

func TestListEmptyForUnknownSession(t *testing.T) {
	workspaceRoot := t.TempDir()
	st, err := NewStore(workspaceRoot)
	require.NoError(t, err)

	turns, err := st.List("nope")
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestRestoreCodeOverwritesWorkspaceFile(t *testing.T) {
	workspaceRoot := t.TempDir()
	path := filepath.Join(workspaceRoot, "x.txt")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0644))

	st, err := NewStore(workspaceRoot)
	require.NoError(t, err)
	require.NoError(t, st.Write("sess-1", Meta{
		TurnNumber:    1,
		ModifiedFiles: []string{"x.txt"},
		CreatedAt:     time.Now(),
	}))

	// Simulate further edits after the checkpoint.
	require.NoError(t, os.WriteFile(path, []byte("v2"), 0644))

	meta, err := st.Restore("sess-1", 1, RevertCode)
	require.NoError(t, err)
	assert.Equal(t, 1, meta.TurnNumber)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "v1", string(data))
}

func TestRestoreConversationDoesNotTouchFiles(t *testing.T) {
	workspaceRoot := t.TempDir()
	path := filepath.Join(workspaceRoot, "x.txt")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0644))

	st, err := NewStore(workspaceRoot)
	require.NoError(t, err)
	require.NoError(t, st.Write("sess-1", Meta{
		TurnNumber:    1,
		ModifiedFiles: []string{"x.txt"},
		Conversation:  []api.LLMMessage{{Role: "user", Content: "hi"}},
		CreatedAt:     time.Now(),
	}))

	require.NoError(t, os.WriteFile(path, []byte("v2"), 0644))

	meta, err := st.Restore("sess-1", 1, RevertConversation)
	require.NoError(t, err)
	assert.Equal(t, "hi", meta.Conversation[0].Content)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "v2", string(data), "conversation-scoped restore must not touch workspace files")
}

func TestCopyIntoSnapshotRejectsPathEscape(t *testing.T) {
	workspaceRoot := t.TempDir()
	st, err := NewStore(workspaceRoot)
	require.NoError(t, err)

	// A checkpoint referencing a path outside the workspace is skipped, not fatal.
	err = st.Write("sess-1", Meta{TurnNumber: 1, ModifiedFiles: []string{"../escape.txt"}, CreatedAt: time.Now()})
	require.NoError(t, err)

	_, statErr := os.Stat(filepath.Join(workspaceRoot, "snapshots", "sess-1", "turn_1", "files", "escape.txt"))
	assert.True(t, os.IsNotExist(statErr))
}
