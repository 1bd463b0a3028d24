package runtime

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nextlevelbuilder/vtgo/internal/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func manyMessages(n int) []api.LLMMessage {
	var msgs []api.LLMMessage
	for i := 0; i < n; i++ {
		msgs = append(msgs, api.LLMMessage{Role: "user", Content: "hello"})
		msgs = append(msgs, api.LLMMessage{Role: "assistant", Content: "hi there"})
	}
	return msgs
}

func TestCompressHistorySpoolsAndHintsWhenWorkspaceSet(t *testing.T) {
	dir := t.TempDir()
	session := &api.Session{SessionID: "sess-1", Messages: manyMessages(15)}

	llm := staticLLM{out: "a concise summary"}
	err := CompressHistory(context.Background(), llm, session, CompressConfig{
		KeepTurns:     1,
		MaxMessages:   5,
		ForceCompress: true,
		WorkspaceRoot: dir,
	})
	require.NoError(t, err)

	assert.Contains(t, session.Summary, "a concise summary")
	assert.Contains(t, session.Summary, "Full conversation history saved to:")
	assert.Contains(t, session.Summary, "Use grep to search for specific details if needed.")

	historyDir := filepath.Join(dir, ".vtgo", "history")
	entries, err := os.ReadDir(historyDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, strings.HasPrefix(entries[0].Name(), "sess-1_"))

	data, err := os.ReadFile(filepath.Join(historyDir, entries[0].Name()))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.NotEmpty(t, lines)
	assert.Contains(t, lines[0], `"_type":"metadata"`)
	assert.Contains(t, lines[0], `"session_id":"sess-1"`)
}

func TestCompressHistorySkipsSpoolWithoutWorkspaceRoot(t *testing.T) {
	session := &api.Session{SessionID: "sess-2", Messages: manyMessages(15)}

	llm := staticLLM{out: "summary text"}
	err := CompressHistory(context.Background(), llm, session, CompressConfig{
		KeepTurns:     1,
		MaxMessages:   5,
		ForceCompress: true,
	})
	require.NoError(t, err)

	assert.Equal(t, "summary text", session.Summary)
	assert.NotContains(t, session.Summary, "Full conversation history saved to:")
}
