package runtime

import (
	"context"
	"testing"

	"github.com/nextlevelbuilder/vtgo/internal/api"
	"github.com/nextlevelbuilder/vtgo/internal/policy"
	"github.com/nextlevelbuilder/vtgo/internal/snapshot"
	"github.com/nextlevelbuilder/vtgo/internal/store"
	"github.com/nextlevelbuilder/vtgo/internal/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTurnRunnerCommitsCheckpointOnCompletedTurn(t *testing.T) {
	ws := t.TempDir()

	reg := tools.NewRegistry()
	sessionStore, err := store.NewFileSessionStore(ws)
	require.NoError(t, err)
	planStore, err := store.NewFilePlanStore(ws)
	require.NoError(t, err)
	snapshots, err := snapshot.NewStore(ws)
	require.NoError(t, err)

	runner := NewTurnRunner(TurnRunnerConfig{
		LLM:           staticLLM{out: "hi there"},
		Tools:         reg,
		Policy:        policy.NewDefaultPolicy(),
		SessionStore:  sessionStore,
		PlanStore:     planStore,
		WorkspaceRoot: ws,
		Snapshots:     snapshots,
		ApprovalMode:  api.ModeFullAuto,
	})

	sess := &api.Session{SessionID: "s1"}
	stream, err := runner.Run(context.Background(), sess, "hello")
	require.NoError(t, err)
	drainEvents(t, stream)

	turns, err := snapshots.List("s1")
	require.NoError(t, err)
	require.Equal(t, []int{1}, turns)

	meta, err := snapshots.Read("s1", 1)
	require.NoError(t, err)
	assert.Equal(t, "hello", meta.Description)
	assert.Equal(t, 1, sess.TurnCount)
}

func TestTurnRunnerSkipsCheckpointWithoutSnapshotStore(t *testing.T) {
	ws := t.TempDir()

	reg := tools.NewRegistry()
	sessionStore, err := store.NewFileSessionStore(ws)
	require.NoError(t, err)
	planStore, err := store.NewFilePlanStore(ws)
	require.NoError(t, err)

	runner := NewTurnRunner(TurnRunnerConfig{
		LLM:           staticLLM{out: "hi there"},
		Tools:         reg,
		Policy:        policy.NewDefaultPolicy(),
		SessionStore:  sessionStore,
		PlanStore:     planStore,
		WorkspaceRoot: ws,
		ApprovalMode:  api.ModeFullAuto,
	})

	sess := &api.Session{SessionID: "s1"}
	stream, err := runner.Run(context.Background(), sess, "hello")
	require.NoError(t, err)
	drainEvents(t, stream)

	assert.Equal(t, 0, sess.TurnCount)
}
