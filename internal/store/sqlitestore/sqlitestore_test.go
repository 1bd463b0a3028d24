package sqlitestore

import (
	"context"
	"testing"

	"github.com/nextlevelbuilder/vtgo/internal/api"
	"github.com/nextlevelbuilder/vtgo/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStoreRoundTrip(t *testing.T) {
	db, err := Open(t.TempDir())
	require.NoError(t, err)
	defer db.Close()

	ss := db.SessionStore()
	ctx := context.Background()

	_, err = ss.Get(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)

	session := &api.Session{SessionID: "s1", Summary: "hello"}
	require.NoError(t, ss.Put(ctx, "s1", session))

	got, err := ss.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Summary)

	ids, err := ss.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, ids)

	require.NoError(t, ss.Del(ctx, "s1"))
	_, err = ss.Get(ctx, "s1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestPlanStoreRoundTrip(t *testing.T) {
	db, err := Open(t.TempDir())
	require.NoError(t, err)
	defer db.Close()

	ps := db.PlanStore()
	ctx := context.Background()

	plan := &api.PlanPayload{}
	require.NoError(t, ps.Put(ctx, "p1", plan))

	_, err = ps.Get(ctx, "p1")
	require.NoError(t, err)

	require.NoError(t, ps.Del(ctx, "p1"))
	_, err = ps.Get(ctx, "p1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
