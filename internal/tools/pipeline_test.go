package tools

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/nextlevelbuilder/vtgo/internal/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackoffForAttemptMonotonicAndBounded(t *testing.T) {
	prev := time.Duration(0)
	for attempt := 0; attempt < 8; attempt++ {
		d := backoffForAttempt(attempt)
		assert.GreaterOrEqual(t, d, 350*time.Millisecond)
		assert.LessOrEqual(t, d, MaxRetryBackoff)
		if attempt > 0 && attempt <= 4 {
			assert.GreaterOrEqual(t, d, prev, "backoff should not shrink while attempt <= 4")
		}
		prev = d
	}
}

func TestReentrancyGuardBlocksSelfReentry(t *testing.T) {
	g := newReentrancyGuard()
	leave, err := g.enter("shell")
	require.NoError(t, err)
	defer leave()

	_, err2 := g.enter("shell")
	assert.Error(t, err2)
}

func TestReentrancyGuardDepthLimit(t *testing.T) {
	g := newReentrancyGuard()
	var leaves []func()
	for i := 0; i < maxStackDepth; i++ {
		leave, err := g.enter(string(rune('a' + i%26)) + string(rune(i)))
		require.NoError(t, err)
		leaves = append(leaves, leave)
	}
	_, err := g.enter("one_too_many")
	assert.Error(t, err)
	for _, leave := range leaves {
		leave()
	}
}

func TestLoopDetectorDoesNotTriggerWithinLimit(t *testing.T) {
	d := newLoopDetector()
	args := api.Args{"path": "foo.go"}
	var last int
	for i := 0; i < loopDetectLimit; i++ {
		last = d.observe("read_file", args)
	}
	assert.Equal(t, loopDetectLimit, last)
}

// TestExecuteToolReusesResultOnFourthIdenticalCall matches spec.md §8's
// worked example: 4 identical calls to a read-only tool, the 4th is not
// dispatched but reuses the cached result, annotated with repeat_count: 4
// and limit: 3 (loopDetectLimit).
func TestExecuteToolReusesResultOnFourthIdenticalCall(t *testing.T) {
	dir := t.TempDir()
	r := DefaultRegistry(dir)
	task := r.NewTask()
	args := api.Args{"path": "."}

	var raw json.RawMessage
	var err error
	for i := 0; i < loopDetectLimit+1; i++ {
		raw, err = r.ExecuteTool(context.Background(), task, "ls", args, ExecuteOptions{})
		require.NoError(t, err)
	}

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, true, decoded["loop_detected"])
	assert.Equal(t, true, decoded["reused_recent_result"])
	assert.EqualValues(t, loopDetectLimit+1, decoded["repeat_count"])
	assert.EqualValues(t, loopDetectLimit, decoded["limit"])
}

// TestExecuteToolBlocksMutatingToolOnFourthIdenticalCall mirrors the same
// worked example for a mutating (non-cacheable) tool: the 4th identical
// call aborts the turn instead of being dispatched again.
func TestExecuteToolBlocksMutatingToolOnFourthIdenticalCall(t *testing.T) {
	dir := t.TempDir()
	r := DefaultRegistry(dir)
	task := r.NewTask()
	args := api.Args{"path": "loop.txt", "content": "x"}

	var execErr error
	for i := 0; i < loopDetectLimit+1; i++ {
		_, execErr = r.ExecuteTool(context.Background(), task, "write_file", args, ExecuteOptions{})
	}

	var polErr *PolicyViolationError
	require.ErrorAs(t, execErr, &polErr)
	assert.True(t, polErr.LoopDetected)
	assert.Equal(t, loopDetectLimit+1, polErr.RepeatCount)
}

func TestExecuteToolDeniesReentrantCallAsPolicyViolation(t *testing.T) {
	r := DefaultRegistry(t.TempDir())
	task := r.NewTask()
	leave, err := task.reentrancy.enter("ls")
	require.NoError(t, err)
	defer leave()

	_, execErr := r.ExecuteTool(context.Background(), task, "ls", api.Args{}, ExecuteOptions{})
	var polErr *PolicyViolationError
	require.ErrorAs(t, execErr, &polErr)
}

func TestExecuteToolUnknownToolReturnsEncodedNotFound(t *testing.T) {
	r := DefaultRegistry(t.TempDir())
	task := r.NewTask()
	raw, err := r.ExecuteTool(context.Background(), task, "does_not_exist", api.Args{}, ExecuteOptions{})
	require.NoError(t, err)
	assert.Contains(t, string(raw), "error_code")
}
