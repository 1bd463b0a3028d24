package tools

import (
	"fmt"
	"sync"
)

// maxStackDepth bounds the global reentrancy stack regardless of per-tool
// depth, guarding against runaway mutual recursion across different tools.
const maxStackDepth = 64

// reentrancyGuard tracks the active tool-name stack for one task (one turn's
// sequential tool dispatch). Re-entering the same tool within a task is
// disallowed at depth 1; this is intentionally per-task state, not
// per-registry, so concurrent turns across sessions don't contend.
type reentrancyGuard struct {
	mu    sync.Mutex
	stack []string
}

func newReentrancyGuard() *reentrancyGuard {
	return &reentrancyGuard{}
}

// enter pushes name onto the stack, or returns a descriptive error if doing
// so would violate the reentrancy or depth invariant. The caller must call
// the returned leave func exactly once, on every exit path.
func (g *reentrancyGuard) enter(name string) (leave func(), err error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(g.stack) >= maxStackDepth {
		return nil, fmt.Errorf("tool call stack depth exceeded (%d): %v", maxStackDepth, append(append([]string{}, g.stack...), name))
	}
	for _, active := range g.stack {
		if active == name {
			return nil, fmt.Errorf("reentrant call into %q disallowed; active stack: %v", name, append(append([]string{}, g.stack...), name))
		}
	}

	g.stack = append(g.stack, name)
	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		if n := len(g.stack); n > 0 && g.stack[n-1] == name {
			g.stack = g.stack[:n-1]
		}
	}, nil
}
