// Package planmode implements the Plan-Mode Controller: a small two-state
// machine (Plan/Edit) that the tool pipeline consults before dispatching a
// mutating tool. Plan mode is read-only except for a fixed allow-list of
// planning-note tools; exiting Plan mode back to Edit can require a modal
// confirmation before mutating tools are unblocked.
package planmode

import "sync"

// State is one of the two controller states.
type State string

const (
	// Plan is the read-only investigation state.
	Plan State = "plan"
	// Edit is the normal state where mutating tools are allowed.
	Edit State = "edit"
)

// Controller tracks the current state for a single session and the set of
// tool names that remain callable while in Plan mode.
type Controller struct {
	mu          sync.RWMutex
	state       State
	allowlist   []string
	pendingExit bool
}

// defaultAllowlist mirrors the tools package's plan-mode exceptions: reading
// and writing plan notes never mutates the workspace itself.
var defaultAllowlist = []string{"write_todos", "read_todos", "enter_plan_mode", "exit_plan_mode"}

// New returns a controller starting in Edit state.
func New() *Controller {
	return &Controller{state: Edit, allowlist: defaultAllowlist}
}

// EnterPlan transitions into Plan mode. Idempotent.
func (c *Controller) EnterPlan() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Plan
	c.pendingExit = false
}

// RequestExit marks an exit-plan-mode request as pending confirmation. The
// caller (the chat REPL's modal) must call ConfirmExit before mutating
// tools are unblocked; until then Query still reports Plan mode active.
func (c *Controller) RequestExit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Plan {
		c.pendingExit = true
	}
}

// ConfirmExit completes a pending exit, or exits immediately if no
// confirmation was ever required by the caller's workflow.
func (c *Controller) ConfirmExit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = Edit
	c.pendingExit = false
}

// CancelExit abandons a pending exit request, leaving Plan mode active.
func (c *Controller) CancelExit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pendingExit = false
}

// IsPlanMode reports whether the controller is currently in Plan state.
func (c *Controller) IsPlanMode() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state == Plan
}

// PendingExit reports whether an exit confirmation is outstanding.
func (c *Controller) PendingExit() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pendingExit
}

// Query implements the registry's plan-mode hook: (active, allowlist).
func (c *Controller) Query() (bool, []string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state == Plan, c.allowlist
}
