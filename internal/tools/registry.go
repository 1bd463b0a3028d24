package tools

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// Registry manages a collection of tools plus the resiliency and safety
// state the execution lifecycle in §4.1 needs: reentrancy guards, loop
// detection, circuit breakers, and the read-only result cache. One Registry
// is shared across a process; per-task state (the reentrancy stack, loop
// detector) is created per ExecuteTool caller via NewTask.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool

	aliases   *aliasTable
	mcpBridge MCPBridge
	breakers  *Breakers
	cache     *resultCache
	spool     SpoolWriter

	fullAuto  bool
	planModeFn func() (active bool, extraAllowlist []string)
}

// NewRegistry creates a new empty tool registry.
func NewRegistry() *Registry {
	return &Registry{
		tools:    make(map[string]Tool),
		aliases:  newAliasTable(),
		breakers: NewBreakers(),
		cache:    newResultCache(5 * time.Minute),
	}
}

// Register adds a tool to the registry.
// Returns an error if a tool with the same name already exists.
func (r *Registry) Register(tool Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := tool.Name()
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool already registered: %s", name)
	}

	r.tools[name] = tool
	return nil
}

// MustRegister adds a tool to the registry, panicking on error.
func (r *Registry) MustRegister(tool Tool) {
	if err := r.Register(tool); err != nil {
		panic(err)
	}
}

// RegisterAlias registers an alternate name that resolves to canonicalName.
func (r *Registry) RegisterAlias(alias, canonicalName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.aliases.byAlias[alias] = canonicalName
}

// SetMCPBridge wires an MCP bridge for mcp_-prefixed name resolution.
func (r *Registry) SetMCPBridge(b MCPBridge) { r.mcpBridge = b }

// SetFullAuto toggles full-auto execution mode; when true and the call's
// PolicyContext.FullAutoAllowlist is non-empty, ExecuteTool denies any tool
// not present in that list (step 7 of the lifecycle).
func (r *Registry) SetFullAuto(enabled bool) { r.fullAuto = enabled }

// SetPlanModeQuery wires a query function the pipeline consults for the
// plan-mode gate (step 3): returns whether plan mode is active and any
// extra allow-listed tool names.
func (r *Registry) SetPlanModeQuery(fn func() (bool, []string)) { r.planModeFn = fn }

// SetSpoolWriter wires the spooling backend used for large outputs (step 13).
func (r *Registry) SetSpoolWriter(w SpoolWriter) { r.spool = w }

// Breakers exposes the registry's circuit breaker set, e.g. for metrics.
func (r *Registry) Breakers() *Breakers { return r.breakers }

// Get retrieves a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, ok := r.tools[name]
	return tool, ok
}

// All returns all registered tools.
func (r *Registry) All() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Tool, 0, len(r.tools))
	for _, tool := range r.tools {
		result = append(result, tool)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Name() < result[j].Name()
	})

	return result
}

// Names returns all registered tool names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered tools.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// Task is per-turn execution state: the reentrancy stack and loop detector
// scoped to a single turn's sequential tool dispatch (parallel tool use is
// out of scope for the core, so one Task serves one turn at a time).
type Task struct {
	reentrancy *reentrancyGuard
	loops      *loopDetector
}

// NewTask creates fresh per-turn execution state.
func (r *Registry) NewTask() *Task {
	return &Task{reentrancy: newReentrancyGuard(), loops: newLoopDetector()}
}

// DefaultRegistry creates a registry with all built-in tools.
func DefaultRegistry(workspaceRoot string) *Registry {
	r := NewRegistry()

	r.MustRegister(NewLsTool(workspaceRoot))
	r.MustRegister(NewReadFileTool(workspaceRoot))
	r.MustRegister(NewWriteFileTool(workspaceRoot))
	r.MustRegister(NewEditFileTool(workspaceRoot))

	r.MustRegister(NewGlobTool(workspaceRoot))
	r.MustRegister(NewGrepTool(workspaceRoot))

	r.MustRegister(NewLSPDiagnosticsTool(workspaceRoot))

	r.MustRegister(NewShellTool(workspaceRoot))
	r.RegisterAlias("run_command", "shell")

	return r
}

// SpoolWriter persists a large tool result to disk and returns a reference
// JSON rewriting the original content (§4.1 step 13, §4.8 spooling).
type SpoolWriter interface {
	Spool(sessionID, toolName string, content []byte) (spoolPath string, err error)
}
