package tools

import (
	"fmt"
	"sort"
	"strings"
)

// aliases maps alternate tool names to their canonical registered name.
// Populated via Registry.RegisterAlias; the MCP bridge prefix (mcp_) is
// handled separately in resolveName.
type aliasTable struct {
	byAlias map[string]string
}

func newAliasTable() *aliasTable {
	return &aliasTable{byAlias: make(map[string]string)}
}

// resolveName implements the three-step resolution order from §4.1:
// canonical/alias lookup, then mcp_ prefix stripping via the MCP bridge,
// then ToolNotFound with fuzzy suggestions.
func (r *Registry) resolveName(name string) (canonical string, err *NameResolutionError) {
	if _, ok := r.tools[name]; ok {
		return name, nil
	}
	if canon, ok := r.aliases.byAlias[name]; ok {
		if _, ok := r.tools[canon]; ok {
			return canon, nil
		}
	}
	if strings.HasPrefix(name, "mcp_") {
		stripped := strings.TrimPrefix(name, "mcp_")
		if r.mcpBridge != nil {
			if canon, ok := r.mcpBridge.Resolve(stripped); ok {
				return canon, nil
			}
		}
	}
	return "", &NameResolutionError{
		Name:        name,
		Suggestions: r.fuzzySuggestions(name, 3),
	}
}

// NameResolutionError carries ToolNotFound context including fuzzy-matched
// suggestions computed from the full registered name set.
type NameResolutionError struct {
	Name        string
	Suggestions []string
}

func (e *NameResolutionError) Error() string {
	if len(e.Suggestions) == 0 {
		return fmt.Sprintf("tool not found: %q", e.Name)
	}
	return fmt.Sprintf("tool not found: %q (did you mean: %s?)", e.Name, strings.Join(e.Suggestions, ", "))
}

// fuzzySuggestions ranks registered tool names by Levenshtein distance to
// name and returns up to limit closest matches.
func (r *Registry) fuzzySuggestions(name string, limit int) []string {
	type scored struct {
		name string
		dist int
	}
	var candidates []scored
	for n := range r.tools {
		candidates = append(candidates, scored{n, levenshtein(name, n)})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].dist != candidates[j].dist {
			return candidates[i].dist < candidates[j].dist
		}
		return candidates[i].name < candidates[j].name
	})
	var out []string
	for i, c := range candidates {
		if i >= limit {
			break
		}
		out = append(out, c.name)
	}
	return out
}

// levenshtein computes edit distance with the classic dynamic-programming
// algorithm. No library in the pack covers this narrow a concern; it is a
// deliberate, justified stdlib-only helper (see DESIGN.md).
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	la, lb := len(ra), len(rb)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}
	prev := make([]int, lb+1)
	curr := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}
	for i := 1; i <= la; i++ {
		curr[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			min := prev[j] + 1
			if v := curr[j-1] + 1; v < min {
				min = v
			}
			if v := prev[j-1] + cost; v < min {
				min = v
			}
			curr[j] = min
		}
		prev, curr = curr, prev
	}
	return prev[lb]
}

// MCPBridge resolves an mcp_-prefixed tool name to a canonical dispatch
// target. Full MCP transport is out of scope; this interface exists so the
// resolution order in §4.1 is faithfully represented even with no bridge
// wired by default.
type MCPBridge interface {
	Resolve(strippedName string) (canonical string, ok bool)
}
