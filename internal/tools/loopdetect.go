package tools

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/nextlevelbuilder/vtgo/internal/api"
)

// loopDetectLimit is the number of identical (tool, args) calls tolerated
// before loop handling kicks in. The (loopDetectLimit+1)-th call triggers
// it: reuse for read-only tools, block otherwise.
const loopDetectLimit = 3

// loopDetectWindow bounds how long a repeated-call observation remains
// "recent" for the purposes of loop detection.
const loopDetectWindow = 10 * time.Minute

type callObservation struct {
	count    int
	lastSeen time.Time
	lastJSON string // most recent successful result, for read-only reuse
}

// loopDetector tracks repeated identical (tool_name, args) calls within a
// task so the registry can intervene once a model starts looping.
type loopDetector struct {
	mu   sync.Mutex
	seen map[string]*callObservation
}

func newLoopDetector() *loopDetector {
	return &loopDetector{seen: make(map[string]*callObservation)}
}

func callKey(name string, args api.Args) string {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	ordered := make(map[string]any, len(args))
	for _, k := range keys {
		ordered[k] = args[k]
	}
	b, _ := json.Marshal(struct {
		Name string
		Args map[string]any
	}{name, ordered})
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// observe records a call and reports the current repeat count.
func (d *loopDetector) observe(name string, args api.Args) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	key := callKey(name, args)
	now := time.Now()
	obs, ok := d.seen[key]
	if !ok || now.Sub(obs.lastSeen) > loopDetectWindow {
		obs = &callObservation{}
		d.seen[key] = obs
	}
	obs.count++
	obs.lastSeen = now
	return obs.count
}

// recordResult caches the last successful JSON result for a call, used for
// read-only reuse once the loop limit is hit.
func (d *loopDetector) recordResult(name string, args api.Args, resultJSON string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	key := callKey(name, args)
	if obs, ok := d.seen[key]; ok {
		obs.lastJSON = resultJSON
	}
}

func (d *loopDetector) lastResult(name string, args api.Args) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	obs, ok := d.seen[callKey(name, args)]
	if !ok || obs.lastJSON == "" {
		return "", false
	}
	return obs.lastJSON, true
}
