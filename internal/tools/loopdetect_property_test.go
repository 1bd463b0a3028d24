package tools

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/nextlevelbuilder/vtgo/internal/api"
)

// TestLoopDetectorThresholdProperty backs spec.md §8's loop-detection law: the
// (loopDetectLimit+1)-th identical call is the first one loop handling acts
// on, for any number of identical calls.
func TestLoopDetectorThresholdProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("observe returns the exact call count, and loop handling fires iff count > limit", prop.ForAll(
		func(n int) bool {
			d := newLoopDetector()
			args := api.Args{"path": "some/file.go", "n": n}

			var last int
			for i := 0; i < n; i++ {
				last = d.observe("read_file", args)
			}

			if last != n {
				return false
			}
			wouldTrigger := last > loopDetectLimit
			return wouldTrigger == (n > loopDetectLimit)
		},
		gen.IntRange(1, 50),
	))

	properties.Property("distinct argument sets never share a repeat count", prop.ForAll(
		func(a, b string) bool {
			if a == b {
				return true
			}
			d := newLoopDetector()
			d.observe("read_file", api.Args{"path": a})
			countA := d.observe("read_file", api.Args{"path": a})
			countB := d.observe("read_file", api.Args{"path": b})
			return countA == 2 && countB == 1
		},
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
