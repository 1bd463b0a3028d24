package tools

import "time"

// staticCeilings are the default timeout ceilings per category before any
// adaptive widening. Fast tools (listing, single-file reads) get a short
// ceiling; the bulk category gets the most slack.
var staticCeilings = map[TimeoutCategory]time.Duration{
	CategoryFast:    5 * time.Second,
	CategoryDefault: 30 * time.Second,
	CategorySlow:    120 * time.Second,
	CategoryBulk:    300 * time.Second,
	CategoryNetwork: 60 * time.Second,
}

func ceilingFor(cat TimeoutCategory) time.Duration {
	if d, ok := staticCeilings[cat]; ok {
		return d
	}
	return staticCeilings[CategoryDefault]
}

// effectiveTimeout resolves the timeout ceiling actually used for a call:
// the adaptive ceiling tracked by the breaker if one is in effect, else the
// static per-category ceiling.
func effectiveTimeout(breakers *Breakers, cat TimeoutCategory) time.Duration {
	if breakers == nil {
		return ceilingFor(cat)
	}
	if adaptive := breakers.AdaptiveCeiling(cat); adaptive > 0 {
		return adaptive
	}
	return ceilingFor(cat)
}
