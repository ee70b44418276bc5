// Package rating derives a film's aggregate rating from its current review
// scores.  The computation is a pure function of the multiset of scores and
// is rerun from scratch on every invocation; there are no incremental
// counters that could drift when a score is edited in place.
package rating

// Average returns the arithmetic mean of the given scores as a float64.
// An empty input yields 0.0, not NaN: "no ratings yet" is signalled by the
// review count, never by the numeric value alone.  The result is invariant
// under reordering of the input.  Rounding for display is the caller's
// concern.
func Average(scores []int) float64 {
	if len(scores) == 0 {
		return 0.0
	}
	sum := 0
	for _, s := range scores {
		sum += s
	}
	return float64(sum) / float64(len(scores))
}
