// Package report formats the stdout output contract: the final
// results block and the periodic progress line printed while a run is
// still in flight.
package report

import (
	"fmt"
	"strings"
	"time"
)

// FormatResults renders the final per-size counts as the documented
// "results:" block: "n = <n>: <count>" for each n with count > 0, then
// "elapsed seconds: <float>".
func FormatResults(counts []int64, elapsed time.Duration) string {
	var b strings.Builder
	b.WriteString("results:\n")
	for k := 1; k < len(counts); k++ {
		if counts[k] == 0 {
			continue
		}
		fmt.Fprintf(&b, "n = %d: %d\n", k, counts[k])
	}
	fmt.Fprintf(&b, "elapsed seconds: %f\n", elapsed.Seconds())
	return b.String()
}

// ETA linearly extrapolates remaining duration from completed/total
// work done in elapsed time. The second return is false when total or
// completed is non-positive, since no meaningful estimate exists yet.
func ETA(completed, total int64, elapsed time.Duration) (time.Duration, bool) {
	if completed <= 0 || total <= 0 || completed > total {
		return 0, false
	}
	rate := float64(elapsed) / float64(completed)
	remaining := float64(total-completed) * rate
	return time.Duration(remaining), true
}

// Progress renders one progress line: percent complete, ETA, the
// number of jobs still outstanding, and the current running count at
// the target size n, the best-known a(n) so far while the run is
// still in flight. currentAN is a snapshot value, not the live counts
// slice itself, so callers can take it from an atomically-updated
// counter without racing the goroutine mutating counts.
func Progress(spawnAt, n int, completed, outstanding, total, currentAN int64, elapsed time.Duration) string {
	if total <= 0 {
		return fmt.Sprintf("progress: spawn depth %d, %d jobs completed, %d outstanding, a(%d) so far = %d",
			spawnAt, completed, outstanding, n, currentAN)
	}
	pct := 100 * float64(completed) / float64(total)
	eta, ok := ETA(completed, total, elapsed)
	if !ok {
		return fmt.Sprintf("progress: %.1f%% complete, %d outstanding, a(%d) so far = %d",
			pct, outstanding, n, currentAN)
	}
	return fmt.Sprintf("progress: %.1f%% complete, eta %s, %d outstanding, a(%d) so far = %d",
		pct, eta.Round(time.Second), outstanding, n, currentAN)
}
