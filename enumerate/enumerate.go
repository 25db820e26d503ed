// Package enumerate implements the Redelmeier-style recursive growth
// that visits every free polycube exactly once: it extends a polycube
// by one cube at a time and keeps only the extensions that are
// canonical children of their parent, as judged by the canonicalizer.
package enumerate

import (
	"context"
	"errors"
	"sort"
	"sync/atomic"

	"github.com/katalvlaran/polycount/canonical"
	"github.com/katalvlaran/polycount/cube"
	"github.com/katalvlaran/polycount/polycube"
)

// ErrHalted is returned by Extend when it unwinds because the context
// passed in Options was cancelled. It is not a failure: the caller is
// expected to treat it as a successful partial completion.
var ErrHalted = errors.New("enumerate: halted")

// Options configures a single Extend call.
type Options struct {
	// Ctx, if non-nil, is polled (at a low sample rate, in the hot
	// inner loop) for cancellation. nil means context.Background().
	Ctx context.Context

	// SpawnAt, if non-zero, stops recursion at polycubes of exactly
	// this size: instead of recursing, OnSpawn is called with a copy
	// of the child and the loop continues with the next candidate.
	SpawnAt int

	// OnSpawn receives a detached copy of a size-SpawnAt canonical
	// child in place of recursing into it.
	OnSpawn func(child *polycube.Store)

	// OnHalt receives a detached copy of the polycube Extend was
	// working on at the moment a halt was observed.
	OnHalt func(current *polycube.Store)
}

// pollEvery makes the halt check cheap: only a sampled fraction of
// inner-loop iterations actually touch ctx.Err().
const pollEvery = 1000

var pollCounter uint64

func samplePoll() bool {
	return atomic.AddUint64(&pollCounter, 1)%pollEvery == 0
}

// Extend grows p in place, one cube at a time, counting every
// canonical polycube reached (including p itself) into counts, up to
// size limit. On return (absent a halt), p is restored to exactly the
// state it had on entry.
func Extend(p *polycube.Store, limit int, counts []int64, opts *Options) error {
	if opts == nil {
		opts = &Options{}
	}
	ctx := opts.Ctx
	if ctx == nil {
		ctx = context.Background()
	}

	counts[p.Size()]++

	if p.Size() == limit {
		return nil
	}
	if err := ctx.Err(); err != nil {
		reportHalt(opts, p)
		return ErrHalted
	}

	parent := canonical.Compute(p)
	candidates := candidatePositions(p)
	seen := make(map[string]struct{}, len(candidates))

	for _, q := range candidates {
		if samplePoll() && ctx.Err() != nil {
			reportHalt(opts, p)
			return ErrHalted
		}

		if err := p.Add(q); err != nil {
			return err
		}
		child := canonical.Compute(p)
		key := child.Fingerprint.String()
		if _, dup := seen[key]; dup {
			if err := p.Remove(q); err != nil {
				return err
			}
			continue
		}
		seen[key] = struct{}{}

		tail := pickTail(child.Tails)

		isChild := tail == q
		if !isChild {
			if err := p.Remove(tail); err != nil {
				return err
			}
			reduced := canonical.Compute(p)
			isChild = reduced.Fingerprint.Cmp(parent.Fingerprint) == 0
			if err := p.Add(tail); err != nil {
				return err
			}
		}

		if isChild {
			if opts.SpawnAt > 0 && p.Size() == opts.SpawnAt {
				if opts.OnSpawn != nil {
					opts.OnSpawn(p.Copy())
				}
			} else if err := Extend(p, limit, counts, opts); err != nil {
				_ = p.Remove(q)
				return err
			}
		}

		if err := p.Remove(q); err != nil {
			return err
		}
	}
	return nil
}

func reportHalt(opts *Options, p *polycube.Store) {
	if opts.OnHalt != nil {
		opts.OnHalt(p.Copy())
	}
}

// candidatePositions returns every position adjacent to some cube in p
// but not already in p, deduplicated and sorted ascending so that
// growth order is deterministic.
func candidatePositions(p *polycube.Store) []cube.Position {
	existing := p.Positions()
	present := make(map[cube.Position]struct{}, len(existing))
	for _, pos := range existing {
		present[pos] = struct{}{}
	}

	seen := make(map[cube.Position]struct{})
	out := make([]cube.Position, 0, len(existing)*cube.NumDirections)
	for _, pos := range existing {
		for d := cube.Direction(0); d < cube.NumDirections; d++ {
			q := pos.Neighbor(d)
			if _, ok := present[q]; ok {
				continue
			}
			if _, dup := seen[q]; dup {
				continue
			}
			seen[q] = struct{}{}
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// pickTail deterministically selects one position from a non-empty
// tail set: the smallest by integer value. Any deterministic choice is
// correct (every tail yields the same reduced fingerprint); this
// implementation documents its choice here per the spec's open question.
func pickTail(tails map[cube.Position]struct{}) cube.Position {
	first := true
	var best cube.Position
	for t := range tails {
		if first || t < best {
			best = t
			first = false
		}
	}
	return best
}
