// Package doppel turns digest buckets into doppel sets: groups of frames
// whose proxies were pixel-identical. The first frame of each set is its
// core and is the only one that gets rendered.
package doppel

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/emirpasic/gods/maps/treemap"

	"github.com/backmassage/doppelrender/internal/fingerprint"
	"github.com/backmassage/doppelrender/internal/render"
)

// Set is a non-empty, ascending list of frames with identical proxies.
type Set []int

// Core returns the frame that is rendered for the set.
func (s Set) Core() int { return s[0] }

// Clones returns the frames that are materialized from the core.
func (s Set) Clones() []int { return s[1:] }

func (s Set) String() string {
	parts := make([]string, len(s))
	for i, n := range s {
		parts[i] = strconv.Itoa(n)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// FrameNumber recovers the frame number from a proxy path. It uses the
// longest run of digits in the base name (the rightmost one on a tie), so
// "shot2_tiny0042.png" yields 42. ok is false when the name has no digits.
func FrameNumber(path string) (n int, ok bool) {
	name := filepath.Base(path)
	bestStart, bestLen := -1, 0
	for i := 0; i < len(name); {
		if name[i] < '0' || name[i] > '9' {
			i++
			continue
		}
		j := i
		for j < len(name) && name[j] >= '0' && name[j] <= '9' {
			j++
		}
		if j-i >= bestLen {
			bestStart, bestLen = i, j-i
		}
		i = j
	}
	if bestStart < 0 {
		return 0, false
	}
	n, err := strconv.Atoi(name[bestStart : bestStart+bestLen])
	if err != nil {
		return 0, false
	}
	return n, true
}

// Group converts buckets to doppel sets. Paths without a frame number are
// skipped and returned in dropped. The result is sorted by core frame, and
// every set is sorted ascending, so the output does not depend on map or
// hashing order.
func Group(buckets fingerprint.Buckets) (sets []Set, dropped []string) {
	byCore := treemap.NewWithIntComparator()
	for _, paths := range buckets {
		var set Set
		for _, p := range paths {
			n, ok := FrameNumber(p)
			if !ok {
				dropped = append(dropped, p)
				continue
			}
			set = append(set, n)
		}
		if len(set) == 0 {
			continue
		}
		slices.Sort(set)
		set = slices.Compact(set)
		// Two buckets can only share a core when proxy names collide
		// (tiny01.png and tiny001.png); keep both so Validate reports it.
		var same []Set
		if v, found := byCore.Get(set.Core()); found {
			same = v.([]Set)
		}
		byCore.Put(set.Core(), append(same, set))
	}

	sets = make([]Set, 0, byCore.Size())
	for _, v := range byCore.Values() {
		sets = append(sets, v.([]Set)...)
	}
	slices.Sort(dropped)
	return sets, dropped
}

// ErrNotPartition reports doppel sets that overlap, are empty, or are not
// sorted.
var ErrNotPartition = errors.New("doppel sets are not a partition")

// Validate checks that sets are non-empty, individually ascending, ordered
// by core, and pairwise disjoint.
func Validate(sets []Set) error {
	seen := make(map[int]int)
	prevCore := -1
	for i, s := range sets {
		if len(s) == 0 {
			return fmt.Errorf("%w: set %d is empty", ErrNotPartition, i)
		}
		if !slices.IsSorted(s) {
			return fmt.Errorf("%w: set %v is not sorted", ErrNotPartition, s)
		}
		if i > 0 && s.Core() <= prevCore {
			return fmt.Errorf("%w: set %v is out of order", ErrNotPartition, s)
		}
		prevCore = s.Core()
		for _, n := range s {
			if j, dup := seen[n]; dup {
				return fmt.Errorf("%w: frame %d is in sets %d and %d", ErrNotPartition, n, j, i)
			}
			seen[n] = i
		}
	}
	return nil
}

// Filter keeps only frames inside rng, dropping sets that become empty. A
// clone whose core falls outside the range is promoted: the set's lowest
// remaining frame becomes its core. The removed frames are returned sorted.
func Filter(sets []Set, rng render.Range) (kept []Set, outside []int) {
	kept = make([]Set, 0, len(sets))
	for _, s := range sets {
		var in Set
		for _, n := range s {
			if rng.Contains(n) {
				in = append(in, n)
			} else {
				outside = append(outside, n)
			}
		}
		if len(in) > 0 {
			kept = append(kept, in)
		}
	}
	slices.SortFunc(kept, func(a, b Set) int { return a.Core() - b.Core() })
	slices.Sort(outside)
	return kept, outside
}

// Missing lists the frames of rng that appear in no set, i.e. frames whose
// proxy was never produced.
func Missing(sets []Set, rng render.Range) []int {
	have := make(map[int]bool)
	for _, s := range sets {
		for _, n := range s {
			have[n] = true
		}
	}
	var missing []int
	for n := rng.Start; n <= rng.End; n++ {
		if !have[n] {
			missing = append(missing, n)
		}
	}
	return missing
}

// Frames returns the total number of frames across sets.
func Frames(sets []Set) int {
	n := 0
	for _, s := range sets {
		n += len(s)
	}
	return n
}
