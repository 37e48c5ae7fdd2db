// Package genome holds SARS-CoV-2 reference coordinates and position sets.
package genome

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/bits-and-blooms/bitset"
)

// Coordinates on the NC_045512.2 reference (29,903 nt, rounded up).
const (
	MinPosition  = 1
	GenomeLength = 30000
	// LeaderEnd is the last nucleotide of the 5' UTR.
	LeaderEnd = 265
)

// InRange reports whether pos is a valid 1-based genome coordinate.
func InRange(pos int) bool {
	return pos >= MinPosition && pos <= GenomeLength
}

// SiteSet is an immutable set of genome positions backed by a bitset.
// The zero value is an empty set.
type SiteSet struct {
	bits *bitset.BitSet
}

// NewSiteSet builds a set from positions. Out-of-range values are ignored.
func NewSiteSet(positions ...int) SiteSet {
	b := bitset.New(GenomeLength + 1)
	for _, p := range positions {
		if InRange(p) {
			b.Set(uint(p))
		}
	}
	return SiteSet{bits: b}
}

// Contains reports whether pos is in the set.
func (s SiteSet) Contains(pos int) bool {
	if s.bits == nil || pos < 0 {
		return false
	}
	return s.bits.Test(uint(pos))
}

// Len returns the number of positions in the set.
func (s SiteSet) Len() int {
	if s.bits == nil {
		return 0
	}
	return int(s.bits.Count())
}

// Empty reports whether the set has no positions.
func (s SiteSet) Empty() bool {
	return s.Len() == 0
}

// Positions returns the members in ascending order.
func (s SiteSet) Positions() []int {
	if s.bits == nil {
		return nil
	}
	out := make([]int, 0, s.bits.Count())
	for i, ok := s.bits.NextSet(0); ok; i, ok = s.bits.NextSet(i + 1) {
		out = append(out, int(i))
	}
	return out
}

// Filter returns the positions not contained in the set, keeping order and
// repeats. The input slice is not modified.
func (s SiteSet) Filter(positions []int) []int {
	if s.Empty() {
		return positions
	}
	out := make([]int, 0, len(positions))
	for _, p := range positions {
		if !s.Contains(p) {
			out = append(out, p)
		}
	}
	return out
}

// Intersect returns the distinct positions that are members of the set, sorted.
func (s SiteSet) Intersect(positions []int) []int {
	if s.Empty() {
		return nil
	}
	seen := make(map[int]bool)
	var out []int
	for _, p := range positions {
		if s.Contains(p) && !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	sort.Ints(out)
	return out
}

// ParseRanges reads inclusive "start,end" ranges, one per line, into a set.
// A header line and blank or '#' lines are skipped.
func ParseRanges(r io.Reader) (SiteSet, error) {
	var positions []int
	scanner := bufio.NewScanner(r)
	lineNo := 0
	seenData := false
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		first := !seenData
		seenData = true
		fields := strings.Split(line, ",")
		if len(fields) < 2 {
			return SiteSet{}, fmt.Errorf("line %d: expected start,end", lineNo)
		}
		start, err1 := strconv.Atoi(strings.TrimSpace(fields[0]))
		end, err2 := strconv.Atoi(strings.TrimSpace(fields[1]))
		if err1 != nil || err2 != nil {
			if first {
				continue // header
			}
			return SiteSet{}, fmt.Errorf("line %d: invalid range %q", lineNo, line)
		}
		if end < start {
			return SiteSet{}, fmt.Errorf("line %d: range end %d before start %d", lineNo, end, start)
		}
		for p := start; p <= end; p++ {
			positions = append(positions, p)
		}
	}
	if err := scanner.Err(); err != nil {
		return SiteSet{}, fmt.Errorf("scan ranges: %w", err)
	}
	return NewSiteSet(positions...), nil
}
