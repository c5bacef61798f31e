// SPDX-License-Identifier: MIT

package histogram

import (
	"sort"
	"strconv"
	"strings"
)

// DefaultBins is the stock bin configuration, in length units (km by default).
const DefaultBins = "0-5;5-10;10-15;15-20;20-30;"

// Range is the half-open interval [Start, Stop) of integer length units.
type Range struct {
	Start int
	Stop  int
}

// Contains reports Start <= v < Stop.
func (r Range) Contains(v int) bool { return v >= r.Start && v < r.Stop }

// String renders "Start-Stop".
func (r Range) String() string {
	return strconv.Itoa(r.Start) + "-" + strconv.Itoa(r.Stop)
}

// RangeSet is an ordered, non-overlapping list of ranges. Values in no range
// (past the end, in a gap, or below the first start) belong to the overflow
// bin whose index is Len().
type RangeSet struct {
	ranges []Range
}

// NewRangeSet validates and copies ranges.
//
// Errors:
//   - ErrNoBins when no range is given.
//   - ErrMalformedRange when Start >= Stop.
//   - ErrOverlappingRanges when a range starts before the previous one stops.
func NewRangeSet(ranges ...Range) (*RangeSet, error) {
	if len(ranges) == 0 {
		return nil, histogramErrorf("NewRangeSet", ErrNoBins)
	}
	for k, r := range ranges {
		if r.Start >= r.Stop {
			return nil, histogramErrorf("NewRangeSet: "+r.String(), ErrMalformedRange)
		}
		if k > 0 && r.Start < ranges[k-1].Stop {
			return nil, histogramErrorf("NewRangeSet: "+r.String(), ErrOverlappingRanges)
		}
	}
	rs := make([]Range, len(ranges))
	copy(rs, ranges)

	return &RangeSet{ranges: rs}, nil
}

// ParseRangeSet reads the "a-b;c-d;..." text form. Entries may also be
// separated by commas; blank entries (e.g. a trailing ';') are ignored.
// Negative bounds are accepted ("-5-0").
//
// Errors:
//   - ErrNoBins, ErrMalformedRange, ErrOverlappingRanges.
func ParseRangeSet(text string) (*RangeSet, error) {
	fields := strings.FieldsFunc(text, func(r rune) bool { return r == ';' || r == ',' })
	ranges := make([]Range, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		r, err := parseRange(f)
		if err != nil {
			return nil, err
		}
		ranges = append(ranges, r)
	}

	return NewRangeSet(ranges...)
}

// parseRange splits "a-b" on the first '-' that is not a leading sign.
func parseRange(f string) (Range, error) {
	cut := strings.IndexByte(f[1:], '-')
	if cut < 0 {
		return Range{}, histogramErrorf("ParseRangeSet: "+strconv.Quote(f), ErrMalformedRange)
	}
	cut++
	start, err1 := strconv.Atoi(strings.TrimSpace(f[:cut]))
	stop, err2 := strconv.Atoi(strings.TrimSpace(f[cut+1:]))
	if err1 != nil || err2 != nil {
		return Range{}, histogramErrorf("ParseRangeSet: "+strconv.Quote(f), ErrMalformedRange)
	}

	return Range{Start: start, Stop: stop}, nil
}

// Len returns the number of defined ranges (the overflow bin excluded).
func (s *RangeSet) Len() int {
	if s == nil {
		return 0
	}

	return len(s.ranges)
}

// At returns range k. The caller guarantees 0 <= k < Len().
func (s *RangeSet) At(k int) Range { return s.ranges[k] }

// IndexOf returns the index of the range containing v, or -1.
// Complexity: O(log Len()).
func (s *RangeSet) IndexOf(v int) int {
	// First range whose Stop is past v; only it can contain v.
	k := sort.Search(len(s.ranges), func(k int) bool { return s.ranges[k].Stop > v })
	if k < len(s.ranges) && s.ranges[k].Contains(v) {
		return k
	}

	return -1
}

// Bin returns IndexOf(v), or the overflow index Len() when v is in no range.
func (s *RangeSet) Bin(v int) int {
	if k := s.IndexOf(v); k >= 0 {
		return k
	}

	return len(s.ranges)
}

// OverflowLabel is "<last Stop>+".
func (s *RangeSet) OverflowLabel() string {
	return strconv.Itoa(s.ranges[len(s.ranges)-1].Stop) + "+"
}

// Labels returns one label per range followed by the overflow label.
func (s *RangeSet) Labels() []string {
	out := make([]string, 0, len(s.ranges)+1)
	for _, r := range s.ranges {
		out = append(out, r.String())
	}

	return append(out, s.OverflowLabel())
}

// String renders the ";"-separated text form accepted by ParseRangeSet.
func (s *RangeSet) String() string {
	parts := make([]string, len(s.ranges))
	for k, r := range s.ranges {
		parts[k] = r.String()
	}

	return strings.Join(parts, ";")
}
