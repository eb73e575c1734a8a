// Package boyermoore implements anchored/prefix literal search for the
// Runner's FindFirstChar acceleration path (SPEC_FULL.md §4.3).
//
// The pattern is addressed as a []rune rather than raw bytes: the Runner
// walks text scalar-by-scalar (case-folding is a per-scalar operation),
// so indexing by rune keeps Scan's positions directly comparable to the
// Runner's textPos. The bad-character table is split the way the spec
// describes — an ASCII array for ranges the common case owns, and a map
// for anything outside it — rather than a packed (hi,lo) byte-pair table,
// since Go runes are already a single comparable key.
package boyermoore

import (
	"fmt"
	"unicode"
)

// Searcher holds the preprocessing tables for one literal pattern.
type Searcher struct {
	pattern []rune
	rtl     bool
	ci      bool

	// positive[i] is the shift to apply when the mismatch occurred at
	// pattern index i (the good-suffix table).
	positive []int

	// negativeASCII is the bad-character shift for scalars < asciiLimit.
	negativeASCII [asciiLimit]int
	// negativeRest holds the bad-character shift for scalars >= asciiLimit
	// that occur in the pattern, filled in by New; scalars absent from it
	// get the pattern length at lookup time.
	negativeRest map[rune]int
}

const asciiLimit = 128

// New preprocesses pattern and returns a Searcher. The pattern need not be
// pre-folded: when ci is set, both the tables and every comparison fold
// scalars with unicode.ToLower. New rejects
// an empty pattern: SPEC_FULL.md §4.3 states the matcher never calls Scan
// with an empty prefix.
func New(pattern []rune, ci, rtl bool) (*Searcher, error) {
	if len(pattern) == 0 {
		return nil, fmt.Errorf("boyermoore: empty pattern")
	}
	s := &Searcher{pattern: pattern, ci: ci, rtl: rtl}
	s.buildBadCharacter()
	s.buildGoodSuffix()
	return s, nil
}

func (s *Searcher) bump() int {
	if s.rtl {
		return -1
	}
	return 1
}

// buildBadCharacter computes, for each scalar that appears in the
// pattern, the distance from its last occurrence to the tail end; absent
// scalars get patternLength (applied lazily via badCharShift).
func (s *Searcher) buildBadCharacter() {
	n := len(s.pattern)
	for i := range s.negativeASCII {
		s.negativeASCII[i] = n
	}
	s.negativeRest = make(map[rune]int)

	if !s.rtl {
		for i := 0; i < n-1; i++ {
			s.setBadChar(s.pattern[i], n-1-i)
		}
	} else {
		for i := n - 1; i > 0; i-- {
			s.setBadChar(s.pattern[i], i)
		}
	}
}

// foldKey normalizes ch before it is used as a bad-character table key,
// when the search is case-insensitive. Both setBadChar (build time) and
// badCharShift (scan time) must apply the same normalization — a raw,
// case-sensitive lookup of a character that is actually present in the
// pattern under a different case would report "absent" and shift past a
// position where a case-insensitive match can still start.
func (s *Searcher) foldKey(ch rune) rune {
	if !s.ci {
		return ch
	}
	return unicode.ToLower(ch)
}

func (s *Searcher) setBadChar(ch rune, shift int) {
	ch = s.foldKey(ch)
	if ch >= 0 && int(ch) < asciiLimit {
		s.negativeASCII[ch] = shift
	} else {
		s.negativeRest[ch] = shift
	}
}

func (s *Searcher) badCharShift(ch rune) int {
	ch = s.foldKey(ch)
	if ch >= 0 && int(ch) < asciiLimit {
		return s.negativeASCII[ch]
	}
	if shift, ok := s.negativeRest[ch]; ok {
		return shift
	}
	return len(s.pattern)
}

// buildGoodSuffix runs the backward scan from SPEC_FULL.md §4.3: for each
// candidate internal starting position, measure how long the match
// extends and record the displacement at the outer mismatch index only.
func (s *Searcher) buildGoodSuffix() {
	n := len(s.pattern)
	s.positive = make([]int, n)
	for i := range s.positive {
		s.positive[i] = s.bump()
	}

	last := n - 1
	for start := last - 1; start >= 0; start-- {
		matchLen := 0
		for matchLen < start+1 && s.eq(s.pattern[last-matchLen], s.pattern[start-matchLen]) {
			matchLen++
		}
		if matchLen == 0 {
			continue
		}
		outer := start - matchLen
		if outer < 0 {
			continue
		}
		disp := last - outer
		if s.rtl {
			disp = -disp
		}
		if s.positive[outer] == s.bump() {
			s.positive[outer] = disp
		}
	}
}

func (s *Searcher) eq(a, b rune) bool {
	if a == b {
		return true
	}
	if !s.ci {
		return false
	}
	return unicode.ToLower(a) == unicode.ToLower(b)
}

// Scan finds the first occurrence of the pattern in text[beg:end] at or
// after index (respecting direction), or returns -1 if none exists.
// text is addressed by rune index, matching the Runner's coordinate
// space. index must lie within [beg, end].
func (s *Searcher) Scan(text []rune, beg, end, index int) int {
	n := len(s.pattern)
	if !s.rtl {
		return s.scanForward(text, beg, end, index)
	}
	return s.scanBackward(text, beg, end, index, n)
}

func (s *Searcher) scanForward(text []rune, beg, end, index int) int {
	n := len(s.pattern)
	last := n - 1
	test := index + last
	for test < end {
		tail := text[test]
		if !s.eq(tail, s.pattern[last]) {
			test += s.badCharShift(tail)
			continue
		}
		m := last - 1
		pos := test - 1
		for m >= 0 && pos >= beg && s.eq(text[pos], s.pattern[m]) {
			m--
			pos--
		}
		if m < 0 {
			return test - last
		}
		shift := s.positive[m]
		bc := s.badCharShift(text[pos]) - (last - m)
		if bc > shift {
			shift = bc
		}
		test += shift
	}
	return -1
}

func (s *Searcher) scanBackward(text []rune, beg, end, index, n int) int {
	test := index - n
	for test >= beg {
		head := text[test]
		if !s.eq(head, s.pattern[0]) {
			test -= s.badCharShift(head)
			continue
		}
		m := 1
		pos := test + 1
		for m < n && pos < end && s.eq(text[pos], s.pattern[m]) {
			m++
			pos++
		}
		if m == n {
			return test
		}
		shift := s.positive[m]
		bc := m - s.badCharShift(text[pos])
		if bc < shift {
			shift = bc
		}
		test += shift
	}
	return -1
}
