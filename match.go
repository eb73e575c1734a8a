package btre

import (
	"time"

	"github.com/coregx/btre/internal/runner"
)

// Match is the immutable result of one successful search: a whole-match
// span plus every capture group's span and history (SPEC_FULL.md §4.6).
type Match struct {
	m    *runner.Match
	text []rune
}

// GroupCount returns the number of capture slots, including slot 0 (the
// whole match).
func (mt *Match) GroupCount() int { return mt.m.GroupCount() }

// GroupSpan returns the start and length, in runes, of capture slot's last
// successful match, or ok == false if that slot never matched.
func (mt *Match) GroupSpan(slot int) (start, length int, ok bool) {
	return mt.m.GroupSpan(slot)
}

// GroupSpans returns every span capture slot matched, oldest first — the
// full history a repeated capturing group accumulates (spec.md §4.6's
// Match[k] array), as [start, end) rune-index pairs.
func (mt *Match) GroupSpans(slot int) [][2]int {
	spans := mt.m.GroupSpans(slot)
	out := make([][2]int, len(spans))
	for i, s := range spans {
		out[i] = [2]int{s.Start, s.Start + s.Length}
	}
	return out
}

// String returns the text this Match's whole-match span covers.
func (mt *Match) String() string {
	start, length, ok := mt.GroupSpan(0)
	if !ok {
		return ""
	}
	return string(mt.text[start : start+length])
}

// NextMatch finds the next match after this one, reusing the already
// decoded rune slice when text is unchanged (letting repeated calls walk a
// single string without re-decoding UTF-8 each time, the FindAll-style loop
// spec.md §8's progress-guarantee scenario exercises). An empty match
// advances the search position by one rune so the loop always makes
// progress, per the same guarantee.
func (mt *Match) NextMatch(p *Program, text string, timeout time.Duration) (*Match, error) {
	runes := mt.text
	if string(runes) != text {
		runes = []rune(text)
	}

	start, length, ok := mt.GroupSpan(0)
	if !ok {
		return nil, &InternalError{Op: "Match.NextMatch", Detail: "whole-match slot 0 unset"}
	}

	if p.prog.RightToLeft {
		// Search moves right-to-left from the end boundary down to 0, so
		// continuing means shrinking the end boundary to just before this
		// match's start — one rune further back for an empty match, so a
		// zero-width match can never be found twice at the same position.
		newEnd := start
		if length == 0 {
			newEnd--
		}
		if newEnd < 0 {
			return nil, ErrNoMatch
		}
		return p.FindRunes(runes, 0, newEnd, timeout)
	}

	next := start + length
	if length == 0 {
		next++
	}
	if next > len(runes) {
		return nil, ErrNoMatch
	}
	return p.FindRunes(runes, next, -1, timeout)
}
