package runner

// Span is an immutable (start, length) pair recorded for one capture.
type Span struct {
	Start  int
	Length int
}

// Match is an immutable snapshot of capture state produced by a
// successful search (SPEC_FULL.md §4.6). Slot 0's span (see GroupSpan)
// is the whole match; callers resume from it, not from any separate
// end-of-match field.
type Match struct {
	// spans[k] holds the final recorded span for slot k; matched[k] is
	// false if slot k never participated in this match.
	spans   []Span
	matched []bool

	// all[k] holds every span recorded for slot k across the lifetime
	// of the match (captures inside loops record multiple). A balancing
	// group's invalidation removes the span from this list directly, so
	// it never holds placeholders.
	all [][]Span
}

// GroupCount returns the number of capture slots this Match carries
// (including slot 0, the whole match).
func (m *Match) GroupCount() int { return len(m.spans) }

// GroupSpan returns the final (start, length) recorded for slot, and
// whether that slot matched at all.
func (m *Match) GroupSpan(slot int) (start, length int, ok bool) {
	if slot < 0 || slot >= len(m.spans) {
		return 0, 0, false
	}
	return m.spans[slot].Start, m.spans[slot].Length, m.matched[slot]
}

// GroupSpans returns every span recorded for slot over the match's
// lifetime, oldest first. The list is not re-sorted by position, so for
// a right-to-left match the spans run from right to left.
func (m *Match) GroupSpans(slot int) []Span {
	if slot < 0 || slot >= len(m.all) {
		return nil
	}
	return m.all[slot]
}
