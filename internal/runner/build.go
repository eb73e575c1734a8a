package runner

// buildMatch snapshots the Runner's current capture state into an
// immutable Match. start is the position this attempt began at; the
// whole-match span (slot 0) runs between start and the Runner's current
// textPos — in right-to-left mode textPos ends up the smaller of the
// two, since RTL consumption walks backward, so the pair is ordered
// before being turned into a (Start, Length) span. capAll already
// reflects every balancing-group transfer and invalidation exactly
// once, since pushCapture/invalidateCapture and their crawl-driven undo
// are kept symmetric (SPEC_FULL.md §4.6's "Tidy" compaction pass is
// realized incrementally this way rather than as a separate post-pass
// over a working log).
func (r *Runner) buildMatch(start int) *Match {
	n := len(r.capStart)
	m := &Match{
		spans:   make([]Span, n),
		matched: make([]bool, n),
		all:     make([][]Span, n),
	}
	for i := 0; i < n; i++ {
		m.matched[i] = r.capMatched[i]
		if r.capMatched[i] {
			m.spans[i] = Span{Start: r.capStart[i], Length: r.capEnd[i] - r.capStart[i]}
		}
		m.all[i] = append([]Span(nil), r.capAll[i]...)
	}
	spanStart, spanLength := orderedSpan(start, r.textPos)
	m.spans[0] = Span{Start: spanStart, Length: spanLength}
	m.matched[0] = true
	m.all[0] = []Span{m.spans[0]}
	return m
}
