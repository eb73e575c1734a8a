package runner

import bc "github.com/coregx/btre/internal/bytecode"

// stepGreedyLoop executes Oneloop/Notoneloop/Setloop: consume as many
// matching scalars as possible in one pass (up to the remaining-count
// operand), then push a single track frame recording how many were
// actually consumed, so a later backtrack can give them back one at a
// time (spec.md §4.2: "a single Oneloop instance needs only one track
// frame regardless of its repeat count").
func (r *Runner) stepGreedyLoop(pc int, op bc.Op) (bool, int) {
	operand := r.prog.Codes[pc+1]
	max := r.prog.Codes[pc+2]
	rtl := op.HasRtl()
	ci := op.HasCi()
	start := r.textPos
	pos := start
	consumed := int32(0)
	for consumed < max {
		ch, next, ok := r.charAt(pos, rtl)
		if !ok || !r.charMatches(op.Primary(), operand, ch, ci) {
			break
		}
		pos = next
		consumed++
	}
	r.textPos = pos
	afterPc := pc + 3
	r.pushTrack(consumed, int32(start), int32(afterPc), int32(len(r.crawl)), int32(op|bc.Back))
	return true, afterPc
}

// stepLazyLoop executes Onelazy/Notonelazy/Setlazy: consume zero
// scalars initially, pushing a track frame that expands the match by
// one scalar each time it is backtracked into.
func (r *Runner) stepLazyLoop(pc int, op bc.Op) (bool, int) {
	operand := r.prog.Codes[pc+1]
	max := r.prog.Codes[pc+2]
	afterPc := pc + 3
	r.pushTrack(0, int32(r.textPos), operand, max, int32(afterPc), int32(len(r.crawl)), int32(op|bc.Back))
	return true, afterPc
}

func (r *Runner) charMatches(primary bc.Op, operand int32, ch rune, ci bool) bool {
	switch primary {
	case bc.Oneloop, bc.Onelazy, bc.Onerep:
		return foldEq(ci, ch, rune(operand))
	case bc.Notoneloop, bc.Notonelazy, bc.Notonerep:
		return !foldEq(ci, ch, rune(operand))
	default: // Setloop, Setlazy, Setrep
		return r.testClass(int(operand), ch, ci)
	}
}
