package runner

import bc "github.com/coregx/btre/internal/bytecode"

// step executes the single instruction at pc. On success it returns
// (true, nextPC); nextPC is -1 only when pc was Stop, signalling overall
// match success. On failure it returns (false, -1) and the caller must
// invoke backtrack.
func (r *Runner) step(pc int) (bool, int) {
	op := bc.Op(r.prog.Codes[pc])
	switch op.Primary() {

	case bc.Beginning:
		if r.textPos != r.textBeg {
			return false, -1
		}
		return true, pc + 1
	case bc.Start:
		if r.textPos != r.searchStart {
			return false, -1
		}
		return true, pc + 1
	case bc.EndZ:
		if r.textPos != r.textEnd && !(r.textPos == r.textEnd-1 && r.input[r.textPos] == '\n') {
			return false, -1
		}
		return true, pc + 1
	case bc.End:
		if r.textPos != r.textEnd {
			return false, -1
		}
		return true, pc + 1
	case bc.Bol:
		if r.textPos != r.textBeg && r.input[r.textPos-1] != '\n' {
			return false, -1
		}
		return true, pc + 1
	case bc.Eol:
		if r.textPos != r.textEnd && r.input[r.textPos] != '\n' {
			return false, -1
		}
		return true, pc + 1
	case bc.Boundary:
		if !r.isWordBoundary(r.textPos, true) {
			return false, -1
		}
		return true, pc + 1
	case bc.Nonboundary:
		if r.isWordBoundary(r.textPos, true) {
			return false, -1
		}
		return true, pc + 1
	case bc.ECMABoundary:
		if !r.isWordBoundary(r.textPos, false) {
			return false, -1
		}
		return true, pc + 1
	case bc.NonECMABoundary:
		if r.isWordBoundary(r.textPos, false) {
			return false, -1
		}
		return true, pc + 1

	case bc.One:
		ch, next, ok := r.charAt(r.textPos, op.HasRtl())
		if !ok || !foldEq(op.HasCi(), ch, rune(r.prog.Codes[pc+1])) {
			return false, -1
		}
		r.textPos = next
		return true, pc + 2
	case bc.Notone:
		ch, next, ok := r.charAt(r.textPos, op.HasRtl())
		if !ok || foldEq(op.HasCi(), ch, rune(r.prog.Codes[pc+1])) {
			return false, -1
		}
		r.textPos = next
		return true, pc + 2
	case bc.Set:
		ch, next, ok := r.charAt(r.textPos, op.HasRtl())
		if !ok || !r.testClass(int(r.prog.Codes[pc+1]), ch, op.HasCi()) {
			return false, -1
		}
		r.textPos = next
		return true, pc + 2

	case bc.Onerep, bc.Notonerep, bc.Setrep:
		return r.stepRep(pc, op)

	case bc.Oneloop, bc.Notoneloop, bc.Setloop:
		return r.stepGreedyLoop(pc, op)
	case bc.Onelazy, bc.Notonelazy, bc.Setlazy:
		return r.stepLazyLoop(pc, op)

	case bc.Multi:
		return r.stepMulti(pc, op)
	case bc.Ref:
		return r.stepRef(pc, op)

	case bc.Stop:
		return true, -1
	case bc.Nothing:
		return false, -1
	case bc.Goto:
		return true, int(r.prog.Codes[pc+1])

	case bc.Lazybranch:
		dest := r.prog.Codes[pc+1]
		r.pushTrack(dest, int32(len(r.crawl)), int32(op.Primary()|bc.Back))
		return true, pc + 2

	case bc.Testref:
		slot := int(r.prog.Codes[pc+1])
		if slot < 0 || slot >= len(r.capMatched) || !r.capMatched[slot] {
			return false, -1
		}
		return true, pc + 2

	case bc.Setjump:
		r.jumpStack = append(r.jumpStack, jumpFrame{
			trackLen: len(r.track), crawlLen: len(r.crawl),
			markLen: len(r.markStack), countLen: len(r.countStack),
		})
		return true, pc + 1
	case bc.Backjump:
		f := r.jumpStack[len(r.jumpStack)-1]
		r.jumpStack = r.jumpStack[:len(r.jumpStack)-1]
		r.track = r.track[:f.trackLen]
		r.markStack = r.markStack[:f.markLen]
		r.markCrawl = r.markCrawl[:f.markLen]
		r.countStack = r.countStack[:f.countLen]
		r.unwindCrawl(f.crawlLen)
		return false, -1
	case bc.Forejump:
		f := r.jumpStack[len(r.jumpStack)-1]
		r.jumpStack = r.jumpStack[:len(r.jumpStack)-1]
		r.track = r.track[:f.trackLen]
		r.markStack = r.markStack[:f.markLen]
		r.markCrawl = r.markCrawl[:f.markLen]
		r.countStack = r.countStack[:f.countLen]
		return true, pc + 1

	case bc.Setmark:
		r.markStack = append(r.markStack, int32(r.textPos))
		r.markCrawl = append(r.markCrawl, int32(len(r.crawl)))
		r.pushTrack(int32(len(r.crawl)), int32(bc.Setmark|bc.Back))
		return true, pc + 1
	case bc.Getmark:
		pos := r.markStack[len(r.markStack)-1]
		r.markStack = r.markStack[:len(r.markStack)-1]
		r.markCrawl = r.markCrawl[:len(r.markCrawl)-1]
		r.textPos = int(pos)
		return true, pc + 1

	case bc.Capturemark:
		return r.stepCapturemark(pc)

	case bc.Setcount:
		r.markStack = append(r.markStack, int32(r.textPos))
		r.markCrawl = append(r.markCrawl, int32(len(r.crawl)))
		r.countStack = append(r.countStack, r.prog.Codes[pc+1])
		r.pushTrack(int32(len(r.crawl)), int32(bc.Setcount|bc.Back))
		return true, pc + 2

	case bc.Branchmark:
		return r.stepBranchmark(pc, false)
	case bc.Lazybranchmark:
		dest := r.prog.Codes[pc+1]
		bodyStart := int32(pc + 2)
		r.pushTrack(bodyStart, int32(len(r.crawl)), int32(bc.Lazybranchmark|bc.Back))
		return true, int(dest)

	case bc.Branchcount:
		return r.stepBranchmark(pc, true)
	case bc.Lazybranchcount:
		dest := r.prog.Codes[pc+1]
		bodyStart := int32(pc + 3)
		r.pushTrack(bodyStart, int32(len(r.crawl)), int32(bc.Lazybranchcount|bc.Back))
		return true, int(dest)

	default:
		return false, -1
	}
}

func (r *Runner) stepRep(pc int, op bc.Op) (bool, int) {
	operand := r.prog.Codes[pc+1]
	count := int(r.prog.Codes[pc+2])
	rtl := op.HasRtl()
	ci := op.HasCi()
	pos := r.textPos
	for i := 0; i < count; i++ {
		ch, next, ok := r.charAt(pos, rtl)
		if !ok || !r.charMatches(op.Primary(), operand, ch, ci) {
			return false, -1
		}
		pos = next
	}
	r.textPos = pos
	return true, pc + 3
}

func (r *Runner) testClass(stringIdx int, ch rune, ci bool) bool {
	cls, ok := r.classCache[stringIdx]
	if !ok {
		var err error
		cls, err = charclassDecode(r.prog.Strings[stringIdx])
		if err != nil {
			return false
		}
		r.classCache[stringIdx] = cls
	}
	if cls.Contains(ch) {
		return true
	}
	if ci {
		return cls.Contains(lowerFold(ch)) || cls.Contains(upperFold(ch))
	}
	return false
}

func (r *Runner) isWordBoundary(pos int, unicodeAware bool) bool {
	before := pos > r.textBeg && isWordChar(r.input[pos-1], unicodeAware)
	after := pos < r.textEnd && isWordChar(r.input[pos], unicodeAware)
	return before != after
}

// stepMulti matches a literal run atomically: either the whole string
// matches at the current position or the instruction fails outright,
// with no partial-match track frame (spec.md §4.2 treats Multi as a
// single indivisible test, like One/Notone/Set).
func (r *Runner) stepMulti(pc int, op bc.Op) (bool, int) {
	s := []rune(r.prog.Strings[r.prog.Codes[pc+1]])
	rtl := op.HasRtl()
	ci := op.HasCi()
	pos := r.textPos
	for i := 0; i < len(s); i++ {
		want := s[i]
		if rtl {
			want = s[len(s)-1-i]
		}
		ch, next, ok := r.charAt(pos, rtl)
		if !ok || !foldEq(ci, ch, want) {
			return false, -1
		}
		pos = next
	}
	r.textPos = pos
	return true, pc + 2
}

// stepRef matches a backreference: the captured span must be matched
// and must literally (subject to Ci) recur at the current position. An
// unmatched referenced group fails the opcode, per spec.md §7's
// "referencing an unmatched group never matches".
func (r *Runner) stepRef(pc int, op bc.Op) (bool, int) {
	slot := int(r.prog.Codes[pc+1])
	if slot < 0 || slot >= len(r.capMatched) || !r.capMatched[slot] {
		return false, -1
	}
	start, end := r.capStart[slot], r.capEnd[slot]
	length := end - start
	rtl := op.HasRtl()
	ci := op.HasCi()
	pos := r.textPos
	for i := 0; i < length; i++ {
		want := r.input[start+i]
		if rtl {
			want = r.input[end-1-i]
		}
		ch, next, ok := r.charAt(pos, rtl)
		if !ok || !foldEq(ci, ch, want) {
			return false, -1
		}
		pos = next
	}
	r.textPos = pos
	return true, pc + 2
}

// stepCapturemark closes a capturing group: with b == -1 it records a
// fresh span for slot a from the mark Setmark pushed to the current
// position; otherwise (balancing group) it additionally requires slot
// b to be matched and transfers b's start into a's span, invalidating
// b (spec.md §4.1/§4.2).
func (r *Runner) stepCapturemark(pc int) (bool, int) {
	a := int(r.prog.Codes[pc+1])
	b := int(r.prog.Codes[pc+2])
	// Peek, don't pop: the mark slot this Setmark pushed is reclaimed
	// by that Setmark's own cleanup frame once backtracking unwinds
	// past it (or left as a harmless leftover on overall success).
	entry := int(r.markStack[len(r.markStack)-1])

	if b < 0 {
		start, length := orderedSpan(entry, r.textPos)
		r.pushCapture(a, start, start+length)
		return true, pc + 3
	}
	if b >= len(r.capMatched) || !r.capMatched[b] {
		return false, -1
	}
	bStart := r.capStart[b]
	start, length := orderedSpan(bStart, r.textPos)
	r.pushCapture(a, start, start+length)
	r.invalidateCapture(b)
	return true, pc + 3
}

// stepBranchmark is the shared tail for both the unbounded
// (Branchmark) and bounded (Branchcount) composite-loop mechanisms: it
// applies the empty-match guard (spec.md §4.2's "a loop iteration that
// consumed no text must not be allowed to repeat"), and for the
// bounded case also the remaining-iteration guard, before deciding
// whether to attempt another pass through the loop body or fall
// through past it.
func (r *Runner) stepBranchmark(pc int, counted bool) (bool, int) {
	dest := int(r.prog.Codes[pc+1])
	afterPc := pc + 2
	if counted {
		afterPc = pc + 3
	}

	entryPos := r.markStack[len(r.markStack)-1]
	var remaining int32
	if counted {
		remaining = r.countStack[len(r.countStack)-1]
	}

	// The mark/count slot is intentionally left in place here: it is
	// reclaimed exactly once, by the Setmark/Setcount cleanup frame the
	// loop entry pushed, whenever backtracking eventually unwinds past
	// this loop (or never, on an overall successful match, which is
	// harmless since the next search attempt resets both stacks).
	noProgress := int32(r.textPos) == entryPos
	exhausted := counted && remaining <= 0
	if noProgress || exhausted {
		return true, afterPc
	}

	// The undo frame must roll capture writes back to how they stood
	// when *this* iteration began, not to the current (post-iteration)
	// crawl length — that point is exactly what markCrawl's top holds
	// right now, before it is advanced below for the next iteration.
	iterCrawlLen := r.markCrawl[len(r.markCrawl)-1]
	if counted {
		r.countStack[len(r.countStack)-1] = remaining - 1
		r.pushTrack(entryPos, remaining, int32(afterPc), iterCrawlLen, int32(bc.Branchcount|bc.Back))
	} else {
		r.pushTrack(entryPos, int32(afterPc), iterCrawlLen, int32(bc.Branchmark|bc.Back))
	}
	r.markStack[len(r.markStack)-1] = int32(r.textPos)
	r.markCrawl[len(r.markCrawl)-1] = int32(len(r.crawl))
	return true, dest
}
