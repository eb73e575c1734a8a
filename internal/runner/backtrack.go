package runner

import bc "github.com/coregx/btre/internal/bytecode"

// backtrack pops track frames until one of them yields a resumable
// program counter, or the stack empties (overall failure). Every frame
// carries, just beneath its tag word, a crawl-length word that is applied before the
// tag-specific handler runs, so capture writes made since the frame was
// pushed are rolled back uniformly (spec.md §4.5).
func (r *Runner) backtrack() (int, bool) {
	for len(r.track) > 0 {
		tag := bc.Op(r.popVal())
		crawlLen := int(r.popVal())
		r.unwindCrawl(crawlLen)

		switch tag.Primary() {
		case bc.Lazybranch, bc.Lazybranchmark, bc.Lazybranchcount:
			dest := r.popVal()
			return int(dest), true

		case bc.Setmark:
			r.markStack = r.markStack[:len(r.markStack)-1]
			r.markCrawl = r.markCrawl[:len(r.markCrawl)-1]
			continue

		case bc.Setcount:
			r.markStack = r.markStack[:len(r.markStack)-1]
			r.markCrawl = r.markCrawl[:len(r.markCrawl)-1]
			r.countStack = r.countStack[:len(r.countStack)-1]
			continue

		case bc.Branchmark:
			afterPc := r.popVal()
			entryPos := r.popVal()
			r.markStack[len(r.markStack)-1] = entryPos
			r.markCrawl[len(r.markCrawl)-1] = int32(crawlLen)
			r.textPos = int(entryPos)
			return int(afterPc), true

		case bc.Branchcount:
			afterPc := r.popVal()
			remaining := r.popVal()
			entryPos := r.popVal()
			r.markStack[len(r.markStack)-1] = entryPos
			r.markCrawl[len(r.markCrawl)-1] = int32(crawlLen)
			r.countStack[len(r.countStack)-1] = remaining
			r.textPos = int(entryPos)
			return int(afterPc), true

		case bc.Oneloop, bc.Notoneloop, bc.Setloop:
			if pc, ok := r.backtrackGreedyLoop(tag); ok {
				return pc, true
			}
			continue

		case bc.Onelazy, bc.Notonelazy, bc.Setlazy:
			if pc, ok := r.backtrackLazyLoop(tag); ok {
				return pc, true
			}
			continue

		default:
			continue
		}
	}
	return 0, false
}

func (r *Runner) backtrackGreedyLoop(tag bc.Op) (int, bool) {
	afterPc := r.popVal()
	start := r.popVal()
	consumed := r.popVal()
	if consumed == 0 {
		return 0, false
	}
	consumed--
	if tag.HasRtl() {
		r.textPos = int(start) - int(consumed)
	} else {
		r.textPos = int(start) + int(consumed)
	}
	r.pushTrack(consumed, start, afterPc, int32(len(r.crawl)), int32(tag))
	return int(afterPc), true
}

func (r *Runner) backtrackLazyLoop(tag bc.Op) (int, bool) {
	afterPc := r.popVal()
	max := r.popVal()
	operand := r.popVal()
	start := r.popVal()
	consumed := r.popVal()
	if consumed >= max {
		return 0, false
	}
	pos := int(start) + int(consumed)
	if tag.HasRtl() {
		pos = int(start) - int(consumed)
	}
	ch, next, ok := r.charAt(pos, tag.HasRtl())
	if !ok || !r.charMatches(tag.Primary(), operand, ch, tag.HasCi()) {
		return 0, false
	}
	consumed++
	r.textPos = next
	r.pushTrack(consumed, start, operand, max, afterPc, int32(len(r.crawl)), int32(tag))
	return int(afterPc), true
}
