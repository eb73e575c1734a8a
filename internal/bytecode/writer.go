package bytecode

import (
	"fmt"
	"math"

	"github.com/coregx/btre/internal/conv"
	"github.com/coregx/btre/tree"
)

// Infinite marks an unbounded quantifier's remaining-iteration operand.
const Infinite = math.MaxInt32

// Writer lowers a tree.Node into a Program (SPEC_FULL.md §4.2). A Writer
// is single-use: construct one with NewWriter, call Write once.
//
// The outer start-position retry that spec.md §4.2 describes as a
// "Lazybranch 0 … Stop" wrapper is realized here as a Runner-level loop
// over candidate start positions instead (internal/runner.Search): each
// attempt resets the track/stack/crawl state and runs the same Program
// from codepos 0, rather than encoding retry-at-next-start-position as
// in-program backtracking. This keeps a failed attempt from leaking
// track frames into the next one and needs no dedicated opcode; it is
// an Open Question resolution recorded in DESIGN.md.
type Writer struct {
	codes []int32

	strings     []string
	stringIndex map[string]int

	trackReserve int

	captureCount int
	captureMap   map[int]int
	denseSeen    map[int]int
	nextSlot     int

	err error
}

// NewWriter returns a ready-to-use Writer.
func NewWriter() *Writer {
	return &Writer{
		stringIndex: make(map[string]int),
		denseSeen:   make(map[int]int),
	}
}

// Write lowers root into a Program. rtl marks the whole pattern as
// right-to-left (spec.md §6 Options.RightToLeft). The returned Program's
// Prefix, FirstChars and Anchors are left unset: the Writer does not
// compute them — that is a Compile-time analysis over root, which the
// caller attaches to the Program after Write returns.
func (w *Writer) Write(root *tree.Node, rtl bool) (*Program, error) {
	w.assignSlots(root)
	w.emitNode(root)
	w.emit(int32(Stop))
	if w.err != nil {
		return nil, w.err
	}
	p := &Program{
		Codes:        w.codes,
		Strings:      w.strings,
		CaptureCount: w.nextSlot,
		TrackReserve: w.trackReserve,
		RightToLeft:  rtl,
	}
	if len(w.denseSeen) > 0 {
		needsMap := false
		for num, slot := range w.denseSeen {
			if num != slot {
				needsMap = true
				break
			}
		}
		if needsMap {
			p.CaptureMap = w.denseSeen
		}
	}
	return p, nil
}

// assignSlots walks the tree once, assigning a dense slot to every
// distinct capture number it finds in source order (spec.md §4.2
// "assign a dense capture index to every source capture number").
// Slot 0 is reserved for the whole match.
func (w *Writer) assignSlots(n *tree.Node) {
	w.nextSlot = 1
	w.denseSeen[0] = 0
	var walk func(*tree.Node)
	walk = func(n *tree.Node) {
		if n == nil {
			return
		}
		if n.Kind == tree.KindCapture {
			if _, ok := w.denseSeen[n.CapNum]; !ok {
				w.denseSeen[n.CapNum] = w.nextSlot
				w.nextSlot++
			}
			if n.CapOther >= 0 {
				if _, ok := w.denseSeen[n.CapOther]; !ok {
					w.denseSeen[n.CapOther] = w.nextSlot
					w.nextSlot++
				}
			}
		}
		for _, s := range n.Sub {
			walk(s)
		}
	}
	walk(n)
}

// slot returns capNum's dense operand, bounds-checked the same way the
// capture-slot and string-table indices below are: these are stored as
// int32 operands in Codes, so an index a caller could grow unboundedly
// (a pathological pattern with enough distinct capture groups) must be
// caught before it silently wraps rather than after.
func (w *Writer) slot(capNum int) int32 {
	if s, ok := w.denseSeen[capNum]; ok {
		return int32(conv.IntToUint32(s))
	}
	return int32(conv.IntToUint32(capNum))
}

func (w *Writer) internString(s string) int32 {
	if idx, ok := w.stringIndex[s]; ok {
		return int32(conv.IntToUint32(idx))
	}
	idx := len(w.strings)
	w.strings = append(w.strings, s)
	w.stringIndex[s] = idx
	return int32(conv.IntToUint32(idx))
}

func (w *Writer) emit(words ...int32) int {
	pos := len(w.codes)
	w.codes = append(w.codes, words...)
	return pos
}

func (w *Writer) patch(pos int, value int32) { w.codes[pos] = value }

func (w *Writer) reserveTrack() { w.trackReserve++ }

func (w *Writer) fail(format string, args ...any) {
	if w.err == nil {
		w.err = fmt.Errorf("bytecode: "+format, args...)
	}
}

func mods(ci, rtl bool) Op {
	var m Op
	if ci {
		m |= Ci
	}
	if rtl {
		m |= Rtl
	}
	return m
}

func (w *Writer) emitNode(n *tree.Node) {
	if n == nil || w.err != nil {
		return
	}
	switch n.Kind {
	case tree.KindEmpty:
		// no-op: matches the empty string without emitting anything.
	case tree.KindNothing:
		w.emit(int32(Nothing))

	case tree.KindBeginning:
		w.emit(int32(Beginning))
	case tree.KindStart:
		w.emit(int32(Start))
	case tree.KindEndZ:
		w.emit(int32(EndZ))
	case tree.KindEnd:
		w.emit(int32(End))
	case tree.KindBol:
		w.emit(int32(Bol))
	case tree.KindEol:
		w.emit(int32(Eol))
	case tree.KindBoundary:
		w.emit(int32(Boundary))
	case tree.KindNonboundary:
		w.emit(int32(Nonboundary))
	case tree.KindECMABoundary:
		w.emit(int32(ECMABoundary))
	case tree.KindNonECMABoundary:
		w.emit(int32(NonECMABoundary))

	case tree.KindOne:
		w.emit(int32(One|mods(n.Ci, n.Rtl)), int32(n.Ch))
	case tree.KindNotone:
		w.emit(int32(Notone|mods(n.Ci, n.Rtl)), int32(n.Ch))
	case tree.KindSet:
		w.emit(int32(Set|mods(n.Ci, n.Rtl)), w.internString(n.Class.Encode()))

	case tree.KindMulti:
		w.emit(int32(Multi|mods(n.Ci, n.Rtl)), w.internString(n.Str))
	case tree.KindRef:
		w.emit(int32(Ref|mods(n.Ci, n.Rtl)), w.slot(n.CapNum))

	case tree.KindOneloop, tree.KindNotoneloop, tree.KindSetloop:
		w.emitCharLoop(n, false)
	case tree.KindOnelazy, tree.KindNotonelazy, tree.KindSetlazy:
		w.emitCharLoop(n, true)

	case tree.KindConcatenate:
		for _, s := range n.Sub {
			w.emitNode(s)
		}
	case tree.KindAlternate:
		w.emitAlternate(n.Sub)
	case tree.KindGroup:
		w.emitNode(n.Sub[0])
	case tree.KindCapture:
		w.emitCapture(n)

	case tree.KindGreedy:
		w.emitComposite(n, false)
	case tree.KindLazyloop:
		w.emitComposite(n, true)

	case tree.KindRequire:
		w.emitRequire(n)
	case tree.KindPrevent:
		w.emitPrevent(n)
	case tree.KindTestref:
		w.emitTestref(n)
	case tree.KindTestgroup:
		w.emitTestgroup(n)

	default:
		w.fail("unhandled node kind %d", n.Kind)
	}
}

// emitCharLoop lowers a bounded single-character/class repeat. A min
// greater than zero unrolls as an atomic exact-count opcode (Onerep
// family); anything above min uses a single backtrackable loop opcode
// carrying one track frame regardless of how many reps it consumes —
// the same shape as the Oneloop/Onelazy family in spec.md §4.2, and the
// reason these char-level loops need only one frame per loop instance
// rather than one per repetition.
func (w *Writer) emitCharLoop(n *tree.Node, lazy bool) {
	repOp, loopOp, lazyOp := classifyCharLoop(n.Kind)
	operand := w.charLoopOperand(n)

	if n.Min > 0 {
		w.emit(int32(repOp|mods(n.Ci, n.Rtl)), operand, int32(n.Min))
	}
	if n.Max == n.Min {
		return
	}
	remaining := int32(Infinite)
	if !tree.IsUnbounded(n.Max) {
		remaining = int32(n.Max - n.Min)
	}
	if remaining == 0 {
		return
	}
	op := loopOp
	if lazy {
		op = lazyOp
	}
	w.emit(int32(op|mods(n.Ci, n.Rtl)), operand, remaining)
	w.reserveTrack()
}

func classifyCharLoop(k tree.Kind) (rep, loop, lazy Op) {
	switch k {
	case tree.KindOneloop, tree.KindOnelazy:
		return Onerep, Oneloop, Onelazy
	case tree.KindNotoneloop, tree.KindNotonelazy:
		return Notonerep, Notoneloop, Notonelazy
	default:
		return Setrep, Setloop, Setlazy
	}
}

func (w *Writer) charLoopOperand(n *tree.Node) int32 {
	if n.Class != nil {
		return w.internString(n.Class.Encode())
	}
	return int32(n.Ch)
}

// emitAlternate lowers an ordered alternation as a chain of Lazybranch
// guards: forward execution falls through into the first alternative;
// backtracking into the guard jumps to the next one.
func (w *Writer) emitAlternate(subs []*tree.Node) {
	if len(subs) == 0 {
		return
	}
	var endPatches []int
	for i, s := range subs {
		last := i == len(subs)-1
		if !last {
			branchPos := w.emit(int32(Lazybranch), 0)
			w.reserveTrack()
			w.emitNode(s)
			endPatches = append(endPatches, w.emit(int32(Goto), 0))
			w.patch(branchPos+1, int32(len(w.codes)))
		} else {
			w.emitNode(s)
		}
	}
	end := int32(len(w.codes))
	for _, p := range endPatches {
		w.patch(p+1, end)
	}
}

// emitCapture lowers (?<n>sub), and the balancing form (?<n-other>sub)
// when CapOther >= 0 (spec.md §4.2 Capturemark a b).
func (w *Writer) emitCapture(n *tree.Node) {
	w.emit(int32(Setmark))
	w.emitNode(n.Sub[0])
	other := int32(-1)
	if n.CapOther >= 0 {
		other = w.slot(n.CapOther)
	}
	w.emit(int32(Capturemark), w.slot(n.CapNum), other)
}

// emitComposite lowers a generic quantifier over an arbitrary
// subexpression using the mark/count backtracking family (spec.md
// §4.2's "distinct mechanism... for counted versus uncounted loops").
// The min copies are unrolled straight-line; anything beyond that uses
// Branchmark/Branchcount (greedy) or a Lazybranch-guarded entry into
// the same tail (lazy), exactly mirroring how the char-level loops
// prefer fewer or more reps.
func (w *Writer) emitComposite(n *tree.Node, lazy bool) {
	sub := n.Sub[0]
	for i := 0; i < n.Min; i++ {
		w.emitNode(sub)
	}
	if n.Max == n.Min {
		return
	}
	bounded := !tree.IsUnbounded(n.Max)
	remaining := int32(Infinite)
	if bounded {
		remaining = int32(n.Max - n.Min)
	}
	if remaining == 0 {
		return
	}

	if bounded {
		// The body runs once before the tail first checks the budget,
		// so the budget covers the remaining-1 passes after that one.
		w.emit(int32(Setcount), remaining-1)
	} else {
		w.emit(int32(Setmark))
	}
	w.reserveTrack()

	var skipPos int
	loopTop := len(w.codes)
	if lazy {
		lazyOp := Lazybranchmark
		if bounded {
			lazyOp = Lazybranchcount
		}
		skipPos = w.emit(int32(lazyOp), 0)
		if bounded {
			w.emit(remaining)
		}
		w.reserveTrack()
		loopTop = len(w.codes)
	}

	w.emitNode(sub)

	tailOp := Branchmark
	if bounded {
		tailOp = Branchcount
	}
	tailPos := w.emit(int32(tailOp), int32(loopTop))
	if bounded {
		w.emit(remaining)
	}
	w.reserveTrack()
	_ = tailPos

	if lazy {
		w.patch(skipPos+1, int32(len(w.codes)))
	}
}

// emitRequire lowers a positive lookaround: commit to the body's first
// successful match, restore the text position (zero-width), discard
// the body's own backtrack frames (Forejump).
func (w *Writer) emitRequire(n *tree.Node) {
	w.emit(int32(Setjump))
	w.emit(int32(Setmark))
	w.emitNode(n.Sub[0])
	w.emit(int32(Getmark))
	w.emit(int32(Forejump))
}

// emitPrevent lowers a negative lookaround. A Lazybranch guards the
// body: if the body ever succeeds, Backjump forces the overall attempt
// to fail (rolling captures back to the Setjump snapshot and discarding
// the body's pending alternatives); only when the body is exhausted
// without ever succeeding does backtracking reach the guard's target,
// where the Prevent node itself succeeds.
func (w *Writer) emitPrevent(n *tree.Node) {
	w.emit(int32(Setjump))
	w.emit(int32(Setmark))
	guardPos := w.emit(int32(Lazybranch), 0)
	w.reserveTrack()
	w.emitNode(n.Sub[0])
	w.emit(int32(Getmark))
	w.emit(int32(Backjump))
	w.patch(guardPos+1, int32(len(w.codes)))
	w.emit(int32(Forejump))
}

// emitTestref lowers a backreference conditional: run the "yes" branch
// only if the referenced capture matched; otherwise fall to "no" by
// way of the same Lazybranch-guard technique emitAlternate uses. A
// Setjump/Forejump pair drops the guard once the test passes, so a
// failing "yes" branch does not fall into "no".
func (w *Writer) emitTestref(n *tree.Node) {
	w.emit(int32(Setjump))
	guardPos := w.emit(int32(Lazybranch), 0)
	w.reserveTrack()
	w.emit(int32(Testref), w.slot(n.CapNum))
	w.emit(int32(Forejump))
	w.emitNode(n.Sub[0])
	endPos := w.emit(int32(Goto), 0)
	w.patch(guardPos+1, int32(len(w.codes)))
	w.emit(int32(Forejump))
	w.emitNode(n.Sub[1])
	w.patch(endPos+1, int32(len(w.codes)))
}

// emitTestgroup lowers a group-existence conditional. The condition is
// run as a positive lookaround (Setjump/Setmark/.../Getmark/Forejump);
// whether it ever reaches the Forejump determines yes vs. no, using the
// same Lazybranch-guard technique as emitTestref.
func (w *Writer) emitTestgroup(n *tree.Node) {
	guardPos := w.emit(int32(Lazybranch), 0)
	w.reserveTrack()
	w.emit(int32(Setjump))
	w.emit(int32(Setmark))
	w.emitNode(n.Sub[0])
	w.emit(int32(Getmark))
	w.emit(int32(Forejump))
	w.emitNode(n.Sub[1])
	endPos := w.emit(int32(Goto), 0)
	w.patch(guardPos+1, int32(len(w.codes)))
	w.emitNode(n.Sub[2])
	w.patch(endPos+1, int32(len(w.codes)))
}
