package bytecode

import (
	"fmt"
	"strings"

	"github.com/coregx/btre/internal/charclass"
)

// AnchorMask is the bitmask of anchor hints a Program's pattern carries,
// drawn from {Beginning, Start, EndZ, End} (SPEC_FULL.md §3).
type AnchorMask uint8

const (
	AnchorBeginning AnchorMask = 1 << iota
	AnchorStart
	AnchorEndZ
	AnchorEnd
)

// Prefix is the optional literal prefix hint a Program carries for
// Boyer-Moore acceleration (SPEC_FULL.md §3).
type Prefix struct {
	Literal     []rune
	CaseFold    bool
	RightToLeft bool
}

// Program is the immutable artifact a Writer produces and a Runner
// executes (SPEC_FULL.md §3).
type Program struct {
	Codes []int32
	// Strings holds literal runs (Multi operands) and encoded CharClass
	// blobs (Set/Setloop/Setlazy operands), indexed by operand value.
	Strings []string

	CaptureCount int
	// CaptureMap maps a sparse source capture number to its dense slot
	// index. Nil when the source capture numbers are already dense.
	CaptureMap map[int]int

	// TrackReserve counts the Writer's frame-pushing emissions: one per
	// char-level loop, Lazybranch guard (alternation, negative
	// lookaround, conditional), composite-loop entry, lazy composite
	// entry and composite-loop tail. It is not an
	// upper bound on track depth: a composite-loop tail pushes one frame
	// per iteration, and the Setmark of a capture or lookaround is not
	// counted. The Runner does not read it.
	TrackReserve int

	Prefix      *Prefix
	FirstChars  *charclass.Class
	Anchors     AnchorMask
	RightToLeft bool
}

// SlotFor maps a source capture number to its dense slot index.
func (p *Program) SlotFor(capNum int) int {
	if p.CaptureMap == nil {
		return capNum
	}
	if slot, ok := p.CaptureMap[capNum]; ok {
		return slot
	}
	return capNum
}

// Dump renders a human-readable disassembly of the program. Diagnostic
// only (SPEC_FULL.md §3 "Logging & diagnostics"); never called on the
// match hot path.
func (p *Program) Dump() string {
	var b strings.Builder
	pc := 0
	for pc < len(p.Codes) {
		op := Op(p.Codes[pc])
		size := Size(op.Primary())
		fmt.Fprintf(&b, "%4d: %s", pc, op)
		for i := 1; i < size && pc+i < len(p.Codes); i++ {
			fmt.Fprintf(&b, " %d", p.Codes[pc+i])
		}
		b.WriteByte('\n')
		pc += size
	}
	return b.String()
}
