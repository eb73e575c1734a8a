// Package bytecode implements the Program data model and the Writer that
// lowers a tree.Node into it (SPEC_FULL.md §3, §4.2). The Runner
// (package runner) is the sole consumer of a Program.
package bytecode

// Op is an instruction word. The low bits carry the primary opcode (see
// the Op constants below); the high bits carry modifier flags.
type Op uint32

// Modifier flags, ORed onto a primary Op. Back and Back2 are never
// present in an emitted Program's Codes. Back appears only in the tag
// word of a Runner track frame, marking which backtracking handler the
// frame belongs to; Back2 is not set anywhere in this module.
const (
	Rtl   Op = 1 << 16
	Ci    Op = 1 << 17
	Back  Op = 1 << 18
	Back2 Op = 1 << 19

	modifierMask = Rtl | Ci | Back | Back2
)

// Primary returns op with every modifier flag stripped.
func (op Op) Primary() Op { return op &^ modifierMask }

// HasRtl, HasCi, HasBack, HasBack2 test the corresponding modifier flag.
func (op Op) HasRtl() bool   { return op&Rtl != 0 }
func (op Op) HasCi() bool    { return op&Ci != 0 }
func (op Op) HasBack() bool  { return op&Back != 0 }
func (op Op) HasBack2() bool { return op&Back2 != 0 }

// Primary opcodes, grouped per SPEC_FULL.md §4.2.
const (
	// Anchors: no operands.
	Beginning Op = iota
	Start
	EndZ
	End
	Bol
	Eol
	Boundary
	Nonboundary
	ECMABoundary
	NonECMABoundary

	// Single-character tests: 1 operand.
	One    // operand: char
	Notone // operand: char
	Set    // operand: string-pool index of a CharClass blob

	// Bounded repetitions (exact count, no backtracking): 2 operands.
	Onerep
	Notonerep
	Setrep

	// Greedy bounded loops (may backtrack down to 0): 2 operands
	// (char/class, remaining-count-after-the-unrolled-minimum).
	Oneloop
	Notoneloop
	Setloop

	// Lazy bounded loops: 2 operands.
	Onelazy
	Notonelazy
	Setlazy

	// Literal run: 1 operand (string-pool index).
	Multi

	// Backreference: 1 operand (capture slot).
	Ref

	// Control.
	Stop    // no operands: final accept
	Nothing // no operands: immediate fail
	Goto    // 1 operand: dest

	Lazybranch // 1 operand: dest (greedy skip-or-take alternative)
	Testref    // 1 operand: capture slot

	Setjump  // no operands: snapshot trackPos+crawl length (lookaround frame entry)
	Backjump // no operands: restore trackPos, unwind crawl to snapshot, fail
	Forejump // no operands: restore trackPos only, succeed

	Setmark  // no operands: push current textPos as a mark
	Nullmark // no operands: push a "no mark" sentinel
	Getmark  // no operands: pop the top mark and move textPos back to it

	Capturemark // 2 operands: capture slot a, balancing slot b (-1 if none)

	Setcount  // 1 operand: initial iteration budget
	Nullcount // 1 operand: initial iteration budget, no mark semantics

	Branchmark     // 1 operand: dest (unbounded loop tail, empty-match aware)
	Lazybranchmark // 1 operand: dest

	Branchcount     // 2 operands: dest, max
	Lazybranchcount // 2 operands: dest, max

	opCount
)

// Size returns the instruction word count (including the opcode word
// itself) for the primary opcode op.
func Size(op Op) int {
	switch op.Primary() {
	case Beginning, Start, EndZ, End, Bol, Eol, Boundary, Nonboundary,
		ECMABoundary, NonECMABoundary, Stop, Nothing,
		Setjump, Backjump, Forejump, Setmark, Nullmark, Getmark:
		return 1
	case One, Notone, Set, Multi, Ref, Goto, Lazybranch, Testref,
		Setcount, Nullcount, Branchmark, Lazybranchmark:
		return 2
	case Onerep, Notonerep, Setrep, Oneloop, Notoneloop, Setloop,
		Onelazy, Notonelazy, Setlazy, Capturemark, Branchcount, Lazybranchcount:
		return 3
	default:
		return 1
	}
}

// names is used only by Program.Dump (diagnostic disassembly).
var names = map[Op]string{
	Beginning: "Beginning", Start: "Start", EndZ: "EndZ", End: "End",
	Bol: "Bol", Eol: "Eol", Boundary: "Boundary", Nonboundary: "Nonboundary",
	ECMABoundary: "ECMABoundary", NonECMABoundary: "NonECMABoundary",
	One: "One", Notone: "Notone", Set: "Set",
	Onerep: "Onerep", Notonerep: "Notonerep", Setrep: "Setrep",
	Oneloop: "Oneloop", Notoneloop: "Notoneloop", Setloop: "Setloop",
	Onelazy: "Onelazy", Notonelazy: "Notonelazy", Setlazy: "Setlazy",
	Multi: "Multi", Ref: "Ref",
	Stop: "Stop", Nothing: "Nothing", Goto: "Goto",
	Lazybranch: "Lazybranch", Testref: "Testref",
	Setjump: "Setjump", Backjump: "Backjump", Forejump: "Forejump",
	Setmark: "Setmark", Nullmark: "Nullmark", Getmark: "Getmark",
	Capturemark: "Capturemark",
	Setcount:    "Setcount", Nullcount: "Nullcount",
	Branchmark: "Branchmark", Lazybranchmark: "Lazybranchmark",
	Branchcount: "Branchcount", Lazybranchcount: "Lazybranchcount",
}

func (op Op) String() string {
	s, ok := names[op.Primary()]
	if !ok {
		s = "?"
	}
	if op.HasRtl() {
		s += "+Rtl"
	}
	if op.HasCi() {
		s += "+Ci"
	}
	if op.HasBack() {
		s += "+Back"
	}
	if op.HasBack2() {
		s += "+Back2"
	}
	return s
}
