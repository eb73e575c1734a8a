// Package tree defines the syntax-tree node shapes the bytecode Writer
// consumes.
//
// The surface parser that builds these trees from pattern text is an
// external collaborator (see SPEC_FULL.md §1/§6): this package only fixes
// the node contract, mirroring the node set a .NET-style regex engine's
// RegexNode enumeration carries. FromSyntax adapts the standard library's
// regexp/syntax trees for the subset of the language they can express;
// constructs with no RE2 surface syntax (backreferences, lookaround,
// balancing groups, conditionals) are built directly with the Node
// constructors below.
package tree

import "github.com/coregx/btre/internal/charclass"

// Kind identifies the shape of a Node. The set matches the opcode
// enumeration in SPEC_FULL.md §4.2: every Kind here has a corresponding
// instruction the Writer can emit.
type Kind uint8

const (
	KindEmpty Kind = iota
	KindNothing

	// Anchors (leaves, no operands).
	KindBeginning
	KindStart
	KindEndZ
	KindEnd
	KindBol
	KindEol
	KindBoundary
	KindNonboundary
	KindECMABoundary
	KindNonECMABoundary

	// Single-character tests.
	KindOne
	KindNotone
	KindSet

	// Char-level quantifiers: Min/Max bound repeats of Ch (One/Notone) or
	// Class (Set). Max == -1 means unbounded. Min == Max is the bounded
	// "exact count" case (Onerep/Notonerep/Setrep at the opcode level).
	KindOneloop
	KindNotoneloop
	KindSetloop
	KindOnelazy
	KindNotonelazy
	KindSetlazy

	// Literal run.
	KindMulti

	// Backreference to capture number CapNum.
	KindRef

	// Structure.
	KindConcatenate
	KindAlternate
	KindCapture
	KindGroup

	// Generic quantifiers over an arbitrary subexpression (Sub[0]), used
	// when the body is not a single char/class — e.g. (ab)*, (a|b)+.
	KindGreedy
	KindLazyloop

	// Conditionals and lookaround.
	KindTestref
	KindTestgroup
	KindRequire
	KindPrevent
)

// Node is one element of a syntax tree. Not every field applies to every
// Kind; see the Kind constant doc comments above for which fields a given
// Kind reads.
type Node struct {
	Kind Kind

	// Rtl and Ci mirror the opcode modifier bits: Rtl means "test the
	// character to the left of the position", Ci means "case-fold both
	// sides before compare".
	Rtl bool
	Ci  bool

	Ch    rune              // KindOne/Notone/Oneloop/Notoneloop/Onelazy/Notonelazy
	Class *charclass.Class  // KindSet/Setloop/Setlazy
	Str   string            // KindMulti

	Min, Max int // quantifier bounds; Max == -1 means unbounded

	CapNum   int // KindCapture: this group's slot; KindRef/Testref: referenced slot
	CapOther int // KindCapture balancing group "-name"; -1 if this capture does not close another

	Sub []*Node
}

// NewOne builds a single-character match node.
func NewOne(ch rune, ci, rtl bool) *Node {
	return &Node{Kind: KindOne, Ch: ch, Ci: ci, Rtl: rtl}
}

// NewNotone builds a negated single-character match node.
func NewNotone(ch rune, ci, rtl bool) *Node {
	return &Node{Kind: KindNotone, Ch: ch, Ci: ci, Rtl: rtl}
}

// NewSet builds a character-class match node.
func NewSet(cls *charclass.Class, ci, rtl bool) *Node {
	return &Node{Kind: KindSet, Class: cls, Ci: ci, Rtl: rtl}
}

// NewMulti builds a literal-run match node.
func NewMulti(s string, ci, rtl bool) *Node {
	return &Node{Kind: KindMulti, Str: s, Ci: ci, Rtl: rtl}
}

// NewRef builds a backreference node to capture slot num.
func NewRef(num int, ci, rtl bool) *Node {
	return &Node{Kind: KindRef, CapNum: num, Ci: ci, Rtl: rtl}
}

// NewAnchor builds an anchor leaf of the given kind.
func NewAnchor(k Kind) *Node {
	return &Node{Kind: k}
}

// NewConcatenate builds a concatenation of subexpressions, in order.
func NewConcatenate(subs ...*Node) *Node {
	return &Node{Kind: KindConcatenate, Sub: subs}
}

// NewAlternate builds an ordered alternation of subexpressions.
func NewAlternate(subs ...*Node) *Node {
	return &Node{Kind: KindAlternate, Sub: subs}
}

// NewCapture wraps sub in a capturing group assigned slot num. other is the
// balancing-group slot this capture closes (Capturemark's "b" operand),
// or -1 if this is an ordinary capture.
func NewCapture(num, other int, sub *Node) *Node {
	return &Node{Kind: KindCapture, CapNum: num, CapOther: other, Sub: []*Node{sub}}
}

// NewGroup wraps sub in a non-capturing group (pure structural grouping,
// no capture bookkeeping emitted).
func NewGroup(sub *Node) *Node {
	return &Node{Kind: KindGroup, Sub: []*Node{sub}}
}

// NewGreedy builds a generic greedy quantifier (min,max) over sub. Use
// NewOneloop/NewSetloop instead when sub is a single char or class — those
// lower to a tighter opcode.
func NewGreedy(min, max int, sub *Node) *Node {
	return &Node{Kind: KindGreedy, Min: min, Max: max, Sub: []*Node{sub}}
}

// NewLazyloop builds a generic lazy quantifier (min,max) over sub.
func NewLazyloop(min, max int, sub *Node) *Node {
	return &Node{Kind: KindLazyloop, Min: min, Max: max, Sub: []*Node{sub}}
}

// NewOneloop builds a greedy repeat (min,max) of a single character.
func NewOneloop(ch rune, min, max int, ci, rtl bool) *Node {
	return &Node{Kind: KindOneloop, Ch: ch, Min: min, Max: max, Ci: ci, Rtl: rtl}
}

// NewNotoneloop builds a greedy repeat (min,max) of a negated character.
func NewNotoneloop(ch rune, min, max int, ci, rtl bool) *Node {
	return &Node{Kind: KindNotoneloop, Ch: ch, Min: min, Max: max, Ci: ci, Rtl: rtl}
}

// NewSetloop builds a greedy repeat (min,max) of a character class.
func NewSetloop(cls *charclass.Class, min, max int, ci, rtl bool) *Node {
	return &Node{Kind: KindSetloop, Class: cls, Min: min, Max: max, Ci: ci, Rtl: rtl}
}

// NewOnelazy builds a lazy repeat (min,max) of a single character.
func NewOnelazy(ch rune, min, max int, ci, rtl bool) *Node {
	return &Node{Kind: KindOnelazy, Ch: ch, Min: min, Max: max, Ci: ci, Rtl: rtl}
}

// NewNotonelazy builds a lazy repeat (min,max) of a negated character.
func NewNotonelazy(ch rune, min, max int, ci, rtl bool) *Node {
	return &Node{Kind: KindNotonelazy, Ch: ch, Min: min, Max: max, Ci: ci, Rtl: rtl}
}

// NewSetlazy builds a lazy repeat (min,max) of a character class.
func NewSetlazy(cls *charclass.Class, min, max int, ci, rtl bool) *Node {
	return &Node{Kind: KindSetlazy, Class: cls, Min: min, Max: max, Ci: ci, Rtl: rtl}
}

// NewTestref builds a backreference conditional: if capture num matched,
// take Sub[0], else Sub[1] (Sub[1] may be the Empty node).
func NewTestref(num int, yes, no *Node) *Node {
	return &Node{Kind: KindTestref, CapNum: num, Sub: []*Node{yes, no}}
}

// NewTestgroup builds a group-existence conditional: Sub[0] is the
// condition subexpression, Sub[1] is the "then" branch, Sub[2] the "else".
func NewTestgroup(cond, yes, no *Node) *Node {
	return &Node{Kind: KindTestgroup, Sub: []*Node{cond, yes, no}}
}

// NewRequire builds a positive lookaround over sub (zero-width assertion
// that must succeed; does not advance the position).
func NewRequire(rtl bool, sub *Node) *Node {
	return &Node{Kind: KindRequire, Rtl: rtl, Sub: []*Node{sub}}
}

// NewPrevent builds a negative lookaround over sub (zero-width assertion
// that must fail).
func NewPrevent(rtl bool, sub *Node) *Node {
	return &Node{Kind: KindPrevent, Rtl: rtl, Sub: []*Node{sub}}
}

// Empty is the canonical zero-width-always-matches leaf.
var Empty = &Node{Kind: KindEmpty}

// Nothing is the canonical always-fails leaf.
var Nothing = &Node{Kind: KindNothing}

// IsUnbounded reports whether max represents "no upper bound" (the
// spec.md §3 Setloop/Oneloop "may be MaxInt" case).
func IsUnbounded(max int) bool { return max < 0 }
