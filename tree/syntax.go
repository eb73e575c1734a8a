package tree

import (
	"fmt"
	"regexp/syntax"

	"github.com/coregx/btre/internal/charclass"
)

// FromSyntax adapts a parsed regexp/syntax tree into the Node shape the
// Writer consumes, for the subset of the language RE2's grammar can
// express (SPEC_FULL.md §1 "Surface tree"). Constructs with no RE2
// surface syntax — backreferences, lookaround, balancing groups,
// conditionals — never appear in a *syntax.Regexp and so are never
// produced here; callers needing them build the corresponding Node
// directly with the constructors in tree.go.
func FromSyntax(re *syntax.Regexp) (*Node, error) {
	return FromSyntaxOpts(re, false, false)
}

// FromSyntaxRtl is FromSyntax for a pattern that will run right-to-left
// (Options.RightToLeft): every leaf this adapter builds carries Rtl so the
// Writer's per-node direction bit (spec.md §4.2's Rtl modifier) matches the
// Runner's scan direction instead of just the Program-level flag.
func FromSyntaxRtl(re *syntax.Regexp, rtl bool) (*Node, error) {
	return FromSyntaxOpts(re, rtl, false)
}

// FromSyntaxOpts is FromSyntax with the rtl and ecma (Options.ECMAScript)
// bits threaded through: ecma picks the ECMAScript word-boundary/word-char
// definition (KindECMABoundary/KindNonECMABoundary) over the Unicode one at
// every \b/\B this adapter emits.
func FromSyntaxOpts(re *syntax.Regexp, rtl, ecma bool) (*Node, error) {
	return fromSyntax(re, re.Flags&syntax.FoldCase != 0, rtl, ecma)
}

func fromSyntax(re *syntax.Regexp, ci, rtl, ecma bool) (*Node, error) {
	ci = ci || re.Flags&syntax.FoldCase != 0
	switch re.Op {
	case syntax.OpNoMatch:
		return Nothing, nil
	case syntax.OpEmptyMatch:
		return Empty, nil

	case syntax.OpLiteral:
		if len(re.Rune) == 0 {
			return Empty, nil
		}
		if len(re.Rune) == 1 {
			return NewOne(re.Rune[0], ci, rtl), nil
		}
		return NewMulti(string(re.Rune), ci, rtl), nil

	case syntax.OpCharClass:
		return NewSet(classFromRanges(re.Rune), ci, rtl), nil

	case syntax.OpAnyCharNotNL:
		cls := charclass.NewBuilder().AddRange(0, '\n'-1).AddRange('\n'+1, 0x10FFFF).Build()
		return NewSet(cls, ci, rtl), nil
	case syntax.OpAnyChar:
		cls := charclass.NewBuilder().AddRange(0, 0x10FFFF).Build()
		return NewSet(cls, ci, rtl), nil

	case syntax.OpBeginLine:
		return NewAnchor(KindBol), nil
	case syntax.OpEndLine:
		return NewAnchor(KindEol), nil
	case syntax.OpBeginText:
		return NewAnchor(KindBeginning), nil
	case syntax.OpEndText:
		return NewAnchor(KindEndZ), nil
	case syntax.OpWordBoundary:
		if ecma {
			return NewAnchor(KindECMABoundary), nil
		}
		return NewAnchor(KindBoundary), nil
	case syntax.OpNoWordBoundary:
		if ecma {
			return NewAnchor(KindNonECMABoundary), nil
		}
		return NewAnchor(KindNonboundary), nil

	case syntax.OpCapture:
		sub, err := fromSyntax(re.Sub[0], ci, rtl, ecma)
		if err != nil {
			return nil, err
		}
		return NewCapture(re.Cap, -1, sub), nil

	case syntax.OpStar, syntax.OpPlus, syntax.OpQuest, syntax.OpRepeat:
		return fromSyntaxRepeat(re, ci, rtl, ecma)

	case syntax.OpConcat:
		subs, err := fromSyntaxAll(re.Sub, ci, rtl, ecma)
		if err != nil {
			return nil, err
		}
		if rtl {
			reverse(subs)
		}
		return NewConcatenate(subs...), nil

	case syntax.OpAlternate:
		subs, err := fromSyntaxAll(re.Sub, ci, rtl, ecma)
		if err != nil {
			return nil, err
		}
		return NewAlternate(subs...), nil

	default:
		return nil, fmt.Errorf("tree: unsupported regexp/syntax op %v", re.Op)
	}
}

func reverse(subs []*Node) {
	for i, j := 0, len(subs)-1; i < j; i, j = i+1, j-1 {
		subs[i], subs[j] = subs[j], subs[i]
	}
}

func fromSyntaxAll(subs []*syntax.Regexp, ci, rtl, ecma bool) ([]*Node, error) {
	out := make([]*Node, len(subs))
	for i, s := range subs {
		n, err := fromSyntax(s, ci, rtl, ecma)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

func fromSyntaxRepeat(re *syntax.Regexp, ci, rtl, ecma bool) (*Node, error) {
	min, max := re.Min, re.Max
	switch re.Op {
	case syntax.OpStar:
		min, max = 0, -1
	case syntax.OpPlus:
		min, max = 1, -1
	case syntax.OpQuest:
		min, max = 0, 1
	}
	lazy := re.Flags&syntax.NonGreedy != 0
	sub := re.Sub[0]

	// Lower a single char/class body to the tighter char-level opcode
	// family; anything else uses the generic composite quantifier.
	switch sub.Op {
	case syntax.OpLiteral:
		if len(sub.Rune) == 1 {
			return charLoop(sub.Rune[0], nil, min, max, ci || sub.Flags&syntax.FoldCase != 0, rtl, lazy), nil
		}
	case syntax.OpCharClass:
		cls := classFromRanges(sub.Rune)
		return charLoop(0, cls, min, max, ci || sub.Flags&syntax.FoldCase != 0, rtl, lazy), nil
	case syntax.OpAnyCharNotNL:
		cls := charclass.NewBuilder().AddRange(0, '\n'-1).AddRange('\n'+1, 0x10FFFF).Build()
		return charLoop(0, cls, min, max, ci, rtl, lazy), nil
	case syntax.OpAnyChar:
		cls := charclass.NewBuilder().AddRange(0, 0x10FFFF).Build()
		return charLoop(0, cls, min, max, ci, rtl, lazy), nil
	}

	body, err := fromSyntax(sub, ci, rtl, ecma)
	if err != nil {
		return nil, err
	}
	if lazy {
		return NewLazyloop(min, max, body), nil
	}
	return NewGreedy(min, max, body), nil
}

func charLoop(ch rune, cls *charclass.Class, min, max int, ci, rtl, lazy bool) *Node {
	if cls != nil {
		if lazy {
			return NewSetlazy(cls, min, max, ci, rtl)
		}
		return NewSetloop(cls, min, max, ci, rtl)
	}
	if lazy {
		return NewOnelazy(ch, min, max, ci, rtl)
	}
	return NewOneloop(ch, min, max, ci, rtl)
}

// classFromRanges builds a Class from regexp/syntax's flat inclusive
// [lo0,hi0, lo1,hi1, ...] rune-pair representation.
func classFromRanges(runes []rune) *charclass.Class {
	b := charclass.NewBuilder()
	for i := 0; i+1 < len(runes); i += 2 {
		b.AddRange(runes[i], runes[i+1])
	}
	return b.Build()
}
