package btre

import (
	"unicode"

	"github.com/coregx/btre/internal/bytecode"
	"github.com/coregx/btre/internal/charclass"
	"github.com/coregx/btre/tree"
)

// analyze walks root — the way the teacher's literal.Extractor walks a
// syntax.Regexp concatenation looking for a leading anchor — collecting
// whatever start-of-match acceleration hints the pattern offers: a literal
// run to hand BoyerMoore, failing that a leading character class to scan
// for, and the set of anchors the match is pinned to. Unlike the teacher's
// Extractor this module only ever needs one literal candidate (Program
// carries a single Prefix, not a multi-literal Seq) because there is one
// execution engine here rather than a prefilter feeding a choice of them.
func analyze(root *tree.Node, rtl bool) (*bytecode.Prefix, *charclass.Class, bytecode.AnchorMask) {
	first := firstNode(root)
	anchors := anchorMask(root, first)

	if lit, ci, ok := leadingLiteral(first); ok && len(lit) > 0 {
		return &bytecode.Prefix{Literal: lit, CaseFold: ci, RightToLeft: rtl}, nil, anchors
	}
	if cls := leadingClass(first); cls != nil {
		return nil, cls, anchors
	}
	return nil, nil, anchors
}

// firstNode descends into the leftmost element of a Concatenate/Capture/
// Group chain, the node that determines what the very first matched
// character can be.
func firstNode(n *tree.Node) *tree.Node {
	for n != nil {
		switch n.Kind {
		case tree.KindConcatenate:
			if len(n.Sub) == 0 {
				return nil
			}
			n = n.Sub[0]
		case tree.KindCapture, tree.KindGroup:
			n = n.Sub[0]
		default:
			return n
		}
	}
	return nil
}

// leadingLiteral extracts a literal run when the pattern's first node is a
// single character, a Multi, or a character loop with Min >= 1 (which
// yields Min copies of the character). It never looks past the first node: composing a run across
// concatenation siblings would need the same cross-product bookkeeping the
// teacher's Seq type carries, which is unjustified machinery for a single
// BoyerMoore anchor.
func leadingLiteral(n *tree.Node) ([]rune, bool, bool) {
	if n == nil {
		return nil, false, false
	}
	switch n.Kind {
	case tree.KindOne:
		return []rune{n.Ch}, n.Ci, true
	case tree.KindMulti:
		return []rune(n.Str), n.Ci, true
	case tree.KindOneloop, tree.KindOnelazy:
		if n.Min >= 1 {
			run := make([]rune, n.Min)
			for i := range run {
				run[i] = n.Ch
			}
			return run, n.Ci, true
		}
	}
	return nil, false, false
}

// leadingClass builds a FirstChars scan hint from a leading Set/Setloop
// node, or a single-character class for One/Oneloop under case folding
// (where a literal BoyerMoore match would have to fold every comparison
// anyway, so a class scan is just as cheap and simpler to construct).
func leadingClass(n *tree.Node) *charclass.Class {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case tree.KindSet:
		return n.Class
	case tree.KindSetloop, tree.KindSetlazy:
		if n.Min >= 1 {
			return n.Class
		}
	case tree.KindOne, tree.KindOneloop, tree.KindOnelazy:
		if n.Kind != tree.KindOne && n.Min < 1 {
			return nil
		}
		if !n.Ci {
			return nil
		}
		b := charclass.NewBuilder().AddChar(n.Ch)
		b.AddChar(unicode.ToUpper(n.Ch))
		b.AddChar(unicode.ToLower(n.Ch))
		return b.Build()
	}
	return nil
}

// anchorMask reports which of the four position anchors pin this pattern's
// match boundaries, scanning only the outermost nodes a Concatenate can
// start or end with (spec.md §3's AnchorMask is a hint, not an exhaustive
// analysis, so false negatives here only cost a skipped optimization).
func anchorMask(root, first *tree.Node) bytecode.AnchorMask {
	var mask bytecode.AnchorMask
	switch kindOf(first) {
	case tree.KindBeginning:
		mask |= bytecode.AnchorBeginning
	case tree.KindStart:
		mask |= bytecode.AnchorStart
	}
	switch kindOf(lastNode(root)) {
	case tree.KindEndZ:
		mask |= bytecode.AnchorEndZ
	case tree.KindEnd:
		mask |= bytecode.AnchorEnd
	}
	return mask
}

func kindOf(n *tree.Node) tree.Kind {
	if n == nil {
		return tree.KindEmpty
	}
	return n.Kind
}

func lastNode(n *tree.Node) *tree.Node {
	for n != nil {
		switch n.Kind {
		case tree.KindConcatenate:
			if len(n.Sub) == 0 {
				return nil
			}
			n = n.Sub[len(n.Sub)-1]
		case tree.KindCapture, tree.KindGroup:
			n = n.Sub[0]
		default:
			return n
		}
	}
	return nil
}
