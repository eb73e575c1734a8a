// Package charclass implements the character-class membership predicate
// described in SPEC_FULL.md §4.1: a set of Unicode scalars encoded as a
// self-delimited blob, answering Contains(ch) in time logarithmic in the
// number of ranges plus linear in the number of categories and any
// recursively subtracted layer.
//
// There is no general-category table or case-fold table in the retrieved
// pack outside what the standard library already provides, so category
// membership and lowercasing both defer to the unicode package
// (see SPEC_FULL.md's domain-stack note) rather than a hand-rolled table.
package charclass

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// categoryNames enumerates the Unicode general categories this engine can
// test for membership, in the fixed order their index is encoded at.
// Index i in a Class's category list (biased by one, see Contains) refers
// to categoryNames[i].
var categoryNames = []string{
	"Lu", "Ll", "Lt", "Lm", "Lo",
	"Mn", "Mc", "Me",
	"Nd", "Nl", "No",
	"Pc", "Pd", "Ps", "Pe", "Pi", "Pf", "Po",
	"Sm", "Sc", "Sk", "So",
	"Zs", "Zl", "Zp",
	"Cc", "Cf", "Co", "Cs",
}

// spaceCategory is the sentinel category code for "any whitespace", per
// SPEC_FULL.md §3 ("+100/-100 meaning any/none of whitespace").
const spaceCategory = 100

// categoryBias shifts a category code (range roughly [-100,100], see
// spaceCategory and matchOneCategoryCode) into a range WriteRune can
// never mangle before Encode writes it. strings.Builder.WriteRune
// silently substitutes U+FFFD for a negative or otherwise invalid rune
// instead of erroring, so a negated code (AddCategory(name, true),
// AddSpace(true)) would be corrupted by the Decode round trip without
// this bias; decodeOne reverses it.
const categoryBias = 1000

// Class is an immutable set of Unicode scalars. The zero value is the
// empty set.
type Class struct {
	negate     bool
	ranges     []rune // sorted, non-overlapping, abutting ranges merged: c0,c1,c2,c3,...
	categories []int32
	sub        *Class // subtrahend: characters here are removed from the outer set
}

// Contains reports whether ch belongs to the set c describes.
func (c *Class) Contains(ch rune) bool {
	if c == nil {
		return false
	}
	in := c.rangesContain(ch) || c.categoriesContain(ch)
	if c.negate {
		in = !in
	}
	if in && c.sub != nil && c.sub.Contains(ch) {
		return false
	}
	return in
}

// rangesContain implements the parity rule from SPEC_FULL.md §3: ch is in
// the set iff the index of the first element greater than ch is odd.
func (c *Class) rangesContain(ch rune) bool {
	if len(c.ranges) == 0 {
		return false
	}
	idx := sort.Search(len(c.ranges), func(i int) bool { return c.ranges[i] > ch })
	return idx%2 == 1
}

func (c *Class) categoriesContain(ch rune) bool {
	if len(c.categories) == 0 {
		return false
	}
	return matchCategoryList(c.categories, ch)
}

// matchCategoryList walks a category-code list interpreting each scalar
// per SPEC_FULL.md §3: positive k includes category k-1, negative -k
// excludes it, ±100 is the whitespace shortcut, and 0 opens an OR-joined
// subgroup closed by the next 0.
func matchCategoryList(codes []int32, ch rune) bool {
	i := 0
	for i < len(codes) {
		code := codes[i]
		if code == 0 {
			// Sub-group: OR together every member until the closing 0.
			j := i + 1
			groupMatch := false
			for j < len(codes) && codes[j] != 0 {
				if matchOneCategoryCode(codes[j], ch) {
					groupMatch = true
				}
				j++
			}
			if groupMatch {
				return true
			}
			i = j + 1
			continue
		}
		if matchOneCategoryCode(code, ch) {
			return true
		}
		i++
	}
	return false
}

func matchOneCategoryCode(code int32, ch rune) bool {
	switch {
	case code == spaceCategory:
		return unicode.IsSpace(ch)
	case code == -spaceCategory:
		return !unicode.IsSpace(ch)
	case code > 0:
		return isCategory(int(code-1), ch)
	case code < 0:
		return !isCategory(int(-code-1), ch)
	}
	return false
}

func isCategory(idx int, ch rune) bool {
	if idx < 0 || idx >= len(categoryNames) {
		return false
	}
	tbl, ok := unicode.Categories[categoryNames[idx]]
	if !ok {
		return false
	}
	return unicode.Is(tbl, ch)
}

// Negated reports whether the outer set carries the negate flag, for any
// set. The identity Contains(negate(c), ch) == !Contains(c, ch) holds
// only for sets with no subtrahend (SPEC_FULL.md §8).
func (c *Class) Negated() bool { return c.negate }

// HasSubtraction reports whether c carries a subtracted class.
func (c *Class) HasSubtraction() bool { return c.sub != nil }

// Encode serialises c into the self-delimited blob layout from
// SPEC_FULL.md §3, suitable for storing in a Program's string pool
// alongside literal runs.
func (c *Class) Encode() string {
	var b strings.Builder
	encodeInto(&b, c)
	return b.String()
}

func encodeInto(b *strings.Builder, c *Class) {
	if c.negate {
		b.WriteRune(1)
	} else {
		b.WriteRune(0)
	}
	b.WriteRune(rune(len(c.ranges)))
	b.WriteRune(rune(len(c.categories)))
	for _, r := range c.ranges {
		b.WriteRune(r)
	}
	for _, cat := range c.categories {
		b.WriteRune(rune(cat) + categoryBias)
	}
	if c.sub != nil {
		encodeInto(b, c.sub)
	}
}

// Decode parses a blob produced by Encode back into a Class.
func Decode(blob string) (*Class, error) {
	c, rest, err := decodeOne([]rune(blob))
	if err != nil {
		return nil, err
	}
	if len(rest) > 0 {
		c.sub, err = Decode(string(rest))
		if err != nil {
			return nil, err
		}
	}
	return c, nil
}

func decodeOne(rs []rune) (*Class, []rune, error) {
	if len(rs) < 3 {
		return nil, nil, fmt.Errorf("charclass: truncated blob header")
	}
	c := &Class{negate: rs[0] != 0}
	rangeLen := int(rs[1])
	catLen := int(rs[2])
	rs = rs[3:]
	if len(rs) < rangeLen+catLen {
		return nil, nil, fmt.Errorf("charclass: truncated blob body")
	}
	c.ranges = append(c.ranges, rs[:rangeLen]...)
	rs = rs[rangeLen:]
	for _, v := range rs[:catLen] {
		c.categories = append(c.categories, int32(v)-categoryBias)
	}
	rs = rs[catLen:]
	return c, rs, nil
}

// Canonicalize returns an equivalent Class whose range list is sorted,
// non-overlapping, and abutting-merged. Canonicalize is idempotent.
func Canonicalize(negate bool, ranges []rune, categories []int32, sub *Class) *Class {
	merged := canonicalRanges(ranges)
	var catsCopy []int32
	if len(categories) > 0 {
		catsCopy = append([]int32(nil), categories...)
	}
	return &Class{negate: negate, ranges: merged, categories: catsCopy, sub: sub}
}

// canonicalRanges sorts the [lo,hi) pairs encoded as a flat c0,c1,c2,c3,...
// list by start and merges overlapping or abutting pairs.
func canonicalRanges(ranges []rune) []rune {
	if len(ranges) == 0 {
		return nil
	}
	type pair struct{ lo, hi rune }
	pairs := make([]pair, 0, len(ranges)/2)
	for i := 0; i+1 < len(ranges); i += 2 {
		pairs = append(pairs, pair{ranges[i], ranges[i+1]})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].lo < pairs[j].lo })

	out := make([]pair, 0, len(pairs))
	for _, p := range pairs {
		if len(out) > 0 && p.lo <= out[len(out)-1].hi {
			if p.hi > out[len(out)-1].hi {
				out[len(out)-1].hi = p.hi
			}
			continue
		}
		out = append(out, p)
	}

	flat := make([]rune, 0, len(out)*2)
	for _, p := range out {
		flat = append(flat, p.lo, p.hi)
	}
	return flat
}
