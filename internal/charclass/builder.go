package charclass

import "unicode"

// Builder accumulates character-set members before being frozen into an
// immutable Class by Build. It is the construction-time counterpart used
// by the (external) parser/tree layer; Class itself never mutates once
// built.
type Builder struct {
	negate     bool
	ranges     []rune // flat lo,hiExclusive pairs, not yet canonical
	categories []int32
	sub        *Class
	canonical  bool // true once ranges is known sorted/merged
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{canonical: true}
}

// AddChar adds a single scalar to the set.
func (b *Builder) AddChar(ch rune) *Builder {
	return b.AddRange(ch, ch)
}

// AddRange adds the inclusive scalar range [lo, hi] to the set.
func (b *Builder) AddRange(lo, hi rune) *Builder {
	if hi < lo {
		lo, hi = hi, lo
	}
	b.ranges = append(b.ranges, lo, hi+1)
	b.canonical = false
	return b
}

// AddCategory adds every scalar in the named Unicode general category
// (e.g. "Lu", "Nd") to the set. negate excludes the category instead.
func (b *Builder) AddCategory(name string, negate bool) *Builder {
	for i, n := range categoryNames {
		if n == name {
			code := int32(i + 1)
			if negate {
				code = -code
			}
			b.categories = append(b.categories, code)
			return b
		}
	}
	return b
}

// AddSpace adds (or, if negate, excludes) the Unicode whitespace shortcut.
func (b *Builder) AddSpace(negate bool) *Builder {
	code := int32(spaceCategory)
	if negate {
		code = -code
	}
	b.categories = append(b.categories, code)
	return b
}

// AddDigit adds the digit shortcut. ecma restricts it to ASCII 0-9 (the
// ECMAScript-compatibility interpretation from SPEC_FULL.md §6); otherwise
// the Unicode Nd category is used.
func (b *Builder) AddDigit(ecma bool) *Builder {
	if ecma {
		return b.AddRange('0', '9')
	}
	return b.AddCategory("Nd", false)
}

// AddWord adds the word-character shortcut (\w). ecma restricts it to
// ASCII letters, digits and underscore.
func (b *Builder) AddWord(ecma bool) *Builder {
	if ecma {
		b.AddRange('a', 'z')
		b.AddRange('A', 'Z')
		b.AddRange('0', '9')
		b.AddChar('_')
		return b
	}
	b.AddCategory("Lu", false)
	b.AddCategory("Ll", false)
	b.AddCategory("Lt", false)
	b.AddCategory("Lm", false)
	b.AddCategory("Lo", false)
	b.AddCategory("Nd", false)
	b.AddChar('_')
	return b
}

// AddCharClass unions the ranges and categories of other into b. other
// must not itself be negated or carry a subtraction; those cases have no
// well-defined union short of a full rewrite, and the parser never needs
// to union two independently-negated primitives in practice (shorthand
// classes like \d, \s, \w are always added in their positive form).
func (b *Builder) AddCharClass(other *Class) *Builder {
	if other == nil || other.negate || other.sub != nil {
		return b
	}
	b.ranges = append(b.ranges, other.ranges...)
	b.categories = append(b.categories, other.categories...)
	b.canonical = false
	return b
}

// Negate sets (or clears) the outer negate flag.
func (b *Builder) Negate(v bool) *Builder {
	b.negate = v
	return b
}

// Subtract records sub as the subtrahend: characters in sub are removed
// from the final set, regardless of the outer negate flag (SPEC_FULL.md
// §3: "the outer negate flag applies to the outer set only").
func (b *Builder) Subtract(sub *Class) *Builder {
	b.sub = sub
	return b
}

// AddLowercase adds, for every scalar currently in the set, that scalar's
// lowercase image, using unicode.ToLower whatever cultureInvariant says:
// the parameter has no effect, since this engine carries no
// locale-specific casing tables beyond what unicode provides (see
// SPEC_FULL.md's domain-stack note).
//
// This walks every scalar in the accumulated ranges and is intended for
// build-time use only, never on the Runner's hot path.
func (b *Builder) AddLowercase(cultureInvariant bool) *Builder {
	_ = cultureInvariant // single invariant table in this implementation
	if !b.canonical {
		b.ranges = canonicalRanges(b.ranges)
		b.canonical = true
	}
	var additions []rune
	for i := 0; i+1 < len(b.ranges); i += 2 {
		lo, hiExcl := b.ranges[i], b.ranges[i+1]
		for ch := lo; ch < hiExcl; ch++ {
			lower := unicode.ToLower(ch)
			if lower != ch {
				additions = append(additions, lower, lower+1)
			}
		}
	}
	b.ranges = append(b.ranges, additions...)
	b.canonical = false
	return b
}

// Build freezes the builder into an immutable, canonicalized Class.
func (b *Builder) Build() *Class {
	return Canonicalize(b.negate, b.ranges, b.categories, b.sub)
}
