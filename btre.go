// Package btre is a backtracking regular expression engine built around an
// explicit bytecode interpreter, in the style of .NET's
// System.Text.RegularExpressions internals: a Writer lowers a syntax tree
// into a linear Program, and a Runner executes that Program against input
// text with a track/stack/crawl machine rather than recursive calls.
//
// Compile accepts the Perl-compatible syntax regexp/syntax parses; the
// parse tree is adapted into this module's own node shape by tree.FromSyntax
// before the Writer ever sees it.
//
//	re, err := btre.Compile(`(\w+)@(\w+)\.(\w+)`, btre.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	m, err := re.Find("user@example.com", 0, -1, 0)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	start, length, _ := m.GroupSpan(1) // "user"
package btre

import (
	"regexp/syntax"
	"time"

	"github.com/coregx/btre/internal/bytecode"
	"github.com/coregx/btre/internal/runner"
	"github.com/coregx/btre/tree"
)

// Options controls how a pattern is parsed and how its Program executes.
// Each field mirrors a regexp/syntax parse flag or a Runner behavior; the
// zero value is Perl-compatible, case-sensitive, left-to-right matching.
type Options struct {
	IgnoreCase              bool
	Multiline               bool
	Singleline              bool
	IgnorePatternWhitespace bool
	RightToLeft             bool
	ECMAScript              bool

	// CultureInvariant is accepted for surface compatibility but does not
	// change matching: regexp/syntax's FoldCase only offers Unicode simple
	// case folding (unicode.SimpleFold), with no notion of locale-sensitive
	// collation, and no library in the retrieved pack supplies one either.
	CultureInvariant bool
}

// parseFlags maps Options onto regexp/syntax's parse flags. syntax.Perl
// already carries OneLine (^/$ anchor only the whole text, matching this
// module's own default of non-multiline); Multiline clears that bit so
// anchors match at every line boundary instead, the same inversion
// regexp/syntax's own (?m) flag performs. IgnorePatternWhitespace has no
// regexp/syntax counterpart — (?x)-style comment/whitespace stripping is
// done on the pattern text itself, in Compile, before Parse ever sees it.
func (o Options) parseFlags() syntax.Flags {
	flags := syntax.Perl
	if o.IgnoreCase {
		flags |= syntax.FoldCase
	}
	if o.Multiline {
		flags &^= syntax.OneLine
	}
	if o.Singleline {
		flags |= syntax.DotNL
	}
	return flags
}

// Program is a compiled pattern: the immutable bytecode.Program plus the
// metadata Compile derived from the parse tree (anchors, prefix hint). A
// Program is safe for concurrent use by multiple goroutines; each Find call
// builds its own Runner.
type Program struct {
	prog    *bytecode.Program
	pattern string
	opts    Options
}

// Compile parses pattern (Perl-compatible syntax, as regexp/syntax accepts
// it) and lowers it into an executable Program.
func Compile(pattern string, opts Options) (*Program, error) {
	patternText := pattern
	if opts.IgnorePatternWhitespace {
		patternText = stripPatternWhitespace(pattern)
	}

	re, err := syntax.Parse(patternText, opts.parseFlags())
	if err != nil {
		return nil, asParseError(pattern, err)
	}
	re = re.Simplify()

	root, err := tree.FromSyntaxOpts(re, opts.RightToLeft, opts.ECMAScript)
	if err != nil {
		return nil, &InternalError{Op: "tree.FromSyntaxOpts", Detail: err.Error()}
	}

	w := bytecode.NewWriter()
	prog, err := w.Write(root, opts.RightToLeft)
	if err != nil {
		return nil, &InternalError{Op: "bytecode.Writer.Write", Detail: err.Error()}
	}

	prefix, firstChars, anchors := analyze(root, opts.RightToLeft)
	prog.Prefix = prefix
	prog.FirstChars = firstChars
	prog.Anchors = anchors

	return &Program{prog: prog, pattern: pattern, opts: opts}, nil
}

// MustCompile is Compile, panicking on error. Intended for patterns known
// valid at compile time, e.g. package-level var initializers.
func MustCompile(pattern string, opts Options) *Program {
	p, err := Compile(pattern, opts)
	if err != nil {
		panic("btre: Compile(" + pattern + "): " + err.Error())
	}
	return p
}

// String returns the source pattern Compile was given.
func (p *Program) String() string { return p.pattern }

// NumSubexp returns the number of capturing groups, including group 0 (the
// whole match).
func (p *Program) NumSubexp() int { return p.prog.CaptureCount }

// Find searches text[start:end] (end == -1 means len(text)) for the
// leftmost match (the rightmost one for a RightToLeft program). It returns (nil, ErrNoMatch) on an ordinary failed
// search, (nil, ErrTimeout) if timeout elapses first (timeout <= 0 means no
// limit), and (nil, *InternalError) only on a Runner invariant violation.
func (p *Program) Find(text string, start, end int, timeout time.Duration) (*Match, error) {
	return p.FindRunes([]rune(text), start, end, timeout)
}

// FindRunes is Find over a pre-decoded rune slice, letting a caller search
// the same text repeatedly without re-decoding UTF-8 each time.
func (p *Program) FindRunes(text []rune, start, end int, timeout time.Duration) (*Match, error) {
	if end < 0 || end > len(text) {
		end = len(text)
	}
	if start < 0 {
		start = 0
	}
	textBeg, textEnd := 0, end
	startPos := start
	if p.prog.RightToLeft {
		// Mirror image of the forward case: the absolute document edge
		// anchors (\A/\z-equivalents) sit at the side the search walks
		// away from, and the caller-adjustable bound restricts the side
		// it walks toward. Forward walks left-to-right away from 0
		// toward end; right-to-left walks right-to-left away from
		// len(text) toward start.
		textBeg, textEnd = start, len(text)
		startPos = end
	}
	r := runner.New(p.prog, text, textBeg, textEnd)
	m, err := r.Search(startPos, timeout)
	if err != nil {
		return nil, classifyRunErr(err)
	}
	if m == nil {
		return nil, ErrNoMatch
	}
	return &Match{m: m, text: text}, nil
}

func classifyRunErr(err error) error {
	if err == runner.ErrTimeout {
		return ErrTimeout
	}
	return &InternalError{Op: "runner.Runner.Search", Detail: err.Error()}
}

// stripPatternWhitespace implements Options.IgnorePatternWhitespace
// ((?x)-style free-spacing mode): unescaped whitespace outside a character
// class is dropped, and an unescaped '#' outside a class starts a comment
// running to the next newline. regexp/syntax has no such flag, so this
// runs over the pattern text before Parse ever sees it.
func stripPatternWhitespace(pattern string) string {
	runes := []rune(pattern)
	out := make([]rune, 0, len(runes))
	inClass := false
	for i := 0; i < len(runes); i++ {
		ch := runes[i]
		switch {
		case ch == '\\' && i+1 < len(runes):
			out = append(out, ch, runes[i+1])
			i++
		case ch == '[':
			inClass = true
			out = append(out, ch)
		case ch == ']':
			inClass = false
			out = append(out, ch)
		case !inClass && ch == '#':
			for i < len(runes) && runes[i] != '\n' {
				i++
			}
		case !inClass && (ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'):
			// dropped
		default:
			out = append(out, ch)
		}
	}
	return string(out)
}
