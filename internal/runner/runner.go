// Package runner implements the Runner: the backtracking virtual
// machine that executes a bytecode.Program against input text
// (SPEC_FULL.md §4.4, §4.5, §4.6).
package runner

import (
	"errors"
	"time"
	"unicode"

	"github.com/coregx/btre/internal/boyermoore"
	"github.com/coregx/btre/internal/bytecode"
	"github.com/coregx/btre/internal/charclass"
)

// ErrTimeout is returned when a search exceeds its deadline.
var ErrTimeout = errors.New("btre: match timed out")

// timeoutCheckInterval bounds how often run() samples the wall clock;
// checking every instruction would dominate the cost of small patterns.
const timeoutCheckInterval = 2000

// jumpFrame is the snapshot Setjump records. markLen/countLen let
// Forejump/Backjump reclaim mark/count slots belonging to cleanup
// frames discarded by the same trackLen truncation (SPEC_FULL.md §4.2).
type jumpFrame struct{ trackLen, crawlLen, markLen, countLen int }

type crawlEntry struct {
	kind       crawlKind
	slot       int
	oldStart   int
	oldEnd     int
	oldMatched bool
}

// Runner holds all mutable state for one search attempt: the input
// text, the track/stack/crawl machinery, and capture bookkeeping.
// A Runner is reused across successive start positions within a single
// Search call, but is not safe for concurrent use (SPEC_FULL.md §5:
// a Program is safely shared across goroutines, a Runner is not).
type Runner struct {
	prog  *bytecode.Program
	input []rune

	textBeg, textEnd int
	textPos          int
	// searchStart is the position the current attempt's Search call was
	// asked to begin at — distinct from textBeg, which for a left-to-right
	// search is the absolute start of the text (a right-to-left search
	// sets it to the caller's start bound). The Start opcode ("\G") anchors to this,
	// Beginning ("\A") to textBeg (spec.md §4.2).
	searchStart int

	markStack []int32
	// markCrawl[i] is the crawl length recorded when the iteration that
	// currently owns markStack[i]/countStack[i] began. A composite
	// loop's tail instruction (Branchmark/Branchcount) reads and
	// advances it each time it starts a new iteration, so the
	// per-iteration undo frame it pushes can roll capture writes back
	// to exactly that point (SPEC_FULL.md §4.2).
	markCrawl  []int32
	countStack []int32
	jumpStack  []jumpFrame
	track      []int32
	crawl      []crawlEntry

	capStart   []int
	capEnd     []int
	capMatched []bool
	capAll     [][]Span

	prefix     *boyermoore.Searcher
	classCache map[int]*charclass.Class

	deadline    time.Time
	hasDeadline bool
	steps       int
}

// New builds a Runner bound to prog and input. beg/end delimit the
// portion of input the search may read or write positions into.
func New(prog *bytecode.Program, input []rune, beg, end int) *Runner {
	r := &Runner{
		prog:       prog,
		input:      input,
		textBeg:    beg,
		textEnd:    end,
		classCache: make(map[int]*charclass.Class),
	}
	if prog.Prefix != nil && len(prog.Prefix.Literal) > 0 {
		if s, err := boyermoore.New(prog.Prefix.Literal, prog.Prefix.CaseFold, prog.Prefix.RightToLeft); err == nil {
			r.prefix = s
		}
	}
	return r
}

func (r *Runner) resetCaptures() {
	n := r.prog.CaptureCount
	if n < 1 {
		n = 1
	}
	r.capStart = make([]int, n)
	r.capEnd = make([]int, n)
	r.capMatched = make([]bool, n)
	r.capAll = make([][]Span, n)
	r.markStack = r.markStack[:0]
	r.markCrawl = r.markCrawl[:0]
	r.countStack = r.countStack[:0]
	r.jumpStack = r.jumpStack[:0]
	r.track = r.track[:0]
	r.crawl = r.crawl[:0]
}

// Search tries successive start positions beginning at start (advancing
// in the direction the program's RightToLeft flag implies) until a
// match succeeds or no further start position remains, per spec.md
// §4.4's FindFirstChar-accelerated outer loop. It is the replacement,
// described on Writer, for an in-bytecode retry wrapper.
func (r *Runner) Search(start int, timeout time.Duration) (*Match, error) {
	if timeout > 0 {
		r.deadline = time.Now().Add(timeout)
		r.hasDeadline = true
	} else {
		r.hasDeadline = false
	}
	r.steps = 0
	r.searchStart = start

	pos := start
	for {
		next, ok := r.findFirstChar(pos)
		if !ok {
			return nil, nil
		}
		pos = next

		r.resetCaptures()
		r.textPos = pos
		matched, err := r.run()
		if err != nil {
			return nil, err
		}
		if matched {
			return r.buildMatch(pos), nil
		}

		if r.prog.RightToLeft {
			if pos <= r.textBeg {
				return nil, nil
			}
			pos--
		} else {
			if pos >= r.textEnd {
				return nil, nil
			}
			pos++
		}
	}
}

// findFirstChar locates the next candidate start position at or after
// (or, right-to-left, at or before) pos where a match could possibly
// begin, using whichever acceleration the Program carries.
func (r *Runner) findFirstChar(pos int) (int, bool) {
	p := r.prog
	// A \A-anchored, left-to-right pattern can only ever start at the
	// absolute text start: once the outer loop has moved past it there
	// is no further position worth trying, so every subsequent attempt
	// can be rejected for free instead of entering the VM. The
	// right-to-left case is left alone: the tree's node order is
	// reversed for RTL (tree.FromSyntaxOpts), so AnchorBeginning there
	// does not translate to a simple clamp on the RTL start position.
	if !p.RightToLeft && p.Anchors&bytecode.AnchorBeginning != 0 {
		if pos > r.textBeg {
			return 0, false
		}
		return r.textBeg, true
	}
	if r.prefix != nil {
		idx := r.prefix.Scan(r.input, r.textBeg, r.textEnd, pos)
		if idx < 0 {
			return 0, false
		}
		if p.RightToLeft {
			// Scan always returns the literal's leftmost index; a
			// right-to-left program consumes the literal backward
			// starting from textPos, so the attempt must begin at the
			// literal's right edge, not its left one.
			return idx + len(p.Prefix.Literal), true
		}
		return idx, true
	}
	if p.FirstChars != nil {
		return r.scanFirstChars(p.FirstChars, pos)
	}
	if p.RightToLeft {
		if pos < r.textBeg {
			return 0, false
		}
	} else if pos > r.textEnd {
		return 0, false
	}
	return pos, true
}

func (r *Runner) scanFirstChars(cls *charclass.Class, pos int) (int, bool) {
	if !r.prog.RightToLeft {
		for i := pos; i < r.textEnd; i++ {
			if cls.Contains(r.input[i]) {
				return i, true
			}
		}
		return 0, false
	}
	for i := pos; i > r.textBeg; i-- {
		if cls.Contains(r.input[i-1]) {
			return i, true
		}
	}
	return 0, false
}

func (r *Runner) checkTimeout() error {
	r.steps++
	if !r.hasDeadline || r.steps%timeoutCheckInterval != 0 {
		return nil
	}
	if time.Now().After(r.deadline) {
		return ErrTimeout
	}
	return nil
}

// run executes the program once from codepos 0 at the Runner's current
// textPos, backtracking internally until it either reaches Stop
// (success) or exhausts the track stack (failure).
func (r *Runner) run() (bool, error) {
	pc := 0
	for {
		if err := r.checkTimeout(); err != nil {
			return false, err
		}
		ok, next := r.step(pc)
		if ok {
			if next < 0 {
				return true, nil // Stop reached
			}
			pc = next
			continue
		}
		newpc, ok2 := r.backtrack()
		if !ok2 {
			return false, nil
		}
		pc = newpc
	}
}

func (r *Runner) charAt(pos int, rtl bool) (rune, int, bool) {
	if rtl {
		if pos <= r.textBeg {
			return 0, pos, false
		}
		return r.input[pos-1], pos - 1, true
	}
	if pos >= r.textEnd {
		return 0, pos, false
	}
	return r.input[pos], pos + 1, true
}

func foldEq(ci bool, a, b rune) bool {
	if a == b {
		return true
	}
	if !ci {
		return false
	}
	return unicode.ToLower(a) == unicode.ToLower(b)
}
