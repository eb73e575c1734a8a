package runner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coregx/btre/internal/bytecode"
	"github.com/coregx/btre/internal/charclass"
	"github.com/coregx/btre/tree"
)

// Lookaround and backreferences have no RE2 surface syntax (see
// tree.FromSyntax's doc comment), so these two scenarios build their tree
// directly with the tree constructors rather than going through a parser.

func compileTree(t *testing.T, root *tree.Node, rtl bool) *bytecode.Program {
	t.Helper()
	p, err := bytecode.NewWriter().Write(root, rtl)
	require.NoError(t, err)
	return p
}

func wordClass() *charclass.Class {
	return charclass.NewBuilder().AddWord(false).Build()
}

func TestEndToEndLookaheadDoesNotAdvance(t *testing.T) {
	// (?=abc)\w+ on "abcdef" -> match [0,6], lookahead does not consume.
	root := tree.NewConcatenate(
		tree.NewRequire(false, tree.NewMulti("abc", false, false)),
		tree.NewSetloop(wordClass(), 1, -1, false, false),
	)
	prog := compileTree(t, root, false)
	text := []rune("abcdef")
	r := New(prog, text, 0, len(text))
	m, err := r.Search(0, 0)
	require.NoError(t, err)
	require.NotNil(t, m)
	start, length, ok := m.GroupSpan(0)
	require.True(t, ok)
	assert.Equal(t, 0, start)
	assert.Equal(t, 6, length)
}

func TestEndToEndLookaheadRejectsNonMatchingPrefix(t *testing.T) {
	root := tree.NewConcatenate(
		tree.NewRequire(false, tree.NewMulti("abc", false, false)),
		tree.NewSetloop(wordClass(), 1, -1, false, false),
	)
	prog := compileTree(t, root, false)
	text := []rune("xyzdef")
	r := New(prog, text, 0, len(text))
	m, err := r.Search(0, 0)
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestEndToEndBackreferenceRepeatsCapturedGroup(t *testing.T) {
	// (\w+)\s\1 on "hello hello" -> match [0,11], capture 1 at [0,5].
	root := tree.NewConcatenate(
		tree.NewCapture(1, -1, tree.NewSetloop(wordClass(), 1, -1, false, false)),
		tree.NewOne(' ', false, false),
		tree.NewRef(1, false, false),
	)
	prog := compileTree(t, root, false)
	text := []rune("hello hello")
	r := New(prog, text, 0, len(text))
	m, err := r.Search(0, 0)
	require.NoError(t, err)
	require.NotNil(t, m)

	start, length, ok := m.GroupSpan(0)
	require.True(t, ok)
	assert.Equal(t, 0, start)
	assert.Equal(t, 11, length)

	cstart, clength, ok := m.GroupSpan(1)
	require.True(t, ok)
	assert.Equal(t, 0, cstart)
	assert.Equal(t, 5, clength)
}

func TestEndToEndBackreferenceFailsOnMismatch(t *testing.T) {
	root := tree.NewConcatenate(
		tree.NewCapture(1, -1, tree.NewSetloop(wordClass(), 1, -1, false, false)),
		tree.NewOne(' ', false, false),
		tree.NewRef(1, false, false),
	)
	prog := compileTree(t, root, false)
	text := []rune("hello world")
	r := New(prog, text, 0, len(text))
	m, err := r.Search(0, 0)
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestEndToEndSimpleCaptureScenario(t *testing.T) {
	// (a+)b on "aaab" -> match [0,4]; capture 1 at [0,3].
	root := tree.NewConcatenate(
		tree.NewCapture(1, -1, tree.NewOneloop('a', 1, -1, false, false)),
		tree.NewOne('b', false, false),
	)
	prog := compileTree(t, root, false)
	text := []rune("aaab")
	r := New(prog, text, 0, len(text))
	m, err := r.Search(0, 0)
	require.NoError(t, err)
	require.NotNil(t, m)

	start, length, ok := m.GroupSpan(0)
	require.True(t, ok)
	assert.Equal(t, 0, start)
	assert.Equal(t, 4, length)

	cstart, clength, ok := m.GroupSpan(1)
	require.True(t, ok)
	assert.Equal(t, 0, cstart)
	assert.Equal(t, 3, clength)
}

func TestEndToEndCompositeGroupReductionRestoresTextPos(t *testing.T) {
	// (ab)*ab on "abab": the greedy group first consumes both reps, then
	// must back off by one rep (restoring textPos to where the 2nd rep
	// started) so the trailing literal "ab" can still match.
	root := tree.NewConcatenate(
		tree.NewGreedy(0, -1, tree.NewMulti("ab", false, false)),
		tree.NewMulti("ab", false, false),
	)
	prog := compileTree(t, root, false)
	text := []rune("abab")
	r := New(prog, text, 0, len(text))
	m, err := r.Search(0, 0)
	require.NoError(t, err)
	require.NotNil(t, m)
	start, length, ok := m.GroupSpan(0)
	require.True(t, ok)
	assert.Equal(t, 0, start)
	assert.Equal(t, 4, length)
}

func TestEndToEndRightToLeftCaptureSpanIsOrdered(t *testing.T) {
	// (a+)b scanned right-to-left on "xxaaabyy": the engine starts at the
	// tail of the capture group and consumes backward, so the raw
	// (markPos, textPos) pair it closes the capture with has textPos
	// smaller than markPos. Both the whole-match span and the group-1
	// span must still come out as a non-negative (Start, Length) pair.
	// tree.FromSyntaxOpts reverses an OpConcat's children for a
	// right-to-left tree (tree/syntax.go), so a manually-built RTL
	// concatenation must already be given in that reversed order: the
	// 'b' node first, then the capture, even though the pattern reads
	// "(a+)b" left to right.
	root := tree.NewConcatenate(
		tree.NewOne('b', false, true),
		tree.NewCapture(1, -1, tree.NewOneloop('a', 1, -1, false, true)),
	)
	prog := compileTree(t, root, true)
	text := []rune("xxaaabyy")
	r := New(prog, text, 0, len(text))
	m, err := r.Search(len(text), 0)
	require.NoError(t, err)
	require.NotNil(t, m)

	start, length, ok := m.GroupSpan(0)
	require.True(t, ok)
	assert.GreaterOrEqual(t, length, 0)
	assert.Equal(t, "aaab", string(text[start:start+length]))

	cstart, clength, ok := m.GroupSpan(1)
	require.True(t, ok)
	assert.GreaterOrEqual(t, clength, 0)
	assert.Equal(t, "aaa", string(text[cstart:cstart+clength]))
}

func TestEndToEndEmptyMatchOnEmptyInput(t *testing.T) {
	// a* on "" -> match [0,0].
	root := tree.NewOneloop('a', 0, -1, false, false)
	prog := compileTree(t, root, false)
	text := []rune("")
	r := New(prog, text, 0, len(text))
	m, err := r.Search(0, 0)
	require.NoError(t, err)
	require.NotNil(t, m)
	start, length, ok := m.GroupSpan(0)
	require.True(t, ok)
	assert.Equal(t, 0, start)
	assert.Equal(t, 0, length)
}

func TestEndToEndCaptureInUntakenBranchStaysUnmatched(t *testing.T) {
	// A capture that never runs (the alternate's second branch) must leave
	// its slot unmatched rather than reporting a stale span.
	root := tree.NewAlternate(
		tree.NewOne('x', false, false),
		tree.NewCapture(1, -1, tree.NewOne('y', false, false)),
	)
	prog := compileTree(t, root, false)
	text := []rune("x")
	r := New(prog, text, 0, len(text))
	m, err := r.Search(0, 0)
	require.NoError(t, err)
	require.NotNil(t, m)
	_, _, ok := m.GroupSpan(1)
	assert.False(t, ok, "capture in the untaken alternate branch must not report a match")
}
