package btre

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustSpan(t *testing.T, m *Match, slot int) (int, int) {
	t.Helper()
	start, length, ok := m.GroupSpan(slot)
	require.True(t, ok, "slot %d did not match", slot)
	return start, length
}

func TestFindBasicCapture(t *testing.T) {
	re := MustCompile(`(a+)b`, Options{})
	m, err := re.Find("xxaaabyy", 0, -1, 0)
	require.NoError(t, err)
	assert.Equal(t, "aaab", m.String())
	start, length := mustSpan(t, m, 1)
	assert.Equal(t, "aaa", string([]rune("xxaaabyy")[start:start+length]))
}

func TestFindNamedGroupUnderECMAScript(t *testing.T) {
	re := MustCompile(`^(?P<num>\d+)$`, Options{ECMAScript: true})
	m, err := re.Find("12345", 0, -1, 0)
	require.NoError(t, err)
	assert.Equal(t, "12345", m.String())
	start, length := mustSpan(t, m, 1)
	assert.Equal(t, "12345", string([]rune("12345")[start:start+length]))
}

func TestFindLazyQuantifier(t *testing.T) {
	re := MustCompile(`a.*?b`, Options{})
	m, err := re.Find("axxbxxb", 0, -1, 0)
	require.NoError(t, err)
	assert.Equal(t, "axxb", m.String())
}

// Lookaround and backreferences have no RE2 surface syntax, so Compile
// (built on regexp/syntax) can never produce or accept them — see
// tree.FromSyntax's doc comment. Those scenarios are exercised directly
// against the tree/Writer/Runner stack in internal/runner's tests instead.

func TestFindEmptyMatchOnEmptyInput(t *testing.T) {
	re := MustCompile(`a*`, Options{})
	m, err := re.Find("", 0, -1, 0)
	require.NoError(t, err)
	assert.Equal(t, "", m.String())
}

func TestNextMatchMakesProgressOnEmptyMatches(t *testing.T) {
	re := MustCompile(`a*`, Options{})
	text := "baaab"
	m, err := re.Find(text, 0, -1, 0)
	require.NoError(t, err)

	seen := 0
	for m != nil {
		seen++
		require.Less(t, seen, 20, "NextMatch looped without making progress")
		m, err = m.NextMatch(re, text, 0)
		if err == ErrNoMatch {
			break
		}
		require.NoError(t, err)
	}
	assert.Greater(t, seen, 0)
}

func TestFindCompositeGroupQuantifierBacksOff(t *testing.T) {
	// (ab)* lowers to the generic composite-loop path (tree/syntax.go's
	// fromSyntaxRepeat falls through to it for anything but a single
	// literal/class/any-char body); matching "abab" requires reducing the
	// loop from 2 reps to 1 so the trailing "ab" literal can still match.
	re := MustCompile(`(ab)*ab`, Options{})
	m, err := re.Find("abab", 0, -1, 0)
	require.NoError(t, err)
	assert.Equal(t, "abab", m.String())
}

func TestFindNoMatchReturnsErrNoMatch(t *testing.T) {
	re := MustCompile(`zzz`, Options{})
	_, err := re.Find("abc", 0, -1, 0)
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestFindBeginningAnchorRespectsTextStartNotSearchStart(t *testing.T) {
	// \A must fail when the search window starts mid-string: the anchor
	// describes the text, not the caller's start offset.
	re := MustCompile(`\Aabc`, Options{})
	_, err := re.Find("xxabc", 2, -1, 0)
	assert.ErrorIs(t, err, ErrNoMatch)
}

func TestFindRightToLeftCapturesNonNegativeSpan(t *testing.T) {
	// RightToLeft consumes backward, so a naive (entryPos, textPos) span
	// would come out with textPos < entryPos; both the whole match and
	// the captured group must still report a valid (Start, Length) pair.
	re := MustCompile(`(a+)b`, Options{RightToLeft: true})
	m, err := re.Find("xxaaabyy", 0, -1, 0)
	require.NoError(t, err)
	assert.Equal(t, "aaab", m.String())
	start, length := mustSpan(t, m, 1)
	assert.GreaterOrEqual(t, length, 0)
	assert.Equal(t, "aaa", string([]rune("xxaaabyy")[start:start+length]))
}

func TestFindRightToLeftOnEmptyInput(t *testing.T) {
	re := MustCompile(`a*`, Options{RightToLeft: true})
	m, err := re.Find("", 0, -1, 0)
	require.NoError(t, err)
	assert.Equal(t, "", m.String())
}

func TestFindNestedStarTerminates(t *testing.T) {
	re := MustCompile(`(a*)*`, Options{})
	m, err := re.Find("aaa", 0, -1, 0)
	require.NoError(t, err)
	assert.Equal(t, "aaa", m.String())
}

func TestCompileRejectsInvalidPattern(t *testing.T) {
	_, err := Compile(`a(`, Options{})
	require.Error(t, err)
	var perr *ParseError
	assert.ErrorAs(t, err, &perr)
}

func TestMustCompilePanicsOnInvalidPattern(t *testing.T) {
	assert.Panics(t, func() {
		MustCompile(`a(`, Options{})
	})
}

func TestIgnorePatternWhitespaceStripsCommentsAndSpace(t *testing.T) {
	re := MustCompile(`
		\d+   # the order number
		-
		\d+   # the line number
	`, Options{IgnorePatternWhitespace: true})
	m, err := re.Find("42-7", 0, -1, 0)
	require.NoError(t, err)
	assert.Equal(t, "42-7", m.String())
}

func TestIgnoreCaseOption(t *testing.T) {
	re := MustCompile(`hello`, Options{IgnoreCase: true})
	m, err := re.Find("say HELLO now", 0, -1, 0)
	require.NoError(t, err)
	assert.Equal(t, "HELLO", m.String())
}
