package tree

import (
	"regexp/syntax"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, pattern string, flags syntax.Flags) *syntax.Regexp {
	t.Helper()
	re, err := syntax.Parse(pattern, flags)
	require.NoError(t, err)
	return re.Simplify()
}

func TestFromSyntaxLiteral(t *testing.T) {
	re := parse(t, `abc`, syntax.Perl)
	n, err := FromSyntax(re)
	require.NoError(t, err)
	require.Equal(t, KindMulti, n.Kind)
	assert.Equal(t, "abc", n.Str)
}

func TestFromSyntaxSingleCharLiteral(t *testing.T) {
	re := parse(t, `a`, syntax.Perl)
	n, err := FromSyntax(re)
	require.NoError(t, err)
	require.Equal(t, KindOne, n.Kind)
	assert.Equal(t, 'a', n.Ch)
}

func TestFromSyntaxCharClass(t *testing.T) {
	re := parse(t, `[a-z]`, syntax.Perl)
	n, err := FromSyntax(re)
	require.NoError(t, err)
	require.Equal(t, KindSet, n.Kind)
	assert.True(t, n.Class.Contains('m'))
	assert.False(t, n.Class.Contains('5'))
}

func TestFromSyntaxCapture(t *testing.T) {
	re := parse(t, `(a)`, syntax.Perl)
	n, err := FromSyntax(re)
	require.NoError(t, err)
	require.Equal(t, KindCapture, n.Kind)
	assert.Equal(t, 1, n.CapNum)
	assert.Equal(t, -1, n.CapOther)
}

func TestFromSyntaxStarLowersToOneloop(t *testing.T) {
	re := parse(t, `a*`, syntax.Perl)
	n, err := FromSyntax(re)
	require.NoError(t, err)
	require.Equal(t, KindOneloop, n.Kind)
	assert.Equal(t, 0, n.Min)
	assert.Equal(t, -1, n.Max)
}

func TestFromSyntaxLazyStarLowersToOnelazy(t *testing.T) {
	re := parse(t, `a*?`, syntax.Perl)
	n, err := FromSyntax(re)
	require.NoError(t, err)
	assert.Equal(t, KindOnelazy, n.Kind)
}

func TestFromSyntaxGenericGroupQuantifier(t *testing.T) {
	re := parse(t, `(?:ab)+`, syntax.Perl)
	n, err := FromSyntax(re)
	require.NoError(t, err)
	assert.Equal(t, KindGreedy, n.Kind)
	assert.Equal(t, 1, n.Min)
}

func TestFromSyntaxRtlReversesConcatOrder(t *testing.T) {
	// "a\d": a literal 'a' followed by a digit class, distinct enough that
	// Simplify can't fold them into one literal run.
	re := parse(t, `a\d`, syntax.Perl)
	n, err := FromSyntaxRtl(re, true)
	require.NoError(t, err)
	require.Equal(t, KindConcatenate, n.Kind)
	require.Len(t, n.Sub, 2)
	assert.Equal(t, KindSet, n.Sub[0].Kind)
	assert.Equal(t, KindOne, n.Sub[1].Kind)
	assert.Equal(t, 'a', n.Sub[1].Ch)
	assert.True(t, n.Sub[0].Rtl)
	assert.True(t, n.Sub[1].Rtl)
}

func TestFromSyntaxEcmaBoundaryKind(t *testing.T) {
	re := parse(t, `\b`, syntax.Perl)
	n, err := FromSyntaxOpts(re, false, true)
	require.NoError(t, err)
	assert.Equal(t, KindECMABoundary, n.Kind)
}

func TestFromSyntaxDefaultBoundaryKind(t *testing.T) {
	re := parse(t, `\b`, syntax.Perl)
	n, err := FromSyntaxOpts(re, false, false)
	require.NoError(t, err)
	assert.Equal(t, KindBoundary, n.Kind)
}

func TestFromSyntaxAlternate(t *testing.T) {
	// Single-char alternatives like "a|b" get folded into a character class
	// by the parser itself; multi-char alternatives keep OpAlternate.
	re := parse(t, `ab|cd`, syntax.Perl)
	n, err := FromSyntax(re)
	require.NoError(t, err)
	require.Equal(t, KindAlternate, n.Kind)
	require.Len(t, n.Sub, 2)
}
