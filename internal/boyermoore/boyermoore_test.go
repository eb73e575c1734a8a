package boyermoore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runes(s string) []rune { return []rune(s) }

func TestScanForwardFindsMatch(t *testing.T) {
	s, err := New(runes("needle"), false, false)
	require.NoError(t, err)
	text := runes("haystack with a needle in it")
	idx := s.Scan(text, 0, len(text), 0)
	assert.Equal(t, 16, idx)
}

func TestScanForwardNoMatch(t *testing.T) {
	s, err := New(runes("xyz"), false, false)
	require.NoError(t, err)
	text := runes("haystack")
	assert.Equal(t, -1, s.Scan(text, 0, len(text), 0))
}

func TestScanForwardCombinedShiftDoesNotOvershootOnPartialSuffixMatch(t *testing.T) {
	// "needle" against "k a needle": the first candidate window's tail
	// char 'e' matches pattern[last], but the very next comparison back
	// ('n' vs 'l') mismatches after only the single tail char matched.
	// The combined bad-character/good-suffix shift must not overshoot
	// past the real occurrence starting at index 4.
	s, err := New(runes("needle"), false, false)
	require.NoError(t, err)
	text := runes("k a needle")
	idx := s.Scan(text, 0, len(text), 0)
	require.Equal(t, 4, idx)
}

func TestScanRespectsStartIndex(t *testing.T) {
	s, err := New(runes("ab"), false, false)
	require.NoError(t, err)
	text := runes("ab cd ab")
	assert.Equal(t, 0, s.Scan(text, 0, len(text), 0))
	assert.Equal(t, 6, s.Scan(text, 0, len(text), 1))
}

func TestScanBackward(t *testing.T) {
	s, err := New(runes("needle"), false, true)
	require.NoError(t, err)
	text := runes("needle here and needle there")
	idx := s.Scan(text, 0, len(text), len(text))
	require.GreaterOrEqual(t, idx, 0)
	assert.Equal(t, "needle", string(text[idx:idx+6]))
}

func TestScanBackwardFindsRightmostOccurrence(t *testing.T) {
	// Two occurrences of "needle"; scanning backward from the end must
	// land on the rightmost one (at index 16), not the leftmost.
	s, err := New(runes("needle"), false, true)
	require.NoError(t, err)
	text := runes("needle here and needle there")
	idx := s.Scan(text, 0, len(text), len(text))
	require.Equal(t, 16, idx)
}

func TestScanBackwardTakesBadCharacterShiftWithoutPanicking(t *testing.T) {
	// The mismatch at the scan origin ('x' before the trailing junk) is
	// absent from the pattern, forcing a full-length bad-character shift.
	// A shift applied in the wrong direction walks test past the slice
	// bounds instead of toward beg.
	s, err := New(runes("abc"), false, true)
	require.NoError(t, err)
	text := runes("xxxabcxxx")
	idx := s.Scan(text, 0, len(text), len(text))
	require.Equal(t, 3, idx)
	assert.Equal(t, "abc", string(text[idx:idx+3]))
}

func TestScanCaseInsensitiveFindsDifferentlyCasedMatch(t *testing.T) {
	s, err := New(runes("HELLO"), true, false)
	require.NoError(t, err)
	text := runes("say hello now")
	idx := s.Scan(text, 0, len(text), 0)
	require.GreaterOrEqual(t, idx, 0)
	assert.Equal(t, "hello", string(text[idx:idx+5]))
}

func TestScanCaseInsensitiveBadCharTableDoesNotOverskip(t *testing.T) {
	// The mismatched tail character ('x') shares a fold orbit with a
	// pattern character at a different case ('X'); a case-sensitive bad-
	// character lookup would treat it as wholly absent from the pattern
	// and risk shifting past the real match.
	s, err := New(runes("XYZ"), true, false)
	require.NoError(t, err)
	text := runes("__xyz__")
	idx := s.Scan(text, 0, len(text), 0)
	require.GreaterOrEqual(t, idx, 0)
	assert.Equal(t, "xyz", string(text[idx:idx+3]))
}

func TestNewRejectsEmptyPattern(t *testing.T) {
	_, err := New(nil, false, false)
	assert.Error(t, err)
}
