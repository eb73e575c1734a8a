package bytecode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coregx/btre/internal/charclass"
	"github.com/coregx/btre/tree"
)

func TestWriteEmitsStopAtEnd(t *testing.T) {
	p, err := NewWriter().Write(tree.NewOne('a', false, false), false)
	require.NoError(t, err)
	require.NotEmpty(t, p.Codes)
	last := len(p.Codes) - 1
	assert.Equal(t, Stop, Op(p.Codes[last]).Primary())
}

func TestWriteOneEncodesChar(t *testing.T) {
	p, err := NewWriter().Write(tree.NewOne('x', false, false), false)
	require.NoError(t, err)
	assert.Equal(t, One, Op(p.Codes[0]).Primary())
	assert.Equal(t, int32('x'), p.Codes[1])
}

func TestWriteSetInternsClassBlob(t *testing.T) {
	cls := charclass.NewBuilder().AddRange('a', 'z').Build()
	n := tree.NewConcatenate(tree.NewSet(cls, false, false), tree.NewSet(cls, false, false))
	p, err := NewWriter().Write(n, false)
	require.NoError(t, err)
	require.Len(t, p.Strings, 1, "identical class blobs should share one string-table slot")
}

func TestWriteCaptureAssignsDenseSlots(t *testing.T) {
	// (a)(b) with source capture numbers 1 and 2 already dense: no map needed.
	root := tree.NewConcatenate(
		tree.NewCapture(1, -1, tree.NewOne('a', false, false)),
		tree.NewCapture(2, -1, tree.NewOne('b', false, false)),
	)
	p, err := NewWriter().Write(root, false)
	require.NoError(t, err)
	assert.Equal(t, 3, p.CaptureCount) // slot 0 (whole match) + 2 groups
	assert.Nil(t, p.CaptureMap)
}

func TestWriteCaptureMapsSparseSlots(t *testing.T) {
	// Only capture number 5 appears in source order; it must still land on
	// a dense slot, recorded via CaptureMap since 5 != 1.
	root := tree.NewCapture(5, -1, tree.NewOne('a', false, false))
	p, err := NewWriter().Write(root, false)
	require.NoError(t, err)
	require.NotNil(t, p.CaptureMap)
	assert.Equal(t, 1, p.SlotFor(5))
}

func TestWriteMultiInternsLiteralRun(t *testing.T) {
	root := tree.NewMulti("hello", false, false)
	p, err := NewWriter().Write(root, false)
	require.NoError(t, err)
	assert.Equal(t, Multi, Op(p.Codes[0]).Primary())
	idx := p.Codes[1]
	assert.Equal(t, "hello", p.Strings[idx])
}

func TestWriteRightToLeftSetsProgramFlag(t *testing.T) {
	p, err := NewWriter().Write(tree.NewOne('a', false, true), true)
	require.NoError(t, err)
	assert.True(t, p.RightToLeft)
}

func TestWriteOneloopEncodesBounds(t *testing.T) {
	root := tree.NewOneloop('a', 0, 5, false, false)
	p, err := NewWriter().Write(root, false)
	require.NoError(t, err)
	assert.Equal(t, Oneloop, Op(p.Codes[0]).Primary())
	assert.Equal(t, int32('a'), p.Codes[1])
	assert.Equal(t, int32(5), p.Codes[2]) // remaining count above the zero minimum
}

func TestWriteOneloopUnrollsNonzeroMinimum(t *testing.T) {
	// Min > 0 unrolls as an atomic Onerep before the backtrackable loop.
	root := tree.NewOneloop('a', 2, 5, false, false)
	p, err := NewWriter().Write(root, false)
	require.NoError(t, err)
	assert.Equal(t, Onerep, Op(p.Codes[0]).Primary())
	assert.Equal(t, int32('a'), p.Codes[1])
	assert.Equal(t, int32(2), p.Codes[2])
	assert.Equal(t, Oneloop, Op(p.Codes[3]).Primary())
	assert.Equal(t, int32(3), p.Codes[5]) // remaining = max - min
}

func TestWriteUnboundedLoopUsesInfinite(t *testing.T) {
	root := tree.NewOneloop('a', 0, -1, false, false)
	p, err := NewWriter().Write(root, false)
	require.NoError(t, err)
	assert.Equal(t, int32(Infinite), p.Codes[2])
}
