package folding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// merge runs one reconciliation in its own transaction.
func merge(m *fakeModel, current []*Region, ranges ...Range) ([]*Region, reconcileResult) {
	var (
		next []*Region
		res  reconcileResult
	)
	m.ChangeDecorations(func(ed DecorationEditor) {
		next, res = reconcile(ed, current, normalizeRanges(ranges, m.LineCount()))
	})
	return next, res
}

func starts(t *testing.T, m *fakeModel, regions []*Region) []int {
	t.Helper()
	out := make([]int, 0, len(regions))
	for _, r := range regions {
		got, ok := r.ResolvedRange(m)
		require.True(t, ok)
		out = append(out, got.StartLine)
	}
	return out
}

func collapsedFlags(regions []*Region) []bool {
	out := make([]bool, len(regions))
	for i, r := range regions {
		out[i] = r.Collapsed()
	}
	return out
}

func setCollapsed(m *fakeModel, r *Region, c bool) {
	m.ChangeDecorations(func(ed DecorationEditor) { r.SetCollapsed(ed, c) })
}

func TestReconcileFromEmpty(t *testing.T) {
	m := linesModel(30)

	regions, res := merge(m, nil, rng(9, 12), rng(2, 4), rng(5, 7))

	assert.Equal(t, []int{2, 5, 9}, starts(t, m, regions))
	assert.Equal(t, []bool{false, false, false}, collapsedFlags(regions))
	assert.Equal(t, reconcileResult{created: 3}, res)
	assert.Len(t, m.decs, 6)
}

func TestReconcileIdempotent(t *testing.T) {
	m := linesModel(30)
	ranges := []Range{rng(2, 4), rng(5, 7), rng(9, 12)}

	first, _ := merge(m, nil, ranges...)
	setCollapsed(m, first[1], true)

	second, res := merge(m, first, ranges...)

	require.Len(t, second, len(first))
	for i := range first {
		assert.Same(t, first[i], second[i])
	}
	assert.Equal(t, []bool{false, true, false}, collapsedFlags(second))
	assert.Equal(t, reconcileResult{kept: 3}, res)
	assert.Len(t, m.decs, 6)
}

func TestReconcilePreservesCollapsedOnSameStart(t *testing.T) {
	m := linesModel(30)
	regions, _ := merge(m, nil, rng(4, 8))
	setCollapsed(m, regions[0], true)
	original := regions[0]

	regions, res := merge(m, regions, rng(4, 15))

	require.Len(t, regions, 1)
	assert.Same(t, original, regions[0])
	assert.True(t, regions[0].Collapsed())
	got, _ := regions[0].ResolvedRange(m)
	assert.Equal(t, rng(4, 15), got)
	assert.Equal(t, 1, res.kept)
}

func TestReconcileStartShiftForfeitsCollapsed(t *testing.T) {
	tests := []struct {
		name  string
		shift int
	}{
		{"one line earlier", -1},
		{"one line later", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := linesModel(30)
			regions, _ := merge(m, nil, rng(10, 14))
			setCollapsed(m, regions[0], true)
			old := regions[0]

			regions, res := merge(m, regions, rng(10+tt.shift, 14+tt.shift))

			require.Len(t, regions, 1)
			assert.NotSame(t, old, regions[0])
			assert.True(t, old.Disposed())
			assert.False(t, regions[0].Collapsed())
			assert.Equal(t, []int{10 + tt.shift}, starts(t, m, regions))
			assert.Equal(t, reconcileResult{created: 1, disposed: 1}, res)
			assert.Len(t, m.decs, 2)
		})
	}
}

func TestReconcileMergeExample(t *testing.T) {
	m := linesModel(30)
	regions, _ := merge(m, nil, rng(2, 3), rng(5, 7), rng(9, 12))
	setCollapsed(m, regions[1], true)
	at2, at5, at9 := regions[0], regions[1], regions[2]

	regions, res := merge(m, regions, rng(2, 4), rng(6, 8), rng(9, 12))

	assert.Equal(t, []int{2, 6, 9}, starts(t, m, regions))
	assert.Same(t, at2, regions[0])
	assert.Same(t, at9, regions[2])
	assert.True(t, at5.Disposed())
	assert.Equal(t, []bool{false, false, false}, collapsedFlags(regions))
	assert.Equal(t, reconcileResult{kept: 2, created: 1, disposed: 1}, res)
}

func TestReconcileDisposesInvalidAnchors(t *testing.T) {
	m := linesModel(30)
	regions, _ := merge(m, nil, rng(3, 5), rng(10, 12))
	dead := regions[0]

	m.deleteLines(2, 6)

	regions, res := merge(m, regions, rng(1, 3), rng(5, 7))

	assert.True(t, dead.Disposed())
	assert.Equal(t, []int{1, 5}, starts(t, m, regions))
	assert.Equal(t, 1, res.kept, "region at 10 moved to 5 with the edit")
	assert.Equal(t, 1, res.created)
	assert.Equal(t, 1, res.disposed)
}

func TestReconcileFollowsAnchorAcrossEdits(t *testing.T) {
	m := linesModel(30)
	regions, _ := merge(m, nil, rng(5, 9))
	setCollapsed(m, regions[0], true)

	// Lines inserted above shift the anchor; a provider that sees the same
	// shift matches it again.
	m.insertLines(1, 2)
	regions, res := merge(m, regions, rng(7, 11))

	require.Len(t, regions, 1)
	assert.True(t, regions[0].Collapsed())
	assert.Equal(t, 1, res.kept)
}

func TestReconcileEmptyRangesDisposesAll(t *testing.T) {
	m := linesModel(30)
	regions, _ := merge(m, nil, rng(1, 2), rng(4, 6))

	regions, res := merge(m, regions)

	assert.Empty(t, regions)
	assert.Equal(t, 2, res.disposed)
	assert.Empty(t, m.decs)
}

func TestReconcileTrailingCreatesAndDisposals(t *testing.T) {
	m := linesModel(30)
	regions, _ := merge(m, nil, rng(2, 4), rng(20, 25))

	regions, res := merge(m, regions, rng(2, 4), rng(8, 9), rng(12, 14))

	assert.Equal(t, []int{2, 8, 12}, starts(t, m, regions))
	assert.Equal(t, reconcileResult{kept: 1, created: 2, disposed: 1}, res)
}

func TestNormalizeRanges(t *testing.T) {
	got := normalizeRanges([]Range{
		rng(9, 10),
		rng(3, 3),  // single line
		rng(0, 4),  // before the first line
		rng(2, 99), // past the end
		rng(4, 8),
		rng(4, 6), // duplicate start, later
		rng(1, 2),
	}, 20)

	assert.Equal(t, []Range{rng(1, 2), rng(4, 8), rng(9, 10)}, got)
}
