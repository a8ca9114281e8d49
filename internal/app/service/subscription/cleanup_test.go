package subscription

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitRetained_KeepsLowestProductIDs(t *testing.T) {
	retained, purged := splitRetained([]int64{3, 1, 8, 2, 7, 4, 6, 5}, 5)
	require.Equal(t, []int64{1, 2, 3, 4, 5}, retained)
	require.Equal(t, []int64{6, 7, 8}, purged)
}

func TestSplitRetained_WithinCap(t *testing.T) {
	retained, purged := splitRetained([]int64{9, 2}, 5)
	require.Equal(t, []int64{2, 9}, retained)
	require.Empty(t, purged)
}

func TestSplitRetained_ExactlyAtCap(t *testing.T) {
	retained, purged := splitRetained([]int64{5, 4, 3, 2, 1}, 5)
	require.Equal(t, []int64{1, 2, 3, 4, 5}, retained)
	require.Empty(t, purged)
}

func TestSplitRetained_Empty(t *testing.T) {
	retained, purged := splitRetained(nil, 5)
	require.Empty(t, retained)
	require.Empty(t, purged)
}

func TestSplitRetained_ZeroCap(t *testing.T) {
	retained, purged := splitRetained([]int64{2, 1}, 0)
	require.Empty(t, retained)
	require.Equal(t, []int64{1, 2}, purged)
}

func TestSplitRetained_DoesNotMutateInput(t *testing.T) {
	in := []int64{3, 1, 2}
	splitRetained(in, 1)
	require.Equal(t, []int64{3, 1, 2}, in)
}
