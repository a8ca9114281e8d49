package analytics

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/badgeworks/variantbadges/pkg/types"
)

func TestFoldBadgeCounts(t *testing.T) {
	counts := []badgeEventCount{
		{BadgeType: types.BadgeTypeHot, EventType: types.AnalyticsEventView, Value: 10},
		{BadgeType: types.BadgeTypeHot, EventType: types.AnalyticsEventClick, Value: 4},
		{BadgeType: types.BadgeTypeHot, EventType: types.AnalyticsEventAddToCart, Value: 1},
		{BadgeType: types.BadgeTypeSale, EventType: types.AnalyticsEventView, Value: 7},
	}

	out := foldBadgeCounts(counts)
	require.Len(t, out, 2)

	require.Equal(t, types.BadgeTypeHot, out[0].BadgeType)
	require.Equal(t, int64(10), out[0].Views)
	require.Equal(t, int64(4), out[0].Clicks)
	require.Equal(t, int64(1), out[0].AddToCart)

	require.Equal(t, types.BadgeTypeSale, out[1].BadgeType)
	require.Equal(t, int64(7), out[1].Views)
	require.Zero(t, out[1].Clicks)
}

func TestFoldBadgeCounts_Empty(t *testing.T) {
	require.Empty(t, foldBadgeCounts(nil))
}

func TestValidAnalyticsEventType(t *testing.T) {
	require.True(t, types.ValidAnalyticsEventType(types.AnalyticsEventView))
	require.True(t, types.ValidAnalyticsEventType(types.AnalyticsEventClick))
	require.True(t, types.ValidAnalyticsEventType(types.AnalyticsEventAddToCart))
	require.False(t, types.ValidAnalyticsEventType("purchase"))
}
