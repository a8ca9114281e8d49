package badge

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/badgeworks/variantbadges/internal/models"
	"github.com/badgeworks/variantbadges/pkg/types"
)

func TestGroupRows_FoldsByProductAndValue(t *testing.T) {
	rows := []models.BadgeAssignment{
		{Shop: "a.myshopify.com", ProductID: 1, ProductTitle: "Hat", OptionValue: "Red", VariantID: 11, BadgeType: types.BadgeTypeHot},
		{Shop: "a.myshopify.com", ProductID: 1, ProductTitle: "Hat", OptionValue: "Red", VariantID: 12, BadgeType: types.BadgeTypeHot},
		{Shop: "a.myshopify.com", ProductID: 1, ProductTitle: "Hat", OptionValue: "Blue", VariantID: 13, BadgeType: types.BadgeTypeNew},
		{Shop: "a.myshopify.com", ProductID: 2, ProductTitle: "Mug", OptionValue: "Red", VariantID: 21, BadgeType: types.BadgeTypeSale},
	}

	entries := groupRows(rows)
	require.Len(t, entries, 3)

	require.Equal(t, int64(1), entries[0].ProductID)
	require.Equal(t, "Red", entries[0].OptionValue)
	require.Equal(t, []int64{11, 12}, entries[0].VariantIDs)
	require.Equal(t, types.SingleBadge(types.BadgeTypeHot), entries[0].Badge)

	require.Equal(t, "Blue", entries[1].OptionValue)
	require.Equal(t, types.SingleBadge(types.BadgeTypeNew), entries[1].Badge)

	require.Equal(t, int64(2), entries[2].ProductID)
	require.Equal(t, types.SingleBadge(types.BadgeTypeSale), entries[2].Badge)
}

func TestGroupRows_Empty(t *testing.T) {
	require.Empty(t, groupRows(nil))
}

func TestProductCacheKey(t *testing.T) {
	require.Equal(t, "badges:a.myshopify.com:42", productCacheKey("a.myshopify.com", 42))
}

func TestLimitError_Message(t *testing.T) {
	err := &LimitError{CurrentProducts: 5, MaxProducts: 5}
	require.EqualError(t, err, "product limit reached (5/5)")
}
