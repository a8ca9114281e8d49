package badge

import (
	"testing"

	goshopify "github.com/bold-commerce/go-shopify/v4"
	"github.com/stretchr/testify/require"

	"github.com/badgeworks/variantbadges/pkg/types"
)

func shirtProduct() ProductInfo {
	return ProductInfo{
		ID:    101,
		Title: "Shirt",
		Options: []ProductOption{
			{Name: "Color", Position: 1, Values: []string{"Red", "Blue"}},
			{Name: "Size", Position: 2, Values: []string{"S", "M"}},
		},
		Variants: []VariantInfo{
			{ID: 1, Selections: []SelectedOption{{Name: "Color", Value: "Red"}, {Name: "Size", Value: "S"}}},
			{ID: 2, Selections: []SelectedOption{{Name: "Color", Value: "Red"}, {Name: "Size", Value: "M"}}},
			{ID: 3, Selections: []SelectedOption{{Name: "Color", Value: "Blue"}, {Name: "Size", Value: "S"}}},
			{ID: 4, Selections: []SelectedOption{{Name: "Color", Value: "Blue"}, {Name: "Size", Value: "M"}}},
		},
	}
}

func TestGroupByOption_ByColor(t *testing.T) {
	groups := GroupByOption(shirtProduct(), "Color")
	require.Len(t, groups, 2)
	require.Equal(t, "Red", groups[0].Value)
	require.Equal(t, []int64{1, 2}, groups[0].VariantIDs)
	require.Equal(t, "Blue", groups[1].Value)
	require.Equal(t, []int64{3, 4}, groups[1].VariantIDs)
}

func TestGroupByOption_BySize(t *testing.T) {
	groups := GroupByOption(shirtProduct(), "Size")
	require.Len(t, groups, 2)
	require.Equal(t, []int64{1, 3}, groups[0].VariantIDs)
	require.Equal(t, []int64{2, 4}, groups[1].VariantIDs)
}

func TestGroupByOption_CaseInsensitiveName(t *testing.T) {
	groups := GroupByOption(shirtProduct(), "color")
	require.Len(t, groups, 2)
}

func TestGroupByOption_MissingOption(t *testing.T) {
	require.Empty(t, GroupByOption(shirtProduct(), "Material"))
	require.Empty(t, GroupByOption(shirtProduct(), ""))
}

func TestGroupByOption_VariantOnlyValueAppended(t *testing.T) {
	p := shirtProduct()
	p.Variants = append(p.Variants, VariantInfo{
		ID:         5,
		Selections: []SelectedOption{{Name: "Color", Value: "Green"}},
	})
	groups := GroupByOption(p, "Color")
	require.Len(t, groups, 3)
	require.Equal(t, "Green", groups[2].Value)
	require.Equal(t, []int64{5}, groups[2].VariantIDs)
}

func TestFindGroup(t *testing.T) {
	groups := GroupByOption(shirtProduct(), "Color")
	g, ok := FindGroup(groups, "Blue")
	require.True(t, ok)
	require.Equal(t, []int64{3, 4}, g.VariantIDs)

	_, ok = FindGroup(groups, "Green")
	require.False(t, ok)
}

func TestEffectiveBadge_None(t *testing.T) {
	got := EffectiveBadge([]int64{1, 2}, map[int64]types.BadgeType{})
	require.Equal(t, types.NoBadge(), got)
	require.Equal(t, "none", got.Label())
}

func TestEffectiveBadge_Single(t *testing.T) {
	badges := map[int64]types.BadgeType{1: types.BadgeTypeHot, 2: types.BadgeTypeHot}
	got := EffectiveBadge([]int64{1, 2}, badges)
	require.Equal(t, types.SingleBadge(types.BadgeTypeHot), got)
	require.Equal(t, "HOT", got.Label())
}

func TestEffectiveBadge_PartiallyBadgedStillSingle(t *testing.T) {
	// Variants without any badge do not dilute the group's badge.
	badges := map[int64]types.BadgeType{1: types.BadgeTypeSale}
	got := EffectiveBadge([]int64{1, 2, 3}, badges)
	require.Equal(t, types.SingleBadge(types.BadgeTypeSale), got)
}

func TestEffectiveBadge_Mixed(t *testing.T) {
	badges := map[int64]types.BadgeType{1: types.BadgeTypeHot, 2: types.BadgeTypeNew}
	got := EffectiveBadge([]int64{1, 2}, badges)
	require.Equal(t, types.MixedBadge(), got)
	require.Equal(t, "none", got.Label())
}

func TestFromShopifyProduct_PositionalSlots(t *testing.T) {
	p := &goshopify.Product{
		ID:    101,
		Title: "Shirt",
		Options: []goshopify.ProductOption{
			{Name: "Color", Position: 1, Values: []string{"Red"}},
			{Name: "Size", Position: 2, Values: []string{"S"}},
		},
		Variants: []goshopify.Variant{
			{ID: 1, Option1: "Red", Option2: "S"},
		},
	}
	info := FromShopifyProduct(p)
	require.Equal(t, int64(101), info.ID)
	require.Equal(t, "Shirt", info.Title)
	require.Len(t, info.Variants, 1)
	require.Equal(t, []SelectedOption{
		{Name: "Color", Value: "Red"},
		{Name: "Size", Value: "S"},
	}, info.Variants[0].Selections)
}
