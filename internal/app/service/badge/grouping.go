package badge

import (
	"strings"

	goshopify "github.com/bold-commerce/go-shopify/v4"

	"github.com/badgeworks/variantbadges/pkg/types"
)

// ProductInfo is the slice of the platform product schema the grouping
// engine needs: the declared options and each variant's selections.
type ProductInfo struct {
	ID       int64
	Title    string
	Options  []ProductOption
	Variants []VariantInfo
}

type ProductOption struct {
	Name     string
	Position int
	Values   []string
}

type VariantInfo struct {
	ID         int64
	Title      string
	Selections []SelectedOption
}

type SelectedOption struct {
	Name  string
	Value string
}

// OptionGroup lists the variants matching one value of the selected option.
type OptionGroup struct {
	Value      string
	VariantIDs []int64
}

// FromShopifyProduct flattens the Admin API product shape: variant option
// slots (option1..option3) are positional, so each is joined back to the
// declared option at the same position.
func FromShopifyProduct(p *goshopify.Product) ProductInfo {
	info := ProductInfo{ID: int64(p.Id), Title: p.Title}
	for _, opt := range p.Options {
		info.Options = append(info.Options, ProductOption{
			Name:     opt.Name,
			Position: opt.Position,
			Values:   opt.Values,
		})
	}
	for _, v := range p.Variants {
		vi := VariantInfo{ID: int64(v.Id), Title: v.Title}
		slots := []string{v.Option1, v.Option2, v.Option3}
		for _, opt := range p.Options {
			if opt.Position < 1 || opt.Position > len(slots) {
				continue
			}
			if val := slots[opt.Position-1]; val != "" {
				vi.Selections = append(vi.Selections, SelectedOption{Name: opt.Name, Value: val})
			}
		}
		info.Variants = append(info.Variants, vi)
	}
	return info
}

// GroupByOption produces one group per distinct value of the named option,
// in the option's declared value order, each listing the variant ids whose
// selection matches. Values seen only on variants are appended after the
// declared ones. A product without the option yields no groups.
func GroupByOption(p ProductInfo, optionName string) []OptionGroup {
	if optionName == "" {
		return nil
	}

	byValue := make(map[string][]int64)
	var order []string
	for _, opt := range p.Options {
		if strings.EqualFold(opt.Name, optionName) {
			for _, val := range opt.Values {
				if _, ok := byValue[val]; !ok {
					byValue[val] = nil
					order = append(order, val)
				}
			}
		}
	}

	for _, v := range p.Variants {
		for _, sel := range v.Selections {
			if !strings.EqualFold(sel.Name, optionName) {
				continue
			}
			if _, ok := byValue[sel.Value]; !ok {
				byValue[sel.Value] = nil
				order = append(order, sel.Value)
			}
			byValue[sel.Value] = append(byValue[sel.Value], v.ID)
		}
	}

	groups := make([]OptionGroup, 0, len(order))
	for _, val := range order {
		groups = append(groups, OptionGroup{Value: val, VariantIDs: byValue[val]})
	}
	return groups
}

// FindGroup returns the group matching the given option value, if any.
func FindGroup(groups []OptionGroup, optionValue string) (OptionGroup, bool) {
	for _, g := range groups {
		if g.Value == optionValue {
			return g, true
		}
	}
	return OptionGroup{}, false
}

// EffectiveBadge derives one badge for a variant group: the single badge
// type all badged variants agree on, none when no variant is badged, and
// mixed when they disagree.
func EffectiveBadge(variantIDs []int64, badges map[int64]types.BadgeType) types.GroupBadge {
	var seen []types.BadgeType
	for _, id := range variantIDs {
		t, ok := badges[id]
		if !ok {
			continue
		}
		dup := false
		for _, s := range seen {
			if s == t {
				dup = true
				break
			}
		}
		if !dup {
			seen = append(seen, t)
		}
	}
	switch len(seen) {
	case 0:
		return types.NoBadge()
	case 1:
		return types.SingleBadge(seen[0])
	default:
		return types.MixedBadge()
	}
}
