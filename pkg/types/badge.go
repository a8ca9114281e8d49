package types

type BadgeType string

const (
	BadgeTypeHot  BadgeType = "HOT"
	BadgeTypeNew  BadgeType = "NEW"
	BadgeTypeSale BadgeType = "SALE"
)

type AnalyticsEventType string

const (
	AnalyticsEventView      AnalyticsEventType = "view"
	AnalyticsEventClick     AnalyticsEventType = "click"
	AnalyticsEventAddToCart AnalyticsEventType = "add_to_cart"
)

func ValidAnalyticsEventType(t AnalyticsEventType) bool {
	switch t {
	case AnalyticsEventView, AnalyticsEventClick, AnalyticsEventAddToCart:
		return true
	}
	return false
}

type GroupBadgeKind int

const (
	GroupBadgeNone GroupBadgeKind = iota
	GroupBadgeSingle
	GroupBadgeMixed
)

// GroupBadge is the effective badge of an option-value group. A group whose
// variants all carry the same badge type resolves to Single; disagreeing
// variants resolve to Mixed, which merchants see as "none".
type GroupBadge struct {
	Kind GroupBadgeKind
	Type BadgeType
}

func SingleBadge(t BadgeType) GroupBadge { return GroupBadge{Kind: GroupBadgeSingle, Type: t} }

func NoBadge() GroupBadge { return GroupBadge{Kind: GroupBadgeNone} }

func MixedBadge() GroupBadge { return GroupBadge{Kind: GroupBadgeMixed} }

// Label is the merchant-facing rendering of the group badge.
func (g GroupBadge) Label() string {
	if g.Kind == GroupBadgeSingle {
		return string(g.Type)
	}
	return "none"
}

func (g GroupBadge) MarshalJSON() ([]byte, error) {
	return []byte(`"` + g.Label() + `"`), nil
}
