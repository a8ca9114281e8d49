package models

import (
	"time"

	"github.com/badgeworks/variantbadges/pkg/types"
)

// AnalyticsEvent is an append-only storefront fact row. Duplicates are
// tolerated; the only delete path is the shop-scoped uninstall redaction.
type AnalyticsEvent struct {
	ID          string                   `gorm:"column:id;type:uuid;primary_key" json:"id"`
	Shop        string                   `gorm:"column:shop;type:varchar(255);not null;index:idx_analytics_shop_created,priority:1" json:"shop"`
	ProductID   int64                    `gorm:"column:product_id" json:"product_id"`
	VariantID   int64                    `gorm:"column:variant_id" json:"variant_id"`
	BadgeType   types.BadgeType          `gorm:"column:badge_type;type:varchar(20)" json:"badge_type"`
	OptionValue string                   `gorm:"column:option_value;type:varchar(100)" json:"option_value"`
	EventType   types.AnalyticsEventType `gorm:"column:event_type;type:varchar(20);not null" json:"event_type"`
	SessionID   string                   `gorm:"column:session_id;type:varchar(128)" json:"session_id"`
	CreatedAt   time.Time                `gorm:"index:idx_analytics_shop_created,priority:2" json:"created_at"`
}

func (AnalyticsEvent) TableName() string {
	return "analytics_event"
}
