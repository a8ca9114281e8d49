package models

import (
	"time"

	"github.com/badgeworks/variantbadges/pkg/types"
)

// BadgeAssignment records that a variant currently carries a badge. At most
// one row exists per (shop, variant); later writes overwrite via upsert.
// OptionType snapshots Settings.SelectedOptionName at write time and
// ProductTitle snapshots the product title for the title-ordered listing.
type BadgeAssignment struct {
	ID           string          `gorm:"column:id;type:uuid;primary_key" json:"id"`
	Shop         string          `gorm:"column:shop;type:varchar(255);not null;uniqueIndex:uniq_shop_variant,priority:1;index:idx_badge_shop_product,priority:1" json:"shop"`
	VariantID    int64           `gorm:"column:variant_id;not null;uniqueIndex:uniq_shop_variant,priority:2" json:"variant_id"`
	ProductID    int64           `gorm:"column:product_id;not null;index:idx_badge_shop_product,priority:2" json:"product_id"`
	ProductTitle string          `gorm:"column:product_title;type:varchar(255);not null;default:''" json:"product_title"`
	OptionType   string          `gorm:"column:option_type;type:varchar(100);not null" json:"option_type"`
	OptionValue  string          `gorm:"column:option_value;type:varchar(100);not null" json:"option_value"`
	BadgeType    types.BadgeType `gorm:"column:badge_type;type:varchar(20);not null" json:"badge_type"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func (BadgeAssignment) TableName() string {
	return "badge_assignment"
}
