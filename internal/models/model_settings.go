package models

import "time"

// Settings is the per-shop app configuration. SelectedOptionName identifies
// the product option dimension (e.g. "Color") badges are keyed on; changing
// it invalidates every badge assignment the shop has.
type Settings struct {
	ID                 string    `gorm:"column:id;type:uuid;primary_key" json:"id"`
	Shop               string    `gorm:"column:shop;type:varchar(255);not null;uniqueIndex" json:"shop"`
	SelectedOptionName *string   `gorm:"column:selected_option_name;type:varchar(100)" json:"selected_option_name"`
	BadgeDisplay       bool      `gorm:"column:badge_display_enabled;not null;default:true" json:"badge_display_enabled"`
	AutoSale           bool      `gorm:"column:auto_sale_enabled;not null;default:false" json:"auto_sale_enabled"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (Settings) TableName() string {
	return "app_settings"
}

// SelectedOption returns the option name or "" when none is chosen yet.
func (s *Settings) SelectedOption() string {
	if s == nil || s.SelectedOptionName == nil {
		return ""
	}
	return *s.SelectedOptionName
}
