package models

import "time"

// Shop stores the OAuth session for an installed store. The access token is
// replaced on reinstall and deleted on uninstall/redact.
type Shop struct {
	ID          string    `gorm:"column:id;type:uuid;primary_key" json:"id"`
	Domain      string    `gorm:"column:domain;type:varchar(255);not null;uniqueIndex" json:"domain"`
	AccessToken string    `gorm:"column:access_token;type:text;not null" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Shop) TableName() string {
	return "shop"
}
