package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/badgeworks/variantbadges/pkg/types"
)

// SubscriptionExtra stores charge details that are useful for support and
// the merchant UI but carry no plan semantics.
type SubscriptionExtra struct {
	Price           float64 `json:"price,omitempty"`
	Test            bool    `json:"test,omitempty"`
	ConfirmationURL string  `json:"confirmation_url,omitempty"`
}

// Subscription is the single billing row per shop, mutated in place. The
// effective plan is re-derived from this row and the clock on every read;
// see the subscription service for the transition rules.
type Subscription struct {
	ID       string                   `gorm:"column:id;type:uuid;primary_key" json:"id"`
	Shop     string                   `gorm:"column:shop;type:varchar(255);not null;uniqueIndex" json:"shop"`
	PlanName types.PlanName           `gorm:"column:plan_name;type:varchar(50);not null;default:'free'" json:"plan_name"`
	Status   types.SubscriptionStatus `gorm:"column:status;type:varchar(50);not null;default:'active';index" json:"status"`
	// ChargeID is the external recurring-charge reference; nil on free.
	ChargeID *string `gorm:"column:charge_id;type:varchar(255)" json:"charge_id"`
	// BillingOn is the next bill date while active, and the grace-period
	// expiry once status is cancelled.
	BillingOn   *time.Time                               `gorm:"column:billing_on" json:"billing_on"`
	CancelledAt *time.Time                               `gorm:"column:cancelled_at" json:"cancelled_at"`
	Extra       datatypes.JSONType[*SubscriptionExtra]   `gorm:"column:extra;type:jsonb" json:"extra"`
	CreatedAt   time.Time                                `json:"created_at"`
	UpdatedAt   time.Time                                `json:"updated_at"`
}

func (Subscription) TableName() string {
	return "subscription"
}

// InGrace reports whether a cancelled pro subscription still grants
// unlimited access at the given time.
func (s *Subscription) InGrace(now time.Time) bool {
	return s != nil &&
		s.PlanName == types.PlanPro &&
		s.Status == types.SubscriptionStatusCancelled &&
		s.BillingOn != nil &&
		!now.After(*s.BillingOn)
}
