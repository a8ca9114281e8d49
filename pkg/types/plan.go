package types

import "time"

type PlanName string

const (
	PlanFree PlanName = "free"
	PlanPro  PlanName = "pro"
)

type SubscriptionStatus string

const (
	SubscriptionStatusActive      SubscriptionStatus = "active"
	SubscriptionStatusPending     SubscriptionStatus = "pending"
	SubscriptionStatusCancelled   SubscriptionStatus = "cancelled"
	SubscriptionStatusUninstalled SubscriptionStatus = "uninstalled"
)

// PlanDecision is the effective plan for a shop at a point in time, derived
// from the stored subscription row. Unlimited shops bypass the product cap.
type PlanDecision struct {
	Plan           PlanName   `json:"plan"`
	Unlimited      bool       `json:"unlimited"`
	GraceExpiresOn *time.Time `json:"grace_expires_on,omitempty"`
	PendingUpgrade bool       `json:"pending_upgrade,omitempty"`
}

// LimitCheck reports whether a badge write may grow the set of badged
// products for a shop.
type LimitCheck struct {
	Allowed      bool `json:"allowed"`
	CurrentCount int  `json:"current_count"`
	MaxCount     int  `json:"max_count"`
	Unlimited    bool `json:"unlimited"`
}

// CleanupResult reports the outcome of a forced-downgrade badge cleanup.
// Cleaned is false when the shop was already within the cap.
type CleanupResult struct {
	Cleaned      bool `json:"cleaned"`
	KeptProducts int  `json:"kept_products"`
	RemovedCount int  `json:"removed_products"`
}
