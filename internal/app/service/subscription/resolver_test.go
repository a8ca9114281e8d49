package subscription

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/badgeworks/variantbadges/internal/models"
	"github.com/badgeworks/variantbadges/pkg/types"
)

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func TestResolvePlan_NilRow(t *testing.T) {
	decision, lapsed := ResolvePlan(nil, now)
	require.False(t, lapsed)
	require.Equal(t, types.PlanFree, decision.Plan)
	require.False(t, decision.Unlimited)
}

func TestResolvePlan_FreeActive(t *testing.T) {
	sub := &models.Subscription{PlanName: types.PlanFree, Status: types.SubscriptionStatusActive}
	decision, lapsed := ResolvePlan(sub, now)
	require.False(t, lapsed)
	require.Equal(t, types.PlanFree, decision.Plan)
	require.False(t, decision.Unlimited)
}

func TestResolvePlan_PendingIsFree(t *testing.T) {
	// An upgrade awaiting merchant approval must not grant pro access,
	// whatever plan name the row carries.
	sub := &models.Subscription{PlanName: types.PlanPro, Status: types.SubscriptionStatusPending}
	decision, lapsed := ResolvePlan(sub, now)
	require.False(t, lapsed)
	require.Equal(t, types.PlanFree, decision.Plan)
	require.False(t, decision.Unlimited)
	require.True(t, decision.PendingUpgrade)
}

func TestResolvePlan_ProActive(t *testing.T) {
	sub := &models.Subscription{PlanName: types.PlanPro, Status: types.SubscriptionStatusActive}
	decision, lapsed := ResolvePlan(sub, now)
	require.False(t, lapsed)
	require.Equal(t, types.PlanPro, decision.Plan)
	require.True(t, decision.Unlimited)
}

func TestResolvePlan_CancelledInGrace(t *testing.T) {
	billingOn := now.Add(24 * time.Hour)
	sub := &models.Subscription{
		PlanName:  types.PlanPro,
		Status:    types.SubscriptionStatusCancelled,
		BillingOn: &billingOn,
	}
	decision, lapsed := ResolvePlan(sub, now)
	require.False(t, lapsed)
	require.Equal(t, types.PlanPro, decision.Plan)
	require.True(t, decision.Unlimited)
	require.NotNil(t, decision.GraceExpiresOn)
	require.Equal(t, billingOn, *decision.GraceExpiresOn)
}

func TestResolvePlan_GraceBoundary(t *testing.T) {
	// Exactly at the billing date the grace period still holds; one instant
	// later it has lapsed.
	sub := &models.Subscription{
		PlanName:  types.PlanPro,
		Status:    types.SubscriptionStatusCancelled,
		BillingOn: &now,
	}
	decision, lapsed := ResolvePlan(sub, now)
	require.False(t, lapsed)
	require.True(t, decision.Unlimited)

	decision, lapsed = ResolvePlan(sub, now.Add(time.Nanosecond))
	require.True(t, lapsed)
	require.Equal(t, types.PlanFree, decision.Plan)
	require.False(t, decision.Unlimited)
}

func TestResolvePlan_CancelledWithoutBillingOn(t *testing.T) {
	// A cancelled row with no grace expiry recorded cannot keep pro access.
	sub := &models.Subscription{PlanName: types.PlanPro, Status: types.SubscriptionStatusCancelled}
	decision, lapsed := ResolvePlan(sub, now)
	require.True(t, lapsed)
	require.Equal(t, types.PlanFree, decision.Plan)
}

func TestResolvePlan_Uninstalled(t *testing.T) {
	sub := &models.Subscription{PlanName: types.PlanPro, Status: types.SubscriptionStatusUninstalled}
	decision, lapsed := ResolvePlan(sub, now)
	require.False(t, lapsed)
	require.Equal(t, types.PlanFree, decision.Plan)
}

func TestInGrace(t *testing.T) {
	billingOn := now.Add(time.Hour)
	sub := &models.Subscription{
		PlanName:  types.PlanPro,
		Status:    types.SubscriptionStatusCancelled,
		BillingOn: &billingOn,
	}
	require.True(t, sub.InGrace(now))
	require.False(t, sub.InGrace(now.Add(2*time.Hour)))

	sub.Status = types.SubscriptionStatusActive
	require.False(t, sub.InGrace(now))
}
