package subscription

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/badgeworks/variantbadges/pkg/types"
)

func TestDecideAssign_UnlimitedAlwaysPasses(t *testing.T) {
	decision := types.PlanDecision{Plan: types.PlanPro, Unlimited: true}
	require.True(t, decideAssign(decision, 100, 5, false))
}

func TestDecideAssign_EditWithinCap(t *testing.T) {
	decision := types.PlanDecision{Plan: types.PlanFree}
	require.True(t, decideAssign(decision, 3, 5, false))
}

func TestDecideAssign_GrowthBlockedAtCap(t *testing.T) {
	decision := types.PlanDecision{Plan: types.PlanFree}
	require.False(t, decideAssign(decision, 5, 5, false))
}

func TestDecideAssign_EditAtCapAllowed(t *testing.T) {
	// Re-badging an already-badged product does not grow the distinct
	// product count and always passes.
	decision := types.PlanDecision{Plan: types.PlanFree}
	require.True(t, decideAssign(decision, 5, 5, true))
}

func TestDecideAssign_OverCapEditStillAllowed(t *testing.T) {
	// A shop left over the cap (grace lapse mid-flight) may keep editing
	// its existing products, just not add new ones.
	decision := types.PlanDecision{Plan: types.PlanFree}
	require.True(t, decideAssign(decision, 7, 5, true))
	require.False(t, decideAssign(decision, 7, 5, false))
}

func TestIsDevelopmentStore(t *testing.T) {
	require.True(t, isDevelopmentStore("partner_test"))
	require.True(t, isDevelopmentStore("affiliate"))
	require.True(t, isDevelopmentStore("staff_business"))
	require.False(t, isDevelopmentStore("basic"))
	require.False(t, isDevelopmentStore(""))
}
