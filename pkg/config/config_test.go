package config

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/badgeworks/variantbadges/pkg/types"
)

func TestDefaults(t *testing.T) {
	c, err := New()
	require.NoError(t, err)

	require.Equal(t, EnvDev, c.Env)
	require.Equal(t, 8888, c.Server.Port)
	require.Equal(t, 5, c.Plan.FreeMaxProducts)
	require.Equal(t, []string{"HOT", "NEW", "SALE"}, c.Plan.BadgeTypes)
	require.Equal(t, 4.99, c.Billing.ProPrice)
	require.Equal(t, 10, c.PublicCacheMaxAge)
	require.Equal(t, 8, c.Auth.TokenTTLHour)
}

func TestValidBadgeType(t *testing.T) {
	c := &Config{Plan: PlanConfig{BadgeTypes: []string{"HOT", "NEW", "SALE"}}}
	require.True(t, c.ValidBadgeType(types.BadgeTypeHot))
	require.True(t, c.ValidBadgeType(types.BadgeTypeSale))
	require.False(t, c.ValidBadgeType("hot"))
	require.False(t, c.ValidBadgeType("BESTSELLER"))
}
