package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/badgeworks/variantbadges/pkg/config"
)

func testConfig(secret string) *config.Config {
	cfg := &config.Config{}
	cfg.Auth.JWTSecret = secret
	cfg.Auth.TokenTTLHour = 8
	return cfg
}

func TestShopToken_RoundTrip(t *testing.T) {
	cfg := testConfig("secret-a")
	token, err := IssueShopToken(cfg, "demo.myshopify.com", time.Now())
	require.NoError(t, err)

	shop, err := ParseShopToken(cfg, token)
	require.NoError(t, err)
	require.Equal(t, "demo.myshopify.com", shop)
}

func TestShopToken_WrongSecretRejected(t *testing.T) {
	token, err := IssueShopToken(testConfig("secret-a"), "demo.myshopify.com", time.Now())
	require.NoError(t, err)

	_, err = ParseShopToken(testConfig("secret-b"), token)
	require.Error(t, err)
}

func TestShopToken_ExpiredRejected(t *testing.T) {
	cfg := testConfig("secret-a")
	token, err := IssueShopToken(cfg, "demo.myshopify.com", time.Now().Add(-24*time.Hour))
	require.NoError(t, err)

	_, err = ParseShopToken(cfg, token)
	require.Error(t, err)
}

func TestShopToken_GarbageRejected(t *testing.T) {
	_, err := ParseShopToken(testConfig("secret-a"), "not-a-token")
	require.Error(t, err)
}
