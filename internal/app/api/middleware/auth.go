package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"

	"github.com/badgeworks/variantbadges/pkg/config"
	"github.com/badgeworks/variantbadges/pkg/response"
)

const shopContextKey = "shop"

// ShopClaims is the session token issued after OAuth. The shop domain is
// the only identity the merchant-admin API needs.
type ShopClaims struct {
	Shop string `json:"shop"`
	jwt.StandardClaims
}

// IssueShopToken signs a session token for the embedded admin frontend.
func IssueShopToken(cfg *config.Config, shop string, now time.Time) (string, error) {
	claims := &ShopClaims{
		Shop: shop,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(time.Duration(cfg.Auth.TokenTTLHour) * time.Hour).Unix(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Auth.JWTSecret))
}

// ParseShopToken validates a session token and returns the shop it names.
func ParseShopToken(cfg *config.Config, tokenString string) (string, error) {
	claims := &ShopClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(cfg.Auth.JWTSecret), nil
	})
	if err != nil {
		return "", err
	}
	return claims.Shop, nil
}

// AuthMiddleware guards the merchant-admin API. It accepts a Bearer session
// token and stores the authenticated shop domain on the context.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if token == "" || token == header {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				response.ErrorT[any](response.APIResponseCodeUnauthorized, "missing bearer token"))
			return
		}
		shop, err := ParseShopToken(cfg, token)
		if err != nil || shop == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				response.ErrorT[any](response.APIResponseCodeUnauthorized, "invalid session token"))
			return
		}
		c.Set(shopContextKey, shop)
		c.Next()
	}
}

// ShopFromContext returns the authenticated shop domain set by
// AuthMiddleware.
func ShopFromContext(c *gin.Context) string {
	return c.GetString(shopContextKey)
}
