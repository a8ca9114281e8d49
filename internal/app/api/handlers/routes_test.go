package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	platshopify "github.com/badgeworks/variantbadges/internal/platform/shopify"
	cfgpkg "github.com/badgeworks/variantbadges/pkg/config"
)

func TestHealthz(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterHealthRoutes(r)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORSMiddleware())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/x", nil))
	require.Equal(t, http.StatusNoContent, w.Code)
}

func signBody(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestWebhookHmacVerification(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &cfgpkg.Config{}
	cfg.Shopify.APISecret = "hush"
	api := platshopify.NewClient(cfg, nil)

	r := gin.New()
	r.POST("/api/webhooks/gdpr/customers_redact", ApiWebhookCustomerData(api))

	body := `{"shop_domain":"demo.myshopify.com"}`

	// Valid signature is acknowledged.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/gdpr/customers_redact", strings.NewReader(body))
	req.Header.Set("X-Shopify-Hmac-Sha256", signBody("hush", []byte(body)))
	req.Header.Set("X-Shopify-Shop-Domain", "demo.myshopify.com")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	// Tampered body is rejected.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/webhooks/gdpr/customers_redact", strings.NewReader(body+" "))
	req.Header.Set("X-Shopify-Hmac-Sha256", signBody("hush", []byte(body)))
	req.Header.Set("X-Shopify-Shop-Domain", "demo.myshopify.com")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// Missing shop domain header is a bad request.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/webhooks/gdpr/customers_redact", strings.NewReader(body))
	req.Header.Set("X-Shopify-Hmac-Sha256", signBody("hush", []byte(body)))
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestShopDomainValidation(t *testing.T) {
	require.True(t, shopDomainRe.MatchString("demo.myshopify.com"))
	require.True(t, shopDomainRe.MatchString("my-store-2.myshopify.com"))
	require.False(t, shopDomainRe.MatchString("demo.example.com"))
	require.False(t, shopDomainRe.MatchString("evil.com/?x=.myshopify.com"))
	require.False(t, shopDomainRe.MatchString(""))
}
