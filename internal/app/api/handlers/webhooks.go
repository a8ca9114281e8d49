package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	shopsvc "github.com/badgeworks/variantbadges/internal/app/service/shop"
	platshopify "github.com/badgeworks/variantbadges/internal/platform/shopify"
	"github.com/badgeworks/variantbadges/pkg/logctx"
)

const (
	headerHmac       = "X-Shopify-Hmac-Sha256"
	headerShopDomain = "X-Shopify-Shop-Domain"
)

// webhookBody drains and HMAC-verifies a delivery. A failed verification
// returns 401 so the platform marks the delivery failed.
func webhookBody(c *gin.Context, api *platshopify.Client) ([]byte, string, bool) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.AbortWithStatus(http.StatusBadRequest)
		return nil, "", false
	}
	if !api.VerifyWebhookMessage(body, c.GetHeader(headerHmac)) {
		c.AbortWithStatus(http.StatusUnauthorized)
		return nil, "", false
	}
	shop := c.GetHeader(headerShopDomain)
	if shop == "" {
		c.AbortWithStatus(http.StatusBadRequest)
		return nil, "", false
	}
	return body, shop, true
}

// ApiWebhookUninstalled handles app/uninstalled: drop the shop's data so a
// reinstall starts clean. Always 200 on a verified delivery; the platform
// does not retry and a partial cleanup is better than none.
func ApiWebhookUninstalled(api *platshopify.Client, shops *shopsvc.Service, base *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logctx.FromGin(c, base)
		_, shop, ok := webhookBody(c, api)
		if !ok {
			return
		}
		if err := shops.HandleUninstalled(c.Request.Context(), shop); err != nil {
			log.Errorw("uninstall cleanup incomplete", "shop", shop, "err", err)
		}
		c.Status(http.StatusOK)
	}
}

// ApiWebhookShopRedact handles the GDPR shop redaction, delivered 48h after
// uninstall. The uninstall hook already removed everything, so this is a
// second sweep.
func ApiWebhookShopRedact(api *platshopify.Client, shops *shopsvc.Service, base *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logctx.FromGin(c, base)
		body, shop, ok := webhookBody(c, api)
		if !ok {
			return
		}
		var payload struct {
			ShopDomain string `json:"shop_domain"`
		}
		if err := json.Unmarshal(body, &payload); err == nil && payload.ShopDomain != "" {
			shop = payload.ShopDomain
		}
		if err := shops.HandleUninstalled(c.Request.Context(), shop); err != nil {
			log.Errorw("redact cleanup incomplete", "shop", shop, "err", err)
		}
		c.Status(http.StatusOK)
	}
}

// ApiWebhookCustomerData handles customers/data_request and
// customers/redact. No customer-scoped data is stored, so both acknowledge
// and do nothing.
func ApiWebhookCustomerData(api *platshopify.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, _, ok := webhookBody(c, api); !ok {
			return
		}
		c.Status(http.StatusOK)
	}
}

func RegisterWebhookRoutes(r gin.IRouter, api *platshopify.Client, shops *shopsvc.Service, log *zap.SugaredLogger) {
	r.POST("/webhooks/app/uninstalled", ApiWebhookUninstalled(api, shops, log))
	r.POST("/webhooks/gdpr/redact", ApiWebhookShopRedact(api, shops, log))
	r.POST("/webhooks/gdpr/customers_redact", ApiWebhookCustomerData(api))
	r.POST("/webhooks/gdpr/customers_data_request", ApiWebhookCustomerData(api))
}
