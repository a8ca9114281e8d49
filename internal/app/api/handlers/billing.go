package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	mw "github.com/badgeworks/variantbadges/internal/app/api/middleware"
	subsvc "github.com/badgeworks/variantbadges/internal/app/service/subscription"
	cfgpkg "github.com/badgeworks/variantbadges/pkg/config"
	"github.com/badgeworks/variantbadges/pkg/logctx"
	"github.com/badgeworks/variantbadges/pkg/response"
	"github.com/badgeworks/variantbadges/pkg/types"
)

type planStatusData struct {
	Plan           types.PlanName           `json:"plan"`
	Status         types.SubscriptionStatus `json:"status"`
	Unlimited      bool                     `json:"unlimited"`
	PendingUpgrade bool                     `json:"pending_upgrade"`
	GraceExpiresOn *time.Time               `json:"grace_expires_on,omitempty"`
	MaxProducts    int                      `json:"max_products"`
}

// @Summary      Plan status
// @Description  Effective plan after applying any lapsed grace period
// @Tags         Billing
// @Produce      json
// @Success      200  {object}  response.APIResponse[planStatusData]
// @Router       /api/billing/status [get]
func ApiBillingStatus(cfg *cfgpkg.Config, plans *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		shop := mw.ShopFromContext(c)
		sub, decision, err := plans.Status(c.Request.Context(), shop)
		if err != nil {
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(planStatusData{
			Plan:           decision.Plan,
			Status:         sub.Status,
			Unlimited:      decision.Unlimited,
			PendingUpgrade: decision.PendingUpgrade,
			GraceExpiresOn: decision.GraceExpiresOn,
			MaxProducts:    cfg.Plan.FreeMaxProducts,
		}))
	}
}

// @Summary      Start a pro upgrade
// @Description  Creates a recurring charge and returns the confirmation URL
// @Tags         Billing
// @Produce      json
// @Success      200  {object}  response.APIResponse[map[string]string]
// @Router       /api/billing/charge [post]
func ApiBillingUpgrade(plans *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		shop := mw.ShopFromContext(c)
		confirmationURL, _, err := plans.CreateCharge(c.Request.Context(), shop)
		if err != nil {
			if errors.Is(err, subsvc.ErrShopNotFound) {
				c.JSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized, err.Error()))
				return
			}
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(map[string]string{"confirmation_url": confirmationURL}))
	}
}

// ApiBillingActivate is the charge return URL. The platform redirects the
// merchant here after the approval screen, so it authenticates by shop
// query parameter plus the charge lookup rather than a session token.
func ApiBillingActivate(cfg *cfgpkg.Config, plans *subsvc.Service, base *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logctx.FromGin(c, base)
		shop := c.Query("shop")
		chargeID, err := strconv.ParseUint(c.Query("charge_id"), 10, 64)
		if !shopDomainRe.MatchString(shop) || err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, "invalid activation parameters"))
			return
		}
		if err := plans.ActivateCharge(c.Request.Context(), shop, chargeID); err != nil {
			log.Errorw("charge activation failed", "shop", shop, "charge_id", chargeID, "err", err)
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, "activation failed"))
			return
		}
		c.Redirect(http.StatusFound, cfg.Shopify.AppURL+"/?shop="+shop+"&billing=updated")
	}
}

// @Summary      Cancel the pro plan
// @Description  Voids a pending upgrade, or cancels pro with a grace period
// @Tags         Billing
// @Produce      json
// @Success      200  {object}  response.APIResponse[subscription.CancelOutcome]
// @Router       /api/billing/cancel [post]
func ApiBillingCancel(plans *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		shop := mw.ShopFromContext(c)
		outcome, err := plans.Cancel(c.Request.Context(), shop)
		if err != nil {
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(outcome))
	}
}

func RegisterBillingRoutes(r gin.IRouter, cfg *cfgpkg.Config, plans *subsvc.Service) {
	r.GET("/billing/status", ApiBillingStatus(cfg, plans))
	r.POST("/billing/charge", ApiBillingUpgrade(plans))
	r.POST("/billing/cancel", ApiBillingCancel(plans))
}
