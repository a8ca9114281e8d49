package handlers

import (
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	mw "github.com/badgeworks/variantbadges/internal/app/api/middleware"
	shopsvc "github.com/badgeworks/variantbadges/internal/app/service/shop"
	platshopify "github.com/badgeworks/variantbadges/internal/platform/shopify"
	cfgpkg "github.com/badgeworks/variantbadges/pkg/config"
	"github.com/badgeworks/variantbadges/pkg/logctx"
	"github.com/badgeworks/variantbadges/pkg/response"
	"github.com/badgeworks/variantbadges/pkg/tool"
)

var shopDomainRe = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]*\.myshopify\.com$`)

const stateCookie = "oauth_state"

// ApiAuthBegin starts the OAuth install flow: validate the shop domain,
// stash a nonce, and send the merchant to the authorize page.
func ApiAuthBegin(api *platshopify.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		shop := c.Query("shop")
		if !shopDomainRe.MatchString(shop) {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, "invalid shop domain"))
			return
		}
		state := tool.GenerateUUIDV7()
		c.SetCookie(stateCookie, state, 300, "/", "", true, true)
		c.Redirect(http.StatusFound, api.AuthorizeURL(shop, state))
	}
}

// ApiAuthCallback completes the install: verify the HMAC and state nonce,
// exchange the code for a token, persist the session, register the
// lifecycle webhooks, and hand the frontend a session token.
func ApiAuthCallback(cfg *cfgpkg.Config, api *platshopify.Client, shops *shopsvc.Service, base *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logctx.FromGin(c, base)
		shop := c.Query("shop")
		code := c.Query("code")
		if !shopDomainRe.MatchString(shop) || code == "" {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, "invalid callback parameters"))
			return
		}
		if !api.VerifyCallback(c.Request.URL) {
			c.JSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized, "callback verification failed"))
			return
		}
		if state, err := c.Cookie(stateCookie); err != nil || state == "" || state != c.Query("state") {
			c.JSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized, "state mismatch"))
			return
		}
		c.SetCookie(stateCookie, "", -1, "/", "", true, true)

		ctx := c.Request.Context()
		token, err := api.ExchangeToken(ctx, shop, code)
		if err != nil {
			log.Errorw("token exchange failed", "shop", shop, "err", err)
			c.JSON(http.StatusBadGateway, response.ErrorT[any](response.APIResponseCodeError, "token exchange failed"))
			return
		}
		if err := shops.SaveSession(ctx, shop, token); err != nil {
			log.Errorw("failed to persist session", "shop", shop, "err", err)
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, "failed to persist session"))
			return
		}

		// Best effort: a duplicate registration on reinstall returns an
		// error we do not care about. GDPR topics are configured in the
		// partner dashboard, not over the API.
		addr := cfg.Shopify.AppURL + "/api/webhooks/app/uninstalled"
		if _, err := api.CreateWebhook(ctx, shop, token, "app/uninstalled", addr); err != nil {
			log.Warnw("webhook registration failed", "shop", shop, "topic", "app/uninstalled", "err", err)
		}

		sessionToken, err := mw.IssueShopToken(cfg, shop, time.Now())
		if err != nil {
			log.Errorw("failed to issue session token", "shop", shop, "err", err)
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, "failed to issue session token"))
			return
		}
		c.Redirect(http.StatusFound, cfg.Shopify.AppURL+"/?shop="+shop+"&token="+sessionToken)
	}
}

// ApiAuthToken re-issues a session token for an already-installed shop. The
// embedded frontend calls this when its token expires mid-session; the
// request query carries the platform HMAC that embedded-app loads are
// signed with, which stands in for a session.
func ApiAuthToken(cfg *cfgpkg.Config, api *platshopify.Client, shops *shopsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		shop := c.Query("shop")
		if !shopDomainRe.MatchString(shop) || !api.VerifyCallback(c.Request.URL) {
			c.JSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized, "invalid signed request"))
			return
		}
		if _, err := shops.GetSession(c.Request.Context(), shop); err != nil {
			c.JSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized, "shop not installed"))
			return
		}
		token, err := mw.IssueShopToken(cfg, shop, time.Now())
		if err != nil {
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, "failed to issue session token"))
			return
		}
		c.JSON(http.StatusOK, response.OKT(gin.H{"token": token}))
	}
}

func RegisterAuthRoutes(r gin.IRouter, cfg *cfgpkg.Config, api *platshopify.Client, shops *shopsvc.Service, log *zap.SugaredLogger) {
	r.GET("/auth", ApiAuthBegin(api))
	r.GET("/auth/callback", ApiAuthCallback(cfg, api, shops, log))
	r.GET("/auth/token", ApiAuthToken(cfg, api, shops))
}
