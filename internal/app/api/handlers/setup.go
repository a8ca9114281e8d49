package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	mw "github.com/badgeworks/variantbadges/internal/app/api/middleware"
	shopsvc "github.com/badgeworks/variantbadges/internal/app/service/shop"
	platshopify "github.com/badgeworks/variantbadges/internal/platform/shopify"
	"github.com/badgeworks/variantbadges/pkg/response"
)

// snippetMarker is the block/render handle the theme integration uses; its
// presence in the live theme's sources means the storefront script will run.
const snippetMarker = "variant-badges"

type setupStatusData struct {
	ThemeID          uint64 `json:"theme_id"`
	ThemeName        string `json:"theme_name"`
	SnippetInstalled bool   `json:"snippet_installed"`
	EditorURL        string `json:"editor_url"`
}

func liveTheme(ctx context.Context, api *platshopify.Client, shop, token string) (uint64, string, error) {
	themes, err := api.ListThemes(ctx, shop, token)
	if err != nil {
		return 0, "", err
	}
	for _, t := range themes {
		if t.Role == "main" {
			return t.Id, t.Name, nil
		}
	}
	return 0, "", nil
}

// @Summary      Theme setup status
// @Description  Probes the live theme for the storefront app block
// @Tags         Setup
// @Produce      json
// @Success      200  {object}  response.APIResponse[setupStatusData]
// @Router       /api/setup/status [get]
func ApiSetupStatus(api *platshopify.Client, shops *shopsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		shop := mw.ShopFromContext(c)
		session, err := shops.GetSession(c.Request.Context(), shop)
		if err != nil {
			writeNeedsAuth(c, "shop not installed")
			return
		}

		themeID, themeName, err := liveTheme(c.Request.Context(), api, shop, session.AccessToken)
		if err != nil {
			if platshopify.IsAuthError(err) {
				writeNeedsAuth(c, "access token revoked, re-install required")
				return
			}
			c.JSON(http.StatusBadGateway, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}

		out := setupStatusData{ThemeID: themeID, ThemeName: themeName}
		if themeID == 0 {
			c.JSON(http.StatusOK, response.OKT(out))
			return
		}
		out.EditorURL = fmt.Sprintf("https://%s/admin/themes/%d/editor", shop, themeID)

		// App blocks live in the JSON product template on OS 2.0 themes;
		// legacy themes carry a render tag in the layout. Asset read
		// failures just report not-installed rather than erroring.
		for _, key := range []string{"templates/product.json", "layout/theme.liquid"} {
			asset, err := api.GetAsset(c.Request.Context(), shop, session.AccessToken, themeID, key)
			if err != nil {
				continue
			}
			if strings.Contains(asset.Value, snippetMarker) {
				out.SnippetInstalled = true
				break
			}
		}
		c.JSON(http.StatusOK, response.OKT(out))
	}
}

// @Summary      Theme editor deep link
// @Tags         Setup
// @Produce      json
// @Success      200  {object}  response.APIResponse[map[string]string]
// @Router       /api/setup/editor-link [get]
func ApiSetupEditorLink(api *platshopify.Client, shops *shopsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		shop := mw.ShopFromContext(c)
		session, err := shops.GetSession(c.Request.Context(), shop)
		if err != nil {
			writeNeedsAuth(c, "shop not installed")
			return
		}
		themeID, _, err := liveTheme(c.Request.Context(), api, shop, session.AccessToken)
		if err != nil || themeID == 0 {
			// A generic editor link still works when the live theme cannot
			// be resolved.
			c.JSON(http.StatusOK, response.OKT(map[string]string{
				"editor_url": fmt.Sprintf("https://%s/admin/themes", shop),
			}))
			return
		}
		c.JSON(http.StatusOK, response.OKT(map[string]string{
			"editor_url": fmt.Sprintf("https://%s/admin/themes/%d/editor", shop, themeID),
		}))
	}
}

func RegisterSetupRoutes(r gin.IRouter, api *platshopify.Client, shops *shopsvc.Service) {
	r.GET("/setup/status", ApiSetupStatus(api, shops))
	r.GET("/setup/editor-link", ApiSetupEditorLink(api, shops))
}
