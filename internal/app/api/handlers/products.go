package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	mw "github.com/badgeworks/variantbadges/internal/app/api/middleware"
	badgesvc "github.com/badgeworks/variantbadges/internal/app/service/badge"
	shopsvc "github.com/badgeworks/variantbadges/internal/app/service/shop"
	platshopify "github.com/badgeworks/variantbadges/internal/platform/shopify"
	"github.com/badgeworks/variantbadges/pkg/response"
)

// productData is the slim product shape the admin frontend needs to build
// the badge picker: the declared options and variant selections.
type productData struct {
	ID       int64                    `json:"id"`
	Title    string                   `json:"title"`
	Options  []badgesvc.ProductOption `json:"options"`
	Variants []badgesvc.VariantInfo   `json:"variants"`
}

// needsAuthData signals the frontend to restart OAuth when the stored token
// has been revoked.
type needsAuthData struct {
	NeedsAuth bool   `json:"needs_auth"`
	Message   string `json:"message"`
}

// @Summary      List products
// @Description  Products with their options, proxied from the Admin API
// @Tags         Products
// @Produce      json
// @Param        limit  query  int  false  "max products (default 50)"
// @Success      200  {object}  response.APIResponse[[]productData]
// @Failure      401  {object}  response.APIResponse[needsAuthData]
// @Router       /api/products [get]
func ApiProductList(api *platshopify.Client, shops *shopsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		shop := mw.ShopFromContext(c)
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

		session, err := shops.GetSession(c.Request.Context(), shop)
		if err != nil {
			if errors.Is(err, shopsvc.ErrNotInstalled) {
				writeNeedsAuth(c, "shop not installed")
				return
			}
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}

		products, err := api.ListProducts(c.Request.Context(), shop, session.AccessToken, limit)
		if err != nil {
			if platshopify.IsAuthError(err) {
				writeNeedsAuth(c, "access token revoked, re-install required")
				return
			}
			c.JSON(http.StatusBadGateway, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}

		out := make([]productData, 0, len(products))
		for i := range products {
			info := badgesvc.FromShopifyProduct(&products[i])
			out = append(out, productData{
				ID:       info.ID,
				Title:    info.Title,
				Options:  info.Options,
				Variants: info.Variants,
			})
		}
		c.JSON(http.StatusOK, response.OKT(out))
	}
}

func writeNeedsAuth(c *gin.Context, msg string) {
	c.JSON(http.StatusUnauthorized, response.ErrorT(response.APIResponseCodeUnauthorized, needsAuthData{
		NeedsAuth: true,
		Message:   msg,
	}))
}

// @Summary      Get a product
// @Tags         Products
// @Produce      json
// @Param        id  path  int  true  "product id"
// @Success      200  {object}  response.APIResponse[productData]
// @Router       /api/products/{id} [get]
func ApiProductGet(api *platshopify.Client, shops *shopsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		shop := mw.ShopFromContext(c)
		productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, "invalid product id"))
			return
		}
		session, err := shops.GetSession(c.Request.Context(), shop)
		if err != nil {
			writeNeedsAuth(c, "shop not installed")
			return
		}
		product, err := api.GetProduct(c.Request.Context(), shop, session.AccessToken, productID)
		if err != nil {
			if platshopify.IsAuthError(err) {
				writeNeedsAuth(c, "access token revoked, re-install required")
				return
			}
			c.JSON(http.StatusBadGateway, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		info := badgesvc.FromShopifyProduct(product)
		c.JSON(http.StatusOK, response.OKT(productData{
			ID:       info.ID,
			Title:    info.Title,
			Options:  info.Options,
			Variants: info.Variants,
		}))
	}
}

func RegisterProductRoutes(r gin.IRouter, api *platshopify.Client, shops *shopsvc.Service) {
	r.GET("/products", ApiProductList(api, shops))
	r.GET("/products/:id", ApiProductGet(api, shops))
}
