package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	mw "github.com/badgeworks/variantbadges/internal/app/api/middleware"
	badgesvc "github.com/badgeworks/variantbadges/internal/app/service/badge"
	subsvc "github.com/badgeworks/variantbadges/internal/app/service/subscription"
	"github.com/badgeworks/variantbadges/pkg/response"
	"github.com/badgeworks/variantbadges/pkg/types"
)

type assignBadgeRequest struct {
	ProductID   int64           `json:"product_id" binding:"required"`
	OptionValue string          `json:"option_value" binding:"required"`
	BadgeType   types.BadgeType `json:"badge_type" binding:"required"`
}

type removeBadgeRequest struct {
	ProductID   int64  `json:"product_id" binding:"required"`
	OptionValue string `json:"option_value" binding:"required"`
}

// limitExceededData is the structured 403 payload so the frontend can render
// an upgrade prompt with real numbers.
type limitExceededData struct {
	CurrentProducts int    `json:"current_products"`
	MaxProducts     int    `json:"max_products"`
	UpgradeRequired bool   `json:"upgrade_required"`
	Message         string `json:"message"`
}

func writeBadgeError(c *gin.Context, err error) {
	var limitErr *badgesvc.LimitError
	switch {
	case errors.As(err, &limitErr):
		c.JSON(http.StatusForbidden, response.ErrorT(response.APIResponseCodeLimitExceeded, limitExceededData{
			CurrentProducts: limitErr.CurrentProducts,
			MaxProducts:     limitErr.MaxProducts,
			UpgradeRequired: true,
			Message:         limitErr.Error(),
		}))
	case errors.Is(err, badgesvc.ErrInvalidBadgeType),
		errors.Is(err, badgesvc.ErrNoOptionSelected):
		c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
	case errors.Is(err, badgesvc.ErrOptionValueNotFound):
		c.JSON(http.StatusNotFound, response.ErrorT[any](response.APIResponseCodeNotFound, err.Error()))
	case errors.Is(err, subsvc.ErrShopNotFound):
		c.JSON(http.StatusUnauthorized, response.ErrorT[any](response.APIResponseCodeUnauthorized, err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
	}
}

// @Summary      List badge assignments
// @Description  Badge assignments grouped per product and option value
// @Tags         Badges
// @Produce      json
// @Param        page       query  int  false  "page (1-based)"
// @Param        page_size  query  int  false  "page size"
// @Success      200  {object}  response.APIResponse[badgeListData]
// @Router       /api/badges [get]
func ApiBadgeList(badges *badgesvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		shop := mw.ShopFromContext(c)
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "50"))

		entries, total, err := badges.List(c.Request.Context(), shop, page, pageSize)
		if err != nil {
			writeBadgeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(badgeListData{Items: entries, Total: total, Page: page}))
	}
}

type badgeListData struct {
	Items []badgesvc.ListEntry `json:"items"`
	Total int                  `json:"total"`
	Page  int                  `json:"page"`
}

// @Summary      Assign a badge
// @Description  Put a badge on every variant of a product matching an option value
// @Tags         Badges
// @Accept       json
// @Produce      json
// @Param        body  body  assignBadgeRequest  true  "assignment"
// @Success      200  {object}  response.APIResponse[map[string]int]
// @Failure      403  {object}  response.APIResponse[limitExceededData]
// @Router       /api/badges [post]
func ApiBadgeAssign(badges *badgesvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		shop := mw.ShopFromContext(c)
		var req assignBadgeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		n, err := badges.Assign(c.Request.Context(), shop, req.ProductID, req.OptionValue, req.BadgeType)
		if err != nil {
			writeBadgeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(map[string]int{"variants_updated": n}))
	}
}

// @Summary      Remove a badge
// @Tags         Badges
// @Accept       json
// @Produce      json
// @Param        body  body  removeBadgeRequest  true  "removal"
// @Success      200  {object}  response.APIResponse[map[string]int]
// @Router       /api/badges [delete]
func ApiBadgeRemove(badges *badgesvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		shop := mw.ShopFromContext(c)
		var req removeBadgeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		n, err := badges.Remove(c.Request.Context(), shop, req.ProductID, req.OptionValue)
		if err != nil {
			writeBadgeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(map[string]int{"variants_removed": n}))
	}
}

// @Summary      Bulk assign or remove badges
// @Tags         Badges
// @Accept       json
// @Produce      json
// @Success      200  {object}  response.APIResponse[[]badge.BulkItemResult]
// @Router       /api/badges/bulk [post]
func ApiBadgeBulk(badges *badgesvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		shop := mw.ShopFromContext(c)
		var items []badgesvc.BulkItem
		if err := c.ShouldBindJSON(&items); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(badges.BulkApply(c.Request.Context(), shop, items)))
	}
}

// @Summary      Plan limit status
// @Description  Whether the shop can still badge a new product under its plan
// @Tags         Badges
// @Produce      json
// @Success      200  {object}  response.APIResponse[types.LimitCheck]
// @Router       /api/badges/limit [get]
func ApiBadgeLimit(plans *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		shop := mw.ShopFromContext(c)
		c.JSON(http.StatusOK, response.OKT(plans.CanAssign(c.Request.Context(), shop, 0)))
	}
}

func RegisterBadgeRoutes(r gin.IRouter, badges *badgesvc.Service, plans *subsvc.Service) {
	r.GET("/badges", ApiBadgeList(badges))
	r.POST("/badges", ApiBadgeAssign(badges))
	r.DELETE("/badges", ApiBadgeRemove(badges))
	r.POST("/badges/bulk", ApiBadgeBulk(badges))
	r.GET("/badges/limit", ApiBadgeLimit(plans))
}
