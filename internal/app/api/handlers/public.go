package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	analyticssvc "github.com/badgeworks/variantbadges/internal/app/service/analytics"
	badgesvc "github.com/badgeworks/variantbadges/internal/app/service/badge"
	cfgpkg "github.com/badgeworks/variantbadges/pkg/config"
	"github.com/badgeworks/variantbadges/pkg/types"
)

// CORSMiddleware opens the public endpoints to storefront origins. The
// storefront script runs on arbitrary merchant domains, so the origin list
// cannot be known in advance.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// ApiPublicProductBadges serves the storefront read for one product. The
// body shape is a stable contract with the theme script, so it is emitted
// directly rather than through the admin envelope.
func ApiPublicProductBadges(cfg *cfgpkg.Config, badges *badgesvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		shop := c.Query("shop")
		productID, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if shop == "" || err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "shop and product id are required"})
			return
		}
		out, err := badges.ProductBadges(c.Request.Context(), shop, productID)
		if err != nil {
			// The storefront renders without badges rather than breaking.
			c.JSON(http.StatusOK, &badgesvc.PublicBadges{Badges: map[string]types.BadgeType{}})
			return
		}
		c.Header("Cache-Control", fmt.Sprintf("public, max-age=%d", cfg.PublicCacheMaxAge))
		c.JSON(http.StatusOK, out)
	}
}

// ApiPublicAllBadges serves the shop-wide variant map for collection pages.
func ApiPublicAllBadges(cfg *cfgpkg.Config, badges *badgesvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		shop := c.Query("shop")
		if shop == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "shop is required"})
			return
		}
		all, err := badges.AllBadges(c.Request.Context(), shop)
		if err != nil {
			c.JSON(http.StatusOK, gin.H{"badges": gin.H{}})
			return
		}
		c.Header("Cache-Control", fmt.Sprintf("public, max-age=%d", cfg.PublicCacheMaxAge))
		c.JSON(http.StatusOK, gin.H{"badges": all})
	}
}

type trackRequest struct {
	Shop string `json:"shop"`
	analyticssvc.Event
}

// ApiPublicTrack records a storefront beacon. Always 200: tracking failures
// must never surface on the storefront.
func ApiPublicTrack(events *analyticssvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req trackRequest
		if err := c.ShouldBindJSON(&req); err == nil && req.Shop != "" {
			events.Track(c.Request.Context(), req.Shop, req.Event)
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

func RegisterPublicRoutes(r gin.IRouter, cfg *cfgpkg.Config, badges *badgesvc.Service, events *analyticssvc.Service) {
	r.Use(CORSMiddleware())
	r.GET("/badges/product/:id", ApiPublicProductBadges(cfg, badges))
	r.GET("/badges", ApiPublicAllBadges(cfg, badges))
	r.POST("/analytics/track", ApiPublicTrack(events))
}
