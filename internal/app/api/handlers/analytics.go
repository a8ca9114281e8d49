package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	mw "github.com/badgeworks/variantbadges/internal/app/api/middleware"
	analyticssvc "github.com/badgeworks/variantbadges/internal/app/service/analytics"
	"github.com/badgeworks/variantbadges/pkg/response"
)

// @Summary      Analytics summary
// @Description  Per-badge funnel and daily series for the trailing window
// @Tags         Analytics
// @Produce      json
// @Param        days  query  int  false  "window in days (default 30)"
// @Success      200  {object}  response.APIResponse[analytics.Summary]
// @Router       /api/analytics/summary [get]
func ApiAnalyticsSummary(events *analyticssvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		shop := mw.ShopFromContext(c)
		days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))
		summary, err := events.Summarize(c.Request.Context(), shop, days)
		if err != nil {
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(summary))
	}
}

func RegisterAnalyticsRoutes(r gin.IRouter, events *analyticssvc.Service) {
	r.GET("/analytics/summary", ApiAnalyticsSummary(events))
}
