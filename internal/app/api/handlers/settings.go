package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	mw "github.com/badgeworks/variantbadges/internal/app/api/middleware"
	settingssvc "github.com/badgeworks/variantbadges/internal/app/service/settings"
	"github.com/badgeworks/variantbadges/internal/models"
	"github.com/badgeworks/variantbadges/pkg/response"
)

type settingsData struct {
	Settings      *models.Settings `json:"settings"`
	RemovedBadges int64            `json:"removed_badges,omitempty"`
}

// @Summary      Get settings
// @Tags         Settings
// @Produce      json
// @Success      200  {object}  response.APIResponse[settingsData]
// @Router       /api/settings [get]
func ApiSettingsGet(svc *settingssvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		shop := mw.ShopFromContext(c)
		row, err := svc.Get(c.Request.Context(), shop)
		if err != nil {
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(settingsData{Settings: row}))
	}
}

// @Summary      Update settings
// @Description  Changing the selected option name clears all badge assignments
// @Tags         Settings
// @Accept       json
// @Produce      json
// @Param        body  body  settings.Patch  true  "fields to change"
// @Success      200  {object}  response.APIResponse[settingsData]
// @Router       /api/settings [put]
func ApiSettingsUpdate(svc *settingssvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		shop := mw.ShopFromContext(c)
		var patch settingssvc.Patch
		if err := c.ShouldBindJSON(&patch); err != nil {
			c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		row, removed, err := svc.Update(c.Request.Context(), shop, patch)
		if err != nil {
			c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, response.OKT(settingsData{Settings: row, RemovedBadges: removed}))
	}
}

func RegisterSettingsRoutes(r gin.IRouter, svc *settingssvc.Service) {
	r.GET("/settings", ApiSettingsGet(svc))
	r.PUT("/settings", ApiSettingsUpdate(svc))
	r.PATCH("/settings", ApiSettingsUpdate(svc))
}
