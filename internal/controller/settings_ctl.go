package controller

import (
	"net/http"

	"gamify_toolkit/internal/api/dto"
	"gamify_toolkit/internal/middleware"
	"gamify_toolkit/internal/service"

	"github.com/gin-gonic/gin"
)

type SettingsController struct {
	settingsSvc *service.SettingsService
}

func NewSettingsController(settingsSvc *service.SettingsService) *SettingsController {
	return &SettingsController{
		settingsSvc: settingsSvc,
	}
}

// GetSettings 获取追踪设置
// @Summary 获取追踪设置
// @Description 获取店铺的埋点开关；首次访问时自动创建全开的默认设置
// @Tags Settings (追踪设置)
// @Produce json
// @Success 200 {object} dto.SettingsResp "当前设置"
// @Failure 500 {object} map[string]string "查询失败"
// @Router /app/v1/settings [get]
func (c *SettingsController) GetSettings(ctx *gin.Context) {
	shop := middleware.GetShop(ctx)

	settings, err := c.settingsSvc.GetOrCreate(ctx.Request.Context(), shop)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSettingsResp(settings))
}

// UpdateSettings 更新追踪设置
// @Summary 更新追踪设置
// @Description 覆盖写入三个埋点开关，三个字段必须同时提交
// @Tags Settings (追踪设置)
// @Accept json
// @Produce json
// @Param request body dto.SettingsUpsertReq true "设置参数"
// @Success 200 {object} dto.SettingsResp "更新后的设置"
// @Failure 400 {object} map[string]string "参数错误"
// @Failure 500 {object} map[string]string "更新失败"
// @Router /app/v1/settings [put]
func (c *SettingsController) UpdateSettings(ctx *gin.Context) {
	shop := middleware.GetShop(ctx)

	var req dto.SettingsUpsertReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}

	settings, err := c.settingsSvc.Upsert(ctx.Request.Context(), shop,
		*req.TrackImpressions, *req.TrackPlays, *req.TrackPlaytime)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSettingsResp(settings))
}
