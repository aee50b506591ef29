package controller

import (
	"net/http"

	"gamify_toolkit/internal/middleware"
	"gamify_toolkit/internal/service"

	"github.com/gin-gonic/gin"
)

type StatsController struct {
	statsSvc *service.StatsService
}

func NewStatsController(statsSvc *service.StatsService) *StatsController {
	return &StatsController{
		statsSvc: statsSvc,
	}
}

// GetStatistics 获取统计数据
// @Summary 获取统计数据
// @Description 按游戏聚合曝光、开玩、时长，并附带店铺整体指标
// @Tags Stats (数据统计)
// @Produce json
// @Success 200 {object} dto.StatisticsResp "统计结果"
// @Failure 500 {object} map[string]string "查询失败"
// @Router /app/v1/statistics [get]
func (c *StatsController) GetStatistics(ctx *gin.Context) {
	shop := middleware.GetShop(ctx)

	resp, err := c.statsSvc.Statistics(ctx.Request.Context(), shop)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// GetDashboard 获取首页概览
// @Summary 获取首页概览
// @Description 游戏数量、最近添加的游戏和累计指标
// @Tags Stats (数据统计)
// @Produce json
// @Success 200 {object} dto.DashboardResp "概览数据"
// @Failure 500 {object} map[string]string "查询失败"
// @Router /app/v1/dashboard [get]
func (c *StatsController) GetDashboard(ctx *gin.Context) {
	shop := middleware.GetShop(ctx)

	resp, err := c.statsSvc.Dashboard(ctx.Request.Context(), shop)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, resp)
}
