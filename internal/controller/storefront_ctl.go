package controller

import (
	"net/http"

	"gamify_toolkit/internal/api/dto"
	"gamify_toolkit/internal/service"

	"github.com/gin-gonic/gin"
)

// StorefrontController 店铺前台开放接口
// 由游戏嵌入页跨域调用，不走会话认证
type StorefrontController struct {
	layoutSvc   *service.LayoutService
	trackingSvc *service.TrackingService
}

func NewStorefrontController(layoutSvc *service.LayoutService, trackingSvc *service.TrackingService) *StorefrontController {
	return &StorefrontController{
		layoutSvc:   layoutSvc,
		trackingSvc: trackingSvc,
	}
}

// GetLayout 前台获取触控布局
// @Summary 前台获取触控布局
// @Description 按 layoutId 获取布局；layoutId 缺省或为 "default" 时取店铺默认布局；找不到时返回 null 布局
// @Tags Storefront (店铺前台)
// @Produce json
// @Param shop query string true "店铺域名"
// @Param layoutId query string false "布局ID"
// @Success 200 {object} dto.StorefrontLayoutResp "布局"
// @Failure 400 {object} map[string]string "缺少店铺参数"
// @Failure 500 {object} map[string]string "查询失败"
// @Router /api/v1/storefront/layout [get]
func (c *StorefrontController) GetLayout(ctx *gin.Context) {
	shop := ctx.Query("shop")
	if shop == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Missing shop parameter"})
		return
	}

	layout, err := c.layoutSvc.ResolveForStorefront(ctx.Request.Context(), shop, ctx.Query("layoutId"))
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, dto.StorefrontLayoutResp{Layout: layout})
}

// Track 前台埋点上报
// @Summary 前台埋点上报
// @Description 上报曝光/开玩/时长指标；被设置关闭的指标返回 tracked=false 而不是错误
// @Tags Storefront (店铺前台)
// @Accept json
// @Produce json
// @Param request body dto.TrackReq true "埋点参数"
// @Success 200 {object} dto.TrackResp "上报结果"
// @Failure 400 {object} map[string]string "缺少必填字段"
// @Failure 500 {object} map[string]string "上报失败"
// @Router /api/v1/storefront/track [post]
func (c *StorefrontController) Track(ctx *gin.Context) {
	var req dto.TrackReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}

	if req.Shop == "" || req.GameID == "" || req.Type == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	tracked, err := c.trackingSvc.Record(ctx.Request.Context(), req.Shop, req.GameID, req.Type, req.Value)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, dto.TrackResp{Success: true, Tracked: tracked})
}
