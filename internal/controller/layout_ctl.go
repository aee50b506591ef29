package controller

import (
	"errors"
	"net/http"

	"gamify_toolkit/internal/api/dto"
	"gamify_toolkit/internal/middleware"
	"gamify_toolkit/internal/model"
	"gamify_toolkit/internal/service"

	"github.com/gin-gonic/gin"
)

type LayoutController struct {
	layoutSvc *service.LayoutService
}

func NewLayoutController(layoutSvc *service.LayoutService) *LayoutController {
	return &LayoutController{
		layoutSvc: layoutSvc,
	}
}

// ListLayouts 获取布局列表
// @Summary 获取布局列表
// @Description 查询当前店铺的全部触控布局，按创建时间倒序
// @Tags Layout (触控布局)
// @Produce json
// @Success 200 {object} dto.LayoutListResp "布局列表"
// @Failure 500 {object} map[string]string "服务器错误"
// @Router /app/v1/layouts [get]
func (c *LayoutController) ListLayouts(ctx *gin.Context) {
	shop := middleware.GetShop(ctx)

	layouts, err := c.layoutSvc.List(ctx.Request.Context(), shop)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, dto.LayoutListResp{Layouts: layouts})
}

// GetLayout 获取布局详情
// @Summary 获取布局详情
// @Description 根据布局ID获取元素集合等详细信息
// @Tags Layout (触控布局)
// @Produce json
// @Param id path string true "布局ID"
// @Success 200 {object} dto.LayoutResp "布局详情"
// @Failure 404 {object} map[string]string "布局不存在"
// @Failure 500 {object} map[string]string "查询失败"
// @Router /app/v1/layouts/{id} [get]
func (c *LayoutController) GetLayout(ctx *gin.Context) {
	shop := middleware.GetShop(ctx)

	resp, err := c.layoutSvc.Get(ctx.Request.Context(), shop, ctx.Param("id"))
	if err != nil {
		respondLayoutError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// CreateLayout 创建布局
// @Summary 创建布局
// @Description 创建触控布局；isDefault 为 true 时原默认布局自动降级
// @Tags Layout (触控布局)
// @Accept json
// @Produce json
// @Param request body dto.LayoutSaveReq true "布局参数"
// @Success 201 {object} dto.LayoutResp "创建结果"
// @Failure 400 {object} map[string]string "参数错误"
// @Failure 500 {object} map[string]string "创建失败"
// @Router /app/v1/layouts [post]
func (c *LayoutController) CreateLayout(ctx *gin.Context) {
	shop := middleware.GetShop(ctx)

	var req dto.LayoutSaveReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}

	resp, err := c.layoutSvc.Create(ctx.Request.Context(), shop, req)
	if err != nil {
		respondLayoutError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, resp)
}

// UpdateLayout 更新布局
// @Summary 更新布局
// @Description 更新布局名称、描述与元素集合；isDefault 为 true 时其余布局自动降级
// @Tags Layout (触控布局)
// @Accept json
// @Produce json
// @Param id path string true "布局ID"
// @Param request body dto.LayoutSaveReq true "更新参数"
// @Success 200 {object} dto.LayoutResp "更新结果"
// @Failure 400 {object} map[string]string "参数错误"
// @Failure 404 {object} map[string]string "布局不存在"
// @Failure 500 {object} map[string]string "更新失败"
// @Router /app/v1/layouts/{id} [put]
func (c *LayoutController) UpdateLayout(ctx *gin.Context) {
	shop := middleware.GetShop(ctx)

	var req dto.LayoutSaveReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}

	resp, err := c.layoutSvc.Update(ctx.Request.Context(), shop, ctx.Param("id"), req)
	if err != nil {
		respondLayoutError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// SetDefaultLayout 设为默认布局
// @Summary 设为默认布局
// @Description 将指定布局设为店铺默认，原默认布局同一事务内降级
// @Tags Layout (触控布局)
// @Produce json
// @Param id path string true "布局ID"
// @Success 200 {object} dto.LayoutResp "设置结果"
// @Failure 404 {object} map[string]string "布局不存在"
// @Failure 500 {object} map[string]string "设置失败"
// @Router /app/v1/layouts/{id}/default [post]
func (c *LayoutController) SetDefaultLayout(ctx *gin.Context) {
	shop := middleware.GetShop(ctx)

	resp, err := c.layoutSvc.SetDefault(ctx.Request.Context(), shop, ctx.Param("id"))
	if err != nil {
		respondLayoutError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// DeleteLayout 删除布局
// @Summary 删除布局
// @Description 删除布局；删除默认布局后店铺允许暂时没有默认布局
// @Tags Layout (触控布局)
// @Produce json
// @Param id path string true "布局ID"
// @Success 200 {object} map[string]string "{"message": "删除成功"}"
// @Failure 404 {object} map[string]string "布局不存在"
// @Failure 500 {object} map[string]string "删除失败"
// @Router /app/v1/layouts/{id} [delete]
func (c *LayoutController) DeleteLayout(ctx *gin.Context) {
	shop := middleware.GetShop(ctx)

	if err := c.layoutSvc.Delete(ctx.Request.Context(), shop, ctx.Param("id")); err != nil {
		respondLayoutError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "删除成功"})
}

// respondLayoutError 按错误类型返回状态码
func respondLayoutError(ctx *gin.Context, err error) {
	var vErr *model.ValidationError
	switch {
	case errors.As(err, &vErr):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": vErr.Error()})
	case errors.Is(err, service.ErrNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": "布局不存在"})
	default:
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
