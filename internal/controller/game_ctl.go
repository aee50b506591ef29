package controller

import (
	"errors"
	"io"
	"net/http"

	"gamify_toolkit/internal/api/dto"
	"gamify_toolkit/internal/middleware"
	"gamify_toolkit/internal/service"

	"github.com/gin-gonic/gin"
)

// 缩略图大小上限 5MB
const maxThumbnailSize = 5 << 20

type GameController struct {
	gameSvc *service.GameService
	storage service.StorageProvider
}

func NewGameController(gameSvc *service.GameService, storage service.StorageProvider) *GameController {
	return &GameController{
		gameSvc: gameSvc,
		storage: storage,
	}
}

// ListGames 获取游戏列表
// @Summary 获取游戏列表
// @Description 查询当前店铺的全部游戏；店铺还没有游戏时自动补一条示例游戏
// @Tags Game (游戏管理)
// @Produce json
// @Success 200 {object} dto.GameListResp "游戏列表"
// @Failure 500 {object} map[string]string "服务器错误"
// @Router /app/v1/games [get]
func (c *GameController) ListGames(ctx *gin.Context) {
	shop := middleware.GetShop(ctx)

	games, err := c.gameSvc.List(ctx.Request.Context(), shop)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := dto.GameListResp{Games: make([]dto.GameResp, 0, len(games))}
	for i := range games {
		resp.Games = append(resp.Games, dto.NewGameResp(&games[i]))
	}

	ctx.JSON(http.StatusOK, resp)
}

// GetGame 获取游戏详情
// @Summary 获取游戏详情
// @Tags Game (游戏管理)
// @Produce json
// @Param id path string true "游戏ID"
// @Success 200 {object} dto.GameResp "游戏详情"
// @Failure 404 {object} map[string]string "游戏不存在"
// @Failure 500 {object} map[string]string "查询失败"
// @Router /app/v1/games/{id} [get]
func (c *GameController) GetGame(ctx *gin.Context) {
	shop := middleware.GetShop(ctx)

	game, err := c.gameSvc.Get(ctx.Request.Context(), shop, ctx.Param("id"))
	if err != nil {
		respondGameError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewGameResp(game))
}

// CreateGame 创建游戏
// @Summary 创建游戏
// @Description 添加可嵌入的游戏，宽高缺省为 800x600
// @Tags Game (游戏管理)
// @Accept json
// @Produce json
// @Param request body dto.GameCreateReq true "游戏参数"
// @Success 201 {object} dto.GameResp "创建结果"
// @Failure 400 {object} map[string]string "参数错误"
// @Failure 500 {object} map[string]string "创建失败"
// @Router /app/v1/games [post]
func (c *GameController) CreateGame(ctx *gin.Context) {
	shop := middleware.GetShop(ctx)

	var req dto.GameCreateReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "参数错误: " + err.Error()})
		return
	}

	game, err := c.gameSvc.Create(ctx.Request.Context(), shop, req)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewGameResp(game))
}

// DeleteGame 删除游戏
// @Summary 删除游戏
// @Description 删除游戏记录；历史统计数据保留
// @Tags Game (游戏管理)
// @Produce json
// @Param id path string true "游戏ID"
// @Success 200 {object} map[string]string "{"message": "删除成功"}"
// @Failure 404 {object} map[string]string "游戏不存在"
// @Failure 500 {object} map[string]string "删除失败"
// @Router /app/v1/games/{id} [delete]
func (c *GameController) DeleteGame(ctx *gin.Context) {
	shop := middleware.GetShop(ctx)

	if err := c.gameSvc.Delete(ctx.Request.Context(), shop, ctx.Param("id")); err != nil {
		respondGameError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "删除成功"})
}

// ProbeEmbed 检测游戏可嵌入性
// @Summary 检测游戏可嵌入性
// @Description 请求游戏地址并检查 X-Frame-Options / CSP frame-ancestors 响应头
// @Tags Game (游戏管理)
// @Produce json
// @Param id path string true "游戏ID"
// @Success 200 {object} dto.GameResp "检测结果"
// @Failure 404 {object} map[string]string "游戏不存在"
// @Failure 429 {object} map[string]string "操作冷却中"
// @Failure 500 {object} map[string]string "检测失败"
// @Router /app/v1/games/{id}/probe [post]
func (c *GameController) ProbeEmbed(ctx *gin.Context) {
	shop := middleware.GetShop(ctx)

	game, err := c.gameSvc.ProbeEmbed(ctx.Request.Context(), shop, ctx.Param("id"))
	if err != nil {
		respondGameError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewGameResp(game))
}

// UploadThumbnail 上传游戏缩略图
// @Summary 上传游戏缩略图
// @Description 上传缩略图文件并更新游戏记录
// @Tags Game (游戏管理)
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "游戏ID"
// @Param file formData file true "缩略图文件"
// @Success 200 {object} map[string]string "{"thumbnailUrl": "..."}"
// @Failure 400 {object} map[string]string "参数错误"
// @Failure 404 {object} map[string]string "游戏不存在"
// @Failure 500 {object} map[string]string "上传失败"
// @Router /app/v1/games/{id}/thumbnail [post]
func (c *GameController) UploadThumbnail(ctx *gin.Context) {
	shop := middleware.GetShop(ctx)
	id := ctx.Param("id")

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "未提供文件"})
		return
	}
	if fileHeader.Size > maxThumbnailSize {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "文件超过 5MB 限制"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "读取文件失败"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "读取文件失败"})
		return
	}

	url, err := c.storage.Upload(ctx.Request.Context(), data, fileHeader.Filename, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "上传失败: " + err.Error()})
		return
	}

	if err := c.gameSvc.SetThumbnail(ctx.Request.Context(), shop, id, url); err != nil {
		respondGameError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"thumbnailUrl": url})
}

func respondGameError(ctx *gin.Context, err error) {
	if errors.Is(err, service.ErrNotFound) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "游戏不存在"})
		return
	}
	ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
