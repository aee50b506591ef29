package dto

import (
	"time"

	"gamify_toolkit/internal/model"
)

// GameCreateReq 创建游戏请求
type GameCreateReq struct {
	Title        string   `json:"title" binding:"required"`
	Description  string   `json:"description"`
	GameURL      string   `json:"gameUrl" binding:"required,url"`
	ThumbnailURL string   `json:"thumbnailUrl"`
	Width        int      `json:"width"`
	Height       int      `json:"height"`
	Tags         []string `json:"tags"`
}

// GameResp 游戏响应
type GameResp struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	GameURL        string     `json:"gameUrl"`
	ThumbnailURL   string     `json:"thumbnailUrl"`
	Width          int        `json:"width"`
	Height         int        `json:"height"`
	Tags           []string   `json:"tags"`
	EmbedStatus    int        `json:"embed_status"`
	EmbedCheckedAt *time.Time `json:"embed_checked_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// GameListResp 游戏列表
type GameListResp struct {
	Games []GameResp `json:"games"`
}

// NewGameResp 模型转响应
func NewGameResp(g *model.Game) GameResp {
	return GameResp{
		ID:             g.ID,
		Title:          g.Title,
		Description:    g.Description,
		GameURL:        g.GameURL,
		ThumbnailURL:   g.ThumbnailURL,
		Width:          g.Width,
		Height:         g.Height,
		Tags:           g.Tags,
		EmbedStatus:    g.EmbedStatus,
		EmbedCheckedAt: g.EmbedCheckedAt,
		CreatedAt:      g.CreatedAt,
	}
}
