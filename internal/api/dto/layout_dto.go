package dto

import (
	"encoding/json"
	"time"

	"gamify_toolkit/internal/model"
)

// LayoutSaveReq 创建/更新布局请求
// Elements 是编辑器提交的元素集合 JSON，解析与修正在 service 层完成
type LayoutSaveReq struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Elements    json.RawMessage `json:"elements"`
	IsDefault   bool            `json:"isDefault"`
}

// LayoutResp 布局响应，元素集合已解码
type LayoutResp struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Elements    []model.InputElement `json:"elements"`
	IsDefault   bool                 `json:"isDefault"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// LayoutListResp 布局列表
type LayoutListResp struct {
	Layouts []LayoutResp `json:"layouts"`
}

// StorefrontLayout 前台取用的精简布局
type StorefrontLayout struct {
	ID       string               `json:"id"`
	Name     string               `json:"name"`
	Elements []model.InputElement `json:"elements"`
}

// StorefrontLayoutResp 前台响应，找不到布局时 Layout 为 null（不是错误）
type StorefrontLayoutResp struct {
	Layout *StorefrontLayout `json:"layout"`
}
