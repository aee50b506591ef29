package model

import (
	"time"

	"github.com/lib/pq"
)

// 嵌入探测状态常量
const (
	GameEmbedUnknown     = 0 // 未探测
	GameEmbedOK          = 1 // 可嵌入
	GameEmbedBlocked     = 2 // 被 X-Frame-Options / CSP 拒绝
	GameEmbedUnreachable = 3 // 无法访问
)

// 示例游戏，店铺首次打开游戏列表且为空时自动播种
const (
	ExampleGameTitle       = "2048 - Example Game"
	ExampleGameDescription = "A fun puzzle game where you combine tiles to reach 2048! This is a free example game you can try."
	ExampleGameURL         = "https://play2048.co/"
)

// Game 店铺嵌入的 WebGL 游戏
type Game struct {
	BaseModel

	// 多店铺隔离核心，所有查询必须带 shop 条件
	Shop string `gorm:"size:255;index;not null"`

	Title        string `gorm:"size:255;not null"`
	Description  string `gorm:"type:text"`
	GameURL      string `gorm:"size:255;not null"`
	ThumbnailURL string `gorm:"size:255"`

	// 展示尺寸（像素），创建时非正值回退到 800x600
	Width  int `gorm:"default:800"`
	Height int `gorm:"default:600"`

	// 分类标签 (Postgres Array)
	Tags pq.StringArray `gorm:"type:text[]"`

	// 嵌入探测结果（游戏必须允许 iframe 嵌入才能在前台展示）
	EmbedStatus    int `gorm:"default:0"`
	EmbedCheckedAt *time.Time
}

func (Game) TableName() string {
	return "games"
}

// ExampleGame 构造示例游戏
func ExampleGame(shop string) *Game {
	return &Game{
		Shop:        shop,
		Title:       ExampleGameTitle,
		Description: ExampleGameDescription,
		GameURL:     ExampleGameURL,
		Width:       800,
		Height:      600,
	}
}
