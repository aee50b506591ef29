package model

import "time"

// 指标类型
const (
	MetricImpression = "impression"
	MetricPlay       = "play"
	MetricPlaytime   = "playtime"
)

// GameAnalytics 按 (店铺, 游戏, 自然日) 聚合的计数器
// 事件首次到达时懒创建，联合唯一索引保证同一天桶只有一行，
// 并发首次写入靠 ON CONFLICT DO NOTHING 消解
type GameAnalytics struct {
	BaseModel

	Shop   string    `gorm:"size:255;not null;uniqueIndex:idx_shop_game_date"`
	GameID string    `gorm:"type:uuid;not null;uniqueIndex:idx_shop_game_date;index"`
	Date   time.Time `gorm:"not null;uniqueIndex:idx_shop_game_date"`

	Impressions          int64 `gorm:"default:0"`
	Plays                int64 `gorm:"default:0"`
	TotalPlaytimeSeconds int64 `gorm:"default:0"`
}

func (GameAnalytics) TableName() string {
	return "game_analytics"
}

// DayBucket 把时间截断到本地零点，作为天桶键
func DayBucket(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
