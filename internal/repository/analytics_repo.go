package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gamify_toolkit/internal/model"
)

// ==================== 接口定义 ====================

// GameAnalyticsRepository 游戏统计仓储接口
// 写入路径全部是相对增量：先 EnsureBucket 保证天桶存在，
// 再用 col = col + ? 累加，并发计数不会丢更新
type GameAnalyticsRepository interface {
	EnsureBucket(ctx context.Context, shop, gameID string, day time.Time) error
	AddImpression(ctx context.Context, shop, gameID string, day time.Time) error
	AddPlay(ctx context.Context, shop, gameID string, day time.Time) error
	AddPlaytime(ctx context.Context, shop, gameID string, day time.Time, seconds int64) error

	ListByShop(ctx context.Context, shop string) ([]model.GameAnalytics, error)
	ListByGame(ctx context.Context, shop, gameID string) ([]model.GameAnalytics, error)

	// DayTotals 某个自然日全部店铺的汇总，供快照任务使用
	DayTotals(ctx context.Context, day time.Time) ([]ShopDayTotals, error)
}

// ShopDayTotals 店铺单日汇总
type ShopDayTotals struct {
	Shop                 string `gorm:"column:shop"`
	Impressions          int64  `gorm:"column:impressions"`
	Plays                int64  `gorm:"column:plays"`
	TotalPlaytimeSeconds int64  `gorm:"column:total_playtime_seconds"`
}

// ==================== 仓储实现 ====================

type gameAnalyticsRepo struct {
	db *gorm.DB
}

// NewGameAnalyticsRepository 创建统计仓储
func NewGameAnalyticsRepository(db *gorm.DB) GameAnalyticsRepository {
	return &gameAnalyticsRepo{db: db}
}

// EnsureBucket 懒创建天桶
// 两个请求同时为同一 (shop, game, day) 创建时，唯一索引 + DO NOTHING
// 保证只落一行，冲突按"行已存在"处理而不是报错
func (r *gameAnalyticsRepo) EnsureBucket(ctx context.Context, shop, gameID string, day time.Time) error {
	row := &model.GameAnalytics{
		Shop:   shop,
		GameID: gameID,
		Date:   day,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "shop"}, {Name: "game_id"}, {Name: "date"}},
			DoNothing: true,
		}).
		Create(row).Error
}

func (r *gameAnalyticsRepo) AddImpression(ctx context.Context, shop, gameID string, day time.Time) error {
	return r.increment(ctx, shop, gameID, day, "impressions", 1)
}

func (r *gameAnalyticsRepo) AddPlay(ctx context.Context, shop, gameID string, day time.Time) error {
	return r.increment(ctx, shop, gameID, day, "plays", 1)
}

func (r *gameAnalyticsRepo) AddPlaytime(ctx context.Context, shop, gameID string, day time.Time, seconds int64) error {
	return r.increment(ctx, shop, gameID, day, "total_playtime_seconds", seconds)
}

// increment 相对增量更新，column 只来自上面三个固定调用点
func (r *gameAnalyticsRepo) increment(ctx context.Context, shop, gameID string, day time.Time, column string, delta int64) error {
	return r.db.WithContext(ctx).
		Model(&model.GameAnalytics{}).
		Where("shop = ? AND game_id = ? AND date = ?", shop, gameID, day).
		UpdateColumn(column, gorm.Expr(column+" + ?", delta)).Error
}

func (r *gameAnalyticsRepo) ListByShop(ctx context.Context, shop string) ([]model.GameAnalytics, error) {
	var rows []model.GameAnalytics
	err := r.db.WithContext(ctx).
		Where("shop = ?", shop).
		Order("date DESC").
		Find(&rows).Error
	return rows, err
}

func (r *gameAnalyticsRepo) DayTotals(ctx context.Context, day time.Time) ([]ShopDayTotals, error) {
	var totals []ShopDayTotals
	err := r.db.WithContext(ctx).
		Model(&model.GameAnalytics{}).
		Select("shop, SUM(impressions) AS impressions, SUM(plays) AS plays, SUM(total_playtime_seconds) AS total_playtime_seconds").
		Where("date = ?", day).
		Group("shop").
		Order("shop").
		Scan(&totals).Error
	return totals, err
}

func (r *gameAnalyticsRepo) ListByGame(ctx context.Context, shop, gameID string) ([]model.GameAnalytics, error) {
	var rows []model.GameAnalytics
	err := r.db.WithContext(ctx).
		Where("shop = ? AND game_id = ?", shop, gameID).
		Order("date DESC").
		Find(&rows).Error
	return rows, err
}
