package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"gamify_toolkit/internal/model"
)

// ==================== 接口定义 ====================

// GameRepository 游戏仓储接口
type GameRepository interface {
	Create(ctx context.Context, game *model.Game) error
	GetByID(ctx context.Context, shop, id string) (*model.Game, error)
	List(ctx context.Context, shop string) ([]model.Game, error)
	ListRecent(ctx context.Context, shop string, limit int) ([]model.Game, error)
	Count(ctx context.Context, shop string) (int64, error)
	UpdateFields(ctx context.Context, shop, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, shop, id string) error

	// ListStaleEmbedChecks 跨店铺查询需要重新探测嵌入能力的游戏
	ListStaleEmbedChecks(ctx context.Context, before time.Time, limit int) ([]model.Game, error)
}

// ==================== 仓储实现 ====================

type gameRepo struct {
	db *gorm.DB
}

// NewGameRepository 创建游戏仓储
func NewGameRepository(db *gorm.DB) GameRepository {
	return &gameRepo{db: db}
}

func (r *gameRepo) Create(ctx context.Context, game *model.Game) error {
	return r.db.WithContext(ctx).Create(game).Error
}

func (r *gameRepo) GetByID(ctx context.Context, shop, id string) (*model.Game, error) {
	var game model.Game
	err := r.db.WithContext(ctx).
		Where("id = ? AND shop = ?", id, shop).
		First(&game).Error
	if err != nil {
		return nil, err
	}
	return &game, nil
}

func (r *gameRepo) List(ctx context.Context, shop string) ([]model.Game, error) {
	var games []model.Game
	err := r.db.WithContext(ctx).
		Where("shop = ?", shop).
		Order("created_at DESC").
		Find(&games).Error
	return games, err
}

func (r *gameRepo) ListRecent(ctx context.Context, shop string, limit int) ([]model.Game, error) {
	var games []model.Game
	err := r.db.WithContext(ctx).
		Where("shop = ?", shop).
		Order("created_at DESC").
		Limit(limit).
		Find(&games).Error
	return games, err
}

func (r *gameRepo) Count(ctx context.Context, shop string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Game{}).
		Where("shop = ?", shop).
		Count(&count).Error
	return count, err
}

func (r *gameRepo) UpdateFields(ctx context.Context, shop, id string, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).
		Model(&model.Game{}).
		Where("id = ? AND shop = ?", id, shop).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *gameRepo) ListStaleEmbedChecks(ctx context.Context, before time.Time, limit int) ([]model.Game, error) {
	var games []model.Game
	err := r.db.WithContext(ctx).
		Where("embed_checked_at IS NULL OR embed_checked_at < ?", before).
		Order("embed_checked_at ASC NULLS FIRST").
		Limit(limit).
		Find(&games).Error
	return games, err
}

func (r *gameRepo) Delete(ctx context.Context, shop, id string) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND shop = ?", id, shop).
		Delete(&model.Game{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
