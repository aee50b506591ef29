package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gamify_toolkit/internal/model"
)

// ==================== 接口定义 ====================

// AppSettingsRepository 店铺设置仓储接口
// 记录缺失是正常状态（等价于全部开启），由 service 决定是否物化默认值
type AppSettingsRepository interface {
	Get(ctx context.Context, shop string) (*model.AppSettings, error)
	CreateIfAbsent(ctx context.Context, settings *model.AppSettings) error
	Upsert(ctx context.Context, settings *model.AppSettings) error
}

// ==================== 仓储实现 ====================

type appSettingsRepo struct {
	db *gorm.DB
}

// NewAppSettingsRepository 创建设置仓储
func NewAppSettingsRepository(db *gorm.DB) AppSettingsRepository {
	return &appSettingsRepo{db: db}
}

func (r *appSettingsRepo) Get(ctx context.Context, shop string) (*model.AppSettings, error) {
	var settings model.AppSettings
	err := r.db.WithContext(ctx).
		Where("shop = ?", shop).
		First(&settings).Error
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// CreateIfAbsent 物化默认设置
// 并发物化同一店铺时靠 shop 唯一索引 + DO NOTHING 保证单行
func (r *appSettingsRepo) CreateIfAbsent(ctx context.Context, settings *model.AppSettings) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "shop"}},
			DoNothing: true,
		}).
		Create(settings).Error
}

// Upsert 三个开关整体覆盖写入，没有部分合并语义
func (r *appSettingsRepo) Upsert(ctx context.Context, settings *model.AppSettings) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "shop"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"track_impressions", "track_plays", "track_playtime", "updated_at",
			}),
		}).
		Create(settings).Error
}
