package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"gamify_toolkit/internal/model"
	"gamify_toolkit/internal/repository"
)

// SettingsService 店铺统计开关
// 没有设置行等价于"全部开启"，这是策略层的 fail-open 默认，
// 调用方不需要在各处自己做空值兜底
type SettingsService struct {
	settingsRepo repository.AppSettingsRepository
}

// NewSettingsService 创建设置服务
func NewSettingsService(settingsRepo repository.AppSettingsRepository) *SettingsService {
	return &SettingsService{settingsRepo: settingsRepo}
}

// GetOrCreate 读取店铺设置，不存在则物化默认值（全部开启）
func (s *SettingsService) GetOrCreate(ctx context.Context, shop string) (*model.AppSettings, error) {
	settings, err := s.settingsRepo.Get(ctx, shop)
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if err := s.settingsRepo.CreateIfAbsent(ctx, model.DefaultSettings(shop)); err != nil {
		return nil, err
	}
	// 并发物化时可能由别的请求落库，统一回读
	return s.settingsRepo.Get(ctx, shop)
}

// Upsert 三个开关整体覆盖
func (s *SettingsService) Upsert(ctx context.Context, shop string, impressions, plays, playtime bool) (*model.AppSettings, error) {
	settings := &model.AppSettings{
		Shop:             shop,
		TrackImpressions: impressions,
		TrackPlays:       plays,
		TrackPlaytime:    playtime,
	}
	if err := s.settingsRepo.Upsert(ctx, settings); err != nil {
		return nil, err
	}
	return s.settingsRepo.Get(ctx, shop)
}

// IsTracked 指定指标是否允许记录
// 设置行缺失时不物化，直接按全部开启处理
func (s *SettingsService) IsTracked(ctx context.Context, shop, metricType string) (bool, error) {
	settings, err := s.settingsRepo.Get(ctx, shop)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return true, nil
		}
		return false, err
	}
	return settings.Allows(metricType), nil
}
