package service

import (
	"context"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gamify_toolkit/internal/model"
	"gamify_toolkit/internal/repository"
)

func setupTrackingTest(t *testing.T) (*TrackingService, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&model.AppSettings{}, &model.GameAnalytics{}); err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}

	settingsSvc := NewSettingsService(repository.NewAppSettingsRepository(db))
	svc := NewTrackingService(settingsSvc, repository.NewGameAnalyticsRepository(db))
	return svc, db
}

func bucketRow(t *testing.T, db *gorm.DB, shop, gameID string) *model.GameAnalytics {
	var row model.GameAnalytics
	err := db.Where("shop = ? AND game_id = ?", shop, gameID).First(&row).Error
	if err != nil {
		t.Fatalf("查询天桶失败: %v", err)
	}
	return &row
}

func bucketCount(db *gorm.DB) int64 {
	var count int64
	db.Model(&model.GameAnalytics{}).Count(&count)
	return count
}

const (
	trackShop = "demo.myshopify.com"
	trackGame = "11111111-1111-1111-1111-111111111111"
)

func TestTracking_Record_ImpressionDefaultOpen(t *testing.T) {
	svc, db := setupTrackingTest(t)
	ctx := context.Background()

	// 没有设置行时按全部开启处理
	tracked, err := svc.Record(ctx, trackShop, trackGame, model.MetricImpression, nil)
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if !tracked {
		t.Fatal("tracked = false, 期望 true")
	}

	row := bucketRow(t, db, trackShop, trackGame)
	if row.Impressions != 1 {
		t.Errorf("Impressions = %d, 期望 1", row.Impressions)
	}
}

func TestTracking_Record_GatedMetricSkipsBucket(t *testing.T) {
	svc, db := setupTrackingTest(t)
	ctx := context.Background()

	if _, err := svc.settings.Upsert(ctx, trackShop, true, false, true); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	tracked, err := svc.Record(ctx, trackShop, trackGame, model.MetricPlay, nil)
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if tracked {
		t.Error("tracked = true, 期望门控关闭返回 false")
	}

	// 门控关闭时不创建天桶
	if got := bucketCount(db); got != 0 {
		t.Errorf("天桶行数 = %d, 期望 0", got)
	}
}

func TestTracking_Record_PlaytimeValue(t *testing.T) {
	svc, db := setupTrackingTest(t)
	ctx := context.Background()

	// JSON 解码出来的数字是 float64
	tracked, err := svc.Record(ctx, trackShop, trackGame, model.MetricPlaytime, float64(90))
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if !tracked {
		t.Fatal("tracked = false, 期望 true")
	}

	row := bucketRow(t, db, trackShop, trackGame)
	if row.TotalPlaytimeSeconds != 90 {
		t.Errorf("TotalPlaytimeSeconds = %d, 期望 90", row.TotalPlaytimeSeconds)
	}
}

func TestTracking_Record_PlaytimeInvalidValue(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
	}{
		{"缺失", nil},
		{"非数字", "ninety"},
		{"负数", float64(-5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, db := setupTrackingTest(t)
			ctx := context.Background()

			tracked, err := svc.Record(ctx, trackShop, trackGame, model.MetricPlaytime, tt.value)
			if err != nil {
				t.Fatalf("Record() error = %v", err)
			}
			if tracked {
				t.Error("tracked = true, 期望 false")
			}

			// 天桶已创建但计数器不动
			row := bucketRow(t, db, trackShop, trackGame)
			if row.TotalPlaytimeSeconds != 0 || row.Impressions != 0 || row.Plays != 0 {
				t.Errorf("计数器 = %d/%d/%d, 期望全 0",
					row.Impressions, row.Plays, row.TotalPlaytimeSeconds)
			}
		})
	}
}

func TestTracking_Record_UnknownType(t *testing.T) {
	svc, db := setupTrackingTest(t)
	ctx := context.Background()

	tracked, err := svc.Record(ctx, trackShop, trackGame, "hover", nil)
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if tracked {
		t.Error("tracked = true, 期望未知指标返回 false")
	}

	// 未知指标不受开关约束，桶照建，计数器不动
	row := bucketRow(t, db, trackShop, trackGame)
	if row.Impressions != 0 || row.Plays != 0 || row.TotalPlaytimeSeconds != 0 {
		t.Error("未知指标不应改动计数器")
	}
}

func TestTracking_Record_SameDaySharesBucket(t *testing.T) {
	svc, db := setupTrackingTest(t)
	ctx := context.Background()

	// 固定时间源，同一天内的事件共用一个桶
	fixed := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	if _, err := svc.Record(ctx, trackShop, trackGame, model.MetricImpression, nil); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	svc.now = func() time.Time { return fixed.Add(8 * time.Hour) }
	if _, err := svc.Record(ctx, trackShop, trackGame, model.MetricPlay, nil); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	if got := bucketCount(db); got != 1 {
		t.Fatalf("天桶行数 = %d, 期望同一天共用 1 行", got)
	}

	// 跨天落入新桶
	svc.now = func() time.Time { return fixed.AddDate(0, 0, 1) }
	if _, err := svc.Record(ctx, trackShop, trackGame, model.MetricImpression, nil); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if got := bucketCount(db); got != 2 {
		t.Fatalf("天桶行数 = %d, 期望跨天后 2 行", got)
	}
}
