package repository

import (
	"context"
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gamify_toolkit/internal/model"
)

func setupSettingsTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	if err := db.AutoMigrate(&model.AppSettings{}); err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}
	return db
}

func TestSettingsRepo_Get_Missing(t *testing.T) {
	db := setupSettingsTestDB(t)
	repo := NewAppSettingsRepository(db)

	_, err := repo.Get(context.Background(), "demo.myshopify.com")
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("Get() error = %v, 期望 ErrRecordNotFound", err)
	}
}

func TestSettingsRepo_CreateIfAbsent_KeepsFirstRow(t *testing.T) {
	db := setupSettingsTestDB(t)
	repo := NewAppSettingsRepository(db)
	ctx := context.Background()
	shop := "demo.myshopify.com"

	first := model.DefaultSettings(shop)
	if err := repo.CreateIfAbsent(ctx, first); err != nil {
		t.Fatalf("CreateIfAbsent() error = %v", err)
	}

	// 第二次物化被唯一索引挡掉，原有行不被覆盖
	second := model.DefaultSettings(shop)
	second.TrackPlays = false
	if err := repo.CreateIfAbsent(ctx, second); err != nil {
		t.Fatalf("CreateIfAbsent() error = %v", err)
	}

	got, err := repo.Get(ctx, shop)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !got.TrackPlays {
		t.Error("TrackPlays = false, 期望第一行的 true 被保留")
	}

	var count int64
	db.Model(&model.AppSettings{}).Count(&count)
	if count != 1 {
		t.Errorf("行数 = %d, 期望 1", count)
	}
}

func TestSettingsRepo_Upsert_OverwritesAllFlags(t *testing.T) {
	db := setupSettingsTestDB(t)
	repo := NewAppSettingsRepository(db)
	ctx := context.Background()
	shop := "demo.myshopify.com"

	if err := repo.Upsert(ctx, model.DefaultSettings(shop)); err != nil {
		t.Fatalf("首次 Upsert() error = %v", err)
	}

	updated := &model.AppSettings{
		Shop:             shop,
		TrackImpressions: false,
		TrackPlays:       true,
		TrackPlaytime:    false,
	}
	if err := repo.Upsert(ctx, updated); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	got, err := repo.Get(ctx, shop)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.TrackImpressions || !got.TrackPlays || got.TrackPlaytime {
		t.Errorf("开关 = %v/%v/%v, 期望 false/true/false",
			got.TrackImpressions, got.TrackPlays, got.TrackPlaytime)
	}

	var count int64
	db.Model(&model.AppSettings{}).Count(&count)
	if count != 1 {
		t.Errorf("行数 = %d, 期望 1", count)
	}
}
