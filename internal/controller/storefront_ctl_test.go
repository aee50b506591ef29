package controller_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gamify_toolkit/internal/api/dto"
	"gamify_toolkit/internal/controller"
	"gamify_toolkit/internal/model"
	"gamify_toolkit/internal/repository"
	"gamify_toolkit/internal/router"
	"gamify_toolkit/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ==================== 测试辅助 ====================

// 测试用 games 表结构（sqlite 无法迁移 text[] 列）
type testCtlGame struct {
	ID             string `gorm:"primaryKey"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Shop           string `gorm:"index"`
	Title          string
	Description    string
	GameURL        string
	ThumbnailURL   string
	Width          int
	Height         int
	Tags           string
	EmbedStatus    int
	EmbedCheckedAt *time.Time
}

func (testCtlGame) TableName() string { return "games" }

// apiTestDeps 测试可直接触达的服务
type apiTestDeps struct {
	layoutSvc   *service.LayoutService
	gameSvc     *service.GameService
	settingsSvc *service.SettingsService
}

// setupAPIRouter 基于内存库搭建完整路由
func setupAPIRouter(t *testing.T) (*gin.Engine, *apiTestDeps) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&model.InputLayout{}, &testCtlGame{}, &model.AppSettings{}, &model.GameAnalytics{}); err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}

	layoutSvc := service.NewLayoutService(repository.NewInputLayoutRepository(db))
	gameSvc := service.NewGameService(repository.NewGameRepository(db))
	settingsSvc := service.NewSettingsService(repository.NewAppSettingsRepository(db))
	trackingSvc := service.NewTrackingService(settingsSvc, repository.NewGameAnalyticsRepository(db))
	statsSvc := service.NewStatsService(repository.NewGameRepository(db), repository.NewGameAnalyticsRepository(db))

	storage, err := service.NewLocalStorage(&service.StorageConfig{BasePath: t.TempDir()})
	if err != nil {
		t.Fatalf("创建本地存储失败: %v", err)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	router.InitRoutes(r,
		controller.NewStorefrontController(layoutSvc, trackingSvc),
		controller.NewLayoutController(layoutSvc),
		controller.NewGameController(gameSvc, storage),
		controller.NewSettingsController(settingsSvc),
		controller.NewStatsController(statsSvc),
	)
	return r, &apiTestDeps{
		layoutSvc:   layoutSvc,
		gameSvc:     gameSvc,
		settingsSvc: settingsSvc,
	}
}

func performJSON(r http.Handler, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ==================== 前台布局 ====================

func TestStorefront_GetLayout_MissingShop(t *testing.T) {
	r, _ := setupAPIRouter(t)

	w := performJSON(r, http.MethodGet, "/api/v1/storefront/layout", nil, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestStorefront_GetLayout_NoLayouts(t *testing.T) {
	r, _ := setupAPIRouter(t)

	w := performJSON(r, http.MethodGet, "/api/v1/storefront/layout?shop=demo.myshopify.com", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp dto.StorefrontLayoutResp
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Layout != nil {
		t.Error("期望无布局时 layout 为 null")
	}

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}

func TestStorefront_GetLayout_Default(t *testing.T) {
	r, deps := setupAPIRouter(t)
	ctx := context.Background()

	created, err := deps.layoutSvc.Create(ctx, "demo.myshopify.com", dto.LayoutSaveReq{Name: "默认", IsDefault: true})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	w := performJSON(r, http.MethodGet, "/api/v1/storefront/layout?shop=demo.myshopify.com", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp dto.StorefrontLayoutResp
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Layout == nil || resp.Layout.ID != created.ID {
		t.Errorf("layout = %v, 期望默认布局 %s", resp.Layout, created.ID)
	}
}

func TestStorefront_OPTIONSPreflight(t *testing.T) {
	r, _ := setupAPIRouter(t)

	w := performJSON(r, http.MethodOptions, "/api/v1/storefront/track", nil, nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}

// ==================== 前台埋点 ====================

func TestStorefront_Track(t *testing.T) {
	r, _ := setupAPIRouter(t)

	w := performJSON(r, http.MethodPost, "/api/v1/storefront/track", dto.TrackReq{
		Shop:   "demo.myshopify.com",
		GameID: "game-1",
		Type:   model.MetricImpression,
	}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp dto.TrackResp
	json.Unmarshal(w.Body.Bytes(), &resp)
	if !resp.Success || !resp.Tracked {
		t.Errorf("resp = %+v, 期望 success 且 tracked", resp)
	}
}

func TestStorefront_Track_MissingFields(t *testing.T) {
	r, _ := setupAPIRouter(t)

	tests := []struct {
		name string
		body dto.TrackReq
	}{
		{"缺店铺", dto.TrackReq{GameID: "game-1", Type: model.MetricPlay}},
		{"缺游戏", dto.TrackReq{Shop: "demo.myshopify.com", Type: model.MetricPlay}},
		{"缺类型", dto.TrackReq{Shop: "demo.myshopify.com", GameID: "game-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performJSON(r, http.MethodPost, "/api/v1/storefront/track", tt.body, nil)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestStorefront_Track_Gated(t *testing.T) {
	r, deps := setupAPIRouter(t)

	// 关闭开玩指标后上报返回 tracked=false 而不是错误
	if _, err := deps.settingsSvc.Upsert(context.Background(), "demo.myshopify.com", true, false, true); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	w := performJSON(r, http.MethodPost, "/api/v1/storefront/track", dto.TrackReq{
		Shop:   "demo.myshopify.com",
		GameID: "game-1",
		Type:   model.MetricPlay,
	}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp dto.TrackResp
	json.Unmarshal(w.Body.Bytes(), &resp)
	if !resp.Success || resp.Tracked {
		t.Errorf("resp = %+v, 期望 success 且 tracked=false", resp)
	}
}

func TestStorefront_Track_Playtime(t *testing.T) {
	r, _ := setupAPIRouter(t)

	w := performJSON(r, http.MethodPost, "/api/v1/storefront/track", dto.TrackReq{
		Shop:   "demo.myshopify.com",
		GameID: "game-1",
		Type:   model.MetricPlaytime,
		Value:  90,
	}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp dto.TrackResp
	json.Unmarshal(w.Body.Bytes(), &resp)
	if !resp.Tracked {
		t.Error("期望时长指标被记录")
	}
}
