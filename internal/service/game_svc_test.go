package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gamify_toolkit/internal/api/dto"
	"gamify_toolkit/internal/model"
	"gamify_toolkit/internal/repository"
)

// 测试用 games 表结构（sqlite 无法迁移 text[] 列）
type testSvcGame struct {
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

func (testSvcGame) TableName() string { return "games" }

func setupGameSvcTest(t *testing.T) *GameService {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&testSvcGame{}); err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}
	return NewGameService(repository.NewGameRepository(db))
}

func TestGameSvc_ListSeedsExample(t *testing.T) {
	svc := setupGameSvcTest(t)
	ctx := context.Background()
	shop := "demo.myshopify.com"

	games, err := svc.List(ctx, shop)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(games) != 1 {
		t.Fatalf("游戏数 = %d, 期望播种 1 个示例游戏", len(games))
	}
	if games[0].Title != "2048 - Example Game" {
		t.Errorf("示例游戏标题 = %s", games[0].Title)
	}

	// 再次列出不会重复播种
	games, err = svc.List(ctx, shop)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(games) != 1 {
		t.Errorf("游戏数 = %d, 期望仍为 1", len(games))
	}
}

func TestGameSvc_CreateSizeFallback(t *testing.T) {
	svc := setupGameSvcTest(t)
	ctx := context.Background()

	game, err := svc.Create(ctx, "demo.myshopify.com", dto.GameCreateReq{
		Title:   "Snake",
		GameURL: "https://g.example.com/snake",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if game.Width != 800 || game.Height != 600 {
		t.Errorf("尺寸 = %dx%d, 期望 800x600", game.Width, game.Height)
	}

	game, err = svc.Create(ctx, "demo.myshopify.com", dto.GameCreateReq{
		Title:   "Snake",
		GameURL: "https://g.example.com/snake",
		Width:   1024,
		Height:  -5,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if game.Width != 1024 || game.Height != 600 {
		t.Errorf("尺寸 = %dx%d, 期望 1024x600", game.Width, game.Height)
	}
}

func TestGameSvc_GetUnknownID(t *testing.T) {
	svc := setupGameSvcTest(t)
	if _, err := svc.Get(context.Background(), "demo.myshopify.com", "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("期望 ErrNotFound, 实际 %v", err)
	}
}

func TestGameSvc_ProbeEmbed(t *testing.T) {
	svc := setupGameSvcTest(t)
	ctx := context.Background()
	shop := "demo.myshopify.com"

	tests := []struct {
		name    string
		headers map[string]string
		want    int
	}{
		{"无限制头可嵌入", nil, model.GameEmbedOK},
		{"X-Frame-Options deny", map[string]string{"X-Frame-Options": "DENY"}, model.GameEmbedBlocked},
		{"X-Frame-Options sameorigin", map[string]string{"X-Frame-Options": "SameOrigin"}, model.GameEmbedBlocked},
		{"CSP frame-ancestors 限定来源", map[string]string{"Content-Security-Policy": "frame-ancestors 'self'; script-src 'self'"}, model.GameEmbedBlocked},
		{"CSP frame-ancestors 通配符", map[string]string{"Content-Security-Policy": "frame-ancestors *"}, model.GameEmbedOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				for k, v := range tt.headers {
					w.Header().Set(k, v)
				}
				w.WriteHeader(http.StatusOK)
			}))
			defer srv.Close()

			game, err := svc.Create(ctx, shop, dto.GameCreateReq{Title: "Snake", GameURL: srv.URL})
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}

			probed, err := svc.ProbeEmbed(ctx, shop, game.ID)
			if err != nil {
				t.Fatalf("ProbeEmbed() error = %v", err)
			}
			if probed.EmbedStatus != tt.want {
				t.Errorf("EmbedStatus = %d, 期望 %d", probed.EmbedStatus, tt.want)
			}
			if probed.EmbedCheckedAt == nil {
				t.Error("期望记录探测时间")
			}

			// 结果已落库
			saved, err := svc.Get(ctx, shop, game.ID)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if saved.EmbedStatus != tt.want {
				t.Errorf("落库 EmbedStatus = %d, 期望 %d", saved.EmbedStatus, tt.want)
			}
		})
	}
}

func TestGameSvc_ProbeEmbedUnreachable(t *testing.T) {
	svc := setupGameSvcTest(t)
	ctx := context.Background()
	shop := "demo.myshopify.com"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // 关掉再探测，连接必然失败

	game, err := svc.Create(ctx, shop, dto.GameCreateReq{Title: "Snake", GameURL: srv.URL})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	probed, err := svc.ProbeEmbed(ctx, shop, game.ID)
	if err != nil {
		t.Fatalf("ProbeEmbed() error = %v", err)
	}
	if probed.EmbedStatus != model.GameEmbedUnreachable {
		t.Errorf("EmbedStatus = %d, 期望 %d", probed.EmbedStatus, model.GameEmbedUnreachable)
	}
}

func TestGameSvc_SetThumbnail(t *testing.T) {
	svc := setupGameSvcTest(t)
	ctx := context.Background()
	shop := "demo.myshopify.com"

	game, err := svc.Create(ctx, shop, dto.GameCreateReq{Title: "Snake", GameURL: "https://g.example.com"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := svc.SetThumbnail(ctx, shop, game.ID, "https://cdn.example.com/thumb.png"); err != nil {
		t.Fatalf("SetThumbnail() error = %v", err)
	}
	saved, err := svc.Get(ctx, shop, game.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if saved.ThumbnailURL != "https://cdn.example.com/thumb.png" {
		t.Errorf("ThumbnailURL = %s", saved.ThumbnailURL)
	}

	if err := svc.SetThumbnail(ctx, shop, "missing", "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("期望 ErrNotFound, 实际 %v", err)
	}
}
