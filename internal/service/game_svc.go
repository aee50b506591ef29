package service

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"gamify_toolkit/internal/api/dto"
	"gamify_toolkit/internal/model"
	"gamify_toolkit/internal/repository"
)

// GameService 游戏管理
type GameService struct {
	gameRepo repository.GameRepository
	probe    *resty.Client
}

// NewGameService 创建游戏服务
func NewGameService(gameRepo repository.GameRepository) *GameService {
	// 探测嵌入能力用的客户端，超时要短，避免拖住请求
	probe := resty.New().
		SetTimeout(10 * time.Second).
		SetRetryCount(1)

	return &GameService{
		gameRepo: gameRepo,
		probe:    probe,
	}
}

// List 店铺的全部游戏，新建在前
// 店铺还没有任何游戏时播种一个示例游戏，方便商家直接体验
func (s *GameService) List(ctx context.Context, shop string) ([]model.Game, error) {
	games, err := s.gameRepo.List(ctx, shop)
	if err != nil {
		return nil, err
	}

	if len(games) == 0 {
		example := model.ExampleGame(shop)
		if err := s.gameRepo.Create(ctx, example); err != nil {
			return nil, err
		}
		log.Printf("[Game] 店铺 %s 播种示例游戏", shop)
		games = append(games, *example)
	}

	return games, nil
}

// Get 单个游戏
func (s *GameService) Get(ctx context.Context, shop, id string) (*model.Game, error) {
	game, err := s.gameRepo.GetByID(ctx, shop, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return game, nil
}

// Create 新建游戏，尺寸非正值回退到 800x600
func (s *GameService) Create(ctx context.Context, shop string, req dto.GameCreateReq) (*model.Game, error) {
	width := req.Width
	if width <= 0 {
		width = 800
	}
	height := req.Height
	if height <= 0 {
		height = 600
	}

	game := &model.Game{
		Shop:         shop,
		Title:        req.Title,
		Description:  req.Description,
		GameURL:      req.GameURL,
		ThumbnailURL: req.ThumbnailURL,
		Width:        width,
		Height:       height,
		Tags:         req.Tags,
	}
	if err := s.gameRepo.Create(ctx, game); err != nil {
		return nil, err
	}
	return game, nil
}

// Delete 删除游戏（店铺范围内）
func (s *GameService) Delete(ctx context.Context, shop, id string) error {
	return mapNotFound(s.gameRepo.Delete(ctx, shop, id))
}

// SetThumbnail 更新缩略图地址
func (s *GameService) SetThumbnail(ctx context.Context, shop, id, url string) error {
	return mapNotFound(s.gameRepo.UpdateFields(ctx, shop, id, map[string]interface{}{
		"thumbnail_url": url,
	}))
}

// ProbeEmbed 探测游戏地址能否被 iframe 嵌入
// 店铺前台通过 iframe 加载游戏，X-Frame-Options / CSP frame-ancestors
// 拒绝嵌入的地址在前台是白屏，提前探测出来提示商家
func (s *GameService) ProbeEmbed(ctx context.Context, shop, id string) (*model.Game, error) {
	game, err := s.gameRepo.GetByID(ctx, shop, id)
	if err != nil {
		return nil, mapNotFound(err)
	}

	status := s.probeURL(ctx, game.GameURL)
	now := time.Now()

	if err := s.gameRepo.UpdateFields(ctx, shop, id, map[string]interface{}{
		"embed_status":     status,
		"embed_checked_at": now,
	}); err != nil {
		return nil, err
	}

	game.EmbedStatus = status
	game.EmbedCheckedAt = &now
	return game, nil
}

// probeURL 发起一次探测请求并解析响应头
func (s *GameService) probeURL(ctx context.Context, url string) int {
	resp, err := s.probe.R().SetContext(ctx).Get(url)
	if err != nil {
		log.Printf("[Game] 探测 %s 失败: %v", url, err)
		return model.GameEmbedUnreachable
	}

	xfo := strings.ToLower(resp.Header().Get("X-Frame-Options"))
	if xfo == "deny" || xfo == "sameorigin" {
		return model.GameEmbedBlocked
	}

	csp := strings.ToLower(resp.Header().Get("Content-Security-Policy"))
	if idx := strings.Index(csp, "frame-ancestors"); idx >= 0 {
		directive := csp[idx:]
		if end := strings.Index(directive, ";"); end >= 0 {
			directive = directive[:end]
		}
		// frame-ancestors 限定了来源且不含通配符时视为拒绝
		if !strings.Contains(directive, "*") {
			return model.GameEmbedBlocked
		}
	}

	return model.GameEmbedOK
}
