package service

import (
	"context"
	"fmt"

	"gamify_toolkit/internal/api/dto"
	"gamify_toolkit/internal/repository"
)

// StatsService 统计读侧
// 纯读操作，对天桶做求和/比率/时长格式化，自身无状态
type StatsService struct {
	gameRepo      repository.GameRepository
	analyticsRepo repository.GameAnalyticsRepository
}

// NewStatsService 创建统计服务
func NewStatsService(gameRepo repository.GameRepository, analyticsRepo repository.GameAnalyticsRepository) *StatsService {
	return &StatsService{
		gameRepo:      gameRepo,
		analyticsRepo: analyticsRepo,
	}
}

// gameTotals 单个游戏跨天桶的累计值
type gameTotals struct {
	impressions int64
	plays       int64
	playtime    int64
}

// Statistics 统计页数据：逐游戏聚合 + 店铺整体
func (s *StatsService) Statistics(ctx context.Context, shop string) (*dto.StatisticsResp, error) {
	games, err := s.gameRepo.List(ctx, shop)
	if err != nil {
		return nil, err
	}

	totalsByGame, err := s.collectTotals(ctx, shop)
	if err != nil {
		return nil, err
	}

	resp := &dto.StatisticsResp{
		Games: make([]dto.GameStatsResp, 0, len(games)),
	}

	var overall gameTotals
	for i := range games {
		g := &games[i]
		t := totalsByGame[g.ID]
		overall.impressions += t.impressions
		overall.plays += t.plays
		overall.playtime += t.playtime

		avg := AvgSessionSeconds(t.playtime, t.plays)
		resp.Games = append(resp.Games, dto.GameStatsResp{
			GameID:            g.ID,
			Title:             g.Title,
			CreatedAt:         g.CreatedAt,
			TotalImpressions:  t.impressions,
			TotalPlays:        t.plays,
			TotalPlaytime:     t.playtime,
			PlayRate:          PlayRate(t.plays, t.impressions),
			AvgSessionSeconds: avg,
			PlaytimeDisplay:   FormatDuration(t.playtime),
			AvgSessionDisplay: FormatDuration(avg),
		})
	}

	resp.Overall = dto.OverallStatsResp{
		TotalImpressions: overall.impressions,
		TotalPlays:       overall.plays,
		TotalPlaytime:    overall.playtime,
		PlayRate:         PlayRate(overall.plays, overall.impressions),
		PlaytimeDisplay:  FormatDuration(overall.playtime),
	}
	return resp, nil
}

// Dashboard 首页概览：游戏数、最近游戏、店铺累计
func (s *StatsService) Dashboard(ctx context.Context, shop string) (*dto.DashboardResp, error) {
	count, err := s.gameRepo.Count(ctx, shop)
	if err != nil {
		return nil, err
	}

	recent, err := s.gameRepo.ListRecent(ctx, shop, 3)
	if err != nil {
		return nil, err
	}

	totalsByGame, err := s.collectTotals(ctx, shop)
	if err != nil {
		return nil, err
	}

	var overall gameTotals
	for _, t := range totalsByGame {
		overall.impressions += t.impressions
		overall.plays += t.plays
		overall.playtime += t.playtime
	}

	resp := &dto.DashboardResp{
		GameCount:        count,
		RecentGames:      make([]dto.GameResp, 0, len(recent)),
		TotalImpressions: overall.impressions,
		TotalPlays:       overall.plays,
		TotalPlaytime:    overall.playtime,
		PlaytimeDisplay:  FormatDurationShort(overall.playtime),
	}
	for i := range recent {
		resp.RecentGames = append(resp.RecentGames, dto.NewGameResp(&recent[i]))
	}
	return resp, nil
}

// collectTotals 把店铺的全部天桶按游戏归并
func (s *StatsService) collectTotals(ctx context.Context, shop string) (map[string]gameTotals, error) {
	rows, err := s.analyticsRepo.ListByShop(ctx, shop)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]gameTotals, len(rows))
	for _, row := range rows {
		t := totals[row.GameID]
		t.impressions += row.Impressions
		t.plays += row.Plays
		t.playtime += row.TotalPlaytimeSeconds
		totals[row.GameID] = t
	}
	return totals, nil
}

// ==================== 纯函数 ====================

// PlayRate 播放率 = plays / impressions * 100，保留一位小数
// 没有曝光时定义为 "0"，不是错误
func PlayRate(plays, impressions int64) string {
	if impressions <= 0 {
		return "0"
	}
	return fmt.Sprintf("%.1f", float64(plays)/float64(impressions)*100)
}

// AvgSessionSeconds 平均单次时长，向下取整；没有播放时为 0
func AvgSessionSeconds(totalSeconds, plays int64) int64 {
	if plays <= 0 {
		return 0
	}
	return totalSeconds / plays
}

// FormatDuration 秒数转可读时长
// 有小时省略秒，有分钟省略小时位，不足一分钟只显示秒
func FormatDuration(seconds int64) string {
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, secs)
	}
	return fmt.Sprintf("%ds", secs)
}

// FormatDurationShort 概览用的短格式，不显示秒
func FormatDurationShort(seconds int64) string {
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60

	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
