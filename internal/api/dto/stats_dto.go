package dto

import "time"

// GameStatsResp 单个游戏的聚合指标
type GameStatsResp struct {
	GameID            string    `json:"gameId"`
	Title             string    `json:"title"`
	CreatedAt         time.Time `json:"created_at"`
	TotalImpressions  int64     `json:"totalImpressions"`
	TotalPlays        int64     `json:"totalPlays"`
	TotalPlaytime     int64     `json:"totalPlaytimeSeconds"`
	PlayRate          string    `json:"playRate"`
	AvgSessionSeconds int64     `json:"avgSessionSeconds"`
	PlaytimeDisplay   string    `json:"playtimeDisplay"`
	AvgSessionDisplay string    `json:"avgSessionDisplay"`
}

// OverallStatsResp 店铺维度的整体指标
type OverallStatsResp struct {
	TotalImpressions int64  `json:"totalImpressions"`
	TotalPlays       int64  `json:"totalPlays"`
	TotalPlaytime    int64  `json:"totalPlaytimeSeconds"`
	PlayRate         string `json:"overallPlayRate"`
	PlaytimeDisplay  string `json:"playtimeDisplay"`
}

// StatisticsResp 统计页响应
type StatisticsResp struct {
	Games   []GameStatsResp  `json:"games"`
	Overall OverallStatsResp `json:"overallStats"`
}

// DashboardResp 首页概览响应
type DashboardResp struct {
	GameCount        int64      `json:"gameCount"`
	RecentGames      []GameResp `json:"recentGames"`
	TotalImpressions int64      `json:"totalImpressions"`
	TotalPlays       int64      `json:"totalPlays"`
	TotalPlaytime    int64      `json:"totalPlaytimeSeconds"`
	PlaytimeDisplay  string     `json:"playtimeDisplay"`
}
