package dto

import "gamify_toolkit/internal/model"

// SettingsUpsertReq 设置覆盖写入请求
// 三个开关必须同时提交，指针类型用于区分 false 与缺失
type SettingsUpsertReq struct {
	TrackImpressions *bool `json:"trackImpressions" binding:"required"`
	TrackPlays       *bool `json:"trackPlays" binding:"required"`
	TrackPlaytime    *bool `json:"trackPlaytime" binding:"required"`
}

// SettingsResp 设置响应
type SettingsResp struct {
	Shop             string `json:"shop"`
	TrackImpressions bool   `json:"trackImpressions"`
	TrackPlays       bool   `json:"trackPlays"`
	TrackPlaytime    bool   `json:"trackPlaytime"`
}

// NewSettingsResp 模型转响应
func NewSettingsResp(s *model.AppSettings) SettingsResp {
	return SettingsResp{
		Shop:             s.Shop,
		TrackImpressions: s.TrackImpressions,
		TrackPlays:       s.TrackPlays,
		TrackPlaytime:    s.TrackPlaytime,
	}
}
