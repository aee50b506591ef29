package dto

// TrackReq 前台埋点请求
// Value 仅 playtime 使用；保持 interface{} 以便区分"缺失/非数字"和合法数值
type TrackReq struct {
	Shop   string      `json:"shop"`
	GameID string      `json:"gameId"`
	Type   string      `json:"type"`
	Value  interface{} `json:"value,omitempty"`
}

// TrackResp 埋点响应
// 指标被设置关闭时 Tracked = false，属于正常结果而不是错误
type TrackResp struct {
	Success bool `json:"success"`
	Tracked bool `json:"tracked"`
}
