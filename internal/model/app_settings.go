package model

// AppSettings 店铺级统计开关，每店铺一行
// 没有记录等价于"全部开启"，首次读取时物化默认值
type AppSettings struct {
	BaseModel

	Shop string `gorm:"size:255;uniqueIndex;not null"`

	TrackImpressions bool `gorm:"default:true"`
	TrackPlays       bool `gorm:"default:true"`
	TrackPlaytime    bool `gorm:"default:true"`
}

func (AppSettings) TableName() string {
	return "app_settings"
}

// DefaultSettings 默认全部开启
func DefaultSettings(shop string) *AppSettings {
	return &AppSettings{
		Shop:             shop,
		TrackImpressions: true,
		TrackPlays:       true,
		TrackPlaytime:    true,
	}
}

// Allows 指定指标是否允许记录
func (s *AppSettings) Allows(metricType string) bool {
	switch metricType {
	case MetricImpression:
		return s.TrackImpressions
	case MetricPlay:
		return s.TrackPlays
	case MetricPlaytime:
		return s.TrackPlaytime
	}
	// 未知指标不受开关约束，由上层决定如何处理
	return true
}
