package service

import (
	"context"
	"time"

	"gamify_toolkit/internal/model"
	"gamify_toolkit/internal/repository"
)

// TrackingService 埋点写入
// 流程：设置门控 -> 天桶懒创建 -> 相对增量
// 被关掉的指标返回 tracked=false，是正常结果不是错误
type TrackingService struct {
	settings      *SettingsService
	analyticsRepo repository.GameAnalyticsRepository

	// 测试注入时间源
	now func() time.Time
}

// NewTrackingService 创建埋点服务
func NewTrackingService(settings *SettingsService, analyticsRepo repository.GameAnalyticsRepository) *TrackingService {
	return &TrackingService{
		settings:      settings,
		analyticsRepo: analyticsRepo,
		now:           time.Now,
	}
}

// Record 记录一个埋点事件，返回是否实际计入
//   - impression / play 固定 +1
//   - playtime 累加 value 秒；value 缺失、非数字或为负时不改计数器，
//     但天桶可能已创建
//   - 未知 type 同样只建桶不计数
func (s *TrackingService) Record(ctx context.Context, shop, gameID, metricType string, value interface{}) (bool, error) {
	tracked, err := s.settings.IsTracked(ctx, shop, metricType)
	if err != nil {
		return false, err
	}
	if !tracked {
		// 门控关闭，不触碰任何行
		return false, nil
	}

	day := model.DayBucket(s.now())
	if err := s.analyticsRepo.EnsureBucket(ctx, shop, gameID, day); err != nil {
		return false, err
	}

	switch metricType {
	case model.MetricImpression:
		if err := s.analyticsRepo.AddImpression(ctx, shop, gameID, day); err != nil {
			return false, err
		}
		return true, nil
	case model.MetricPlay:
		if err := s.analyticsRepo.AddPlay(ctx, shop, gameID, day); err != nil {
			return false, err
		}
		return true, nil
	case model.MetricPlaytime:
		seconds, ok := numericSeconds(value)
		if !ok {
			return false, nil
		}
		if err := s.analyticsRepo.AddPlaytime(ctx, shop, gameID, day, seconds); err != nil {
			return false, err
		}
		return true, nil
	default:
		return false, nil
	}
}

// numericSeconds 把请求里的 value 解析为非负秒数
// JSON 解码后的数字是 float64，这里一并接受整数类型
func numericSeconds(value interface{}) (int64, bool) {
	switch v := value.(type) {
	case float64:
		if v < 0 {
			return 0, false
		}
		return int64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return int64(v), true
	case int64:
		if v < 0 {
			return 0, false
		}
		return v, true
	default:
		return 0, false
	}
}
