package task

import (
	"context"
	"log"
	"time"

	"gamify_toolkit/internal/model"
	"gamify_toolkit/internal/repository"
	"gamify_toolkit/internal/service"

	"github.com/robfig/cron/v3"
)

// StatsSnapshotTask 每日统计快照任务
// 每天凌晨把前一天各店铺的汇总指标写进日志，运营排查时
// 不用再手工跑聚合查询
type StatsSnapshotTask struct {
	AnalyticsRepo repository.GameAnalyticsRepository
	Cron          *cron.Cron
}

func NewStatsSnapshotTask(analyticsRepo repository.GameAnalyticsRepository) *StatsSnapshotTask {
	return &StatsSnapshotTask{
		AnalyticsRepo: analyticsRepo,
		Cron:          cron.New(cron.WithSeconds()), // 支持秒级控制
	}
}

// Start 启动定时任务
func (t *StatsSnapshotTask) Start() {
	// 每天 02:10 汇总前一天
	_, err := t.Cron.AddFunc("0 10 2 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		t.snapshotJob(ctx, time.Now().AddDate(0, 0, -1))
	})

	if err != nil {
		log.Fatalf("无法启动统计快照定时任务: %v", err)
	}

	t.Cron.Start()
	log.Println("统计快照任务已启动 (每天 02:10 汇总前一天)")
}

// Stop 停止定时任务
func (t *StatsSnapshotTask) Stop() {
	t.Cron.Stop()
}

// RunOnce 手动执行一次（汇总指定日期）
func (t *StatsSnapshotTask) RunOnce(ctx context.Context, day time.Time) {
	t.snapshotJob(ctx, day)
}

func (t *StatsSnapshotTask) snapshotJob(ctx context.Context, day time.Time) {
	bucket := model.DayBucket(day)

	totals, err := t.AnalyticsRepo.DayTotals(ctx, bucket)
	if err != nil {
		log.Printf("[Cron] 统计快照查询失败: %v", err)
		return
	}

	if len(totals) == 0 {
		log.Printf("[Cron] %s 没有统计数据", bucket.Format("2006-01-02"))
		return
	}

	for _, row := range totals {
		log.Printf("[Cron] %s 店铺 [%s] 曝光 %d 开玩 %d 时长 %s",
			bucket.Format("2006-01-02"), row.Shop,
			row.Impressions, row.Plays,
			service.FormatDuration(row.TotalPlaytimeSeconds))
	}
}
