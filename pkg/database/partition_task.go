package database

import (
	"context"
	"log"
	"sync"
	"time"
)

// PartitionTask 分区维护后台任务
// 每天巡检一次：补齐未来月分区、按保留策略清理过期分区
type PartitionTask struct {
	manager      *PartitionManager
	futureMonths int
	interval     time.Duration
	stopCh       chan struct{}
	wg           sync.WaitGroup
	running      bool
	mu           sync.Mutex
}

// PartitionTaskOption 任务选项
type PartitionTaskOption func(*PartitionTask)

// WithFutureMonths 设置预创建的未来分区月数
func WithFutureMonths(months int) PartitionTaskOption {
	return func(t *PartitionTask) {
		t.futureMonths = months
	}
}

// WithInterval 设置巡检间隔
func WithInterval(d time.Duration) PartitionTaskOption {
	return func(t *PartitionTask) {
		t.interval = d
	}
}

// NewPartitionTask 创建分区维护任务，默认每 24 小时巡检、预建 3 个月
func NewPartitionTask(manager *PartitionManager, opts ...PartitionTaskOption) *PartitionTask {
	t := &PartitionTask{
		manager:      manager,
		futureMonths: 3,
		interval:     24 * time.Hour,
		stopCh:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start 启动任务，重复调用无效果
func (t *PartitionTask) Start() {
	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		return
	}
	t.running = true
	t.mu.Unlock()

	t.wg.Add(1)
	go t.loop()

	log.Printf("[PartitionTask] 已启动，间隔 %v，预建 %d 个月分区", t.interval, t.futureMonths)
}

// Stop 停止任务并等待当前一轮巡检结束
func (t *PartitionTask) Stop() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	t.running = false
	t.mu.Unlock()

	close(t.stopCh)
	t.wg.Wait()
	log.Println("[PartitionTask] 已停止")
}

// RunOnce 手动触发一轮巡检
func (t *PartitionTask) RunOnce() {
	t.maintain()
}

func (t *PartitionTask) loop() {
	defer t.wg.Done()

	// 启动先跑一轮，避免服务刚起时缺分区
	t.maintain()

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			t.maintain()
		case <-t.stopCh:
			return
		}
	}
}

func (t *PartitionTask) maintain() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	start := time.Now()

	if err := t.manager.HealthCheck(ctx); err != nil {
		log.Printf("[PartitionTask] 健康检查: %v", err)
	}

	if err := t.manager.EnsureFuturePartitions(ctx, t.futureMonths); err != nil {
		log.Printf("[PartitionTask] 创建分区失败: %v", err)
	}

	dropped, err := t.manager.CleanupExpiredPartitions(ctx)
	if err != nil {
		log.Printf("[PartitionTask] 清理过期分区失败: %v", err)
	} else if dropped > 0 {
		log.Printf("[PartitionTask] 已删除 %d 个过期分区", dropped)
	}

	if stats, err := t.manager.GetAllStats(ctx); err == nil {
		for _, s := range stats {
			log.Printf("[PartitionTask] %s: %d 分区, %.2f MB",
				s.TableName, s.PartitionCount, float64(s.TotalSizeBytes)/1024/1024)
		}
	}

	log.Printf("[PartitionTask] 巡检完成，耗时 %v", time.Since(start))
}
