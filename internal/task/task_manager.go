package task

import (
	"log"

	"gamify_toolkit/internal/repository"
	"gamify_toolkit/internal/service"
)

// ==================== TaskManager 后台任务管理器 ====================

// TaskManager 统一管理后台定时任务
// 管理范围：统计快照、嵌入巡检
// 不包含：分区维护（基础设施层独立管理）
type TaskManager struct {
	snapshotTask *StatsSnapshotTask
	probeTask    *EmbedProbeTask
}

// TaskManagerDeps 任务管理器依赖
type TaskManagerDeps struct {
	GameRepo      repository.GameRepository
	AnalyticsRepo repository.GameAnalyticsRepository
	GameService   *service.GameService
}

// TaskManagerConfig 任务管理器配置
type TaskManagerConfig struct {
	SnapshotEnabled bool
	ProbeEnabled    bool
}

// DefaultConfig 默认配置
func DefaultConfig() *TaskManagerConfig {
	return &TaskManagerConfig{
		SnapshotEnabled: true,
		ProbeEnabled:    true,
	}
}

// NewTaskManager 创建任务管理器
func NewTaskManager(deps *TaskManagerDeps, cfg *TaskManagerConfig) *TaskManager {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	tm := &TaskManager{}

	if cfg.SnapshotEnabled && deps.AnalyticsRepo != nil {
		tm.snapshotTask = NewStatsSnapshotTask(deps.AnalyticsRepo)
	}

	if cfg.ProbeEnabled && deps.GameService != nil {
		tm.probeTask = NewEmbedProbeTask(deps.GameRepo, deps.GameService)
	}

	return tm
}

// ==================== 生命周期管理 ====================

// Start 启动所有任务
func (tm *TaskManager) Start() {
	log.Println("[TaskManager] 正在启动后台任务...")

	if tm.snapshotTask != nil {
		tm.snapshotTask.Start()
	}
	if tm.probeTask != nil {
		tm.probeTask.Start()
	}

	log.Println("[TaskManager] 后台任务已全部启动")
}

// Stop 停止所有任务
func (tm *TaskManager) Stop() {
	log.Println("[TaskManager] 正在停止后台任务...")

	if tm.snapshotTask != nil {
		tm.snapshotTask.Stop()
	}
	if tm.probeTask != nil {
		tm.probeTask.Stop()
	}

	log.Println("[TaskManager] 后台任务已全部停止")
}

// ==================== 状态查询 ====================

// Status 获取任务状态
func (tm *TaskManager) Status() map[string]bool {
	return map[string]bool{
		"snapshot": tm.snapshotTask != nil,
		"probe":    tm.probeTask != nil,
	}
}
