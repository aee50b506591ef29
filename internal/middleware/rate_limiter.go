package middleware

import (
	"fmt"
	"sync"
	"time"
)

// ==================== ActionRateLimiter 手动操作限流器 ====================

// ActionRateLimiter 手动操作限流器
// 防止用户频繁触发嵌入检测等外部请求操作
type ActionRateLimiter struct {
	locks sync.Map // key -> *lockEntry
}

// lockEntry 锁条目
type lockEntry struct {
	lastTime time.Time
	mu       sync.Mutex
}

// 全局限流器实例
var globalLimiter = &ActionRateLimiter{}

// GetLimiter 获取全局限流器
func GetLimiter() *ActionRateLimiter {
	return globalLimiter
}

// ==================== 限流检查 ====================

// CheckResult 检查结果
type CheckResult struct {
	Allowed    bool          // 是否允许
	RetryAfter time.Duration // 剩余冷却时间
}

// Check 检查是否允许执行
// key: 限流键，如 "shop:example.myshopify.com:embed_probe"
// interval: 冷却间隔
func (r *ActionRateLimiter) Check(key string, interval time.Duration) CheckResult {
	// 获取或创建锁条目
	actual, _ := r.locks.LoadOrStore(key, &lockEntry{})
	entry := actual.(*lockEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(entry.lastTime)

	if elapsed < interval {
		return CheckResult{
			Allowed:    false,
			RetryAfter: interval - elapsed,
		}
	}

	// 更新最后执行时间
	entry.lastTime = now
	return CheckResult{
		Allowed:    true,
		RetryAfter: 0,
	}
}

// Reset 重置指定 key 的限流
func (r *ActionRateLimiter) Reset(key string) {
	r.locks.Delete(key)
}

// ==================== Key 生成工具 ====================

// ActionType 操作类型
type ActionType string

const (
	ActionEmbedProbe ActionType = "embed_probe"
	ActionThumbnail  ActionType = "thumbnail_upload"
)

// ShopActionKey 生成店铺级操作 Key
func ShopActionKey(shop string, action ActionType) string {
	return fmt.Sprintf("shop:%s:%s", shop, action)
}

// ==================== 默认限流间隔 ====================

// DefaultIntervals 默认限流间隔配置
var DefaultIntervals = map[ActionType]time.Duration{
	ActionEmbedProbe: 30 * time.Second,
	ActionThumbnail:  5 * time.Second,
}

// GetInterval 获取操作类型的默认间隔
func GetInterval(action ActionType) time.Duration {
	if interval, ok := DefaultIntervals[action]; ok {
		return interval
	}
	return 30 * time.Second
}
