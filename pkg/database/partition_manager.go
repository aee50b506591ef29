package database

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"
)

// PartitionManager 管理统计表的月分区
// 埋点按天聚合、按月分区，写入永远落在当月分区里，
// 所以只要提前建好未来几个月的分区就不会写失败
type PartitionManager struct {
	db     *gorm.DB
	config *PartitionConfig
}

// NewPartitionManager 创建分区管理器
func NewPartitionManager(db *gorm.DB, config *PartitionConfig) *PartitionManager {
	return &PartitionManager{db: db, config: config}
}

// ==================== 建表 ====================

// InitPartitionTables 按嵌入的 DDL 创建分区主表（已存在则跳过）
func (m *PartitionManager) InitPartitionTables(ctx context.Context) error {
	for _, table := range m.config.Tables {
		exists, err := m.relationExists(ctx, table.TableName)
		if err != nil {
			return fmt.Errorf("检查表 %s 失败: %w", table.TableName, err)
		}
		if exists {
			log.Printf("[Partition] 主表 %s 已存在，跳过", table.TableName)
			continue
		}

		log.Printf("[Partition] 创建分区主表 %s ...", table.TableName)
		if err := m.db.WithContext(ctx).Exec(table.SQLContent).Error; err != nil {
			return fmt.Errorf("创建表 %s 失败: %w", table.TableName, err)
		}
	}
	return nil
}

// relationExists 主表和分区都在 pg_tables 里，用同一个查询
func (m *PartitionManager) relationExists(ctx context.Context, name string) (bool, error) {
	var count int64
	err := m.db.WithContext(ctx).Raw(`
		SELECT COUNT(*) FROM pg_tables
		WHERE schemaname = 'public' AND tablename = ?
	`, name).Scan(&count).Error
	return count > 0, err
}

// ==================== 月分区 ====================

// EnsureFuturePartitions 保证从当月起未来 monthsAhead 个月的分区都存在
// 单个分区创建失败只记日志不中断，下次任务还会重试
func (m *PartitionManager) EnsureFuturePartitions(ctx context.Context, monthsAhead int) error {
	now := time.Now()
	for i := 0; i <= monthsAhead; i++ {
		month := now.AddDate(0, i, 0)
		for _, table := range m.config.Tables {
			if err := m.ensureMonthPartition(ctx, table.TableName, month); err != nil {
				log.Printf("[Partition] 创建 %s 分区失败: %v", table.TableName, err)
			}
		}
	}
	return nil
}

func (m *PartitionManager) ensureMonthPartition(ctx context.Context, tableName string, month time.Time) error {
	start := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)
	name := partitionName(tableName, start)

	exists, err := m.relationExists(ctx, name)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	sql := fmt.Sprintf(
		`CREATE TABLE %s PARTITION OF %s FOR VALUES FROM ('%s') TO ('%s')`,
		name, tableName,
		start.Format("2006-01-02"),
		end.Format("2006-01-02"),
	)
	if err := m.db.WithContext(ctx).Exec(sql).Error; err != nil {
		// 并发初始化时可能撞上其他实例刚建好的分区
		if strings.Contains(err.Error(), "already exists") {
			return nil
		}
		return fmt.Errorf("创建分区 %s 失败: %w", name, err)
	}

	log.Printf("[Partition] 创建分区 %s", name)
	return nil
}

// partitionName 分区命名：<table>_y<年>m<两位月>
func partitionName(tableName string, month time.Time) string {
	return fmt.Sprintf("%s_y%dm%02d", tableName, month.Year(), month.Month())
}

// ==================== 过期清理 ====================

// CleanupExpiredPartitions 按保留月数删除过期分区，返回删除数量
func (m *PartitionManager) CleanupExpiredPartitions(ctx context.Context) (int, error) {
	dropped := 0
	for _, table := range m.config.Tables {
		if table.RetentionMonth == 0 {
			// 永久保留
			continue
		}

		cutoff := time.Now().AddDate(0, -table.RetentionMonth, 0)
		cutoff = time.Date(cutoff.Year(), cutoff.Month(), 1, 0, 0, 0, 0, time.UTC)

		count, err := m.dropPartitionsBefore(ctx, table.TableName, cutoff)
		if err != nil {
			log.Printf("[Partition] 清理 %s 过期分区失败: %v", table.TableName, err)
		}
		dropped += count
	}
	return dropped, nil
}

func (m *PartitionManager) dropPartitionsBefore(ctx context.Context, tableName string, before time.Time) (int, error) {
	partitions, err := m.ListPartitions(ctx, tableName)
	if err != nil {
		return 0, err
	}

	dropped := 0
	for _, p := range partitions {
		month, err := parsePartitionMonth(p.Name, tableName)
		if err != nil {
			// 不是本管理器命名的分区，不动
			continue
		}
		if !month.Before(before) {
			continue
		}

		log.Printf("[Partition] 删除过期分区 %s", p.Name)
		if err := m.db.WithContext(ctx).Exec(
			fmt.Sprintf("DROP TABLE IF EXISTS %s", p.Name),
		).Error; err != nil {
			log.Printf("[Partition] 删除 %s 失败: %v", p.Name, err)
			continue
		}
		dropped++
	}
	return dropped, nil
}

func parsePartitionMonth(name, tableName string) (time.Time, error) {
	suffix := strings.TrimPrefix(name, tableName+"_y")
	if suffix == name || len(suffix) < 6 {
		return time.Time{}, fmt.Errorf("无效分区名: %s", name)
	}
	var year, month int
	if _, err := fmt.Sscanf(suffix, "%dm%d", &year, &month); err != nil {
		return time.Time{}, err
	}
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC), nil
}

// ==================== 查询与巡检 ====================

// PartitionInfo 单个分区的信息
type PartitionInfo struct {
	Name      string `gorm:"column:partition_name"`
	Range     string `gorm:"column:partition_range"`
	SizeBytes int64  `gorm:"column:size_bytes"`
}

// ListPartitions 列出某张主表下的全部分区
func (m *PartitionManager) ListPartitions(ctx context.Context, tableName string) ([]PartitionInfo, error) {
	var partitions []PartitionInfo
	err := m.db.WithContext(ctx).Raw(`
		SELECT
			child.relname AS partition_name,
			pg_get_expr(child.relpartbound, child.oid) AS partition_range,
			pg_total_relation_size(child.oid) AS size_bytes
		FROM pg_inherits
		JOIN pg_class parent ON pg_inherits.inhparent = parent.oid
		JOIN pg_class child ON pg_inherits.inhrelid = child.oid
		WHERE parent.relname = ?
		ORDER BY child.relname
	`, tableName).Scan(&partitions).Error
	return partitions, err
}

// TableStats 主表维度的分区统计
type TableStats struct {
	TableName      string `gorm:"column:table_name"`
	PartitionCount int    `gorm:"column:partition_count"`
	TotalSizeBytes int64  `gorm:"column:total_size_bytes"`
}

// GetAllStats 获取全部分区表的统计
func (m *PartitionManager) GetAllStats(ctx context.Context) ([]TableStats, error) {
	var stats []TableStats
	names := m.config.TableNames()
	if len(names) == 0 {
		return stats, nil
	}

	placeholders := make([]string, len(names))
	args := make([]interface{}, len(names))
	for i, name := range names {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = name
	}

	query := fmt.Sprintf(`
		SELECT
			parent.relname AS table_name,
			COUNT(child.relname) AS partition_count,
			COALESCE(SUM(pg_total_relation_size(child.oid)), 0) AS total_size_bytes
		FROM pg_inherits
		JOIN pg_class parent ON pg_inherits.inhparent = parent.oid
		JOIN pg_class child ON pg_inherits.inhrelid = child.oid
		WHERE parent.relname IN (%s)
		GROUP BY parent.relname
		ORDER BY parent.relname
	`, strings.Join(placeholders, ","))

	err := m.db.WithContext(ctx).Raw(query, args...).Scan(&stats).Error
	return stats, err
}

// HealthCheck 检查当月和下月分区是否齐全
// 缺当月分区意味着埋点正在写失败，缺下月意味着月底会出事
func (m *PartitionManager) HealthCheck(ctx context.Context) error {
	now := time.Now()
	current := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	next := current.AddDate(0, 1, 0)

	var missing []string
	for _, table := range m.config.Tables {
		for _, month := range []time.Time{current, next} {
			name := partitionName(table.TableName, month)
			exists, _ := m.relationExists(ctx, name)
			if !exists {
				missing = append(missing, name)
			}
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("缺失分区: %v", missing)
	}
	return nil
}
