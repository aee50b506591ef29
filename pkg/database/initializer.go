package database

import (
	"context"
	"embed"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"
)

// Initializer 负责建库：普通表走 AutoMigrate，
// 埋点统计表走分区 DDL，两边在这里收口
type Initializer struct {
	db             *gorm.DB
	config         *PartitionConfig
	manager        *PartitionManager
	nonPartitioned []interface{}
	postMigrateSQL []string
	futureMonths   int
}

// InitOptions 初始化选项
type InitOptions struct {
	// 分区 DDL 的嵌入文件系统及其根目录
	EmbedFS   *embed.FS
	EmbedRoot string

	// 走 AutoMigrate 的普通表 Model
	NonPartitionedModels []interface{}

	// AutoMigrate 之后执行的补充 DDL（部分唯一索引这类 AutoMigrate 做不了的）
	PostMigrateSQL []string

	// 预创建未来几个月的分区（默认 3）
	FutureMonths int
}

// NewInitializer 创建初始化器
func NewInitializer(db *gorm.DB, opts InitOptions) (*Initializer, error) {
	if opts.EmbedFS == nil {
		return nil, fmt.Errorf("必须指定 EmbedFS")
	}

	config, err := LoadPartitionConfig(*opts.EmbedFS, opts.EmbedRoot)
	if err != nil {
		return nil, fmt.Errorf("加载分区配置失败: %w", err)
	}

	if opts.FutureMonths == 0 {
		opts.FutureMonths = 3
	}

	return &Initializer{
		db:             db,
		config:         config,
		manager:        NewPartitionManager(db, config),
		nonPartitioned: opts.NonPartitionedModels,
		postMigrateSQL: opts.PostMigrateSQL,
		futureMonths:   opts.FutureMonths,
	}, nil
}

// Initialize 执行初始化
func (i *Initializer) Initialize(ctx context.Context) error {
	log.Println("[DB] 开始数据库初始化...")
	start := time.Now()

	// 1. 创建分区主表
	log.Println("[DB] 1/3 创建统计分区主表...")
	if err := i.manager.InitPartitionTables(ctx); err != nil {
		return fmt.Errorf("创建分区表失败: %w", err)
	}

	// 2. 预创建月分区，保证埋点写入不会落到不存在的分区上
	log.Printf("[DB] 2/3 创建未来 %d 个月分区...", i.futureMonths)
	if err := i.manager.EnsureFuturePartitions(ctx, i.futureMonths); err != nil {
		return fmt.Errorf("创建分区失败: %w", err)
	}

	// 3. AutoMigrate 普通表（布局、游戏、设置）
	if len(i.nonPartitioned) > 0 {
		log.Printf("[DB] 3/3 AutoMigrate %d 个普通表...", len(i.nonPartitioned))
		if err := i.db.WithContext(ctx).AutoMigrate(i.nonPartitioned...); err != nil {
			return fmt.Errorf("AutoMigrate 失败: %w", err)
		}
	}

	// 4. 补充 DDL
	for _, sql := range i.postMigrateSQL {
		if err := i.db.WithContext(ctx).Exec(sql).Error; err != nil {
			return fmt.Errorf("执行补充 DDL 失败: %w", err)
		}
	}

	i.printStats(ctx)

	log.Printf("[DB] 初始化完成，耗时 %v", time.Since(start))
	return nil
}

func (i *Initializer) printStats(ctx context.Context) {
	stats, err := i.manager.GetAllStats(ctx)
	if err != nil {
		return
	}
	for _, s := range stats {
		log.Printf("[DB] %s: %d 分区, %.2f MB",
			s.TableName, s.PartitionCount, float64(s.TotalSizeBytes)/1024/1024)
	}
}

// GetManager 获取分区管理器
func (i *Initializer) GetManager() *PartitionManager {
	return i.manager
}

// ==================== 全局实例 ====================

var globalInit *Initializer

// SetGlobal 设置全局实例
func SetGlobal(init *Initializer) {
	globalInit = init
}

// Global 获取全局实例
func Global() *Initializer {
	return globalInit
}

// QuickInit 快速初始化，服务启动时调用一次
func QuickInit(db *gorm.DB, models []interface{}, postMigrateSQL ...string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	init, err := NewInitializer(db, InitOptions{
		EmbedFS:              &PartitionSQL,
		EmbedRoot:            "partitions",
		NonPartitionedModels: models,
		PostMigrateSQL:       postMigrateSQL,
		FutureMonths:         3,
	})
	if err != nil {
		return err
	}

	SetGlobal(init)
	return init.Initialize(ctx)
}
