package database

import "embed"

// PartitionSQL 嵌入统计表的分区 DDL 和保留策略配置
//
//go:embed partitions/*.sql partitions/*.conf
var PartitionSQL embed.FS
