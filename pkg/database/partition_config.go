package database

import (
	"bufio"
	"embed"
	"fmt"
	"path"
	"strconv"
	"strings"
)

// PartitionTableConfig 单张分区表的配置
// 统计表按月分区，DDL 随二进制一起嵌入发布
type PartitionTableConfig struct {
	TableName      string // 表名，同时是 SQL 文件名（<table>.sql）
	RetentionMonth int    // 保留月数，0 表示永久保留
	SQLContent     string // 建主表的 DDL
}

// PartitionConfig 全部分区表配置
type PartitionConfig struct {
	Tables []PartitionTableConfig
}

// LoadPartitionConfig 从嵌入文件系统加载分区配置
// 配置文件 partition_tables.conf 每行 "表名,保留月数"
func LoadPartitionConfig(embedFS embed.FS, root string) (*PartitionConfig, error) {
	confData, err := embedFS.ReadFile(path.Join(root, "partition_tables.conf"))
	if err != nil {
		return nil, fmt.Errorf("读取分区配置失败: %w", err)
	}

	cfg := &PartitionConfig{}
	if err := cfg.parse(string(confData)); err != nil {
		return nil, err
	}

	for i := range cfg.Tables {
		sqlFile := cfg.Tables[i].TableName + ".sql"
		sqlData, err := embedFS.ReadFile(path.Join(root, sqlFile))
		if err != nil {
			return nil, fmt.Errorf("读取建表 SQL %s 失败: %w", sqlFile, err)
		}
		cfg.Tables[i].SQLContent = string(sqlData)
	}

	return cfg, nil
}

func (c *PartitionConfig) parse(content string) error {
	scanner := bufio.NewScanner(strings.NewReader(content))
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Split(line, ",")
		if len(parts) != 2 {
			return fmt.Errorf("分区配置第 %d 行格式错误: %s", lineNum, line)
		}

		retention, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return fmt.Errorf("分区配置第 %d 行保留月数无效: %s", lineNum, parts[1])
		}

		c.Tables = append(c.Tables, PartitionTableConfig{
			TableName:      strings.TrimSpace(parts[0]),
			RetentionMonth: retention,
		})
	}

	return scanner.Err()
}

// TableNames 全部分区表名
func (c *PartitionConfig) TableNames() []string {
	names := make([]string, len(c.Tables))
	for i, t := range c.Tables {
		names[i] = t.TableName
	}
	return names
}

// Table 按名字取表配置，不存在返回 nil
func (c *PartitionConfig) Table(name string) *PartitionTableConfig {
	for i := range c.Tables {
		if c.Tables[i].TableName == name {
			return &c.Tables[i]
		}
	}
	return nil
}
