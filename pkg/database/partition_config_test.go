package database

import (
	"testing"
	"time"
)

func TestLoadPartitionConfig(t *testing.T) {
	cfg, err := LoadPartitionConfig(PartitionSQL, "partitions")
	if err != nil {
		t.Fatalf("加载分区配置失败: %v", err)
	}

	names := cfg.TableNames()
	if len(names) != 1 || names[0] != "game_analytics" {
		t.Fatalf("分区表名不符: %v", names)
	}

	table := cfg.Table("game_analytics")
	if table == nil {
		t.Fatal("未找到 game_analytics 配置")
	}
	if table.RetentionMonth != 24 {
		t.Errorf("保留月数应为 24, 实际 %d", table.RetentionMonth)
	}
	if table.SQLContent == "" {
		t.Error("建表 SQL 不应为空")
	}

	if cfg.Table("no_such_table") != nil {
		t.Error("未知表名应返回 nil")
	}
}

func TestParseConfigErrors(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"字段数不对", "game_analytics"},
		{"保留月数非数字", "game_analytics,forever"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := &PartitionConfig{}
			if err := cfg.parse(tc.content); err == nil {
				t.Error("应返回解析错误")
			}
		})
	}

	cfg := &PartitionConfig{}
	if err := cfg.parse("# 注释\n\ngame_analytics, 12\n"); err != nil {
		t.Fatalf("合法配置解析失败: %v", err)
	}
	if len(cfg.Tables) != 1 || cfg.Tables[0].RetentionMonth != 12 {
		t.Fatalf("解析结果不符: %+v", cfg.Tables)
	}
}

func TestPartitionNaming(t *testing.T) {
	month := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)
	name := partitionName("game_analytics", month)
	if name != "game_analytics_y2026m03" {
		t.Fatalf("分区名不符: %s", name)
	}

	parsed, err := parsePartitionMonth(name, "game_analytics")
	if err != nil {
		t.Fatalf("解析分区名失败: %v", err)
	}
	if parsed.Year() != 2026 || parsed.Month() != time.March {
		t.Fatalf("解析出的月份不符: %v", parsed)
	}

	if _, err := parsePartitionMonth("other_table_y2026m03", "game_analytics"); err == nil {
		t.Error("前缀不匹配的分区名应报错")
	}
}
