package stats

import (
	"fmt"

	"github.com/dignityofwar/diglet-bot-sub001/internal/platform/config"
	"github.com/dignityofwar/diglet-bot-sub001/internal/platform/database"
	"github.com/dignityofwar/diglet-bot-sub001/internal/roster"
)

// globalCalculator 是供Handler和调度器使用的模块级实例
var globalCalculator *Calculator

// ConfigureModule 在应用启动时装配stats模块
func ConfigureModule(cfg *config.Config, oracle roster.Oracle) {
	globalCalculator = &Calculator{
		DB:           database.DB,
		Oracle:       oracle,
		GuildID:      cfg.Guild.GuildID,
		Windows:      cfg.Tracker.StatWindows,
		TrackedRoles: cfg.Guild.TrackedRoles,
	}
}

// PrimeDB 负责初始化stats模块的数据库部分
func PrimeDB() error {
	if err := database.DB.AutoMigrate(&Snapshot{}); err != nil {
		return fmt.Errorf("无法迁移活跃统计快照表: %w", err)
	}
	fmt.Println("活跃统计快照表迁移成功。")
	return nil
}
