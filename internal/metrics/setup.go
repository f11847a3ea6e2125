package metrics

import (
	"fmt"

	"github.com/dignityofwar/diglet-bot-sub001/internal/platform/config"
	"github.com/dignityofwar/diglet-bot-sub001/internal/platform/database"
	"github.com/dignityofwar/diglet-bot-sub001/internal/reporter"
	"github.com/dignityofwar/diglet-bot-sub001/internal/roster"
)

// globalEnumerator 是供Handler和调度器使用的模块级实例
var globalEnumerator *Enumerator

// ConfigureModule 在应用启动时装配metrics模块
func ConfigureModule(cfg *config.Config, oracle roster.Oracle, rep *reporter.BatchReporter) {
	globalEnumerator = &Enumerator{
		DB:        database.DB,
		Oracle:    oracle,
		Reporter:  rep,
		GuildID:   cfg.Guild.GuildID,
		ChannelID: cfg.Reporter.MetricsChannelID,
		Filter: RoleFilter{
			OnboardedName:  cfg.Guild.OnboardedRoleName,
			CommunityGames: cfg.Guild.CommunityGames,
			RecPrefix:      cfg.Guild.RecRolePrefix,
		},
		ActiveWindowDays: cfg.Tracker.ActiveWindowDays,
		Overlap:          CountOverlapNaive,
	}
}

// Default 返回模块级的Enumerator实例
func Default() *Enumerator {
	return globalEnumerator
}

// PrimeDB 负责初始化metrics模块的数据库部分
func PrimeDB() error {
	if err := database.DB.AutoMigrate(&Snapshot{}); err != nil {
		return fmt.Errorf("无法迁移身份组指标快照表: %w", err)
	}
	fmt.Println("身份组指标快照表迁移成功。")
	return nil
}
