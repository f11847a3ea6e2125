package scanner

import (
	"github.com/dignityofwar/diglet-bot-sub001/internal/platform/config"
	"github.com/dignityofwar/diglet-bot-sub001/internal/platform/database"
	"github.com/dignityofwar/diglet-bot-sub001/internal/reporter"
	"github.com/dignityofwar/diglet-bot-sub001/internal/roster"
)

// globalScanner 是供Handler和调度器使用的模块级实例
var globalScanner *Scanner

// ConfigureModule 在应用启动时装配scanner模块
func ConfigureModule(cfg *config.Config, oracle roster.Oracle, rep *reporter.BatchReporter) {
	globalScanner = &Scanner{
		DB:             database.DB,
		Oracle:         oracle,
		Reporter:       rep,
		GuildID:        cfg.Guild.GuildID,
		ChannelID:      cfg.Reporter.ScanChannelID,
		ProgressStride: cfg.Tracker.ProgressStride,
	}
}

// Default 返回模块级的Scanner实例
func Default() *Scanner {
	return globalScanner
}
