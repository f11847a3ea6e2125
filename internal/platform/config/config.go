package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Cfg 是一个全局变量，用于存储所有应用程序的配置
var Cfg *Config

// Config 结构体定义了应用程序的所有配置项
// 它与 config.yaml 文件的结构完全对应
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Guild    GuildConfig    `mapstructure:"guild"`
	Tracker  TrackerConfig  `mapstructure:"tracker"`
	Reporter ReporterConfig `mapstructure:"reporter"`
}

// ServerConfig 定义了服务器相关的配置
type ServerConfig struct {
	Mode    string     `mapstructure:"mode"`
	Address string     `mapstructure:"address"`
	Cors    CorsConfig `mapstructure:"cors"`
}

// CorsConfig 定义了CORS相关的配置
type CorsConfig struct {
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

// DatabaseConfig 定义了数据库和缓存相关的配置
type DatabaseConfig struct {
	Redis  RedisConfig  `mapstructure:"redis"`
	Sqlite SqliteConfig `mapstructure:"sqlite"`
}

// RedisConfig 定义了Redis的配置
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// SqliteConfig 定义了SQLite数据文件的配置
type SqliteConfig struct {
	Path string `mapstructure:"path"`
}

// GuildConfig 定义了社区服务器相关的配置
type GuildConfig struct {
	// GuildID 是目标服务器的唯一ID
	GuildID string `mapstructure:"guildId"`
	// BotToken 是访问平台API的机器人令牌
	BotToken string `mapstructure:"botToken"`
	// OnboardedRoleName 是入职身份组的准确名称，必须全服唯一
	OnboardedRoleName string `mapstructure:"onboardedRoleName"`
	// CommunityGames 是社区正式游戏身份组的白名单（按名称精确匹配）
	CommunityGames []string `mapstructure:"communityGames"`
	// RecRolePrefix 是休闲游戏身份组的保留前缀，例如 "Rec/"
	RecRolePrefix string `mapstructure:"recRolePrefix"`
	// TrackedRoles 是活跃统计中需要计算重合度的身份组名称
	TrackedRoles []string `mapstructure:"trackedRoles"`
}

// TrackerConfig 定义了活跃追踪引擎的配置
type TrackerConfig struct {
	// StatWindows 是活跃统计的窗口集合（单位：天）
	StatWindows []int `mapstructure:"statWindows"`
	// ActiveWindowDays 是身份组指标中“活跃”的判定阈值（单位：天）
	ActiveWindowDays int `mapstructure:"activeWindowDays"`
	// ScanIntervalHours 是离开者扫描的调度间隔（单位：小时）
	ScanIntervalHours int `mapstructure:"scanIntervalHours"`
	// MetricsRunHour 是每日身份组指标任务的触发整点（UTC）
	MetricsRunHour int `mapstructure:"metricsRunHour"`
	// ProgressStride 是扫描进度汇报的步长
	ProgressStride int `mapstructure:"progressStride"`
}

// ReporterConfig 定义了批量消息汇报器的配置
type ReporterConfig struct {
	// ChunkSize 是单条平台消息允许的最大字符数
	ChunkSize int `mapstructure:"chunkSize"`
	// SendIntervalMs 是两条消息之间的发送间隔，用于规避平台限流
	SendIntervalMs int `mapstructure:"sendIntervalMs"`
	// ScanChannelID 是离开者扫描报告的目标频道
	ScanChannelID string `mapstructure:"scanChannelId"`
	// MetricsChannelID 是身份组指标报告的目标频道
	MetricsChannelID string `mapstructure:"metricsChannelId"`
}

// LoadConfig 函数负责查找、加载和解析配置文件
// 它会在指定的路径中查找名为 config.yaml 的文件
func LoadConfig() (*Config, error) {
	v := viper.New()

	// 1. 设置配置文件名和类型
	v.SetConfigName("config") // 文件名 (不带扩展名)
	v.SetConfigType("yaml")   // 文件类型

	// 2. 添加配置文件搜索路径
	v.AddConfigPath("./config") // `config/config.yaml`
	v.AddConfigPath(".")        // `./config.yaml` (如果在根目录)

	// 3. 设置关键配置的默认值，保证缺省情况下引擎行为与线上一致
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.address", ":8080")
	v.SetDefault("database.sqlite.path", "activity.db")
	v.SetDefault("guild.onboardedRoleName", "Onboarded")
	v.SetDefault("guild.recRolePrefix", "Rec/")
	v.SetDefault("tracker.statWindows", []int{1, 2, 7, 14, 30, 60, 90})
	v.SetDefault("tracker.activeWindowDays", 90)
	v.SetDefault("tracker.scanIntervalHours", 24)
	v.SetDefault("tracker.metricsRunHour", 6)
	v.SetDefault("tracker.progressStride", 10)
	v.SetDefault("reporter.chunkSize", 2000)
	v.SetDefault("reporter.sendIntervalMs", 1200)

	// 4. 设置环境变量支持
	// 允许通过环境变量覆盖配置，例如 GUILD_BOTTOKEN=xxx
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 5. 读取配置文件
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	// 6. 将配置反序列化到结构体中
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	// 7. 将加载的配置赋值给全局变量
	Cfg = &cfg

	return Cfg, nil
}

// validate 对缺失时会导致引擎静默错跑的配置项做启动期校验
func (c *Config) validate() error {
	if c.Guild.GuildID == "" {
		return fmt.Errorf("配置缺失: guild.guildId 不能为空")
	}
	if c.Guild.OnboardedRoleName == "" {
		return fmt.Errorf("配置缺失: guild.onboardedRoleName 不能为空")
	}
	if len(c.Tracker.StatWindows) == 0 {
		return fmt.Errorf("配置缺失: tracker.statWindows 至少需要一个窗口")
	}
	if c.Tracker.ProgressStride <= 0 {
		return fmt.Errorf("配置无效: tracker.progressStride 必须为正数")
	}
	return nil
}
