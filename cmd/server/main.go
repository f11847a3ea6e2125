package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/dignityofwar/diglet-bot-sub001/api"
	"github.com/dignityofwar/diglet-bot-sub001/internal/jobs"
	"github.com/dignityofwar/diglet-bot-sub001/internal/metrics"
	"github.com/dignityofwar/diglet-bot-sub001/internal/platform/config"
	"github.com/dignityofwar/diglet-bot-sub001/internal/platform/database"
	"github.com/dignityofwar/diglet-bot-sub001/internal/platform/health"
	"github.com/dignityofwar/diglet-bot-sub001/internal/platform/shutdown"
	"github.com/dignityofwar/diglet-bot-sub001/internal/platform/startup"
	"github.com/dignityofwar/diglet-bot-sub001/internal/reporter"
	"github.com/dignityofwar/diglet-bot-sub001/internal/roster"
	"github.com/dignityofwar/diglet-bot-sub001/internal/scanner"
	"github.com/dignityofwar/diglet-bot-sub001/internal/stats"
	"github.com/dignityofwar/diglet-bot-sub001/pkg/lifecycle"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("无法加载配置: %v", err))
	}

	database.InitDB(cfg.Database.Sqlite)
	database.InitRedis(cfg.Database.Redis)

	// 阻塞式获取初始Run ID
	health.InitializeRunID()

	// 执行应用首次启动初始化流程
	if err := startup.InitializeApplication(); err != nil {
		panic(fmt.Sprintf("应用初始化失败，无法启动: %v", err))
	}

	// 装配平台边界：花名册查询和出站消息
	oracle, err := roster.NewDiscordOracle(cfg.Guild.BotToken)
	if err != nil {
		panic(fmt.Sprintf("无法初始化花名册查询端: %v", err))
	}
	sink, err := reporter.NewDiscordSink(cfg.Guild.BotToken)
	if err != nil {
		panic(fmt.Sprintf("无法初始化消息通道: %v", err))
	}
	batchReporter := reporter.NewBatchReporter(
		sink,
		cfg.Reporter.ChunkSize,
		time.Duration(cfg.Reporter.SendIntervalMs)*time.Millisecond,
	)

	// 装配各个业务模块
	scanner.ConfigureModule(cfg, oracle, batchReporter)
	stats.ConfigureModule(cfg, oracle)
	metrics.ConfigureModule(cfg, oracle, batchReporter)

	// 阻塞式执行一次启动后健康检查，然后常驻后台
	fmt.Println("正在执行启动后健康检查...")
	health.PerformCheck()
	go health.StartRedisHealthCheck()

	// 启动后台调度任务
	gracefulMgr := lifecycle.NewManager()
	forcefulMgr := lifecycle.NewManager()

	scanHandle, err := gracefulMgr.NewServiceHandle("leaver-scan")
	if err != nil {
		panic(err)
	}
	go jobs.StartScanScheduler(scanHandle, time.Duration(cfg.Tracker.ScanIntervalHours)*time.Hour)

	metricsHandle, err := gracefulMgr.NewServiceHandle("role-metrics")
	if err != nil {
		panic(err)
	}
	go jobs.StartMetricsScheduler(metricsHandle, cfg.Tracker.MetricsRunHour)

	// HTTP服务
	gin.SetMode(cfg.Server.Mode)
	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.Cors.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api.SetupRoutes(r)

	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: r,
	}

	go func() {
		fmt.Printf("服务器已准备就绪，开始监听 %s\n", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			panic("Failed to start server: " + err.Error())
		}
	}()

	// 阻塞等待停机信号，协调两阶段停机
	coordinator := shutdown.NewCoordinator(gracefulMgr, forcefulMgr)
	coordinator.ListenForSignalsAndShutdown(server)
}
