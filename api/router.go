package api

import (
	"github.com/dignityofwar/diglet-bot-sub001/internal/activity"
	"github.com/dignityofwar/diglet-bot-sub001/internal/metrics"
	"github.com/dignityofwar/diglet-bot-sub001/internal/scanner"
	"github.com/dignityofwar/diglet-bot-sub001/internal/stats"
	"github.com/gin-gonic/gin"
)

// SetupRoutes 注册项目的所有API路由
func SetupRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		// 离散的活跃/加入/离开事件上报
		events := api.Group("/events")
		{
			events.POST("/message", activity.HandleMessageEvent)
			events.POST("/join", activity.HandleJoinEvent)
			events.POST("/leave", activity.HandleLeaveEvent)
		}

		// 单个成员的活跃档案
		api.GET("/activity/:memberId", activity.GetMemberActivity)

		// 离开者扫描
		api.POST("/scan", scanner.TriggerScan)
		api.GET("/scan/last", scanner.GetLastScanSummary)

		// 活跃统计
		api.POST("/stats/generate", stats.GenerateSnapshot)
		api.GET("/stats/latest", stats.GetLatestSnapshot)

		// 身份组指标
		api.POST("/metrics/run", metrics.TriggerEnumeration)
		api.GET("/metrics/latest", metrics.GetLatestMetrics)
	}
}
