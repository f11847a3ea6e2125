package scanner

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/dignityofwar/diglet-bot-sub001/internal/platform/database"
	"github.com/dignityofwar/diglet-bot-sub001/internal/platform/metadata"
	"github.com/gin-gonic/gin"
)

// TriggerScan 手动触发一次离开者扫描。
// 扫描本身可能耗时数分钟，这里异步启动并立即返回。
// 引擎不对并发运行做互斥，调用方需要自行避免重复触发。
func TriggerScan(c *gin.Context) {
	if globalScanner == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "扫描器尚未初始化"})
		return
	}

	dryRun, err := strconv.ParseBool(c.DefaultQuery("dryRun", "false"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "dryRun 参数必须是布尔值"})
		return
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				fmt.Printf("严重错误: 扫描goroutine发生panic: %v\n", r)
			}
		}()
		if _, err := globalScanner.Scan(context.Background(), dryRun); err != nil {
			fmt.Printf("错误: 手动触发的扫描失败: %v\n", err)
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{"status": "started", "dryRun": dryRun})
}

// GetLastScanSummary 读取最近一次扫描的总结。
// Redis健康时读缓存，否则退回到SQLite里的完成时间。
func GetLastScanSummary(c *gin.Context) {
	if database.IsRedisHealthy() {
		summary, err := database.RDB.Get(database.Ctx, metadata.RedisLastScanSummaryKey).Result()
		if err == nil && summary != "" {
			c.JSON(http.StatusOK, gin.H{"summary": summary})
			return
		}
	}

	completedAt, err := metadata.GetLastScanCompletedAt(database.DB)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if completedAt.IsZero() {
		c.JSON(http.StatusNotFound, gin.H{"error": "还没有完成过扫描"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"lastCompletedAt": completedAt})
}
