package metrics

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/dignityofwar/diglet-bot-sub001/internal/platform/database"
	"github.com/gin-gonic/gin"
)

// TriggerEnumeration 手动触发一次身份组指标枚举。
// 运行是异步的，结果会发送到配置的汇报频道。
func TriggerEnumeration(c *gin.Context) {
	if globalEnumerator == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "枚举器尚未初始化"})
		return
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				fmt.Printf("严重错误: 枚举goroutine发生panic: %v\n", r)
			}
		}()
		globalEnumerator.StartEnumeration(context.Background())
	}()

	c.JSON(http.StatusAccepted, gin.H{"status": "started"})
}

// GetLatestMetrics 读取最近一次的指标报告。
// Redis健康时优先读渲染好的缓存，否则从SQLite快照重新渲染。
func GetLatestMetrics(c *gin.Context) {
	if database.IsRedisHealthy() {
		cached, err := GetLatestReportCache()
		if err == nil && cached != "" {
			c.JSON(http.StatusOK, gin.H{"report": cached})
			return
		}
	}

	snapshot, err := FindLatestSnapshot(database.DB)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if snapshot == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "还没有生成过身份组指标"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"dayKey": snapshot.DayKey,
		"report": strings.Join(RenderReport(snapshot), "\n"),
	})
}
