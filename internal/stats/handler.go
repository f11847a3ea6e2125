package stats

import (
	"net/http"
	"time"

	"github.com/dignityofwar/diglet-bot-sub001/internal/platform/database"
	"github.com/gin-gonic/gin"
)

// SnapshotResponse 是统计快照的API响应模型
type SnapshotResponse struct {
	RunID       string         `json:"runId"`
	GeneratedAt time.Time      `json:"generatedAt"`
	Buckets     []WindowBucket `json:"buckets"`
}

func toResponse(snapshot *Snapshot) (*SnapshotResponse, error) {
	buckets, err := snapshot.DecodeBuckets()
	if err != nil {
		return nil, err
	}
	return &SnapshotResponse{
		RunID:       snapshot.RunID,
		GeneratedAt: snapshot.GeneratedAt,
		Buckets:     buckets,
	}, nil
}

// GenerateSnapshot 同步执行一次活跃统计并返回结果
func GenerateSnapshot(c *gin.Context) {
	if globalCalculator == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "统计器尚未初始化"})
		return
	}

	snapshot, err := globalCalculator.Generate(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	resp, err := toResponse(snapshot)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetLatestSnapshot 返回最近一次生成的统计快照
func GetLatestSnapshot(c *gin.Context) {
	snapshot, err := FindLatestSnapshot(database.DB)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if snapshot == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "还没有生成过活跃统计"})
		return
	}
	resp, err := toResponse(snapshot)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, resp)
}
