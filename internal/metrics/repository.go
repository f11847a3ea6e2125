package metrics

import (
	"errors"
	"strings"
	"time"

	"github.com/dignityofwar/diglet-bot-sub001/internal/platform/database"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	// LatestReportCacheKey 是一个Redis String，缓存最近一次渲染好的指标报告
	LatestReportCacheKey = "metrics:latest_report"

	// latestReportTTL 给缓存两天的保质期，覆盖一次调度失败的空窗
	latestReportTTL = 48 * time.Hour
)

// FindSnapshotByDay 按dayKey查找当日快照，未找到时返回nil
func FindSnapshotByDay(db *gorm.DB, dayKey time.Time) (*Snapshot, error) {
	var snapshot Snapshot
	err := db.Where("day_key = ?", dayKey).First(&snapshot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &snapshot, nil
}

// FindLatestSnapshot 返回最近一天的快照，未找到时返回nil
func FindLatestSnapshot(db *gorm.DB) (*Snapshot, error) {
	var snapshot Snapshot
	err := db.Order("day_key desc").First(&snapshot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &snapshot, nil
}

// SetLatestReportCache 把渲染好的报告写入Redis缓存
func SetLatestReportCache(lines []string) error {
	if database.RDB == nil || !database.IsRedisHealthy() {
		return nil
	}
	return database.RDB.Set(database.Ctx, LatestReportCacheKey, strings.Join(lines, "\n"), latestReportTTL).Err()
}

// GetLatestReportCache 从Redis读取最近一次报告，缓存未命中时返回空串
func GetLatestReportCache() (string, error) {
	result, err := database.RDB.Get(database.Ctx, LatestReportCacheKey).Result()
	if err == redis.Nil {
		return "", nil // 缓存未命中，是正常情况，不返回错误
	}
	if err != nil {
		return "", err
	}
	return result, nil
}
