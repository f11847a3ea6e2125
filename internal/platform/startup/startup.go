package startup

import (
	"fmt"

	"github.com/dignityofwar/diglet-bot-sub001/internal/activity"
	"github.com/dignityofwar/diglet-bot-sub001/internal/metrics"
	"github.com/dignityofwar/diglet-bot-sub001/internal/platform/database"
	"github.com/dignityofwar/diglet-bot-sub001/internal/platform/metadata"
	"github.com/dignityofwar/diglet-bot-sub001/internal/stats"
)

// InitializeApplication 是应用首次启动时执行的总入口
func InitializeApplication() error {
	fmt.Println("开始应用首次初始化...")

	if err := metadata.PrimeDB(); err != nil {
		return err
	}
	if err := activity.PrimeDB(); err != nil {
		return err
	}
	if err := stats.PrimeDB(); err != nil {
		return err
	}
	if err := metrics.PrimeDB(); err != nil {
		return err
	}

	fmt.Println("应用初始化完成！")
	return nil
}

// RebuildCache 在Redis恢复健康后，从SQLite重建报告缓存。
// 这里的缓存都是只读加速层，重建失败不影响引擎的正确性。
func RebuildCache() error {
	fmt.Println("开始缓存热重建...")

	snapshot, err := metrics.FindLatestSnapshot(database.DB)
	if err != nil {
		return fmt.Errorf("无法读取最近的指标快照: %w", err)
	}
	if snapshot != nil {
		if err := metrics.SetLatestReportCache(metrics.RenderReport(snapshot)); err != nil {
			return fmt.Errorf("无法重建指标报告缓存: %w", err)
		}
	}

	fmt.Println("缓存热重建完成。")
	return nil
}
