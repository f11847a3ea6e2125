package jobs

import (
	"fmt"
	"time"

	"github.com/dignityofwar/diglet-bot-sub001/internal/metrics"
	"github.com/dignityofwar/diglet-bot-sub001/internal/scanner"
	"github.com/dignityofwar/diglet-bot-sub001/pkg/lifecycle"
)

// 每种任务各自跑在一个专属的Goroutine里，循环内顺序执行，
// 这就是引擎对“同类任务互斥”的全部承诺；跨进程的互斥由部署方保证。

// StartScanScheduler 启动离开者扫描的定时循环。
// 扫描一旦开始就会运行到底；停机信号只会在两次扫描之间被响应。
func StartScanScheduler(handle *lifecycle.Handle, interval time.Duration) {
	defer handle.Close()
	fmt.Println("离开者扫描调度器已启动。")

	for {
		if err := handle.Sleep(interval); err != nil {
			fmt.Println("扫描调度器: 休眠被中断，正在关闭...")
			return
		}

		s := scanner.Default()
		if s == nil {
			fmt.Println("扫描调度器警告: 扫描器尚未初始化，跳过本轮。")
			continue
		}

		fmt.Println("扫描调度器: 开始定时离开者扫描...")
		if _, err := s.Scan(handle.Ctx(), false); err != nil {
			fmt.Printf("扫描调度器错误: 定时扫描失败: %v\n", err)
		}
	}
}

// StartMetricsScheduler 启动每日身份组指标任务。
// 每轮休眠到下一个UTC触发整点，醒来后执行一次枚举。
func StartMetricsScheduler(handle *lifecycle.Handle, runHour int) {
	defer handle.Close()
	fmt.Println("身份组指标调度器已启动。")

	for {
		wait := untilNextRun(time.Now().UTC(), runHour)
		if err := handle.Sleep(wait); err != nil {
			fmt.Println("指标调度器: 休眠被中断，正在关闭...")
			return
		}

		e := metrics.Default()
		if e == nil {
			fmt.Println("指标调度器警告: 枚举器尚未初始化，跳过本轮。")
			continue
		}

		fmt.Println("指标调度器: 开始每日身份组指标枚举...")
		e.StartEnumeration(handle.Ctx())
	}
}

// untilNextRun 计算从now到下一个runHour整点(UTC)的等待时长
func untilNextRun(now time.Time, runHour int) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), runHour, 0, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}
