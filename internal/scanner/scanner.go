package scanner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dignityofwar/diglet-bot-sub001/internal/activity"
	"github.com/dignityofwar/diglet-bot-sub001/internal/platform/database"
	"github.com/dignityofwar/diglet-bot-sub001/internal/platform/metadata"
	"github.com/dignityofwar/diglet-bot-sub001/internal/reporter"
	"github.com/dignityofwar/diglet-bot-sub001/internal/roster"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Scanner 负责把活跃台账和实时花名册对账，清理离开者记录。
// 一次Scan是一个单线程的顺序全表扫描：逐条查询、逐条决策，
// 任何单条记录的失败都被就地吸收，不会中断整个扫描。
type Scanner struct {
	DB       *gorm.DB
	Oracle   roster.Oracle
	Reporter *reporter.BatchReporter

	GuildID   string
	ChannelID string
	// ProgressStride 控制进度汇报的频率（每处理多少条编辑一次状态行）
	ProgressStride int
}

// Report 汇总了一次扫描的结果
type Report struct {
	RunID      string    `json:"runId"`
	DryRun     bool      `json:"dryRun"`
	Total      int       `json:"total"`
	Removed    int       `json:"removed"`
	Failed     int       `json:"failed"`
	Remaining  int       `json:"remaining"`
	Lines      []string  `json:"lines"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
}

// scanCursor 把进度状态行的可变状态收敛到一个对象里，随扫描循环线性推进。
// 状态行创建失败时cursor会降级为只写日志，不影响扫描本身。
type scanCursor struct {
	status *reporter.StatusLine
	stride int
	total  int
}

func (c *scanCursor) advance(ctx context.Context, done int) {
	if done%c.stride != 0 && done != c.total {
		return
	}
	text := fmt.Sprintf("Scanning activity records... %d of %d", done, c.total)
	if c.status == nil {
		fmt.Println(text)
		return
	}
	if err := c.status.Edit(ctx, text); err != nil {
		fmt.Printf("警告: 无法更新扫描进度消息: %v\n", err)
	}
}

func (c *scanCursor) finish(ctx context.Context) {
	if c.status == nil {
		return
	}
	if err := c.status.Delete(ctx); err != nil {
		fmt.Printf("警告: 无法删除扫描进度消息: %v\n", err)
	}
}

// Scan 执行一次完整的离开者扫描。
// dryRun为true时照常判定和汇报，但不删除任何台账记录。
// 除台账初始读取失败外，扫描总是运行到底并以一条总结消息收尾。
func (s *Scanner) Scan(ctx context.Context, dryRun bool) (*Report, error) {
	report := &Report{
		RunID:     uuid.NewString(),
		DryRun:    dryRun,
		StartedAt: time.Now(),
	}
	fmt.Printf("离开者扫描 [%s] 开始 (dryRun=%v)。\n", report.RunID, dryRun)

	records, err := activity.FindAllRecords(s.DB)
	if err != nil {
		// 台账都读不出来，本次运行没有可做的事，以一条错误消息收尾
		msg := fmt.Sprintf("Error scanning activity records. Error: %v", err)
		if sendErr := s.Reporter.SendMessage(ctx, s.ChannelID, msg); sendErr != nil {
			fmt.Printf("错误: 无法发送扫描失败消息: %v\n", sendErr)
		}
		return nil, fmt.Errorf("无法读取活跃台账: %w", err)
	}
	report.Total = len(records)

	cursor := s.newCursor(ctx, len(records))

	for i := range records {
		record := &records[i]
		s.scanOne(ctx, record, dryRun, report)
		cursor.advance(ctx, i+1)
	}

	cursor.finish(ctx)

	// 先冲刷批量结果行，再发送总结，保证总结永远是本次运行的最后一条消息
	if len(report.Lines) > 0 {
		if err := s.Reporter.SendLines(ctx, s.ChannelID, report.Lines); err != nil {
			fmt.Printf("错误: 无法发送扫描结果行: %v\n", err)
		}
	}

	// 失败的记录视为“未移除”，所以 remaining 只和 removed 相关
	report.Remaining = report.Total - report.Removed
	report.FinishedAt = time.Now()
	summary := fmt.Sprintf(
		"Activity scan complete. Removed **%d** leavers out of activity records. **%d** records remaining.",
		report.Removed, report.Remaining,
	)
	if err := s.Reporter.SendMessage(ctx, s.ChannelID, summary); err != nil {
		fmt.Printf("错误: 无法发送扫描总结消息: %v\n", err)
	}

	s.bookkeep(report, summary)

	fmt.Printf("离开者扫描 [%s] 完成: total=%d removed=%d failed=%d remaining=%d\n",
		report.RunID, report.Total, report.Removed, report.Failed, report.Remaining)
	return report, nil
}

// scanOne 处理单条台账记录，所有错误都收敛为计数和报告行
func (s *Scanner) scanOne(ctx context.Context, record *activity.Record, dryRun bool, report *Report) {
	member, err := s.Oracle.GetMember(ctx, s.GuildID, record.MemberID)

	switch {
	case errors.Is(err, roster.ErrMemberNotFound):
		// 确认离开者
		if !dryRun {
			if delErr := activity.RemoveRecord(s.DB, record); delErr != nil {
				report.Failed++
				line := fmt.Sprintf("- Failed to remove %s (%s): %v", record.DisplayName, record.MemberID, delErr)
				report.Lines = append(report.Lines, line)
				fmt.Printf("错误: 删除台账记录失败 (member=%s): %v\n", record.MemberID, delErr)
				return
			}
		}
		report.Removed++
		report.Lines = append(report.Lines, fmt.Sprintf("- Removed %s (%s)", record.DisplayName, record.MemberID))

	case err != nil:
		// 瞬时平台故障：按记录隔离，不中断扫描
		report.Failed++
		line := fmt.Sprintf("- Failed to verify %s (%s): %v", record.DisplayName, record.MemberID, err)
		report.Lines = append(report.Lines, line)
		fmt.Printf("错误: 查询成员失败 (member=%s): %v\n", record.MemberID, err)

	default:
		// 仍在花名册中，确认活跃
		fmt.Printf("成员 %s (%s) 仍在花名册中。\n", member.DisplayName, member.MemberID)
	}
}

// newCursor 创建进度游标；状态行创建失败时降级为日志模式
func (s *Scanner) newCursor(ctx context.Context, total int) *scanCursor {
	cursor := &scanCursor{stride: s.ProgressStride, total: total}
	if cursor.stride <= 0 {
		cursor.stride = 10
	}
	status, err := s.Reporter.NewStatusLine(ctx, s.ChannelID,
		fmt.Sprintf("Scanning activity records... 0 of %d", total))
	if err != nil {
		fmt.Printf("警告: 无法创建扫描进度消息，进度将只写入日志: %v\n", err)
		return cursor
	}
	cursor.status = status
	return cursor
}

// bookkeep 在运行结束后更新元数据与Redis里的最近一次总结
func (s *Scanner) bookkeep(report *Report, summary string) {
	if !report.DryRun {
		if err := metadata.SetLastScanCompletedAt(s.DB, report.FinishedAt); err != nil {
			fmt.Printf("警告: 无法记录扫描完成时间: %v\n", err)
		}
	}
	if database.RDB != nil && database.IsRedisHealthy() {
		if err := database.RDB.Set(database.Ctx, metadata.RedisLastScanSummaryKey, summary, 0).Err(); err != nil {
			fmt.Printf("警告: 无法缓存扫描总结: %v\n", err)
		}
	}
}
