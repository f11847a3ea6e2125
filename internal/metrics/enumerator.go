package metrics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dignityofwar/diglet-bot-sub001/internal/activity"
	"github.com/dignityofwar/diglet-bot-sub001/internal/platform/metadata"
	"github.com/dignityofwar/diglet-bot-sub001/internal/reporter"
	"github.com/dignityofwar/diglet-bot-sub001/internal/roster"
	"gorm.io/gorm"
)

// OverlapCounter 统计“持有某身份组且处于活跃集合中”的成员数。
// 默认实现是嵌套循环，社区规模下足够；如果规模增长，
// 可以在装配时替换为基于索引的实现，枚举器本身不关心计数策略。
type OverlapCounter func(members []roster.Member, roleID string, active map[string]struct{}) int

// CountOverlapNaive 是默认的O(成员数)重合计数实现
func CountOverlapNaive(members []roster.Member, roleID string, active map[string]struct{}) int {
	count := 0
	for i := range members {
		member := &members[i]
		if _, ok := active[member.MemberID]; !ok {
			continue
		}
		if member.HasRole(roleID) {
			count++
		}
	}
	return count
}

// Enumerator 负责每日身份组参与度的枚举、快照和汇报
type Enumerator struct {
	DB       *gorm.DB
	Oracle   roster.Oracle
	Reporter *reporter.BatchReporter

	GuildID   string
	ChannelID string
	Filter    RoleFilter
	// ActiveWindowDays 是“活跃”的判定阈值（天）
	ActiveWindowDays int
	// Overlap 是可替换的重合计数策略
	Overlap OverlapCounter
}

// StartEnumeration 执行一次完整的枚举运行。
// 任何步骤的错误都在这里收口：记录日志、向频道发送一条错误消息，然后停止。
// 删除加写入的快照更新是成功路径上最后一个变更动作，失败不会留下半成品状态。
func (e *Enumerator) StartEnumeration(ctx context.Context) {
	if err := e.run(ctx); err != nil {
		fmt.Printf("错误: 身份组指标枚举失败: %v\n", err)
		msg := fmt.Sprintf("Error enumerating role metrics. Error: %v", err)
		if sendErr := e.Reporter.SendMessage(ctx, e.ChannelID, msg); sendErr != nil {
			fmt.Printf("错误: 无法发送枚举失败消息: %v\n", sendErr)
		}
	}
}

func (e *Enumerator) run(ctx context.Context) error {
	// 1. 解析服务器上下文，不可用时立刻失败
	if e.GuildID == "" {
		return fmt.Errorf("服务器配置缺失，无法定位花名册")
	}
	roles, err := e.Oracle.GetAllRoles(ctx, e.GuildID)
	if err != nil {
		return fmt.Errorf("无法拉取身份组列表: %w", err)
	}

	// 2. 分类身份组；入职组缺失或不唯一都是配置错误
	classification, err := e.Filter.Classify(roles)
	if err != nil {
		return err
	}

	// 3. 圈定活跃成员集合
	now := time.Now()
	cutoff := now.AddDate(0, 0, -e.ActiveWindowDays)
	active, err := activity.FindActiveMemberIDs(e.DB, cutoff)
	if err != nil {
		return fmt.Errorf("无法读取活跃成员集合: %w", err)
	}

	// 4. 全量拉取成员并逐组计数
	members, err := e.Oracle.FetchAllMembers(ctx, e.GuildID)
	if err != nil {
		return fmt.Errorf("无法拉取成员列表: %w", err)
	}

	overlap := e.Overlap
	if overlap == nil {
		overlap = CountOverlapNaive
	}

	onboardedActive := overlap(members, classification.OnboardedRole.ID, active)
	communityCounts := make(map[string]int, len(classification.CommunityGameRoles))
	for _, role := range classification.CommunityGameRoles {
		communityCounts[role.Name] = overlap(members, role.ID, active)
	}
	recCounts := make(map[string]int, len(classification.RecGameRoles))
	for _, role := range classification.RecGameRoles {
		recCounts[role.Name] = overlap(members, role.ID, active)
	}

	// 同一天重复运行采用后写覆盖：删除旧快照和写入新快照放在同一个事务里
	dayKey := DayKeyFor(now)
	snapshot := &Snapshot{
		DayKey:              dayKey,
		OnboardedActive:     onboardedActive,
		CommunityGameCounts: toJSONMap(communityCounts),
		RecGameCounts:       toJSONMap(recCounts),
	}
	err = e.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("day_key = ?", dayKey).Delete(&Snapshot{}).Error; err != nil {
			return fmt.Errorf("无法删除当日旧快照: %w", err)
		}
		if err := tx.Create(snapshot).Error; err != nil {
			return fmt.Errorf("无法写入当日快照: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	// 5. 回读快照做自校验，然后渲染并发送报告
	stored, err := FindSnapshotByDay(e.DB, dayKey)
	if err != nil {
		return fmt.Errorf("无法回读当日快照: %w", err)
	}
	if stored == nil {
		// 并发运行或写入丢失，以一条终态消息结束本次运行
		if sendErr := e.Reporter.SendMessage(ctx, e.ChannelID, "No role metrics found!"); sendErr != nil {
			fmt.Printf("错误: 无法发送快照缺失消息: %v\n", sendErr)
		}
		return nil
	}

	lines := RenderReport(stored)
	if err := e.Reporter.SendLines(ctx, e.ChannelID, lines); err != nil {
		return fmt.Errorf("无法发送身份组指标报告: %w", err)
	}

	e.bookkeep(dayKey, lines)
	fmt.Printf("身份组指标枚举完成 (dayKey=%s, onboardedActive=%d)。\n",
		dayKey.Format("2006-01-02"), onboardedActive)
	return nil
}

// bookkeep 在成功路径上更新元数据和报告缓存，失败只记日志
func (e *Enumerator) bookkeep(dayKey time.Time, lines []string) {
	if err := metadata.SetLastMetricsDay(e.DB, dayKey); err != nil {
		fmt.Printf("警告: 无法记录指标运行日期: %v\n", err)
	}
	if err := SetLatestReportCache(lines); err != nil {
		fmt.Printf("警告: 无法缓存指标报告: %v\n", err)
	}
}

// RenderReport 把快照渲染成带百分比标注的报告行。
// 两个映射都按人数降序排列，百分比以入职活跃人数为分母，保留一位小数。
func RenderReport(snapshot *Snapshot) []string {
	lines := []string{
		fmt.Sprintf("**Role metrics for %s**", snapshot.DayKey.Format("2006-01-02")),
		fmt.Sprintf("Onboarded active members: **%d**", snapshot.OnboardedActive),
	}

	lines = append(lines, "Community games:")
	lines = append(lines, renderCounts(fromJSONMap(snapshot.CommunityGameCounts), snapshot.OnboardedActive)...)
	lines = append(lines, "Rec games:")
	lines = append(lines, renderCounts(fromJSONMap(snapshot.RecGameCounts), snapshot.OnboardedActive)...)
	return lines
}

func renderCounts(counts map[string]int, onboarded int) []string {
	type entry struct {
		name  string
		count int
	}
	entries := make([]entry, 0, len(counts))
	for name, count := range counts {
		entries = append(entries, entry{name: name, count: count})
	}
	// 人数降序，同数时按名称排序保证输出稳定
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].name < entries[j].name
	})

	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		percent := 0.0
		if onboarded > 0 {
			percent = float64(e.count) / float64(onboarded) * 100
		}
		lines = append(lines, fmt.Sprintf("- %s: %d (%.1f%%)", e.name, e.count, percent))
	}
	return lines
}
