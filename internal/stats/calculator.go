package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/dignityofwar/diglet-bot-sub001/internal/activity"
	"github.com/dignityofwar/diglet-bot-sub001/internal/roster"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Calculator 负责计算时间分窗的活跃人数和身份组重合度。
// 每个窗口独立计算：成员可以同时活跃于多个窗口，窗口之间不做去重。
type Calculator struct {
	DB     *gorm.DB
	Oracle roster.Oracle

	GuildID string
	// Windows 是统计窗口集合（单位：天）
	Windows []int
	// TrackedRoles 是需要统计重合度的身份组名称
	TrackedRoles []string
}

// Generate 执行一次完整的统计并持久化为一行快照。
// 任何一步失败都会中止本次运行，不会留下部分写入的快照。
func (c *Calculator) Generate(ctx context.Context) (*Snapshot, error) {
	now := time.Now()
	runID := uuid.NewString()
	fmt.Printf("活跃统计 [%s] 开始。\n", runID)

	// 1. 解析被追踪身份组的名称到ID的映射
	roles, err := c.Oracle.GetAllRoles(ctx, c.GuildID)
	if err != nil {
		return nil, fmt.Errorf("无法拉取身份组列表: %w", err)
	}
	trackedIDs := make(map[string]string, len(c.TrackedRoles)) // 名称 -> 身份组ID
	for _, name := range c.TrackedRoles {
		for _, role := range roles {
			if role.Name == name {
				trackedIDs[name] = role.ID
				break
			}
		}
		if _, ok := trackedIDs[name]; !ok {
			fmt.Printf("警告: 被追踪的身份组 '%s' 不存在，本次统计中计为0。\n", name)
		}
	}

	// 2. 一次性拉取实时成员与活跃台账
	members, err := c.Oracle.FetchAllMembers(ctx, c.GuildID)
	if err != nil {
		return nil, fmt.Errorf("无法拉取成员列表: %w", err)
	}
	records, err := activity.FindAllRecords(c.DB)
	if err != nil {
		return nil, fmt.Errorf("无法读取活跃台账: %w", err)
	}
	lastActivity := make(map[string]time.Time, len(records))
	for _, r := range records {
		lastActivity[r.MemberID] = r.LastActivityAt
	}

	// 没有台账记录的在册成员属于上游簿记异常，整个运行只记录一次
	missing := 0
	for _, m := range members {
		if _, ok := lastActivity[m.MemberID]; !ok {
			fmt.Printf("异常: 在册成员 %s (%s) 没有活跃台账记录，已从统计中排除。\n", m.DisplayName, m.MemberID)
			missing++
		}
	}
	if missing > 0 {
		fmt.Printf("警告: 本次统计共有 %d 名在册成员缺少台账记录。\n", missing)
	}

	// 3. 逐窗口独立计算
	buckets := make([]WindowBucket, 0, len(c.Windows))
	for _, days := range c.Windows {
		cutoff := now.AddDate(0, 0, -days)
		bucket := WindowBucket{
			Days:       days,
			RoleCounts: make(map[string]int, len(c.TrackedRoles)),
		}
		for _, name := range c.TrackedRoles {
			bucket.RoleCounts[name] = 0
		}

		for i := range members {
			member := &members[i]
			last, ok := lastActivity[member.MemberID]
			// “活跃”是严格晚于cutoff，边界值不算
			if !ok || !last.After(cutoff) {
				continue
			}
			bucket.TotalActive++
			for name, roleID := range trackedIDs {
				if member.HasRole(roleID) {
					bucket.RoleCounts[name]++
				}
			}
		}
		buckets = append(buckets, bucket)
	}

	// 4. 组装并一次性写入快照
	snapshot := &Snapshot{
		RunID:       runID,
		GeneratedAt: now,
	}
	if err := snapshot.EncodeBuckets(buckets); err != nil {
		return nil, err
	}
	if err := c.DB.Create(snapshot).Error; err != nil {
		return nil, fmt.Errorf("无法写入活跃统计快照: %w", err)
	}

	fmt.Printf("活跃统计 [%s] 完成，共 %d 个窗口。\n", runID, len(buckets))
	return snapshot, nil
}
