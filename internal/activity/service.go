package activity

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// TouchActivity 在观察到成员活跃时刷新台账。
// 首次活跃会创建记录，之后的活跃只刷新显示名和时间戳。
func TouchActivity(db *gorm.DB, memberID, displayName string, when time.Time) error {
	if memberID == "" {
		return fmt.Errorf("活跃事件缺少成员ID")
	}
	record := Record{
		MemberID:       memberID,
		DisplayName:    displayName,
		LastActivityAt: when,
	}
	if err := UpsertRecord(db, &record); err != nil {
		return fmt.Errorf("无法写入活跃台账 (member=%s): %w", memberID, err)
	}
	return nil
}

// RecordJoin 处理成员加入事件。
// 对已有履历的重复加入：置位Rejoined、累计RejoinCount、清空LeftAt并刷新JoinedAt。
func RecordJoin(db *gorm.DB, memberID, displayName string, when time.Time) error {
	if memberID == "" {
		return fmt.Errorf("加入事件缺少成员ID")
	}

	existing, err := FindJoinLeaveByMemberID(db, memberID)
	if err != nil {
		return fmt.Errorf("无法查询加入履历 (member=%s): %w", memberID, err)
	}

	if existing == nil {
		record := JoinLeaveRecord{
			MemberID:    memberID,
			DisplayName: displayName,
			JoinedAt:    when,
		}
		if err := db.Create(&record).Error; err != nil {
			return fmt.Errorf("无法创建加入履历 (member=%s): %w", memberID, err)
		}
		return nil
	}

	existing.Rejoined = true
	existing.RejoinCount++
	existing.LeftAt = nil
	existing.JoinedAt = when
	existing.DisplayName = displayName
	if err := db.Save(existing).Error; err != nil {
		return fmt.Errorf("无法更新重新加入履历 (member=%s): %w", memberID, err)
	}
	fmt.Printf("成员 %s (%s) 重新加入，这是第 %d 次回归。\n", displayName, memberID, existing.RejoinCount)
	return nil
}

// RecordLeave 处理成员离开事件，只填充LeftAt，不删除履历。
func RecordLeave(db *gorm.DB, memberID string, when time.Time) error {
	if memberID == "" {
		return fmt.Errorf("离开事件缺少成员ID")
	}

	existing, err := FindJoinLeaveByMemberID(db, memberID)
	if err != nil {
		return fmt.Errorf("无法查询加入履历 (member=%s): %w", memberID, err)
	}
	if existing == nil {
		// 没有加入履历的离开事件属于上游簿记异常，记录日志但不视为错误
		fmt.Printf("警告: 成员 %s 触发离开事件，但没有加入履历。\n", memberID)
		return nil
	}

	existing.LeftAt = &when
	if err := db.Save(existing).Error; err != nil {
		return fmt.Errorf("无法更新离开履历 (member=%s): %w", memberID, err)
	}
	return nil
}
