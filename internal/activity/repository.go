package activity

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 这一组函数构成活跃台账(ActivityLedger)的数据访问层。
// 所有函数都显式接收*gorm.DB，便于在事务内复用，也便于测试注入内存库。

// FindAllRecords 全表拉取活跃台账，按插入顺序返回。
// 扫描器依赖这个顺序来保证进度与报告行的稳定排序。
func FindAllRecords(db *gorm.DB) ([]Record, error) {
	var records []Record
	if err := db.Order("id asc").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// FindRecordByMemberID 按成员ID精确查找台账记录，未找到时返回nil。
func FindRecordByMemberID(db *gorm.DB, memberID string) (*Record, error) {
	var record Record
	err := db.Where("member_id = ?", memberID).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// RemoveRecord 删除一条台账记录
func RemoveRecord(db *gorm.DB, record *Record) error {
	return db.Unscoped().Delete(record).Error
}

// UpsertRecord 按MemberID幂等写入台账记录
func UpsertRecord(db *gorm.DB, record *Record) error {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "member_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"display_name", "last_activity_at", "updated_at"}),
	}).Create(record).Error
}

// CountRecords 返回台账的记录总数
func CountRecords(db *gorm.DB) (int64, error) {
	var count int64
	err := db.Model(&Record{}).Count(&count).Error
	return count, err
}

// FindActiveMemberIDs 返回最近活跃时间严格晚于cutoff的成员ID集合。
// “活跃”的边界是排他的：恰好等于cutoff的记录不算活跃。
func FindActiveMemberIDs(db *gorm.DB, cutoff time.Time) (map[string]struct{}, error) {
	var ids []string
	if err := db.Model(&Record{}).
		Where("last_activity_at > ?", cutoff).
		Pluck("member_id", &ids).Error; err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// FindJoinLeaveByMemberID 按成员ID查找加入/离开履历，未找到时返回nil。
func FindJoinLeaveByMemberID(db *gorm.DB, memberID string) (*JoinLeaveRecord, error) {
	var record JoinLeaveRecord
	err := db.Where("member_id = ?", memberID).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}
