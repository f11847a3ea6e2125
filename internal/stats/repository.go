package stats

import (
	"errors"

	"gorm.io/gorm"
)

// FindLatestSnapshot 返回最近一次生成的统计快照，未找到时返回nil
func FindLatestSnapshot(db *gorm.DB) (*Snapshot, error) {
	var snapshot Snapshot
	err := db.Order("id desc").First(&snapshot).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &snapshot, nil
}
