package metadata

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// --- Generic Accessors ---

// GetValue retrieves a value for a given key from the metadata table.
func GetValue(db *gorm.DB, key string) (string, error) {
	var meta Metadata
	err := db.Where("key = ?", key).First(&meta).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// If the key doesn't exist, return an empty string, which is a valid default.
			return "", nil
		}
		return "", err
	}
	return meta.Value, nil
}

// SetValue creates or updates a value for a given key.
func SetValue(db *gorm.DB, key, value string) error {
	// Use GORM's OnConflict clause for an efficient and atomic "upsert" operation.
	// It will update the 'value' column if a record with the same 'key' already exists.
	meta := Metadata{
		Key:   key,
		Value: value,
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&meta).Error
}

// --- Specific Helpers for Type Conversion ---

// GetLastScanCompletedAt 读取上一次扫描完成的时间，未记录时返回零值。
func GetLastScanCompletedAt(db *gorm.DB) (time.Time, error) {
	valueStr, err := GetValue(db, LastScanCompletedAtKey)
	if err != nil {
		return time.Time{}, err
	}
	if valueStr == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, valueStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("无法解析元数据 '%s' 的值: %w", LastScanCompletedAtKey, err)
	}
	return t, nil
}

// SetLastScanCompletedAt 记录本次扫描完成的时间。
func SetLastScanCompletedAt(db *gorm.DB, t time.Time) error {
	return SetValue(db, LastScanCompletedAtKey, t.UTC().Format(time.RFC3339))
}

// GetLastMetricsDay 读取上一次身份组指标快照对应的dayKey，未记录时返回零值。
func GetLastMetricsDay(db *gorm.DB) (time.Time, error) {
	valueStr, err := GetValue(db, LastMetricsDayKey)
	if err != nil {
		return time.Time{}, err
	}
	if valueStr == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, valueStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("无法解析元数据 '%s' 的值: %w", LastMetricsDayKey, err)
	}
	return t, nil
}

// SetLastMetricsDay 记录本次快照对应的dayKey。
func SetLastMetricsDay(db *gorm.DB, dayKey time.Time) error {
	return SetValue(db, LastMetricsDayKey, dayKey.UTC().Format(time.RFC3339))
}
