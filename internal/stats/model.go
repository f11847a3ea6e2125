package stats

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// WindowBucket 是单个活跃窗口的统计结果。
// 窗口是累计式的：活跃于短窗口的成员必然也活跃于更长的窗口。
type WindowBucket struct {
	// Days 是窗口的回看天数
	Days int `json:"days"`
	// TotalActive 是窗口内活跃的在册成员数
	TotalActive int `json:"totalActive"`
	// RoleCounts 是活跃成员中各个被追踪身份组的持有人数
	RoleCounts map[string]int `json:"roleCounts"`
}

// Snapshot 定义了一次活跃统计运行的持久化结果。
// 每次Generate产生恰好一行，不做按天去重。
type Snapshot struct {
	gorm.Model

	// RunID 是本次生成运行的唯一标识
	RunID string `gorm:"index"`

	// GeneratedAt 是统计的基准时间，所有窗口的cutoff都从它推算
	GeneratedAt time.Time

	// Buckets 是全部窗口结果的JSON序列化
	Buckets datatypes.JSON
}

// TableName 固定表名，避免与其他模块的快照表混淆
func (Snapshot) TableName() string {
	return "activity_stats_snapshots"
}

// EncodeBuckets 把窗口结果写入快照
func (s *Snapshot) EncodeBuckets(buckets []WindowBucket) error {
	data, err := json.Marshal(buckets)
	if err != nil {
		return fmt.Errorf("无法序列化窗口统计: %w", err)
	}
	s.Buckets = datatypes.JSON(data)
	return nil
}

// DecodeBuckets 从快照中还原窗口结果
func (s *Snapshot) DecodeBuckets() ([]WindowBucket, error) {
	var buckets []WindowBucket
	if err := json.Unmarshal(s.Buckets, &buckets); err != nil {
		return nil, fmt.Errorf("无法解析窗口统计: %w", err)
	}
	return buckets, nil
}
