package metrics

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Snapshot 定义了每日身份组参与度快照。
// 不变量：每个DayKey至多一行；重复运行采用“后写覆盖”语义，
// 由删除加写入的单个事务保证。
type Snapshot struct {
	gorm.Model

	// DayKey 是按UTC截断到当日零点的日历日期
	DayKey time.Time `gorm:"uniqueIndex"`

	// OnboardedActive 是既持有入职身份组又在活跃窗口内的成员数
	OnboardedActive int

	// CommunityGameCounts 是社区正式游戏身份组的活跃人数映射（名称 -> 人数）
	CommunityGameCounts datatypes.JSONMap

	// RecGameCounts 是休闲游戏身份组的活跃人数映射（名称 -> 人数）
	RecGameCounts datatypes.JSONMap
}

// TableName 固定表名，避免与活跃统计快照混淆
func (Snapshot) TableName() string {
	return "role_metrics_snapshots"
}

// DayKeyFor 把任意时间截断为UTC当日零点。
// 调度器和快照去重都必须使用同一个时区，这里统一取UTC以避免夏令时重跑。
func DayKeyFor(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// toJSONMap 把人数映射转换成可持久化的JSON列
func toJSONMap(counts map[string]int) datatypes.JSONMap {
	m := make(datatypes.JSONMap, len(counts))
	for name, count := range counts {
		m[name] = count
	}
	return m
}

// fromJSONMap 从JSON列还原人数映射。
// 数字的动态类型取决于来源：内存中的映射是int，从数据库回读时
// JSONMap的Scan走json.Number，标准反序列化则给float64，三者都要收。
func fromJSONMap(m datatypes.JSONMap) map[string]int {
	counts := make(map[string]int, len(m))
	for name, v := range m {
		switch n := v.(type) {
		case json.Number:
			if i, err := n.Int64(); err == nil {
				counts[name] = int(i)
			}
		case float64:
			counts[name] = int(n)
		case int:
			counts[name] = n
		case int64:
			counts[name] = int(n)
		}
	}
	return counts
}
