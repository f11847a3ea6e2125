package activity

import (
	"time"

	"gorm.io/gorm"
)

// Record 定义了单个成员的活跃台账记录。
// 不变量：每个MemberID至多一条记录；成员确认离开后记录被删除。
type Record struct {
	gorm.Model

	// MemberID 是成员在平台上的稳定唯一ID
	MemberID string `gorm:"uniqueIndex;not null"`

	// DisplayName 是成员当前的显示名，随活跃事件刷新
	DisplayName string

	// LastActivityAt 是最近一次观察到活跃的时间
	LastActivityAt time.Time `gorm:"index"`
}

// JoinLeaveRecord 定义了成员的加入/离开履历。
// 这张表由引擎只增不删：离开只会填充LeftAt，重新加入会累计RejoinCount。
type JoinLeaveRecord struct {
	gorm.Model

	// MemberID 是成员在平台上的稳定唯一ID
	MemberID string `gorm:"uniqueIndex;not null"`

	// DisplayName 是成员最近一次加入时的显示名
	DisplayName string

	// JoinedAt 是最近一次加入的时间，重复加入时会被刷新
	JoinedAt time.Time

	// LeftAt 是离开时间，在重新加入时被清空
	LeftAt *time.Time

	// Rejoined 标记该成员是否曾经离开后又回来
	Rejoined bool

	// RejoinCount 是重新加入的累计次数
	RejoinCount int
}
