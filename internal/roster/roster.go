package roster

import (
	"context"
	"errors"
)

// ErrMemberNotFound 表示成员确认不在花名册中。
// 这是离开者判定的正常信号，必须与瞬时的平台调用失败严格区分。
var ErrMemberNotFound = errors.New("roster: member not found")

// Role 是平台身份组的本地只读视图
type Role struct {
	ID   string
	Name string
}

// Member 是平台成员的本地只读视图，角色集合在抓取时一并缓存
type Member struct {
	MemberID    string
	DisplayName string
	RoleIDs     []string
}

// HasRole 判断成员是否持有指定身份组
func (m *Member) HasRole(roleID string) bool {
	for _, id := range m.RoleIDs {
		if id == roleID {
			return true
		}
	}
	return false
}

// Oracle 是实时花名册的查询边界。
// 引擎对花名册只读；所有实现都必须满足：
//   - GetMember 在成员确认缺席时返回 ErrMemberNotFound，
//     其他错误一律视为瞬时平台故障；
//   - FetchAllMembers 返回的成员携带完整的身份组集合。
type Oracle interface {
	GetMember(ctx context.Context, guildID, memberID string) (*Member, error)
	GetAllRoles(ctx context.Context, guildID string) ([]Role, error)
	FetchAllMembers(ctx context.Context, guildID string) ([]Member, error)
}
