package metrics

import (
	"fmt"
	"strings"

	"github.com/dignityofwar/diglet-bot-sub001/internal/roster"
)

// RoleFilter 是纯粹的身份组名称分类器。
// 它只依赖配置的白名单和前缀规则，不接触任何平台API对象，可独立测试。
type RoleFilter struct {
	// OnboardedName 是入职身份组的准确名称
	OnboardedName string
	// CommunityGames 是社区正式游戏身份组名称的白名单
	CommunityGames []string
	// RecPrefix 是休闲游戏身份组的保留前缀，例如 "Rec/"
	RecPrefix string
}

// Classification 是一次身份组枚举的分类结果
type Classification struct {
	OnboardedRole      roster.Role
	CommunityGameRoles []roster.Role
	RecGameRoles       []roster.Role
}

// IsCommunityGame 判断身份组名称是否命中社区游戏白名单（精确匹配）
func (f *RoleFilter) IsCommunityGame(name string) bool {
	for _, game := range f.CommunityGames {
		if name == game {
			return true
		}
	}
	return false
}

// IsRecGroup 判断身份组名称是否是休闲游戏组。
// 规则：以保留前缀开头，且整个名称恰好包含一个分隔符'/'。
// 第二个'/'标记子分组（如 "Rec/PS2/Leader"），按设计排除。
func (f *RoleFilter) IsRecGroup(name string) bool {
	if !strings.HasPrefix(name, f.RecPrefix) {
		return false
	}
	return strings.Count(name, "/") == 1
}

// Classify 把全量身份组列表分类为入职组、社区游戏组和休闲游戏组。
// 入职组必须存在且唯一，否则返回配置错误并中止调用方的运行。
func (f *RoleFilter) Classify(roles []roster.Role) (*Classification, error) {
	result := &Classification{}
	onboardedSeen := 0

	for _, role := range roles {
		switch {
		case role.Name == f.OnboardedName:
			onboardedSeen++
			result.OnboardedRole = role
		case f.IsCommunityGame(role.Name):
			result.CommunityGameRoles = append(result.CommunityGameRoles, role)
		case f.IsRecGroup(role.Name):
			result.RecGameRoles = append(result.RecGameRoles, role)
		}
	}

	if onboardedSeen == 0 {
		return nil, fmt.Errorf("找不到入职身份组 '%s'", f.OnboardedName)
	}
	if onboardedSeen > 1 {
		return nil, fmt.Errorf("入职身份组 '%s' 存在 %d 个同名组，无法唯一确定", f.OnboardedName, onboardedSeen)
	}
	return result, nil
}
