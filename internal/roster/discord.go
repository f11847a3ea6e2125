package roster

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// membersPageSize 是平台成员列表接口单页的最大条数
const membersPageSize = 1000

// DiscordOracle 是Oracle的Discord实现，基于REST接口按需查询。
// 网关连接、事件订阅等连接生命周期不在本仓库范围内。
type DiscordOracle struct {
	session *discordgo.Session
}

// NewDiscordOracle 用机器人令牌构造一个DiscordOracle
func NewDiscordOracle(botToken string) (*DiscordOracle, error) {
	session, err := discordgo.New("Bot " + botToken)
	if err != nil {
		return nil, fmt.Errorf("无法创建Discord会话: %w", err)
	}
	return &DiscordOracle{session: session}, nil
}

// GetMember 查询单个成员。成员确认缺席时返回ErrMemberNotFound。
func (o *DiscordOracle) GetMember(ctx context.Context, guildID, memberID string) (*Member, error) {
	m, err := o.session.GuildMember(guildID, memberID, discordgo.WithContext(ctx))
	if err != nil {
		if isUnknownMember(err) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("查询成员 %s 失败: %w", memberID, err)
	}
	member := convertMember(m)
	return &member, nil
}

// GetAllRoles 拉取服务器的全部身份组
func (o *DiscordOracle) GetAllRoles(ctx context.Context, guildID string) ([]Role, error) {
	apiRoles, err := o.session.GuildRoles(guildID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("拉取身份组列表失败: %w", err)
	}
	roles := make([]Role, 0, len(apiRoles))
	for _, r := range apiRoles {
		roles = append(roles, Role{ID: r.ID, Name: r.Name})
	}
	return roles, nil
}

// FetchAllMembers 按页拉取全部成员，直到平台返回不满一页为止
func (o *DiscordOracle) FetchAllMembers(ctx context.Context, guildID string) ([]Member, error) {
	var members []Member
	after := ""
	for {
		page, err := o.session.GuildMembers(guildID, after, membersPageSize, discordgo.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("拉取成员列表失败 (after=%q): %w", after, err)
		}
		for _, m := range page {
			members = append(members, convertMember(m))
		}
		if len(page) < membersPageSize {
			return members, nil
		}
		after = page[len(page)-1].User.ID
	}
}

// isUnknownMember 识别平台的“未知成员”错误码，与瞬时故障区分开
func isUnknownMember(err error) bool {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Message != nil {
		return restErr.Message.Code == discordgo.ErrCodeUnknownMember ||
			restErr.Message.Code == discordgo.ErrCodeUnknownUser
	}
	return false
}

// convertMember 把平台成员对象收敛成引擎需要的只读视图
func convertMember(m *discordgo.Member) Member {
	name := m.Nick
	if name == "" && m.User != nil {
		name = m.User.Username
	}
	id := ""
	if m.User != nil {
		id = m.User.ID
	}
	roleIDs := make([]string, len(m.Roles))
	copy(roleIDs, m.Roles)
	return Member{
		MemberID:    id,
		DisplayName: name,
		RoleIDs:     roleIDs,
	}
}
