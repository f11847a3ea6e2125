package metrics

import (
	"testing"

	"github.com/dignityofwar/diglet-bot-sub001/internal/roster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFilter() RoleFilter {
	return RoleFilter{
		OnboardedName:  "Onboarded",
		CommunityGames: []string{"Planetside 2", "Foxhole"},
		RecPrefix:      "Rec/",
	}
}

func TestIsRecGroup(t *testing.T) {
	f := testFilter()

	assert.True(t, f.IsRecGroup("Rec/BestGameEver"))
	assert.True(t, f.IsRecGroup("Rec/Valheim"))

	// 子分组带第二个'/'，不算休闲游戏组
	assert.False(t, f.IsRecGroup("Rec/PS2/Leader"))
	// 没有分隔符的裸前缀词也不算
	assert.False(t, f.IsRecGroup("Rec"))
	assert.False(t, f.IsRecGroup("Recruit"))
	assert.False(t, f.IsRecGroup("Foxhole"))
}

func TestIsCommunityGameExactMatch(t *testing.T) {
	f := testFilter()

	assert.True(t, f.IsCommunityGame("Planetside 2"))
	assert.False(t, f.IsCommunityGame("planetside 2"))
	assert.False(t, f.IsCommunityGame("Planetside"))
}

func TestClassifySplitsRoles(t *testing.T) {
	f := testFilter()
	roles := []roster.Role{
		{ID: "1", Name: "Onboarded"},
		{ID: "2", Name: "Planetside 2"},
		{ID: "3", Name: "Rec/Valheim"},
		{ID: "4", Name: "Rec/PS2/Leader"},
		{ID: "5", Name: "Moderator"},
	}

	result, err := f.Classify(roles)
	require.NoError(t, err)

	assert.Equal(t, "1", result.OnboardedRole.ID)
	require.Len(t, result.CommunityGameRoles, 1)
	assert.Equal(t, "Planetside 2", result.CommunityGameRoles[0].Name)
	require.Len(t, result.RecGameRoles, 1)
	assert.Equal(t, "Rec/Valheim", result.RecGameRoles[0].Name)
}

func TestClassifyRequiresOnboardedRole(t *testing.T) {
	f := testFilter()

	_, err := f.Classify([]roster.Role{{ID: "2", Name: "Planetside 2"}})
	assert.Error(t, err)
}

func TestClassifyRejectsDuplicateOnboardedRole(t *testing.T) {
	f := testFilter()

	_, err := f.Classify([]roster.Role{
		{ID: "1", Name: "Onboarded"},
		{ID: "2", Name: "Onboarded"},
	})
	assert.Error(t, err)
}
