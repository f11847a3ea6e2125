package stats

import (
	"context"
	"testing"
	"time"

	"github.com/dignityofwar/diglet-bot-sub001/internal/activity"
	"github.com/dignityofwar/diglet-bot-sub001/internal/roster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fakeOracle struct {
	roles   []roster.Role
	members []roster.Member
}

func (f *fakeOracle) GetMember(_ context.Context, _, memberID string) (*roster.Member, error) {
	for i := range f.members {
		if f.members[i].MemberID == memberID {
			return &f.members[i], nil
		}
	}
	return nil, roster.ErrMemberNotFound
}

func (f *fakeOracle) GetAllRoles(_ context.Context, _ string) ([]roster.Role, error) {
	return f.roles, nil
}

func (f *fakeOracle) FetchAllMembers(_ context.Context, _ string) ([]roster.Member, error) {
	return f.members, nil
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Snapshot{}, &activity.Record{}))
	return db
}

func touch(t *testing.T, db *gorm.DB, memberID string, daysAgo int) {
	t.Helper()
	when := time.Now().AddDate(0, 0, -daysAgo).Add(time.Hour)
	require.NoError(t, activity.TouchActivity(db, memberID, memberID, when))
}

func bucketFor(t *testing.T, buckets []WindowBucket, days int) WindowBucket {
	t.Helper()
	for _, b := range buckets {
		if b.Days == days {
			return b
		}
	}
	t.Fatalf("没有找到 %d 天的统计窗口", days)
	return WindowBucket{}
}

func TestGenerateCumulativeWindows(t *testing.T) {
	db := newTestDB(t)
	oracle := &fakeOracle{
		roles: []roster.Role{{ID: "r-onb", Name: "Onboarded"}},
		members: []roster.Member{
			{MemberID: "m1", DisplayName: "Alice", RoleIDs: []string{"r-onb"}},
			{MemberID: "m2", DisplayName: "Bob", RoleIDs: []string{"r-onb"}},
			{MemberID: "m3", DisplayName: "Cara", RoleIDs: nil},
		},
	}
	touch(t, db, "m1", 0)  // 今天活跃
	touch(t, db, "m2", 5)  // 5天前活跃
	touch(t, db, "m3", 20) // 20天前活跃

	c := &Calculator{
		DB:           db,
		Oracle:       oracle,
		GuildID:      "guild-1",
		Windows:      []int{1, 7, 30},
		TrackedRoles: []string{"Onboarded"},
	}
	snapshot, err := c.Generate(context.Background())
	require.NoError(t, err)

	buckets, err := snapshot.DecodeBuckets()
	require.NoError(t, err)
	require.Len(t, buckets, 3)

	w1 := bucketFor(t, buckets, 1)
	w7 := bucketFor(t, buckets, 7)
	w30 := bucketFor(t, buckets, 30)

	assert.Equal(t, 1, w1.TotalActive)
	assert.Equal(t, 2, w7.TotalActive)
	assert.Equal(t, 3, w30.TotalActive)

	// 窗口是累积的：短窗口里活跃的成员必然也在长窗口里
	assert.LessOrEqual(t, w1.TotalActive, w7.TotalActive)
	assert.LessOrEqual(t, w7.TotalActive, w30.TotalActive)

	assert.Equal(t, 1, w1.RoleCounts["Onboarded"])
	assert.Equal(t, 2, w7.RoleCounts["Onboarded"])
	assert.Equal(t, 2, w30.RoleCounts["Onboarded"])
}

func TestGenerateExcludesMembersWithoutLedgerRecord(t *testing.T) {
	db := newTestDB(t)
	oracle := &fakeOracle{
		roles: []roster.Role{{ID: "r-onb", Name: "Onboarded"}},
		members: []roster.Member{
			{MemberID: "m1", DisplayName: "Alice", RoleIDs: []string{"r-onb"}},
			{MemberID: "ghost", DisplayName: "Ghost", RoleIDs: []string{"r-onb"}},
		},
	}
	touch(t, db, "m1", 1)
	// ghost没有台账记录，属于簿记异常，必须被排除而不是计为活跃

	c := &Calculator{
		DB:           db,
		Oracle:       oracle,
		GuildID:      "guild-1",
		Windows:      []int{30},
		TrackedRoles: []string{"Onboarded"},
	}
	snapshot, err := c.Generate(context.Background())
	require.NoError(t, err)

	buckets, err := snapshot.DecodeBuckets()
	require.NoError(t, err)
	w30 := bucketFor(t, buckets, 30)
	assert.Equal(t, 1, w30.TotalActive)
	assert.Equal(t, 1, w30.RoleCounts["Onboarded"])
}

func TestGenerateIgnoresLedgerRowsForDepartedMembers(t *testing.T) {
	db := newTestDB(t)
	oracle := &fakeOracle{
		roles: []roster.Role{{ID: "r-onb", Name: "Onboarded"}},
		members: []roster.Member{
			{MemberID: "m1", DisplayName: "Alice", RoleIDs: []string{"r-onb"}},
		},
	}
	touch(t, db, "m1", 1)
	touch(t, db, "leaver", 1) // 有台账但已不在花名册上

	c := &Calculator{
		DB:           db,
		Oracle:       oracle,
		GuildID:      "guild-1",
		Windows:      []int{7},
		TrackedRoles: []string{"Onboarded"},
	}
	snapshot, err := c.Generate(context.Background())
	require.NoError(t, err)

	buckets, err := snapshot.DecodeBuckets()
	require.NoError(t, err)
	assert.Equal(t, 1, bucketFor(t, buckets, 7).TotalActive)
}

func TestGenerateMissingTrackedRoleCountsZero(t *testing.T) {
	db := newTestDB(t)
	oracle := &fakeOracle{
		roles: []roster.Role{{ID: "r-onb", Name: "Onboarded"}},
		members: []roster.Member{
			{MemberID: "m1", DisplayName: "Alice", RoleIDs: []string{"r-onb"}},
		},
	}
	touch(t, db, "m1", 1)

	c := &Calculator{
		DB:           db,
		Oracle:       oracle,
		GuildID:      "guild-1",
		Windows:      []int{7},
		TrackedRoles: []string{"Onboarded", "PS2/Verified"},
	}
	snapshot, err := c.Generate(context.Background())
	require.NoError(t, err)

	buckets, err := snapshot.DecodeBuckets()
	require.NoError(t, err)
	w7 := bucketFor(t, buckets, 7)
	assert.Equal(t, 1, w7.RoleCounts["Onboarded"])
	// 不存在的身份组不会让运行失败，计为0
	assert.Equal(t, 0, w7.RoleCounts["PS2/Verified"])
}

func TestGeneratePersistsSnapshotPerRun(t *testing.T) {
	db := newTestDB(t)
	oracle := &fakeOracle{
		roles:   []roster.Role{{ID: "r-onb", Name: "Onboarded"}},
		members: []roster.Member{{MemberID: "m1", DisplayName: "Alice", RoleIDs: []string{"r-onb"}}},
	}
	touch(t, db, "m1", 1)

	c := &Calculator{
		DB:           db,
		Oracle:       oracle,
		GuildID:      "guild-1",
		Windows:      []int{7},
		TrackedRoles: []string{"Onboarded"},
	}
	first, err := c.Generate(context.Background())
	require.NoError(t, err)
	second, err := c.Generate(context.Background())
	require.NoError(t, err)

	// 统计快照按运行追加，每次运行有独立的RunID
	assert.NotEqual(t, first.RunID, second.RunID)
	var count int64
	require.NoError(t, db.Model(&Snapshot{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)

	latest, err := FindLatestSnapshot(db)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, second.RunID, latest.RunID)
}
