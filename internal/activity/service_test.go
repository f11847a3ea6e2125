package activity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Record{}, &JoinLeaveRecord{}))
	return db
}

func TestTouchActivityCreatesThenRefreshes(t *testing.T) {
	db := newTestDB(t)
	first := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	second := first.Add(48 * time.Hour)

	require.NoError(t, TouchActivity(db, "100", "Alice", first))
	require.NoError(t, TouchActivity(db, "100", "Alicia", second))

	// 重复活跃不会产生第二条记录
	count, err := CountRecords(db)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	record, err := FindRecordByMemberID(db, "100")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "Alicia", record.DisplayName)
	assert.True(t, record.LastActivityAt.Equal(second))
}

func TestTouchActivityRejectsEmptyMemberID(t *testing.T) {
	db := newTestDB(t)
	assert.Error(t, TouchActivity(db, "", "Nobody", time.Now()))
}

func TestRecordJoinFirstTime(t *testing.T) {
	db := newTestDB(t)
	joined := time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC)

	require.NoError(t, RecordJoin(db, "200", "Bob", joined))

	record, err := FindJoinLeaveByMemberID(db, "200")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.False(t, record.Rejoined)
	assert.Equal(t, 0, record.RejoinCount)
	assert.Nil(t, record.LeftAt)
	assert.True(t, record.JoinedAt.Equal(joined))
}

func TestRecordJoinAfterLeaveMarksRejoin(t *testing.T) {
	db := newTestDB(t)
	joined := time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC)
	left := joined.Add(30 * 24 * time.Hour)
	rejoined := left.Add(10 * 24 * time.Hour)

	require.NoError(t, RecordJoin(db, "200", "Bob", joined))
	require.NoError(t, RecordLeave(db, "200", left))
	require.NoError(t, RecordJoin(db, "200", "Bobby", rejoined))

	record, err := FindJoinLeaveByMemberID(db, "200")
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.True(t, record.Rejoined)
	assert.Equal(t, 1, record.RejoinCount)
	assert.Nil(t, record.LeftAt, "回归之后LeftAt必须被清空")
	assert.True(t, record.JoinedAt.Equal(rejoined))
	assert.Equal(t, "Bobby", record.DisplayName)

	// 第二次回归继续累计
	require.NoError(t, RecordLeave(db, "200", rejoined.Add(time.Hour)))
	require.NoError(t, RecordJoin(db, "200", "Bobby", rejoined.Add(2*time.Hour)))
	record, err = FindJoinLeaveByMemberID(db, "200")
	require.NoError(t, err)
	assert.Equal(t, 2, record.RejoinCount)
}

func TestRecordLeaveWithoutJoinIsNotAnError(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, RecordLeave(db, "999", time.Now()))

	record, err := FindJoinLeaveByMemberID(db, "999")
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestFindActiveMemberIDsCutoffIsExclusive(t *testing.T) {
	db := newTestDB(t)
	cutoff := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, TouchActivity(db, "1", "Exact", cutoff))
	require.NoError(t, TouchActivity(db, "2", "After", cutoff.Add(time.Second)))
	require.NoError(t, TouchActivity(db, "3", "Before", cutoff.Add(-time.Second)))

	active, err := FindActiveMemberIDs(db, cutoff)
	require.NoError(t, err)

	// 恰好落在cutoff上的记录不算活跃
	assert.NotContains(t, active, "1")
	assert.Contains(t, active, "2")
	assert.NotContains(t, active, "3")
}
