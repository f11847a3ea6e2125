package metadata

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
	require.NoError(t, db.AutoMigrate(&Metadata{}))
	return db
}

func TestSetValueUpserts(t *testing.T) {
	db := newTestDB(t)

	require.NoError(t, SetValue(db, "k", "v1"))
	require.NoError(t, SetValue(db, "k", "v2"))

	value, err := GetValue(db, "k")
	require.NoError(t, err)
	assert.Equal(t, "v2", value)

	var count int64
	require.NoError(t, db.Model(&Metadata{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestGetValueMissingKeyReturnsEmpty(t *testing.T) {
	db := newTestDB(t)

	value, err := GetValue(db, "does-not-exist")
	require.NoError(t, err)
	assert.Equal(t, "", value)
}

func TestLastScanCompletedAtRoundTrip(t *testing.T) {
	db := newTestDB(t)

	zero, err := GetLastScanCompletedAt(db)
	require.NoError(t, err)
	assert.True(t, zero.IsZero())

	when := time.Date(2026, 8, 15, 4, 30, 0, 0, time.UTC)
	require.NoError(t, SetLastScanCompletedAt(db, when))

	got, err := GetLastScanCompletedAt(db)
	require.NoError(t, err)
	assert.True(t, got.Equal(when))
}
