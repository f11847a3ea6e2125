package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServiceHandleRejectsDuplicateName(t *testing.T) {
	m := NewManager()

	_, err := m.NewServiceHandle("scan")
	require.NoError(t, err)
	_, err = m.NewServiceHandle("scan")
	assert.Error(t, err)
}

func TestSleepReturnsEarlyOnShutdown(t *testing.T) {
	m := NewManager()
	handle, err := m.NewServiceHandle("scan")
	require.NoError(t, err)

	go func() {
		time.Sleep(20 * time.Millisecond)
		m.Shutdown()
	}()

	start := time.Now()
	err = handle.Sleep(10 * time.Second)
	assert.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestWaitWithTimeoutReportsStragglers(t *testing.T) {
	m := NewManager()
	_, err := m.NewServiceHandle("stuck")
	require.NoError(t, err)

	handle, err := m.NewServiceHandle("quick")
	require.NoError(t, err)
	handle.Close()

	m.Shutdown()
	remaining := m.WaitWithTimeout(50 * time.Millisecond)
	assert.Equal(t, []string{"stuck"}, remaining)
}

func TestWaitWithTimeoutAllClosed(t *testing.T) {
	m := NewManager()
	handle, err := m.NewServiceHandle("scan")
	require.NoError(t, err)

	handle.Close()
	m.Shutdown()
	assert.Nil(t, m.WaitWithTimeout(time.Second))
}
