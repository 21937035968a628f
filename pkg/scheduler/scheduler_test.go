package scheduler

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScheduler(t *testing.T) {
	s, err := NewScheduler("America/New_York")
	require.NoError(t, err)
	defer s.Stop()

	assert.Equal(t, "America/New_York", s.cron.Location().String())
}

func TestNewScheduler_InvalidTimezone(t *testing.T) {
	_, err := NewScheduler("Invalid/Zone")
	assert.Error(t, err)
}

func TestSchedule_ReplacesJob(t *testing.T) {
	s, err := NewScheduler("UTC")
	require.NoError(t, err)
	defer s.Stop()

	require.NoError(t, s.Schedule("0 6 * * *", func() {}))
	require.NoError(t, s.Schedule("@every 6h", func() {}))
	s.Start()

	assert.Len(t, s.cron.Entries(), 1)
	assert.False(t, s.Next().IsZero())
}

func TestSchedule_InvalidSpec(t *testing.T) {
	s, err := NewScheduler("UTC")
	require.NoError(t, err)

	for _, spec := range []string{"", "every day", "61 * * * *", "@fortnightly"} {
		assert.Error(t, s.Schedule(spec, func() {}), spec)
	}
	assert.True(t, s.Next().IsZero())
}

func TestSchedule_RunsJob(t *testing.T) {
	s, err := NewScheduler("UTC")
	require.NoError(t, err)

	var runs atomic.Int32
	require.NoError(t, s.Schedule("@every 1s", func() { runs.Add(1) }))
	s.Start()

	assert.Eventually(t, func() bool { return runs.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
	s.Stop()
}

func TestStop_Idempotent(t *testing.T) {
	s, err := NewScheduler("UTC")
	require.NoError(t, err)

	s.Stop()
	s.Start()
	s.Stop()
	s.Stop()
}
