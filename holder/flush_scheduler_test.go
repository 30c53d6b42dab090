package holder

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFlushScheduler_FiresAfterDelay(t *testing.T) {
	var fired int32
	s := NewFlushScheduler(func() { atomic.AddInt32(&fired, 1) }, 30*time.Millisecond)

	s.Schedule()
	require.Equal(t, int32(0), atomic.LoadInt32(&fired))

	time.Sleep(80 * time.Millisecond)
	require.Equal(t, int32(1), atomic.LoadInt32(&fired))
}

func TestFlushScheduler_CoalescesOverlappingSchedules(t *testing.T) {
	var fired int32
	s := NewFlushScheduler(func() { atomic.AddInt32(&fired, 1) }, 40*time.Millisecond)

	for i := 0; i < 5; i++ {
		s.Schedule()
		time.Sleep(10 * time.Millisecond)
	}

	time.Sleep(80 * time.Millisecond)
	require.Equal(t, int32(1), atomic.LoadInt32(&fired))
}

func TestFlushScheduler_StopCancelsPending(t *testing.T) {
	var fired int32
	s := NewFlushScheduler(func() { atomic.AddInt32(&fired, 1) }, 30*time.Millisecond)

	s.Schedule()
	s.Stop()

	time.Sleep(80 * time.Millisecond)
	require.Equal(t, int32(0), atomic.LoadInt32(&fired))
}
