package collision

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewTracker(t *testing.T) {
	tracker := NewTracker()

	require.NotNil(t, tracker)
	require.Equal(t, 0, tracker.Count())
	require.False(t, tracker.HasCollision())
	require.Empty(t, tracker.Names())
}

func TestTracker_Track_Success(t *testing.T) {
	tracker := NewTracker()

	require.NoError(t, tracker.Track("Arial", 1))
	require.NoError(t, tracker.Track("Batang", 2))

	require.Equal(t, 2, tracker.Count())
	require.Equal(t, []string{"Arial", "Batang"}, tracker.Names())
	require.False(t, tracker.HasCollision())
}

func TestTracker_Track_RejectsEmptyName(t *testing.T) {
	tracker := NewTracker()

	err := tracker.Track("", 1)
	require.Error(t, err)
}

func TestTracker_Track_DetectsCollision(t *testing.T) {
	tracker := NewTracker()

	require.NoError(t, tracker.Track("Arial", 1))
	require.NoError(t, tracker.Track("Batang", 1)) // same hash, different name

	require.True(t, tracker.HasCollision())
	require.Equal(t, 2, tracker.Count())
}

func TestTracker_IndexOf(t *testing.T) {
	tracker := NewTracker()
	require.NoError(t, tracker.Track("Arial", 1))
	require.NoError(t, tracker.Track("Batang", 2))

	idx, ok := tracker.IndexOf("Batang", 2)
	require.True(t, ok)
	require.Equal(t, 1, idx)

	_, ok = tracker.IndexOf("Gulim", 3)
	require.False(t, ok)
}

func TestTracker_Reset(t *testing.T) {
	tracker := NewTracker()
	require.NoError(t, tracker.Track("Arial", 1))
	require.NoError(t, tracker.Track("Batang", 1))
	require.True(t, tracker.HasCollision())

	tracker.Reset()

	require.Equal(t, 0, tracker.Count())
	require.False(t, tracker.HasCollision())
	require.Empty(t, tracker.Names())
}
