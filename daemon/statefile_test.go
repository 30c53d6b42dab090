package daemon

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStatePath_Deterministic(t *testing.T) {
	a := StatePath("/docs/report.hwp")
	b := StatePath("/docs/report.hwp")
	require.Equal(t, a, b)
	require.NotEqual(t, a, StatePath("/docs/other.hwp"))
	require.True(t, filepath.IsAbs(a))
}

func TestWriteReadRemoveState_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	st := State{Port: 4242, Token: "abc123", PID: os.Getpid(), Version: Version}

	require.NoError(t, WriteState(path, st))

	got, err := ReadState(path)
	require.NoError(t, err)
	require.Equal(t, st, got)

	require.NoError(t, RemoveState(path))
	_, err = ReadState(path)
	require.Error(t, err)

	require.NoError(t, RemoveState(path)) // idempotent
}

func TestNewToken_LooksRandomHex(t *testing.T) {
	a, err := NewToken()
	require.NoError(t, err)
	require.Len(t, a, 32)

	b, err := NewToken()
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestPidAlive(t *testing.T) {
	require.True(t, pidAlive(os.Getpid()))
	require.False(t, pidAlive(0))
	require.False(t, pidAlive(1<<30))
}
