package daemon

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClient_EnsureDaemon_UsesExistingLiveState(t *testing.T) {
	docPath := filepath.Join(t.TempDir(), "doc.hwp")
	require.NoError(t, os.WriteFile(docPath, []byte("x"), 0o644))

	c, err := NewClient(docPath, "/nonexistent/hwpclid")
	require.NoError(t, err)

	want := State{Port: 9999, Token: "tok", PID: os.Getpid(), Version: Version}
	require.NoError(t, WriteState(StatePath(c.docPath), want))
	t.Cleanup(func() { RemoveState(StatePath(c.docPath)) }) //nolint:errcheck

	got, err := c.ensureDaemon()
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestClient_LiveState_RejectsDeadPID(t *testing.T) {
	docPath := filepath.Join(t.TempDir(), "doc.hwp")
	require.NoError(t, os.WriteFile(docPath, []byte("x"), 0o644))

	c, err := NewClient(docPath, "/nonexistent/hwpclid")
	require.NoError(t, err)

	stale := State{Port: 1234, Token: "tok", PID: 1 << 30, Version: Version}
	require.NoError(t, WriteState(StatePath(c.docPath), stale))
	t.Cleanup(func() { RemoveState(StatePath(c.docPath)) }) //nolint:errcheck

	_, ok := c.liveState(StatePath(c.docPath))
	require.False(t, ok)
}

func TestClient_LiveState_RejectsVersionMismatch(t *testing.T) {
	docPath := filepath.Join(t.TempDir(), "doc.hwp")
	require.NoError(t, os.WriteFile(docPath, []byte("x"), 0o644))

	c, err := NewClient(docPath, "/nonexistent/hwpclid")
	require.NoError(t, err)

	mismatched := State{Port: 1234, Token: "tok", PID: os.Getpid(), Version: "stale-version"}
	require.NoError(t, WriteState(StatePath(c.docPath), mismatched))
	t.Cleanup(func() { RemoveState(StatePath(c.docPath)) }) //nolint:errcheck

	_, ok := c.liveState(StatePath(c.docPath))
	require.False(t, ok)
}
