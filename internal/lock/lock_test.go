package lock

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDir(t *testing.T) {
	assert.Equal(t, "/explicit", Dir("/explicit"))

	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
	assert.Equal(t, filepath.Join("/run/user/1000", "shelluse"), Dir(""))

	t.Setenv("XDG_RUNTIME_DIR", "")
	assert.Contains(t, Dir(""), filepath.Join(os.TempDir(), "shelluse-"))
}

func TestPath_EscapesSessionName(t *testing.T) {
	dir := "/locks"
	tests := []string{"dev", "my/session", "../escape", "a b", "%"}
	seen := map[string]bool{}
	for _, s := range tests {
		p := Path(dir, s)
		assert.Equal(t, dir, filepath.Dir(p), "session %q left the lock dir", s)
		assert.False(t, seen[p], "session %q collides", s)
		seen[p] = true
	}
}

func TestAcquire_ExclusivePerSession(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	l1, err := Acquire(ctx, dir, "dev", 0)
	require.NoError(t, err)
	assert.Equal(t, "dev", l1.Session())
	assert.FileExists(t, l1.Path())

	_, err = Acquire(ctx, dir, "dev", 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBusy))
	var busy *BusyError
	require.ErrorAs(t, err, &busy)
	assert.Equal(t, "dev", busy.Session)
	assert.Equal(t, `session "dev" is busy (lock held: `+Path(dir, "dev")+`)`, err.Error())

	// Other sessions are independent.
	l2, err := Acquire(ctx, dir, "work", 0)
	require.NoError(t, err)
	require.NoError(t, l2.Release())

	require.NoError(t, l1.Release())
	l3, err := Acquire(ctx, dir, "dev", 0)
	require.NoError(t, err)
	require.NoError(t, l3.Release())
}

func TestAcquire_WaitsForRelease(t *testing.T) {
	dir := t.TempDir()
	held, err := Acquire(context.Background(), dir, "dev", 0)
	require.NoError(t, err)

	go func() {
		time.Sleep(150 * time.Millisecond)
		_ = held.Release()
	}()

	l, err := Acquire(context.Background(), dir, "dev", 5*time.Second)
	require.NoError(t, err)
	require.NoError(t, l.Release())
}

func TestAcquire_WaitRunsOutIsBusy(t *testing.T) {
	dir := t.TempDir()
	held, err := Acquire(context.Background(), dir, "dev", 0)
	require.NoError(t, err)
	defer held.Release() //nolint:errcheck

	_, err = Acquire(context.Background(), dir, "dev", 120*time.Millisecond)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBusy)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), "waited 120ms")
}

func TestAcquire_EndedContextIsNotBusy(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// The lock is free; a dead context must not be reported as contention.
	_, err := Acquire(ctx, dir, "dev", time.Second)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, errors.Is(err, ErrBusy))
	assert.NotContains(t, err.Error(), "busy")
}

func TestAcquire_ParentDeadlineWhileWaitingIsNotBusy(t *testing.T) {
	dir := t.TempDir()
	held, err := Acquire(context.Background(), dir, "dev", 0)
	require.NoError(t, err)
	defer held.Release() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err = Acquire(ctx, dir, "dev", 10*time.Second)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, errors.Is(err, ErrBusy))
}

func TestAcquire_CreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "locks")
	l, err := Acquire(context.Background(), dir, "dev", 0)
	require.NoError(t, err)
	defer l.Release() //nolint:errcheck
	assert.DirExists(t, dir)
}

func TestHeld(t *testing.T) {
	dir := t.TempDir()
	assert.False(t, Held(dir, "dev"))
	assert.False(t, Held(filepath.Join(dir, "missing"), "dev"))
	assert.NoDirExists(t, filepath.Join(dir, "missing"))

	l, err := Acquire(context.Background(), dir, "dev", 0)
	require.NoError(t, err)
	assert.True(t, Held(dir, "dev"))
	assert.False(t, Held(dir, "work"))

	require.NoError(t, l.Release())
	assert.False(t, Held(dir, "dev"))
}

func TestRelease_Nil(t *testing.T) {
	var l *SessionLock
	assert.NoError(t, l.Release())
}
