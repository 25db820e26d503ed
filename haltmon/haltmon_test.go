package haltmon_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/polycount/haltmon"
)

func TestCheckStartupSentinel_Absent(t *testing.T) {
	assert.False(t, haltmon.CheckStartupSentinel(filepath.Join(t.TempDir(), "missing.txt")))
}

func TestCheckStartupSentinel_Present(t *testing.T) {
	path := filepath.Join(t.TempDir(), "halt.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	assert.True(t, haltmon.CheckStartupSentinel(path))
}

func TestCheckStartupSentinel_EmptyPathIsNeverPresent(t *testing.T) {
	assert.False(t, haltmon.CheckStartupSentinel(""))
}

func TestMonitor_CancelsOnHaltFileAppearing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "halt.txt")
	ctx, m := haltmon.New(context.Background(), path)
	defer m.Stop()

	select {
	case <-ctx.Done():
		t.Fatal("context must not be cancelled before the halt file appears")
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context was not cancelled after the halt file appeared")
	}
}

func TestMonitor_StopReleasesGoroutinesWithoutCancelling(t *testing.T) {
	ctx, m := haltmon.New(context.Background(), "")
	m.Stop()
	assert.NoError(t, ctx.Err())
}
