package worker

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweeperRemovesOnlyExpiredFiles(t *testing.T) {
	dir := t.TempDir()

	oldPath := filepath.Join(dir, "old.pdf")
	require.NoError(t, os.WriteFile(oldPath, []byte("old"), 0o644))
	stale := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(oldPath, stale, stale))

	freshPath := filepath.Join(dir, "fresh.pdf")
	require.NoError(t, os.WriteFile(freshPath, []byte("fresh"), 0o644))

	sweeper := NewArtifactSweeper(dir, time.Minute, 20*time.Millisecond)
	sweeper.Start(context.Background())
	defer sweeper.Close()

	assert.Eventually(t, func() bool {
		_, err := os.Stat(oldPath)
		return os.IsNotExist(err)
	}, time.Second, 10*time.Millisecond)

	_, err := os.Stat(freshPath)
	assert.NoError(t, err, "files inside the TTL window must survive")
}

func TestSweeperToleratesMissingDir(t *testing.T) {
	sweeper := NewArtifactSweeper(filepath.Join(t.TempDir(), "nope"), time.Minute, 10*time.Millisecond)
	sweeper.Start(context.Background())
	time.Sleep(50 * time.Millisecond)
	sweeper.Close()
}
