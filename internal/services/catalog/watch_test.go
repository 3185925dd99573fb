package catalog_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"college-predictor/internal/services/catalog"
)

func TestWatch_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := writeCSV(t, dir, sampleCSV)

	c := catalog.New(catalog.NewFileLoader(path))
	_, err := c.Reload(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- catalog.Watch(ctx, path, c) }()

	updated := sampleCSV + "CollegeC,Civil Engineering,OPEN,300,86.10\n"

	// The watcher may not be registered yet on the first write, so keep
	// rewriting until the reload lands.
	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte(updated), 0o644)
		return c.Snapshot().Len() == 4
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestWatch_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := writeCSV(t, dir, sampleCSV)

	c := catalog.New(catalog.NewFileLoader(path))
	_, err := c.Reload(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	go func() {
		time.Sleep(50 * time.Millisecond)
		_ = os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644)
	}()

	require.NoError(t, catalog.Watch(ctx, path, c))
	require.Equal(t, uint64(1), c.Snapshot().Version())
}

func TestWatch_MissingDirectory(t *testing.T) {
	c := catalog.New(catalog.NewFileLoader("unused"))
	err := catalog.Watch(context.Background(), filepath.Join(t.TempDir(), "gone", "cutoffs.csv"), c)
	require.Error(t, err)
}
