package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geniehq/genie/internal/logging"
)

type batchCollector struct {
	mu      sync.Mutex
	batches [][]ChangeEvent
	signal  chan struct{}
}

func newBatchCollector() *batchCollector {
	return &batchCollector{signal: make(chan struct{}, 10)}
}

func (c *batchCollector) handle(events []ChangeEvent) error {
	c.mu.Lock()
	c.batches = append(c.batches, events)
	c.mu.Unlock()
	c.signal <- struct{}{}
	return nil
}

func (c *batchCollector) wait(t *testing.T) []ChangeEvent {
	t.Helper()
	select {
	case <-c.signal:
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for a debounced batch")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.batches[len(c.batches)-1]
}

func (c *batchCollector) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.batches)
}

func startWatcher(t *testing.T, root string, filters ...FileFilter) *batchCollector {
	t.Helper()

	fw, err := NewFileWatcher(50*time.Millisecond, logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = fw.Stop() })

	for _, filter := range filters {
		fw.AddFilter(filter)
	}
	collector := newBatchCollector()
	fw.AddHandler(collector.handle)
	require.NoError(t, fw.AddRecursive(root))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	fw.Start(ctx)

	return collector
}

func TestWatcherDeliversTemplateChanges(t *testing.T) {
	root := t.TempDir()
	collector := startWatcher(t, root, TemplateFilter)

	path := filepath.Join(root, "readme.md.genie.tmpl")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	events := collector.wait(t)
	require.Len(t, events, 1)
	assert.Equal(t, path, events[0].Path)
}

func TestWatcherFiltersNonTemplateFiles(t *testing.T) {
	root := t.TempDir()
	collector := startWatcher(t, root, TemplateFilter)

	require.NoError(t, os.WriteFile(filepath.Join(root, "plain.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "real.ts.genie.tmpl"), []byte("y"), 0o644))

	events := collector.wait(t)
	require.Len(t, events, 1)
	assert.Contains(t, events[0].Path, "real.ts.genie.tmpl")
}

func TestWatcherDebouncesBurstIntoOneBatch(t *testing.T) {
	root := t.TempDir()
	collector := startWatcher(t, root, TemplateFilter)

	path := filepath.Join(root, "a.txt.genie.tmpl")
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte{byte('a' + i)}, 0o644))
		time.Sleep(5 * time.Millisecond)
	}

	events := collector.wait(t)
	require.Len(t, events, 1, "events for one path should be deduplicated")

	// Let any straggler flush settle, then confirm no extra batches beyond
	// what the burst produced.
	time.Sleep(150 * time.Millisecond)
	assert.LessOrEqual(t, collector.count(), 2)
}

func TestWatcherPicksUpNewDirectories(t *testing.T) {
	root := t.TempDir()
	collector := startWatcher(t, root, TemplateFilter)

	sub := filepath.Join(root, "pkg-new")
	require.NoError(t, os.Mkdir(sub, 0o755))
	// Give the watcher a moment to register the new directory.
	time.Sleep(100 * time.Millisecond)

	path := filepath.Join(sub, "index.ts.genie.tmpl")
	require.NoError(t, os.WriteFile(path, []byte("z"), 0o644))

	events := collector.wait(t)
	require.Len(t, events, 1)
	assert.Equal(t, path, events[0].Path)
}

func TestAddRecursiveSkipsIgnoredDirs(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "node_modules", "dep"), 0o755))

	collector := startWatcher(t, root, TemplateFilter, NoIgnoredDirFilter)

	ignored := filepath.Join(root, "node_modules", "dep", "x.ts.genie.tmpl")
	require.NoError(t, os.WriteFile(ignored, []byte("nope"), 0o644))
	watched := filepath.Join(root, "y.ts.genie.tmpl")
	require.NoError(t, os.WriteFile(watched, []byte("yes"), 0o644))

	events := collector.wait(t)
	require.Len(t, events, 1)
	assert.Equal(t, watched, events[0].Path)
}

func TestEventTypeString(t *testing.T) {
	assert.Equal(t, "created", EventTypeCreated.String())
	assert.Equal(t, "modified", EventTypeModified.String())
	assert.Equal(t, "deleted", EventTypeDeleted.String())
	assert.Equal(t, "renamed", EventTypeRenamed.String())
	assert.Equal(t, "unknown", EventType(42).String())
}
