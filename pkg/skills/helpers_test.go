package skills

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// writeSkill creates root/id/SKILL.md and returns its path
func writeSkill(t *testing.T, root, id, content string) string {
	t.Helper()
	dir := filepath.Join(root, id)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, SkillFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func skillContent(name, description, body string) string {
	return fmt.Sprintf("---\nname: %s\ndescription: %s\n---\n%s", name, description, body)
}

// touch moves the modification time of path forward by d
func touch(t *testing.T, path string, d time.Duration) {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	mtime := info.ModTime().Add(d)
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

// countingFS wraps the OS filesystem and counts calls
type countingFS struct {
	OSFileSystem
	stats  atomic.Int64
	reads  atomic.Int64
	globs  atomic.Int64
	failMu sync.Mutex
	fail   map[string]error
}

func newCountingFS() *countingFS {
	return &countingFS{fail: make(map[string]error)}
}

func (c *countingFS) failReads(path string, err error) {
	c.failMu.Lock()
	defer c.failMu.Unlock()
	c.fail[path] = err
}

func (c *countingFS) Stat(name string) (fs.FileInfo, error) {
	c.stats.Add(1)
	return c.OSFileSystem.Stat(name)
}

func (c *countingFS) ReadFile(name string) ([]byte, error) {
	c.reads.Add(1)
	c.failMu.Lock()
	err := c.fail[name]
	c.failMu.Unlock()
	if err != nil {
		return nil, err
	}
	return c.OSFileSystem.ReadFile(name)
}

func (c *countingFS) DirFS(dir string) fs.FS {
	c.globs.Add(1)
	return c.OSFileSystem.DirFS(dir)
}

func (c *countingFS) total() int64 {
	return c.stats.Load() + c.reads.Load() + c.globs.Load()
}

// fakeClock is a manually advanced clock
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
