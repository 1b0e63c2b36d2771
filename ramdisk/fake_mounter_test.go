package ramdisk

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/YLonely/rammer/mount"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// fakeMounter records mounts in memory and behaves like the kernel for the
// cases the manager cares about.
type fakeMounter struct {
	mu       sync.Mutex
	mounted  map[string]mount.Mount
	attempts int
	// mountErr, when set, is returned by every Mount call.
	mountErr error
}

var _ mount.Mounter = &fakeMounter{}

func newFakeMounter() *fakeMounter {
	return &fakeMounter{mounted: map[string]mount.Mount{}}
}

func (f *fakeMounter) Mount(m mount.Mount, target string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts++
	if f.mountErr != nil {
		return f.mountErr
	}
	target = filepath.Clean(target)
	if _, err := os.Stat(target); err != nil {
		return &os.PathError{Op: "mount", Path: target, Err: unix.ENOENT}
	}
	if _, exists := f.mounted[target]; exists {
		return &os.PathError{Op: "mount", Path: target, Err: unix.EBUSY}
	}
	f.mounted[target] = m
	return nil
}

func (f *fakeMounter) Unmount(target string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	target = filepath.Clean(target)
	if _, err := os.Stat(target); err != nil {
		return &os.PathError{Op: "umount", Path: target, Err: unix.ENOENT}
	}
	if _, exists := f.mounted[target]; !exists {
		return &os.PathError{Op: "umount", Path: target, Err: unix.EINVAL}
	}
	delete(f.mounted, target)
	return nil
}

func (f *fakeMounter) IsMounted(target string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, exists := f.mounted[filepath.Clean(target)]
	return exists, nil
}

func (f *fakeMounter) mountAttempts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.attempts
}

func (f *fakeMounter) mountOf(target string) (mount.Mount, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, exists := f.mounted[filepath.Clean(target)]
	return m, exists
}

func newTestManager(t *testing.T) (*Manager, *fakeMounter) {
	t.Helper()
	c := DefaultConfig()
	c.Root = filepath.Join(t.TempDir(), "ramdisks")
	f := newFakeMounter()
	m, err := NewManager(c, f)
	require.NoError(t, err)
	return m, f
}
