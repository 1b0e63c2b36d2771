package lock_test

import (
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/YLonely/rammer/lock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireFileCreatesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "counter")

	h, err := lock.AcquireFile(path, 0600)
	require.NoError(t, err)
	assert.Equal(t, path, h.Path())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, info.Mode().IsRegular())
	require.NoError(t, h.Release())
}

func TestAcquireDirCreatesMissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "root")

	h, err := lock.AcquireDir(path, 0755)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	require.NoError(t, h.Release())
}

func TestAcquireDirExisting(t *testing.T) {
	path := t.TempDir()

	h, err := lock.AcquireDir(path, 0755)
	require.NoError(t, err)
	require.NoError(t, h.Release())
}

func TestAcquireMissingParent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "missing", "child")

	_, err := lock.AcquireDir(dir, 0755)
	assert.Error(t, err)

	_, err = lock.AcquireFile(filepath.Join(dir, "file"), 0600)
	assert.Error(t, err)
}

func TestReacquireAfterRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")

	for i := 0; i < 3; i++ {
		h, err := lock.AcquireFile(path, 0600)
		require.NoError(t, err)
		require.NoError(t, h.Release())
	}
}

func testMutualExclusion(t *testing.T, acquire func() (*lock.Handle, error)) {
	const workers = 16
	const rounds = 20

	var (
		holders int64
		wg      sync.WaitGroup
		errs    = make(chan error, workers)
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < rounds; j++ {
				h, err := acquire()
				if err != nil {
					errs <- err
					return
				}
				if n := atomic.AddInt64(&holders, 1); n != 1 {
					t.Errorf("%d holders inside the critical section", n)
				}
				atomic.AddInt64(&holders, -1)
				if err := h.Release(); err != nil {
					errs <- err
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
}

func TestFileMutualExclusion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "counter")
	testMutualExclusion(t, func() (*lock.Handle, error) {
		return lock.AcquireFile(path, 0600)
	})
}

func TestDirMutualExclusion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "root")
	testMutualExclusion(t, func() (*lock.Handle, error) {
		return lock.AcquireDir(path, 0755)
	})
}
