// Package lock provides exclusive, blocking flock(2) locks on filesystem
// entries shared by cooperating processes.
//
// A lock lives as long as its open descriptor, so a process that dies inside
// a critical section releases the lock implicitly. Separate acquisitions in
// the same process use separate descriptors and exclude each other as well.
package lock

import (
	"os"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"
)

// Handle is an exclusive lock held on a path until Release is called.
type Handle struct {
	fl *flock.Flock
}

// AcquireDir creates the directory at path with mode if it does not exist
// and blocks until an exclusive lock on it is held.
func AcquireDir(path string, mode os.FileMode) (*Handle, error) {
	if err := os.Mkdir(path, mode); err != nil && !os.IsExist(err) {
		return nil, errors.Wrapf(err, "failed to create dir %s", path)
	}
	return acquire(flock.New(path, flock.SetFlag(os.O_RDONLY)))
}

// AcquireFile creates the regular file at path with mode if it does not
// exist and blocks until an exclusive lock on it is held.
func AcquireFile(path string, mode os.FileMode) (*Handle, error) {
	return acquire(flock.New(
		path,
		flock.SetFlag(os.O_CREATE|os.O_RDWR),
		flock.SetPermissions(mode),
	))
}

func acquire(fl *flock.Flock) (*Handle, error) {
	if err := fl.Lock(); err != nil {
		return nil, errors.Wrapf(err, "failed to lock %s", fl.Path())
	}
	return &Handle{fl: fl}, nil
}

// Path returns the locked path.
func (h *Handle) Path() string {
	return h.fl.Path()
}

// Release drops the lock and closes the underlying descriptor. It must be
// called exactly once per successful acquisition.
func (h *Handle) Release() error {
	if err := h.fl.Unlock(); err != nil {
		return errors.Wrapf(err, "failed to unlock %s", h.fl.Path())
	}
	return nil
}
