package ramdisk

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Stable identifiers of the step an operation failed in.
const (
	StageInput          = "input"
	StageInitRoot       = "init-root-folder"
	StageReserveID      = "reserve-id"
	StageCreateEndpoint = "create-endpoint"
	StageAllocate       = "allocate-ramdisk"
	StageDestroy        = "destroy-ramdisk"
)

// Error is returned by every Manager operation.
type Error struct {
	Stage string
	Err   error
}

func (e *Error) Error() string {
	return e.Stage + ": " + e.Err.Error()
}

func (e *Error) Cause() error {
	return e.Err
}

func (e *Error) Unwrap() error {
	return e.Err
}

func stageError(stage string, err error) error {
	return &Error{Stage: stage, Err: err}
}

// StageOf returns the stage err failed in, or "" if err does not come from a Manager.
func StageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Stage
	}
	return ""
}

// Errno returns the OS error number behind err. Failures that did not come
// from a system call report EIO.
func Errno(err error) unix.Errno {
	var errno unix.Errno
	if errors.As(err, &errno) {
		return errno
	}
	return unix.EIO
}
