// Package identity carries the identity of the user rammer acts for.
//
// rammer is installed setuid-root: mounting tmpfs needs root, while the
// volumes it creates belong to whoever invoked it. The invoking identity is
// captured once as a Credential before Elevate and handed down explicitly.
package identity

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Credential is the owner of a volume.
type Credential struct {
	UID uint32 `json:"uid"`
	GID uint32 `json:"gid"`
}

// Caller returns the real user and group of the current process.
func Caller() Credential {
	return Credential{
		UID: uint32(unix.Getuid()),
		GID: uint32(unix.Getgid()),
	}
}

// Elevated reports whether the process may switch to root.
func Elevated() bool {
	return unix.Geteuid() == 0
}

// Elevate makes root the real and effective user and group of the process.
// It fails with EPERM unless the process runs setuid-root or as root.
func Elevate() error {
	if err := unix.Setuid(0); err != nil {
		return errors.Wrap(err, "failed to set uid to root")
	}
	if err := unix.Setgid(0); err != nil {
		return errors.Wrap(err, "failed to set gid to root")
	}
	return nil
}
