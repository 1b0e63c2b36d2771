package mount

import (
	"fmt"
	"os"
	"path/filepath"

	mnt "github.com/containerd/containerd/mount"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Mount is a 'Mount' struct from containerd
type Mount mnt.Mount

func (m *Mount) Mount(target string) error {
	mm := mnt.Mount(*m)
	return mm.Mount(target)
}

// NewTmpfs returns a tmpfs mount limited to size bytes whose root directory
// is owned by uid:gid with permission bits mode.
func NewTmpfs(size uint64, uid, gid uint32, mode os.FileMode) Mount {
	return Mount{
		Source: "tmpfs",
		Type:   "tmpfs",
		Options: []string{
			fmt.Sprintf("size=%d", size),
			fmt.Sprintf("uid=%d", uid),
			fmt.Sprintf("gid=%d", gid),
			fmt.Sprintf("mode=%o", unixMode(mode)),
		},
	}
}

func unixMode(mode os.FileMode) uint32 {
	m := uint32(mode.Perm())
	if mode&os.ModeSetuid != 0 {
		m |= unix.S_ISUID
	}
	if mode&os.ModeSetgid != 0 {
		m |= unix.S_ISGID
	}
	if mode&os.ModeSticky != 0 {
		m |= unix.S_ISVTX
	}
	return m
}

// Mounter attaches mounts to and detaches them from the filesystem tree
type Mounter interface {
	Mount(m Mount, target string) error
	// Unmount detaches target. A target that is not a mount point is an error.
	Unmount(target string) error
	IsMounted(target string) (bool, error)
}

// Default is the Mounter backed by mount(2), umount(2) and the mount table of
// the current process.
var Default Mounter = sysMounter{}

type sysMounter struct{}

var _ Mounter = sysMounter{}

func (sysMounter) Mount(m Mount, target string) error {
	return m.Mount(target)
}

// containerd's Unmount treats EINVAL as success, which would let a volume be
// destroyed twice.
func (sysMounter) Unmount(target string) error {
	if err := unix.Unmount(target, 0); err != nil {
		return &os.PathError{Op: "umount", Path: target, Err: err}
	}
	return nil
}

func (sysMounter) IsMounted(target string) (bool, error) {
	infos, err := mnt.Self()
	if err != nil {
		return false, errors.Wrap(err, "failed to read mount table")
	}
	target = filepath.Clean(target)
	for _, info := range infos {
		if filepath.Clean(info.Mountpoint) == target {
			return true, nil
		}
	}
	return false, nil
}
