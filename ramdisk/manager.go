// Package ramdisk provisions fixed-size tmpfs volumes under a shared root.
//
// All shared state lives in files under the root, so that every short-lived
// invocation of rammer sees the same view:
//
//	<root>/.rammer    marker, present once the root is mounted and ready
//	<root>/.next-id   the next id to hand out, as newline-terminated decimal
//	<root>/<id>       mount point of a live volume
//
// The root and the counter are only mutated while holding their flock.
package ramdisk

import (
	"path/filepath"
	"strconv"

	"github.com/YLonely/rammer/mount"
)

const (
	rootDirMode     = 0777
	rootMountMode   = 0777
	markerFileMode  = 0700
	counterFileMode = 0700
	mountPointMode  = 0700
)

// Manager runs the bootstrap, allocation and lifecycle protocol against one root.
// It holds no state of its own between calls.
type Manager struct {
	config  Config
	mounter mount.Mounter
}

func NewManager(c Config, m mount.Mounter) (*Manager, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &Manager{
		config:  c,
		mounter: m,
	}, nil
}

func (m *Manager) Config() Config {
	return m.config
}

// MountPath returns the mount point of volume id.
func (m *Manager) MountPath(id uint64) string {
	return filepath.Join(m.config.Root, strconv.FormatUint(id, 10))
}

func (m *Manager) markerPath() string {
	return filepath.Join(m.config.Root, m.config.MarkerName)
}

func (m *Manager) counterPath() string {
	return filepath.Join(m.config.Root, m.config.CounterName)
}
