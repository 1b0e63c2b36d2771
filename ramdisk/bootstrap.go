package ramdisk

import (
	"os"

	"github.com/YLonely/rammer"
	"github.com/YLonely/rammer/lock"
	"github.com/YLonely/rammer/log"
	"github.com/YLonely/rammer/mount"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// EnsureRootReady mounts the root tmpfs and creates the marker, exactly once
// across all processes sharing the root. When the marker already exists it
// returns without taking any lock.
func (m *Manager) EnsureRootReady() error {
	marker := m.markerPath()
	if _, err := os.Stat(marker); err == nil {
		return nil
	}
	logger := log.Logger(rammer.BootstrapComponent, "EnsureRootReady")
	logger.WithField("root", m.config.Root).Debug("root is not ready, waiting for the root lock")
	l, err := lock.AcquireDir(m.config.Root, rootDirMode)
	if err != nil {
		return stageError(StageInitRoot, err)
	}
	err = m.initRoot()
	if rerr := l.Release(); rerr != nil {
		if err == nil {
			err = rerr
		} else {
			logger.WithError(rerr).Warn("failed to release the root lock")
		}
	}
	if err != nil {
		return stageError(StageInitRoot, err)
	}
	return nil
}

// initRoot must be called with the root lock held.
func (m *Manager) initRoot() error {
	logger := log.Logger(rammer.BootstrapComponent, "initRoot")
	marker := m.markerPath()
	if _, err := os.Stat(marker); err == nil {
		logger.Debug("root was initialized while waiting for the lock")
		return nil
	}
	// Once the root tmpfs is mounted, later lockers open the new root and no
	// longer contend with the process that mounted it. Check the mount table
	// so that they do not stack a second tmpfs on top.
	mounted, err := m.mounter.IsMounted(m.config.Root)
	if err != nil {
		return err
	}
	if !mounted {
		tmpfs := mount.NewTmpfs(uint64(m.config.RootCapacity), 0, 0, rootMountMode)
		if err := m.mounter.Mount(tmpfs, m.config.Root); err != nil {
			if !errors.Is(err, unix.EBUSY) {
				return errors.Wrapf(err, "failed to mount tmpfs on %s", m.config.Root)
			}
			logger.Debug("root is already mounted")
		} else {
			logger.WithField("root", m.config.Root).Info("mounted root tmpfs")
		}
	}
	f, err := os.OpenFile(marker, os.O_WRONLY|os.O_CREATE, markerFileMode)
	if err != nil {
		return errors.Wrap(err, "failed to create marker")
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, "failed to create marker")
	}
	return nil
}
