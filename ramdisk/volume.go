package ramdisk

import (
	"io/ioutil"
	"math"
	"os"
	"sort"
	"strconv"

	"github.com/YLonely/rammer"
	"github.com/YLonely/rammer/identity"
	"github.com/YLonely/rammer/log"
	"github.com/YLonely/rammer/mount"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Volume is a tmpfs mounted under the root
type Volume struct {
	ID      uint64              `json:"id"`
	Path    string              `json:"path"`
	Size    uint64              `json:"size"`
	Owner   identity.Credential `json:"owner"`
	Mode    os.FileMode         `json:"mode"`
	Mounted bool                `json:"mounted"`
}

// RoundUp rounds size up to a multiple of block. Multiples are returned unchanged.
func RoundUp(size, block uint64) uint64 {
	if r := size % block; r != 0 {
		return size + block - r
	}
	return size
}

// Create mounts a tmpfs of size bytes, rounded up to the block size, at the
// mount point of id. The mount point must not exist yet.
func (m *Manager) Create(id uint64, size uint64, owner identity.Credential, mode os.FileMode) (*Volume, error) {
	logger := log.Logger(rammer.VolumeComponent, "Create")
	block := uint64(m.config.BlockSize)
	if size == 0 {
		return nil, stageError(StageInput, errors.Wrap(unix.EINVAL, "volume size must be positive"))
	}
	if size > math.MaxUint64-block+1 {
		return nil, stageError(StageInput, errors.Wrapf(unix.EINVAL, "volume size %d is too large", size))
	}
	v := &Volume{
		ID:    id,
		Path:  m.MountPath(id),
		Size:  RoundUp(size, block),
		Owner: owner,
		Mode:  mode,
	}
	if err := os.Mkdir(v.Path, mountPointMode); err != nil {
		return nil, stageError(StageCreateEndpoint, errors.Wrap(err, "failed to create mount point"))
	}
	if err := m.mounter.Mount(mount.NewTmpfs(v.Size, owner.UID, owner.GID, mode), v.Path); err != nil {
		if rerr := os.Remove(v.Path); rerr != nil {
			logger.WithError(rerr).Warnf("failed to remove mount point %s", v.Path)
		}
		return nil, stageError(StageAllocate, errors.Wrapf(
			err,
			"failed to mount tmpfs(size:%d,requested:%d,uid:%d,gid:%d,mode:%o) on %s",
			v.Size, size, owner.UID, owner.GID, mode, v.Path,
		))
	}
	v.Mounted = true
	log.WithInterface(logger, "volume", v).Debug("created volume")
	return v, nil
}

// Destroy unmounts volume id and removes its mount point. Destroying a volume
// that is not mounted fails, so it must be called once per created volume.
func (m *Manager) Destroy(id uint64) error {
	p := m.MountPath(id)
	if err := m.mounter.Unmount(p); err != nil {
		return stageError(StageDestroy, errors.Wrap(err, "failed to unmount volume"))
	}
	if err := os.Remove(p); err != nil {
		return stageError(StageDestroy, errors.Wrap(err, "failed to remove mount point"))
	}
	log.Logger(rammer.VolumeComponent, "Destroy").WithField("path", p).Debug("destroyed volume")
	return nil
}

// Allocate prepares the root if needed, reserves an id and creates a volume for it.
func (m *Manager) Allocate(size uint64, owner identity.Credential, mode os.FileMode) (*Volume, error) {
	if err := m.EnsureRootReady(); err != nil {
		return nil, err
	}
	id, err := m.ReserveNextID()
	if err != nil {
		return nil, err
	}
	return m.Create(id, size, owner, mode)
}

// List returns the volumes found under the root ordered by id. It takes no
// locks, so volumes being created or destroyed may or may not be listed.
func (m *Manager) List() ([]Volume, error) {
	entries, err := ioutil.ReadDir(m.config.Root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to read root")
	}
	volumes := []Volume{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		id, err := strconv.ParseUint(entry.Name(), 10, 64)
		if err != nil || strconv.FormatUint(id, 10) != entry.Name() {
			continue
		}
		v := Volume{
			ID:   id,
			Path: m.MountPath(id),
		}
		if v.Mounted, err = m.mounter.IsMounted(v.Path); err != nil {
			return nil, err
		}
		if v.Mounted {
			if err := statVolume(&v); err != nil {
				return nil, err
			}
		}
		volumes = append(volumes, v)
	}
	sort.Slice(volumes, func(i, j int) bool {
		return volumes[i].ID < volumes[j].ID
	})
	return volumes, nil
}

func statVolume(v *Volume) error {
	var st unix.Stat_t
	if err := unix.Stat(v.Path, &st); err != nil {
		return errors.Wrapf(err, "failed to stat %s", v.Path)
	}
	var fs unix.Statfs_t
	if err := unix.Statfs(v.Path, &fs); err != nil {
		return errors.Wrapf(err, "failed to statfs %s", v.Path)
	}
	v.Owner = identity.Credential{UID: st.Uid, GID: st.Gid}
	v.Mode = os.FileMode(st.Mode & 0777)
	v.Size = fs.Blocks * uint64(fs.Bsize)
	return nil
}
