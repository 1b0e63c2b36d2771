package ramdisk

import (
	"math"
	"os"

	"github.com/YLonely/rammer"
	"github.com/YLonely/rammer/lock"
	"github.com/YLonely/rammer/log"
	"github.com/YLonely/rammer/utils"
	"github.com/pkg/errors"
)

// ReserveNextID hands out the current counter value and persists its
// successor. The first id ever reserved is 0 and no id is handed out twice.
//
// The counter is rewritten in place, so a crash between truncation and the
// write leaves it empty and ids restart from 0.
func (m *Manager) ReserveNextID() (uint64, error) {
	logger := log.Logger(rammer.AllocatorComponent, "ReserveNextID")
	l, err := lock.AcquireFile(m.counterPath(), counterFileMode)
	if err != nil {
		return 0, stageError(StageReserveID, err)
	}
	id, err := m.advanceCounter()
	if rerr := l.Release(); rerr != nil {
		if err == nil {
			err = rerr
		} else {
			logger.WithError(rerr).Warn("failed to release the counter lock")
		}
	}
	if err != nil {
		return 0, stageError(StageReserveID, err)
	}
	logger.WithField("id", id).Debug("reserved id")
	return id, nil
}

// advanceCounter must be called with the counter lock held.
func (m *Manager) advanceCounter() (uint64, error) {
	f, err := os.OpenFile(m.counterPath(), os.O_RDWR, 0)
	if err != nil {
		return 0, errors.Wrap(err, "failed to open counter")
	}
	id, err := utils.ReadInt(f)
	if err != nil {
		f.Close()
		return 0, err
	}
	if id == math.MaxUint64 {
		f.Close()
		return 0, errors.New("id space is exhausted")
	}
	if err := utils.WriteInt(f, id+1); err != nil {
		f.Close()
		return 0, err
	}
	if err := f.Close(); err != nil {
		return 0, errors.Wrap(err, "failed to close counter")
	}
	return id, nil
}
