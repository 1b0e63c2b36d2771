package log

import (
	"bytes"
	"os"
	"testing"

	"github.com/YLonely/rammer"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerIsCached(t *testing.T) {
	a := Logger(rammer.VolumeComponent, "Create")
	b := Logger(rammer.VolumeComponent, "Create")
	c := Logger(rammer.VolumeComponent, "Destroy")
	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
	assert.Equal(t, "Create", a.Data["method"])
	assert.Equal(t, rammer.VolumeComponent.String(), a.Data["component"])
}

func TestWithInterface(t *testing.T) {
	entry := logrus.NewEntry(logrus.New())

	e := WithInterface(entry, "volume", struct {
		ID   uint64 `json:"id"`
		Path string `json:"path"`
	}{3, "/tmp/ramdisks/3"})
	assert.Equal(t, `{"id":3,"path":"/tmp/ramdisks/3"}`, e.Data["volume"])

	e = WithInterface(entry, "ch", make(chan int))
	require.IsType(t, "", e.Data["ch"])
	assert.NotEmpty(t, e.Data["ch"])
	assert.NotContains(t, entry.Data, "volume")
}

func TestSetup(t *testing.T) {
	defer func() {
		logrus.SetLevel(logrus.InfoLevel)
		logrus.SetOutput(os.Stderr)
	}()

	Setup(false)
	assert.Equal(t, logrus.WarnLevel, logrus.GetLevel())
	Setup(true)
	assert.Equal(t, logrus.DebugLevel, logrus.GetLevel())

	var buf bytes.Buffer
	logrus.SetOutput(&buf)
	Logger(rammer.MainComponent, "Setup").Debug("hello")
	assert.Contains(t, buf.String(), "msg=hello")
	assert.NotContains(t, buf.String(), "time=")
}
