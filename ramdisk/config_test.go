package ramdisk

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, ioutil.WriteFile(p, []byte(content), 0644))
	return p
}

func TestLoadConfigMissingFile(t *testing.T) {
	c, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), c)
}

func TestLoadConfigMerge(t *testing.T) {
	c, err := LoadConfig(writeConfig(t, `{
		"root": "/run/ramdisks",
		"root_capacity": "64MiB",
		"block_size": 8192,
		"volume_mode": "0700"
	}`))
	require.NoError(t, err)
	assert.Equal(t, "/run/ramdisks", c.Root)
	assert.Equal(t, Size(64<<20), c.RootCapacity)
	assert.Equal(t, Size(8192), c.BlockSize)
	assert.Equal(t, Mode(0700), c.VolumeMode)
	assert.Equal(t, DefaultMarkerName, c.MarkerName)
	assert.Equal(t, DefaultCounterName, c.CounterName)
}

func TestReadConfig(t *testing.T) {
	f, err := os.Open(writeConfig(t, `{"root": "/run/ramdisks"}`))
	require.NoError(t, err)
	defer f.Close()

	c, err := ReadConfig(f)
	require.NoError(t, err)
	assert.Equal(t, "/run/ramdisks", c.Root)
	assert.Equal(t, Size(DefaultRootCapacity), c.RootCapacity)

	_, err = ReadConfig(f)
	require.Error(t, err, "an exhausted file is not a JSON document")
}

func TestLoadConfigInvalid(t *testing.T) {
	for _, content := range []string{
		`{"root": "relative/path"}`,
		`{"root_capacity": "lots"}`,
		`{"volume_mode": "0999"}`,
		`{"volume_mode": 770}`,
		`{"marker_name": "marker"}`,
		`{"counter_name": ".rammer"}`,
		`{"counter_name": "../escape"}`,
		`not json`,
	} {
		_, err := LoadConfig(writeConfig(t, content))
		assert.Error(t, err, "config %s", content)
	}
}

func TestParseSize(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want uint64
	}{
		{"5000", 5000},
		{"8k", 8192},
		{"16MiB", 16 << 20},
		{"1g", 1 << 30},
	} {
		got, err := ParseSize(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
	for _, in := range []string{"", "-1", "ten", "5 parsecs"} {
		_, err := ParseSize(in)
		assert.Error(t, err, in)
	}
}
