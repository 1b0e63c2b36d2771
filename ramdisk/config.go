package ramdisk

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/docker/go-units"
	"github.com/pkg/errors"
)

const (
	DefaultRoot         = "/tmp/ramdisks"
	DefaultRootCapacity = 10 * units.MiB
	DefaultBlockSize    = 4096
	DefaultVolumeMode   = 0770
	DefaultMarkerName   = ".rammer"
	DefaultCounterName  = ".next-id"
)

// Size is a byte count. In JSON it is either a number or a string such as "10MiB".
type Size uint64

func (s *Size) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var n uint64
		if err := json.Unmarshal(data, &n); err != nil {
			return errors.Errorf("invalid size %s", data)
		}
		*s = Size(n)
		return nil
	}
	n, err := ParseSize(str)
	if err != nil {
		return err
	}
	*s = Size(n)
	return nil
}

// ParseSize parses a byte count with an optional binary suffix, "5000", "8k" or "16MiB".
func ParseSize(str string) (uint64, error) {
	n, err := units.RAMInBytes(strings.TrimSpace(str))
	if err != nil {
		return 0, errors.Wrapf(err, "invalid size %q", str)
	}
	if n < 0 {
		return 0, errors.Errorf("negative size %q", str)
	}
	return uint64(n), nil
}

// Mode is a permission mode. In JSON it is an octal string such as "0770".
type Mode os.FileMode

func (m *Mode) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return errors.Errorf("mode must be an octal string, got %s", data)
	}
	v, err := strconv.ParseUint(str, 8, 32)
	if err != nil || v > 0777 {
		return errors.Errorf("invalid mode %q", str)
	}
	*m = Mode(v)
	return nil
}

// Config describes where the shared state lives and how volumes are created
type Config struct {
	Root         string `json:"root"`
	RootCapacity Size   `json:"root_capacity"`
	BlockSize    Size   `json:"block_size"`
	VolumeMode   Mode   `json:"volume_mode"`
	MarkerName   string `json:"marker_name"`
	CounterName  string `json:"counter_name"`
}

// LoadConfig returns the default configuration merged with the JSON file at
// configPath. A missing file leaves the defaults untouched.
func LoadConfig(configPath string) (Config, error) {
	if configPath == "" {
		return DefaultConfig(), nil
	}
	f, err := os.Open(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return Config{}, errors.Wrap(err, "failed to read config file")
	}
	defer f.Close()
	return ReadConfig(f)
}

// ReadConfig returns the default configuration merged with the JSON document in f.
func ReadConfig(f *os.File) (Config, error) {
	config := DefaultConfig()
	content, err := ioutil.ReadAll(f)
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to read config file")
	}
	c := Config{}
	if err = json.Unmarshal(content, &c); err != nil {
		return Config{}, errors.Wrapf(err, "failed to parse config file %s", f.Name())
	}
	if err = mergeConfig(&config, &c); err != nil {
		return Config{}, errors.Wrapf(err, "invalid config file %s", f.Name())
	}
	return config, nil
}

func DefaultConfig() Config {
	return Config{
		Root:         DefaultRoot,
		RootCapacity: DefaultRootCapacity,
		BlockSize:    DefaultBlockSize,
		VolumeMode:   DefaultVolumeMode,
		MarkerName:   DefaultMarkerName,
		CounterName:  DefaultCounterName,
	}
}

func mergeConfig(to, from *Config) error {
	if from.Root != "" {
		to.Root = from.Root
	}
	if from.RootCapacity != 0 {
		to.RootCapacity = from.RootCapacity
	}
	if from.BlockSize != 0 {
		to.BlockSize = from.BlockSize
	}
	if from.VolumeMode != 0 {
		to.VolumeMode = from.VolumeMode
	}
	if from.MarkerName != "" {
		to.MarkerName = from.MarkerName
	}
	if from.CounterName != "" {
		to.CounterName = from.CounterName
	}
	return to.Validate()
}

// Validate checks that c names an absolute root and plain hidden state file names.
func (c Config) Validate() error {
	if !filepath.IsAbs(c.Root) {
		return errors.Errorf("root %q is not an absolute path", c.Root)
	}
	if c.BlockSize == 0 {
		return errors.New("block size must be positive")
	}
	if c.RootCapacity == 0 {
		return errors.New("root capacity must be positive")
	}
	for _, name := range []string{c.MarkerName, c.CounterName} {
		if !strings.HasPrefix(name, ".") || name == "." || name == ".." || strings.ContainsRune(name, '/') {
			return errors.Errorf("invalid state file name %q", name)
		}
	}
	if c.MarkerName == c.CounterName {
		return errors.New("marker and counter must be different files")
	}
	return nil
}
