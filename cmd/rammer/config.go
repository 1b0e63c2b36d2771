package main

import (
	"os"

	"github.com/YLonely/rammer/identity"
	"github.com/YLonely/rammer/mount"
	"github.com/YLonely/rammer/ramdisk"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
	"golang.org/x/sys/unix"
)

var defaultConfigPath = "/etc/rammer/config.json"

func newManager(c *cli.Context) (*ramdisk.Manager, error) {
	config, err := resolveConfig(caller(c), c.GlobalString("config"), c.GlobalString("root"))
	if err != nil {
		return nil, err
	}
	m, err := ramdisk.NewManager(config, mount.Default)
	if err != nil {
		return nil, &ramdisk.Error{Stage: ramdisk.StageInput, Err: err}
	}
	return m, nil
}

// resolveConfig builds the configuration rammer runs with on behalf of cred.
// rammer mounts as root, so only a root caller may choose the config file or
// the root directory. Everybody else gets the default config file, and only
// if root owns it and nobody else can write it.
func resolveConfig(cred identity.Credential, configPath, root string) (ramdisk.Config, error) {
	if cred.UID != 0 {
		if configPath != "" && configPath != defaultConfigPath {
			return ramdisk.Config{}, permissionError("only root may choose the config file")
		}
		if root != "" {
			return ramdisk.Config{}, permissionError("only root may choose the ramdisk root")
		}
		return loadRootOwnedConfig(defaultConfigPath)
	}
	if configPath == "" {
		configPath = defaultConfigPath
	}
	config, err := ramdisk.LoadConfig(configPath)
	if err != nil {
		return ramdisk.Config{}, &ramdisk.Error{Stage: ramdisk.StageInput, Err: err}
	}
	if root != "" {
		config.Root = root
	}
	return config, nil
}

// loadRootOwnedConfig checks the opened file, not the path, so the file
// cannot be swapped between the check and the read.
func loadRootOwnedConfig(configPath string) (ramdisk.Config, error) {
	f, err := os.Open(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return ramdisk.DefaultConfig(), nil
		}
		return ramdisk.Config{}, &ramdisk.Error{
			Stage: ramdisk.StageInput,
			Err:   errors.Wrap(err, "failed to open config file"),
		}
	}
	defer f.Close()
	var st unix.Stat_t
	if err := unix.Fstat(int(f.Fd()), &st); err != nil {
		return ramdisk.Config{}, &ramdisk.Error{
			Stage: ramdisk.StageInput,
			Err:   errors.Wrapf(err, "failed to stat %s", configPath),
		}
	}
	if st.Uid != 0 || st.Mode&0022 != 0 {
		return ramdisk.Config{}, permissionError("config file %s must be owned and only writable by root", configPath)
	}
	config, err := ramdisk.ReadConfig(f)
	if err != nil {
		return ramdisk.Config{}, &ramdisk.Error{Stage: ramdisk.StageInput, Err: err}
	}
	return config, nil
}

func permissionError(format string, args ...interface{}) error {
	return &ramdisk.Error{
		Stage: ramdisk.StageInput,
		Err:   errors.Wrapf(unix.EPERM, format, args...),
	}
}
