package main

import (
	"fmt"
	"os"

	"github.com/YLonely/rammer/ramdisk"
	units "github.com/docker/go-units"
	"github.com/urfave/cli"
	"golang.org/x/sys/unix"
)

var errInvalid = unix.EINVAL

var allocCommand = cli.Command{
	Name:      "alloc",
	Usage:     "allocate a new ramdisk",
	ArgsUsage: "SIZE (bytes, suffixes like 8k or 16MiB are accepted)",
	Action: func(c *cli.Context) error {
		p := newPrinter(c)
		if c.NArg() < 1 {
			return p.fail(inputError("not enough arguments were given"))
		}
		size, err := ramdisk.ParseSize(c.Args().First())
		if err != nil {
			return p.fail(inputError("%v", err))
		}
		if size == 0 {
			return p.fail(inputError("ramdisk size must be positive"))
		}
		m, err := newManager(c)
		if err != nil {
			return p.fail(err)
		}
		v, err := m.Allocate(size, caller(c), os.FileMode(m.Config().VolumeMode))
		if err != nil {
			return p.fail(err)
		}
		p.ok(
			fmt.Sprintf("%s ( allocated %d bytes, id %d )", v.Path, v.Size, v.ID),
			fmt.Sprintf("%d, %s, %d", v.ID, v.Path, v.Size),
		)
		return nil
	},
}

var freeCommand = cli.Command{
	Name:      "free",
	Usage:     "destroy a ramdisk",
	ArgsUsage: "ID",
	Action: func(c *cli.Context) error {
		p := newPrinter(c)
		if c.NArg() < 1 {
			return p.fail(inputError("not enough arguments were given"))
		}
		id, err := parseID(c.Args().First())
		if err != nil {
			return p.fail(err)
		}
		m, err := newManager(c)
		if err != nil {
			return p.fail(err)
		}
		if err := m.Destroy(id); err != nil {
			return p.fail(err)
		}
		p.ok(fmt.Sprintf("Destroyed ramdisk %d", id), "")
		return nil
	},
}

var listCommand = cli.Command{
	Name:  "list",
	Usage: "list the ramdisks under the root",
	Action: func(c *cli.Context) error {
		p := newPrinter(c)
		m, err := newManager(c)
		if err != nil {
			return p.fail(err)
		}
		volumes, err := m.List()
		if err != nil {
			return p.fail(err)
		}
		for _, v := range volumes {
			if !v.Mounted {
				p.ok(
					fmt.Sprintf("%s ( id %d, not mounted )", v.Path, v.ID),
					fmt.Sprintf("%d, %s, 0", v.ID, v.Path),
				)
				continue
			}
			p.ok(
				fmt.Sprintf("%s ( %s, id %d, owner %d:%d, mode %o )", v.Path, units.BytesSize(float64(v.Size)), v.ID, v.Owner.UID, v.Owner.GID, v.Mode),
				fmt.Sprintf("%d, %s, %d", v.ID, v.Path, v.Size),
			)
		}
		return nil
	},
}
