package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/YLonely/rammer"
	"github.com/YLonely/rammer/identity"
	"github.com/YLonely/rammer/log"
	"github.com/YLonely/rammer/ramdisk"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

var stageDetails = map[string]string{
	ramdisk.StageInput:          "Invalid arguments were given",
	ramdisk.StageInitRoot:       "Can't init the rammer root directory",
	ramdisk.StageReserveID:      "Can't generate an id for the ramdisk",
	ramdisk.StageCreateEndpoint: "Can't create the ramdisk mount point",
	ramdisk.StageAllocate:       "Can't allocate the ramdisk",
	ramdisk.StageDestroy:        "Can't destroy a ramdisk",
}

// printer writes results in the human or the machine readable format
type printer struct {
	machine bool
	out     io.Writer
}

func newPrinter(c *cli.Context) printer {
	return printer{
		machine: c.GlobalBool("machine"),
		out:     os.Stdout,
	}
}

func (p printer) ok(human string, machine string) {
	if p.machine {
		fmt.Fprintln(p.out, machine)
	} else {
		fmt.Fprintln(p.out, "[Ok] "+human)
	}
}

// fail turns err into an exit error carrying the formatted failure line.
func (p printer) fail(err error) error {
	log.Logger(rammer.MainComponent, "fail").WithError(err).Debug("command failed")
	return cli.NewExitError(p.format(err), 1)
}

func (p printer) format(err error) string {
	stage := ramdisk.StageOf(err)
	if stage == "" {
		stage = ramdisk.StageInput
	}
	errno := ramdisk.Errno(err)
	if p.machine {
		return fmt.Sprintf("%s, %d", stage, int(errno))
	}
	return fmt.Sprintf("[Failed] %s (%s)", stageDetails[stage], errno.Error())
}

func inputError(format string, args ...interface{}) error {
	return &ramdisk.Error{
		Stage: ramdisk.StageInput,
		Err:   errors.Wrapf(errInvalid, format, args...),
	}
}

func parseID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, inputError("invalid ramdisk id %q", s)
	}
	return id, nil
}

func caller(c *cli.Context) identity.Credential {
	if cred, ok := c.App.Metadata[callerKey].(identity.Credential); ok {
		return cred
	}
	return identity.Caller()
}
