package main

import (
	"fmt"
	"os"

	"github.com/YLonely/rammer"
	"github.com/YLonely/rammer/identity"
	"github.com/YLonely/rammer/log"
	"github.com/urfave/cli"
)

const callerKey = "caller"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		// errors that urfave/cli did not turn into an exit status
		p := printer{machine: machineRequested(os.Args[1:])}
		fmt.Fprintln(os.Stderr, p.format(inputError("%v", err)))
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "rammer"
	app.Usage = "a fixed size ramdisk creation tool"
	app.Version = "v0.1.0"
	app.Metadata = map[string]interface{}{}
	app.Commands = []cli.Command{
		allocCommand,
		freeCommand,
		listCommand,
	}
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "m, machine",
			Usage: "emit machine-readable output (for usage in scripts)",
		},
		cli.BoolFlag{
			Name:  "debug",
			Usage: "enable debug output in logs",
		},
		cli.StringFlag{
			Name:  "config",
			Usage: "path to the JSON config file (root only), default " + defaultConfigPath,
		},
		cli.StringFlag{
			Name:  "root",
			Usage: "directory the ramdisks are mounted under, overrides the config file (root only)",
		},
	}
	app.Before = func(c *cli.Context) error {
		log.Setup(c.GlobalBool("debug"))
		// the caller owns the volumes and decides what may be overridden,
		// so record it before switching to root
		c.App.Metadata[callerKey] = identity.Caller()
		if !identity.Elevated() {
			log.Logger(rammer.MainComponent, "Before").Debug("not running setuid-root, mounts will need CAP_SYS_ADMIN")
			return nil
		}
		if err := identity.Elevate(); err != nil {
			log.Logger(rammer.MainComponent, "Before").WithError(err).Warn("failed to switch to root")
		}
		return nil
	}
	// reached without a command or with an unknown one
	app.Action = func(c *cli.Context) error {
		p := newPrinter(c)
		if c.NArg() == 0 {
			return p.fail(inputError("not enough arguments were given"))
		}
		return p.fail(inputError("unknown command %q", c.Args().First()))
	}
	app.OnUsageError = func(c *cli.Context, err error, isSubcommand bool) error {
		return newPrinter(c).fail(inputError("%v", err))
	}
	return app
}

// machineRequested reports whether -m or --machine appears among the global
// flags in args, for errors raised before the flags were parsed.
func machineRequested(args []string) bool {
	for _, arg := range args {
		switch arg {
		case "-m", "--m", "-machine", "--machine":
			return true
		case "--":
			return false
		}
		if len(arg) == 0 || arg[0] != '-' {
			return false
		}
	}
	return false
}
