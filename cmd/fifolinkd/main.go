// Package main provides the fifolinkd server entrypoint.
//
// The server creates the control channel under the pipe directory,
// serves sample and file requests from its data directory, and exits
// when the control channel receives quit.
//
// Usage:
//
//	fifolinkd --data-dir <dir> --pipe-dir <dir> [-m <capacity>]
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/waveline-io/fifolink/channel"
	"github.com/waveline-io/fifolink/log"
	"github.com/waveline-io/fifolink/server"
	"github.com/waveline-io/fifolink/types"
	"github.com/waveline-io/fifolink/wire"
)

// Commit is set via ldflags at build time.
var commit = "unknown"

func main() {
	app := &cli.App{
		Name:    "fifolinkd",
		Usage:   "ECG sample and file server over named-pipe channels",
		Version: fmt.Sprintf("%s (commit: %s)", types.Version, commit),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "data-dir",
				Usage:    "Directory holding subject records and served files",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "pipe-dir",
				Usage:    "Directory for the channel pipe nodes",
				Required: true,
			},
			&cli.IntFlag{
				Name:    "capacity",
				Aliases: []string{"m"},
				Usage:   "Buffer capacity in bytes (must match the client)",
				Value:   wire.DefaultCapacity,
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Log request activity to stderr",
			},
		},
		Action: serveAction,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func serveAction(c *cli.Context) error {
	pipeDir := c.String("pipe-dir")
	capacity := c.Int("capacity")

	logger := log.Nop()
	if c.Bool("verbose") {
		logger = log.NewLogger(&types.SessionMeta{
			PipeDir:  pipeDir,
			Capacity: capacity,
		}).WithOutput(os.Stderr)
	}

	srv := server.New(server.Config{
		Options: channel.Options{Dir: pipeDir, Capacity: capacity},
		Store:   server.NewStore(c.String("data-dir")),
		Logger:  logger,
	})
	return srv.Serve()
}
