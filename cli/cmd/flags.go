// Package cmd provides CLI commands for the fifolink binary.
package cmd

import "github.com/urfave/cli/v2"

// Exit codes for fetch commands.
const (
	exitSuccess   = 0
	exitFailure   = 1
	exitTransport = 2
	exitProtocol  = 3
)

// SessionFlags returns the flags shared by every command that opens a
// session. Values resolve as flag > config file > built-in default.
func SessionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to fifolink.yaml config file",
		},
		&cli.StringFlag{
			Name:  "pipe-dir",
			Usage: "Directory holding the channel pipe nodes",
		},
		&cli.IntFlag{
			Name:    "capacity",
			Aliases: []string{"m"},
			Usage:   "Buffer capacity in bytes (must match the server)",
		},
		&cli.DurationFlag{
			Name:  "attach-timeout",
			Usage: "How long to wait for the server's pipe nodes",
		},
		&cli.BoolFlag{
			Name:  "new-channel",
			Usage: "Request a dedicated channel instead of using control",
		},
		&cli.BoolFlag{
			Name:  "spawn-server",
			Usage: "Spawn a fifolinkd child for the session's lifetime",
		},
		&cli.StringFlag{
			Name:  "server-binary",
			Usage: "fifolinkd binary for --spawn-server",
		},
		&cli.StringFlag{
			Name:  "data-dir",
			Usage: "Server data directory for --spawn-server",
		},
		&cli.StringFlag{
			Name:  "cache-url",
			Usage: "Redis URL for the sample cache (empty disables)",
		},
		&cli.StringFlag{
			Name:  "report",
			Usage: "Write a msgpack transfer report to this path",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Log session activity to stderr",
		},
	}
}
