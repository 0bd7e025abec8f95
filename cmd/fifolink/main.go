// Package main provides the fifolink client CLI entrypoint.
//
// Usage:
//
//	fifolink <command> [options]
//
// Exit codes for fetch commands:
//   - 0: success
//   - 1: usage or local failure
//   - 2: transport failure (server gone, pipes broken)
//   - 3: protocol violation (bad framing, unknown tag, file not found)
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/waveline-io/fifolink/cli/cmd"
	"github.com/waveline-io/fifolink/types"
)

// Commit is set via ldflags at build time.
var commit = "unknown"

func main() {
	app := &cli.App{
		Name:           "fifolink",
		Usage:          "ECG sample and file retrieval over named-pipe channels",
		Version:        fmt.Sprintf("%s (commit: %s)", types.Version, commit),
		ExitErrHandler: exitErrHandler,
		Commands: []*cli.Command{
			cmd.FetchSampleCommand(),
			cmd.FetchSeriesCommand(),
			cmd.FetchFileCommand(),
			cmd.ReportCommand(),
			cmd.VersionCommand(commit),
		},
	}

	if err := app.Run(os.Args); err != nil {
		// ExitErrHandler already handled the exit for cli.ExitCoder errors.
		// This branch handles unexpected errors that weren't wrapped.
		os.Exit(1)
	}
}

// exitErrHandler preserves exit codes from cli.Exit() so scripts can
// distinguish transport failures from protocol violations.
func exitErrHandler(_ *cli.Context, err error) {
	if err == nil {
		return
	}

	var exitCoder cli.ExitCoder
	if errors.As(err, &exitCoder) {
		code := exitCoder.ExitCode()
		msg := exitCoder.Error()

		// cli.Exit("", N).Error() returns "exit status N"; skip those.
		if msg != "" && msg != fmt.Sprintf("exit status %d", code) {
			fmt.Fprintln(os.Stderr, msg)
		}
		os.Exit(code)
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
