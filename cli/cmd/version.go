package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/waveline-io/fifolink/types"
)

// VersionCommand returns the version command. It never opens a session.
func VersionCommand(commit string) *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show version information",
		Action: func(c *cli.Context) error {
			fmt.Printf("fifolink %s (commit: %s)\n", types.Version, commit)
			return nil
		},
	}
}
