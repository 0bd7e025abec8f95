package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/waveline-io/fifolink/report"
)

// ReportCommand returns the report command: print a previously written
// session transfer report. Never opens a session.
func ReportCommand() *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "Print a session transfer report",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "path",
				Usage:    "Path to the msgpack report file",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Emit the report as JSON",
			},
		},
		Action: reportAction,
	}
}

func reportAction(c *cli.Context) error {
	r, err := report.Load(c.String("path"))
	if err != nil {
		return exitFor(err)
	}

	if c.Bool("json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}

	fmt.Printf("session:   %s\n", r.SessionID)
	fmt.Printf("pipe dir:  %s\n", r.PipeDir)
	fmt.Printf("capacity:  %d\n", r.Capacity)
	fmt.Printf("duration:  %s\n", r.EndedAt.Sub(r.StartedAt).Round(0))
	fmt.Printf("requests:  %d (samples %d, files %d, channels %d)\n",
		r.RequestsSent, r.SamplesFetched, r.FilesFetched, r.ChannelsCreated)
	fmt.Printf("bytes:     %d (%d chunks)\n", r.BytesReceived, r.ChunksReceived)
	if r.TransportErrors > 0 || r.ProtocolErrors > 0 {
		fmt.Printf("errors:    transport %d, protocol %d\n", r.TransportErrors, r.ProtocolErrors)
	}
	for _, tr := range r.Transfers {
		fmt.Printf("  %s: %d bytes in %d chunks\n", tr.Name, tr.Bytes, tr.Chunks)
	}
	return nil
}
