package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/waveline-io/fifolink/iox"
)

// FetchSeriesCommand returns the fetch-series command: the first N rows
// of a subject record, written as CSV.
func FetchSeriesCommand() *cli.Command {
	return &cli.Command{
		Name:  "fetch-series",
		Usage: "Fetch the leading rows of a subject record as CSV",
		Flags: append([]cli.Flag{
			&cli.IntFlag{
				Name:     "subject",
				Usage:    "Subject record number",
				Required: true,
			},
			&cli.IntFlag{
				Name:     "count",
				Usage:    "Number of rows to fetch",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output path (default: <output_dir>/<subject>.csv, or stdout)",
			},
		}, SessionFlags()...),
		Action: fetchSeriesAction,
	}
}

func fetchSeriesAction(c *cli.Context) error {
	subject := int32(c.Int("subject"))
	count := c.Int("count")
	if count <= 0 {
		return exitFor(fmt.Errorf("count must be positive, got %d", count))
	}

	env, err := openEnv(c)
	if err != nil {
		return exitFor(err)
	}

	err = writeSeries(c, env, subject, count)
	if closeErr := env.close(nil); err == nil {
		err = closeErr
	}
	return exitFor(err)
}

func writeSeries(c *cli.Context, env *sessionEnv, subject int32, count int) error {
	path := c.String("output")
	if path == "" && env.choice.outputDir != "" {
		path = filepath.Join(env.choice.outputDir, fmt.Sprintf("%d.csv", subject))
	}

	if path == "" {
		return env.samples.FetchSeries(subject, count, os.Stdout)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := env.samples.FetchSeries(subject, count, f); err != nil {
		iox.DiscardClose(f)
		return err
	}
	return f.Close()
}
