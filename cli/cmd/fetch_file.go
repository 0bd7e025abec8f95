package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/waveline-io/fifolink/report"
	"github.com/waveline-io/fifolink/sink"
)

// FetchFileCommand returns the fetch-file command: chunked retrieval of
// an arbitrary server-side file.
func FetchFileCommand() *cli.Command {
	return &cli.Command{
		Name:  "fetch-file",
		Usage: "Fetch a file from the server's data directory",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:     "name",
				Usage:    "File name relative to the server's data directory",
				Required: true,
			},
			&cli.IntFlag{
				Name:  "chunk",
				Usage: "Max chunk size in bytes (default: the buffer capacity)",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output path (default: <output_dir>/<name>, or stdout)",
			},
			&cli.BoolFlag{
				Name:  "archive",
				Usage: "Upload to the configured S3 archive instead of a local file",
			},
			&cli.StringFlag{
				Name:  "archive-bucket",
				Usage: "S3 bucket for --archive (overrides config)",
			},
			&cli.StringFlag{
				Name:  "archive-prefix",
				Usage: "S3 key prefix for --archive (overrides config)",
			},
			&cli.StringFlag{
				Name:  "archive-region",
				Usage: "AWS region for --archive (overrides config)",
			},
		}, SessionFlags()...),
		Action: fetchFileAction,
	}
}

func fetchFileAction(c *cli.Context) error {
	name := c.String("name")

	env, err := openEnv(c)
	if err != nil {
		return exitFor(err)
	}

	maxChunk := c.Int("chunk")
	if maxChunk <= 0 {
		maxChunk = env.choice.capacity
	}

	written, err := fetchFile(c, env, name, maxChunk)

	var transfers []report.FileTransfer
	if err == nil {
		chunks := (written + int64(maxChunk) - 1) / int64(maxChunk)
		transfers = []report.FileTransfer{{Name: name, Bytes: written, Chunks: chunks}}
	}
	if closeErr := env.close(transfers); err == nil {
		err = closeErr
	}
	if err != nil {
		return exitFor(err)
	}

	fmt.Fprintf(os.Stderr, "fetched %s (%d bytes)\n", name, written)
	return nil
}

func fetchFile(c *cli.Context, env *sessionEnv, name string, maxChunk int) (int64, error) {
	dest, err := buildSink(c, env, name)
	if err != nil {
		return 0, err
	}
	return env.files.FetchFile(name, maxChunk, sink.NewInstrumentedSink(dest, env.collector))
}

// buildSink picks the destination: the S3 archive when --archive is set,
// a local file when a path resolves, stdout otherwise.
func buildSink(c *cli.Context, env *sessionEnv, name string) (sink.Sink, error) {
	if c.Bool("archive") {
		opts := sink.S3Options{
			Bucket:       env.choice.archive.Bucket,
			Prefix:       env.choice.archive.Prefix,
			Region:       env.choice.archive.Region,
			Endpoint:     env.choice.archive.Endpoint,
			UsePathStyle: env.choice.archive.S3PathStyle,
		}
		if v := c.String("archive-bucket"); v != "" {
			opts.Bucket = v
		}
		if v := c.String("archive-prefix"); v != "" {
			opts.Prefix = v
		}
		if v := c.String("archive-region"); v != "" {
			opts.Region = v
		}
		client, err := sink.NewS3Client(c.Context, opts)
		if err != nil {
			return nil, err
		}
		return sink.NewS3Sink(c.Context, client, opts, name), nil
	}

	path := c.String("output")
	if path == "" && env.choice.outputDir != "" {
		path = filepath.Join(env.choice.outputDir, filepath.Base(name))
	}
	if path == "" {
		return sink.NewStreamSink(os.Stdout), nil
	}
	return sink.NewFileSink(path)
}
