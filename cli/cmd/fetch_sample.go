package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

// FetchSampleCommand returns the fetch-sample command: one sample value
// for one (subject, seconds, series) coordinate.
func FetchSampleCommand() *cli.Command {
	return &cli.Command{
		Name:  "fetch-sample",
		Usage: "Fetch a single sample value",
		Flags: append([]cli.Flag{
			&cli.IntFlag{
				Name:     "subject",
				Usage:    "Subject record number",
				Required: true,
			},
			&cli.Float64Flag{
				Name:     "seconds",
				Usage:    "Timestamp in seconds from record start",
				Required: true,
			},
			&cli.IntFlag{
				Name:  "series",
				Usage: "Series index (1-based)",
				Value: 1,
			},
		}, SessionFlags()...),
		Action: fetchSampleAction,
	}
}

func fetchSampleAction(c *cli.Context) error {
	subject := int32(c.Int("subject"))
	seconds := c.Float64("seconds")
	series := int32(c.Int("series"))

	env, err := openEnv(c)
	if err != nil {
		return exitFor(err)
	}

	value, err := fetchSampleCached(c, env, subject, seconds, series)
	if closeErr := env.close(nil); err == nil {
		err = closeErr
	}
	if err != nil {
		return exitFor(err)
	}

	fmt.Printf("%g\n", value)
	return nil
}

// fetchSampleCached consults the cache before touching the channel and
// fills it after a server fetch. Cache failures degrade to misses.
func fetchSampleCached(c *cli.Context, env *sessionEnv, subject int32, seconds float64, series int32) (float64, error) {
	if env.cache != nil {
		value, ok, err := env.cache.Get(c.Context, subject, seconds, series)
		if err != nil {
			env.logger.Warn("cache get failed", map[string]any{"error": err.Error()})
		}
		if ok {
			return value, nil
		}
	}

	value, err := env.samples.FetchSample(subject, seconds, series)
	if err != nil {
		return 0, err
	}

	if env.cache != nil {
		if err := env.cache.Put(c.Context, subject, seconds, series, value); err != nil {
			env.logger.Warn("cache put failed", map[string]any{"error": err.Error()})
		}
	}
	return value, nil
}
