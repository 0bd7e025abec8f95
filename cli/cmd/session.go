package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/waveline-io/fifolink/bootstrap"
	"github.com/waveline-io/fifolink/cache"
	"github.com/waveline-io/fifolink/channel"
	"github.com/waveline-io/fifolink/cli/config"
	"github.com/waveline-io/fifolink/client"
	"github.com/waveline-io/fifolink/log"
	"github.com/waveline-io/fifolink/metrics"
	"github.com/waveline-io/fifolink/report"
	"github.com/waveline-io/fifolink/session"
	"github.com/waveline-io/fifolink/types"
	"github.com/waveline-io/fifolink/wire"
)

// sessionChoice holds resolved session configuration: CLI flags merged
// over the optional config file.
type sessionChoice struct {
	pipeDir       string
	capacity      int
	attachTimeout time.Duration
	newChannel    bool
	outputDir     string

	spawnServer  bool
	serverBinary string
	dataDir      string

	cacheURL string
	cacheTTL time.Duration

	reportPath string
	verbose    bool

	archive config.ArchiveConfig
}

// resolveChoice merges flags over the config file. Flags win.
func resolveChoice(c *cli.Context) (*sessionChoice, error) {
	choice := &sessionChoice{
		capacity: wire.DefaultCapacity,
	}

	if path := c.String("config"); path != "" {
		cfg, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		if cfg.PipeDir != "" {
			choice.pipeDir = cfg.PipeDir
		}
		if cfg.Capacity > 0 {
			choice.capacity = cfg.Capacity
		}
		choice.attachTimeout = cfg.AttachTimeout.Duration
		choice.outputDir = cfg.OutputDir
		choice.spawnServer = cfg.Server.Spawn
		choice.serverBinary = cfg.Server.Binary
		choice.dataDir = cfg.Server.DataDir
		choice.cacheURL = cfg.Cache.URL
		choice.cacheTTL = cfg.Cache.TTL.Duration
		choice.reportPath = cfg.Report.Path
		choice.archive = cfg.Archive
	}

	if v := c.String("pipe-dir"); v != "" {
		choice.pipeDir = v
	}
	if v := c.Int("capacity"); v > 0 {
		choice.capacity = v
	}
	if v := c.Duration("attach-timeout"); v > 0 {
		choice.attachTimeout = v
	}
	if c.Bool("new-channel") {
		choice.newChannel = true
	}
	if c.Bool("spawn-server") {
		choice.spawnServer = true
	}
	if v := c.String("server-binary"); v != "" {
		choice.serverBinary = v
	}
	if v := c.String("data-dir"); v != "" {
		choice.dataDir = v
	}
	if v := c.String("cache-url"); v != "" {
		choice.cacheURL = v
	}
	if v := c.String("report"); v != "" {
		choice.reportPath = v
	}
	choice.verbose = c.Bool("verbose")

	if choice.pipeDir == "" {
		return nil, errors.New("pipe dir is required (--pipe-dir or config file)")
	}
	return choice, nil
}

// sessionEnv is everything one command invocation needs: the attached
// session, its clients, and the optional extras (cache, report, spawned
// server).
type sessionEnv struct {
	choice    *sessionChoice
	logger    *log.Logger
	collector *metrics.Collector
	sess      *session.Session
	samples   *client.SampleClient
	files     *client.FileClient
	cache     *cache.SampleCache
	server    *bootstrap.ServerManager
	started   time.Time
}

// openEnv resolves flags, optionally spawns a server, and attaches a
// session. The caller must finish with env.close.
func openEnv(c *cli.Context) (*sessionEnv, error) {
	choice, err := resolveChoice(c)
	if err != nil {
		return nil, err
	}

	sessionID := fmt.Sprintf("sess-%d-%d", os.Getpid(), time.Now().Unix())
	meta := &types.SessionMeta{
		SessionID: sessionID,
		PipeDir:   choice.pipeDir,
		Capacity:  choice.capacity,
	}

	logger := log.Nop()
	if choice.verbose {
		logger = log.NewLogger(meta).WithOutput(os.Stderr)
	}

	env := &sessionEnv{
		choice:    choice,
		logger:    logger,
		collector: metrics.NewCollector(sessionID, channel.ControlName),
		started:   time.Now(),
	}

	if choice.spawnServer {
		env.server = bootstrap.NewServerManager(&bootstrap.ServerConfig{
			Binary:   choice.serverBinary,
			DataDir:  choice.dataDir,
			PipeDir:  choice.pipeDir,
			Capacity: choice.capacity,
		})
		if err := env.server.Start(); err != nil {
			return nil, err
		}
	}

	sess, err := session.Open(session.Config{
		Options: channel.Options{
			Dir:           choice.pipeDir,
			Capacity:      choice.capacity,
			AttachTimeout: choice.attachTimeout,
		},
		Logger:    logger,
		Collector: env.collector,
	})
	if err != nil {
		env.stopServer()
		return nil, err
	}
	env.sess = sess

	if choice.newChannel {
		if _, err := sess.NewChannel(); err != nil {
			_ = sess.Close()
			env.stopServer()
			return nil, err
		}
	}

	if choice.cacheURL != "" {
		sc, err := cache.New(cache.Config{URL: choice.cacheURL, TTL: choice.cacheTTL})
		if err != nil {
			_ = sess.Close()
			env.stopServer()
			return nil, err
		}
		env.cache = sc
	}

	opts := []client.Option{client.WithLogger(logger), client.WithMetrics(env.collector)}
	env.samples = client.NewSampleClient(sess.Active(), opts...)
	env.files = client.NewFileClient(sess.Active(), opts...)
	return env, nil
}

// close ends the session, writes the report if configured, and reaps a
// spawned server. Called unconditionally; failures here never mask the
// command's own error.
func (e *sessionEnv) close(transfers []report.FileTransfer) error {
	var first error

	if e.sess != nil {
		if err := e.sess.Close(); err != nil && first == nil {
			first = err
		}
	}
	if e.cache != nil {
		if err := e.cache.Close(); err != nil && first == nil {
			first = err
		}
	}
	e.stopServer()

	if e.choice.reportPath != "" {
		r := &report.Report{
			PipeDir:   e.choice.pipeDir,
			Capacity:  e.choice.capacity,
			StartedAt: e.started,
			EndedAt:   time.Now(),
			Transfers: transfers,
		}
		r.Absorb(e.collector.Snapshot())
		if err := report.Write(e.choice.reportPath, r); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (e *sessionEnv) stopServer() {
	if e.server == nil {
		return
	}
	if result, err := e.server.Stop(); err == nil && len(result.StderrBytes) > 0 {
		e.logger.Debug("server stderr", map[string]any{"output": string(result.StderrBytes)})
	}
	e.server = nil
}

// exitFor maps an error to the command exit code: transport failures and
// protocol violations get distinct codes so scripts can tell a dead
// server from a framing bug.
func exitFor(err error) error {
	if err == nil {
		return cli.Exit("", exitSuccess)
	}
	code := exitFailure
	switch {
	case channel.IsTransportError(err):
		code = exitTransport
	case wire.IsProtocolError(err):
		code = exitProtocol
	}
	return cli.Exit(fmt.Sprintf("fifolink: %v", err), code)
}
