// Package server implements the serving side of the request-channel
// protocol: the control channel created at startup, per-channel request
// dispatch, and dynamic channel spawning.
package server

import (
	"errors"
	"fmt"
	"sync"

	"github.com/waveline-io/fifolink/channel"
	"github.com/waveline-io/fifolink/log"
	"github.com/waveline-io/fifolink/wire"
)

// Server owns the control channel and every ephemeral channel it spawns.
// One goroutine serves each channel; requests within a channel are handled
// strictly in arrival order.
type Server struct {
	opts   channel.Options
	store  *Store
	logger *log.Logger

	mu      sync.Mutex
	nextID  int
	spawned sync.WaitGroup
}

// Config configures a server.
type Config struct {
	// Options configures channel creation (pipe dir, capacity).
	Options channel.Options
	// Store serves sample and file lookups.
	Store *Store
	// Logger defaults to a no-op logger.
	Logger *log.Logger
}

// New creates a server. Serve must be called to start handling requests.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = log.Nop()
	}
	return &Server{
		opts:   cfg.Options,
		store:  cfg.Store,
		logger: cfg.Logger,
	}
}

// Serve creates the control channel, waits for the client to attach, and
// handles requests until the control channel receives quit. It then waits
// for any spawned channel goroutines to finish and removes the control
// pipe nodes.
func (s *Server) Serve() error {
	if err := channel.Create(s.opts.Dir, channel.ControlName); err != nil {
		return err
	}

	control, err := channel.Open(channel.ControlName, channel.ServerSide, s.opts)
	if err != nil {
		_ = channel.Remove(s.opts.Dir, channel.ControlName)
		return err
	}
	s.logger.Info("control channel live", map[string]any{"pipe_dir": s.opts.Dir})

	serveErr := s.serveChannel(control)
	s.spawned.Wait()

	if err := control.Destroy(); err != nil && serveErr == nil {
		serveErr = err
	}
	return serveErr
}

// serveChannel handles requests on one channel until quit or a fatal error.
func (s *Server) serveChannel(ch *channel.Channel) error {
	defer func() {
		if ch.Ephemeral() {
			_ = ch.Destroy()
			s.logger.Info("ephemeral channel destroyed", map[string]any{"channel": ch.Name()})
		}
	}()

	for {
		msg, err := ch.ReadMessage()
		if err != nil {
			if errors.Is(err, channel.ErrPeerClosed) {
				// Client went away without quit. Treat as shutdown for
				// this channel.
				return nil
			}
			return err
		}

		tag, err := wire.DecodeTag(msg)
		if err != nil {
			return err
		}

		switch tag {
		case wire.TagQuit:
			s.logger.Info("quit received", map[string]any{"channel": ch.Name()})
			return nil
		case wire.TagSample:
			err = s.handleSample(ch, msg)
		case wire.TagFile:
			err = s.handleFile(ch, msg)
		case wire.TagNewChannel:
			err = s.handleNewChannel(ch)
		}
		if err != nil {
			return fmt.Errorf("channel %s: %w", ch.Name(), err)
		}
	}
}

func (s *Server) handleSample(ch *channel.Channel, msg []byte) error {
	req, err := wire.DecodeSampleRequest(msg)
	if err != nil {
		return err
	}

	value, err := s.store.Sample(req.Subject, req.Seconds, req.Series)
	if err != nil {
		// The protocol has no error reply for samples; absent data
		// resolves to zero, and the condition is only visible here.
		s.logger.Warn("sample lookup failed", map[string]any{
			"subject": req.Subject,
			"seconds": req.Seconds,
			"series":  req.Series,
			"error":   err.Error(),
		})
		value = 0
	}
	return ch.WriteExact(wire.EncodeSampleReply(value))
}

func (s *Server) handleFile(ch *channel.Channel, msg []byte) error {
	req, err := wire.DecodeFileRequest(msg)
	if err != nil {
		return err
	}

	if req.SizeQuery() {
		return ch.WriteExact(wire.EncodeSizeReply(s.store.FileSize(req.Name)))
	}

	data, err := s.store.FileChunk(req.Name, req.Offset, req.Length)
	if err != nil {
		return fmt.Errorf("chunk %s@%d+%d: %w", req.Name, req.Offset, req.Length, err)
	}
	return ch.WriteExact(data)
}

// handleNewChannel spawns an ephemeral channel: create the pipe nodes
// first, then reply with the assigned name, then attach in a goroutine.
// The reply must precede the attach or both sides deadlock, each blocked
// on the other.
func (s *Server) handleNewChannel(ch *channel.Channel) error {
	name := s.assignName()
	if err := channel.Create(s.opts.Dir, name); err != nil {
		return err
	}

	reply, err := wire.EncodeChannelName(name)
	if err != nil {
		_ = channel.Remove(s.opts.Dir, name)
		return err
	}
	if err := ch.WriteExact(reply); err != nil {
		_ = channel.Remove(s.opts.Dir, name)
		return err
	}
	s.logger.Info("ephemeral channel assigned", map[string]any{"channel": name})

	s.spawned.Add(1)
	go func() {
		defer s.spawned.Done()
		spawned, err := channel.Open(name, channel.ServerSide, s.opts)
		if err != nil {
			s.logger.Error("ephemeral channel attach failed", map[string]any{
				"channel": name,
				"error":   err.Error(),
			})
			_ = channel.Remove(s.opts.Dir, name)
			return
		}
		if err := s.serveChannel(spawned); err != nil {
			s.logger.Error("ephemeral channel failed", map[string]any{
				"channel": name,
				"error":   err.Error(),
			})
		}
	}()
	return nil
}

// assignName returns a channel name unique among the names this server has
// ever assigned, and distinct from the control name.
func (s *Server) assignName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	return fmt.Sprintf("data%d", s.nextID)
}
