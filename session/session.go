// Package session manages a client's channels: the well-known control
// channel opened at startup, and at most one ephemeral channel created via
// the new-channel handshake.
//
// All requests in a session flow over the active channel: the control
// channel by default, or the ephemeral channel once one exists. Channels
// are used strictly sequentially; the session is not safe for concurrent
// use from multiple goroutines.
package session

import (
	"fmt"

	"github.com/waveline-io/fifolink/channel"
	"github.com/waveline-io/fifolink/log"
	"github.com/waveline-io/fifolink/metrics"
	"github.com/waveline-io/fifolink/wire"
)

// Session owns the control channel and tracks the active channel.
type Session struct {
	opts      channel.Options
	control   *channel.Channel
	ephemeral *channel.Channel

	logger    *log.Logger
	collector *metrics.Collector
}

// Config configures a session.
type Config struct {
	// Options configures channel opening (pipe dir, capacity, timeout).
	Options channel.Options
	// Logger defaults to a no-op logger.
	Logger *log.Logger
	// Collector is optional; nil runs uninstrumented.
	Collector *metrics.Collector
}

// Open attaches to the server's control channel. The server must already be
// live: its pipe nodes must exist within the attach timeout.
func Open(cfg Config) (*Session, error) {
	if cfg.Logger == nil {
		cfg.Logger = log.Nop()
	}

	control, err := channel.Open(channel.ControlName, channel.ClientSide, cfg.Options)
	if err != nil {
		return nil, fmt.Errorf("open control channel: %w", err)
	}

	cfg.Logger.Info("session opened", map[string]any{
		"pipe_dir": cfg.Options.Dir,
		"capacity": control.Capacity(),
	})
	return &Session{
		opts:      cfg.Options,
		control:   control,
		logger:    cfg.Logger,
		collector: cfg.Collector,
	}, nil
}

// Active returns the channel requests should flow over: the ephemeral
// channel if one was created, otherwise the control channel.
func (s *Session) Active() *channel.Channel {
	if s.ephemeral != nil {
		return s.ephemeral
	}
	return s.control
}

// Control returns the control channel.
func (s *Session) Control() *channel.Channel { return s.control }

// NewChannel performs the new-channel handshake on the control channel and
// attaches the ephemeral channel the server assigned. The new channel
// becomes the active one; the control channel stays open but idle.
//
// The server guarantees the assigned name is unique among live channels;
// the client treats it as an opaque identifier.
func (s *Session) NewChannel() (*channel.Channel, error) {
	if s.ephemeral != nil {
		return nil, fmt.Errorf("session already has ephemeral channel %q", s.ephemeral.Name())
	}

	if err := s.control.WriteExact(wire.EncodeControl(wire.TagNewChannel)); err != nil {
		s.collector.IncTransportError()
		return nil, fmt.Errorf("request new channel: %w", err)
	}
	s.collector.IncRequestSent()

	buf, err := s.control.ReadExact(wire.ChannelNameSize)
	if err != nil {
		s.collector.IncTransportError()
		return nil, fmt.Errorf("read channel name: %w", err)
	}
	name, err := wire.DecodeChannelName(buf)
	if err != nil {
		s.collector.IncProtocolError()
		return nil, err
	}

	ch, err := channel.Open(name, channel.ClientSide, s.opts)
	if err != nil {
		return nil, fmt.Errorf("attach channel %q: %w", name, err)
	}

	s.ephemeral = ch
	s.collector.IncChannelCreated()
	s.logger.Info("ephemeral channel attached", map[string]any{"channel": name})
	return ch, nil
}

// Shutdown sends quit on the active channel and, if that channel is
// ephemeral, releases the client's end of it. Quit is the only message
// with no reply; Shutdown never blocks waiting for one. The control
// channel's pipe nodes belong to the server and are never destroyed here.
func (s *Session) Shutdown() error {
	active := s.Active()
	if err := active.WriteExact(wire.EncodeControl(wire.TagQuit)); err != nil {
		s.collector.IncTransportError()
		return fmt.Errorf("send quit on %q: %w", active.Name(), err)
	}
	s.logger.Info("quit sent", map[string]any{"channel": active.Name()})

	if active.Ephemeral() {
		s.ephemeral = nil
		return active.Close()
	}
	return nil
}

// Close ends the whole session: it shuts down the ephemeral channel if one
// is live, then the control channel, then closes the control channel's
// descriptors. Safe to call after Shutdown.
func (s *Session) Close() error {
	if s.ephemeral != nil {
		if err := s.Shutdown(); err != nil {
			return err
		}
	}
	if err := s.control.WriteExact(wire.EncodeControl(wire.TagQuit)); err == nil {
		s.logger.Info("quit sent", map[string]any{"channel": s.control.Name()})
	}
	return s.control.Close()
}
