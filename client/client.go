// Package client implements the request side of the protocol: sample
// lookups and chunked file transfers over an open channel.
//
// Clients are synchronous and single-threaded: one request is outstanding
// at a time, and every call blocks until its reply arrives or the exchange
// fails fatally. There is no retry anywhere in this package; transport and
// protocol failures abort the current operation.
package client

import (
	"errors"

	"github.com/waveline-io/fifolink/log"
	"github.com/waveline-io/fifolink/metrics"
)

// Transport is the blocking request/reply surface a client needs from a
// channel. *channel.Channel implements it.
type Transport interface {
	// WriteExact writes the whole buffer or fails.
	WriteExact(p []byte) error
	// ReadExact blocks until exactly n bytes arrived.
	ReadExact(n int) ([]byte, error)
	// Capacity is the negotiated buffer capacity.
	Capacity() int
	// Name identifies the channel for logs and errors.
	Name() string
}

// ErrFileNotFound indicates the server signaled an unknown file via the
// size-query sentinel. The transfer is aborted; there is no partial output.
var ErrFileNotFound = errors.New("file not found")

// ErrBadChunkSize indicates a caller-supplied maximum chunk size outside
// the valid range (must be positive and at most the channel capacity).
var ErrBadChunkSize = errors.New("invalid max chunk size")

// options shared by both clients.
type options struct {
	logger    *log.Logger
	collector *metrics.Collector
}

// Option configures a client.
type Option func(*options)

// WithLogger attaches a logger. Defaults to a no-op logger.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMetrics attaches a metrics collector. Defaults to uninstrumented.
func WithMetrics(c *metrics.Collector) Option {
	return func(o *options) { o.collector = c }
}

func buildOptions(opts []Option) options {
	o := options{logger: log.Nop()}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}
