// Package channel implements a blocking duplex byte link over a pair of
// named pipes.
//
// This file defines sentinel errors and the transport error wrapper. These
// enable callers to use errors.Is/errors.As for typed assertions rather than
// string matching, and keep transport failures distinguishable from wire
// protocol errors.
package channel

import (
	"errors"
	"fmt"
)

// Sentinel errors for transport failure classification.
// Use errors.Is(err, ErrXxx) for typed assertions.
var (
	// ErrAttachTimeout indicates the named pipes did not appear within the
	// attach timeout. For the client role this means the server is not live.
	ErrAttachTimeout = errors.New("attach timed out")

	// ErrPeerClosed indicates the peer closed its end before the expected
	// bytes arrived.
	ErrPeerClosed = errors.New("peer closed")

	// ErrClosed indicates the channel was already closed locally.
	ErrClosed = errors.New("channel closed")

	// ErrOversizedMessage indicates a single write larger than the
	// negotiated capacity.
	ErrOversizedMessage = errors.New("message exceeds capacity")

	// ErrNotOwner indicates a destroy attempt by the side that did not
	// create the pipe nodes.
	ErrNotOwner = errors.New("not the channel owner")

	// ErrBadCapacity indicates a configured capacity beyond MaxCapacity,
	// where single-write request framing no longer holds.
	ErrBadCapacity = errors.New("capacity exceeds pipe atomicity limit")
)

// TransportError wraps an underlying error with transport context.
// It preserves the original error in the chain for inspection via errors.Is.
type TransportError struct {
	// Op is the operation that failed (e.g. "open", "read", "write").
	Op string
	// Channel is the channel name involved.
	Channel string
	// Err is the underlying error.
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("channel %s: %s: %v", e.Channel, e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As chain traversal.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransportError reports whether err is a channel transport error.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
