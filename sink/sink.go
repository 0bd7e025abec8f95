// Package sink receives file-transfer chunks in arrival order.
//
// A Sink consumes the chunk replies of one file transfer. Chunks arrive in
// strictly increasing offset order with no gaps or overlaps; sinks verify
// this invariant and fail the transfer on violation rather than silently
// reordering.
package sink

import "errors"

// ErrOutOfOrderChunk indicates a chunk whose offset does not continue the
// previous one exactly (gap, overlap, or reordering).
var ErrOutOfOrderChunk = errors.New("chunk offset out of order")

// Sink consumes the chunks of a single file transfer.
type Sink interface {
	// WriteChunk accepts the chunk starting at offset. Offsets must be
	// contiguous: each call's offset equals the previous offset plus the
	// previous length, starting at zero.
	WriteChunk(offset int64, data []byte) error

	// Close finalizes the transfer. Buffering sinks flush here; Close must
	// be called on the success path only after the final chunk.
	Close() error
}
