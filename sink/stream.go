package sink

import (
	"fmt"
	"io"
	"os"
)

// StreamSink writes chunks through to an io.Writer as they arrive, tracking
// the expected next offset. Suitable for arbitrarily large transfers: no
// buffering beyond the chunk in flight.
type StreamSink struct {
	w      io.Writer
	closer io.Closer
	next   int64
}

// NewStreamSink creates a sink writing through to w.
func NewStreamSink(w io.Writer) *StreamSink {
	s := &StreamSink{w: w}
	if c, ok := w.(io.Closer); ok {
		s.closer = c
	}
	return s
}

// NewFileSink creates the named file (truncating any previous content) and
// returns a sink streaming into it.
func NewFileSink(path string) (*StreamSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create sink file: %w", err)
	}
	return NewStreamSink(f), nil
}

// WriteChunk implements Sink.
func (s *StreamSink) WriteChunk(offset int64, data []byte) error {
	if offset != s.next {
		return fmt.Errorf("%w: got offset %d, want %d", ErrOutOfOrderChunk, offset, s.next)
	}
	if _, err := s.w.Write(data); err != nil {
		return fmt.Errorf("write chunk at offset %d: %w", offset, err)
	}
	s.next += int64(len(data))
	return nil
}

// Close implements Sink.
func (s *StreamSink) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

// BytesWritten returns the total bytes accepted so far.
func (s *StreamSink) BytesWritten() int64 { return s.next }

// Verify StreamSink implements Sink.
var _ Sink = (*StreamSink)(nil)
