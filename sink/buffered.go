package sink

import (
	"bytes"
	"fmt"
	"io"
)

// BufferedSink accumulates a whole transfer in memory and flushes it to the
// destination in one write on Close. Useful when the destination write
// should be all-or-nothing (e.g. remote uploads).
type BufferedSink struct {
	buf      bytes.Buffer
	dest     io.Writer
	next     int64
	maxBytes int64
}

// NewBufferedSink creates a sink that buffers up to maxBytes and flushes to
// dest on Close. maxBytes <= 0 means unbounded.
func NewBufferedSink(dest io.Writer, maxBytes int64) *BufferedSink {
	return &BufferedSink{dest: dest, maxBytes: maxBytes}
}

// WriteChunk implements Sink.
func (s *BufferedSink) WriteChunk(offset int64, data []byte) error {
	if offset != s.next {
		return fmt.Errorf("%w: got offset %d, want %d", ErrOutOfOrderChunk, offset, s.next)
	}
	if s.maxBytes > 0 && s.next+int64(len(data)) > s.maxBytes {
		return fmt.Errorf("buffered sink overflow: %d bytes exceed limit %d", s.next+int64(len(data)), s.maxBytes)
	}
	s.buf.Write(data)
	s.next += int64(len(data))
	return nil
}

// Close flushes the accumulated bytes to the destination.
func (s *BufferedSink) Close() error {
	if _, err := s.dest.Write(s.buf.Bytes()); err != nil {
		return fmt.Errorf("flush buffered sink: %w", err)
	}
	if c, ok := s.dest.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Bytes returns the accumulated transfer so far. The returned slice is only
// valid until the next WriteChunk.
func (s *BufferedSink) Bytes() []byte { return s.buf.Bytes() }

// Verify BufferedSink implements Sink.
var _ Sink = (*BufferedSink)(nil)
