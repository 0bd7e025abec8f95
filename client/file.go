package client

import (
	"fmt"

	"github.com/waveline-io/fifolink/sink"
	"github.com/waveline-io/fifolink/wire"
)

// FileClient retrieves arbitrary files in capacity-bounded chunks.
type FileClient struct {
	transport Transport
	opts      options
}

// NewFileClient creates a file client over an open channel.
func NewFileClient(t Transport, opts ...Option) *FileClient {
	return &FileClient{transport: t, opts: buildOptions(opts)}
}

// FileSize queries the total length of the named file in bytes.
//
// A reply of -1 is the server's not-found sentinel and surfaces as
// ErrFileNotFound; any other negative value is a protocol error. Both are
// fatal for the transfer.
func (c *FileClient) FileSize(name string) (int64, error) {
	req, err := wire.EncodeFileRequest(wire.FileRequest{Offset: 0, Length: 0, Name: name})
	if err != nil {
		return 0, err
	}
	if err := c.transport.WriteExact(req); err != nil {
		c.opts.collector.IncTransportError()
		return 0, err
	}
	c.opts.collector.IncRequestSent()

	buf, err := c.transport.ReadExact(wire.SizeReplySize)
	if err != nil {
		c.opts.collector.IncTransportError()
		return 0, err
	}
	size, err := wire.DecodeSizeReply(buf)
	if err != nil {
		c.opts.collector.IncProtocolError()
		return 0, err
	}
	if size == -1 {
		c.opts.collector.IncProtocolError()
		return 0, &wire.ProtocolError{
			Kind: wire.KindOutOfRange,
			Msg:  fmt.Sprintf("size query for %q", name),
			Err:  ErrFileNotFound,
		}
	}
	if size < 0 {
		c.opts.collector.IncProtocolError()
		return 0, &wire.ProtocolError{
			Kind: wire.KindOutOfRange,
			Msg:  fmt.Sprintf("size query for %q returned %d", name, size),
		}
	}
	return size, nil
}

// FetchFile retrieves the whole named file into s, iterating offset-bounded
// chunk requests of at most maxChunk bytes. The final chunk is clamped so
// no request asks past end-of-file; a zero-length file is a zero-iteration
// transfer. Chunks reach the sink in strictly increasing offset order.
//
// Any interrupted chunk aborts the whole transfer; there is no resume. The
// sink is closed only on success.
func (c *FileClient) FetchFile(name string, maxChunk int, s sink.Sink) (int64, error) {
	if maxChunk <= 0 {
		return 0, fmt.Errorf("%w: %d, must be > 0", ErrBadChunkSize, maxChunk)
	}
	if maxChunk > c.transport.Capacity() {
		return 0, fmt.Errorf("%w: %d exceeds capacity %d", ErrBadChunkSize, maxChunk, c.transport.Capacity())
	}

	total, err := c.FileSize(name)
	if err != nil {
		return 0, err
	}

	for offset := int64(0); offset < total; offset += int64(maxChunk) {
		length := int64(maxChunk)
		if offset+length > total {
			length = total - offset
		}

		req, err := wire.EncodeFileRequest(wire.FileRequest{Offset: offset, Length: int32(length), Name: name})
		if err != nil {
			return 0, err
		}
		if err := c.transport.WriteExact(req); err != nil {
			c.opts.collector.IncTransportError()
			return 0, err
		}
		c.opts.collector.IncRequestSent()

		data, err := c.transport.ReadExact(int(length))
		if err != nil {
			c.opts.collector.IncTransportError()
			return 0, err
		}
		if err := s.WriteChunk(offset, data); err != nil {
			return 0, err
		}
	}

	if err := s.Close(); err != nil {
		return 0, err
	}

	c.opts.collector.IncFileFetched()
	c.opts.logger.Info("file fetched", map[string]any{
		"channel":   c.transport.Name(),
		"name":      name,
		"bytes":     total,
		"max_chunk": maxChunk,
	})
	return total, nil
}
