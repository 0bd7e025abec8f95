package channel

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"

	"github.com/waveline-io/fifolink/wire"
)

// Role distinguishes the two ends of a channel.
type Role int

const (
	// ServerSide creates the pipe nodes and owns their lifetime.
	ServerSide Role = iota
	// ClientSide attaches to pre-existing pipe nodes.
	ClientSide
)

// ControlName is the well-known name of the control channel, created by the
// server at startup and never destroyed by the client.
const ControlName = "control"

// MaxCapacity is the largest negotiable buffer capacity. Request framing
// relies on one pipe write arriving as one read, which POSIX guarantees
// only for writes up to PIPE_BUF (4096 on Linux). Beyond that a request
// could split across reads and misalign the peer's decoding.
const MaxCapacity = 4096

// DefaultAttachTimeout bounds how long a client waits for the pipe nodes to
// appear before giving up.
const DefaultAttachTimeout = 5 * time.Second

// attachPollInterval is the stat interval while waiting for pipe nodes.
const attachPollInterval = 5 * time.Millisecond

// Options configures channel opening.
type Options struct {
	// Dir is the directory holding the pipe nodes.
	Dir string
	// Capacity is the negotiated buffer capacity. It caps single writes
	// and must not exceed MaxCapacity. Both peers must agree on it
	// out-of-band.
	Capacity int
	// AttachTimeout bounds the wait for pipe nodes (client role only).
	// Zero means DefaultAttachTimeout.
	AttachTimeout time.Duration
}

// Channel is a duplex link made of two one-directional named pipes:
// <name>.req carries client-to-server bytes, <name>.rsp the reverse.
// Each pipe is an independent ordering domain; writes on one are observed
// by the peer's reads in order.
//
// A channel is either the well-known control channel or an ephemeral one
// whose name the server assigned. All operations block; a hung peer hangs
// the caller. Not safe for concurrent use: one logical request must complete
// before the next begins.
type Channel struct {
	name     string
	dir      string
	role     Role
	capacity int

	in  *os.File // read end
	out *os.File // write end

	closed bool
}

func requestPath(dir, name string) string  { return filepath.Join(dir, name+".req") }
func responsePath(dir, name string) string { return filepath.Join(dir, name+".rsp") }

// Create makes the two pipe nodes for a channel. Only the server side calls
// this, before either side opens. Fails if a node already exists: name
// collisions violate the uniqueness the server guarantees.
func Create(dir, name string) error {
	for _, p := range []string{requestPath(dir, name), responsePath(dir, name)} {
		if err := unix.Mkfifo(p, 0o600); err != nil {
			return &TransportError{Op: "create", Channel: name, Err: err}
		}
	}
	return nil
}

// Open attaches to a channel's pipe pair.
//
// The server side opens its read end first and then its write end; the
// client does the mirror image. Each open blocks until the peer opens the
// complementary end, so a completed Open means both directions are live.
// For the client role the pipe nodes must already exist; Open polls for them
// up to the attach timeout and fails with ErrAttachTimeout otherwise.
func Open(name string, role Role, opts Options) (*Channel, error) {
	if opts.Capacity <= 0 {
		opts.Capacity = wire.DefaultCapacity
	}
	if opts.Capacity > MaxCapacity {
		return nil, &TransportError{Op: "open", Channel: name, Err: ErrBadCapacity}
	}
	ch := &Channel{
		name:     name,
		dir:      opts.Dir,
		role:     role,
		capacity: opts.Capacity,
	}

	req := requestPath(opts.Dir, name)
	rsp := responsePath(opts.Dir, name)

	if role == ClientSide {
		timeout := opts.AttachTimeout
		if timeout <= 0 {
			timeout = DefaultAttachTimeout
		}
		if err := waitForNodes(name, timeout, req, rsp); err != nil {
			return nil, err
		}
	}

	var err error
	if role == ServerSide {
		if ch.in, err = os.OpenFile(req, os.O_RDONLY, 0); err == nil {
			ch.out, err = os.OpenFile(rsp, os.O_WRONLY, 0)
		}
	} else {
		if ch.out, err = os.OpenFile(req, os.O_WRONLY, 0); err == nil {
			ch.in, err = os.OpenFile(rsp, os.O_RDONLY, 0)
		}
	}
	if err != nil {
		ch.closeFiles()
		return nil, &TransportError{Op: "open", Channel: name, Err: err}
	}
	return ch, nil
}

// waitForNodes polls until both pipe nodes exist or the timeout elapses.
func waitForNodes(name string, timeout time.Duration, paths ...string) error {
	deadline := time.Now().Add(timeout)
	for {
		missing := false
		for _, p := range paths {
			if _, err := os.Stat(p); err != nil {
				missing = true
				break
			}
		}
		if !missing {
			return nil
		}
		if time.Now().After(deadline) {
			return &TransportError{Op: "attach", Channel: name, Err: ErrAttachTimeout}
		}
		time.Sleep(attachPollInterval)
	}
}

// Name returns the channel name.
func (c *Channel) Name() string { return c.name }

// Capacity returns the negotiated buffer capacity.
func (c *Channel) Capacity() int { return c.capacity }

// Ephemeral reports whether this is a server-assigned (non-control) channel.
func (c *Channel) Ephemeral() bool { return c.name != ControlName }

// WriteExact writes the whole buffer, looping across partial writes. A
// single message must not exceed the negotiated capacity; request alignment
// on the peer side depends on it (pipe writes up to PIPE_BUF are atomic).
func (c *Channel) WriteExact(p []byte) error {
	if c.closed {
		return &TransportError{Op: "write", Channel: c.name, Err: ErrClosed}
	}
	if len(p) > c.capacity {
		return &TransportError{Op: "write", Channel: c.name, Err: ErrOversizedMessage}
	}
	for len(p) > 0 {
		n, err := c.out.Write(p)
		if err != nil {
			return &TransportError{Op: "write", Channel: c.name, Err: err}
		}
		p = p[n:]
	}
	return nil
}

// ReadExact blocks until exactly n bytes have accumulated and returns them.
// End-of-stream before n bytes is fatal: the peer closed mid-exchange.
func (c *Channel) ReadExact(n int) ([]byte, error) {
	if c.closed {
		return nil, &TransportError{Op: "read", Channel: c.name, Err: ErrClosed}
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(c.in, buf); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			err = ErrPeerClosed
		}
		return nil, &TransportError{Op: "read", Channel: c.name, Err: err}
	}
	return buf, nil
}

// ReadMessage reads one request as written by the peer in a single write of
// at most capacity bytes, returning however many bytes that write carried.
// Used by the serving side, where a request's length is implied by the bytes
// the sender wrote rather than encoded in the message.
func (c *Channel) ReadMessage() ([]byte, error) {
	if c.closed {
		return nil, &TransportError{Op: "read", Channel: c.name, Err: ErrClosed}
	}
	buf := make([]byte, c.capacity)
	n, err := c.in.Read(buf)
	if err != nil {
		if err == io.EOF {
			err = ErrPeerClosed
		}
		return nil, &TransportError{Op: "read", Channel: c.name, Err: err}
	}
	return buf[:n], nil
}

// Close releases the file descriptors. The pipe nodes stay in place; the
// creating side removes them via Destroy. Close is idempotent.
func (c *Channel) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	return c.closeFiles()
}

func (c *Channel) closeFiles() error {
	var first error
	if c.in != nil {
		if err := c.in.Close(); err != nil && first == nil {
			first = err
		}
		c.in = nil
	}
	if c.out != nil {
		if err := c.out.Close(); err != nil && first == nil {
			first = err
		}
		c.out = nil
	}
	return first
}

// Destroy closes the channel and removes its pipe nodes so the name can be
// reused. Only the creating (server) side may destroy, or two live sessions
// could collide on a recycled name.
func (c *Channel) Destroy() error {
	if c.role != ServerSide {
		return &TransportError{Op: "destroy", Channel: c.name, Err: ErrNotOwner}
	}
	closeErr := c.Close()
	for _, p := range []string{requestPath(c.dir, c.name), responsePath(c.dir, c.name)} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return &TransportError{Op: "destroy", Channel: c.name, Err: err}
		}
	}
	return closeErr
}

// Remove deletes a channel's pipe nodes without an open channel value.
// The server uses it to reclaim nodes for channels it created but whose
// attach never completed.
func Remove(dir, name string) error {
	var first error
	for _, p := range []string{requestPath(dir, name), responsePath(dir, name)} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) && first == nil {
			first = err
		}
	}
	return first
}
