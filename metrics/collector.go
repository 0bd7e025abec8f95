// Package metrics provides per-session transfer metrics collection.
//
// The Collector accumulates counters during a single client session. It is a
// leaf package with no internal dependencies. Instrumented sinks and clients
// record into it live; the session report absorbs a Snapshot at shutdown.
package metrics

import "sync"

// Snapshot is an immutable point-in-time view of all session metrics.
// Returned by Collector.Snapshot(). Safe to read concurrently after creation.
type Snapshot struct {
	// Requests
	RequestsSent    int64
	SamplesFetched  int64
	FilesFetched    int64
	ChannelsCreated int64

	// Transfer
	ChunksReceived int64
	BytesReceived  int64

	// Failures
	TransportErrors int64
	ProtocolErrors  int64

	// Dimensions (informational, set at construction)
	SessionID string
	Channel   string
}

// Collector accumulates metrics during a single session.
// Thread-safe via sync.Mutex. All increment methods are nil-receiver safe so
// callers can run uninstrumented by passing nil.
type Collector struct {
	mu sync.Mutex

	requestsSent    int64
	samplesFetched  int64
	filesFetched    int64
	channelsCreated int64

	chunksReceived int64
	bytesReceived  int64

	transportErrors int64
	protocolErrors  int64

	sessionID string
	channel   string
}

// NewCollector creates a Collector with dimension labels.
func NewCollector(sessionID, channel string) *Collector {
	return &Collector{
		sessionID: sessionID,
		channel:   channel,
	}
}

// IncRequestSent records one request written to a channel.
func (c *Collector) IncRequestSent() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.requestsSent++
	c.mu.Unlock()
}

// IncSampleFetched records one completed sample exchange.
func (c *Collector) IncSampleFetched() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.samplesFetched++
	c.mu.Unlock()
}

// IncFileFetched records one completed file transfer.
func (c *Collector) IncFileFetched() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.filesFetched++
	c.mu.Unlock()
}

// IncChannelCreated records one completed new-channel handshake.
func (c *Collector) IncChannelCreated() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.channelsCreated++
	c.mu.Unlock()
}

// AddChunk records one received file chunk of n bytes.
func (c *Collector) AddChunk(n int64) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.chunksReceived++
	c.bytesReceived += n
	c.mu.Unlock()
}

// IncTransportError records a fatal transport failure.
func (c *Collector) IncTransportError() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.transportErrors++
	c.mu.Unlock()
}

// IncProtocolError records a fatal wire protocol failure.
func (c *Collector) IncProtocolError() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.protocolErrors++
	c.mu.Unlock()
}

// Snapshot returns an immutable point-in-time view of all metrics.
// The returned Snapshot is safe to read concurrently; the Collector can
// continue to be mutated independently.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	return Snapshot{
		RequestsSent:    c.requestsSent,
		SamplesFetched:  c.samplesFetched,
		FilesFetched:    c.filesFetched,
		ChannelsCreated: c.channelsCreated,

		ChunksReceived: c.chunksReceived,
		BytesReceived:  c.bytesReceived,

		TransportErrors: c.transportErrors,
		ProtocolErrors:  c.protocolErrors,

		SessionID: c.sessionID,
		Channel:   c.channel,
	}
}
