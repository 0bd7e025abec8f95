package types

// SessionMeta identifies one client session. Every log entry and the
// session report carry these fields.
type SessionMeta struct {
	// SessionID uniquely identifies the session.
	SessionID string
	// PipeDir is the directory holding the channel pipe nodes.
	PipeDir string
	// Capacity is the negotiated buffer capacity shared with the server.
	Capacity int
}

// SampleInterval is the time between consecutive samples of a stored
// series, in seconds (250 Hz acquisition).
const SampleInterval = 0.004
