// Package report writes a per-session transfer report as a msgpack file.
//
// The report captures what a session moved over the channel: counters
// absorbed from the metrics collector plus one record per retrieved file.
// msgpack keeps the file compact and lets other tooling in the pipeline
// read it without caring about Go struct layout.
package report

import (
	"fmt"
	"os"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/waveline-io/fifolink/metrics"
)

// FileTransfer records one completed file retrieval.
type FileTransfer struct {
	Name   string `msgpack:"name" json:"name"`
	Bytes  int64  `msgpack:"bytes" json:"bytes"`
	Chunks int64  `msgpack:"chunks" json:"chunks"`
}

// Report is the serialized form of one session's transfer activity.
type Report struct {
	SessionID string    `msgpack:"session_id" json:"session_id"`
	PipeDir   string    `msgpack:"pipe_dir" json:"pipe_dir"`
	Capacity  int       `msgpack:"capacity" json:"capacity"`
	StartedAt time.Time `msgpack:"started_at" json:"started_at"`
	EndedAt   time.Time `msgpack:"ended_at" json:"ended_at"`

	RequestsSent    int64 `msgpack:"requests_sent" json:"requests_sent"`
	SamplesFetched  int64 `msgpack:"samples_fetched" json:"samples_fetched"`
	FilesFetched    int64 `msgpack:"files_fetched" json:"files_fetched"`
	ChannelsCreated int64 `msgpack:"channels_created" json:"channels_created"`
	ChunksReceived  int64 `msgpack:"chunks_received" json:"chunks_received"`
	BytesReceived   int64 `msgpack:"bytes_received" json:"bytes_received"`
	TransportErrors int64 `msgpack:"transport_errors" json:"transport_errors"`
	ProtocolErrors  int64 `msgpack:"protocol_errors" json:"protocol_errors"`

	Transfers []FileTransfer `msgpack:"transfers,omitempty" json:"transfers,omitempty"`
}

// Absorb copies the counters of a metrics snapshot into the report.
func (r *Report) Absorb(snap metrics.Snapshot) {
	r.SessionID = snap.SessionID
	r.RequestsSent = snap.RequestsSent
	r.SamplesFetched = snap.SamplesFetched
	r.FilesFetched = snap.FilesFetched
	r.ChannelsCreated = snap.ChannelsCreated
	r.ChunksReceived = snap.ChunksReceived
	r.BytesReceived = snap.BytesReceived
	r.TransportErrors = snap.TransportErrors
	r.ProtocolErrors = snap.ProtocolErrors
}

// AddTransfer appends one file transfer record.
func (r *Report) AddTransfer(name string, bytes, chunks int64) {
	r.Transfers = append(r.Transfers, FileTransfer{Name: name, Bytes: bytes, Chunks: chunks})
}

// Write serializes the report to path as msgpack.
func Write(path string, r *Report) error {
	data, err := msgpack.Marshal(r)
	if err != nil {
		return fmt.Errorf("report: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("report: write %s: %w", path, err)
	}
	return nil
}

// Load reads a msgpack report from path.
func Load(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("report: read %s: %w", path, err)
	}
	var r Report
	if err := msgpack.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("report: decode %s: %w", path, err)
	}
	return &r, nil
}
