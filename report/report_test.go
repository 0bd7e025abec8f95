package report

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/waveline-io/fifolink/metrics"
)

func TestWriteLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.msgpack")

	started := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	r := &Report{
		SessionID: "sess-42",
		PipeDir:   "/run/fifolink",
		Capacity:  256,
		StartedAt: started,
		EndedAt:   started.Add(3 * time.Second),
	}
	r.AddTransfer("ecg/7.dat", 300*1024, 1200)
	r.AddTransfer("notes.txt", 17, 1)

	if err := Write(path, r); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if got.SessionID != "sess-42" || got.Capacity != 256 {
		t.Errorf("identity fields lost: %+v", got)
	}
	if !got.StartedAt.Equal(started) {
		t.Errorf("StartedAt = %v, want %v", got.StartedAt, started)
	}
	if len(got.Transfers) != 2 {
		t.Fatalf("got %d transfers, want 2", len(got.Transfers))
	}
	if got.Transfers[0].Name != "ecg/7.dat" || got.Transfers[0].Bytes != 300*1024 {
		t.Errorf("transfer[0] = %+v", got.Transfers[0])
	}
}

func TestAbsorb_CopiesCounters(t *testing.T) {
	c := metrics.NewCollector("sess-1", "control")
	c.IncRequestSent()
	c.IncRequestSent()
	c.IncSampleFetched()
	c.IncFileFetched()
	c.AddChunk(128)
	c.AddChunk(64)
	c.IncTransportError()

	var r Report
	r.Absorb(c.Snapshot())

	if r.SessionID != "sess-1" {
		t.Errorf("SessionID = %q", r.SessionID)
	}
	if r.RequestsSent != 2 || r.SamplesFetched != 1 || r.FilesFetched != 1 {
		t.Errorf("counters = %+v", r)
	}
	if r.BytesReceived != 192 {
		t.Errorf("BytesReceived = %d, want 192", r.BytesReceived)
	}
	if r.ChunksReceived != 2 {
		t.Errorf("ChunksReceived = %d, want 2", r.ChunksReceived)
	}
	if r.TransportErrors != 1 {
		t.Errorf("TransportErrors = %d, want 1", r.TransportErrors)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.msgpack"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.msgpack")
	if err := Write(path, &Report{SessionID: "x"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	// Truncating mid-payload should fail decoding.
	if err := os.Truncate(path, 3); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected decode error for truncated file")
	}
}
