package sink

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/waveline-io/fifolink/metrics"
)

func TestStreamSink_ContiguousChunks(t *testing.T) {
	var out bytes.Buffer
	s := NewStreamSink(&out)

	chunks := [][]byte{[]byte("abc"), []byte("defg"), []byte("h")}
	var offset int64
	for _, c := range chunks {
		if err := s.WriteChunk(offset, c); err != nil {
			t.Fatalf("WriteChunk(%d) failed: %v", offset, err)
		}
		offset += int64(len(c))
	}

	if got := out.String(); got != "abcdefgh" {
		t.Errorf("output = %q, want %q", got, "abcdefgh")
	}
	if s.BytesWritten() != 8 {
		t.Errorf("BytesWritten = %d, want 8", s.BytesWritten())
	}
}

func TestStreamSink_RejectsGapAndOverlap(t *testing.T) {
	tests := []struct {
		name   string
		offset int64
	}{
		{"gap", 4},
		{"overlap", 2},
		{"restart", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStreamSink(&bytes.Buffer{})
			if err := s.WriteChunk(0, []byte("abc")); err != nil {
				t.Fatalf("first chunk failed: %v", err)
			}
			err := s.WriteChunk(tt.offset, []byte("x"))
			if !errors.Is(err, ErrOutOfOrderChunk) {
				t.Errorf("got %v, want ErrOutOfOrderChunk", err)
			}
		})
	}
}

func TestFileSink_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.bin")
	s, err := NewFileSink(path)
	if err != nil {
		t.Fatalf("NewFileSink failed: %v", err)
	}

	if err := s.WriteChunk(0, []byte("hello ")); err != nil {
		t.Fatalf("WriteChunk failed: %v", err)
	}
	if err := s.WriteChunk(6, []byte("world")); err != nil {
		t.Fatalf("WriteChunk failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(got) != "hello world" {
		t.Errorf("file content = %q, want %q", got, "hello world")
	}
}

func TestBufferedSink_FlushesOnClose(t *testing.T) {
	var out bytes.Buffer
	s := NewBufferedSink(&out, 0)

	if err := s.WriteChunk(0, []byte("aa")); err != nil {
		t.Fatalf("WriteChunk failed: %v", err)
	}
	if err := s.WriteChunk(2, []byte("bb")); err != nil {
		t.Fatalf("WriteChunk failed: %v", err)
	}

	if out.Len() != 0 {
		t.Errorf("destination received %d bytes before Close", out.Len())
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if out.String() != "aabb" {
		t.Errorf("flushed = %q, want %q", out.String(), "aabb")
	}
}

func TestBufferedSink_EnforcesLimit(t *testing.T) {
	s := NewBufferedSink(&bytes.Buffer{}, 3)

	if err := s.WriteChunk(0, []byte("ab")); err != nil {
		t.Fatalf("WriteChunk failed: %v", err)
	}
	if err := s.WriteChunk(2, []byte("cd")); err == nil {
		t.Error("expected overflow error past maxBytes")
	}
}

func TestBufferedSink_RejectsOutOfOrder(t *testing.T) {
	s := NewBufferedSink(&bytes.Buffer{}, 0)
	if err := s.WriteChunk(3, []byte("x")); !errors.Is(err, ErrOutOfOrderChunk) {
		t.Errorf("got %v, want ErrOutOfOrderChunk", err)
	}
}

func TestInstrumentedSink_RecordsChunks(t *testing.T) {
	collector := metrics.NewCollector("sess", "control")
	s := NewInstrumentedSink(NewStreamSink(&bytes.Buffer{}), collector)

	if err := s.WriteChunk(0, make([]byte, 100)); err != nil {
		t.Fatalf("WriteChunk failed: %v", err)
	}
	if err := s.WriteChunk(100, make([]byte, 56)); err != nil {
		t.Fatalf("WriteChunk failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	snap := collector.Snapshot()
	if snap.ChunksReceived != 2 {
		t.Errorf("ChunksReceived = %d, want 2", snap.ChunksReceived)
	}
	if snap.BytesReceived != 156 {
		t.Errorf("BytesReceived = %d, want 156", snap.BytesReceived)
	}
}

func TestInstrumentedSink_DoesNotCountFailedWrites(t *testing.T) {
	collector := metrics.NewCollector("sess", "control")
	s := NewInstrumentedSink(NewStreamSink(&bytes.Buffer{}), collector)

	if err := s.WriteChunk(5, []byte("x")); err == nil {
		t.Fatal("expected out-of-order error")
	}
	if snap := collector.Snapshot(); snap.ChunksReceived != 0 {
		t.Errorf("failed write counted: ChunksReceived = %d", snap.ChunksReceived)
	}
}

func TestInstrumentedSink_NilCollector(t *testing.T) {
	s := NewInstrumentedSink(NewStreamSink(&bytes.Buffer{}), nil)
	if err := s.WriteChunk(0, []byte("ok")); err != nil {
		t.Fatalf("WriteChunk with nil collector failed: %v", err)
	}
}
