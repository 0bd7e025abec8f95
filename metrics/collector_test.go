package metrics

import (
	"sync"
	"testing"
)

func TestCollector_Snapshot(t *testing.T) {
	c := NewCollector("sess-001", "control")

	c.IncRequestSent()
	c.IncRequestSent()
	c.IncSampleFetched()
	c.IncFileFetched()
	c.IncChannelCreated()
	c.AddChunk(256)
	c.AddChunk(100)
	c.IncTransportError()
	c.IncProtocolError()

	s := c.Snapshot()

	if s.RequestsSent != 2 {
		t.Errorf("RequestsSent = %d, want 2", s.RequestsSent)
	}
	if s.SamplesFetched != 1 {
		t.Errorf("SamplesFetched = %d, want 1", s.SamplesFetched)
	}
	if s.FilesFetched != 1 {
		t.Errorf("FilesFetched = %d, want 1", s.FilesFetched)
	}
	if s.ChannelsCreated != 1 {
		t.Errorf("ChannelsCreated = %d, want 1", s.ChannelsCreated)
	}
	if s.ChunksReceived != 2 {
		t.Errorf("ChunksReceived = %d, want 2", s.ChunksReceived)
	}
	if s.BytesReceived != 356 {
		t.Errorf("BytesReceived = %d, want 356", s.BytesReceived)
	}
	if s.TransportErrors != 1 || s.ProtocolErrors != 1 {
		t.Errorf("error counters = %d/%d, want 1/1", s.TransportErrors, s.ProtocolErrors)
	}
	if s.SessionID != "sess-001" || s.Channel != "control" {
		t.Errorf("dimensions = %q/%q, want sess-001/control", s.SessionID, s.Channel)
	}
}

func TestCollector_NilReceiverSafe(t *testing.T) {
	var c *Collector

	c.IncRequestSent()
	c.IncSampleFetched()
	c.IncFileFetched()
	c.IncChannelCreated()
	c.AddChunk(10)
	c.IncTransportError()
	c.IncProtocolError()

	if s := c.Snapshot(); s != (Snapshot{}) {
		t.Errorf("nil collector snapshot = %+v, want zero value", s)
	}
}

func TestCollector_ConcurrentIncrements(t *testing.T) {
	c := NewCollector("sess-002", "data1")

	var wg sync.WaitGroup
	for g := 0; g < 10; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := 0; n < 100; n++ {
				c.IncRequestSent()
				c.AddChunk(1)
			}
		}()
	}
	wg.Wait()

	s := c.Snapshot()
	if s.RequestsSent != 1000 {
		t.Errorf("RequestsSent = %d, want 1000", s.RequestsSent)
	}
	if s.ChunksReceived != 1000 || s.BytesReceived != 1000 {
		t.Errorf("chunks/bytes = %d/%d, want 1000/1000", s.ChunksReceived, s.BytesReceived)
	}
}
