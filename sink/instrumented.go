package sink

import "github.com/waveline-io/fifolink/metrics"

// InstrumentedSink wraps a Sink and records chunk and byte counts into a
// metrics collector. The collector may be nil, in which case recording is a
// no-op (nil-receiver-safe collector methods).
type InstrumentedSink struct {
	inner     Sink
	collector *metrics.Collector
}

// NewInstrumentedSink wraps inner with metrics recording.
func NewInstrumentedSink(inner Sink, collector *metrics.Collector) *InstrumentedSink {
	return &InstrumentedSink{inner: inner, collector: collector}
}

// WriteChunk implements Sink.
func (s *InstrumentedSink) WriteChunk(offset int64, data []byte) error {
	if err := s.inner.WriteChunk(offset, data); err != nil {
		return err
	}
	s.collector.AddChunk(int64(len(data)))
	return nil
}

// Close implements Sink.
func (s *InstrumentedSink) Close() error {
	return s.inner.Close()
}

// Verify InstrumentedSink implements Sink.
var _ Sink = (*InstrumentedSink)(nil)
