package client

import (
	"fmt"
	"io"

	"github.com/waveline-io/fifolink/types"
	"github.com/waveline-io/fifolink/wire"
)

// SampleClient retrieves discrete time-series samples.
type SampleClient struct {
	transport Transport
	opts      options
}

// NewSampleClient creates a sample client over an open channel.
func NewSampleClient(t Transport, opts ...Option) *SampleClient {
	return &SampleClient{transport: t, opts: buildOptions(opts)}
}

// FetchSample requests the value of series for subject at the given time
// and blocks for the single 8-byte reply. Exactly one request yields
// exactly one reply.
//
// The protocol has no not-found code for samples; out-of-range arguments
// beyond the basic preconditions are the server's concern.
func (c *SampleClient) FetchSample(subject int32, seconds float64, series int32) (float64, error) {
	if subject < 0 {
		return 0, fmt.Errorf("subject must be >= 0, got %d", subject)
	}
	if seconds < 0 {
		return 0, fmt.Errorf("timestamp must be >= 0, got %g", seconds)
	}
	if series < 1 {
		return 0, fmt.Errorf("series index must be >= 1, got %d", series)
	}

	req := wire.SampleRequest{Subject: subject, Seconds: seconds, Series: series}
	if err := c.transport.WriteExact(wire.EncodeSampleRequest(req)); err != nil {
		c.opts.collector.IncTransportError()
		return 0, err
	}
	c.opts.collector.IncRequestSent()

	buf, err := c.transport.ReadExact(wire.SampleReplySize)
	if err != nil {
		c.opts.collector.IncTransportError()
		return 0, err
	}
	value, err := wire.DecodeSampleReply(buf)
	if err != nil {
		c.opts.collector.IncProtocolError()
		return 0, err
	}

	c.opts.collector.IncSampleFetched()
	c.opts.logger.Debug("sample fetched", map[string]any{
		"channel": c.transport.Name(),
		"subject": subject,
		"seconds": seconds,
		"series":  series,
		"value":   value,
	})
	return value, nil
}

// FetchSeries retrieves the first count points of both series for a subject
// at the standard sampling stride and writes them as CSV rows
// "t,v1,v2" to w. Requests stay strictly sequential on the channel.
func (c *SampleClient) FetchSeries(subject int32, count int, w io.Writer) error {
	if count < 0 {
		return fmt.Errorf("count must be >= 0, got %d", count)
	}

	for i := 0; i < count; i++ {
		t := float64(i) * types.SampleInterval
		v1, err := c.FetchSample(subject, t, 1)
		if err != nil {
			return fmt.Errorf("series 1 at t=%g: %w", t, err)
		}
		v2, err := c.FetchSample(subject, t, 2)
		if err != nil {
			return fmt.Errorf("series 2 at t=%g: %w", t, err)
		}
		if _, err := fmt.Fprintf(w, "%g,%g,%g\n", t, v1, v2); err != nil {
			return fmt.Errorf("write series row: %w", err)
		}
	}
	return nil
}
