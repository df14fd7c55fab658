package scopecap

import (
	"time"

	"github.com/kestrel-lab/scopecap/tmc"
)

// ChannelCapture is everything retrieved for one channel: the raw block
// exactly as the instrument sent it, the preamble and configuration it was
// retrieved under, the sample encoding in force, and the decoded
// physical-unit waveform.
type ChannelCapture struct {
	Channel  Channel
	Preamble Preamble
	Block    tmc.Block
	Encoding SampleEncoding
	Waveform Waveform
	Config   ChannelConfig
}

// Capture is one complete stopped-trigger snapshot: every requested channel
// that was enabled and captured cleanly, plus capture-wide identity and the
// trigger state at retrieval time. A Capture is immutable once assembled;
// re-running a capture builds a new, independent instance sharing no state
// with earlier ones.
type Capture struct {
	ID         string
	Time       time.Time
	Instrument string
	Trigger    TriggerConfig

	// Channels holds the succeeded channels in request order. Failures
	// records, per failed channel, why it was omitted. A channel that was
	// simply disabled on the scope appears in neither.
	Channels []ChannelCapture
	Failures []ChannelError
}

// Channel returns the capture for ch, or nil if ch was not captured.
func (c *Capture) Channel(ch Channel) *ChannelCapture {
	for i := range c.Channels {
		if c.Channels[i].Channel == ch {
			return &c.Channels[i]
		}
	}
	return nil
}
