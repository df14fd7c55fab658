package scopecap

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/kestrel-lab/scopecap/tmc"
)

// SchemaVersion is the capture-document revision this package writes. Any
// document declaring another revision is rejected rather than guessed at.
const SchemaVersion = 1

// Document is the durable JSON form of a Capture. Raw block payloads travel
// base64-encoded next to their declared lengths, and every parsed value
// travels next to the raw reply it was parsed from, so a stored capture can
// be re-verified from first principles without the instrument. Decoded
// waveform samples are deliberately not stored: decoding is a pure function
// of the stored raw data and is re-run on load.
type Document struct {
	Version    int             `json:"version"`
	CaptureID  string          `json:"capture_id"`
	Time       time.Time       `json:"time"`
	Instrument string          `json:"instrument"`
	Trigger    TriggerRecord   `json:"trigger"`
	Channels   []ChannelRecord `json:"channels"`
}

// TriggerRecord is the document form of TriggerConfig.
type TriggerRecord struct {
	Raw        map[string]string `json:"raw"`
	Mode       string            `json:"mode"`
	Sweep      string            `json:"sweep"`
	EdgeSource string            `json:"edge_source,omitempty"`
	EdgeSlope  string            `json:"edge_slope,omitempty"`
	EdgeLevel  float64           `json:"edge_level,omitempty"`
}

// PreambleRecord is the document form of Preamble, all fields by name.
type PreambleRecord struct {
	Raw        string  `json:"raw"`
	Format     int     `json:"format"`
	Mode       int     `json:"mode"`
	Points     int     `json:"points"`
	Averages   int     `json:"averages"`
	XIncrement float64 `json:"x_increment"`
	XOrigin    float64 `json:"x_origin"`
	XReference float64 `json:"x_reference"`
	YIncrement float64 `json:"y_increment"`
	YOrigin    float64 `json:"y_origin"`
	YReference float64 `json:"y_reference"`
}

// ConfigRecord is the document form of ChannelConfig.
type ConfigRecord struct {
	Raw              map[string]string `json:"raw"`
	Scale            float64           `json:"scale"`
	Offset           float64           `json:"offset"`
	ProbeAttenuation float64           `json:"probe_attenuation"`
	Coupling         string            `json:"coupling"`
	BandwidthLimit   string            `json:"bandwidth_limit"`
	Enabled          bool              `json:"enabled"`
}

// ChannelRecord is one channel's entry in the document.
type ChannelRecord struct {
	Channel     string         `json:"channel"`
	Preamble    PreambleRecord `json:"preamble"`
	Config      ConfigRecord   `json:"config"`
	Encoding    SampleEncoding `json:"encoding"`
	BlockLength int            `json:"block_length"`
	BlockBase64 string         `json:"block_base64"`
}

// Document converts the capture to its durable, schema-versioned form.
// Per-channel failures are a live-capture concern and are not persisted.
func (c *Capture) Document() *Document {
	d := &Document{
		Version:    SchemaVersion,
		CaptureID:  c.ID,
		Time:       c.Time,
		Instrument: c.Instrument,
		Trigger: TriggerRecord{
			Raw:        c.Trigger.Raw,
			Mode:       c.Trigger.Mode,
			Sweep:      c.Trigger.Sweep,
			EdgeSource: c.Trigger.EdgeSource,
			EdgeSlope:  c.Trigger.EdgeSlope,
			EdgeLevel:  c.Trigger.EdgeLevel,
		},
	}
	for i := range c.Channels {
		cc := &c.Channels[i]
		p := cc.Preamble
		d.Channels = append(d.Channels, ChannelRecord{
			Channel: cc.Channel.String(),
			Preamble: PreambleRecord{
				Raw:        p.Raw,
				Format:     int(p.Format),
				Mode:       p.Mode,
				Points:     p.Points,
				Averages:   p.Averages,
				XIncrement: p.XIncrement,
				XOrigin:    p.XOrigin,
				XReference: p.XReference,
				YIncrement: p.YIncrement,
				YOrigin:    p.YOrigin,
				YReference: p.YReference,
			},
			Config: ConfigRecord{
				Raw:              cc.Config.Raw,
				Scale:            cc.Config.Scale,
				Offset:           cc.Config.Offset,
				ProbeAttenuation: cc.Config.ProbeAttenuation,
				Coupling:         cc.Config.Coupling,
				BandwidthLimit:   cc.Config.BandwidthLimit,
				Enabled:          cc.Config.Enabled,
			},
			Encoding:    cc.Encoding,
			BlockLength: cc.Block.DeclaredLength,
			BlockBase64: base64.StdEncoding.EncodeToString(cc.Block.Payload),
		})
	}
	return d
}

// ParseDocument is the inverse of Document. It restores byte-identical raw
// block payloads and re-runs the waveform decoder on them, so the decoded
// samples are numerically identical to the originals.
func ParseDocument(d *Document) (*Capture, error) {
	if d.Version != SchemaVersion {
		return nil, fmt.Errorf("%w: document declares version %d, this build reads %d",
			ErrUnsupportedSchemaVersion, d.Version, SchemaVersion)
	}
	if d.CaptureID == "" {
		return nil, fmt.Errorf("%w: missing capture_id", ErrSerialization)
	}

	c := &Capture{
		ID:         d.CaptureID,
		Time:       d.Time,
		Instrument: d.Instrument,
		Trigger: TriggerConfig{
			Raw:        d.Trigger.Raw,
			Mode:       d.Trigger.Mode,
			Sweep:      d.Trigger.Sweep,
			EdgeSource: d.Trigger.EdgeSource,
			EdgeSlope:  d.Trigger.EdgeSlope,
			EdgeLevel:  d.Trigger.EdgeLevel,
		},
	}

	for i := range d.Channels {
		rec := &d.Channels[i]
		ch, err := ParseChannel(rec.Channel)
		if err != nil {
			return nil, fmt.Errorf("%w: channel %d: %v", ErrSerialization, i, err)
		}
		payload, err := base64.StdEncoding.DecodeString(rec.BlockBase64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s block: %v", ErrSerialization, ch, err)
		}
		if len(payload) != rec.BlockLength {
			return nil, fmt.Errorf("%w: %s block declares %d bytes, decoded %d",
				ErrSerialization, ch, rec.BlockLength, len(payload))
		}

		p := Preamble{
			Raw:        rec.Preamble.Raw,
			Format:     PreambleFormat(rec.Preamble.Format),
			Mode:       rec.Preamble.Mode,
			Points:     rec.Preamble.Points,
			Averages:   rec.Preamble.Averages,
			XIncrement: rec.Preamble.XIncrement,
			XOrigin:    rec.Preamble.XOrigin,
			XReference: rec.Preamble.XReference,
			YIncrement: rec.Preamble.YIncrement,
			YOrigin:    rec.Preamble.YOrigin,
			YReference: rec.Preamble.YReference,
		}
		block := tmc.Block{DeclaredLength: rec.BlockLength, Payload: payload}
		wf, err := DecodeWaveform(p, block, rec.Encoding)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrSerialization, ch, err)
		}

		c.Channels = append(c.Channels, ChannelCapture{
			Channel:  ch,
			Preamble: p,
			Block:    block,
			Encoding: rec.Encoding,
			Waveform: wf,
			Config: ChannelConfig{
				Raw:              rec.Config.Raw,
				Scale:            rec.Config.Scale,
				Offset:           rec.Config.Offset,
				ProbeAttenuation: rec.Config.ProbeAttenuation,
				Coupling:         rec.Config.Coupling,
				BandwidthLimit:   rec.Config.BandwidthLimit,
				Enabled:          rec.Config.Enabled,
			},
		})
	}
	return c, nil
}

// WriteJSON writes the capture's document as indented JSON.
func (c *Capture) WriteJSON(w io.Writer) error {
	out, err := json.MarshalIndent(c.Document(), "", "    ")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	if _, err := w.Write(append(out, '\n')); err != nil {
		return fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return nil
}

// ReadJSON reads one JSON capture document and reconstitutes the Capture.
func ReadJSON(r io.Reader) (*Capture, error) {
	var d Document
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	return ParseDocument(&d)
}
