package scopecap

import "fmt"

// Channel identifies one waveform source on the oscilloscope.
type Channel int

// The channels a capture can request. ChanMath is the scope's computed
// (CALC) trace; it supports only a subset of the per-channel operations.
const (
	Chan1 Channel = iota + 1
	Chan2
	Chan3
	Chan4
	ChanMath
)

func (c Channel) String() string {
	switch c {
	case Chan1, Chan2, Chan3, Chan4:
		return fmt.Sprintf("CHAN%d", int(c))
	case ChanMath:
		return "MATH"
	}
	return fmt.Sprintf("CHAN(%d)", int(c))
}

// ParseChannel maps the document/CLI spelling of a channel back to its value.
func ParseChannel(s string) (Channel, error) {
	switch s {
	case "CHAN1", "1":
		return Chan1, nil
	case "CHAN2", "2":
		return Chan2, nil
	case "CHAN3", "3":
		return Chan3, nil
	case "CHAN4", "4":
		return Chan4, nil
	case "MATH":
		return ChanMath, nil
	}
	return 0, fmt.Errorf("unknown channel %q", s)
}

// Op enumerates the abstract operations a CommandSet can translate into
// instrument commands.
type Op int

// The operation set. Identify and the trigger operations are capture-wide
// and ignore their channel argument.
const (
	OpIdentify Op = iota
	OpSelectSource
	OpPreamble
	OpWaveformData
	OpChannelScale
	OpChannelOffset
	OpChannelCoupling
	OpChannelProbe
	OpChannelBandwidthLimit
	OpChannelEnabled
	OpTriggerMode
	OpTriggerSweep
	OpTriggerEdgeSource
	OpTriggerEdgeLevel
	OpTriggerEdgeSlope
)

var opNames = map[Op]string{
	OpIdentify:              "Identify",
	OpSelectSource:          "SelectSource",
	OpPreamble:              "Preamble",
	OpWaveformData:          "WaveformData",
	OpChannelScale:          "ChannelScale",
	OpChannelOffset:         "ChannelOffset",
	OpChannelCoupling:       "ChannelCoupling",
	OpChannelProbe:          "ChannelProbe",
	OpChannelBandwidthLimit: "ChannelBandwidthLimit",
	OpChannelEnabled:        "ChannelEnabled",
	OpTriggerMode:           "TriggerMode",
	OpTriggerSweep:          "TriggerSweep",
	OpTriggerEdgeSource:     "TriggerEdgeSource",
	OpTriggerEdgeLevel:      "TriggerEdgeLevel",
	OpTriggerEdgeSlope:      "TriggerEdgeSlope",
}

func (op Op) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return fmt.Sprintf("Op(%d)", int(op))
}

// ReplyKind tells the caller how to frame the bytes an operation returns.
type ReplyKind int

// Reply framings: nothing, one text line, or a definite-length binary block.
const (
	ReplyNone ReplyKind = iota
	ReplyText
	ReplyBlock
)

// Command is one ready-to-send instrument command plus its reply framing.
type Command struct {
	Text  string
	Reply ReplyKind
}

// SampleEncoding describes how raw block bytes map onto sample codes for one
// preamble format. Width is bytes per sample.
type SampleEncoding struct {
	Width     int  `json:"width"`
	Signed    bool `json:"signed"`
	BigEndian bool `json:"big_endian"`
}

// CommandSet translates abstract operations into the command strings of one
// instrument family. Implementations must be stateless and interchangeable:
// the rest of the pipeline never branches on the concrete family.
type CommandSet interface {
	// Command returns the command for op addressed to ch, or an error
	// wrapping ErrUnsupportedOperation when the family has no such command
	// for that channel kind.
	Command(ch Channel, op Op) (Command, error)

	// SampleEncoding reports the raw sample layout the family uses for a
	// preamble format code.
	SampleEncoding(format PreambleFormat) (SampleEncoding, error)
}
