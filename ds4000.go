package scopecap

import "fmt"

// DS4000 is the CommandSet for the Rigol DS4000/DS4000E series. Command
// spellings follow the DS4000E programming guide; waveform queries act on
// the source previously selected with OpSelectSource, which is why that
// operation exists at all.
type DS4000 struct{}

var _ CommandSet = DS4000{}

// Command implements CommandSet.
func (DS4000) Command(ch Channel, op Op) (Command, error) {
	switch op {
	case OpIdentify:
		return Command{"*IDN?", ReplyText}, nil
	case OpSelectSource:
		return Command{fmt.Sprintf(":WAV:SOUR %s", ch), ReplyNone}, nil
	case OpPreamble:
		return Command{":WAV:PRE?", ReplyText}, nil
	case OpWaveformData:
		return Command{":WAV:DATA?", ReplyBlock}, nil
	case OpTriggerMode:
		return Command{":TRIG:MODE?", ReplyText}, nil
	case OpTriggerSweep:
		return Command{":TRIG:SWE?", ReplyText}, nil
	case OpTriggerEdgeSource:
		return Command{":TRIG:EDGE:SOUR?", ReplyText}, nil
	case OpTriggerEdgeLevel:
		return Command{":TRIG:EDGE:LEV?", ReplyText}, nil
	case OpTriggerEdgeSlope:
		return Command{":TRIG:EDGE:SLOP?", ReplyText}, nil
	}

	if ch == ChanMath {
		// The MATH trace lives under the CALC subsystem. It has an on/off
		// state but no probe, coupling, or vertical knobs of its own.
		if op == OpChannelEnabled {
			return Command{":CALC:MODE?", ReplyText}, nil
		}
		return Command{}, fmt.Errorf("%w: %s on MATH", ErrUnsupportedOperation, op)
	}

	if ch < Chan1 || ch > Chan4 {
		return Command{}, fmt.Errorf("%w: %s on %s", ErrUnsupportedOperation, op, ch)
	}

	switch op {
	case OpChannelScale:
		return Command{fmt.Sprintf(":CHAN%d:SCAL?", int(ch)), ReplyText}, nil
	case OpChannelOffset:
		return Command{fmt.Sprintf(":CHAN%d:OFFS?", int(ch)), ReplyText}, nil
	case OpChannelCoupling:
		return Command{fmt.Sprintf(":CHAN%d:COUP?", int(ch)), ReplyText}, nil
	case OpChannelProbe:
		return Command{fmt.Sprintf(":CHAN%d:PROB?", int(ch)), ReplyText}, nil
	case OpChannelBandwidthLimit:
		return Command{fmt.Sprintf(":CHAN%d:BWL?", int(ch)), ReplyText}, nil
	case OpChannelEnabled:
		return Command{fmt.Sprintf(":CHAN%d:DISP?", int(ch)), ReplyText}, nil
	}
	return Command{}, fmt.Errorf("%w: %s", ErrUnsupportedOperation, op)
}

// SampleEncoding implements CommandSet. BYTE data is unsigned 8-bit; WORD
// data is unsigned little-endian 16-bit. ASCII waveform data never passes
// through the block decoder, so it has no raw encoding here.
func (DS4000) SampleEncoding(format PreambleFormat) (SampleEncoding, error) {
	switch format {
	case FormatByte:
		return SampleEncoding{Width: 1}, nil
	case FormatWord:
		return SampleEncoding{Width: 2}, nil
	}
	return SampleEncoding{}, fmt.Errorf("%w: no raw sample encoding for preamble format %d", ErrUnsupportedOperation, format)
}
