package scopecap

import (
	"errors"
	"testing"
)

func TestDS4000Commands(t *testing.T) {
	cs := DS4000{}
	var cmdtests = []struct {
		ch    Channel
		op    Op
		text  string
		reply ReplyKind
	}{
		{Chan1, OpIdentify, "*IDN?", ReplyText},
		{Chan3, OpSelectSource, ":WAV:SOUR CHAN3", ReplyNone},
		{ChanMath, OpSelectSource, ":WAV:SOUR MATH", ReplyNone},
		{Chan1, OpPreamble, ":WAV:PRE?", ReplyText},
		{Chan1, OpWaveformData, ":WAV:DATA?", ReplyBlock},
		{Chan2, OpChannelScale, ":CHAN2:SCAL?", ReplyText},
		{Chan2, OpChannelOffset, ":CHAN2:OFFS?", ReplyText},
		{Chan4, OpChannelCoupling, ":CHAN4:COUP?", ReplyText},
		{Chan1, OpChannelProbe, ":CHAN1:PROB?", ReplyText},
		{Chan1, OpChannelBandwidthLimit, ":CHAN1:BWL?", ReplyText},
		{Chan1, OpChannelEnabled, ":CHAN1:DISP?", ReplyText},
		{ChanMath, OpChannelEnabled, ":CALC:MODE?", ReplyText},
		{Chan1, OpTriggerMode, ":TRIG:MODE?", ReplyText},
		{Chan1, OpTriggerEdgeLevel, ":TRIG:EDGE:LEV?", ReplyText},
	}
	for _, ct := range cmdtests {
		cmd, err := cs.Command(ct.ch, ct.op)
		if err != nil {
			t.Errorf("Command(%s, %s) error: %v", ct.ch, ct.op, err)
			continue
		}
		if cmd.Text != ct.text {
			t.Errorf("Command(%s, %s).Text = %q, want %q", ct.ch, ct.op, cmd.Text, ct.text)
		}
		if cmd.Reply != ct.reply {
			t.Errorf("Command(%s, %s).Reply = %d, want %d", ct.ch, ct.op, cmd.Reply, ct.reply)
		}
	}
}

func TestDS4000UnsupportedOps(t *testing.T) {
	cs := DS4000{}
	var gaptests = []struct {
		ch Channel
		op Op
	}{
		{ChanMath, OpChannelProbe},
		{ChanMath, OpChannelCoupling},
		{ChanMath, OpChannelBandwidthLimit},
		{ChanMath, OpChannelScale},
		{ChanMath, OpChannelOffset},
		{Channel(9), OpChannelScale},
	}
	for _, gt := range gaptests {
		if _, err := cs.Command(gt.ch, gt.op); !errors.Is(err, ErrUnsupportedOperation) {
			t.Errorf("Command(%s, %s) error = %v, want ErrUnsupportedOperation", gt.ch, gt.op, err)
		}
	}
}

func TestDS4000SampleEncoding(t *testing.T) {
	cs := DS4000{}
	enc, err := cs.SampleEncoding(FormatByte)
	if err != nil {
		t.Fatal(err)
	}
	if enc.Width != 1 || enc.Signed {
		t.Errorf("BYTE encoding = %+v, want unsigned 1 byte", enc)
	}
	enc, err = cs.SampleEncoding(FormatWord)
	if err != nil {
		t.Fatal(err)
	}
	if enc.Width != 2 || enc.Signed || enc.BigEndian {
		t.Errorf("WORD encoding = %+v, want unsigned little-endian 2 bytes", enc)
	}
	if _, err := cs.SampleEncoding(FormatASCII); !errors.Is(err, ErrUnsupportedOperation) {
		t.Errorf("SampleEncoding(FormatASCII) error = %v, want ErrUnsupportedOperation", err)
	}
}

func TestParseChannel(t *testing.T) {
	for _, ch := range []Channel{Chan1, Chan2, Chan3, Chan4, ChanMath} {
		got, err := ParseChannel(ch.String())
		if err != nil {
			t.Errorf("ParseChannel(%q) error: %v", ch.String(), err)
		}
		if got != ch {
			t.Errorf("ParseChannel(%q) = %v, want %v", ch.String(), got, ch)
		}
	}
	if _, err := ParseChannel("CHAN7"); err == nil {
		t.Errorf("ParseChannel(CHAN7) should error, did not")
	}
}
