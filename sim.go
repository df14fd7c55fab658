package scopecap

import (
	"fmt"
	"math"
	"time"

	"github.com/kestrel-lab/scopecap/tmc"
)

// SimChannel is the scripted state of one simulated channel.
type SimChannel struct {
	Enabled  bool
	Preamble string // reply to the preamble query
	Data     []byte // raw block payload for the waveform query
	Scale    string
	Offset   string
	Coupling string
	Probe    string
	BWLimit  string
}

// SimInstrument is an in-memory instrument that answers DS4000-style queries
// the way a stopped scope would. It exists so the pipeline can be exercised
// without hardware: unit tests, the -sim flag on the CLI, and retry-path
// experiments via DropReplies. Like the real control link it is strictly
// request/reply and keeps no queue: a Read with nothing pending is an error.
type SimInstrument struct {
	Identity string
	Channels map[Channel]*SimChannel
	Trigger  map[string]string

	// DropReplies maps a command to a number of times its reply will be
	// withheld (simulating a link timeout) before answering normally.
	DropReplies map[string]int

	// Queries records every command written, in order.
	Queries []string

	selected   Channel
	pending    []byte
	hasPending bool
	dropNext   bool
}

var _ Link = (*SimInstrument)(nil)

// NewSimDS4000 builds a simulator resembling a four-channel DS4000E with
// channels 1 and 2 enabled: channel 1 carries one cycle of a sine, channel 2
// a triangle, both 1400 points of BYTE data around the scope's usual
// y-reference of 127.
func NewSimDS4000() *SimInstrument {
	const npoints = 1400
	preamble := fmt.Sprintf("0,0,%d,1,1.000000e-06,-7.000000e-04,0,4.000000e-02,0,127", npoints)

	sine := make([]byte, npoints)
	tri := make([]byte, npoints)
	for i := range sine {
		sine[i] = byte(127 + 100*math.Sin(2*math.Pi*float64(i)/float64(npoints)))
		half := npoints / 2
		if i < half {
			tri[i] = byte(27 + 200*i/half)
		} else {
			tri[i] = byte(227 - 200*(i-half)/half)
		}
	}

	return &SimInstrument{
		Identity: "RIGOL TECHNOLOGIES,DS4024,SIM0000000001,00.02.03",
		Channels: map[Channel]*SimChannel{
			Chan1: {Enabled: true, Preamble: preamble, Data: sine,
				Scale: "5.000000e-01", Offset: "0.000000e+00", Coupling: "DC", Probe: "10", BWLimit: "OFF"},
			Chan2: {Enabled: true, Preamble: preamble, Data: tri,
				Scale: "1.000000e+00", Offset: "-5.000000e-01", Coupling: "AC", Probe: "1", BWLimit: "20M"},
			Chan3: {Enabled: false},
			Chan4: {Enabled: false},
		},
		Trigger: map[string]string{
			":TRIG:MODE?":      "EDGE",
			":TRIG:SWE?":       "SINGLE",
			":TRIG:EDGE:SOUR?": "CHAN1",
			":TRIG:EDGE:LEV?":  "1.200000e+00",
			":TRIG:EDGE:SLOP?": "POS",
		},
	}
}

// Write implements Link.
func (si *SimInstrument) Write(cmd string) error {
	si.Queries = append(si.Queries, cmd)
	si.hasPending = false
	si.dropNext = false

	if n := si.DropReplies[cmd]; n > 0 {
		si.DropReplies[cmd] = n - 1
		si.dropNext = true
		return nil
	}

	reply, ok := si.reply(cmd)
	if !ok {
		return nil // write-only command, or one we don't model
	}
	si.pending = reply
	si.hasPending = true
	return nil
}

// Read implements Link.
func (si *SimInstrument) Read(timeout time.Duration) ([]byte, error) {
	if si.dropNext {
		si.dropNext = false
		return nil, fmt.Errorf("%w: no reply within %v", ErrLinkTimeout, timeout)
	}
	if !si.hasPending {
		return nil, fmt.Errorf("%w: read with no reply pending", ErrLink)
	}
	si.hasPending = false
	out := make([]byte, len(si.pending))
	copy(out, si.pending)
	return out, nil
}

// reply resolves one command against the scripted state.
func (si *SimInstrument) reply(cmd string) ([]byte, bool) {
	if cmd == "*IDN?" {
		return []byte(si.Identity), true
	}
	if reply, ok := si.Trigger[cmd]; ok {
		return []byte(reply), true
	}

	for ch := Chan1; ch <= ChanMath; ch++ {
		if cmd == fmt.Sprintf(":WAV:SOUR %s", ch) {
			si.selected = ch
			return nil, false
		}
	}

	switch cmd {
	case ":WAV:PRE?":
		if sc := si.Channels[si.selected]; sc != nil {
			return []byte(sc.Preamble), true
		}
		return nil, false
	case ":WAV:DATA?":
		if sc := si.Channels[si.selected]; sc != nil {
			return tmc.Encode(sc.Data), true
		}
		return nil, false
	}

	for ch, sc := range si.Channels {
		if ch == ChanMath {
			continue
		}
		n := int(ch)
		switch cmd {
		case fmt.Sprintf(":CHAN%d:DISP?", n):
			if sc.Enabled {
				return []byte("1"), true
			}
			return []byte("0"), true
		case fmt.Sprintf(":CHAN%d:SCAL?", n):
			return []byte(sc.Scale), true
		case fmt.Sprintf(":CHAN%d:OFFS?", n):
			return []byte(sc.Offset), true
		case fmt.Sprintf(":CHAN%d:COUP?", n):
			return []byte(sc.Coupling), true
		case fmt.Sprintf(":CHAN%d:PROB?", n):
			return []byte(sc.Probe), true
		case fmt.Sprintf(":CHAN%d:BWL?", n):
			return []byte(sc.BWLimit), true
		}
	}

	if cmd == ":CALC:MODE?" {
		if sc := si.Channels[ChanMath]; sc != nil && sc.Enabled {
			return []byte("SUB"), true
		}
		return []byte("OFF"), true
	}
	return nil, false
}
