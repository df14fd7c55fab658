package scopecap

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	cc := &ChannelCapture{
		Channel:  Chan2,
		Preamble: Preamble{Points: 4, XIncrement: 1e-3},
		Waveform: Waveform{
			Times: []float64{0, 1e-3, 2e-3, 3e-3},
			Volts: []float64{-1, 0, 0, 1},
		},
	}
	s := cc.Summarize()
	assert.Equal(t, "CHAN2", s.Channel)
	assert.Equal(t, 4, s.Points)
	assert.Equal(t, -1.0, s.Min)
	assert.Equal(t, 1.0, s.Max)
	assert.Equal(t, 2.0, s.PeakToPeak)
	assert.InDelta(t, 0.0, s.Mean, 1e-12)
	assert.InDelta(t, 4e-3, s.Duration, 1e-15)
	assert.InDelta(t, 1000.0, s.SampleRate, 1e-9)
}

func TestSummarizeEmpty(t *testing.T) {
	cc := &ChannelCapture{Channel: Chan1}
	s := cc.Summarize()
	assert.Equal(t, 0, s.Points)
	assert.Equal(t, 0.0, s.PeakToPeak)
}

func TestWriteNPY(t *testing.T) {
	wf := Waveform{Times: []float64{0, 1, 2}, Volts: []float64{0.5, -0.5, 0.25}}
	var buf bytes.Buffer
	if err := wf.WriteNPY(&buf); err != nil {
		t.Fatal(err)
	}
	// NumPy files start with \x93NUMPY.
	head := buf.Bytes()
	if len(head) < 6 || head[0] != 0x93 || string(head[1:6]) != "NUMPY" {
		t.Errorf("output does not start with the NumPy magic: % x", head[:min(len(head), 6)])
	}

	var empty Waveform
	if err := empty.WriteNPY(&buf); err == nil {
		t.Errorf("WriteNPY of an empty waveform should error, did not")
	}
}
