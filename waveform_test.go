package scopecap

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kestrel-lab/scopecap/tmc"
)

func TestDecodeWaveformByte(t *testing.T) {
	p := Preamble{
		Format:     FormatByte,
		Points:     10,
		XIncrement: 1e-6,
		YIncrement: 0.01,
		YReference: 128,
	}
	payload := make([]byte, 10)
	for i := range payload {
		payload[i] = 128
	}
	payload[5] = 138

	block := tmc.Block{DeclaredLength: len(payload), Payload: payload}
	wf, err := DecodeWaveform(p, block, SampleEncoding{Width: 1})
	if err != nil {
		t.Fatal(err)
	}
	assert.Len(t, wf.Volts, 10)
	assert.Len(t, wf.Times, 10)
	assert.InDelta(t, 0.10, wf.Volts[5], 1e-12, "sample code 138 with yref 128")
	assert.InDelta(t, 5e-6, wf.Times[5], 1e-18)
	assert.InDelta(t, 0.0, wf.Volts[0], 1e-12)
	assert.InDelta(t, 0.0, wf.Times[0], 1e-18)
}

func TestDecodeWaveformOffsets(t *testing.T) {
	p := Preamble{
		Format:     FormatByte,
		Points:     3,
		XIncrement: 2e-3,
		XOrigin:    -1e-3,
		XReference: 1,
		YIncrement: 0.5,
		YOrigin:    -2,
		YReference: 100,
	}
	block := tmc.Block{DeclaredLength: 3, Payload: []byte{98, 100, 110}}
	wf, err := DecodeWaveform(p, block, SampleEncoding{Width: 1})
	if err != nil {
		t.Fatal(err)
	}
	// volts = (code - 100 - (-2)) * 0.5
	assert.InDelta(t, 0.0, wf.Volts[0], 1e-12)
	assert.InDelta(t, 1.0, wf.Volts[1], 1e-12)
	assert.InDelta(t, 6.0, wf.Volts[2], 1e-12)
	// time = (i - 1) * 2e-3 - 1e-3
	assert.InDelta(t, -3e-3, wf.Times[0], 1e-15)
	assert.InDelta(t, -1e-3, wf.Times[1], 1e-15)
	assert.InDelta(t, 1e-3, wf.Times[2], 1e-15)
}

func TestDecodeWaveformWord(t *testing.T) {
	p := Preamble{
		Format:     FormatWord,
		Points:     2,
		XIncrement: 1e-6,
		YIncrement: 1e-3,
		YReference: 512,
	}
	// little-endian unsigned words: 512, 612
	block := tmc.Block{DeclaredLength: 4, Payload: []byte{0x00, 0x02, 0x64, 0x02}}
	wf, err := DecodeWaveform(p, block, SampleEncoding{Width: 2})
	if err != nil {
		t.Fatal(err)
	}
	assert.InDelta(t, 0.0, wf.Volts[0], 1e-12)
	assert.InDelta(t, 0.1, wf.Volts[1], 1e-12)
}

func TestDecodeWaveformSigned(t *testing.T) {
	p := Preamble{Format: FormatByte, Points: 2, YIncrement: 1}
	block := tmc.Block{DeclaredLength: 2, Payload: []byte{0xff, 0x01}}
	wf, err := DecodeWaveform(p, block, SampleEncoding{Width: 1, Signed: true})
	if err != nil {
		t.Fatal(err)
	}
	assert.InDelta(t, -1.0, wf.Volts[0], 1e-12)
	assert.InDelta(t, 1.0, wf.Volts[1], 1e-12)
}

func TestDecodeWaveformPointCountMismatch(t *testing.T) {
	p := Preamble{Format: FormatByte, Points: 10, YIncrement: 0.01}
	var mismatches = []struct {
		name    string
		payload []byte
		enc     SampleEncoding
	}{
		{"too few samples", make([]byte, 8), SampleEncoding{Width: 1}},
		{"too many samples", make([]byte, 12), SampleEncoding{Width: 1}},
		{"odd bytes for words", make([]byte, 15), SampleEncoding{Width: 2}},
	}
	for _, mt := range mismatches {
		block := tmc.Block{DeclaredLength: len(mt.payload), Payload: mt.payload}
		_, err := DecodeWaveform(p, block, mt.enc)
		if !errors.Is(err, ErrPointCountMismatch) {
			t.Errorf("DecodeWaveform(%s) error = %v, want ErrPointCountMismatch", mt.name, err)
		}
	}
}
