package scopecap

import (
	"fmt"

	"github.com/kestrel-lab/scopecap/tmc"
)

// Waveform is a decoded sample sequence in physical units: Times in seconds
// relative to the trigger reference, Volts in calibrated channel volts. The
// two slices are always the same length.
type Waveform struct {
	Times []float64
	Volts []float64
}

// DecodeWaveform converts a raw block payload into physical units using the
// preamble's scaling fields and the family's sample encoding. It performs no
// instrument I/O and is a pure function of its inputs.
//
// For sample index i: volts = (code - YReference - YOrigin) * YIncrement and
// time = (i - XReference) * XIncrement + XOrigin. A sample count that does
// not match the preamble's declared point count is an error, never a
// truncation or padding.
func DecodeWaveform(p Preamble, block tmc.Block, enc SampleEncoding) (Waveform, error) {
	if enc.Width < 1 || enc.Width > 8 {
		return Waveform{}, fmt.Errorf("sample width %d bytes is not decodable", enc.Width)
	}
	if len(block.Payload)%enc.Width != 0 {
		return Waveform{}, fmt.Errorf("%w: %d payload bytes do not divide into %d-byte samples",
			ErrPointCountMismatch, len(block.Payload), enc.Width)
	}
	n := len(block.Payload) / enc.Width
	if n != p.Points {
		return Waveform{}, fmt.Errorf("%w: decoded %d samples, preamble declares %d",
			ErrPointCountMismatch, n, p.Points)
	}

	wf := Waveform{Times: make([]float64, n), Volts: make([]float64, n)}
	for i := 0; i < n; i++ {
		code := sampleCode(block.Payload[i*enc.Width:(i+1)*enc.Width], enc)
		wf.Volts[i] = (code - p.YReference - p.YOrigin) * p.YIncrement
		wf.Times[i] = (float64(i)-p.XReference)*p.XIncrement + p.XOrigin
	}
	return wf, nil
}

// sampleCode converts one raw sample's bytes to its integer code.
func sampleCode(b []byte, enc SampleEncoding) float64 {
	var u uint64
	if enc.BigEndian {
		for _, c := range b {
			u = u<<8 | uint64(c)
		}
	} else {
		for i := len(b) - 1; i >= 0; i-- {
			u = u<<8 | uint64(b[i])
		}
	}
	if enc.Signed {
		shift := 64 - 8*len(b)
		return float64(int64(u<<shift) >> shift)
	}
	return float64(u)
}
