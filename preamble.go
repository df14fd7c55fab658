package scopecap

import (
	"fmt"
	"strconv"
	"strings"
)

// PreambleFormat is the sample format code the preamble's first field declares.
type PreambleFormat int

// Formats the DS4000 reports. Only Byte and Word flow through the block
// decoder; ASCII replies are comma lists and are not captured here.
const (
	FormatByte  PreambleFormat = 0
	FormatWord  PreambleFormat = 1
	FormatASCII PreambleFormat = 2
)

// Preamble is the instrument-reported description of one channel's waveform
// at capture time. It is read fresh per channel per capture and never
// modified afterward. Raw keeps the exact reply text the fields were parsed
// from, so the parse can be re-verified without re-querying the instrument.
type Preamble struct {
	Raw        string
	Format     PreambleFormat
	Mode       int
	Points     int
	Averages   int
	XIncrement float64
	XOrigin    float64
	XReference float64
	YIncrement float64
	YOrigin    float64
	YReference float64
}

// ParsePreamble parses the 10-field comma-separated reply to a preamble query.
func ParsePreamble(raw string) (Preamble, error) {
	fields := strings.Split(strings.TrimSpace(raw), ",")
	if len(fields) != 10 {
		return Preamble{}, fmt.Errorf("preamble has %d fields, want 10: %q", len(fields), raw)
	}
	vals := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return Preamble{}, fmt.Errorf("preamble field %d: %v", i, err)
		}
		vals[i] = v
	}
	return Preamble{
		Raw:        raw,
		Format:     PreambleFormat(int(vals[0])),
		Mode:       int(vals[1]),
		Points:     int(vals[2]),
		Averages:   int(vals[3]),
		XIncrement: vals[4],
		XOrigin:    vals[5],
		XReference: vals[6],
		YIncrement: vals[7],
		YOrigin:    vals[8],
		YReference: vals[9],
	}, nil
}
