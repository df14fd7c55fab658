// Package tmc parses the definite-length block framing used by USB-TMC style
// instruments for binary replies: a '#', one ASCII digit giving the width of
// the length field, that many ASCII digits giving the payload length, then
// exactly that many payload bytes, optionally followed by a newline
// terminator. The package knows nothing about what the payload means.
package tmc

import (
	"errors"
	"fmt"
)

// ErrMalformedBlock indicates a reply that violates the definite-length
// block framing.
var ErrMalformedBlock = errors.New("malformed block")

// Block is one decoded definite-length block. Payload is a copy of the exact
// payload bytes; DeclaredLength is the length the header claimed, which by
// construction equals len(Payload).
type Block struct {
	DeclaredLength int
	Payload        []byte
}

// Decode parses raw as a definite-length block and returns its payload. One
// trailing newline after the payload is tolerated; any other length mismatch
// is an error. Decoding the same bytes twice yields equal Blocks.
func Decode(raw []byte) (Block, error) {
	if len(raw) < 2 || raw[0] != '#' {
		return Block{}, fmt.Errorf("%w: reply does not start with '#' header", ErrMalformedBlock)
	}
	ndigits := int(raw[1] - '0')
	if ndigits < 1 || ndigits > 9 {
		return Block{}, fmt.Errorf("%w: length-field width byte %q is not a digit 1-9", ErrMalformedBlock, raw[1])
	}
	if len(raw) < 2+ndigits {
		return Block{}, fmt.Errorf("%w: header ends before its %d-digit length field", ErrMalformedBlock, ndigits)
	}
	declared := 0
	for _, c := range raw[2 : 2+ndigits] {
		if c < '0' || c > '9' {
			return Block{}, fmt.Errorf("%w: length field byte %q is not a digit", ErrMalformedBlock, c)
		}
		declared = declared*10 + int(c-'0')
	}

	payload := raw[2+ndigits:]
	switch {
	case len(payload) == declared:
	case len(payload) == declared+1 && payload[declared] == '\n':
		payload = payload[:declared]
	default:
		return Block{}, fmt.Errorf("%w: header declares %d payload bytes, %d present",
			ErrMalformedBlock, declared, len(payload))
	}

	b := Block{DeclaredLength: declared, Payload: make([]byte, declared)}
	copy(b.Payload, payload)
	return b, nil
}

// Encode frames payload as a definite-length block with a 9-digit length
// field and trailing newline, the way the instrument itself sends waveform
// data. It is the inverse of Decode and exists mostly for simulators and
// round-trip tests.
func Encode(payload []byte) []byte {
	out := make([]byte, 0, len(payload)+12)
	out = append(out, fmt.Sprintf("#9%09d", len(payload))...)
	out = append(out, payload...)
	return append(out, '\n')
}
