package tmc

import (
	"bytes"
	"errors"
	"testing"
)

func TestDecode(t *testing.T) {
	payload := []byte{0, 1, 2, 127, 128, 255, 10, 35}
	var decodetests = []struct {
		name string
		raw  []byte
	}{
		{"one-digit length", append([]byte("#18"), payload...)},
		{"three-digit length", append([]byte("#3008"), payload...)},
		{"nine-digit length", append([]byte("#9000000008"), payload...)},
		{"trailing newline", append(append([]byte("#18"), payload...), '\n')},
	}
	for _, dt := range decodetests {
		b, err := Decode(dt.raw)
		if err != nil {
			t.Errorf("Decode(%s) error: %v", dt.name, err)
			continue
		}
		if b.DeclaredLength != len(payload) {
			t.Errorf("Decode(%s).DeclaredLength = %d, want %d", dt.name, b.DeclaredLength, len(payload))
		}
		if !bytes.Equal(b.Payload, payload) {
			t.Errorf("Decode(%s).Payload = %v, want %v", dt.name, b.Payload, payload)
		}
	}
}

func TestDecodeTwiceEqual(t *testing.T) {
	raw := append([]byte("#3016"), []byte("0123456789abcdef")...)
	b1, err1 := Decode(raw)
	b2, err2 := Decode(raw)
	if err1 != nil || err2 != nil {
		t.Fatalf("Decode errors: %v, %v", err1, err2)
	}
	if b1.DeclaredLength != b2.DeclaredLength || !bytes.Equal(b1.Payload, b2.Payload) {
		t.Errorf("decoding twice differs: %v vs %v", b1, b2)
	}
}

func TestDecodePayloadIsACopy(t *testing.T) {
	raw := append([]byte("#14"), 1, 2, 3, 4)
	b, err := Decode(raw)
	if err != nil {
		t.Fatal(err)
	}
	raw[2] = 99
	if b.Payload[0] != 1 {
		t.Errorf("Block payload aliases the input buffer")
	}
}

func TestDecodeMalformed(t *testing.T) {
	var badtests = []struct {
		name string
		raw  []byte
	}{
		{"empty", []byte{}},
		{"no magic", []byte("918abcdefgh")},
		{"width zero", []byte("#08")},
		{"width not a digit", []byte("#x8")},
		{"header truncated", []byte("#300")},
		{"length field not digits", append([]byte("#3a08"), make([]byte, 8)...)},
		{"short payload", append([]byte("#210"), []byte("8bytes..")...)},
		{"long payload", append([]byte("#14"), []byte("123456")...)},
	}
	for _, bt := range badtests {
		if _, err := Decode(bt.raw); !errors.Is(err, ErrMalformedBlock) {
			t.Errorf("Decode(%s) error = %v, want ErrMalformedBlock", bt.name, err)
		}
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	payloads := [][]byte{
		{},
		{0},
		bytes.Repeat([]byte{0xa5}, 1400),
	}
	for _, p := range payloads {
		b, err := Decode(Encode(p))
		if err != nil {
			t.Errorf("Decode(Encode(%d bytes)) error: %v", len(p), err)
			continue
		}
		if !bytes.Equal(b.Payload, p) {
			t.Errorf("round trip of %d bytes altered the payload", len(p))
		}
	}
}
