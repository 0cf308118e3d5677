package guid

import (
	"testing"

	"github.com/runbark/onestore/reader"
)

func TestGuidRoundTrip(t *testing.T) {
	g := MustParse("12345678-1234-5678-1234-567812345678")
	wire := g.Bytes()
	if len(wire) != 16 {
		t.Fatalf("Bytes() length = %d, want 16", len(wire))
	}
	got, err := Parse(reader.New(wire))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !got.Equal(g) {
		t.Fatalf("Parse(Bytes()) = %v, want %v", got, g)
	}
}

func TestGuidNil(t *testing.T) {
	if !Nil.IsNil() {
		t.Fatalf("Nil.IsNil() = false, want true")
	}
	g := MustParse("12345678-1234-5678-1234-567812345678")
	if g.IsNil() {
		t.Fatalf("non-nil guid reported IsNil() = true")
	}
}

func TestParseCompactU64(t *testing.T) {
	cases := []struct {
		name string
		wire []byte
		want CompactU64
	}{
		{"zero", []byte{0x00}, 0},
		// 7-bit shape: low bit set, payload in the remaining 7 bits.
		// value 5 -> (5 << 1) | 1 = 0x0B
		{"7-bit", []byte{0x0B}, 5},
		// 14-bit shape: bit 1 set, payload spans byte0>>2 | byte1<<6.
		// value 300 -> (300 << 2) | 0x02 = 0x4B2
		{"14-bit", []byte{0xB2, 0x04}, 300},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := ParseCompactU64(reader.New(c.wire))
			if err != nil {
				t.Fatalf("ParseCompactU64(%v): %v", c.wire, err)
			}
			if got != c.want {
				t.Fatalf("ParseCompactU64(%v) = %d, want %d", c.wire, got, c.want)
			}
		})
	}
}

func TestParseCompactU64SixtyFourBit(t *testing.T) {
	// 64-bit shape: discriminator byte 0x80, followed by 8 little-endian
	// value bytes (not shifted, unlike the narrower shapes).
	wire := []byte{0x80, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
	got, err := ParseCompactU64(reader.New(wire))
	if err != nil {
		t.Fatalf("ParseCompactU64: %v", err)
	}
	want := CompactU64(0x0807060504030201)
	if got != want {
		t.Fatalf("ParseCompactU64(64-bit) = %#x, want %#x", uint64(got), uint64(want))
	}
}
