package guid

import (
	"testing"

	"github.com/runbark/onestore/reader"
)

func TestParseExGuidNil(t *testing.T) {
	got, err := ParseExGuid(reader.New([]byte{0x00}))
	if err != nil {
		t.Fatalf("ParseExGuid: %v", err)
	}
	if !got.IsNil() {
		t.Fatalf("ParseExGuid(0x00) = %v, want nil ExGuid", got)
	}
}

func TestParseExGuidThreeBitShape(t *testing.T) {
	// low 3 bits == 100 (0x04): value packed into the remaining 5 bits.
	g := MustParse("12345678-1234-5678-1234-567812345678")
	wire := append([]byte{0x04 | (5 << 3)}, g.Bytes()...)
	got, err := ParseExGuid(reader.New(wire))
	if err != nil {
		t.Fatalf("ParseExGuid: %v", err)
	}
	if got.Value != 5 || !got.Guid.Equal(g) {
		t.Fatalf("ParseExGuid = %+v, want value=5 guid=%v", got, g)
	}
}

func TestParseExGuidThirtyTwoBitShape(t *testing.T) {
	g := MustParse("12345678-1234-5678-1234-567812345678")
	wire := []byte{0x80, 0x78, 0x56, 0x34, 0x12}
	wire = append(wire, g.Bytes()...)
	got, err := ParseExGuid(reader.New(wire))
	if err != nil {
		t.Fatalf("ParseExGuid: %v", err)
	}
	if got.Value != 0x12345678 || !got.Guid.Equal(g) {
		t.Fatalf("ParseExGuid = %+v, want value=0x12345678 guid=%v", got, g)
	}
}

func TestParseCompactId(t *testing.T) {
	// little-endian u32: n in the low byte, 24-bit guid index above it.
	wire := []byte{0x03, 0x02, 0x01, 0x00}
	got, err := ParseCompactId(reader.New(wire))
	if err != nil {
		t.Fatalf("ParseCompactId: %v", err)
	}
	if got.N != 0x03 || got.GuidIndex != 0x000102 {
		t.Fatalf("ParseCompactId = %+v, want {N:3 GuidIndex:0x102}", got)
	}
}

func TestCellIdEqual(t *testing.T) {
	g := MustParse("12345678-1234-5678-1234-567812345678")
	a := CellId{Context: ExGuid{Guid: g, Value: 1}, Space: ExGuid{Guid: g, Value: 2}}
	b := CellId{Context: ExGuid{Guid: g, Value: 1}, Space: ExGuid{Guid: g, Value: 2}}
	if !a.Equal(b) {
		t.Fatalf("identical CellIds reported unequal")
	}
	c := CellId{Context: ExGuid{Guid: g, Value: 9}, Space: ExGuid{Guid: g, Value: 2}}
	if a.Equal(c) {
		t.Fatalf("differing CellIds reported equal")
	}
}
