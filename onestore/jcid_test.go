package onestore

import (
	"testing"

	"github.com/runbark/onestore/reader"
)

func TestParseJCID(t *testing.T) {
	got, err := ParseJCID(reader.New([]byte{0x0B, 0x00, 0x06, 0x00}))
	if err != nil {
		t.Fatalf("ParseJCID: %v", err)
	}
	if got != JCID(0x0006000B) {
		t.Fatalf("ParseJCID = %#x, want %#x", uint32(got), uint32(0x0006000B))
	}
}

func TestJCIDWithPropertySet(t *testing.T) {
	base := JCID(0x0006000B)
	got := base.WithPropertySet()
	if got == base {
		t.Fatalf("WithPropertySet did not change the JCID")
	}
	if got&jcidPropertySetFlag == 0 {
		t.Fatalf("WithPropertySet did not set the property-set bit")
	}
	// applying it twice must be idempotent.
	if got.WithPropertySet() != got {
		t.Fatalf("WithPropertySet is not idempotent")
	}
}
