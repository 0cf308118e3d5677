package onenote

import (
	"testing"

	"github.com/runbark/onestore/guid"
)

func TestXorExGuidSelfInverse(t *testing.T) {
	a := guid.ExGuid{Guid: guid.MustParse("12345678-1234-5678-1234-567812345678"), Value: 0xDEADBEEF}
	seed := pageMetadataSeed

	once := xorExGuid(a, seed)
	twice := xorExGuid(once, seed)

	if !twice.Equal(a) {
		t.Fatalf("xorExGuid(xorExGuid(a, seed), seed) = %+v, want %+v", twice, a)
	}
	if once.Equal(a) {
		t.Fatalf("xorExGuid(a, seed) == a, seed had no effect")
	}
}
