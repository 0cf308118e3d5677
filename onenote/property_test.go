package onenote

import (
	"math"
	"testing"

	"github.com/runbark/onestore/onestore"
)

func propertySetOf(props ...onestore.Property) onestore.PropertySet {
	return onestore.PropertySet{Properties: props}
}

func scalarProperty(id uint32, scalarType onestore.PropertyType, v uint64) onestore.Property {
	return onestore.Property{
		ID:    onestore.PropertyId{ID: id, Type: scalarType},
		Value: onestore.PropertyValue{Scalar: v},
	}
}

func TestPropU32(t *testing.T) {
	ps := propertySetOf(scalarProperty(propPageHeight, onestore.PropertyTypeFourBytesOfData, 42))
	got, ok := propU32(ps, propPageHeight)
	if !ok || got != 42 {
		t.Fatalf("propU32 = (%d, %v), want (42, true)", got, ok)
	}
	if _, ok := propU32(ps, propPageWidth); ok {
		t.Fatalf("propU32 found a property that was never set")
	}
}

func TestPropF32ReadsFromScalar(t *testing.T) {
	bits := math.Float32bits(3.5)
	ps := propertySetOf(scalarProperty(propPageHeight, onestore.PropertyTypeFourBytesOfData, uint64(bits)))
	got, ok := propF32(ps, propPageHeight)
	if !ok || got != 3.5 {
		t.Fatalf("propF32 = (%v, %v), want (3.5, true)", got, ok)
	}
}

func TestPropStringDecodesUTF16LE(t *testing.T) {
	// "Hi" in UTF-16LE.
	wire := []byte{'H', 0x00, 'i', 0x00}
	ps := propertySetOf(onestore.Property{
		ID:    onestore.PropertyId{ID: propImageFilename, Type: onestore.PropertyTypeFourBytesOfLengthFollowedByData},
		Value: onestore.PropertyValue{Bytes: wire},
	})
	got, ok := propString(ps, propImageFilename)
	if !ok || got != "Hi" {
		t.Fatalf("propString = (%q, %v), want (\"Hi\", true)", got, ok)
	}
}

func TestPropBoolReadsBoolValue(t *testing.T) {
	ps := propertySetOf(onestore.Property{
		ID: onestore.PropertyId{ID: propEditRootRTL, Type: onestore.PropertyTypeBool, BoolValue: true},
	})
	got, ok := propBool(ps, propEditRootRTL)
	if !ok || !got {
		t.Fatalf("propBool = (%v, %v), want (true, true)", got, ok)
	}
}
