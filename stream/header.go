// Package stream implements the FSSHTTPB stream-object start/end headers
// (§4.3): the 16-bit and 32-bit compound/type/length tagged headers that
// bracket every object, data element, and group in the FSSHTTPB
// packaging and data-element-graph layers.
package stream

import (
	"github.com/runbark/onestore/errs"
	"github.com/runbark/onestore/guid"
	"github.com/runbark/onestore/reader"
)

// ObjectType enumerates the FSSHTTPB stream-object type codes this
// decoder recognizes (§4.3, selected set).
type ObjectType uint32

const (
	ObjectTypeDataElement             ObjectType = 0x01
	ObjectTypeObjectGroupObject       ObjectType = 0x18
	ObjectTypeObjectGroupObjectBlob   ObjectType = 0x05
	ObjectTypeObjectGroupObjectExcl   ObjectType = 0x03
	ObjectTypeObjectGroupObjectData   ObjectType = 0x16
	ObjectTypeObjectGroupObjectBlobRf ObjectType = 0x1C
	ObjectTypeObjectGroupDeclarations ObjectType = 0x1D
	ObjectTypeObjectGroupData         ObjectType = 0x1E
	ObjectTypeStorageIndex            ObjectType = 0x0C
	ObjectTypeStorageIndexManifest    ObjectType = 0x1002 // storage index -> storage manifest mapping
	ObjectTypeStorageIndexCell        ObjectType = 0x1003 // storage index -> cell mapping
	ObjectTypeStorageIndexRevision    ObjectType = 0x0010 // storage index -> revision mapping
	ObjectTypeStorageManifest         ObjectType = 0x11
	ObjectTypeStorageManifestRoot     ObjectType = 0x1004
	ObjectTypeCellManifest            ObjectType = 0x0B
	ObjectTypeRevisionManifest        ObjectType = 0x1A
	ObjectTypeRevisionManifestRoot    ObjectType = 0x0A
	ObjectTypeRevisionManifestGroup   ObjectType = 0x19
	ObjectTypeObjectDataBlob          ObjectType = 0x02
	ObjectTypeDataElementFragment     ObjectType = 0x06
	ObjectTypeDataElementPackage      ObjectType = 0x1005 // package container, placeholder code
	ObjectTypePackaging               ObjectType = 0x7A
	ObjectTypeMetadata1               ObjectType = 0x79
	ObjectTypeMetadata2               ObjectType = 0x78
)

// Header describes a stream-object start header: whether it is compound
// (introduces a sub-stream terminated by a matching end header), its
// declared ObjectType, and, for non-compound objects, the declared byte
// length of the body that follows.
type Header struct {
	Compound bool
	Type     ObjectType
	Length   uint64
	HasEnd8  bool // true if this shape requires an 8-bit end marker
}

// Parse16Start reads a 16-bit stream-object start header: low 2 bits
// 00, bit 2 compound, bits 3-8 type (6 bits), bits 9-15 length (7 bits).
func Parse16Start(r *reader.Reader) (Header, error) {
	v, err := r.GetU16()
	if err != nil {
		return Header{}, err
	}
	if v&0x3 != 0x0 {
		return Header{}, errs.New(errs.MalformedFssHttpBData, "not a 16-bit start header: low bits 0x%x", v&0x3)
	}
	return Header{
		Compound: v&0x4 != 0,
		Type:     ObjectType((v >> 3) & 0x3f),
		Length:   uint64((v >> 9) & 0x7f),
	}, nil
}

// Parse32Start reads a 32-bit stream-object start header: low 2 bits
// 10, bit 2 compound, bits 3-16 type (14 bits), bits 17-31 length (15
// bits); length 0x7FFF means a CompactU64 follows with the real length.
func Parse32Start(r *reader.Reader) (Header, error) {
	v, err := r.GetU32()
	if err != nil {
		return Header{}, err
	}
	if v&0x3 != 0x2 {
		return Header{}, errs.New(errs.MalformedFssHttpBData, "not a 32-bit start header: low bits 0x%x", v&0x3)
	}
	length := uint64((v >> 17) & 0x7fff)
	h := Header{
		Compound: v&0x4 != 0,
		Type:     ObjectType((v >> 3) & 0x3fff),
		Length:   length,
	}
	if length == 0x7fff {
		cu64, err := guid.ParseCompactU64(r)
		if err != nil {
			return Header{}, err
		}
		h.Length = uint64(cu64)
	}
	return h, nil
}

// ParseStart reads either a 16-bit or 32-bit start header, detected from
// the first two bits of the next byte without consuming it on mismatch.
func ParseStart(r *reader.Reader) (Header, error) {
	b, ok := r.Peek()
	if !ok {
		return Header{}, errs.New(errs.UnexpectedEof, "no bytes left for stream-object start header")
	}
	switch b & 0x3 {
	case 0x0:
		return Parse16Start(r)
	case 0x2:
		return Parse32Start(r)
	default:
		return Header{}, errs.New(errs.MalformedFssHttpBData, "byte 0x%02x is not a stream-object start header", b)
	}
}

// EndHeader describes a stream-object end marker: either an 8-bit shape
// (low 2 bits 01, remaining 6 bits type) or a 16-bit shape (low 2 bits
// 11, remaining 14 bits type).
type EndHeader struct {
	Type ObjectType
}

// Parse8End reads an 8-bit end header.
func Parse8End(r *reader.Reader) (EndHeader, error) {
	v, err := r.GetU8()
	if err != nil {
		return EndHeader{}, err
	}
	if v&0x3 != 0x1 {
		return EndHeader{}, errs.New(errs.MalformedFssHttpBData, "not an 8-bit end header: low bits 0x%x", v&0x3)
	}
	return EndHeader{Type: ObjectType(v >> 2)}, nil
}

// Parse16End reads a 16-bit end header.
func Parse16End(r *reader.Reader) (EndHeader, error) {
	v, err := r.GetU16()
	if err != nil {
		return EndHeader{}, err
	}
	if v&0x3 != 0x3 {
		return EndHeader{}, errs.New(errs.MalformedFssHttpBData, "not a 16-bit end header: low bits 0x%x", v&0x3)
	}
	return EndHeader{Type: ObjectType(v >> 2)}, nil
}

// TryParse16Start asserts both width and declared type, failing
// MalformedFssHttpBData if either does not match.
func TryParse16Start(r *reader.Reader, expected ObjectType) (Header, error) {
	h, err := Parse16Start(r)
	if err != nil {
		return Header{}, err
	}
	if h.Type != expected {
		return Header{}, errs.New(errs.MalformedFssHttpBData, "expected 16-bit start header type %d, got %d", expected, h.Type)
	}
	return h, nil
}

// TryParse32Start asserts both width and declared type, failing
// MalformedFssHttpBData if either does not match.
func TryParse32Start(r *reader.Reader, expected ObjectType) (Header, error) {
	h, err := Parse32Start(r)
	if err != nil {
		return Header{}, err
	}
	if h.Type != expected {
		return Header{}, errs.New(errs.MalformedFssHttpBData, "expected 32-bit start header type %d, got %d", expected, h.Type)
	}
	return h, nil
}

// TryParse8End asserts both width and declared type.
func TryParse8End(r *reader.Reader, expected ObjectType) (EndHeader, error) {
	h, err := Parse8End(r)
	if err != nil {
		return EndHeader{}, err
	}
	if h.Type != expected {
		return EndHeader{}, errs.New(errs.MalformedFssHttpBData, "expected 8-bit end header type %d, got %d", expected, h.Type)
	}
	return h, nil
}

// TryParse16End asserts both width and declared type.
func TryParse16End(r *reader.Reader, expected ObjectType) (EndHeader, error) {
	h, err := Parse16End(r)
	if err != nil {
		return EndHeader{}, err
	}
	if h.Type != expected {
		return EndHeader{}, errs.New(errs.MalformedFssHttpBData, "expected 16-bit end header type %d, got %d", expected, h.Type)
	}
	return h, nil
}

// HasEnd8 peeks the next byte (without consuming) and reports whether it
// looks like an 8-bit end header declaring the given type.
func HasEnd8(r *reader.Reader, t ObjectType) bool {
	b, ok := r.Peek()
	if !ok {
		return false
	}
	return b&0x3 == 0x1 && ObjectType(b>>2) == t
}
