package guid

import (
	"github.com/runbark/onestore/errs"
	"github.com/runbark/onestore/reader"
)

// ExGuid pairs a Guid with a 32-bit tag. Five on-wire shapes are
// discriminated by the low bits of the leading byte; see ParseExGuid.
type ExGuid struct {
	Guid  Guid
	Value uint32
}

// NilExGuid is the zero ExGuid (nil guid, value 0).
var NilExGuid = ExGuid{}

func (e ExGuid) IsNil() bool {
	return e.Guid.IsNil() && e.Value == 0
}

func (e ExGuid) Equal(o ExGuid) bool {
	return e.Value == o.Value && e.Guid.Equal(o.Guid)
}

// ParseExGuid reads an ExGuid using the five-shape encoding from §3.
func ParseExGuid(r *reader.Reader) (ExGuid, error) {
	first, err := r.GetU8()
	if err != nil {
		return NilExGuid, err
	}
	switch {
	case first == 0x00:
		return NilExGuid, nil
	case first&0x07 == 0x04: // low 3 bits == 100
		value := uint32(first >> 3)
		g, err := Parse(r)
		if err != nil {
			return NilExGuid, err
		}
		return ExGuid{Guid: g, Value: value}, nil
	case first&0x3f == 0x20: // low 6 bits == 100000
		second, err := r.GetU8()
		if err != nil {
			return NilExGuid, err
		}
		value := uint32(first)>>6 | uint32(second)<<2
		g, err := Parse(r)
		if err != nil {
			return NilExGuid, err
		}
		return ExGuid{Guid: g, Value: value}, nil
	case first&0x7f == 0x40: // low 7 bits == 1000000
		rest, err := r.Read(2)
		if err != nil {
			return NilExGuid, err
		}
		value := uint32(first)>>7 | uint32(rest[0])<<1 | uint32(rest[1])<<9
		g, err := Parse(r)
		if err != nil {
			return NilExGuid, err
		}
		return ExGuid{Guid: g, Value: value}, nil
	case first == 0x80:
		value, err := r.GetU32()
		if err != nil {
			return NilExGuid, err
		}
		g, err := Parse(r)
		if err != nil {
			return NilExGuid, err
		}
		return ExGuid{Guid: g, Value: value}, nil
	default:
		return NilExGuid, errs.New(errs.MalformedData, "unrecognized ExGuid discriminator byte 0x%02x", first)
	}
}

// ParseExGuidArray reads a CompactU64-count-prefixed array of ExGuids,
// used for the object-group data entries' referenced-object lists.
func ParseExGuidArray(r *reader.Reader) ([]ExGuid, error) {
	count, err := ParseCompactU64(r)
	if err != nil {
		return nil, err
	}
	out := make([]ExGuid, count)
	for i := range out {
		g, err := ParseExGuid(r)
		if err != nil {
			return nil, err
		}
		out[i] = g
	}
	return out, nil
}

// CellId is an ordered pair of ExGuids addressing a context and an
// object space.
type CellId struct {
	Context ExGuid
	Space   ExGuid
}

func (c CellId) Equal(o CellId) bool {
	return c.Context.Equal(o.Context) && c.Space.Equal(o.Space)
}

// ParseCellId reads a CellId as two consecutive ExGuids.
func ParseCellId(r *reader.Reader) (CellId, error) {
	ctx, err := ParseExGuid(r)
	if err != nil {
		return CellId{}, err
	}
	space, err := ParseExGuid(r)
	if err != nil {
		return CellId{}, err
	}
	return CellId{Context: ctx, Space: space}, nil
}

// ParseCellIdArray reads a CompactU64-count-prefixed array of CellIds.
func ParseCellIdArray(r *reader.Reader) ([]CellId, error) {
	count, err := ParseCompactU64(r)
	if err != nil {
		return nil, err
	}
	out := make([]CellId, count)
	for i := range out {
		c, err := ParseCellId(r)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

// CompactId is a local 32-bit identifier: an 8-bit index n and a 24-bit
// index into a per-revision or per-object-group guid table. It is
// resolved through a MappingTable (defined in package onestore) to a
// global ExGuid or CellId.
type CompactId struct {
	N         uint8
	GuidIndex uint32 // 24-bit
}

// ParseCompactId reads a CompactId packed little-endian into one u32,
// n in the low byte.
func ParseCompactId(r *reader.Reader) (CompactId, error) {
	v, err := r.GetU32()
	if err != nil {
		return CompactId{}, err
	}
	return CompactId{N: uint8(v & 0xff), GuidIndex: v >> 8}, nil
}
