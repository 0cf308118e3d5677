// Package guid implements the primitive codecs shared by every layer of
// the decoder stack: the mixed-endian Guid, the variable-width CompactU64,
// the five-shape ExGuid, and the CompactId/CellId/SerialNumber types built
// on top of them.
//
// The teacher (github.com/diskfs/go-diskfs) reads a plain little-endian
// UUID out of a fixed superblock offset with satori/go.uuid
// (uuid.FromBytes(bytesToUUIDBytes(b[0x68:0x78]))) because ext4 volume
// UUIDs are windows-GUID-ordered but otherwise fixed-width and
// fixed-position. OneNote's Guid has the same windows mixed-endian layout
// but none of its container formats are fixed-width, so this package
// keeps the teacher's "reorder bytes around a standard UUID" trick
// (bytesToUUIDBytes) but drops the fixed-offset slicing in favor of
// reading through a reader.Reader, and adds the variable-width sibling
// types the teacher's fixed ext4 records never needed.
package guid

import (
	"github.com/google/uuid"

	"github.com/runbark/onestore/errs"
	"github.com/runbark/onestore/reader"
)

// Guid is a 128-bit identifier using Windows' mixed-endian GUID wire
// format: first 4 bytes little-endian, next 2 little-endian, next 2
// little-endian, last 8 big-endian. Storage is a standard uuid.UUID
// (big-endian / RFC 4122 field order) so String()/Parse() behave exactly
// like every other Go UUID user expects; the mixed-endian shuffle happens
// only at the wire boundary in Parse/Bytes below.
type Guid struct {
	id uuid.UUID
}

// Nil is the all-zero Guid.
var Nil = Guid{}

// FromUUID wraps an already-parsed uuid.UUID (RFC 4122 byte order) as a
// Guid.
func FromUUID(u uuid.UUID) Guid {
	return Guid{id: u}
}

// MustParse parses a standard "xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx"
// string (RFC 4122 order) into a Guid, panicking on failure. Used only
// for the well-known constant GUIDs in this module (package-store GUID,
// file-type GUIDs, ...) where a parse failure would be a programming
// error, not a runtime one.
func MustParse(s string) Guid {
	return Guid{id: uuid.MustParse(s)}
}

// ParseString parses a standard "xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx"
// string (RFC 4122 order) into a Guid, or an error if s is not well
// formed - used at runtime to resolve a data-reference string (e.g. a
// legacy file-data attachment's "<ifndf>"-stripped id) back to a Guid.
func ParseString(s string) (Guid, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return Nil, errs.Wrap(errs.MalformedData, err, "invalid guid string %q", s)
	}
	return Guid{id: u}, nil
}

// IsNil reports whether every byte of the Guid is zero.
func (g Guid) IsNil() bool {
	return g.id == uuid.Nil
}

// String renders the Guid in standard RFC 4122 form.
func (g Guid) String() string {
	return g.id.String()
}

// UUID exposes the underlying uuid.UUID in RFC 4122 byte order.
func (g Guid) UUID() uuid.UUID {
	return g.id
}

// Equal reports whether two Guids have identical bytes.
func (g Guid) Equal(o Guid) bool {
	return g.id == o.id
}

// windowsToRFC4122 reorders the 16 on-wire mixed-endian bytes into RFC
// 4122 (big-endian) byte order.
func windowsToRFC4122(b []byte) uuid.UUID {
	var u uuid.UUID
	u[0], u[1], u[2], u[3] = b[3], b[2], b[1], b[0]
	u[4], u[5] = b[5], b[4]
	u[6], u[7] = b[7], b[6]
	copy(u[8:16], b[8:16])
	return u
}

// rfc4122ToWindows is the inverse of windowsToRFC4122.
func rfc4122ToWindows(u uuid.UUID) []byte {
	b := make([]byte, 16)
	b[0], b[1], b[2], b[3] = u[3], u[2], u[1], u[0]
	b[4], b[5] = u[5], u[4]
	b[6], b[7] = u[7], u[6]
	copy(b[8:16], u[8:16])
	return b
}

// Parse reads a fixed 16-byte mixed-endian Guid from r.
func Parse(r *reader.Reader) (Guid, error) {
	b, err := r.Read(16)
	if err != nil {
		return Nil, err
	}
	return Guid{id: windowsToRFC4122(b)}, nil
}

// Bytes returns the 16-byte mixed-endian wire encoding of g.
func (g Guid) Bytes() []byte {
	return rfc4122ToWindows(g.id)
}

// CompactU64 decodes a variable-width unsigned 64-bit integer. The low
// bits of the first byte select the width; see ParseCompactU64 for the
// exact rule table from §3.
type CompactU64 uint64

// ParseCompactU64 reads a CompactU64 from r, consuming exactly the bytes
// its own encoding declares.
func ParseCompactU64(r *reader.Reader) (CompactU64, error) {
	first, err := r.GetU8()
	if err != nil {
		return 0, err
	}
	switch {
	case first == 0:
		return 0, nil
	case first&0x01 == 0x01:
		// 7-bit payload in the remaining bits of byte 0.
		return CompactU64(first >> 1), nil
	case first&0x02 == 0x02:
		second, err := r.GetU8()
		if err != nil {
			return 0, err
		}
		v := uint16(first) | uint16(second)<<8
		return CompactU64(v >> 2), nil
	case first&0x04 == 0x04:
		return parseCompactUWidth(r, first, 2, 3)
	case first&0x08 == 0x08:
		return parseCompactUWidth(r, first, 3, 4)
	case first&0x10 == 0x10:
		return parseCompactUWidth(r, first, 4, 5)
	case first&0x20 == 0x20:
		return parseCompactUWidth(r, first, 5, 6)
	case first&0x40 == 0x40:
		return parseCompactUWidth(r, first, 6, 7)
	case first&0x80 == 0x80:
		b, err := r.Read(8)
		if err != nil {
			return 0, err
		}
		var v uint64
		for i := 7; i >= 0; i-- {
			v = v<<8 | uint64(b[i])
		}
		return CompactU64(v), nil
	default:
		return 0, errs.New(errs.MalformedData, "unrecognized CompactU64 discriminator byte 0x%02x", first)
	}
}

// parseCompactUWidth handles the 21/28/35/42/49-bit shapes, which all
// follow the same pattern: shift bit index of the discriminator, total
// encoded length in bytes including byte 0 (so totalBytes-1 more bytes
// are read), then shift right by (shiftBits+1) to drop the discriminator
// bits.
func parseCompactUWidth(r *reader.Reader, first byte, shiftBits int, totalBytes int) (CompactU64, error) {
	rest, err := r.Read(totalBytes - 1)
	if err != nil {
		return 0, err
	}
	var v uint64 = uint64(first)
	for i, b := range rest {
		v |= uint64(b) << (8 * (i + 1))
	}
	return CompactU64(v >> uint(shiftBits+1)), nil
}

// SerialNumber is a per-data-element serial number: an ExGuid-identified
// guid paired with a monotonically-assigned 32-bit value, used by
// fsshttpb elements to detect stale copies. It does not use ExGuid's
// variable-width shapes; see ParseSerialNumber for its encoding.
type SerialNumber struct {
	Guid  Guid
	Value uint32
}

// ParseSerialNumber reads a SerialNumber: a Guid followed by a u32, or an
// all-nil encoding if the leading byte is zero.
func ParseSerialNumber(r *reader.Reader) (SerialNumber, error) {
	first, ok := r.Peek()
	if !ok {
		return SerialNumber{}, errs.New(errs.UnexpectedEof, "no bytes left for SerialNumber")
	}
	if first == 0 {
		if err := r.Advance(1); err != nil {
			return SerialNumber{}, err
		}
		return SerialNumber{}, nil
	}
	g, err := Parse(r)
	if err != nil {
		return SerialNumber{}, err
	}
	v, err := r.GetU32()
	if err != nil {
		return SerialNumber{}, err
	}
	return SerialNumber{Guid: g, Value: v}, nil
}

func (s SerialNumber) IsNil() bool {
	return s.Guid.IsNil() && s.Value == 0
}
