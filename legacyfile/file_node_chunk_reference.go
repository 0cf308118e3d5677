package legacyfile

import (
	"github.com/runbark/onestore/errs"
	"github.com/runbark/onestore/reader"
)

// FileNodeChunkReference is the dynamically-widthed chunk reference a
// file node's leader selects via its stp_format/cb_format bits: stp can
// be 64, 32 or a scaled 16/32-bit offset, cb can be 32, 64 or a scaled
// 8/16-bit size (MS-ONESTORE 2.2.4.2). Unlike the three fixed-width
// ChunkReference shapes, nil/zero here are judged against the raw wire
// bytes actually read (whatever width that turned out to be), not
// against the resolved stp/cb values - a reference using the 16-bit
// scaled stp format is nil only if both its wire bytes are 0xff, never
// by comparing the scaled uint64 against a width-specific sentinel.
type FileNodeChunkReference struct {
	stpBytes []byte
	cbBytes  []byte
	stp      uint64
	cb       uint64
}

// ParseFileNodeChunkReference reads a FileNodeChunkReference whose stp
// and cb widths are selected by the file node leader's stp_format and
// cb_format fields (each 0-3).
func ParseFileNodeChunkReference(r *reader.Reader, stpFormat, cbFormat uint32) (FileNodeChunkReference, error) {
	var stpBytes []byte
	var stpValue uint64
	switch stpFormat {
	case 0:
		b, err := r.Read(8)
		if err != nil {
			return FileNodeChunkReference{}, err
		}
		stpBytes = append([]byte(nil), b...)
		v, err := reader.New(b).GetU64()
		if err != nil {
			return FileNodeChunkReference{}, err
		}
		stpValue = v
	case 1:
		b, err := r.Read(4)
		if err != nil {
			return FileNodeChunkReference{}, err
		}
		stpBytes = append([]byte(nil), b...)
		v, err := reader.New(b).GetU32()
		if err != nil {
			return FileNodeChunkReference{}, err
		}
		stpValue = uint64(v)
	case 2:
		b, err := r.Read(2)
		if err != nil {
			return FileNodeChunkReference{}, err
		}
		stpBytes = append([]byte(nil), b...)
		v, err := reader.New(b).GetU16()
		if err != nil {
			return FileNodeChunkReference{}, err
		}
		stpValue = uint64(v) * 8
	case 3:
		b, err := r.Read(4)
		if err != nil {
			return FileNodeChunkReference{}, err
		}
		stpBytes = append([]byte(nil), b...)
		v, err := reader.New(b).GetU32()
		if err != nil {
			return FileNodeChunkReference{}, err
		}
		stpValue = uint64(v) * 8
	default:
		return FileNodeChunkReference{}, errs.New(errs.MalformedOneNoteData,
			"invalid stp_format %d reading FileNodeChunkReference", stpFormat)
	}

	var cbBytes []byte
	var cbValue uint64
	switch cbFormat {
	case 0:
		b, err := r.Read(4)
		if err != nil {
			return FileNodeChunkReference{}, err
		}
		cbBytes = append([]byte(nil), b...)
		v, err := reader.New(b).GetU32()
		if err != nil {
			return FileNodeChunkReference{}, err
		}
		cbValue = uint64(v)
	case 1:
		b, err := r.Read(8)
		if err != nil {
			return FileNodeChunkReference{}, err
		}
		cbBytes = append([]byte(nil), b...)
		v, err := reader.New(b).GetU64()
		if err != nil {
			return FileNodeChunkReference{}, err
		}
		cbValue = v
	case 2:
		b, err := r.Read(1)
		if err != nil {
			return FileNodeChunkReference{}, err
		}
		cbBytes = append([]byte(nil), b...)
		cbValue = uint64(b[0]) * 8
	case 3:
		b, err := r.Read(2)
		if err != nil {
			return FileNodeChunkReference{}, err
		}
		cbBytes = append([]byte(nil), b...)
		v, err := reader.New(b).GetU16()
		if err != nil {
			return FileNodeChunkReference{}, err
		}
		cbValue = uint64(v) * 8
	default:
		return FileNodeChunkReference{}, errs.New(errs.MalformedOneNoteData,
			"invalid cb_format %d reading FileNodeChunkReference", cbFormat)
	}

	return FileNodeChunkReference{
		stpBytes: stpBytes,
		cbBytes:  cbBytes,
		stp:      stpValue,
		cb:       cbValue,
	}, nil
}

func (f FileNodeChunkReference) Stp() uint64 { return f.stp }
func (f FileNodeChunkReference) Cb() uint64  { return f.cb }

func (f FileNodeChunkReference) IsNil() bool {
	for _, b := range f.stpBytes {
		if b != 0xff {
			return false
		}
	}
	for _, b := range f.cbBytes {
		if b != 0x00 {
			return false
		}
	}
	return true
}

func (f FileNodeChunkReference) IsZero() bool {
	for _, b := range f.stpBytes {
		if b != 0x00 {
			return false
		}
	}
	for _, b := range f.cbBytes {
		if b != 0x00 {
			return false
		}
	}
	return true
}

func (f FileNodeChunkReference) ResolveToReader(r *reader.Reader) (*reader.Reader, error) {
	return resolveToReader(r, f.stp, f.cb)
}
