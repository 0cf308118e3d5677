package legacyfile

import (
	"github.com/runbark/onestore/reader"
)

// ChunkReference is the common behavior of the three fixed-width chunk
// reference shapes this format uses (FileChunkReference32/64x32/64):
// where a referenced chunk starts and how large it is, plus the two
// distinguished encodings "this reference points nowhere" and "this
// reference points at an empty, absent chunk" that every consumer must
// tell apart from a real, non-empty reference (MS-ONESTORE 2.2.4).
type ChunkReference interface {
	// Stp is the absolute byte offset of the referenced chunk.
	Stp() uint64
	// Cb is the size in bytes of the referenced chunk.
	Cb() uint64
	// IsNil reports the all-ones/all-zero "fcrNil" encoding: this
	// reference does not point at anything.
	IsNil() bool
	// IsZero reports the all-zero "fcrZero" encoding: this reference
	// points at a real, present, but empty chunk.
	IsZero() bool
}

// resolveToReader rebases r onto the absolute byte range a chunk
// reference describes.
func resolveToReader(r *reader.Reader, stp, cb uint64) (*reader.Reader, error) {
	return r.WithUpdatedBounds(int(stp), int(stp+cb))
}

// FileChunkReference32 is the 8-byte (u32 stp, u32 cb) reference shape
// used by the legacy-narrow header fields.
type FileChunkReference32 struct {
	StpValue uint32
	CbValue  uint32
}

func ParseFileChunkReference32(r *reader.Reader) (FileChunkReference32, error) {
	stp, err := r.GetU32()
	if err != nil {
		return FileChunkReference32{}, err
	}
	cb, err := r.GetU32()
	if err != nil {
		return FileChunkReference32{}, err
	}
	return FileChunkReference32{StpValue: stp, CbValue: cb}, nil
}

func (f FileChunkReference32) Stp() uint64 { return uint64(f.StpValue) }
func (f FileChunkReference32) Cb() uint64  { return uint64(f.CbValue) }
func (f FileChunkReference32) IsNil() bool {
	return f.StpValue == 0xffffffff && f.CbValue == 0
}
func (f FileChunkReference32) IsZero() bool {
	return f.StpValue == 0 && f.CbValue == 0
}
func (f FileChunkReference32) ResolveToReader(r *reader.Reader) (*reader.Reader, error) {
	return resolveToReader(r, f.Stp(), f.Cb())
}

// FileChunkReference64x32 is the 12-byte (u64 stp, u32 cb) reference
// shape used by the modern header fields.
type FileChunkReference64x32 struct {
	StpValue uint64
	CbValue  uint32
}

func ParseFileChunkReference64x32(r *reader.Reader) (FileChunkReference64x32, error) {
	stp, err := r.GetU64()
	if err != nil {
		return FileChunkReference64x32{}, err
	}
	cb, err := r.GetU32()
	if err != nil {
		return FileChunkReference64x32{}, err
	}
	return FileChunkReference64x32{StpValue: stp, CbValue: cb}, nil
}

func (f FileChunkReference64x32) Stp() uint64 { return f.StpValue }
func (f FileChunkReference64x32) Cb() uint64  { return uint64(f.CbValue) }
func (f FileChunkReference64x32) IsNil() bool {
	return f.StpValue == 0xffffffffffffffff && f.CbValue == 0
}
func (f FileChunkReference64x32) IsZero() bool {
	return f.StpValue == 0 && f.CbValue == 0
}
func (f FileChunkReference64x32) ResolveToReader(r *reader.Reader) (*reader.Reader, error) {
	return resolveToReader(r, f.Stp(), f.Cb())
}

// FileChunkReference64 is the 16-byte (u64 stp, u64 cb) reference shape
// used by the largest file-node chunk-reference width.
type FileChunkReference64 struct {
	StpValue uint64
	CbValue  uint64
}

func ParseFileChunkReference64(r *reader.Reader) (FileChunkReference64, error) {
	stp, err := r.GetU64()
	if err != nil {
		return FileChunkReference64{}, err
	}
	cb, err := r.GetU64()
	if err != nil {
		return FileChunkReference64{}, err
	}
	return FileChunkReference64{StpValue: stp, CbValue: cb}, nil
}

func (f FileChunkReference64) Stp() uint64 { return f.StpValue }
func (f FileChunkReference64) Cb() uint64  { return f.CbValue }
func (f FileChunkReference64) IsNil() bool {
	return f.StpValue == 0xffffffffffffffff && f.CbValue == 0
}
func (f FileChunkReference64) IsZero() bool {
	return f.StpValue == 0 && f.CbValue == 0
}
func (f FileChunkReference64) ResolveToReader(r *reader.Reader) (*reader.Reader, error) {
	return resolveToReader(r, f.Stp(), f.Cb())
}
