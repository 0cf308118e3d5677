// Package reader implements the cursor over a borrowed byte slice that
// every codec in this module reads through: bounds-checked little-endian
// primitive reads, absolute-offset sub-slicing, and a "remaining" view.
//
// Unlike the teacher's ext4 codecs, which index directly into a []byte
// with literal offsets (superblockFromBytes and friends), the OneNote
// formats are built from variable-width, self-describing records chained
// through chunk references - a cursor that tracks its own position and
// can be rebased onto an absolute [start:end) window of the original
// buffer is required instead.
package reader

import (
	"encoding/binary"
	"math"

	"github.com/runbark/onestore/errs"
)

// Reader is a cursor over a borrowed slice. pos is always <= len(base);
// cur is always base[pos:].
type Reader struct {
	base []byte
	pos  int
}

// New creates a Reader positioned at the start of b. b is borrowed, not
// copied - the Reader must not outlive mutation of b.
func New(b []byte) *Reader {
	return &Reader{base: b, pos: 0}
}

// Remaining returns how many bytes are left to read.
func (r *Reader) Remaining() int {
	return len(r.base) - r.pos
}

// Len is an alias for Remaining kept for readability at call sites that
// are checking "is there enough left" rather than computing an offset.
func (r *Reader) Len() int {
	return r.Remaining()
}

// Peek returns the next byte without consuming it, or false if the
// reader is at the end.
func (r *Reader) Peek() (byte, bool) {
	if r.Remaining() < 1 {
		return 0, false
	}
	return r.base[r.pos], true
}

// Position returns the current absolute offset into the original base
// slice passed to New (or to the ancestor Reader this one was rebased
// from via WithUpdatedBounds).
func (r *Reader) Position() int {
	return r.pos
}

// Read consumes and returns the next n bytes as a sub-slice of the
// underlying buffer (not a copy). Fails with UnexpectedEof, leaving the
// reader's position unchanged, if fewer than n bytes remain.
func (r *Reader) Read(n int) ([]byte, error) {
	if n < 0 || n > r.Remaining() {
		return nil, errs.AtOffset(errs.UnexpectedEof, int64(r.pos), "need %d bytes, only %d remain", n, r.Remaining())
	}
	b := r.base[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// Advance moves the cursor forward by n bytes without returning them.
// Fails with UnexpectedEof (without moving) if n exceeds what remains.
func (r *Reader) Advance(n int) error {
	_, err := r.Read(n)
	return err
}

func (r *Reader) GetU8() (uint8, error) {
	b, err := r.Read(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *Reader) GetU16() (uint16, error) {
	b, err := r.Read(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *Reader) GetU32() (uint32, error) {
	b, err := r.Read(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *Reader) GetU64() (uint64, error) {
	b, err := r.Read(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// GetU128 reads a 128-bit little-endian unsigned integer as two uint64
// halves (lo, hi), since Go has no native 128-bit integer type.
func (r *Reader) GetU128() (lo uint64, hi uint64, err error) {
	b, err := r.Read(16)
	if err != nil {
		return 0, 0, err
	}
	return binary.LittleEndian.Uint64(b[0:8]), binary.LittleEndian.Uint64(b[8:16]), nil
}

func (r *Reader) GetF32() (float32, error) {
	b, err := r.Read(4)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(b)), nil
}

// Clone returns an independent cursor over the same base slice,
// preserving the current position. Advancing the clone does not affect
// the receiver and vice versa.
func (r *Reader) Clone() *Reader {
	return &Reader{base: r.base, pos: r.pos}
}

// WithUpdatedBounds returns a new Reader over base[start:end] of the
// ORIGINAL base slice this Reader (or an ancestor it was cloned/rebased
// from) was constructed with - not relative to the current position.
// Used to hand a file-node's body off to a sub-parser addressed by
// absolute chunk-reference offsets.
func (r *Reader) WithUpdatedBounds(start, end int) (*Reader, error) {
	if start < 0 || end < start || end > len(r.base) {
		return nil, errs.New(errs.UnexpectedEof, "bad sub-slice bounds [%d:%d) of %d byte buffer", start, end, len(r.base))
	}
	return &Reader{base: r.base[start:end], pos: 0}, nil
}

// Base returns the original, full buffer this Reader (or its ancestor)
// was constructed over - needed by callers that must compute absolute
// offsets (e.g. the embedded-package locator in packaging.DetectEmbedded).
func (r *Reader) Base() []byte {
	return r.base
}
