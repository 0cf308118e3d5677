package fsshttpb

import (
	"github.com/runbark/onestore/errs"
	"github.com/runbark/onestore/guid"
	"github.com/runbark/onestore/reader"
	"github.com/runbark/onestore/stream"
)

// parseObjectDataBlob reads an object-data-blob body: its own start
// header, a CompactU64-length-prefixed binary payload, then the
// enclosing DataElement's end-8 marker.
func parseObjectDataBlob(r *reader.Reader) ([]byte, error) {
	h, err := stream.ParseStart(r)
	if err != nil {
		return nil, err
	}
	if h.Type != stream.ObjectTypeObjectDataBlob {
		return nil, errs.New(errs.MalformedFssHttpBData, "expected object data blob header, got %d", h.Type)
	}
	size, err := guid.ParseCompactU64(r)
	if err != nil {
		return nil, err
	}
	data, err := r.Read(int(size))
	if err != nil {
		return nil, err
	}
	if err := endsWithDataElement(r); err != nil {
		return nil, err
	}
	return append([]byte(nil), data...), nil
}

// DataElementFragmentChunkReference records where, in the original
// reassembled byte stream, a fragment's bytes belong.
type DataElementFragmentChunkReference struct {
	Offset uint64
	Length uint64
}

// DataElementFragment is one piece of a larger object split across
// several data elements.
type DataElementFragment struct {
	ID            guid.ExGuid
	Size          uint64
	ChunkRef      DataElementFragmentChunkReference
	Data          []byte
}

// parseDataElementFragment reads a data-element-fragment body. Unlike
// every other body shape, it carries no trailing end-8 marker of its
// own - its length is already fully determined by Size, so the package
// loop resumes immediately after the raw data.
func parseDataElementFragment(r *reader.Reader) (DataElementFragment, error) {
	h, err := stream.ParseStart(r)
	if err != nil {
		return DataElementFragment{}, err
	}
	if h.Type != stream.ObjectTypeDataElementFragment {
		return DataElementFragment{}, errs.New(errs.MalformedFssHttpBData, "expected data element fragment header, got %d", h.Type)
	}
	id, err := guid.ParseExGuid(r)
	if err != nil {
		return DataElementFragment{}, err
	}
	size, err := guid.ParseCompactU64(r)
	if err != nil {
		return DataElementFragment{}, err
	}
	offset, err := guid.ParseCompactU64(r)
	if err != nil {
		return DataElementFragment{}, err
	}
	length, err := guid.ParseCompactU64(r)
	if err != nil {
		return DataElementFragment{}, err
	}
	data, err := r.Read(int(size))
	if err != nil {
		return DataElementFragment{}, err
	}
	return DataElementFragment{
		ID:   id,
		Size: uint64(size),
		ChunkRef: DataElementFragmentChunkReference{
			Offset: uint64(offset),
			Length: uint64(length),
		},
		Data: append([]byte(nil), data...),
	}, nil
}
