package fsshttpb

import (
	"github.com/runbark/onestore/errs"
	"github.com/runbark/onestore/guid"
	"github.com/runbark/onestore/reader"
	"github.com/runbark/onestore/stream"
)

// ObjectGroupDeclaration is one declared member of an object group:
// either an inline object or a reference to a separately-stored blob
// (§4.4's "declarations" sub-stream).
type ObjectGroupDeclaration struct {
	ObjectID   guid.ExGuid
	IsBlob     bool
	BlobID     guid.ExGuid // set when IsBlob
	PartitionID uint64
}

// ObjectGroupData is one parallel data entry paired with a declaration
// by position: inline bytes, an excluded placeholder, or a reference to
// a separate object-data blob element.
type ObjectGroupData struct {
	Group []guid.ExGuid
	Cells []guid.CellId

	Data     []byte      // set when this entry carries inline bytes
	Excluded bool         // set when this entry was excluded from the package
	Blob     guid.ExGuid // set when this entry references a blob element
}

// ObjectGroup pairs a declarations stream with a parallel data stream;
// every index i's ObjectGroupDeclaration describes the object or blob at
// Data[i] (§4.4's "declarations count == data count" invariant).
type ObjectGroup struct {
	Declarations []ObjectGroupDeclaration
	Data         []ObjectGroupData
}

func parseObjectGroup(r *reader.Reader) (ObjectGroup, error) {
	declarations, err := parseObjectGroupDeclarations(r)
	if err != nil {
		return ObjectGroup{}, err
	}

	h, err := stream.ParseStart(r)
	if err != nil {
		return ObjectGroup{}, err
	}
	switch h.Type {
	case stream.ObjectTypeMetadata1:
		if err := skipObjectGroupMetadata(r); err != nil {
			return ObjectGroup{}, err
		}
		h2, err := stream.ParseStart(r)
		if err != nil {
			return ObjectGroup{}, err
		}
		if h2.Type != stream.ObjectTypeObjectGroupData {
			return ObjectGroup{}, errs.New(errs.MalformedFssHttpBData, "expected object group data header after metadata, got %d", h2.Type)
		}
	case stream.ObjectTypeObjectGroupData:
		// already consumed the data-stream start header
	default:
		return ObjectGroup{}, errs.New(errs.MalformedFssHttpBData, "unexpected object group entry after declarations: %d", h.Type)
	}

	data, err := parseObjectGroupData(r)
	if err != nil {
		return ObjectGroup{}, err
	}
	if len(declarations) != len(data) {
		return ObjectGroup{}, errs.New(errs.MalformedOneStoreData,
			"object group declares %d members but has %d data entries", len(declarations), len(data))
	}
	if err := endsWithDataElement(r); err != nil {
		return ObjectGroup{}, err
	}
	return ObjectGroup{Declarations: declarations, Data: data}, nil
}

func parseObjectGroupDeclarations(r *reader.Reader) ([]ObjectGroupDeclaration, error) {
	h, err := stream.ParseStart(r)
	if err != nil {
		return nil, err
	}
	if h.Type != stream.ObjectTypeObjectGroupDeclarations {
		return nil, errs.New(errs.MalformedFssHttpBData, "expected object group declarations header, got %d", h.Type)
	}

	var decls []ObjectGroupDeclaration
	for {
		if stream.HasEnd8(r, stream.ObjectTypeObjectGroupDeclarations) {
			if _, err := stream.TryParse8End(r, stream.ObjectTypeObjectGroupDeclarations); err != nil {
				return nil, err
			}
			return decls, nil
		}
		eh, err := stream.ParseStart(r)
		if err != nil {
			return nil, err
		}
		switch eh.Type {
		case stream.ObjectTypeObjectGroupObject:
			objectID, err := guid.ParseExGuid(r)
			if err != nil {
				return nil, err
			}
			partitionID, err := guid.ParseCompactU64(r)
			if err != nil {
				return nil, err
			}
			if _, err := guid.ParseCompactU64(r); err != nil { // data size
				return nil, err
			}
			if _, err := guid.ParseCompactU64(r); err != nil { // object reference count
				return nil, err
			}
			if _, err := guid.ParseCompactU64(r); err != nil { // cell reference count
				return nil, err
			}
			decls = append(decls, ObjectGroupDeclaration{ObjectID: objectID, PartitionID: uint64(partitionID)})
		case stream.ObjectTypeObjectGroupObjectBlob:
			objectID, err := guid.ParseExGuid(r)
			if err != nil {
				return nil, err
			}
			blobID, err := guid.ParseExGuid(r)
			if err != nil {
				return nil, err
			}
			partitionID, err := guid.ParseCompactU64(r)
			if err != nil {
				return nil, err
			}
			if _, err := guid.ParseCompactU64(r); err != nil { // object reference count
				return nil, err
			}
			if _, err := guid.ParseCompactU64(r); err != nil { // cell reference count
				return nil, err
			}
			decls = append(decls, ObjectGroupDeclaration{ObjectID: objectID, IsBlob: true, BlobID: blobID, PartitionID: uint64(partitionID)})
		default:
			return nil, errs.New(errs.MalformedFssHttpBData, "unexpected object group declaration type %d", eh.Type)
		}
	}
}

// skipObjectGroupMetadata consumes the optional change-frequency
// metadata sub-stream; this decoder has no use for the per-object change
// frequency hints, so entries are parsed only far enough to skip them.
func skipObjectGroupMetadata(r *reader.Reader) error {
	for {
		if stream.HasEnd8(r, stream.ObjectTypeMetadata1) {
			_, err := stream.TryParse8End(r, stream.ObjectTypeMetadata1)
			return err
		}
		if _, err := stream.TryParse32Start(r, stream.ObjectTypeMetadata2); err != nil {
			return err
		}
		if _, err := guid.ParseCompactU64(r); err != nil { // change frequency
			return err
		}
	}
}

func parseObjectGroupData(r *reader.Reader) ([]ObjectGroupData, error) {
	var entries []ObjectGroupData
	for {
		if stream.HasEnd8(r, stream.ObjectTypeObjectGroupData) {
			if _, err := stream.TryParse8End(r, stream.ObjectTypeObjectGroupData); err != nil {
				return nil, err
			}
			return entries, nil
		}
		h, err := stream.ParseStart(r)
		if err != nil {
			return nil, err
		}
		switch h.Type {
		case stream.ObjectTypeObjectGroupObjectExcl:
			group, err := guid.ParseExGuidArray(r)
			if err != nil {
				return nil, err
			}
			cells, err := guid.ParseCellIdArray(r)
			if err != nil {
				return nil, err
			}
			if _, err := guid.ParseCompactU64(r); err != nil { // size
				return nil, err
			}
			entries = append(entries, ObjectGroupData{Group: group, Cells: cells, Excluded: true})
		case stream.ObjectTypeObjectGroupObjectData:
			group, err := guid.ParseExGuidArray(r)
			if err != nil {
				return nil, err
			}
			cells, err := guid.ParseCellIdArray(r)
			if err != nil {
				return nil, err
			}
			size, err := guid.ParseCompactU64(r)
			if err != nil {
				return nil, err
			}
			data, err := r.Read(int(size))
			if err != nil {
				return nil, err
			}
			entries = append(entries, ObjectGroupData{Group: group, Cells: cells, Data: append([]byte(nil), data...)})
		case stream.ObjectTypeObjectGroupObjectBlobRf:
			group, err := guid.ParseExGuidArray(r)
			if err != nil {
				return nil, err
			}
			cells, err := guid.ParseCellIdArray(r)
			if err != nil {
				return nil, err
			}
			blob, err := guid.ParseExGuid(r)
			if err != nil {
				return nil, err
			}
			entries = append(entries, ObjectGroupData{Group: group, Cells: cells, Blob: blob})
		default:
			return nil, errs.New(errs.MalformedFssHttpBData, "unexpected object group data entry type %d", h.Type)
		}
	}
}
