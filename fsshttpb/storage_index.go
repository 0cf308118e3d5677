package fsshttpb

import (
	"github.com/runbark/onestore/errs"
	"github.com/runbark/onestore/guid"
	"github.com/runbark/onestore/reader"
	"github.com/runbark/onestore/stream"
)

// StorageIndexManifestMapping names a storage manifest element by a
// mapping id, alongside the serial number the index recorded for it.
type StorageIndexManifestMapping struct {
	MappingID guid.ExGuid
	Serial    guid.SerialNumber
}

// StorageIndexCellMapping associates a CellId with the id of the data
// element (a cell manifest) that carries that cell's current revision.
type StorageIndexCellMapping struct {
	Cell   guid.CellId
	ID     guid.ExGuid
	Serial guid.SerialNumber
}

// StorageIndexRevisionMapping associates a mapping id with the revision
// manifest element id it currently resolves to.
type StorageIndexRevisionMapping struct {
	ID               guid.ExGuid
	RevisionMapping  guid.ExGuid
	Serial           guid.SerialNumber
}

// StorageIndex is the root lookup table of a data-element package: every
// cell, revision, and manifest mapping currently in force (§4.4).
type StorageIndex struct {
	ManifestMappings  []StorageIndexManifestMapping
	CellMappings      []StorageIndexCellMapping
	RevisionMappings  []StorageIndexRevisionMapping
}

// FindCellMappingID returns the data-element id (a cell manifest) mapped
// to the given CellId.
func (s *StorageIndex) FindCellMappingID(cell guid.CellId) (guid.ExGuid, bool) {
	for _, m := range s.CellMappings {
		if m.Cell.Equal(cell) {
			return m.ID, true
		}
	}
	return guid.NilExGuid, false
}

// FindRevisionMappingID returns the revision manifest id mapped to the
// given revision-mapping id.
func (s *StorageIndex) FindRevisionMappingID(id guid.ExGuid) (guid.ExGuid, bool) {
	for _, m := range s.RevisionMappings {
		if m.ID.Equal(id) {
			return m.RevisionMapping, true
		}
	}
	return guid.NilExGuid, false
}

// parseStorageIndex reads a storage index body: unlike every other
// element body, it has no leading type header of its own - it is simply
// a run of tagged mapping records read directly until the enclosing
// DataElement's end-8 marker.
func parseStorageIndex(r *reader.Reader) (StorageIndex, error) {
	var si StorageIndex
	for {
		if stream.HasEnd8(r, stream.ObjectTypeDataElement) {
			if err := endsWithDataElement(r); err != nil {
				return StorageIndex{}, err
			}
			return si, nil
		}
		h, err := stream.Parse16Start(r)
		if err != nil {
			return StorageIndex{}, err
		}
		switch h.Type {
		case stream.ObjectTypeStorageIndexManifest:
			mappingID, err := guid.ParseExGuid(r)
			if err != nil {
				return StorageIndex{}, err
			}
			serial, err := guid.ParseSerialNumber(r)
			if err != nil {
				return StorageIndex{}, err
			}
			si.ManifestMappings = append(si.ManifestMappings, StorageIndexManifestMapping{MappingID: mappingID, Serial: serial})
		case stream.ObjectTypeStorageIndexCell:
			cell, err := guid.ParseCellId(r)
			if err != nil {
				return StorageIndex{}, err
			}
			id, err := guid.ParseExGuid(r)
			if err != nil {
				return StorageIndex{}, err
			}
			serial, err := guid.ParseSerialNumber(r)
			if err != nil {
				return StorageIndex{}, err
			}
			si.CellMappings = append(si.CellMappings, StorageIndexCellMapping{Cell: cell, ID: id, Serial: serial})
		case stream.ObjectTypeStorageIndexRevision:
			id, err := guid.ParseExGuid(r)
			if err != nil {
				return StorageIndex{}, err
			}
			revisionMapping, err := guid.ParseExGuid(r)
			if err != nil {
				return StorageIndex{}, err
			}
			serial, err := guid.ParseSerialNumber(r)
			if err != nil {
				return StorageIndex{}, err
			}
			si.RevisionMappings = append(si.RevisionMappings, StorageIndexRevisionMapping{ID: id, RevisionMapping: revisionMapping, Serial: serial})
		default:
			return StorageIndex{}, errs.New(errs.MalformedFssHttpBData, "unexpected storage index mapping type %d", h.Type)
		}
	}
}
