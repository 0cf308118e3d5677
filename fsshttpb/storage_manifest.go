package fsshttpb

import (
	"github.com/runbark/onestore/guid"
	"github.com/runbark/onestore/reader"
	"github.com/runbark/onestore/stream"
)

// StorageManifestRoot names an object space (by CellId) and the root
// ExGuid under which it is stored within this package.
type StorageManifestRoot struct {
	RootManifest guid.ExGuid
	Cell         guid.CellId
}

// StorageManifest is the package's root: a schema-identifying Guid and
// the set of cells it declares (§4.4).
type StorageManifest struct {
	ID    guid.Guid
	Roots []StorageManifestRoot
}

func parseStorageManifest(r *reader.Reader) (StorageManifest, error) {
	if _, err := stream.TryParse16Start(r, stream.ObjectTypeStorageManifest); err != nil {
		return StorageManifest{}, err
	}
	id, err := guid.Parse(r)
	if err != nil {
		return StorageManifest{}, err
	}

	var sm StorageManifest
	sm.ID = id
	for {
		if stream.HasEnd8(r, stream.ObjectTypeDataElement) {
			if err := endsWithDataElement(r); err != nil {
				return StorageManifest{}, err
			}
			return sm, nil
		}
		if _, err := stream.TryParse16Start(r, stream.ObjectTypeStorageManifestRoot); err != nil {
			return StorageManifest{}, err
		}
		rootManifest, err := guid.ParseExGuid(r)
		if err != nil {
			return StorageManifest{}, err
		}
		cell, err := guid.ParseCellId(r)
		if err != nil {
			return StorageManifest{}, err
		}
		sm.Roots = append(sm.Roots, StorageManifestRoot{RootManifest: rootManifest, Cell: cell})
	}
}

// parseCellManifest reads a cell manifest body: its own 16-bit start
// header, a single ExGuid naming a revision-mapping id, then the
// enclosing DataElement's end-8 marker.
func parseCellManifest(r *reader.Reader) (guid.ExGuid, error) {
	if _, err := stream.TryParse16Start(r, stream.ObjectTypeCellManifest); err != nil {
		return guid.NilExGuid, err
	}
	id, err := guid.ParseExGuid(r)
	if err != nil {
		return guid.NilExGuid, err
	}
	if err := endsWithDataElement(r); err != nil {
		return guid.NilExGuid, err
	}
	return id, nil
}
