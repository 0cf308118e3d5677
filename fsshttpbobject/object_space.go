package fsshttpbobject

import (
	"github.com/runbark/onestore/errs"
	"github.com/runbark/onestore/fsshttpb"
	"github.com/runbark/onestore/guid"
	"github.com/runbark/onestore/onestore"
)

// parseObjectSpaceByCellID resolves one cell through the storage index's
// cell-manifest -> revision-mapping -> revision-manifest chain, then
// walks the named revision and every ancestor it points back to,
// merging each one's roots/objects, and returns the assembled
// onestore.ObjectSpace.
func parseObjectSpaceByCellID(cellID guid.CellId, storageIndex *fsshttpb.StorageIndex, pkg *fsshttpb.Package, cache map[guid.CellId]*cachedRevision) (*onestore.ObjectSpace, error) {
	contextID, spaceID := cellID.Context, cellID.Space

	mappingID, ok := storageIndex.FindCellMappingID(cellID)
	if !ok {
		return nil, errs.New(errs.MalformedOneStoreData, "no cell mapping found for cell %+v", cellID)
	}
	revisionMappingID, err := pkg.FindCellRevisionID(mappingID)
	if err != nil {
		return nil, err
	}
	revisionManifestID, ok := storageIndex.FindRevisionMappingID(revisionMappingID)
	if !ok {
		return nil, errs.New(errs.MalformedOneStoreData, "no revision mapping found for revision mapping id %v", revisionMappingID)
	}

	roots := make(map[onestore.RevisionRole]guid.ExGuid)
	objects := make(map[guid.ExGuid]onestore.Object)

	revID := revisionManifestID
	for !revID.IsNil() {
		base, err := parseRevision(revID, contextID, spaceID, storageIndex, pkg, cache, roots, objects)
		if err != nil {
			return nil, err
		}
		revID = base
	}

	space := onestore.NewObjectSpace(spaceID, contextID)
	space.Roots = roots
	space.Objects = objects
	return space, nil
}
