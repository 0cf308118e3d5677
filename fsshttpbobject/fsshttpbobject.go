package fsshttpbobject

import (
	"github.com/runbark/onestore/errs"
	"github.com/runbark/onestore/fsshttpb"
	"github.com/runbark/onestore/guid"
	"github.com/runbark/onestore/onestore"
	"github.com/runbark/onestore/packaging"
)

// Well-known ExGuids a storage manifest root entry names (MS-ONESTORE
// 2.1.6): the header cell carries the free-standing file header that
// has no equivalent in the legacy format, and the data-root cell is the
// package's primary object space.
var (
	headerRootManifest   = guid.ExGuid{Guid: guid.MustParse("1A5A319C-C26B-41AA-B9C5-9BD8C44E07D4"), Value: 1}
	dataRootRootManifest = guid.ExGuid{Guid: guid.MustParse("84DEFAB9-AAA3-4A0D-A3A8-520C77AC7073"), Value: 2}
)

// Schema guids a storage manifest's own id is checked against to tell a
// section file from a table-of-contents file (MS-ONESTORE 2.1.6.1).
var (
	sectionSchemaGuid = guid.MustParse("1F937CB4-B26F-445F-B9F8-17E20160E461")
	tocSchemaGuid     = guid.MustParse("E4DBFD38-E5C7-408B-A8A1-0E7B421E1F5F")
)

// Parse assembles a complete onestore.OneStore out of a packaged
// (FSSHTTPB-backed) OneNote file: it resolves the storage index and
// storage manifest, parses the header and data-root cells the manifest
// names, then parses every remaining cell the storage index maps, each
// by walking its cell-manifest -> revision-manifest chain into object
// groups and objects (§4.8).
func Parse(pkg *packaging.Package) (*onestore.OneStore, error) {
	storageIndex, ok := pkg.Elements.FindElement(pkg.StorageIndex)
	var si *fsshttpb.StorageIndex
	if ok && storageIndex.StorageIndex != nil {
		si = storageIndex.StorageIndex
	} else if found, ok := pkg.Elements.FindStorageIndex(); ok {
		si = found
	} else {
		return nil, errs.New(errs.MalformedOneStoreData, "package does not contain a storage index")
	}

	sm, ok := pkg.Elements.FindStorageManifest()
	if !ok {
		return nil, errs.New(errs.MalformedOneStoreData, "package does not contain a storage manifest")
	}

	var storeType onestore.OneStoreType
	switch {
	case sm.ID.Equal(sectionSchemaGuid):
		storeType = onestore.OneStoreTypeSection
	case sm.ID.Equal(tocSchemaGuid):
		storeType = onestore.OneStoreTypeTOC
	default:
		return nil, errs.New(errs.MalformedOneStoreData, "unrecognized storage manifest schema %v", sm.ID)
	}

	headerCellID, ok := findRootCell(sm, headerRootManifest)
	if !ok {
		return nil, errs.New(errs.MalformedOneStoreData, "storage manifest does not declare a header cell")
	}
	dataRootCellID, ok := findRootCell(sm, dataRootRootManifest)
	if !ok {
		return nil, errs.New(errs.MalformedOneStoreData, "storage manifest does not declare a data root cell")
	}

	oneStore := onestore.NewOneStore(storeType)
	cache := make(map[guid.CellId]*cachedRevision)
	parsed := make(map[guid.CellId]bool)

	headerSpace, err := parseObjectSpaceByCellID(headerCellID, si, pkg.Elements, cache)
	if err != nil {
		return nil, err
	}
	oneStore.ObjectSpaces[headerSpace.ID] = headerSpace
	parsed[headerCellID] = true

	dataRootSpace, err := parseObjectSpaceByCellID(dataRootCellID, si, pkg.Elements, cache)
	if err != nil {
		return nil, err
	}
	oneStore.ObjectSpaces[dataRootSpace.ID] = dataRootSpace
	oneStore.DataRoot = dataRootSpace.ID
	parsed[dataRootCellID] = true

	for _, mapping := range si.CellMappings {
		if mapping.ID.IsNil() || parsed[mapping.Cell] {
			continue
		}
		space, err := parseObjectSpaceByCellID(mapping.Cell, si, pkg.Elements, cache)
		if err != nil {
			return nil, err
		}
		oneStore.ObjectSpaces[space.ID] = space
		parsed[mapping.Cell] = true
	}

	return oneStore, nil
}

// findRootCell returns the Cell of the storage manifest root entry
// declared under the given well-known root-manifest ExGuid.
func findRootCell(sm *fsshttpb.StorageManifest, rootManifest guid.ExGuid) (guid.CellId, bool) {
	for _, root := range sm.Roots {
		if root.RootManifest.Equal(rootManifest) {
			return root.Cell, true
		}
	}
	return guid.CellId{}, false
}
