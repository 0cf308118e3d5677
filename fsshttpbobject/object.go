// Package fsshttpbobject assembles the typed onestore object graph (C8)
// out of a parsed packaging.Package: the header/data-root cell lookup in
// the storage manifest, the cell-manifest -> revision-manifest chain
// walk (with ancestor sharing cached by revision id), the three-
// partition (metadata/data/file-data) object build out of an object
// group's declarations and data streams, and the CompactId zipping that
// builds each object's FSSHTTPBMapping.
package fsshttpbobject

import (
	"github.com/runbark/onestore/errs"
	"github.com/runbark/onestore/fsshttpb"
	"github.com/runbark/onestore/guid"
	"github.com/runbark/onestore/onestore"
	"github.com/runbark/onestore/reader"
)

// Object group partitions (MS-ONESTORE 2.1.5): every object declared in
// a group carries its metadata (JCID) in partition 4 and its property
// set in partition 1; partition 2, if present, carries a blob reference
// to the object's file data.
const (
	partitionObjectData = 1
	partitionFileData   = 2
	partitionMetadata   = 4
)

// groupKey indexes a single object group's declaration/data pairing by
// (object id, partition id), the same key find_object uses in the
// original to pull an object's metadata, data, and file-data entries out
// of one object group.
type groupKey struct {
	id        guid.ExGuid
	partition uint64
}

// indexObjectGroup pairs every declaration in g with its data entry by
// position, keyed for buildObject's partition lookups.
func indexObjectGroup(g *fsshttpb.ObjectGroup) map[groupKey]*fsshttpb.ObjectGroupData {
	index := make(map[groupKey]*fsshttpb.ObjectGroupData, len(g.Declarations))
	for i := range g.Declarations {
		d := g.Declarations[i]
		index[groupKey{id: d.ObjectID, partition: d.PartitionID}] = &g.Data[i]
	}
	return index
}

// isBlobEntry reports whether a data entry is a blob reference (as
// opposed to inline data or an excluded placeholder).
func isBlobEntry(e *fsshttpb.ObjectGroupData) bool {
	return !e.Blob.IsNil()
}

// buildObject assembles one object out of its group-scoped metadata,
// data, and (optional) file-data partitions, resolving every reference
// its property set carries against a mapping table built by zipping the
// data partition's referenced-object/referenced-cell arrays against the
// property set's own declared reference streams (§4.8 "three-partition
// object build").
func buildObject(id guid.ExGuid, objectSpaceID guid.ExGuid, index map[groupKey]*fsshttpb.ObjectGroupData, pkg *fsshttpb.Package) (onestore.Object, error) {
	metaEntry, ok := index[groupKey{id: id, partition: partitionMetadata}]
	if !ok || metaEntry.Data == nil {
		return onestore.Object{}, errs.New(errs.MalformedOneStoreData, "object %v metadata is missing", id)
	}
	jcid, err := onestore.ParseJCID(reader.New(metaEntry.Data))
	if err != nil {
		return onestore.Object{}, err
	}

	dataEntry, ok := index[groupKey{id: id, partition: partitionObjectData}]
	if !ok || dataEntry.Data == nil {
		return onestore.Object{}, errs.New(errs.MalformedOneStoreData, "object %v data is missing", id)
	}
	propSet, err := onestore.ParseObjectPropSet(reader.New(dataEntry.Data))
	if err != nil {
		return onestore.Object{}, err
	}

	var fileData []byte
	if fdEntry, ok := index[groupKey{id: id, partition: partitionFileData}]; ok {
		if !isBlobEntry(fdEntry) {
			return onestore.Object{}, errs.New(errs.MalformedOneStoreData, "object %v file data partition is not a blob reference", id)
		}
		data, err := pkg.FindBlob(fdEntry.Blob)
		if err != nil {
			return onestore.Object{}, err
		}
		fileData = data
	}

	objectIDs, objectSpaceIDs, contextIDs := collectRawIDs(&propSet.PropertySet)
	if len(objectIDs) < len(dataEntry.Group) {
		return onestore.Object{}, errs.New(errs.MalformedOneStoreData,
			"object %v declares fewer object references (%d) than its data partition carries (%d)", id, len(objectIDs), len(dataEntry.Group))
	}
	if len(contextIDs)+len(objectSpaceIDs) != len(dataEntry.Cells) {
		return onestore.Object{}, errs.New(errs.MalformedOneStoreData,
			"object %v declares %d context/object-space references but its data partition carries %d cells",
			id, len(contextIDs)+len(objectSpaceIDs), len(dataEntry.Cells))
	}

	objectEntries := make([]onestore.ObjectIDEntry, len(dataEntry.Group))
	for i, ref := range dataEntry.Group {
		objectEntries[i] = onestore.ObjectIDEntry{ID: objectIDs[i], Value: ref}
	}

	contextRefs, objectSpaceRefs := splitReferencedCells(dataEntry.Cells, objectSpaceID)
	if len(contextIDs) != len(contextRefs) {
		return onestore.Object{}, errs.New(errs.MalformedOneStoreData,
			"object %v declares %d context references but %d same-space cells were found", id, len(contextIDs), len(contextRefs))
	}
	spaceEntries := make([]onestore.SpaceIDEntry, 0, len(contextIDs)+len(objectSpaceIDs))
	for i, ref := range contextRefs {
		spaceEntries = append(spaceEntries, onestore.SpaceIDEntry{ID: contextIDs[i], Value: guid.CellId{Context: ref}})
	}
	for i, ref := range objectSpaceRefs {
		spaceEntries = append(spaceEntries, onestore.SpaceIDEntry{ID: objectSpaceIDs[i], Value: ref})
	}

	mapping := onestore.NewFSSHTTPBMapping(objectEntries, spaceEntries)
	if err := propSet.PropertySet.ResolveReferences(mapping); err != nil {
		return onestore.Object{}, err
	}

	return onestore.Object{ID: id, JCID: jcid, PropSet: propSet, FileData: fileData}, nil
}

// splitReferencedCells partitions a data entry's referenced cells into
// same-space (context) references, reduced to their context ExGuid, and
// cross-space (object-space) references kept as full CellIds - the zip
// rule §4.8 uses to pair each reference back to the property that
// declared it.
func splitReferencedCells(cells []guid.CellId, objectSpaceID guid.ExGuid) (contextRefs []guid.ExGuid, objectSpaceRefs []guid.CellId) {
	for _, c := range cells {
		if c.Space.Equal(objectSpaceID) {
			contextRefs = append(contextRefs, c.Context)
		} else {
			objectSpaceRefs = append(objectSpaceRefs, c)
		}
	}
	return contextRefs, objectSpaceRefs
}

// collectRawIDs walks ps in the same order resolvePropertySet/resolveValue
// will, collecting every not-yet-resolved CompactId by reference kind.
// The result lines up positionally with the zipped mapping-table build
// above, which must see reference streams in this same order since the
// CompactId keys are insertion-order/occurrence sensitive.
func collectRawIDs(ps *onestore.PropertySet) (objectIDs, objectSpaceIDs, contextIDs []guid.CompactId) {
	for i := range ps.Properties {
		p := &ps.Properties[i]
		switch p.ID.Type {
		case onestore.PropertyTypeObjectID, onestore.PropertyTypeArrayOfObjectIDs:
			objectIDs = append(objectIDs, p.Value.RawIDs...)
		case onestore.PropertyTypeObjectSpaceID, onestore.PropertyTypeArrayOfObjectSpaceIDs:
			objectSpaceIDs = append(objectSpaceIDs, p.Value.RawIDs...)
		case onestore.PropertyTypeContextID, onestore.PropertyTypeArrayOfContextIDs:
			contextIDs = append(contextIDs, p.Value.RawIDs...)
		case onestore.PropertyTypePropertySet:
			if p.Value.NestedSet != nil {
				o, s, c := collectRawIDs(p.Value.NestedSet)
				objectIDs = append(objectIDs, o...)
				objectSpaceIDs = append(objectSpaceIDs, s...)
				contextIDs = append(contextIDs, c...)
			}
		case onestore.PropertyTypeArrayOfPropertyValues:
			for j := range p.Value.NestedArray {
				o, s, c := collectRawIDs(&p.Value.NestedArray[j])
				objectIDs = append(objectIDs, o...)
				objectSpaceIDs = append(objectSpaceIDs, s...)
				contextIDs = append(contextIDs, c...)
			}
		}
	}
	return objectIDs, objectSpaceIDs, contextIDs
}
