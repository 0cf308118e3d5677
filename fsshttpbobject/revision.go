package fsshttpbobject

import (
	"github.com/runbark/onestore/errs"
	"github.com/runbark/onestore/fsshttpb"
	"github.com/runbark/onestore/guid"
	"github.com/runbark/onestore/onestore"
)

// toRevisionRole validates a wire root-role value against the four
// roles MS-ONESTORE 2.1.4 defines - legacyobject carries an identical
// copy for its revision walk, since both formats encode a root role the
// same way.
func toRevisionRole(v uint32) (onestore.RevisionRole, error) {
	switch onestore.RevisionRole(v) {
	case onestore.RevisionRoleDefaultContent, onestore.RevisionRoleMetadata,
		onestore.RevisionRoleEncryptionKey, onestore.RevisionRoleVersionMetadata:
		return onestore.RevisionRole(v), nil
	default:
		return 0, errs.New(errs.MalformedOneStoreData, "invalid revision root role %d", v)
	}
}

// cachedRevision holds everything one already-processed revision
// contributed to its object space, keyed by the revision's own CellId so
// a later revision sharing an ancestor doesn't re-walk it.
type cachedRevision struct {
	roots   map[onestore.RevisionRole]guid.ExGuid
	objects map[guid.ExGuid]onestore.Object
}

// parseRevision resolves one revision manifest, merging the roots and
// objects it (and, transitively, its ancestor chain - handled by the
// caller re-entering this function with the base revision id) declares
// into roots/objects, and returns the id of its base revision manifest,
// or guid.NilExGuid if it has none.
func parseRevision(revisionManifestID guid.ExGuid, contextID, spaceID guid.ExGuid, storageIndex *fsshttpb.StorageIndex, pkg *fsshttpb.Package, cache map[guid.CellId]*cachedRevision, roots map[onestore.RevisionRole]guid.ExGuid, objects map[guid.ExGuid]onestore.Object) (guid.ExGuid, error) {
	rm, err := pkg.FindRevisionManifest(revisionManifestID)
	if err != nil {
		return guid.NilExGuid, err
	}

	var baseRev guid.ExGuid
	if rm.HasBase() {
		base, ok := storageIndex.FindRevisionMappingID(rm.BaseRevID)
		if !ok {
			return guid.NilExGuid, errs.New(errs.ResolutionFailed, "base revision mapping %v not found in storage index", rm.BaseRevID)
		}
		baseRev = base
	}

	cacheKey := guid.CellId{Context: contextID, Space: rm.RevID}
	if cached, ok := cache[cacheKey]; ok {
		for role, id := range cached.roots {
			roots[role] = id
		}
		for id, obj := range cached.objects {
			if _, exists := objects[id]; !exists {
				objects[id] = obj
			}
		}
		return baseRev, nil
	}

	revisionRoots := make(map[onestore.RevisionRole]guid.ExGuid, len(rm.RootDeclare))
	for _, rd := range rm.RootDeclare {
		role, err := toRevisionRole(uint32(rd.RootID.Value))
		if err != nil {
			return guid.NilExGuid, err
		}
		revisionRoots[role] = rd.ObjectID
	}
	for role, id := range revisionRoots {
		roots[role] = id
	}

	for _, groupID := range rm.GroupReferences {
		if err := parseObjectGroupIntoObjects(groupID, spaceID, pkg, objects); err != nil {
			return guid.NilExGuid, err
		}
	}

	revisionObjects := make(map[guid.ExGuid]onestore.Object)
	groups, err := pkg.FindObjectGroupsForRevision(rm)
	if err != nil {
		return guid.NilExGuid, err
	}
	for _, g := range groups {
		for _, decl := range g.Declarations {
			if obj, ok := objects[decl.ObjectID]; ok {
				revisionObjects[decl.ObjectID] = obj
			}
		}
	}
	cache[cacheKey] = &cachedRevision{roots: revisionRoots, objects: revisionObjects}

	return baseRev, nil
}

// parseObjectGroupIntoObjects resolves one object group and merges every
// object it declares into objects, skipping any object id already
// present - the first revision to declare an object (walking from the
// current revision back through its ancestors) wins.
func parseObjectGroupIntoObjects(groupID guid.ExGuid, objectSpaceID guid.ExGuid, pkg *fsshttpb.Package, objects map[guid.ExGuid]onestore.Object) error {
	group, err := pkg.FindObjectGroup(groupID)
	if err != nil {
		return err
	}
	index := indexObjectGroup(group)
	for _, decl := range group.Declarations {
		if _, exists := objects[decl.ObjectID]; exists {
			continue
		}
		obj, err := buildObject(decl.ObjectID, objectSpaceID, index, pkg)
		if err != nil {
			return err
		}
		objects[decl.ObjectID] = obj
	}
	return nil
}
