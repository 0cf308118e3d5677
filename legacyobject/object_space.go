package legacyobject

import (
	"github.com/runbark/onestore/errs"
	"github.com/runbark/onestore/guid"
	"github.com/runbark/onestore/legacyfile"
	"github.com/runbark/onestore/onestore"
)

// tryParseObjectSpace consumes an ObjectSpaceManifestListReferenceFND
// node at the cursor, if one is present, and builds the complete
// ObjectSpace it describes.
func tryParseObjectSpace(c *nodeCursor, fds *fileDataStore) (*onestore.ObjectSpace, bool, error) {
	node, ok := c.Peek()
	if !ok || node.Data.ObjectSpaceManifestListReferenceFND == nil {
		return nil, false, nil
	}
	c.Next()

	ref := node.Data.ObjectSpaceManifestListReferenceFND
	space, err := parseObjectSpaceBody(ref, fds)
	if err != nil {
		return nil, false, err
	}
	return space, true, nil
}

// parseObjectSpaceBody resolves the object space's own revision
// manifest list (already narrowed down to the last RevisionManifestListReferenceFND
// by legacyfile's node-body parser) into the merged roots/objects an
// onestore.ObjectSpace exposes. Legacy revision stores have no notion of
// a context distinct from the object space itself, so the space's
// context is its own gosid.
func parseObjectSpaceBody(ref *legacyfile.ObjectSpaceManifestListReferenceFND, fds *fileDataStore) (*onestore.ObjectSpace, error) {
	nodes := ref.LastRevision.List.Nodes
	c := newNodeCursor(nodes)

	start, ok := c.Peek()
	if !ok || start.NodeTypeID != legacyfile.NodeTypeRevisionManifestListStartFND {
		return nil, errs.New(errs.MalformedOneStoreData, "object space should point to a RevisionManifestList")
	}
	c.Next()

	roots := make(map[onestore.RevisionRole]guid.ExGuid)
	objects := make(map[guid.ExGuid]onestore.Object)
	if err := parseRevisionManifestListBody(c, roots, objects, fds); err != nil {
		return nil, err
	}

	space := onestore.NewObjectSpace(ref.Gosid, ref.Gosid)
	space.Roots = roots
	space.Objects = objects
	return space, nil
}
