package legacyobject

import (
	"github.com/runbark/onestore/errs"
	"github.com/runbark/onestore/guid"
	"github.com/runbark/onestore/legacyfile"
	"github.com/runbark/onestore/onestore"
)

// Parse assembles a complete onestore.OneStore out of a parsed legacy
// revision-store file: a first pass over the root file node list locates
// the (at most one) file data store, then a second pass builds every
// object space and resolves the node carrying the root object space id.
func Parse(store *legacyfile.Store) (*onestore.OneStore, error) {
	var t onestore.OneStoreType
	switch {
	case store.Header.FileType.Equal(legacyfile.SectionFileTypeGuid):
		t = onestore.OneStoreTypeSection
	case store.Header.FileType.Equal(legacyfile.TocFileTypeGuid):
		t = onestore.OneStoreTypeTOC
	default:
		return nil, errs.New(errs.MalformedOneStoreData, "unrecognized legacy file type %v", store.Header.FileType)
	}

	nodes := store.RootNodeList.Nodes

	fds, err := findFileDataStore(nodes)
	if err != nil {
		return nil, err
	}

	oneStore := onestore.NewOneStore(t)
	var rootGosid guid.ExGuid
	haveRoot := false

	c := newNodeCursor(nodes)
	lastIndex := c.Index()
	for {
		node, ok := c.Peek()
		if !ok {
			break
		}

		switch {
		case node.Data.FileDataStoreListReferenceFND != nil:
			// Already collected in the first pass; just skip past it here.
			c.Next()

		case node.Data.ObjectSpaceManifestListReferenceFND != nil:
			space, ok, err := tryParseObjectSpace(c, fds)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, errs.New(errs.MalformedOneStoreData, "expected an object space manifest list reference")
			}
			oneStore.ObjectSpaces[space.ID] = space

		case node.Data.ObjectSpaceManifestRootFND != nil:
			rootGosid = node.Data.ObjectSpaceManifestRootFND.GosidRoot
			haveRoot = true
			c.Next()

		default:
			return nil, errs.New(errs.MalformedOneStoreData, "unexpected entry in root file node list: 0x%x", node.NodeTypeID)
		}

		idx := c.Index()
		if idx == lastIndex {
			return nil, errs.New(errs.ParseValidationFailed, "root file node list parsing made no progress")
		}
		lastIndex = idx
	}

	if !haveRoot {
		return nil, errs.New(errs.MalformedOneStoreData, "root file node list did not declare a root object space")
	}
	if _, ok := oneStore.ObjectSpaces[rootGosid]; !ok {
		return nil, errs.New(errs.MalformedOneStoreData, "root object space id %v was not found among the parsed object spaces", rootGosid)
	}
	oneStore.DataRoot = rootGosid

	return oneStore, nil
}

// findFileDataStore makes the first pass over the root file node list:
// MS-ONESTORE 2.1.14 allows at most one FileDataStoreListReferenceFND.
func findFileDataStore(nodes []legacyfile.FileNode) (*fileDataStore, error) {
	c := newNodeCursor(nodes)
	var found *fileDataStore

	lastIndex := c.Index()
	for {
		if _, ok := c.Peek(); !ok {
			break
		}

		store, ok, err := tryParseFileDataStore(c)
		if err != nil {
			return nil, err
		}
		if ok {
			if found != nil {
				return nil, errs.New(errs.MalformedOneStoreData, "root file node list contains more than one file data store")
			}
			found = store
		} else {
			c.Next()
		}

		idx := c.Index()
		if idx == lastIndex {
			return nil, errs.New(errs.ParseValidationFailed, "file data store scan made no progress")
		}
		lastIndex = idx
	}

	return found, nil
}
