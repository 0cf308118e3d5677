package legacyobject

import (
	"github.com/runbark/onestore/errs"
	"github.com/runbark/onestore/guid"
	"github.com/runbark/onestore/legacyfile"
	"github.com/runbark/onestore/onestore"
)

// parseObjectGroup consumes one object group at the cursor, reached
// either through an ObjectGroupListReferenceFND's nested list or
// (inside a revision) an inline ObjectGroupStartFND run, merging every
// object it declares into objects.
func parseObjectGroup(c *nodeCursor, objects map[guid.ExGuid]onestore.Object, fds *fileDataStore) error {
	node, ok := c.Peek()
	if !ok {
		return errs.New(errs.MalformedOneStoreData, "expected an object group")
	}
	if node.Data.ObjectGroupListReferenceFND != nil {
		c.Next()
		inner := newNodeCursor(node.Data.ObjectGroupListReferenceFND.List.Nodes)
		return parseObjectGroupBody(inner, objects, fds)
	}
	return parseObjectGroupBody(c, objects, fds)
}

// parseObjectGroupBody reads the ObjectGroupStartFND .. ObjectGroupEndFND
// run itself: a global id table, then a mix of object declarations
// (merged with or_insert semantics - the earliest-seen revision of an
// object wins), ignored DataSignatureGroupDefinitionFND nodes, and
// ignored ObjectInfoDependencyOverridesFND ref-count-only nodes (MS-
// ONESTORE 2.1.13).
func parseObjectGroupBody(c *nodeCursor, objects map[guid.ExGuid]onestore.Object, fds *fileDataStore) error {
	start, ok := c.Next()
	if !ok || start.NodeTypeID != legacyfile.NodeTypeObjectGroupStartFND {
		return errs.New(errs.MalformedOneStoreData, "object group lists must start with an ObjectGroupStartFND node")
	}

	table, ok, err := tryParseGlobalIdTable(c)
	if err != nil {
		return err
	}
	if !ok {
		return errs.New(errs.MalformedOneStoreData, "global id table not found in object group")
	}

	lastIndex := c.Index()
	for {
		node, ok := c.Peek()
		if !ok {
			return errs.New(errs.MalformedOneStoreData, "object group did not end with an ObjectGroupEndFND")
		}
		switch {
		case node.NodeTypeID == legacyfile.NodeTypeObjectGroupEndFND:
			c.Next()
			return nil
		case node.Data.DataSignatureGroupDefinitionFND != nil:
			c.Next()
		case node.Data.ObjectInfoDependencyOverridesFND != nil:
			c.Next()
		default:
			decl, ok, err := tryParseObjectDeclaration(c)
			if err != nil {
				return err
			}
			if !ok {
				return errs.New(errs.MalformedOneStoreData, "unexpected node 0x%x in object group", node.NodeTypeID)
			}
			id, obj, err := decl.build(table, fds)
			if err != nil {
				return err
			}
			if _, exists := objects[id]; !exists {
				objects[id] = obj
			}
		}

		idx := c.Index()
		if idx == lastIndex {
			return errs.New(errs.ParseValidationFailed, "object group parsing made no progress")
		}
		lastIndex = idx
	}
}
