package legacyobject

import (
	"github.com/sirupsen/logrus"

	"github.com/runbark/onestore/errs"
	"github.com/runbark/onestore/guid"
	"github.com/runbark/onestore/legacyfile"
	"github.com/runbark/onestore/onestore"
)

// globalIdTable is the guid_index -> Guid table a GlobalIdTableStartFNDX/
// GlobalIdTableStart2FND .. GlobalIdTableEndFNDX run builds: the basis
// for resolving every CompactId an object declaration in the same scope
// carries (MS-ONESTORE 2.1.3).
type globalIdTable struct {
	table map[uint32]guid.Guid
}

// mapping adapts this table to onestore.MappingTable, wrapping it in the
// already-implemented LegacyMapping so PropertySet.ResolveReferences can
// be called against it directly.
func (t *globalIdTable) mapping() *onestore.LegacyMapping {
	return onestore.NewLegacyMapping(t.table)
}

// resolve looks a CompactId up directly, the same rule LegacyMapping
// applies, used to resolve an object's own declared id (not its
// properties' references) to the ExGuid it is stored under.
func (t *globalIdTable) resolve(id guid.CompactId) (guid.ExGuid, bool) {
	g, ok := t.table[id.GuidIndex]
	if !ok {
		return guid.NilExGuid, false
	}
	return guid.ExGuid{Guid: g, Value: uint32(id.N)}, true
}

// isGlobalIdTableStart reports whether the node opens a global id table.
func isGlobalIdTableStart(n *legacyfile.FileNode) bool {
	return n.NodeTypeID == legacyfile.NodeTypeGlobalIdTableStartFNDX || n.NodeTypeID == legacyfile.NodeTypeGlobalIdTableStart2FND
}

// tryParseGlobalIdTable consumes a GlobalIdTableStartFNDX/Start2FND ..
// GlobalIdTableEndFNDX run at the cursor, if one is present.
func tryParseGlobalIdTable(c *nodeCursor) (*globalIdTable, bool, error) {
	start, ok := c.Peek()
	if !ok || !isGlobalIdTableStart(start) {
		return nil, false, nil
	}
	c.Next()

	t := &globalIdTable{table: make(map[uint32]guid.Guid)}
	for {
		node, ok := c.Peek()
		if !ok {
			return nil, false, errs.New(errs.MalformedOneStoreData, "global id table did not end with a GlobalIdTableEndFNDX")
		}
		switch {
		case node.NodeTypeID == legacyfile.NodeTypeGlobalIdTableEndFNDX:
			c.Next()
			return t, true, nil
		case node.Data.GlobalIdTableEntryFNDX != nil:
			e := node.Data.GlobalIdTableEntryFNDX
			t.table[e.Index] = e.Guid
			c.Next()
		case node.Data.GlobalIdTableEntry2FNDX != nil:
			e := node.Data.GlobalIdTableEntry2FNDX
			if g, ok := t.table[e.IIndexMapFrom]; ok {
				t.table[e.IIndexMapTo] = g
			} else {
				logrus.Warnf("legacyobject: GlobalIdTableEntry2FNDX maps from unset index %d", e.IIndexMapFrom)
			}
			c.Next()
		case node.Data.GlobalIdTableEntry3FNDX != nil:
			e := node.Data.GlobalIdTableEntry3FNDX
			for i := uint32(0); i < e.CEntriesToCopy; i++ {
				if g, ok := t.table[e.IIndexCopyFromStart+i]; ok {
					t.table[e.IIndexCopyToStart+i] = g
				} else {
					logrus.Warnf("legacyobject: GlobalIdTableEntry3FNDX maps from unset index %d", e.IIndexCopyFromStart+i)
				}
			}
			c.Next()
		case node.Data.UnknownNode != nil:
			logrus.Warnf("legacyobject: unknown node skipped while parsing global id table")
			c.Next()
		default:
			return nil, false, errs.New(errs.MalformedOneStoreData, "unexpected node 0x%x encountered while parsing global id table", node.NodeTypeID)
		}
	}
}
