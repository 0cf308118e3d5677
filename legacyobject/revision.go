package legacyobject

import (
	"github.com/sirupsen/logrus"

	"github.com/runbark/onestore/errs"
	"github.com/runbark/onestore/guid"
	"github.com/runbark/onestore/legacyfile"
	"github.com/runbark/onestore/onestore"
)

// toRevisionRole validates a wire root-role value against the four roles
// MS-ONESTORE 2.1.4 defines.
func toRevisionRole(v uint32) (onestore.RevisionRole, error) {
	switch onestore.RevisionRole(v) {
	case onestore.RevisionRoleDefaultContent, onestore.RevisionRoleMetadata,
		onestore.RevisionRoleEncryptionKey, onestore.RevisionRoleVersionMetadata:
		return onestore.RevisionRole(v), nil
	default:
		return 0, errs.New(errs.MalformedOneStoreData, "invalid revision root role %d", v)
	}
}

// parseRevision consumes one RevisionManifestStart4/6/7FND .. RevisionManifestEndFND
// run at the cursor, merging every object group and inline (.onetoc2)
// object declaration it contains into objects, and every root object
// reference into roots. It returns the revision's own id so the caller
// can track which revisions a later RevisionRoleAndContextDeclarationFND
// is allowed to reference.
func parseRevision(c *nodeCursor, roots map[onestore.RevisionRole]guid.ExGuid, objects map[guid.ExGuid]onestore.Object, fds *fileDataStore) (guid.ExGuid, error) {
	start, ok := c.Next()
	if !ok {
		return guid.NilExGuid, errs.New(errs.MalformedOneStoreData, "expected a revision manifest start node")
	}

	var rid guid.ExGuid
	switch {
	case start.Data.RevisionManifestStart4FND != nil:
		rid = start.Data.RevisionManifestStart4FND.Rid
	case start.Data.RevisionManifestStart6FND != nil:
		rid = start.Data.RevisionManifestStart6FND.Rid
	case start.Data.RevisionManifestStart7FND != nil:
		rid = start.Data.RevisionManifestStart7FND.Base.Rid
	default:
		return guid.NilExGuid, errs.New(errs.MalformedOneStoreData, "invalid start node for revision: 0x%x", start.NodeTypeID)
	}

	// tables accumulates every global id table seen in this revision, in
	// order: RootObjectReference2FNDX resolves a CompactId against the
	// most recently parsed one.
	var tables []*globalIdTable

	lastIndex := c.Index()
	for {
		node, ok := c.Peek()
		if !ok {
			return guid.NilExGuid, errs.New(errs.MalformedOneStoreData, "revision did not end with a RevisionManifestEndFND")
		}

		switch {
		case node.NodeTypeID == legacyfile.NodeTypeRevisionManifestEndFND:
			c.Next()
			return rid, nil

		case node.Data.ObjectGroupListReferenceFND != nil || node.NodeTypeID == legacyfile.NodeTypeObjectGroupStartFND:
			if err := parseObjectGroup(c, objects, fds); err != nil {
				return guid.NilExGuid, err
			}
			if n, ok := c.Peek(); ok && n.Data.ObjectInfoDependencyOverridesFND != nil {
				c.Next()
			}

		case isGlobalIdTableStart(node):
			// .onetoc2 files declare objects directly in the revision,
			// following a bare global id table (no surrounding object
			// group).
			table, ok, err := tryParseGlobalIdTable(c)
			if err != nil {
				return guid.NilExGuid, err
			}
			if !ok {
				return guid.NilExGuid, errs.New(errs.MalformedOneStoreData, "malformed global id table in revision")
			}
			if n, ok := c.Peek(); ok && n.Data.DataSignatureGroupDefinitionFND != nil {
				c.Next()
			}
			for {
				decl, ok, err := tryParseObjectDeclaration(c)
				if err != nil {
					return guid.NilExGuid, err
				}
				if !ok {
					break
				}
				id, obj, err := decl.build(table, fds)
				if err != nil {
					return guid.NilExGuid, err
				}
				if _, exists := objects[id]; !exists {
					objects[id] = obj
				}
				if n, ok := c.Peek(); ok && n.Data.ObjectInfoDependencyOverridesFND != nil {
					c.Next()
				}
			}
			tables = append(tables, table)

		case node.Data.RootObjectReference3FND != nil:
			c.Next()
			d := node.Data.RootObjectReference3FND
			role, err := toRevisionRole(d.RootRole)
			if err != nil {
				return guid.NilExGuid, err
			}
			if _, exists := roots[role]; exists {
				logrus.Warnf("legacyobject: root role %v already declared in revision, ignoring duplicate", role)
			} else {
				roots[role] = d.OidRoot
			}

		case node.Data.RootObjectReference2FNDX != nil:
			c.Next()
			d := node.Data.RootObjectReference2FNDX
			if len(tables) == 0 {
				return guid.NilExGuid, errs.New(errs.ResolutionFailed, "RootObjectReference2FNDX with no preceding global id table in revision")
			}
			oidRoot, ok := tables[len(tables)-1].resolve(d.OidRoot)
			if !ok {
				return guid.NilExGuid, errs.New(errs.ResolutionFailed, "could not resolve root object reference %+v", d.OidRoot)
			}
			role, err := toRevisionRole(d.RootRole)
			if err != nil {
				return guid.NilExGuid, err
			}
			if _, exists := roots[role]; !exists {
				roots[role] = oidRoot
			}

		case node.Data.DataSignatureGroupDefinitionFND != nil:
			c.Next()

		default:
			return guid.NilExGuid, errs.New(errs.MalformedOneStoreData, "unexpected node 0x%x encountered parsing revision", node.NodeTypeID)
		}

		idx := c.Index()
		if idx == lastIndex {
			return guid.NilExGuid, errs.New(errs.ParseValidationFailed, "revision parsing made no progress")
		}
		lastIndex = idx
	}
}

// parseRevisionManifestListBody walks the revisions of a single object
// space, in order, from just after the list's own RevisionManifestListStartFND
// up to and including its RevisionManifestEndFND, merging every
// revision's roots/objects together (earliest revision wins).
func parseRevisionManifestListBody(c *nodeCursor, roots map[onestore.RevisionRole]guid.ExGuid, objects map[guid.ExGuid]onestore.Object, fds *fileDataStore) error {
	revisionsSeen := make(map[guid.ExGuid]bool)

	lastIndex := c.Index()
	for {
		node, ok := c.Peek()
		if !ok {
			return errs.New(errs.MalformedOneStoreData, "revision manifest list did not end with a RevisionManifestEndFND")
		}

		switch {
		case node.NodeTypeID == legacyfile.NodeTypeRevisionManifestEndFND:
			c.Next()
			return nil

		case node.Data.RevisionRoleDeclarationFND != nil:
			c.Next()

		case node.Data.RevisionRoleAndContextDeclarationFND != nil:
			baseRid := node.Data.RevisionRoleAndContextDeclarationFND.Base.Rid
			c.Next()
			if !revisionsSeen[baseRid] {
				return errs.New(errs.MalformedOneStoreData, "RevisionRoleAndContextDeclarationFND points to an unknown revision")
			}
			logrus.Warnf("legacyobject: RevisionRoleAndContextDeclarationFND seen, role/context override for revision %v not applied", baseRid)

		default:
			rid, err := parseRevision(c, roots, objects, fds)
			if err != nil {
				return err
			}
			revisionsSeen[rid] = true
		}

		idx := c.Index()
		if idx == lastIndex {
			return errs.New(errs.ParseValidationFailed, "revision manifest list parsing made no progress")
		}
		lastIndex = idx
	}
}
