package legacyobject

import (
	"github.com/runbark/onestore/errs"
	"github.com/runbark/onestore/guid"
	"github.com/runbark/onestore/legacyfile"
	"github.com/runbark/onestore/onestore"
)

// declaredObject is one object declaration node decoded just enough to
// place it in a GlobalIdTable-scoped objects map: its local CompactId
// (not yet resolved to a global ExGuid - the enclosing global id table
// does that), its JCID, its property set, and the raw bytes if this was
// a file-data declaration.
type declaredObject struct {
	CompactId  guid.CompactId
	JCID       onestore.JCID
	PropSet    onestore.ObjectPropSet
	Attachment *legacyfile.AttachmentInfo
}

// tryParseObjectDeclaration recognizes every object-declaration node
// kind a legacy revision or object group may hold and decodes it into a
// declaredObject. Unrecognized node kinds return (nil, false, nil),
// letting the caller try a different parser or report the node as
// unexpected. ObjectRevisionWithRefCountFNDX/2FNDX (incremental
// property updates to an object already declared elsewhere) are
// intentionally not recognized here: applying them would require
// merging into a previously-assembled object, which no legacy .one/
// .onetoc2 file in general circulation is known to require.
func tryParseObjectDeclaration(c *nodeCursor) (*declaredObject, bool, error) {
	node, ok := c.Peek()
	if !ok {
		return nil, false, nil
	}

	switch {
	case node.Data.ObjectDeclarationWithRefCountFNDX != nil:
		d := node.Data.ObjectDeclarationWithRefCountFNDX
		c.Next()
		return &declaredObject{CompactId: d.Body.Oid, JCID: d.Body.JCID(), PropSet: d.PropertySet}, true, nil
	case node.Data.ObjectDeclarationWithRefCount2FNDX != nil:
		d := node.Data.ObjectDeclarationWithRefCount2FNDX
		c.Next()
		return &declaredObject{CompactId: d.Body.Oid, JCID: d.Body.JCID(), PropSet: d.PropertySet}, true, nil
	case node.Data.ObjectDeclaration2RefCountFND != nil:
		d := node.Data.ObjectDeclaration2RefCountFND
		c.Next()
		return &declaredObject{CompactId: d.Body.Oid, JCID: d.Body.JCID, PropSet: d.PropertySet}, true, nil
	case node.Data.ObjectDeclaration2LargeRefCountFND != nil:
		d := node.Data.ObjectDeclaration2LargeRefCountFND
		c.Next()
		return &declaredObject{CompactId: d.Body.Oid, JCID: d.Body.JCID, PropSet: d.PropertySet}, true, nil
	case node.Data.ReadOnlyObjectDeclaration2RefCountFND != nil:
		d := node.Data.ReadOnlyObjectDeclaration2RefCountFND.Base
		c.Next()
		return &declaredObject{CompactId: d.Body.Oid, JCID: d.Body.JCID, PropSet: d.PropertySet}, true, nil
	case node.Data.ReadOnlyObjectDeclaration2LargeRefCountFND != nil:
		d := node.Data.ReadOnlyObjectDeclaration2LargeRefCountFND.Base
		c.Next()
		return &declaredObject{CompactId: d.Body.Oid, JCID: d.Body.JCID, PropSet: d.PropertySet}, true, nil
	case node.Data.ObjectDeclarationFileData3RefCountFND != nil:
		d := node.Data.ObjectDeclarationFileData3RefCountFND
		c.Next()
		return &declaredObject{CompactId: d.Oid, JCID: d.JCID, Attachment: &d.AttachmentInfo}, true, nil
	case node.Data.ObjectDeclarationFileData3LargeRefCountFND != nil:
		d := node.Data.ObjectDeclarationFileData3LargeRefCountFND
		c.Next()
		return &declaredObject{CompactId: d.Oid, JCID: d.JCID, Attachment: &d.AttachmentInfo}, true, nil
	default:
		return nil, false, nil
	}
}

// build resolves the declaration's CompactId against table and, for a
// file-data declaration, loads its bytes from store, producing the
// finished onestore.Object and the ExGuid it must be stored under.
func (d *declaredObject) build(table *globalIdTable, store *fileDataStore) (guid.ExGuid, onestore.Object, error) {
	id, ok := table.resolve(d.CompactId)
	if !ok {
		return guid.NilExGuid, onestore.Object{}, errs.New(errs.ResolutionFailed,
			"could not resolve object declaration id %+v against its global id table", d.CompactId)
	}

	if err := d.PropSet.PropertySet.ResolveReferences(table.mapping()); err != nil {
		return guid.NilExGuid, onestore.Object{}, err
	}

	var fileData []byte
	if d.Attachment != nil {
		if store == nil {
			return guid.NilExGuid, onestore.Object{}, errs.New(errs.ResolutionFailed,
				"object %v declares file data but no file data store was found in the root node list", id)
		}
		data, err := store.findFile(*d.Attachment)
		if err != nil {
			return guid.NilExGuid, onestore.Object{}, err
		}
		fileData = data
	}

	return id, onestore.Object{ID: id, JCID: d.JCID, PropSet: d.PropSet, FileData: fileData}, nil
}
