package legacyfile

import (
	"github.com/runbark/onestore/errs"
	"github.com/runbark/onestore/guid"
	"github.com/runbark/onestore/reader"
)

// ObjectSpaceManifestRootFND names the object space that is the file's
// root (in FSSHTTPB terms, the data root cell).
type ObjectSpaceManifestRootFND struct {
	GosidRoot guid.ExGuid
}

func parseObjectSpaceManifestRootFND(r *reader.Reader) (ObjectSpaceManifestRootFND, error) {
	g, err := guid.ParseExGuid(r)
	if err != nil {
		return ObjectSpaceManifestRootFND{}, err
	}
	return ObjectSpaceManifestRootFND{GosidRoot: g}, nil
}

// ObjectSpaceManifestListStartFND opens the nested list an
// ObjectSpaceManifestListReferenceFND points at: an object-space id
// followed by one RevisionManifestListReferenceFND per revision list
// declared for that space.
type ObjectSpaceManifestListStartFND struct {
	Gosid guid.ExGuid
}

func parseObjectSpaceManifestListStartFND(r *reader.Reader) (ObjectSpaceManifestListStartFND, error) {
	g, err := guid.ParseExGuid(r)
	if err != nil {
		return ObjectSpaceManifestListStartFND{}, err
	}
	return ObjectSpaceManifestListStartFND{Gosid: g}, nil
}

// ObjectSpaceManifestListReferenceFND names an object space and resolves
// its nested list down to the single RevisionManifestListReferenceFND
// that governs it: the list must begin with an
// ObjectSpaceManifestListStartFND and contain at least one
// RevisionManifestListReferenceFND after it, and only the LAST such
// reference is reachable - every earlier one is structurally superseded
// (MS-ONESTORE 2.1.6).
type ObjectSpaceManifestListReferenceFND struct {
	Gosid        guid.ExGuid
	LastRevision PointerToListFND
}

func parseObjectSpaceManifestListReferenceFND(r *reader.Reader, ref FileNodeDataRef) (ObjectSpaceManifestListReferenceFND, error) {
	if ref.Kind != FileNodeDataRefKindElementList {
		return ObjectSpaceManifestListReferenceFND{}, errs.New(errs.MalformedOneStoreData,
			"ObjectSpaceManifestListReferenceFND must point to a list of elements")
	}
	nodes := ref.List.Nodes
	for i, node := range nodes {
		if i == 0 {
			if node.Data.ObjectSpaceManifestListStartFND == nil {
				return ObjectSpaceManifestListReferenceFND{}, errs.New(errs.MalformedOneStoreData,
					"ObjectSpaceManifestListReferenceFND's list must start with an ObjectSpaceManifestListStartFND")
			}
			continue
		}
		if node.Data.RevisionManifestListReferenceFND == nil {
			return ObjectSpaceManifestListReferenceFND{}, errs.New(errs.MalformedOneStoreData,
				"all items following the first in an ObjectSpaceManifestListReferenceFND's list must be RevisionManifestListReferenceFNDs")
		}
	}
	var lastRevision *PointerToListFND
	for i := len(nodes) - 1; i >= 0; i-- {
		if nodes[i].Data.RevisionManifestListReferenceFND != nil {
			lastRevision = nodes[i].Data.RevisionManifestListReferenceFND
			break
		}
	}
	if lastRevision == nil {
		return ObjectSpaceManifestListReferenceFND{}, errs.New(errs.MalformedOneStoreData,
			"ObjectSpaceManifestListReferenceFND must point to a list with at least one revision")
	}
	gosid, err := guid.ParseExGuid(r)
	if err != nil {
		return ObjectSpaceManifestListReferenceFND{}, err
	}
	return ObjectSpaceManifestListReferenceFND{Gosid: gosid, LastRevision: *lastRevision}, nil
}

// RevisionManifestListStartFND opens a revision manifest list: the
// object space it belongs to and an instance counter.
type RevisionManifestListStartFND struct {
	Gsoid     guid.ExGuid
	NInstance uint32
}

func parseRevisionManifestListStartFND(r *reader.Reader) (RevisionManifestListStartFND, error) {
	gsoid, err := guid.ParseExGuid(r)
	if err != nil {
		return RevisionManifestListStartFND{}, err
	}
	nInstance, err := r.GetU32()
	if err != nil {
		return RevisionManifestListStartFND{}, err
	}
	return RevisionManifestListStartFND{Gsoid: gsoid, NInstance: nInstance}, nil
}

// RevisionManifestStart4FND opens the oldest of the three revision-start
// record shapes: a revision id, its base revision, a reserved creation
// timestamp, a role and a default-object-space-context-stream flag.
type RevisionManifestStart4FND struct {
	Rid             guid.ExGuid
	RidDependent    guid.ExGuid
	RevisionRole    uint32
	OdcsDefault     uint16
}

func parseRevisionManifestStart4FND(r *reader.Reader) (RevisionManifestStart4FND, error) {
	rid, err := guid.ParseExGuid(r)
	if err != nil {
		return RevisionManifestStart4FND{}, err
	}
	ridDependent, err := guid.ParseExGuid(r)
	if err != nil {
		return RevisionManifestStart4FND{}, err
	}
	if err := r.Advance(8); err != nil { // reserved_time_creation
		return RevisionManifestStart4FND{}, err
	}
	role, err := r.GetU32()
	if err != nil {
		return RevisionManifestStart4FND{}, err
	}
	odcs, err := r.GetU16()
	if err != nil {
		return RevisionManifestStart4FND{}, err
	}
	return RevisionManifestStart4FND{Rid: rid, RidDependent: ridDependent, RevisionRole: role, OdcsDefault: odcs}, nil
}

// RevisionManifestStart6FND drops the reserved creation timestamp
// RevisionManifestStart4FND carries.
type RevisionManifestStart6FND struct {
	Rid          guid.ExGuid
	RidDependent guid.ExGuid
	RevisionRole uint32
	OdcsDefault  uint16
}

func parseRevisionManifestStart6FND(r *reader.Reader) (RevisionManifestStart6FND, error) {
	rid, err := guid.ParseExGuid(r)
	if err != nil {
		return RevisionManifestStart6FND{}, err
	}
	ridDependent, err := guid.ParseExGuid(r)
	if err != nil {
		return RevisionManifestStart6FND{}, err
	}
	role, err := r.GetU32()
	if err != nil {
		return RevisionManifestStart6FND{}, err
	}
	odcs, err := r.GetU16()
	if err != nil {
		return RevisionManifestStart6FND{}, err
	}
	return RevisionManifestStart6FND{Rid: rid, RidDependent: ridDependent, RevisionRole: role, OdcsDefault: odcs}, nil
}

// RevisionManifestStart7FND adds an explicit revision-context id on top
// of RevisionManifestStart6FND.
type RevisionManifestStart7FND struct {
	Base  RevisionManifestStart6FND
	Gctxid guid.ExGuid
}

func parseRevisionManifestStart7FND(r *reader.Reader) (RevisionManifestStart7FND, error) {
	base, err := parseRevisionManifestStart6FND(r)
	if err != nil {
		return RevisionManifestStart7FND{}, err
	}
	gctxid, err := guid.ParseExGuid(r)
	if err != nil {
		return RevisionManifestStart7FND{}, err
	}
	return RevisionManifestStart7FND{Base: base, Gctxid: gctxid}, nil
}

// RevisionRoleDeclarationFND points at a revision and declares its
// role. The legacy object-assembly path skips these declarations; of the
// context-carrying RevisionRoleAndContextDeclarationFND below it only
// checks that the named revision was already seen, and does not apply
// its role or context.
type RevisionRoleDeclarationFND struct {
	Rid          guid.ExGuid
	RevisionRole uint32
}

func parseRevisionRoleDeclarationFND(r *reader.Reader) (RevisionRoleDeclarationFND, error) {
	rid, err := guid.ParseExGuid(r)
	if err != nil {
		return RevisionRoleDeclarationFND{}, err
	}
	role, err := r.GetU32()
	if err != nil {
		return RevisionRoleDeclarationFND{}, err
	}
	return RevisionRoleDeclarationFND{Rid: rid, RevisionRole: role}, nil
}

// RevisionRoleAndContextDeclarationFND is RevisionRoleDeclarationFND
// plus the revision context id.
type RevisionRoleAndContextDeclarationFND struct {
	Base  RevisionRoleDeclarationFND
	Gctxid guid.ExGuid
}

func parseRevisionRoleAndContextDeclarationFND(r *reader.Reader) (RevisionRoleAndContextDeclarationFND, error) {
	base, err := parseRevisionRoleDeclarationFND(r)
	if err != nil {
		return RevisionRoleAndContextDeclarationFND{}, err
	}
	gctxid, err := guid.ParseExGuid(r)
	if err != nil {
		return RevisionRoleAndContextDeclarationFND{}, err
	}
	return RevisionRoleAndContextDeclarationFND{Base: base, Gctxid: gctxid}, nil
}

// RootObjectReference2FNDX is the .onetoc2 shape of a root declaration:
// its object id is a CompactId resolved through the enclosing revision's
// most-recently-declared GlobalIdTable.
type RootObjectReference2FNDX struct {
	OidRoot  guid.CompactId
	RootRole uint32
}

func parseRootObjectReference2FNDX(r *reader.Reader) (RootObjectReference2FNDX, error) {
	oidRoot, err := guid.ParseCompactId(r)
	if err != nil {
		return RootObjectReference2FNDX{}, err
	}
	role, err := r.GetU32()
	if err != nil {
		return RootObjectReference2FNDX{}, err
	}
	return RootObjectReference2FNDX{OidRoot: oidRoot, RootRole: role}, nil
}

// RootObjectReference3FND is the .one shape of a root declaration: its
// object id is a direct ExGuid, needing no table resolution.
type RootObjectReference3FND struct {
	OidRoot  guid.ExGuid
	RootRole uint32
}

func parseRootObjectReference3FND(r *reader.Reader) (RootObjectReference3FND, error) {
	oidRoot, err := guid.ParseExGuid(r)
	if err != nil {
		return RootObjectReference3FND{}, err
	}
	role, err := r.GetU32()
	if err != nil {
		return RootObjectReference3FND{}, err
	}
	return RootObjectReference3FND{OidRoot: oidRoot, RootRole: role}, nil
}

// GlobalIdTableStartFNDX opens a global id table; its one byte is
// reserved and carries no information this decoder uses.
type GlobalIdTableStartFNDX struct {
	reserved uint8
}

func parseGlobalIdTableStartFNDX(r *reader.Reader) (GlobalIdTableStartFNDX, error) {
	b, err := r.GetU8()
	if err != nil {
		return GlobalIdTableStartFNDX{}, err
	}
	return GlobalIdTableStartFNDX{reserved: b}, nil
}

// GlobalIdTableEntryFNDX adds one (index -> Guid) mapping to the table
// under construction.
type GlobalIdTableEntryFNDX struct {
	Index uint32
	Guid  guid.Guid
}

func parseGlobalIdTableEntryFNDX(r *reader.Reader) (GlobalIdTableEntryFNDX, error) {
	idx, err := r.GetU32()
	if err != nil {
		return GlobalIdTableEntryFNDX{}, err
	}
	g, err := guid.Parse(r)
	if err != nil {
		return GlobalIdTableEntryFNDX{}, err
	}
	return GlobalIdTableEntryFNDX{Index: idx, Guid: g}, nil
}

// GlobalIdTableEntry2FNDX copies one entry already in the table under
// construction to a new index, aliasing an earlier Guid rather than
// introducing a new one.
type GlobalIdTableEntry2FNDX struct {
	IIndexMapFrom uint32
	IIndexMapTo   uint32
}

func parseGlobalIdTableEntry2FNDX(r *reader.Reader) (GlobalIdTableEntry2FNDX, error) {
	from, err := r.GetU32()
	if err != nil {
		return GlobalIdTableEntry2FNDX{}, err
	}
	to, err := r.GetU32()
	if err != nil {
		return GlobalIdTableEntry2FNDX{}, err
	}
	return GlobalIdTableEntry2FNDX{IIndexMapFrom: from, IIndexMapTo: to}, nil
}

// GlobalIdTableEntry3FNDX copies a contiguous RUN of entries already in
// the table to a new contiguous range starting at IIndexCopyToStart.
type GlobalIdTableEntry3FNDX struct {
	IIndexCopyFromStart uint32
	CEntriesToCopy      uint32
	IIndexCopyToStart   uint32
}

func parseGlobalIdTableEntry3FNDX(r *reader.Reader) (GlobalIdTableEntry3FNDX, error) {
	from, err := r.GetU32()
	if err != nil {
		return GlobalIdTableEntry3FNDX{}, err
	}
	count, err := r.GetU32()
	if err != nil {
		return GlobalIdTableEntry3FNDX{}, err
	}
	to, err := r.GetU32()
	if err != nil {
		return GlobalIdTableEntry3FNDX{}, err
	}
	return GlobalIdTableEntry3FNDX{IIndexCopyFromStart: from, CEntriesToCopy: count, IIndexCopyToStart: to}, nil
}
