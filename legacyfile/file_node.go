package legacyfile

import (
	"github.com/sirupsen/logrus"

	"github.com/runbark/onestore/errs"
	"github.com/runbark/onestore/reader"
)

// NodeTypeID identifies the shape of a file node's body (MS-ONESTORE
// 2.4.3's roughly 40-entry table).
type NodeTypeID uint32

const (
	NodeTypeObjectSpaceManifestRootFND               NodeTypeID = 0x004
	NodeTypeObjectSpaceManifestListReferenceFND      NodeTypeID = 0x008
	NodeTypeObjectSpaceManifestListStartFND          NodeTypeID = 0x00C
	NodeTypeRevisionManifestListReferenceFND         NodeTypeID = 0x010
	NodeTypeRevisionManifestListStartFND             NodeTypeID = 0x014
	NodeTypeRevisionManifestStart4FND                NodeTypeID = 0x01B
	NodeTypeRevisionManifestEndFND                   NodeTypeID = 0x01C
	NodeTypeRevisionManifestStart6FND                NodeTypeID = 0x01E
	NodeTypeRevisionManifestStart7FND                NodeTypeID = 0x01F
	NodeTypeGlobalIdTableStartFNDX                   NodeTypeID = 0x021
	NodeTypeGlobalIdTableStart2FND                   NodeTypeID = 0x022
	NodeTypeGlobalIdTableEntryFNDX                   NodeTypeID = 0x024
	NodeTypeGlobalIdTableEntry2FNDX                  NodeTypeID = 0x025
	NodeTypeGlobalIdTableEntry3FNDX                  NodeTypeID = 0x026
	NodeTypeGlobalIdTableEndFNDX                     NodeTypeID = 0x028
	NodeTypeObjectDeclarationWithRefCountFNDX        NodeTypeID = 0x02D
	NodeTypeObjectDeclarationWithRefCount2FNDX       NodeTypeID = 0x02E
	NodeTypeObjectRevisionWithRefCountFNDX           NodeTypeID = 0x041
	NodeTypeObjectRevisionWithRefCount2FNDX          NodeTypeID = 0x042
	NodeTypeRootObjectReference2FNDX                 NodeTypeID = 0x059
	NodeTypeRootObjectReference3FND                  NodeTypeID = 0x05A
	NodeTypeRevisionRoleDeclarationFND               NodeTypeID = 0x05C
	NodeTypeRevisionRoleAndContextDeclarationFND     NodeTypeID = 0x05D
	NodeTypeObjectDeclarationFileData3RefCountFND    NodeTypeID = 0x072
	NodeTypeObjectDeclarationFileData3LargeRefCountFND NodeTypeID = 0x073
	NodeTypeObjectDataEncryptionKeyV2FNDX            NodeTypeID = 0x07C
	NodeTypeObjectInfoDependencyOverridesFND         NodeTypeID = 0x084
	NodeTypeDataSignatureGroupDefinitionFND          NodeTypeID = 0x08C
	NodeTypeFileDataStoreListReferenceFND            NodeTypeID = 0x090
	NodeTypeFileDataStoreObjectReferenceFND          NodeTypeID = 0x094
	NodeTypeObjectDeclaration2RefCountFND            NodeTypeID = 0x0A4
	NodeTypeObjectDeclaration2LargeRefCountFND       NodeTypeID = 0x0A5
	NodeTypeObjectGroupListReferenceFND              NodeTypeID = 0x0B0
	NodeTypeObjectGroupStartFND                      NodeTypeID = 0x0B4
	NodeTypeObjectGroupEndFND                        NodeTypeID = 0x0B8
	NodeTypeHashedChunkDescriptor2FND                NodeTypeID = 0x0C2
	NodeTypeReadOnlyObjectDeclaration2RefCountFND    NodeTypeID = 0x0C4
	NodeTypeReadOnlyObjectDeclaration2LargeRefCountFND NodeTypeID = 0x0C5
	NodeTypeChunkTerminatorFND                       NodeTypeID = 0x0FF
	NodeTypeNull                                     NodeTypeID = 0x000
)

// FileNodeDataRefKind selects which field of a FileNodeDataRef, if any,
// is populated: the leader's base_type selects between no referenced
// data, a single fixed-shape chunk, or a nested file-node list.
type FileNodeDataRefKind int

const (
	FileNodeDataRefKindNoData FileNodeDataRefKind = iota
	FileNodeDataRefKindSingleElement
	FileNodeDataRefKindElementList
	FileNodeDataRefKindInvalid
)

// FileNodeDataRef is the data a file node's leader points at, if any.
type FileNodeDataRef struct {
	Kind   FileNodeDataRefKind
	Single FileNodeChunkReference
	List   *FileNodeList
}

// FileNodeData is the decoded body of a file node: exactly one field is
// populated, selected by the node's NodeTypeID. Kinds with no fields of
// their own (RevisionManifestEndFND, GlobalIdTableStart2FND,
// GlobalIdTableEndFNDX, ObjectGroupEndFND, ChunkTerminatorFND, Null) are
// represented purely by their NodeTypeID on the enclosing FileNode, with
// no corresponding field here.
type FileNodeData struct {
	ObjectSpaceManifestRootFND                 *ObjectSpaceManifestRootFND
	ObjectSpaceManifestListReferenceFND        *ObjectSpaceManifestListReferenceFND
	ObjectSpaceManifestListStartFND            *ObjectSpaceManifestListStartFND
	RevisionManifestListReferenceFND           *PointerToListFND
	RevisionManifestListStartFND               *RevisionManifestListStartFND
	RevisionManifestStart4FND                  *RevisionManifestStart4FND
	RevisionManifestStart6FND                  *RevisionManifestStart6FND
	RevisionManifestStart7FND                  *RevisionManifestStart7FND
	GlobalIdTableStartFNDX                      *GlobalIdTableStartFNDX
	GlobalIdTableEntryFNDX                      *GlobalIdTableEntryFNDX
	GlobalIdTableEntry2FNDX                     *GlobalIdTableEntry2FNDX
	GlobalIdTableEntry3FNDX                     *GlobalIdTableEntry3FNDX
	ObjectDeclarationWithRefCountFNDX           *ObjectDeclarationWithRefCountFNDX
	ObjectDeclarationWithRefCount2FNDX          *ObjectDeclarationWithRefCountFNDX
	ObjectRevisionWithRefCountFNDX              *ObjectRevisionWithRefCountFNDX
	ObjectRevisionWithRefCount2FNDX             *ObjectRevisionWithRefCount2FNDX
	RootObjectReference2FNDX                    *RootObjectReference2FNDX
	RootObjectReference3FND                     *RootObjectReference3FND
	RevisionRoleDeclarationFND                  *RevisionRoleDeclarationFND
	RevisionRoleAndContextDeclarationFND        *RevisionRoleAndContextDeclarationFND
	ObjectDeclarationFileData3RefCountFND       *ObjectDeclarationFileDataRefCountFND
	ObjectDeclarationFileData3LargeRefCountFND  *ObjectDeclarationFileDataRefCountFND
	ObjectDataEncryptionKeyV2FNDX               *ObjectDataEncryptionKeyV2FNDX
	ObjectInfoDependencyOverridesFND            *ObjectInfoDependencyOverridesFND
	DataSignatureGroupDefinitionFND             *DataSignatureGroupDefinitionFND
	FileDataStoreListReferenceFND               *PointerToListFND
	FileDataStoreObjectReferenceFND             *FileDataStoreObjectReferenceFND
	ObjectDeclaration2RefCountFND               *ObjectDeclaration2RefCountFND
	ObjectDeclaration2LargeRefCountFND          *ObjectDeclaration2RefCountFND
	ObjectGroupListReferenceFND                 *ObjectGroupListReferenceFND
	ObjectGroupStartFND                         *ObjectGroupStartFND
	HashedChunkDescriptor2FND                   *HashedChunkDescriptor2FND
	ReadOnlyObjectDeclaration2RefCountFND       *ReadOnlyObjectDeclaration2RefCountFND
	ReadOnlyObjectDeclaration2LargeRefCountFND  *ReadOnlyObjectDeclaration2RefCountFND
	UnknownNode                                 *UnknownNode
}

// FileNode is one record of a file-node list: its kind, the number of
// bytes it actually occupied (validated against the leader's declared
// size), and its decoded body.
type FileNode struct {
	NodeTypeID NodeTypeID
	Size       int
	Data       FileNodeData
}

// ParseFileNode reads one file node: a packed 32-bit leader, the
// optional chunk-reference or nested list the leader's base_type
// selects, then the node-kind-specific body.
func ParseFileNode(r *reader.Reader, budget *NodeCountBudget) (FileNode, error) {
	startRemaining := r.Remaining()

	leader, err := r.GetU32()
	if err != nil {
		return FileNode{}, err
	}
	nodeTypeID := NodeTypeID(leader & 0x3ff)
	declaredSize := int((leader >> 10) & 0x1fff)
	stpFormat := (leader >> 23) & 0x3
	cbFormat := (leader >> 25) & 0x3
	baseType := (leader >> 27) & 0xf

	var ref FileNodeDataRef
	switch baseType {
	case 0:
		ref.Kind = FileNodeDataRefKindNoData
	case 1:
		ref.Kind = FileNodeDataRefKindSingleElement
		single, err := ParseFileNodeChunkReference(r, stpFormat, cbFormat)
		if err != nil {
			return FileNode{}, err
		}
		ref.Single = single
	case 2:
		ref.Kind = FileNodeDataRefKindElementList
		listRef, err := ParseFileNodeChunkReference(r, stpFormat, cbFormat)
		if err != nil {
			return FileNode{}, err
		}
		listReader, err := listRef.ResolveToReader(r)
		if err != nil {
			return FileNode{}, err
		}
		list, err := ParseFileNodeList(listReader, budget, int(listRef.Cb()))
		if err != nil {
			return FileNode{}, err
		}
		ref.List = list
	default:
		ref.Kind = FileNodeDataRefKindInvalid
	}

	remainingAfterRef := r.Remaining()

	var data FileNodeData
	switch nodeTypeID {
	case NodeTypeObjectSpaceManifestRootFND:
		v, err := parseObjectSpaceManifestRootFND(r)
		if err != nil {
			return FileNode{}, err
		}
		data.ObjectSpaceManifestRootFND = &v
	case NodeTypeObjectSpaceManifestListReferenceFND:
		v, err := parseObjectSpaceManifestListReferenceFND(r, ref)
		if err != nil {
			return FileNode{}, err
		}
		data.ObjectSpaceManifestListReferenceFND = &v
	case NodeTypeObjectSpaceManifestListStartFND:
		v, err := parseObjectSpaceManifestListStartFND(r)
		if err != nil {
			return FileNode{}, err
		}
		data.ObjectSpaceManifestListStartFND = &v
	case NodeTypeRevisionManifestListReferenceFND:
		v, err := parsePointerToListFND(ref)
		if err != nil {
			return FileNode{}, err
		}
		data.RevisionManifestListReferenceFND = &v
	case NodeTypeRevisionManifestListStartFND:
		v, err := parseRevisionManifestListStartFND(r)
		if err != nil {
			return FileNode{}, err
		}
		data.RevisionManifestListStartFND = &v
	case NodeTypeRevisionManifestStart4FND:
		v, err := parseRevisionManifestStart4FND(r)
		if err != nil {
			return FileNode{}, err
		}
		data.RevisionManifestStart4FND = &v
	case NodeTypeRevisionManifestEndFND:
		// no body
	case NodeTypeRevisionManifestStart6FND:
		v, err := parseRevisionManifestStart6FND(r)
		if err != nil {
			return FileNode{}, err
		}
		data.RevisionManifestStart6FND = &v
	case NodeTypeRevisionManifestStart7FND:
		v, err := parseRevisionManifestStart7FND(r)
		if err != nil {
			return FileNode{}, err
		}
		data.RevisionManifestStart7FND = &v
	case NodeTypeGlobalIdTableStartFNDX:
		v, err := parseGlobalIdTableStartFNDX(r)
		if err != nil {
			return FileNode{}, err
		}
		data.GlobalIdTableStartFNDX = &v
	case NodeTypeGlobalIdTableStart2FND:
		// no body
	case NodeTypeGlobalIdTableEntryFNDX:
		v, err := parseGlobalIdTableEntryFNDX(r)
		if err != nil {
			return FileNode{}, err
		}
		data.GlobalIdTableEntryFNDX = &v
	case NodeTypeGlobalIdTableEntry2FNDX:
		v, err := parseGlobalIdTableEntry2FNDX(r)
		if err != nil {
			return FileNode{}, err
		}
		data.GlobalIdTableEntry2FNDX = &v
	case NodeTypeGlobalIdTableEntry3FNDX:
		v, err := parseGlobalIdTableEntry3FNDX(r)
		if err != nil {
			return FileNode{}, err
		}
		data.GlobalIdTableEntry3FNDX = &v
	case NodeTypeGlobalIdTableEndFNDX:
		// no body
	case NodeTypeObjectDeclarationWithRefCountFNDX:
		v, err := parseObjectDeclarationWithSizedRefCount(r, ref, 1)
		if err != nil {
			return FileNode{}, err
		}
		data.ObjectDeclarationWithRefCountFNDX = &v
	case NodeTypeObjectDeclarationWithRefCount2FNDX:
		v, err := parseObjectDeclarationWithSizedRefCount(r, ref, 4)
		if err != nil {
			return FileNode{}, err
		}
		data.ObjectDeclarationWithRefCount2FNDX = &v
	case NodeTypeObjectRevisionWithRefCountFNDX:
		v, err := parseObjectRevisionWithRefCountFNDX(r, ref)
		if err != nil {
			return FileNode{}, err
		}
		data.ObjectRevisionWithRefCountFNDX = &v
	case NodeTypeObjectRevisionWithRefCount2FNDX:
		v, err := parseObjectRevisionWithRefCount2FNDX(r, ref)
		if err != nil {
			return FileNode{}, err
		}
		data.ObjectRevisionWithRefCount2FNDX = &v
	case NodeTypeRootObjectReference2FNDX:
		v, err := parseRootObjectReference2FNDX(r)
		if err != nil {
			return FileNode{}, err
		}
		data.RootObjectReference2FNDX = &v
	case NodeTypeRootObjectReference3FND:
		v, err := parseRootObjectReference3FND(r)
		if err != nil {
			return FileNode{}, err
		}
		data.RootObjectReference3FND = &v
	case NodeTypeRevisionRoleDeclarationFND:
		v, err := parseRevisionRoleDeclarationFND(r)
		if err != nil {
			return FileNode{}, err
		}
		data.RevisionRoleDeclarationFND = &v
	case NodeTypeRevisionRoleAndContextDeclarationFND:
		v, err := parseRevisionRoleAndContextDeclarationFND(r)
		if err != nil {
			return FileNode{}, err
		}
		data.RevisionRoleAndContextDeclarationFND = &v
	case NodeTypeObjectDeclarationFileData3RefCountFND:
		v, err := parseObjectDeclarationFileDataRefCount(r, 1)
		if err != nil {
			return FileNode{}, err
		}
		data.ObjectDeclarationFileData3RefCountFND = &v
	case NodeTypeObjectDeclarationFileData3LargeRefCountFND:
		v, err := parseObjectDeclarationFileDataRefCount(r, 4)
		if err != nil {
			return FileNode{}, err
		}
		data.ObjectDeclarationFileData3LargeRefCountFND = &v
	case NodeTypeObjectDataEncryptionKeyV2FNDX:
		data.ObjectDataEncryptionKeyV2FNDX = &ObjectDataEncryptionKeyV2FNDX{}
	case NodeTypeObjectInfoDependencyOverridesFND:
		v, err := parseObjectInfoDependencyOverridesFND(r, ref)
		if err != nil {
			return FileNode{}, err
		}
		data.ObjectInfoDependencyOverridesFND = &v
	case NodeTypeDataSignatureGroupDefinitionFND:
		v, err := parseDataSignatureGroupDefinitionFND(r)
		if err != nil {
			return FileNode{}, err
		}
		data.DataSignatureGroupDefinitionFND = &v
	case NodeTypeFileDataStoreListReferenceFND:
		v, err := parsePointerToListFND(ref)
		if err != nil {
			return FileNode{}, err
		}
		data.FileDataStoreListReferenceFND = &v
	case NodeTypeFileDataStoreObjectReferenceFND:
		v, err := parseFileDataStoreObjectReferenceFND(r, ref)
		if err != nil {
			return FileNode{}, err
		}
		data.FileDataStoreObjectReferenceFND = &v
	case NodeTypeObjectDeclaration2RefCountFND:
		v, err := parseObjectDeclaration2RefCount(r, ref, 1)
		if err != nil {
			return FileNode{}, err
		}
		data.ObjectDeclaration2RefCountFND = &v
	case NodeTypeObjectDeclaration2LargeRefCountFND:
		v, err := parseObjectDeclaration2RefCount(r, ref, 4)
		if err != nil {
			return FileNode{}, err
		}
		data.ObjectDeclaration2LargeRefCountFND = &v
	case NodeTypeObjectGroupListReferenceFND:
		v, err := parseObjectGroupListReferenceFND(r, ref)
		if err != nil {
			return FileNode{}, err
		}
		data.ObjectGroupListReferenceFND = &v
	case NodeTypeObjectGroupStartFND:
		v, err := parseObjectGroupStartFND(r)
		if err != nil {
			return FileNode{}, err
		}
		data.ObjectGroupStartFND = &v
	case NodeTypeObjectGroupEndFND:
		// no body
	case NodeTypeHashedChunkDescriptor2FND:
		v, err := parseHashedChunkDescriptor2FND(r, ref)
		if err != nil {
			return FileNode{}, err
		}
		data.HashedChunkDescriptor2FND = &v
	case NodeTypeReadOnlyObjectDeclaration2RefCountFND:
		v, err := parseReadOnlyObjectDeclaration2RefCount(r, ref, 1)
		if err != nil {
			return FileNode{}, err
		}
		data.ReadOnlyObjectDeclaration2RefCountFND = &v
	case NodeTypeReadOnlyObjectDeclaration2LargeRefCountFND:
		v, err := parseReadOnlyObjectDeclaration2RefCount(r, ref, 4)
		if err != nil {
			return FileNode{}, err
		}
		data.ReadOnlyObjectDeclaration2LargeRefCountFND = &v
	case NodeTypeChunkTerminatorFND:
		// no body
	case NodeTypeNull:
		// no body
	default:
		logrus.Warnf("legacyfile: unknown file node type 0x%x, size %d", nodeTypeID, declaredSize)
		sizeUsed := startRemaining - remainingAfterRef
		if sizeUsed > declaredSize {
			return FileNode{}, errs.New(errs.MalformedOneNoteFileData,
				"file node leader declares size %d but %d bytes were already consumed by its leader and data reference", declaredSize, sizeUsed)
		}
		v, err := parseUnknownNode(r, declaredSize-sizeUsed)
		if err != nil {
			return FileNode{}, err
		}
		data.UnknownNode = &v
	}

	actualSize := startRemaining - r.Remaining()
	if actualSize != declaredSize && nodeTypeID != NodeTypeNull {
		return FileNode{}, errs.New(errs.MalformedOneNoteFileData,
			"file node 0x%x declared size %d but consumed %d bytes", nodeTypeID, declaredSize, actualSize)
	}

	return FileNode{NodeTypeID: nodeTypeID, Size: actualSize, Data: data}, nil
}

// IsChunkTerminator reports whether this node is the ChunkTerminatorFND
// sentinel, which a fragment's own node list keeps but a flattened
// FileNodeList drops.
func (n FileNode) IsChunkTerminator() bool {
	return n.NodeTypeID == NodeTypeChunkTerminatorFND
}

// IsNull reports whether this node is the zero-typed Null placeholder, a
// fragment never keeps even in its own per-fragment node list.
func (n FileNode) IsNull() bool {
	return n.NodeTypeID == NodeTypeNull
}
