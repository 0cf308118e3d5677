package legacyfile

import (
	"unicode/utf16"

	"github.com/runbark/onestore/errs"
	"github.com/runbark/onestore/guid"
	"github.com/runbark/onestore/onestore"
	"github.com/runbark/onestore/reader"
)

// stringInStorageBuffer is a u32 UTF-16LE character count followed by
// that many UTF-16 code units, used for the two string fields of a
// file-data object declaration.
func parseStringInStorageBuffer(r *reader.Reader) (string, error) {
	count, err := r.GetU32()
	if err != nil {
		return "", err
	}
	b, err := r.Read(int(count) * 2)
	if err != nil {
		return "", err
	}
	return utf16LEToString(b)
}

func utf16LEToString(b []byte) (string, error) {
	if len(b)%2 != 0 {
		return "", errs.New(errs.MalformedData, "odd byte length %d for a UTF-16 string", len(b))
	}
	units := make([]uint16, len(b)/2)
	for i := range units {
		units[i] = uint16(b[2*i]) | uint16(b[2*i+1])<<8
	}
	return string(utf16.Decode(units)), nil
}

// readPropertySet resolves a property-set reference (always a
// SingleElement for a node that declares an object) into its
// ObjectPropSet body.
func readPropertySet(r *reader.Reader, ref FileNodeDataRef) (onestore.ObjectPropSet, error) {
	switch ref.Kind {
	case FileNodeDataRefKindSingleElement:
		propReader, err := ref.Single.ResolveToReader(r)
		if err != nil {
			return onestore.ObjectPropSet{}, err
		}
		return onestore.ParseObjectPropSet(propReader)
	case FileNodeDataRefKindElementList:
		return onestore.ObjectPropSet{}, errs.New(errs.MalformedOneStoreData,
			"expected a single element reading a property set, got a list")
	default:
		return onestore.ObjectPropSet{}, errs.New(errs.MalformedOneStoreData,
			"expected a reference to a property set")
	}
}

// PointerToListFND is the shape shared by RevisionManifestListReferenceFND
// and FileDataStoreListReferenceFND: the node carries no body of its own,
// only the already-parsed nested FileNodeList the leader's ElementList
// reference resolved.
type PointerToListFND struct {
	List *FileNodeList
}

func parsePointerToListFND(ref FileNodeDataRef) (PointerToListFND, error) {
	if ref.Kind != FileNodeDataRefKindElementList {
		return PointerToListFND{}, errs.New(errs.MalformedOneStoreData, "expected a list reference")
	}
	return PointerToListFND{List: ref.List}, nil
}

// ObjectDataEncryptionKeyV2FNDX points to encrypted data; this decoder
// only needs to recognize the node kind, since the legacy object model
// does not support the encryption-key revision role (the encryption-key
// root is exposed but never followed).
type ObjectDataEncryptionKeyV2FNDX struct{}

// ObjectInfoDependencyOverride is one (oid, ref-count) entry of an
// ObjectInfoDependencyOverrideData table.
type ObjectInfoDependencyOverride struct {
	Oid  guid.CompactId
	CRef uint32
}

func parseObjectInfoDependencyOverride8(r *reader.Reader) (ObjectInfoDependencyOverride, error) {
	oid, err := guid.ParseCompactId(r)
	if err != nil {
		return ObjectInfoDependencyOverride{}, err
	}
	c, err := r.GetU8()
	if err != nil {
		return ObjectInfoDependencyOverride{}, err
	}
	return ObjectInfoDependencyOverride{Oid: oid, CRef: uint32(c)}, nil
}

func parseObjectInfoDependencyOverride32(r *reader.Reader) (ObjectInfoDependencyOverride, error) {
	oid, err := guid.ParseCompactId(r)
	if err != nil {
		return ObjectInfoDependencyOverride{}, err
	}
	c, err := r.GetU32()
	if err != nil {
		return ObjectInfoDependencyOverride{}, err
	}
	return ObjectInfoDependencyOverride{Oid: oid, CRef: c}, nil
}

// ObjectInfoDependencyOverridesFND specifies reference-count overrides
// for objects, keyed by two parallel override tables (8-bit and 32-bit
// ref-count widths).
type ObjectInfoDependencyOverridesFND struct {
	Overrides8  []ObjectInfoDependencyOverride
	Overrides32 []ObjectInfoDependencyOverride
}

func parseObjectInfoDependencyOverridesFND(r *reader.Reader, ref FileNodeDataRef) (ObjectInfoDependencyOverridesFND, error) {
	if ref.Kind != FileNodeDataRefKindSingleElement {
		return ObjectInfoDependencyOverridesFND{}, errs.New(errs.MalformedOneStoreData,
			"missing ref to data parsing ObjectInfoDependencyOverridesFND")
	}
	dataReader := r
	if !ref.Single.IsNil() {
		resolved, err := ref.Single.ResolveToReader(r)
		if err != nil {
			return ObjectInfoDependencyOverridesFND{}, err
		}
		dataReader = resolved
	}
	c8Count, err := dataReader.GetU32()
	if err != nil {
		return ObjectInfoDependencyOverridesFND{}, err
	}
	c32Count, err := dataReader.GetU32()
	if err != nil {
		return ObjectInfoDependencyOverridesFND{}, err
	}
	if _, err := dataReader.GetU32(); err != nil { // crc
		return ObjectInfoDependencyOverridesFND{}, err
	}
	overrides8 := make([]ObjectInfoDependencyOverride, c8Count)
	for i := range overrides8 {
		o, err := parseObjectInfoDependencyOverride8(dataReader)
		if err != nil {
			return ObjectInfoDependencyOverridesFND{}, err
		}
		overrides8[i] = o
	}
	overrides32 := make([]ObjectInfoDependencyOverride, c32Count)
	for i := range overrides32 {
		o, err := parseObjectInfoDependencyOverride32(dataReader)
		if err != nil {
			return ObjectInfoDependencyOverridesFND{}, err
		}
		overrides32[i] = o
	}
	return ObjectInfoDependencyOverridesFND{Overrides8: overrides8, Overrides32: overrides32}, nil
}

// DataSignatureGroupDefinitionFND terminates an object group's data
// signature with a group-wide ExGuid.
type DataSignatureGroupDefinitionFND struct {
	DataSignatureGroup guid.ExGuid
}

func parseDataSignatureGroupDefinitionFND(r *reader.Reader) (DataSignatureGroupDefinitionFND, error) {
	g, err := guid.ParseExGuid(r)
	if err != nil {
		return DataSignatureGroupDefinitionFND{}, err
	}
	return DataSignatureGroupDefinitionFND{DataSignatureGroup: g}, nil
}

var (
	fileDataStoreGuidHeader = guid.MustParse("BDE316E7-2665-4511-A4C4-8D4D0B7A9EAC")
	fileDataStoreGuidFooter = guid.MustParse("71FBA722-0F79-4A0B-BB13-899256426B24")
)

// FileDataStoreObject is the magic-delimited body of an attached binary
// blob (MS-ONESTORE 2.6.13): an 8-byte-padded byte run bracketed by two
// well-known guard GUIDs.
type FileDataStoreObject struct {
	FileData []byte
}

func parseFileDataStoreObject(r *reader.Reader) (FileDataStoreObject, error) {
	header, err := guid.Parse(r)
	if err != nil {
		return FileDataStoreObject{}, err
	}
	if !header.Equal(fileDataStoreGuidHeader) {
		return FileDataStoreObject{}, errs.New(errs.MalformedOneStoreData,
			"FileDataStoreObject header guid %v does not match the expected magic", header)
	}
	cbLength, err := r.GetU64()
	if err != nil {
		return FileDataStoreObject{}, err
	}
	if err := r.Advance(4 + 8); err != nil { // unused u32, reserved u64
		return FileDataStoreObject{}, err
	}
	data, err := r.Read(int(cbLength))
	if err != nil {
		return FileDataStoreObject{}, err
	}
	fileData := append([]byte(nil), data...)
	if pad := paddingTo(int(cbLength), 8); pad > 0 {
		if err := r.Advance(pad); err != nil {
			return FileDataStoreObject{}, err
		}
	}
	footer, err := guid.Parse(r)
	if err != nil {
		return FileDataStoreObject{}, err
	}
	if !footer.Equal(fileDataStoreGuidFooter) {
		return FileDataStoreObject{}, errs.New(errs.MalformedOneStoreData,
			"FileDataStoreObject footer guid %v does not match the expected magic", footer)
	}
	return FileDataStoreObject{FileData: fileData}, nil
}

func paddingTo(n, align int) int {
	rem := n % align
	if rem == 0 {
		return 0
	}
	return align - rem
}

// FileDataStoreObjectReferenceFND names one blob in a file data store by
// its guid, pointing at the FileDataStoreObject carrying the bytes.
type FileDataStoreObjectReferenceFND struct {
	Guid   guid.Guid
	Target FileDataStoreObject
}

func parseFileDataStoreObjectReferenceFND(r *reader.Reader, ref FileNodeDataRef) (FileDataStoreObjectReferenceFND, error) {
	g, err := guid.Parse(r)
	if err != nil {
		return FileDataStoreObjectReferenceFND{}, err
	}
	if ref.Kind != FileNodeDataRefKindSingleElement {
		return FileDataStoreObjectReferenceFND{}, errs.New(errs.MalformedOneStoreData,
			"FileDataStoreObjectReferenceFND should point to a single file node object")
	}
	dataReader, err := ref.Single.ResolveToReader(r)
	if err != nil {
		return FileDataStoreObjectReferenceFND{}, err
	}
	target, err := parseFileDataStoreObject(dataReader)
	if err != nil {
		return FileDataStoreObjectReferenceFND{}, err
	}
	return FileDataStoreObjectReferenceFND{Guid: g, Target: target}, nil
}

// AttachmentInfo names where a file-data object's bytes actually live:
// a data-reference string carrying one of three recognized URI-like
// prefixes, and the attachment's file extension.
type AttachmentInfo struct {
	Extension string
	DataRef   string
}

// LoadData resolves this attachment through lookup, which maps an
// "<ifndf>"-stripped id to file data. Only that one prefix is
// resolvable: "<file>" (an external file reference) and "<invfdo>" (a
// reference OneNote itself marked invalid) are both reported to the
// caller but never resolved, matching how the legacy format never
// actually round-trips either.
func (a AttachmentInfo) LoadData(lookup func(id string) ([]byte, error)) ([]byte, error) {
	switch {
	case hasPrefix(a.DataRef, "<ifndf>"):
		return lookup(a.DataRef[len("<ifndf>"):])
	case hasPrefix(a.DataRef, "<file>"):
		return nil, errs.New(errs.ResolutionFailed,
			"loading an attachment from an external file is not supported: %s (ext %s)", a.DataRef, a.Extension)
	case hasPrefix(a.DataRef, "<invfdo>"):
		return nil, errs.New(errs.ResolutionFailed,
			"attachment was marked invalid: %s (ext %s)", a.DataRef, a.Extension)
	default:
		return nil, errs.New(errs.ResolutionFailed,
			"unrecognized attachment data reference: %s (ext %s)", a.DataRef, a.Extension)
	}
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

// ObjectGroupListReferenceFND names an object group by id and points at
// the nested list describing its contents (§4.7's legacy equivalent of
// an FSSHTTPB object group).
type ObjectGroupListReferenceFND struct {
	List *FileNodeList
	ID   guid.ExGuid
}

func parseObjectGroupListReferenceFND(r *reader.Reader, ref FileNodeDataRef) (ObjectGroupListReferenceFND, error) {
	if ref.Kind != FileNodeDataRefKindElementList {
		return ObjectGroupListReferenceFND{}, errs.New(errs.MalformedOneStoreData,
			"expected a list parsing ObjectGroupListReferenceFND")
	}
	id, err := guid.ParseExGuid(r)
	if err != nil {
		return ObjectGroupListReferenceFND{}, err
	}
	return ObjectGroupListReferenceFND{List: ref.List, ID: id}, nil
}

// ObjectGroupStartFND opens an object group whose body nodes follow
// until the matching ObjectGroupEndFND.
type ObjectGroupStartFND struct {
	Oid guid.ExGuid
}

func parseObjectGroupStartFND(r *reader.Reader) (ObjectGroupStartFND, error) {
	oid, err := guid.ParseExGuid(r)
	if err != nil {
		return ObjectGroupStartFND{}, err
	}
	return ObjectGroupStartFND{Oid: oid}, nil
}

// HashedChunkDescriptor2FND carries a property set plus a 128-bit
// content hash, used to deduplicate hashed chunks across revisions.
type HashedChunkDescriptor2FND struct {
	PropSet onestore.ObjectPropSet
	HashLo  uint64
	HashHi  uint64
}

func parseHashedChunkDescriptor2FND(r *reader.Reader, ref FileNodeDataRef) (HashedChunkDescriptor2FND, error) {
	propSet, err := readPropertySet(r, ref)
	if err != nil {
		return HashedChunkDescriptor2FND{}, err
	}
	lo, hi, err := r.GetU128()
	if err != nil {
		return HashedChunkDescriptor2FND{}, err
	}
	return HashedChunkDescriptor2FND{PropSet: propSet, HashLo: lo, HashHi: hi}, nil
}

// UnknownNode is every node_type_id this decoder does not recognize: its
// bytes are skipped rather than decoded, since no field layout can be
// assumed for an unrecognized kind.
type UnknownNode struct{}

func parseUnknownNode(r *reader.Reader, size int) (UnknownNode, error) {
	if err := r.Advance(size); err != nil {
		return UnknownNode{}, err
	}
	return UnknownNode{}, nil
}
