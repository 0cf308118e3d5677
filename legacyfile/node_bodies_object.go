package legacyfile

import (
	"github.com/runbark/onestore/errs"
	"github.com/runbark/onestore/guid"
	"github.com/runbark/onestore/onestore"
	"github.com/runbark/onestore/reader"
)

// ObjectDeclarationWithRefCountBody is the common header shared by the
// small- and large-ref-count ObjectDeclarationWithRefCount*FNDX shapes:
// an object id, a JCID-index field that MS-ONESTORE documents as always
// 0x1, and an encryption-status nibble that must be zero (a non-zero
// value means the object may be encrypted or otherwise corrupt, neither
// of which this decoder can recover from).
type ObjectDeclarationWithRefCountBody struct {
	Oid guid.CompactId
	jci uint32
}

func parseObjectDeclarationWithRefCountBody(r *reader.Reader) (ObjectDeclarationWithRefCountBody, error) {
	oid, err := guid.ParseCompactId(r)
	if err != nil {
		return ObjectDeclarationWithRefCountBody{}, err
	}
	data, err := r.GetU32()
	if err != nil {
		return ObjectDeclarationWithRefCountBody{}, err
	}
	jci := data & 0x3ff
	if jci != 0x1 {
		return ObjectDeclarationWithRefCountBody{}, errs.New(errs.MalformedOneStoreData,
			"ObjectDeclarationWithRefCountBody jci field is %d, must be 0x1", jci)
	}
	odcs := (data >> 10) & 0xf
	if odcs != 0 {
		return ObjectDeclarationWithRefCountBody{}, errs.New(errs.MalformedOneStoreData,
			"ObjectDeclarationWithRefCountBody odcs is 0x%x: object may be encrypted or corrupt", odcs)
	}
	if err := r.Advance(2); err != nil { // reserved
		return ObjectDeclarationWithRefCountBody{}, err
	}
	return ObjectDeclarationWithRefCountBody{Oid: oid, jci: jci}, nil
}

// JCID forces the property-set bit, mirroring how the original always
// synthesizes this shape's JCID from a property-set-bearing declaration
// rather than reading one off the wire.
func (b ObjectDeclarationWithRefCountBody) JCID() onestore.JCID {
	return onestore.JCID(b.jci).WithPropertySet()
}

// ObjectDeclarationWithRefCountFNDX/2FNDX are the 8-bit and 32-bit
// ref-count widths of the same record shape.
type ObjectDeclarationWithRefCountFNDX struct {
	Body       ObjectDeclarationWithRefCountBody
	CRef       uint32
	PropertySet onestore.ObjectPropSet
}

func parseObjectDeclarationWithSizedRefCount(r *reader.Reader, ref FileNodeDataRef, refWidth int) (ObjectDeclarationWithRefCountFNDX, error) {
	propertySet, err := readPropertySet(r, ref)
	if err != nil {
		return ObjectDeclarationWithRefCountFNDX{}, err
	}
	body, err := parseObjectDeclarationWithRefCountBody(r)
	if err != nil {
		return ObjectDeclarationWithRefCountFNDX{}, err
	}
	cRef, err := readSizedRefCount(r, refWidth)
	if err != nil {
		return ObjectDeclarationWithRefCountFNDX{}, err
	}
	return ObjectDeclarationWithRefCountFNDX{Body: body, CRef: cRef, PropertySet: propertySet}, nil
}

func readSizedRefCount(r *reader.Reader, width int) (uint32, error) {
	switch width {
	case 1:
		v, err := r.GetU8()
		return uint32(v), err
	case 4:
		return r.GetU32()
	default:
		return 0, errs.New(errs.MalformedOneNoteData, "unsupported ref-count width %d", width)
	}
}

// ObjectDeclarationFileDataRefCountFND declares a file-data object: an
// object id and JCID carried directly (not via ObjectDeclarationWithRefCountBody),
// a ref count, and the attachment's data-reference and extension
// strings.
type ObjectDeclarationFileDataRefCountFND struct {
	Oid            guid.CompactId
	JCID           onestore.JCID
	CRef           uint32
	AttachmentInfo AttachmentInfo
}

func parseObjectDeclarationFileDataRefCount(r *reader.Reader, refWidth int) (ObjectDeclarationFileDataRefCountFND, error) {
	oid, err := guid.ParseCompactId(r)
	if err != nil {
		return ObjectDeclarationFileDataRefCountFND{}, err
	}
	jcid, err := onestore.ParseJCID(r)
	if err != nil {
		return ObjectDeclarationFileDataRefCountFND{}, err
	}
	cRef, err := readSizedRefCount(r, refWidth)
	if err != nil {
		return ObjectDeclarationFileDataRefCountFND{}, err
	}
	dataRef, err := parseStringInStorageBuffer(r)
	if err != nil {
		return ObjectDeclarationFileDataRefCountFND{}, err
	}
	ext, err := parseStringInStorageBuffer(r)
	if err != nil {
		return ObjectDeclarationFileDataRefCountFND{}, err
	}
	if !hasPrefix(dataRef, "<file>") && !hasPrefix(dataRef, "<ifndf>") && !hasPrefix(dataRef, "<invfdo>") {
		return ObjectDeclarationFileDataRefCountFND{}, errs.New(errs.MalformedOneStoreData,
			"file data reference %q has an unrecognized prefix", dataRef)
	}
	return ObjectDeclarationFileDataRefCountFND{
		Oid:  oid,
		JCID: jcid,
		CRef: cRef,
		AttachmentInfo: AttachmentInfo{
			DataRef:   dataRef,
			Extension: ext,
		},
	}, nil
}

// ObjectDeclaration2Body is the header of the "2" object-declaration
// shapes: unlike ObjectDeclarationWithRefCountBody, its JCID is read
// directly off the wire rather than synthesized.
type ObjectDeclaration2Body struct {
	Oid                guid.CompactId
	JCID               onestore.JCID
	HasOidReferences   bool
	HasOsidReferences  bool
}

func parseObjectDeclaration2Body(r *reader.Reader) (ObjectDeclaration2Body, error) {
	oid, err := guid.ParseCompactId(r)
	if err != nil {
		return ObjectDeclaration2Body{}, err
	}
	jcid, err := onestore.ParseJCID(r)
	if err != nil {
		return ObjectDeclaration2Body{}, err
	}
	metadata, err := r.GetU8()
	if err != nil {
		return ObjectDeclaration2Body{}, err
	}
	return ObjectDeclaration2Body{
		Oid:               oid,
		JCID:              jcid,
		HasOidReferences:  metadata&0x1 != 0,
		HasOsidReferences: metadata&0x2 != 0,
	}, nil
}

// ObjectDeclaration2RefCountFND/2LargeRefCountFND declare an object
// whose property set precedes the body, followed by an 8- or 32-bit ref
// count.
type ObjectDeclaration2RefCountFND struct {
	PropertySet onestore.ObjectPropSet
	Body        ObjectDeclaration2Body
	CRef        uint32
}

func parseObjectDeclaration2RefCount(r *reader.Reader, ref FileNodeDataRef, refWidth int) (ObjectDeclaration2RefCountFND, error) {
	propertySet, err := readPropertySet(r, ref)
	if err != nil {
		return ObjectDeclaration2RefCountFND{}, err
	}
	body, err := parseObjectDeclaration2Body(r)
	if err != nil {
		return ObjectDeclaration2RefCountFND{}, err
	}
	cRef, err := readSizedRefCount(r, refWidth)
	if err != nil {
		return ObjectDeclaration2RefCountFND{}, err
	}
	return ObjectDeclaration2RefCountFND{PropertySet: propertySet, Body: body, CRef: cRef}, nil
}

// ReadOnlyObjectDeclaration2RefCountFND/2LargeRefCountFND wrap the
// corresponding ObjectDeclaration2RefCountFND shape with a trailing
// MD5 content hash.
type ReadOnlyObjectDeclaration2RefCountFND struct {
	Base    ObjectDeclaration2RefCountFND
	Md5Lo   uint64
	Md5Hi   uint64
}

func parseReadOnlyObjectDeclaration2RefCount(r *reader.Reader, ref FileNodeDataRef, refWidth int) (ReadOnlyObjectDeclaration2RefCountFND, error) {
	base, err := parseObjectDeclaration2RefCount(r, ref, refWidth)
	if err != nil {
		return ReadOnlyObjectDeclaration2RefCountFND{}, err
	}
	lo, hi, err := r.GetU128()
	if err != nil {
		return ReadOnlyObjectDeclaration2RefCountFND{}, err
	}
	return ReadOnlyObjectDeclaration2RefCountFND{Base: base, Md5Lo: lo, Md5Hi: hi}, nil
}

// ObjectRevisionWithRefCountFNDX packs its 6-bit ref count into the same
// metadata byte as the two reference-presence flags.
type ObjectRevisionWithRefCountFNDX struct {
	Oid               guid.CompactId
	HasOidReferences  bool
	HasOsidReferences bool
	PropertySet       onestore.ObjectPropSet
	CRef              uint8
}

func parseObjectRevisionWithRefCountFNDX(r *reader.Reader, ref FileNodeDataRef) (ObjectRevisionWithRefCountFNDX, error) {
	propertySet, err := readPropertySet(r, ref)
	if err != nil {
		return ObjectRevisionWithRefCountFNDX{}, err
	}
	oid, err := guid.ParseCompactId(r)
	if err != nil {
		return ObjectRevisionWithRefCountFNDX{}, err
	}
	metadata, err := r.GetU8()
	if err != nil {
		return ObjectRevisionWithRefCountFNDX{}, err
	}
	return ObjectRevisionWithRefCountFNDX{
		Oid:               oid,
		HasOidReferences:  metadata&0x1 != 0,
		HasOsidReferences: metadata&0x2 != 0,
		CRef:              (metadata & 0b1111_1100) >> 2,
		PropertySet:       propertySet,
	}, nil
}

// ObjectRevisionWithRefCount2FNDX reads its ref count as a separate u32
// following a u32 metadata word, unlike its small sibling which packs
// the ref count into the metadata byte itself.
type ObjectRevisionWithRefCount2FNDX struct {
	Oid               guid.CompactId
	HasOidReferences  bool
	HasOsidReferences bool
	PropertySet       onestore.ObjectPropSet
	CRef              uint32
}

func parseObjectRevisionWithRefCount2FNDX(r *reader.Reader, ref FileNodeDataRef) (ObjectRevisionWithRefCount2FNDX, error) {
	propertySet, err := readPropertySet(r, ref)
	if err != nil {
		return ObjectRevisionWithRefCount2FNDX{}, err
	}
	oid, err := guid.ParseCompactId(r)
	if err != nil {
		return ObjectRevisionWithRefCount2FNDX{}, err
	}
	metadata, err := r.GetU32()
	if err != nil {
		return ObjectRevisionWithRefCount2FNDX{}, err
	}
	cRef, err := r.GetU32()
	if err != nil {
		return ObjectRevisionWithRefCount2FNDX{}, err
	}
	return ObjectRevisionWithRefCount2FNDX{
		Oid:               oid,
		HasOidReferences:  metadata&0x1 != 0,
		HasOsidReferences: metadata&0x2 != 0,
		CRef:              cRef,
		PropertySet:       propertySet,
	}, nil
}
