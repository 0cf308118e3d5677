package onestore

import (
	"github.com/runbark/onestore/errs"
	"github.com/runbark/onestore/guid"
	"github.com/runbark/onestore/reader"
)

// ObjectPropSet is an object's raw property-set body together with the
// header bits that describe how it was packed on the wire (§4.9). Extra
// node/object IDs ("ExtendedStreams") are tracked separately because the
// legacy format stores them in the surrounding file-node record, not in
// this header.
type ObjectPropSet struct {
	PropertySet PropertySet
	// ExtendedStreamsPresent mirrors the header word's bit 30: additional
	// rgExtraData streams follow the declared property set. This decoder
	// only needs to know the bit was set; the legacy and FSSHTTPB object
	// builders each consume any extra streams in their own format-specific
	// way (§4.7/§4.8).
	ExtendedStreamsPresent bool
	// ObjectSpaceStreamAbsent mirrors the header word's bit 31: unlike
	// every other flag bit in this format, a SET bit here means the
	// corresponding stream is ABSENT, so the field is named for its
	// positive (absent) sense to avoid an inverted double-negative at
	// every call site.
	ObjectSpaceStreamAbsent bool
}

// ParseObjectPropSet reads an ObjectPropSet: a packed u32 header (count
// in bits 0-23, bit30 ExtendedStreamsPresent, bit31
// ObjectSpaceStreamAbsent-inverted-sense) followed by the PropertySet
// body. The header's count field is the property count, duplicating
// (and required to match) the PropertySet's own u16 count prefix.
func ParseObjectPropSet(r *reader.Reader) (ObjectPropSet, error) {
	header, err := r.GetU32()
	if err != nil {
		return ObjectPropSet{}, err
	}
	count := header & 0xffffff
	ps, err := ParsePropertySet(r)
	if err != nil {
		return ObjectPropSet{}, err
	}
	if uint32(len(ps.Properties)) != count {
		return ObjectPropSet{}, errs.New(errs.MalformedOneStoreData,
			"ObjectPropSet header declares %d properties, body has %d", count, len(ps.Properties))
	}
	return ObjectPropSet{
		PropertySet:             ps,
		ExtendedStreamsPresent:  header&(1<<30) != 0,
		ObjectSpaceStreamAbsent: header&(1<<31) != 0,
	}, nil
}

// Object is one fully-assembled OneStore object: its JCID, its property
// set (with references already resolved to global ExGuids/CellIds), and
// the raw file-data bytes if it is a file-data object.
type Object struct {
	ID       guid.ExGuid
	JCID     JCID
	PropSet  ObjectPropSet
	FileData []byte // nil unless this object was declared by a file-data node
}

// RevisionRole enumerates the four fixed root roles a revision can
// expose (§3).
type RevisionRole uint32

const (
	RevisionRoleDefaultContent  RevisionRole = 1
	RevisionRoleMetadata        RevisionRole = 2
	RevisionRoleEncryptionKey   RevisionRole = 3
	RevisionRoleVersionMetadata RevisionRole = 4
)

// ObjectSpace is one object space (in FSSHTTPB terms, the objects
// reachable from one cell's revision chain; in legacy terms, one
// RevisionManifestList's objects): its identity, the context it belongs
// to, its root objects keyed by role, and every object it owns.
type ObjectSpace struct {
	ID      guid.ExGuid
	Context guid.ExGuid
	Roots   map[RevisionRole]guid.ExGuid
	Objects map[guid.ExGuid]Object
}

// NewObjectSpace creates an empty ObjectSpace ready to have roots and
// objects filled in by the legacy or FSSHTTPB object-assembly walk.
func NewObjectSpace(id, context guid.ExGuid) *ObjectSpace {
	return &ObjectSpace{
		ID:      id,
		Context: context,
		Roots:   make(map[RevisionRole]guid.ExGuid),
		Objects: make(map[guid.ExGuid]Object),
	}
}

// Root returns the object filling the given role, if any.
func (s *ObjectSpace) Root(role RevisionRole) (Object, bool) {
	id, ok := s.Roots[role]
	if !ok {
		return Object{}, false
	}
	o, ok := s.Objects[id]
	return o, ok
}

// OneStoreType distinguishes a section file (.one) from a table-of-
// contents file (.onetoc2), decided either from the legacy file-type
// GUID or (FSSHTTPB) the storage manifest's schema GUID (§4.10).
type OneStoreType int

const (
	OneStoreTypeSection OneStoreType = iota + 1
	OneStoreTypeTOC
)

// OneStore is the fully-decoded top-level result of parsing either a
// legacy-format or FSSHTTPB-format OneNote file: every object space it
// contains, and which one is the data root.
type OneStore struct {
	Type         OneStoreType
	DataRoot     guid.ExGuid
	ObjectSpaces map[guid.ExGuid]*ObjectSpace
}

// NewOneStore creates an empty OneStore of the given type, ready to have
// object spaces registered by the legacy or FSSHTTPB parse path.
func NewOneStore(t OneStoreType) *OneStore {
	return &OneStore{
		Type:         t,
		ObjectSpaces: make(map[guid.ExGuid]*ObjectSpace),
	}
}

// ObjectSpaceOf returns the ObjectSpace identified by id, if present.
func (s *OneStore) ObjectSpaceOf(id guid.ExGuid) (*ObjectSpace, bool) {
	sp, ok := s.ObjectSpaces[id]
	return sp, ok
}

// RootObjectSpace returns the ObjectSpace named by DataRoot.
func (s *OneStore) RootObjectSpace() (*ObjectSpace, bool) {
	return s.ObjectSpaceOf(s.DataRoot)
}
