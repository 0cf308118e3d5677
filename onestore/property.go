package onestore

import (
	"github.com/bits-and-blooms/bitset"

	"github.com/runbark/onestore/errs"
	"github.com/runbark/onestore/guid"
	"github.com/runbark/onestore/reader"
)

// PropertyValue is the decoded payload of one property. Exactly one
// field is meaningful, selected by the PropertyId.Type the value was
// read under; reference-shaped values (ObjectID and friends) are left
// unresolved here (they hold the raw CompactIds) and are resolved
// against an object's MappingTable by ResolveReferences below, mirroring
// how the teacher's extent.go defers resolving a logical block number
// into a device offset until the superblock's block size is known.
type PropertyValue struct {
	Bool   bool
	Scalar uint64
	Bytes  []byte
	RawIDs []guid.CompactId

	NestedSet *PropertySet // PropertySet (0x11)

	// ArrayOfPropertyValues (0x10): one id shared by every entry, and
	// that many nested property sets.
	NestedArrayID *PropertyId
	NestedArray   []PropertySet

	ObjectRefs      []guid.ExGuid // resolved ObjectID / ArrayOfObjectIDs
	ObjectSpaceRefs []guid.CellId // resolved ObjectSpaceID / ArrayOfObjectSpaceIDs
	ContextRefs     []guid.CellId // resolved ContextID / ArrayOfContextIDs
}

// Property is one (id, value) entry of a decoded PropertySet, in
// on-wire order - order matters because reference resolution consumes
// the object's ID streams positionally.
type Property struct {
	ID    PropertyId
	Value PropertyValue
}

// PropertySet is an ordered list of properties, either the top-level
// set of an ObjectPropSet or a value nested under a PropertySet-typed
// property.
type PropertySet struct {
	Properties []Property
}

// ParsePropertySet reads a property set: a u16 count of PropertyIds,
// that many PropertyIds, then that many raw (unresolved) values in the
// same order (§4.9).
func ParsePropertySet(r *reader.Reader) (PropertySet, error) {
	count, err := r.GetU16()
	if err != nil {
		return PropertySet{}, err
	}
	ids := make([]PropertyId, count)
	for i := range ids {
		id, err := ParsePropertyId(r)
		if err != nil {
			return PropertySet{}, err
		}
		if err := validatePropertyType(id.Type); err != nil {
			return PropertySet{}, err
		}
		ids[i] = id
	}
	props := make([]Property, count)
	for i, id := range ids {
		v, err := parsePropertyValue(r, id)
		if err != nil {
			return PropertySet{}, err
		}
		props[i] = Property{ID: id, Value: v}
	}
	return PropertySet{Properties: props}, nil
}

func parsePropertyValue(r *reader.Reader, id PropertyId) (PropertyValue, error) {
	switch id.Type {
	case PropertyTypeNoData:
		return PropertyValue{}, nil
	case PropertyTypeBool:
		return PropertyValue{Bool: id.BoolValue}, nil
	case PropertyTypeOneByteOfData:
		v, err := r.GetU8()
		return PropertyValue{Scalar: uint64(v)}, err
	case PropertyTypeTwoBytesOfData:
		v, err := r.GetU16()
		return PropertyValue{Scalar: uint64(v)}, err
	case PropertyTypeFourBytesOfData:
		v, err := r.GetU32()
		return PropertyValue{Scalar: uint64(v)}, err
	case PropertyTypeEightBytesOfData:
		v, err := r.GetU64()
		return PropertyValue{Scalar: v}, err
	case PropertyTypeFourBytesOfLengthFollowedByData:
		n, err := r.GetU32()
		if err != nil {
			return PropertyValue{}, err
		}
		b, err := r.Read(int(n))
		if err != nil {
			return PropertyValue{}, err
		}
		return PropertyValue{Bytes: append([]byte(nil), b...)}, nil
	case PropertyTypeObjectID, PropertyTypeObjectSpaceID, PropertyTypeContextID:
		cid, err := guid.ParseCompactId(r)
		if err != nil {
			return PropertyValue{}, err
		}
		return PropertyValue{RawIDs: []guid.CompactId{cid}}, nil
	case PropertyTypeArrayOfObjectIDs, PropertyTypeArrayOfObjectSpaceIDs, PropertyTypeArrayOfContextIDs:
		count, err := r.GetU32()
		if err != nil {
			return PropertyValue{}, err
		}
		ids := make([]guid.CompactId, count)
		for i := range ids {
			cid, err := guid.ParseCompactId(r)
			if err != nil {
				return PropertyValue{}, err
			}
			ids[i] = cid
		}
		return PropertyValue{RawIDs: ids}, nil
	case PropertyTypeArrayOfPropertyValues:
		count, err := r.GetU32()
		if err != nil {
			return PropertyValue{}, err
		}
		innerID, err := ParsePropertyId(r)
		if err != nil {
			return PropertyValue{}, err
		}
		sets := make([]PropertySet, count)
		for i := range sets {
			ps, err := ParsePropertySet(r)
			if err != nil {
				return PropertyValue{}, err
			}
			sets[i] = ps
		}
		return PropertyValue{NestedArrayID: &innerID, NestedArray: sets}, nil
	case PropertyTypePropertySet:
		nested, err := ParsePropertySet(r)
		if err != nil {
			return PropertyValue{}, err
		}
		return PropertyValue{NestedSet: &nested}, nil
	default:
		return PropertyValue{}, errs.New(errs.MalformedOneStoreData, "unrecognized property type 0x%x", id.Type)
	}
}

// referenceSlotCounter tracks, per reference stream kind, how many
// CompactId slots earlier properties in the same PropertySet have
// already consumed - the occurrence index the MappingTable's
// disambiguation rule keys on (§4.9 "Reference resolution"). A bitset
// records which absolute slot indices are claimed.
type referenceSlotCounter struct {
	objectSlots      *bitset.BitSet
	objectSpaceSlots *bitset.BitSet
	contextSlots     *bitset.BitSet
	nextObject       uint
	nextObjectSpace  uint
	nextContext      uint
}

func newReferenceSlotCounter() *referenceSlotCounter {
	return &referenceSlotCounter{
		objectSlots:      bitset.New(0),
		objectSpaceSlots: bitset.New(0),
		contextSlots:     bitset.New(0),
	}
}

func (c *referenceSlotCounter) takeObject() int {
	idx := c.nextObject
	c.objectSlots.Set(idx)
	c.nextObject++
	return int(idx)
}

func (c *referenceSlotCounter) takeObjectSpace() int {
	idx := c.nextObjectSpace
	c.objectSpaceSlots.Set(idx)
	c.nextObjectSpace++
	return int(idx)
}

func (c *referenceSlotCounter) takeContext() int {
	idx := c.nextContext
	c.contextSlots.Set(idx)
	c.nextContext++
	return int(idx)
}

// ResolveReferences walks every property in ps (recursing into nested
// PropertySets and ArrayOfPropertyValues) and resolves each RawIDs entry
// against mapping, in the occurrence order the MappingTable's
// disambiguation rule requires. It must be called exactly once per
// object, over every property in declaration order, since the
// occurrence counters are shared across the whole walk.
func (ps *PropertySet) ResolveReferences(mapping MappingTable) error {
	c := newReferenceSlotCounter()
	return resolvePropertySet(ps, mapping, c)
}

func resolvePropertySet(ps *PropertySet, mapping MappingTable, c *referenceSlotCounter) error {
	for i := range ps.Properties {
		if err := resolveValue(&ps.Properties[i].ID, &ps.Properties[i].Value, mapping, c); err != nil {
			return err
		}
	}
	return nil
}

func resolveValue(id *PropertyId, v *PropertyValue, mapping MappingTable, c *referenceSlotCounter) error {
	switch id.Type {
	case PropertyTypeObjectID, PropertyTypeArrayOfObjectIDs:
		v.ObjectRefs = make([]guid.ExGuid, len(v.RawIDs))
		for i, raw := range v.RawIDs {
			occ := c.takeObject()
			resolved, ok := mapping.ResolveObject(raw, occ)
			if !ok {
				return errs.New(errs.ResolutionFailed, "could not resolve object reference %+v at occurrence %d", raw, occ)
			}
			v.ObjectRefs[i] = resolved
		}
	case PropertyTypeObjectSpaceID, PropertyTypeArrayOfObjectSpaceIDs:
		v.ObjectSpaceRefs = make([]guid.CellId, len(v.RawIDs))
		for i, raw := range v.RawIDs {
			occ := c.takeObjectSpace()
			resolved, ok := mapping.ResolveSpace(raw, occ)
			if !ok {
				return errs.New(errs.ResolutionFailed, "could not resolve object-space reference %+v at occurrence %d", raw, occ)
			}
			v.ObjectSpaceRefs[i] = resolved
		}
	case PropertyTypeContextID, PropertyTypeArrayOfContextIDs:
		v.ContextRefs = make([]guid.CellId, len(v.RawIDs))
		for i, raw := range v.RawIDs {
			occ := c.takeContext()
			resolved, ok := mapping.ResolveSpace(raw, occ)
			if !ok {
				return errs.New(errs.ResolutionFailed, "could not resolve context reference %+v at occurrence %d", raw, occ)
			}
			v.ContextRefs[i] = resolved
		}
	case PropertyTypePropertySet:
		if v.NestedSet != nil {
			return resolvePropertySet(v.NestedSet, mapping, c)
		}
	case PropertyTypeArrayOfPropertyValues:
		for i := range v.NestedArray {
			if err := resolvePropertySet(&v.NestedArray[i], mapping, c); err != nil {
				return err
			}
		}
	}
	return nil
}
