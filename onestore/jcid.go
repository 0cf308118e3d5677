package onestore

import (
	"github.com/runbark/onestore/errs"
	"github.com/runbark/onestore/reader"
)

// JCID identifies the shape of an object's property set - one of roughly
// two dozen known object classes, each a literal 32-bit constant defined
// by MS-ONESTORE rather than a field this decoder decomposes. It is
// carried as the metadata partition of every FSSHTTPB object and,
// equivalently, the jcid field of every legacy ObjectDeclaration2 record
// (§4.9).
type JCID uint32

// jcidPropertySetFlag is the one JCID bit this decoder ever sets itself,
// rather than reading off the wire: legacy object-declaration records
// that always carry a property set (ObjectDeclarationWithRefCountFNDX
// and its large-refcount sibling) synthesize a JCID by forcing this flag
// rather than storing one explicitly.
const jcidPropertySetFlag JCID = 0x20000

// ParseJCID reads a JCID as a plain u32.
func ParseJCID(r *reader.Reader) (JCID, error) {
	v, err := r.GetU32()
	if err != nil {
		return 0, err
	}
	return JCID(v), nil
}

// WithPropertySet forces the property-set bit, used when synthesizing a
// JCID for a legacy record shape that does not carry one explicitly.
func (j JCID) WithPropertySet() JCID {
	return j | jcidPropertySetFlag
}

// PropertyId packs a property's numeric id and its PropertyType; arrays
// are distinct Type codes (ArrayOfObjectIDs vs ObjectID, and so on), not
// a separate flag. BoolValue is only meaningful when Type is
// PropertyTypeBool, where the boolean value itself is packed into the id
// word's top bit rather than stored as trailing data.
type PropertyId struct {
	ID        uint32
	Type      PropertyType
	BoolValue bool
}

// PropertyType enumerates the wire-level shape a PropertyValue takes
// (§4.9's 17-entry table).
type PropertyType uint8

const (
	PropertyTypeNoData                          PropertyType = 0x1
	PropertyTypeBool                            PropertyType = 0x2
	PropertyTypeOneByteOfData                   PropertyType = 0x3
	PropertyTypeTwoBytesOfData                  PropertyType = 0x4
	PropertyTypeFourBytesOfData                 PropertyType = 0x5
	PropertyTypeEightBytesOfData                PropertyType = 0x6
	PropertyTypeFourBytesOfLengthFollowedByData PropertyType = 0x7
	PropertyTypeObjectID                        PropertyType = 0x8
	PropertyTypeArrayOfObjectIDs                PropertyType = 0x9
	PropertyTypeObjectSpaceID                   PropertyType = 0xA
	PropertyTypeArrayOfObjectSpaceIDs           PropertyType = 0xB
	PropertyTypeContextID                       PropertyType = 0xC
	PropertyTypeArrayOfContextIDs               PropertyType = 0xD
	PropertyTypeArrayOfPropertyValues           PropertyType = 0x10
	PropertyTypePropertySet                     PropertyType = 0x11
)

// ParsePropertyId reads a packed property id u32: bits 0-25 id, bits
// 26-30 type (5 bits, wide enough for PropertyTypePropertySet's 0x11),
// bit 31 BoolValue (only meaningful for PropertyTypeBool).
func ParsePropertyId(r *reader.Reader) (PropertyId, error) {
	v, err := r.GetU32()
	if err != nil {
		return PropertyId{}, err
	}
	return PropertyId{
		ID:        v & 0x3ffffff,
		Type:      PropertyType((v >> 26) & 0x1f),
		BoolValue: v&(1<<31) != 0,
	}, nil
}

func validatePropertyType(t PropertyType) error {
	switch t {
	case PropertyTypeNoData, PropertyTypeBool, PropertyTypeOneByteOfData,
		PropertyTypeTwoBytesOfData, PropertyTypeFourBytesOfData,
		PropertyTypeEightBytesOfData, PropertyTypeFourBytesOfLengthFollowedByData,
		PropertyTypeObjectID, PropertyTypeArrayOfObjectIDs,
		PropertyTypeObjectSpaceID, PropertyTypeArrayOfObjectSpaceIDs,
		PropertyTypeContextID, PropertyTypeArrayOfContextIDs,
		PropertyTypeArrayOfPropertyValues, PropertyTypePropertySet:
		return nil
	default:
		return errs.New(errs.MalformedOneStoreData, "unrecognized property type 0x%x", t)
	}
}
