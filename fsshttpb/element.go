// Package fsshttpb implements the FSSHTTPB data-element graph (§4.4): the
// heterogeneous pool of storage indexes, storage/cell/revision manifests,
// object groups, object-data blobs, and data-element fragments that make
// up the body of a packaged (.one on OneDrive) OneNote file, plus the
// by-id lookup helpers fsshttpbobject walks to assemble objects.
package fsshttpb

import (
	"github.com/runbark/onestore/errs"
	"github.com/runbark/onestore/guid"
	"github.com/runbark/onestore/reader"
	"github.com/runbark/onestore/stream"
)

// ElementKind selects which of the seven data-element bodies follows a
// DataElement's id/serial prefix.
type ElementKind uint64

const (
	ElementKindStorageIndex       ElementKind = 1
	ElementKindStorageManifest    ElementKind = 2
	ElementKindCellManifest       ElementKind = 3
	ElementKindRevisionManifest   ElementKind = 4
	ElementKindObjectGroup        ElementKind = 5
	ElementKindDataElementFragment ElementKind = 6
	ElementKindObjectDataBlob     ElementKind = 10
)

// DataElement is one entry of a DataElementPackage: an id, a serial
// number used to detect stale copies, and exactly one populated body.
type DataElement struct {
	ID     guid.ExGuid
	Serial guid.SerialNumber
	Kind   ElementKind

	StorageIndex     *StorageIndex
	StorageManifest  *StorageManifest
	CellManifest     guid.ExGuid // the referenced revision-mapping id
	RevisionManifest *RevisionManifest
	ObjectGroup      *ObjectGroup
	DataBlob         []byte
	Fragment         *DataElementFragment
}

// parseDataElement reads one DataElement: its own 16-bit DataElement
// start header, an ExGuid id, a SerialNumber, a CompactU64 selector, then
// dispatches to the selected body parser.
func parseDataElement(r *reader.Reader) (DataElement, error) {
	if _, err := stream.TryParse16Start(r, stream.ObjectTypeDataElement); err != nil {
		return DataElement{}, err
	}
	id, err := guid.ParseExGuid(r)
	if err != nil {
		return DataElement{}, err
	}
	serial, err := guid.ParseSerialNumber(r)
	if err != nil {
		return DataElement{}, err
	}
	kindValue, err := guid.ParseCompactU64(r)
	if err != nil {
		return DataElement{}, err
	}
	kind := ElementKind(kindValue)

	el := DataElement{ID: id, Serial: serial, Kind: kind}
	switch kind {
	case ElementKindStorageIndex:
		si, err := parseStorageIndex(r)
		if err != nil {
			return DataElement{}, err
		}
		el.StorageIndex = &si
	case ElementKindStorageManifest:
		sm, err := parseStorageManifest(r)
		if err != nil {
			return DataElement{}, err
		}
		el.StorageManifest = &sm
	case ElementKindCellManifest:
		cm, err := parseCellManifest(r)
		if err != nil {
			return DataElement{}, err
		}
		el.CellManifest = cm
	case ElementKindRevisionManifest:
		rm, err := parseRevisionManifest(r)
		if err != nil {
			return DataElement{}, err
		}
		el.RevisionManifest = &rm
	case ElementKindObjectGroup:
		og, err := parseObjectGroup(r)
		if err != nil {
			return DataElement{}, err
		}
		el.ObjectGroup = &og
	case ElementKindDataElementFragment:
		f, err := parseDataElementFragment(r)
		if err != nil {
			return DataElement{}, err
		}
		el.Fragment = &f
	case ElementKindObjectDataBlob:
		b, err := parseObjectDataBlob(r)
		if err != nil {
			return DataElement{}, err
		}
		el.DataBlob = b
	default:
		return DataElement{}, errs.New(errs.MalformedFssHttpBData, "unrecognized data element selector %d", kindValue)
	}
	return el, nil
}

// endsWithDataElement reads a trailing 8-bit end header of type
// DataElement, the convention every body shape except DataElementFragment
// uses to close out.
func endsWithDataElement(r *reader.Reader) error {
	_, err := stream.TryParse8End(r, stream.ObjectTypeDataElement)
	return err
}

// Package is the parsed DataElementPackage: a 16-bit start header, a
// reserved zero byte, a sequence of elements, and a matching 8-bit end
// header (§4.4).
type Package struct {
	Elements []DataElement
	byID     map[guid.ExGuid]*DataElement
}

// ParsePackage reads a complete DataElementPackage.
func ParsePackage(r *reader.Reader) (*Package, error) {
	if _, err := stream.TryParse16Start(r, stream.ObjectTypeDataElementPackage); err != nil {
		return nil, err
	}
	reserved, err := r.GetU8()
	if err != nil {
		return nil, err
	}
	if reserved != 0 {
		return nil, errs.New(errs.MalformedFssHttpBData, "data element package reserved byte is 0x%02x, want 0", reserved)
	}

	pkg := &Package{byID: make(map[guid.ExGuid]*DataElement)}
	for {
		if stream.HasEnd8(r, stream.ObjectTypeDataElementPackage) {
			if _, err := stream.TryParse8End(r, stream.ObjectTypeDataElementPackage); err != nil {
				return nil, err
			}
			break
		}
		el, err := parseDataElement(r)
		if err != nil {
			return nil, err
		}
		pkg.Elements = append(pkg.Elements, el)
	}
	for i := range pkg.Elements {
		pkg.byID[pkg.Elements[i].ID] = &pkg.Elements[i]
	}
	return pkg, nil
}

// FindElement looks up an element by id.
func (p *Package) FindElement(id guid.ExGuid) (*DataElement, bool) {
	el, ok := p.byID[id]
	return el, ok
}

// FindStorageIndex returns the (first) storage index element in the
// package.
func (p *Package) FindStorageIndex() (*StorageIndex, bool) {
	for i := range p.Elements {
		if p.Elements[i].StorageIndex != nil {
			return p.Elements[i].StorageIndex, true
		}
	}
	return nil, false
}

// FindStorageIndexes returns every storage index element in the
// package, in declaration order.
func (p *Package) FindStorageIndexes() []*StorageIndex {
	var out []*StorageIndex
	for i := range p.Elements {
		if p.Elements[i].StorageIndex != nil {
			out = append(out, p.Elements[i].StorageIndex)
		}
	}
	return out
}

// FindStorageManifest returns the (first) storage manifest element.
func (p *Package) FindStorageManifest() (*StorageManifest, bool) {
	for i := range p.Elements {
		if p.Elements[i].StorageManifest != nil {
			return p.Elements[i].StorageManifest, true
		}
	}
	return nil, false
}

// FindCellRevisionID dereferences a cell-manifest element, returning the
// revision-mapping id it names.
func (p *Package) FindCellRevisionID(id guid.ExGuid) (guid.ExGuid, error) {
	el, ok := p.FindElement(id)
	if !ok {
		return guid.NilExGuid, errs.New(errs.MalformedOneStoreData, "cell manifest %v not found", id)
	}
	if el.Kind != ElementKindCellManifest {
		return guid.NilExGuid, errs.New(errs.MalformedOneStoreData, "element %v is not a cell manifest", id)
	}
	return el.CellManifest, nil
}

// FindRevisionManifest resolves a revision-mapping id to its
// RevisionManifest element.
func (p *Package) FindRevisionManifest(id guid.ExGuid) (*RevisionManifest, error) {
	el, ok := p.FindElement(id)
	if !ok {
		return nil, errs.New(errs.MalformedOneStoreData, "revision manifest %v not found", id)
	}
	if el.RevisionManifest == nil {
		return nil, errs.New(errs.MalformedOneStoreData, "element %v is not a revision manifest", id)
	}
	return el.RevisionManifest, nil
}

// FindObjectGroup resolves a group-reference id to its ObjectGroup
// element.
func (p *Package) FindObjectGroup(id guid.ExGuid) (*ObjectGroup, error) {
	el, ok := p.FindElement(id)
	if !ok {
		return nil, errs.New(errs.MalformedOneStoreData, "object group %v not found", id)
	}
	if el.ObjectGroup == nil {
		return nil, errs.New(errs.MalformedOneStoreData, "element %v is not an object group", id)
	}
	return el.ObjectGroup, nil
}

// FindObjectGroupsForRevision resolves every object group a revision
// manifest references, in declared order.
func (p *Package) FindObjectGroupsForRevision(rm *RevisionManifest) ([]*ObjectGroup, error) {
	groups := make([]*ObjectGroup, 0, len(rm.GroupReferences))
	for _, ref := range rm.GroupReferences {
		g, err := p.FindObjectGroup(ref)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, nil
}

// FindBlob resolves a blob-reference id to its raw bytes.
func (p *Package) FindBlob(id guid.ExGuid) ([]byte, error) {
	el, ok := p.FindElement(id)
	if !ok {
		return nil, errs.New(errs.MalformedOneStoreData, "object data blob %v not found", id)
	}
	if el.DataBlob == nil {
		return nil, errs.New(errs.MalformedOneStoreData, "element %v is not an object data blob", id)
	}
	return el.DataBlob, nil
}
