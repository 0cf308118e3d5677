package onestore

import "github.com/runbark/onestore/guid"

// MappingTable resolves the local CompactIds embedded in an object's
// property set to global identifiers. Two wire formats produce two very
// different implementations (§3 "MappingTable (two variants)"), so
// decoded properties never hold resolved IDs directly - they hold
// CompactIds and a reference to whichever MappingTable their enclosing
// object was built with, exactly as the teacher's groupDescriptors never
// bakes in a block-group's absolute block numbers, only offsets that get
// resolved against the superblock at read time.
type MappingTable interface {
	// ResolveObject resolves a CompactId recorded at the given zero-based
	// occurrence index (the table_index in §3's disambiguation rule) to a
	// global ExGuid.
	ResolveObject(id guid.CompactId, occurrence int) (guid.ExGuid, bool)
	// ResolveSpace resolves a CompactId to a global CellId.
	ResolveSpace(id guid.CompactId, occurrence int) (guid.CellId, bool)
}

// indexedExGuid and indexedCellId record both a resolved value and the
// occurrence index it was inserted at, so the FSSHTTPB disambiguation
// rule (§9 "one CompactId mapped to several ExGuids; tie-break by
// insertion index") can be applied.
type indexedExGuid struct {
	index int
	value guid.ExGuid
}

type indexedCellId struct {
	index int
	value guid.CellId
}

// FSSHTTPBMapping is the MappingTable variant built while walking a
// revision's object groups (C8): each CompactId may resolve to more than
// one candidate ExGuid/CellId, disambiguated by occurrence index.
type FSSHTTPBMapping struct {
	objects map[guid.CompactId][]indexedExGuid
	spaces  map[guid.CompactId][]indexedCellId
}

// NewFSSHTTPBMapping builds a mapping table from parallel
// (CompactId, ExGuid) and (CompactId, CellId) entry streams, recording
// each entry's position in its stream as the occurrence index used for
// later disambiguation.
func NewFSSHTTPBMapping(objectEntries []ObjectIDEntry, spaceEntries []SpaceIDEntry) *FSSHTTPBMapping {
	m := &FSSHTTPBMapping{
		objects: make(map[guid.CompactId][]indexedExGuid),
		spaces:  make(map[guid.CompactId][]indexedCellId),
	}
	for i, e := range objectEntries {
		m.objects[e.ID] = append(m.objects[e.ID], indexedExGuid{index: i, value: e.Value})
	}
	for i, e := range spaceEntries {
		m.spaces[e.ID] = append(m.spaces[e.ID], indexedCellId{index: i, value: e.Value})
	}
	return m
}

// ObjectIDEntry is one (CompactId -> ExGuid) pairing fed into
// NewFSSHTTPBMapping, built by zipping an object's declared reference
// IDs against the data entry's referenced-object array (§4.8).
type ObjectIDEntry struct {
	ID    guid.CompactId
	Value guid.ExGuid
}

// SpaceIDEntry is the CellId-resolving sibling of ObjectIDEntry, built
// from either the context-reference or object-space-reference streams.
type SpaceIDEntry struct {
	ID    guid.CompactId
	Value guid.CellId
}

func (m *FSSHTTPBMapping) ResolveObject(id guid.CompactId, occurrence int) (guid.ExGuid, bool) {
	candidates := m.objects[id]
	return resolveExGuid(candidates, occurrence)
}

func resolveExGuid(candidates []indexedExGuid, occurrence int) (guid.ExGuid, bool) {
	if len(candidates) == 1 {
		return candidates[0].value, true
	}
	for _, c := range candidates {
		if c.index == occurrence {
			return c.value, true
		}
	}
	return guid.NilExGuid, false
}

func (m *FSSHTTPBMapping) ResolveSpace(id guid.CompactId, occurrence int) (guid.CellId, bool) {
	candidates := m.spaces[id]
	if len(candidates) == 1 {
		return candidates[0].value, true
	}
	for _, c := range candidates {
		if c.index == occurrence {
			return c.value, true
		}
	}
	return guid.CellId{}, false
}

// LegacyMapping is the MappingTable variant used by the legacy
// revision-store format: every object within a revision's global ID
// table shares one guid_index -> Guid map, and a CompactId resolves by
// reconstructing ExGuid{Guid: table[guid_index], Value: n}. The map is
// shared (not copied) across every object built from the same table, so
// it is stored as a pointer - multiple Objects hold the same
// *LegacyMapping exactly as the teacher's groupDescriptors slice is
// shared read-only across every inode lookup in a FileSystem.
type LegacyMapping struct {
	Table map[uint32]guid.Guid
}

// NewLegacyMapping wraps an already-built guid_index -> Guid table.
func NewLegacyMapping(table map[uint32]guid.Guid) *LegacyMapping {
	return &LegacyMapping{Table: table}
}

func (m *LegacyMapping) ResolveObject(id guid.CompactId, _ int) (guid.ExGuid, bool) {
	g, ok := m.Table[id.GuidIndex]
	if !ok {
		return guid.NilExGuid, false
	}
	return guid.ExGuid{Guid: g, Value: uint32(id.N)}, true
}

// ResolveSpace resolves the CompactId through the same guid_index table
// ResolveObject uses, placing the result in Context and leaving Space
// nil: the legacy format has no separate object-space identity, so an
// ObjectSpaceID/ContextID property there just names a revision-store
// object space by its context guid.
func (m *LegacyMapping) ResolveSpace(id guid.CompactId, _ int) (guid.CellId, bool) {
	resolved, ok := m.ResolveObject(id, 0)
	if !ok {
		return guid.CellId{}, false
	}
	return guid.CellId{Context: resolved}, true
}
