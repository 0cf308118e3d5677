package onestore

import (
	"testing"

	"github.com/runbark/onestore/guid"
)

func TestFSSHTTPBMappingSingleCandidateIgnoresOccurrence(t *testing.T) {
	id := guid.CompactId{N: 1, GuidIndex: 2}
	want := guid.ExGuid{Value: 42}
	m := NewFSSHTTPBMapping([]ObjectIDEntry{{ID: id, Value: want}}, nil)

	// a single candidate resolves regardless of which occurrence index
	// is requested - the disambiguation rule only applies when there is
	// more than one candidate for the same CompactId.
	got, ok := m.ResolveObject(id, 0)
	if !ok || !got.Equal(want) {
		t.Fatalf("ResolveObject(occurrence=0) = (%v, %v), want (%v, true)", got, ok, want)
	}
	got, ok = m.ResolveObject(id, 7)
	if !ok || !got.Equal(want) {
		t.Fatalf("ResolveObject(occurrence=7) = (%v, %v), want (%v, true)", got, ok, want)
	}
}

func TestFSSHTTPBMappingMultipleCandidatesDisambiguateByOccurrence(t *testing.T) {
	id := guid.CompactId{N: 1, GuidIndex: 2}
	first := guid.ExGuid{Value: 1}
	second := guid.ExGuid{Value: 2}
	m := NewFSSHTTPBMapping([]ObjectIDEntry{
		{ID: id, Value: first},
		{ID: id, Value: second},
	}, nil)

	got, ok := m.ResolveObject(id, 0)
	if !ok || !got.Equal(first) {
		t.Fatalf("ResolveObject(occurrence=0) = (%v, %v), want (%v, true)", got, ok, first)
	}
	got, ok = m.ResolveObject(id, 1)
	if !ok || !got.Equal(second) {
		t.Fatalf("ResolveObject(occurrence=1) = (%v, %v), want (%v, true)", got, ok, second)
	}
	if _, ok := m.ResolveObject(id, 2); ok {
		t.Fatalf("ResolveObject(occurrence=2) succeeded, want false (no such candidate)")
	}
}

func TestFSSHTTPBMappingUnknownIDFails(t *testing.T) {
	m := NewFSSHTTPBMapping(nil, nil)
	if _, ok := m.ResolveObject(guid.CompactId{N: 9, GuidIndex: 9}, 0); ok {
		t.Fatalf("ResolveObject found a candidate in an empty mapping table")
	}
}

func TestLegacyMappingResolveObjectAndSpace(t *testing.T) {
	g := guid.MustParse("12345678-1234-5678-1234-567812345678")
	m := NewLegacyMapping(map[uint32]guid.Guid{5: g})

	resolved, ok := m.ResolveObject(guid.CompactId{N: 3, GuidIndex: 5}, 0)
	if !ok || resolved.Value != 3 || !resolved.Guid.Equal(g) {
		t.Fatalf("ResolveObject = (%+v, %v), want {Guid:%v Value:3}", resolved, ok, g)
	}

	space, ok := m.ResolveSpace(guid.CompactId{N: 3, GuidIndex: 5}, 0)
	if !ok || !space.Context.Equal(resolved) || !space.Space.IsNil() {
		t.Fatalf("ResolveSpace = (%+v, %v), want Context=%v Space=nil", space, ok, resolved)
	}
}

func TestLegacyMappingUnknownIndexFails(t *testing.T) {
	m := NewLegacyMapping(map[uint32]guid.Guid{})
	if _, ok := m.ResolveObject(guid.CompactId{N: 1, GuidIndex: 99}, 0); ok {
		t.Fatalf("ResolveObject found a candidate for an unregistered guid index")
	}
}
