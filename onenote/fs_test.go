package onenote

import (
	"errors"
	"testing"

	"github.com/runbark/onestore/errs"
)

func TestResolveEntryPathAccepts(t *testing.T) {
	got, err := resolveEntryPath("/notebooks/mine", "Section1.one")
	if err != nil {
		t.Fatalf("resolveEntryPath: %v", err)
	}
	want := "/notebooks/mine/Section1.one"
	if got != want {
		t.Fatalf("resolveEntryPath = %q, want %q", got, want)
	}
}

func TestResolveEntryPathRejectsTraversal(t *testing.T) {
	cases := []string{
		"../escape.one",
		"sub/../../escape.one",
		"/etc/passwd",
		`C:\Windows\escape.one`,
		"",
	}
	for _, name := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := resolveEntryPath("/notebooks/mine", name)
			if err == nil {
				t.Fatalf("resolveEntryPath(%q) succeeded, want InvalidPath", name)
			}
			var e *errs.Error
			if !errors.As(err, &e) || e.Kind != errs.InvalidPath {
				t.Fatalf("resolveEntryPath(%q) error = %v, want errs.InvalidPath", name, err)
			}
		})
	}
}

func TestResolveEntryPathCanonicalizesUnderBase(t *testing.T) {
	// canonicalize(candidate) must start with canonicalize(base), even
	// for a name that only escapes via a same-level sibling, e.g.
	// "../mine-sibling/x.one" does not contain a literal base prefix
	// as a string but could still collide with a naive prefix check.
	_, err := resolveEntryPath("/notebooks/mine", "sibling/../../mine-sibling/x.one")
	if err == nil {
		t.Fatalf("expected InvalidPath for a path that escapes base via sibling traversal")
	}
}
