package errs

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsMatchesByKindOnly(t *testing.T) {
	a := New(InvalidPath, "entry path %q is rooted", "/etc/passwd")
	b := New(InvalidPath, "a completely different message")
	if !errors.Is(a, b) {
		t.Fatalf("errors.Is should match on Kind alone, regardless of message")
	}

	c := New(TocFileMissing, "no .onetoc2 file")
	if errors.Is(a, c) {
		t.Fatalf("errors.Is matched across different Kinds")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("underlying failure")
	wrapped := Wrap(MalformedData, cause, "could not parse guid")
	if !errors.Is(wrapped, cause) {
		t.Fatalf("errors.Is(wrapped, cause) = false, want true")
	}
	var asErr *Error
	if !errors.As(wrapped, &asErr) || asErr.Kind != MalformedData {
		t.Fatalf("errors.As did not recover the wrapping *Error with Kind MalformedData")
	}
}

func TestKindString(t *testing.T) {
	if InvalidPath.String() != "InvalidPath" {
		t.Fatalf("InvalidPath.String() = %q, want %q", InvalidPath.String(), "InvalidPath")
	}
}
