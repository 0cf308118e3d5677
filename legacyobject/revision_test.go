package legacyobject

import (
	"testing"

	"github.com/runbark/onestore/onestore"
)

func TestToRevisionRoleAcceptsKnownRoles(t *testing.T) {
	cases := []onestore.RevisionRole{
		onestore.RevisionRoleDefaultContent,
		onestore.RevisionRoleMetadata,
		onestore.RevisionRoleEncryptionKey,
		onestore.RevisionRoleVersionMetadata,
	}
	for _, want := range cases {
		got, err := toRevisionRole(uint32(want))
		if err != nil {
			t.Fatalf("toRevisionRole(%d): %v", want, err)
		}
		if got != want {
			t.Fatalf("toRevisionRole(%d) = %v, want %v", want, got, want)
		}
	}
}

func TestToRevisionRoleRejectsUnknownRole(t *testing.T) {
	if _, err := toRevisionRole(99); err == nil {
		t.Fatalf("toRevisionRole(99) succeeded, want an error for an undefined role")
	}
}
