package fsshttpbobject

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
			t.Fatalf("toRevisionRole(%d): %v", uint32(want), err)
		}
		if got != want {
			t.Fatalf("toRevisionRole(%d) = %d, want %d", uint32(want), got, want)
		}
	}
}

func TestToRevisionRoleRejectsUnknownRole(t *testing.T) {
	if _, err := toRevisionRole(0xFFFF); err == nil {
		t.Fatalf("toRevisionRole(0xFFFF) succeeded, want error")
	}
}
