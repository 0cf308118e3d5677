package onenote

import "testing"

func TestBareJCIDStripsPropertySetFlag(t *testing.T) {
	withFlag := jcidPageNode | 0x20000
	if got := bareJCID(withFlag); got != jcidPageNode {
		t.Fatalf("bareJCID(%#x) = %#x, want %#x", uint32(withFlag), uint32(got), uint32(jcidPageNode))
	}
}

func TestBareJCIDLeavesPlainJCIDUnchanged(t *testing.T) {
	if got := bareJCID(jcidRichTextNode); got != jcidRichTextNode {
		t.Fatalf("bareJCID(%#x) = %#x, want unchanged", uint32(jcidRichTextNode), uint32(got))
	}
}
