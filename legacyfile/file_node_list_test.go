package legacyfile

import (
	"encoding/binary"
	"testing"

	"github.com/runbark/onestore/reader"
)

// buildEmptyFragment encodes one file-node-list fragment carrying no
// nodes: header, zero padding, a nil next-fragment reference, and the
// footer magic - exactly 36 bytes, the fixed overhead
// parseFileNodeListFragment accounts for before any node data.
func buildEmptyFragment(id uint32, seq uint32) []byte {
	b := make([]byte, 36)
	binary.LittleEndian.PutUint64(b[0:8], fileNodeListHeaderMagic)
	binary.LittleEndian.PutUint32(b[8:12], id)
	binary.LittleEndian.PutUint32(b[12:16], seq)
	// next fragment reference: nil encoding (all-ones stp, zero cb).
	binary.LittleEndian.PutUint64(b[16:24], 0xffffffffffffffff)
	binary.LittleEndian.PutUint32(b[24:28], 0)
	binary.LittleEndian.PutUint64(b[28:36], fileNodeListFooterMagic)
	return b
}

func TestParseFileNodeListAcceptsFirstFragment(t *testing.T) {
	budget := NewNodeCountBudget()
	wire := buildEmptyFragment(0x10, 0)
	list, err := ParseFileNodeList(reader.New(wire), budget, len(wire))
	if err != nil {
		t.Fatalf("ParseFileNodeList: %v", err)
	}
	if len(list.Nodes) != 0 {
		t.Fatalf("expected no nodes, got %d", len(list.Nodes))
	}
}

func TestParseFileNodeListRejectsSequenceGap(t *testing.T) {
	budget := NewNodeCountBudget()
	// the first fragment in any chain must carry n_fragment_sequence
	// == 0; starting at 1 is a gap and must be rejected.
	wire := buildEmptyFragment(0x10, 1)
	_, err := ParseFileNodeList(reader.New(wire), budget, len(wire))
	if err == nil {
		t.Fatalf("ParseFileNodeList accepted a fragment sequence starting at 1, want an error")
	}
}
