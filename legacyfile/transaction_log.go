package legacyfile

import (
	"github.com/runbark/onestore/errs"
	"github.com/runbark/onestore/reader"
)

// TransactionEntry is one (file_node_list_id, node_count) record from a
// transaction log fragment's size table (MS-ONESTORE 2.3.3.2). A src_id
// of 1 marks a sentinel entry, at least one of which every non-empty
// size table must contain; it carries no node-count information of its
// own.
type TransactionEntry struct {
	SrcId                  uint32
	TransactionEntrySwitch uint32
}

// IsSentinel reports whether this entry is the size table's required
// terminator rather than a real node-count record.
func (e TransactionEntry) IsSentinel() bool {
	return e.SrcId == 0x00000001
}

func parseTransactionEntry(r *reader.Reader) (TransactionEntry, error) {
	srcID, err := r.GetU32()
	if err != nil {
		return TransactionEntry{}, err
	}
	sw, err := r.GetU32()
	if err != nil {
		return TransactionEntry{}, err
	}
	return TransactionEntry{SrcId: srcID, TransactionEntrySwitch: sw}, nil
}

// TransactionLogFragment is one fragment of the transaction log chain:
// a size table of TransactionEntry records followed by a reference to
// the next fragment (nil/zero terminates the chain).
type TransactionLogFragment struct {
	SizeTable    []TransactionEntry
	NextFragment FileChunkReference64x32
}

// ParseTransactionLogFragment reads a fragment occupying exactly size
// bytes starting at r's current position: (size-12)/8 entries followed
// by a FileChunkReference64x32. A non-empty size table that contains no
// sentinel entry at all is malformed; sentinel entries themselves are
// dropped from SizeTable since they carry no count.
func ParseTransactionLogFragment(r *reader.Reader, size int) (TransactionLogFragment, error) {
	count := (size - 12) / 8
	entries := make([]TransactionEntry, 0, count)
	sawSentinel := false
	for i := 0; i < count; i++ {
		entry, err := parseTransactionEntry(r)
		if err != nil {
			return TransactionLogFragment{}, err
		}
		if entry.IsSentinel() {
			sawSentinel = true
			continue
		}
		entries = append(entries, entry)
	}
	if count > 0 && !sawSentinel {
		return TransactionLogFragment{}, errs.New(errs.MalformedOneStoreData,
			"transaction log size table of %d entries contains no sentinel", count)
	}
	next, err := ParseFileChunkReference64x32(r)
	if err != nil {
		return TransactionLogFragment{}, err
	}
	return TransactionLogFragment{SizeTable: entries, NextFragment: next}, nil
}

// ParseTransactionLog walks the full transaction log chain starting at
// ref, following NextFragment until a nil or zero reference terminates
// it.
func ParseTransactionLog(r *reader.Reader, ref ChunkReference) ([]TransactionLogFragment, error) {
	var fragments []TransactionLogFragment
	for !ref.IsNil() && !ref.IsZero() {
		fragReader, err := resolveToReader(r, ref.Stp(), ref.Cb())
		if err != nil {
			return nil, err
		}
		fragment, err := ParseTransactionLogFragment(fragReader, int(ref.Cb()))
		if err != nil {
			return nil, err
		}
		fragments = append(fragments, fragment)
		ref = fragment.NextFragment
	}
	return fragments, nil
}

// NodeCountBudget tracks, per file_node_list_id, how many non-terminator
// file nodes remain to be parsed in that list. It is derived from the
// transaction log before the root file-node list is walked, and updated
// as each fragment of a list is consumed so a later fragment of the same
// list inherits the first fragment's remaining budget (§4.6).
type NodeCountBudget struct {
	counts map[uint32]int
}

// NewNodeCountBudget creates an empty budget tracker.
func NewNodeCountBudget() *NodeCountBudget {
	return &NodeCountBudget{counts: make(map[uint32]int)}
}

// ApplyTransactionLog seeds the budget from every non-sentinel entry in
// log, keeping the larger of any two counts seen for the same
// file_node_list_id (later transactions only ever raise a list's
// expected node count).
func (b *NodeCountBudget) ApplyTransactionLog(log []TransactionLogFragment) {
	for _, fragment := range log {
		for _, entry := range fragment.SizeTable {
			if entry.IsSentinel() {
				continue
			}
			newCount := int(entry.TransactionEntrySwitch)
			if current, ok := b.counts[entry.SrcId]; !ok || current < newCount {
				b.counts[entry.SrcId] = newCount
			}
		}
	}
}

// Get returns the remaining node-count budget for the given
// file_node_list_id, and whether one has been recorded at all.
func (b *NodeCountBudget) Get(fileNodeListID uint32) (int, bool) {
	v, ok := b.counts[fileNodeListID]
	return v, ok
}

// Set records the remaining node-count budget for the given
// file_node_list_id, overwriting whatever was there before.
func (b *NodeCountBudget) Set(fileNodeListID uint32, remaining int) {
	b.counts[fileNodeListID] = remaining
}
