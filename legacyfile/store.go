package legacyfile

import (
	"github.com/runbark/onestore/reader"
)

// Store is the fully parsed file-level framing of a legacy .one/.onetoc2
// file: its header and the flattened root file node list every
// higher-level object walk starts from.
type Store struct {
	Header       Header
	RootNodeList *FileNodeList
}

// ParseStore reads a legacy revision-store file in full: the fixed
// header, the transaction log (seeding the node-count budget every file
// node list in the file is parsed against), and the root file node
// list. The free-chunk list and hashed-chunk list the header also
// references are allocator and content-dedup bookkeeping with no
// bearing on the object model a reader cares about, so neither is
// walked here.
func ParseStore(r *reader.Reader) (*Store, error) {
	header, err := ParseHeader(r)
	if err != nil {
		return nil, err
	}

	transactionLog, err := ParseTransactionLog(r, header.TransactionLogRef())
	if err != nil {
		return nil, err
	}

	budget := NewNodeCountBudget()
	budget.ApplyTransactionLog(transactionLog)

	rootRef := header.RootFileNodeListRef()
	var rootList *FileNodeList
	if rootRef.IsNil() || rootRef.IsZero() {
		rootList = &FileNodeList{}
	} else {
		rootReader, err := resolveToReader(r, rootRef.Stp(), rootRef.Cb())
		if err != nil {
			return nil, err
		}
		rootList, err = ParseFileNodeList(rootReader, budget, int(rootRef.Cb()))
		if err != nil {
			return nil, err
		}
	}

	return &Store{Header: header, RootNodeList: rootList}, nil
}
