package legacyfile

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/runbark/onestore/errs"
	"github.com/runbark/onestore/reader"
)

const (
	fileNodeListHeaderMagic = 0xA4567AB1F5F7F4C4
	fileNodeListFooterMagic = 0x8BC215C38233BA4B
	fileNodeListMinID       = 0x0010
)

// FileNodeListHeader opens each fragment of a file node list: a fixed
// magic, the list's id (shared by every fragment in the chain, and used
// to look up an externally-supplied node-count budget), and this
// fragment's sequence number.
type FileNodeListHeader struct {
	FileNodeListID    uint32
	NFragmentSequence uint32
}

func parseFileNodeListHeader(r *reader.Reader) (FileNodeListHeader, error) {
	magic, err := r.GetU64()
	if err != nil {
		return FileNodeListHeader{}, err
	}
	if magic != fileNodeListHeaderMagic {
		return FileNodeListHeader{}, errs.New(errs.MalformedOneStoreData,
			"file node list fragment magic 0x%x does not match the expected 0x%x", magic, uint64(fileNodeListHeaderMagic))
	}
	id, err := r.GetU32()
	if err != nil {
		return FileNodeListHeader{}, err
	}
	if id < fileNodeListMinID {
		logrus.Warnf("legacyfile: file_node_list_id 0x%x is below the expected minimum 0x%x", id, fileNodeListMinID)
	}
	seq, err := r.GetU32()
	if err != nil {
		return FileNodeListHeader{}, err
	}
	return FileNodeListHeader{FileNodeListID: id, NFragmentSequence: seq}, nil
}

// FileNodeListFragment is one physically contiguous piece of a
// (possibly split) file node list: its header, the nodes it carries
// (with Null nodes already dropped - they exist only to pad a fragment
// out and carry no data of their own), and a reference to the next
// fragment in the chain.
type FileNodeListFragment struct {
	Header       FileNodeListHeader
	FileNodes    []FileNode
	NextFragment FileChunkReference64x32
}

// parseFileNodeListFragment reads a fragment occupying exactly size
// bytes: a 16-byte header, file nodes until the fragment runs out of
// room or its node-count budget is exhausted, then a FileChunkReference64x32
// and an 8-byte footer magic filling out the fragment's declared size.
func parseFileNodeListFragment(r *reader.Reader, budget *NodeCountBudget, size int) (FileNodeListFragment, error) {
	header, err := parseFileNodeListHeader(r)
	if err != nil {
		return FileNodeListFragment{}, err
	}

	var nodes []FileNode
	fileNodeSize := 0
	remaining0 := r.Remaining()

	maximumNodeCount, ok := budget.Get(header.FileNodeListID)
	if !ok {
		logrus.Warn("legacyfile: no node count budget found for file node list, parsing until the fragment runs out of room")
		maximumNodeCount = math.MaxInt32
	}

	for size-36-fileNodeSize >= 4 && maximumNodeCount > 0 {
		node, err := ParseFileNode(r, budget)
		if err != nil {
			return FileNodeListFragment{}, err
		}
		fileNodeSize += node.Size

		if !node.IsChunkTerminator() && !node.IsNull() {
			maximumNodeCount--
		}
		if !node.IsNull() {
			nodes = append(nodes, node)
		}

		if remaining0-r.Remaining() != fileNodeSize {
			return FileNodeListFragment{}, errs.New(errs.MalformedOneNoteFileData,
				"file node list fragment consumed %d bytes but accounted for %d", remaining0-r.Remaining(), fileNodeSize)
		}
	}

	budget.Set(header.FileNodeListID, maximumNodeCount)

	paddingLength := size - 36 - fileNodeSize
	if paddingLength > 0 {
		if err := r.Advance(paddingLength); err != nil {
			return FileNodeListFragment{}, err
		}
	}

	next, err := ParseFileChunkReference64x32(r)
	if err != nil {
		return FileNodeListFragment{}, err
	}

	footer, err := r.GetU64()
	if err != nil {
		return FileNodeListFragment{}, err
	}
	if footer != fileNodeListFooterMagic {
		return FileNodeListFragment{}, errs.New(errs.MalformedOneStoreData,
			"file node list fragment footer 0x%x does not match the expected 0x%x", footer, uint64(fileNodeListFooterMagic))
	}

	return FileNodeListFragment{Header: header, FileNodes: nodes, NextFragment: next}, nil
}

// FileNodeList is the flattened sequence of file nodes across every
// fragment of a (possibly split across multiple chunks) node list.
// ChunkTerminatorFND nodes, kept in each fragment's own FileNodes but
// never counted against the node-count budget, are dropped here - once
// the fragments are stitched together they carry no further meaning.
type FileNodeList struct {
	Nodes []FileNode
}

// ParseFileNodeList reads the first fragment of a file node list
// starting at r and occupying size bytes, then follows NextFragment
// references until one is nil or zero, validating that each fragment's
// sequence number increments by exactly one starting from zero.
func ParseFileNodeList(r *reader.Reader, budget *NodeCountBudget, size int) (*FileNodeList, error) {
	var nodes []FileNode
	nextFragmentID := uint32(0)

	appendFragment := func(fragment FileNodeListFragment) error {
		if fragment.Header.NFragmentSequence != nextFragmentID {
			return errs.New(errs.MalformedOneStoreData,
				"invalid n_fragment_sequence: was %d, expected %d", fragment.Header.NFragmentSequence, nextFragmentID)
		}
		nextFragmentID = fragment.Header.NFragmentSequence + 1
		for _, node := range fragment.FileNodes {
			if node.IsChunkTerminator() {
				continue
			}
			nodes = append(nodes, node)
		}
		return nil
	}

	fragment, err := parseFileNodeListFragment(r, budget, size)
	if err != nil {
		return nil, err
	}
	if err := appendFragment(fragment); err != nil {
		return nil, err
	}
	next := fragment.NextFragment

	for !next.IsNil() && !next.IsZero() {
		fragReader, err := next.ResolveToReader(r)
		if err != nil {
			return nil, err
		}
		fragment, err := parseFileNodeListFragment(fragReader, budget, int(next.Cb()))
		if err != nil {
			return nil, err
		}
		if err := appendFragment(fragment); err != nil {
			return nil, err
		}
		next = fragment.NextFragment
	}

	return &FileNodeList{Nodes: nodes}, nil
}
