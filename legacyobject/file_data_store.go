package legacyobject

import (
	"github.com/runbark/onestore/errs"
	"github.com/runbark/onestore/guid"
	"github.com/runbark/onestore/legacyfile"
)

// fileDataStore is the decoded FileDataStoreListReferenceFND: every
// blob the file's attachments can be loaded from, keyed by the guid
// each FileDataStoreObjectReferenceFND names (MS-ONESTORE 2.5.21).
type fileDataStore struct {
	files map[guid.Guid][]byte
}

// tryParseFileDataStore consumes a FileDataStoreListReferenceFND node at
// the cursor, if one is present.
func tryParseFileDataStore(c *nodeCursor) (*fileDataStore, bool, error) {
	node, ok := c.Peek()
	if !ok || node.Data.FileDataStoreListReferenceFND == nil {
		return nil, false, nil
	}
	c.Next()

	store := &fileDataStore{files: make(map[guid.Guid][]byte)}
	for _, n := range node.Data.FileDataStoreListReferenceFND.List.Nodes {
		entry := n.Data.FileDataStoreObjectReferenceFND
		if entry == nil {
			return nil, false, errs.New(errs.MalformedOneStoreData,
				"file data store list must only contain FileDataStoreObjectReferenceFND nodes")
		}
		store.files[entry.Guid] = entry.Target.FileData
	}
	return store, true, nil
}

// findFile resolves an attachment through the store, looking up the
// "<ifndf>"-stripped id as a parsed Guid.
func (s *fileDataStore) findFile(info legacyfile.AttachmentInfo) ([]byte, error) {
	return info.LoadData(func(id string) ([]byte, error) {
		g, err := guid.ParseString(id)
		if err != nil {
			return nil, errs.Wrap(errs.ResolutionFailed, err, "file data reference %q is not a valid guid", id)
		}
		data, ok := s.files[g]
		if !ok {
			return nil, errs.New(errs.ResolutionFailed, "no file data store entry found for guid %v", g)
		}
		return data, nil
	})
}
