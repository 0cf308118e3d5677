package fsshttpb

import (
	"github.com/runbark/onestore/errs"
	"github.com/runbark/onestore/guid"
	"github.com/runbark/onestore/reader"
	"github.com/runbark/onestore/stream"
)

// RevisionManifestRootDeclare names one object (by ExGuid) as filling a
// root role (also an ExGuid, resolved against onestore.RevisionRole by
// the object-assembly layer) within a revision.
type RevisionManifestRootDeclare struct {
	RootID   guid.ExGuid
	ObjectID guid.ExGuid
}

// RevisionManifest describes one revision of an object space: its own
// id, its ancestor (if any), the root objects it declares, and the
// object groups that make up its content (§4.4).
type RevisionManifest struct {
	RevID           guid.ExGuid
	BaseRevID       guid.ExGuid
	RootDeclare     []RevisionManifestRootDeclare
	GroupReferences []guid.ExGuid
}

// HasBase reports whether this revision has an ancestor to chain to
// (base_rev_id.as_option() in §4.4's ancestor-chain rule).
func (m *RevisionManifest) HasBase() bool {
	return !m.BaseRevID.IsNil()
}

func parseRevisionManifest(r *reader.Reader) (RevisionManifest, error) {
	if _, err := stream.TryParse16Start(r, stream.ObjectTypeRevisionManifest); err != nil {
		return RevisionManifest{}, err
	}
	revID, err := guid.ParseExGuid(r)
	if err != nil {
		return RevisionManifest{}, err
	}
	baseRevID, err := guid.ParseExGuid(r)
	if err != nil {
		return RevisionManifest{}, err
	}

	rm := RevisionManifest{RevID: revID, BaseRevID: baseRevID}
	for {
		if stream.HasEnd8(r, stream.ObjectTypeDataElement) {
			if err := endsWithDataElement(r); err != nil {
				return RevisionManifest{}, err
			}
			return rm, nil
		}
		h, err := stream.Parse16Start(r)
		if err != nil {
			return RevisionManifest{}, err
		}
		switch h.Type {
		case stream.ObjectTypeRevisionManifestRoot:
			rootID, err := guid.ParseExGuid(r)
			if err != nil {
				return RevisionManifest{}, err
			}
			objectID, err := guid.ParseExGuid(r)
			if err != nil {
				return RevisionManifest{}, err
			}
			rm.RootDeclare = append(rm.RootDeclare, RevisionManifestRootDeclare{RootID: rootID, ObjectID: objectID})
		case stream.ObjectTypeRevisionManifestGroup:
			ref, err := guid.ParseExGuid(r)
			if err != nil {
				return RevisionManifest{}, err
			}
			rm.GroupReferences = append(rm.GroupReferences, ref)
		default:
			return RevisionManifest{}, errs.New(errs.MalformedFssHttpBData, "unexpected revision manifest entry type %d", h.Type)
		}
	}
}
