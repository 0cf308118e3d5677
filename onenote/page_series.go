package onenote

import (
	"github.com/google/uuid"

	"github.com/runbark/onestore/errs"
	"github.com/runbark/onestore/guid"
	"github.com/runbark/onestore/onestore"
)

// pageMetadataSeed is xored onto every entry of MetaDataObjectsAboveGraphSpace
// to recover the real metadata object id (§6 well-known constants); MS-ONE
// does not document this, it is inferred from observed files.
var pageMetadataSeed = guid.ExGuid{Guid: guid.MustParse("22A8C031-3600-42EE-B714-D7ACDA2435E8")}

func xorExGuid(a, seed guid.ExGuid) guid.ExGuid {
	au := a.Guid.UUID()
	su := seed.Guid.UUID()
	var out uuid.UUID
	for i := range out {
		out[i] = au[i] ^ su[i]
	}
	return guid.ExGuid{Guid: guid.FromUUID(out), Value: a.Value ^ seed.Value}
}

func notRootSpaceErr() error {
	return errs.New(errs.MalformedOneNoteData, "store has no root object space")
}

func missingObjectErr(id guid.ExGuid) error {
	return errs.New(errs.MalformedOneNoteData, "object %v is missing", id)
}

// PageSeries is one series of pages (MS-ONE 2.2.18): its pages in order,
// the metadata object ids declared above the page graph space, and any
// non-fatal per-page parse errors collected along the way (§7's "one
// locally-recovered error" besides the sniffer).
type PageSeries struct {
	Pages        []Page
	PageMetadata []guid.ExGuid
	Errors       []string
}

// parsePageSeries resolves a PageSeriesNode object and builds every page
// its ChildGraphSpaceElementNodes names, collecting per-page parse
// failures into Errors instead of aborting the whole series.
func parsePageSeries(seriesID guid.ExGuid, store *onestore.OneStore) (PageSeries, error) {
	rootSpace, ok := store.RootObjectSpace()
	if !ok {
		return PageSeries{}, notRootSpaceErr()
	}
	obj, ok := rootSpace.Objects[seriesID]
	if !ok {
		return PageSeries{}, missingObjectErr(seriesID)
	}
	ps := obj.PropSet.PropertySet

	pageSpaces := propObjectSpaceRefs(ps, propChildGraphSpaceElementNodes)

	metadataRefs := propObjectRefs(ps, propMetaDataObjectsAboveGraphSpace)
	pageMetadata := make([]guid.ExGuid, len(metadataRefs))
	for i, ref := range metadataRefs {
		pageMetadata[i] = xorExGuid(ref, pageMetadataSeed)
	}

	var series PageSeries
	series.PageMetadata = pageMetadata
	for _, pageSpace := range pageSpaces {
		page, err := parsePage(store, pageSpace)
		if err != nil {
			series.Errors = append(series.Errors, err.Error())
			continue
		}
		series.Pages = append(series.Pages, page)
	}
	return series, nil
}
