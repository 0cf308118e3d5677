package onenote

import (
	"github.com/runbark/onestore/errs"
	"github.com/runbark/onestore/guid"
	"github.com/runbark/onestore/onestore"
)

const propAuthorName = 0x87

// Page is one page of a PageSeries (§6): its title, outline level
// within the series, author, page height, and top-level content array.
type Page struct {
	Title    string
	Level    uint8
	Author   string
	Height   float32
	Width    float32
	Size     PageSize
	RTL      bool
	Content  []Content
}

// parsePage resolves a page's own object space (one CellId per page,
// named by its parent PageSeriesNode's ChildGraphSpaceElementNodes) and
// builds a Page from its DefaultContent root (a PageNode, MS-ONE
// 2.2.20).
func parsePage(store *onestore.OneStore, pageSpace guid.CellId) (Page, error) {
	space, ok := store.ObjectSpaceOf(pageSpace.Space)
	if !ok {
		return Page{}, errs.New(errs.MalformedOneNoteData, "page object space %v is missing", pageSpace.Space)
	}
	root, ok := space.Root(onestore.RevisionRoleDefaultContent)
	if !ok {
		return Page{}, errs.New(errs.MalformedOneNoteData, "page object space %v has no content root", pageSpace.Space)
	}
	if bareJCID(root.JCID) != jcidPageNode {
		return Page{}, errs.New(errs.MalformedOneNoteData, "page content root has unexpected JCID 0x%x", root.JCID)
	}
	ps := root.PropSet.PropertySet

	titleID, hasTitle := propObjectRef(ps, propStructureElementChildNodes)
	var title string
	if hasTitle {
		title = resolveTitleText(titleID, space)
	} else if cached, ok := propString(ps, propCachedTitleStringFromPage); ok {
		title = cached
	}

	author := resolveAuthor(ps, space)
	height, _ := propF32(ps, propPageHeight)
	width, _ := propF32(ps, propPageWidth)
	sizeVal, _ := propU8(ps, propPageSize)
	rtl, _ := propBool(ps, propEditRootRTL)

	content, err := buildContentList(propObjectRefs(ps, propElementChildNodes), space)
	if err != nil {
		return Page{}, err
	}

	level, _ := propU8(ps, propOutlineElementChildLevel)

	return Page{
		Title:   title,
		Level:   level,
		Author:  author,
		Height:  height,
		Width:   width,
		Size:    parsePageSize(sizeVal),
		RTL:     rtl,
		Content: content,
	}, nil
}

// resolveTitleText finds the page's TitleNode (referenced from
// StructureElementChildNodes) and concatenates the text of every
// RichText run among its children.
func resolveTitleText(titleID guid.ExGuid, space *onestore.ObjectSpace) string {
	titleObj, ok := space.Objects[titleID]
	if !ok {
		return ""
	}
	var text string
	for _, childID := range propObjectRefs(titleObj.PropSet.PropertySet, propElementChildNodes) {
		child, ok := space.Objects[childID]
		if !ok || bareJCID(child.JCID) != jcidRichTextNode {
			continue
		}
		if s, ok := propString(child.PropSet.PropertySet, propRichEditTextUnicode); ok {
			text += s
		}
	}
	return text
}

// resolveAuthor follows AuthorMostRecent (falling back to
// AuthorOriginal) to an AuthorContainer object and reads its display
// name, or returns "" if the page has no author reference.
func resolveAuthor(ps onestore.PropertySet, space *onestore.ObjectSpace) string {
	authorID, ok := propObjectRef(ps, propAuthorMostRecent)
	if !ok {
		authorID, ok = propObjectRef(ps, propAuthorOriginal)
	}
	if !ok {
		return ""
	}
	authorObj, ok := space.Objects[authorID]
	if !ok {
		return ""
	}
	name, _ := propString(authorObj.PropSet.PropertySet, propAuthorName)
	return name
}
