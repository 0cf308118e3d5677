package onenote

import "github.com/runbark/onestore/onestore"

// Well-known JCIDs (MS-ONESTORE 2.1.12), named after the object class
// they identify. Only the subset the page/section/notebook walker below
// actually dispatches on is kept; an object whose JCID is not one of
// these is carried through as ContentKindUnknown rather than rejected.
const (
	jcidSectionNode                       onestore.JCID = 0x00060007
	jcidPageSeriesNode                    onestore.JCID = 0x00060008
	jcidPageNode                          onestore.JCID = 0x0006000B
	jcidOutlineNode                       onestore.JCID = 0x0006000C
	jcidOutlineElementNode                onestore.JCID = 0x0006000D
	jcidRichTextNode                      onestore.JCID = 0x0006000E
	jcidImageNode                         onestore.JCID = 0x00060011
	jcidNumberListNode                    onestore.JCID = 0x00060012
	jcidInkNode                           onestore.JCID = 0x00060014
	jcidOutlineGroup                      onestore.JCID = 0x00060019
	jcidTableNode                         onestore.JCID = 0x00060022
	jcidTableRowNode                      onestore.JCID = 0x00060023
	jcidTableCellNode                     onestore.JCID = 0x00060024
	jcidTitleNode                         onestore.JCID = 0x0006002C
	jcidEmbeddedFileNode                  onestore.JCID = 0x00060035
	jcidPageManifestNode                  onestore.JCID = 0x00060037
	jcidPictureContainer                  onestore.JCID = 0x00080039
	jcidEmbeddedFileContainer             onestore.JCID = 0x00080036
	jcidPageMetadata                      onestore.JCID = 0x00020030
	jcidSectionMetadata                   onestore.JCID = 0x00020031
	jcidRevisionMetadata                  onestore.JCID = 0x00020044
	jcidTocContainer                      onestore.JCID = 0x00020001
	jcidAuthorContainer                   onestore.JCID = 0x00120001
	jcidParagraphStyleObject              onestore.JCID = 0x0012004D
	jcidNoteTagSharedDefinitionContainer  onestore.JCID = 0x00120043
)

// bareJCID strips the synthesized property-set bit some legacy records
// force onto a JCID (onestore.JCID.WithPropertySet), so dispatch can
// compare against the bare constants above regardless of which format
// produced the object.
func bareJCID(j onestore.JCID) onestore.JCID {
	return j &^ 0x20000
}
