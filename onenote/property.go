package onenote

import (
	"math"
	"unicode/utf16"

	"github.com/runbark/onestore/guid"
	"github.com/runbark/onestore/onestore"
)

// Property ids named after the MS-ONE property they read. Only the
// subset the content builders below consume is declared; everything
// else in an object's property set is ignored.
const (
	propLastModifiedTime          = 0x1C
	propCreationTimeStamp         = 0x1D
	propCachedTitleStringFromPage = 0x2D
	propElementChildNodes         = 0x2E
	propStructureElementChildNodes = 0x2F
	propPortraitPage              = 0x31
	propPageWidth                 = 0x32
	propPageHeight                = 0x33
	propPageMarginOriginX         = 0x34
	propPageMarginOriginY         = 0x35
	propPageMarginLeft            = 0x36
	propPageMarginRight           = 0x37
	propPageMarginTop             = 0x38
	propPageMarginBottom          = 0x39
	propPageSize                  = 0x3A
	propEditRootRTL               = 0x3B
	propOutlineElementChildLevel  = 0x41
	propLayoutMaxHeight           = 0x42
	propLayoutMaxWidth            = 0x43
	propLayoutOutlineReservedWidth = 0x44
	propLayoutMinimumOutlineWidth = 0x45
	propLayoutTightAlignment      = 0x46
	propIsLayoutSizeSetByUser     = 0x47
	propListSpacingMu             = 0x48
	propRgOutlineIndentDistance   = 0x49
	propLayoutAlignmentInParent   = 0x4A
	propLayoutAlignmentSelf       = 0x4B
	propDeletable                 = 0x4C
	propIsTitleDate               = 0x4D
	propCannotBeSelected          = 0x4E
	propIsTitleText               = 0x4F
	propIsReadOnly                = 0x50
	propDescendantsCannotBeMoved  = 0x51
	propLayoutTightLayout         = 0x52
	propContentChildNodes         = 0x53
	propListNodes                 = 0x54
	propAuthorOriginal            = 0x55
	propAuthorMostRecent          = 0x56
	propOutlineElementRTL         = 0x57
	propTextRunFormatting         = 0x58
	propTextRunIndex              = 0x59
	propParagraphStyle            = 0x5A
	propParagraphSpaceBefore      = 0x5B
	propParagraphSpaceAfter       = 0x5C
	propParagraphLineSpacingExact = 0x5D
	propRichEditTextUnicode       = 0x5E
	propTextExtendedAscii         = 0x5F
	propIsTitleTime               = 0x60
	propIsBoilerText              = 0x61
	propRichEditTextLangID        = 0x62
	propReadingOrderRTL           = 0x63
	propRowCount                  = 0x64
	propColumnCount               = 0x65
	propTableColumnsLocked        = 0x66
	propTableColumnWidths         = 0x67
	propTableBordersVisible       = 0x68
	propPictureContainer          = 0x69
	propLanguageID                = 0x6A
	propImageAltText              = 0x6B
	propImageFilename             = 0x6C
	propDisplayedPageNumber       = 0x6D
	propWzHyperlinkUrl            = 0x6E
	propPictureWidth              = 0x6F
	propPictureHeight             = 0x70
	propOffsetFromParentHoriz     = 0x71
	propOffsetFromParentVert      = 0x72
	propIsBackground              = 0x73
	propEmbeddedFileContainer     = 0x74
	propEmbeddedFileName          = 0x75
	propSourceFilepath            = 0x76
	propIRecordMedia              = 0x77
	propNoteTagLabel              = 0x78
	propNoteTagShape              = 0x79
	propNoteTagHighlightColor     = 0x7A
	propNoteTagTextColor          = 0x7B
	propNoteTagPropertyStatus     = 0x7C
	propNoteTagCreated            = 0x7D
	propNoteTagCompleted          = 0x7E
	propInkStrokes                = 0x7F
	propInkStrokePoints           = 0x80
	propInkStrokeColor            = 0x81
	propInkStrokeWidth            = 0x82
	propInkStrokeTip              = 0x83
	propMathFormatting            = 0x84
	propHyperlinkUrl              = 0x85
	propAuthor                    = 0x86

	propNotebookManagementEntityGuid  = 0x88
	propChildGraphSpaceElementNodes   = 0x89
	propMetaDataObjectsAboveGraphSpace = 0x8A
	propTopologyCreationTimeStamp     = 0x8B
	propTocChildren                   = 0x8C
	propFolderChildFilename           = 0x8D
	propNotebookElementOrderingId     = 0x8E
	propSectionColor                  = 0x8F
	propSectionDisplayName            = 0x90
)

func findProperty(ps onestore.PropertySet, id uint32) (onestore.Property, bool) {
	for _, p := range ps.Properties {
		if p.ID.ID == id {
			return p, true
		}
	}
	return onestore.Property{}, false
}

func propBool(ps onestore.PropertySet, id uint32) (bool, bool) {
	p, ok := findProperty(ps, id)
	if !ok {
		return false, false
	}
	return p.ID.BoolValue, true
}

func propScalar(ps onestore.PropertySet, id uint32) (uint64, bool) {
	p, ok := findProperty(ps, id)
	if !ok {
		return 0, false
	}
	return p.Value.Scalar, true
}

func propU8(ps onestore.PropertySet, id uint32) (uint8, bool) {
	v, ok := propScalar(ps, id)
	return uint8(v), ok
}

func propU16(ps onestore.PropertySet, id uint32) (uint16, bool) {
	v, ok := propScalar(ps, id)
	return uint16(v), ok
}

func propU32(ps onestore.PropertySet, id uint32) (uint32, bool) {
	v, ok := propScalar(ps, id)
	return uint32(v), ok
}

// propF32 reads an f32 property: on the wire it is packed into the same
// four-byte scalar slot as any other FourBytesOfData value, just
// reinterpreted as IEEE-754 instead of an integer.
func propF32(ps onestore.PropertySet, id uint32) (float32, bool) {
	v, ok := propScalar(ps, id)
	if !ok {
		return 0, false
	}
	return float32FromU32Bits(uint32(v)), true
}

func float32FromU32Bits(bits uint32) float32 {
	return math.Float32frombits(bits)
}

func propBytes(ps onestore.PropertySet, id uint32) ([]byte, bool) {
	p, ok := findProperty(ps, id)
	if !ok {
		return nil, false
	}
	return p.Value.Bytes, true
}

func propString(ps onestore.PropertySet, id uint32) (string, bool) {
	b, ok := propBytes(ps, id)
	if !ok {
		return "", false
	}
	return decodeUTF16LE(b), true
}

func decodeUTF16LE(b []byte) string {
	units := make([]uint16, len(b)/2)
	for i := range units {
		units[i] = uint16(b[2*i]) | uint16(b[2*i+1])<<8
	}
	return string(utf16.Decode(units))
}

func propObjectRef(ps onestore.PropertySet, id uint32) (guid.ExGuid, bool) {
	p, ok := findProperty(ps, id)
	if !ok || len(p.Value.ObjectRefs) == 0 {
		return guid.NilExGuid, false
	}
	return p.Value.ObjectRefs[0], true
}

func propObjectRefs(ps onestore.PropertySet, id uint32) []guid.ExGuid {
	p, ok := findProperty(ps, id)
	if !ok {
		return nil
	}
	return p.Value.ObjectRefs
}

func propObjectSpaceRefs(ps onestore.PropertySet, id uint32) []guid.CellId {
	p, ok := findProperty(ps, id)
	if !ok {
		return nil
	}
	return p.Value.ObjectSpaceRefs
}
