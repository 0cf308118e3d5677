package onenote

import (
	"github.com/runbark/onestore/guid"
)

// PageSize is the page's declared paper size (MS-ONE PageSize property),
// defaulting to PageSizeAuto when the property is absent.
type PageSize int

const (
	PageSizeAuto PageSize = iota
	PageSizeUsLetter
	PageSizeUsLegal
	PageSizeA3
	PageSizeA4
	PageSizeA5
	PageSizeB4
	PageSizeB5
	PageSizeExecutive
)

func parsePageSize(v uint8) PageSize {
	if int(v) > int(PageSizeExecutive) {
		return PageSizeAuto
	}
	return PageSize(v)
}

// Content is the sum type a Page's content array holds (§6): exactly
// one of these variants is non-nil, selected by Kind.
type Content struct {
	Kind         ContentKind
	RichText     *RichText
	Table        *Table
	Image        *Image
	EmbeddedFile *EmbeddedFile
	Ink          *Ink
	Outline      *Outline
	IFrame       *IFrame
	// Unknown carries the JCID of a content object this reader does
	// not recognize, so a page can still be walked structurally even
	// when one of its children is a future or unsupported object kind.
	Unknown *UnknownContent
}

type ContentKind int

const (
	ContentKindRichText ContentKind = iota + 1
	ContentKindTable
	ContentKindImage
	ContentKindEmbeddedFile
	ContentKindInk
	ContentKindOutline
	ContentKindIFrame
	ContentKindUnknown
)

// UnknownContent is the catch-all Content variant for an object whose
// JCID this reader has no dedicated builder for.
type UnknownContent struct {
	ObjectID guid.ExGuid
	JCID     uint32
}

// RichText is a run of formatted text, one OutlineElement content
// child (MS-ONE 2.2.24 RichTextNode).
type RichText struct {
	Text               string
	Language            uint32
	IsTitleText        bool
	IsTitleDate        bool
	IsTitleTime        bool
	Tags               []NoteTag
}

// Table is a grid of TableRow children (MS-ONE 2.2.41 TableNode).
type Table struct {
	Rows           []TableRow
	RowCount       uint32
	ColumnCount    uint32
	ColumnWidths   []float32
	BordersVisible bool
}

// TableRow is one row of table cells.
type TableRow struct {
	Cells []TableCell
}

// TableCell is one table cell's nested Outline content.
type TableCell struct {
	Content []Content
}

// Image is a picture attachment, optionally carrying OCR'd text (MS-ONE
// 2.2.33 ImageNode).
type Image struct {
	Data        []byte
	Filename    string
	AltText     string
	Text        string
	Width       float32
	Height      float32
	HyperlinkURL string
}

// EmbeddedFile is a non-image file attachment (MS-ONE 2.2.29
// EmbeddedFileNode): a raw source file preserved alongside the page.
type EmbeddedFile struct {
	Data         []byte
	Filename     string
	SourcePath   string
	MediaType    EmbeddedFileMediaType
}

type EmbeddedFileMediaType int

const (
	EmbeddedFileMediaUnknown EmbeddedFileMediaType = iota
	EmbeddedFileMediaAudio
	EmbeddedFileMediaVideo
)

// Ink is a collection of pen strokes (MS-ONE 2.2.34 InkNode); not
// present in the distilled original, added here because pen/touch
// content is common enough in real notebooks to be worth a dedicated
// variant rather than falling through to Unknown.
type Ink struct {
	Strokes []InkStroke
}

// InkStroke is one continuous pen stroke: an ordered list of (x, y)
// points plus the pen's color and nib width/shape.
type InkStroke struct {
	Points   []InkPoint
	Color    ColorRef
	PenWidth float32
	PenTip   InkPenTip
}

type InkPoint struct {
	X, Y float32
}

type InkPenTip int

const (
	InkPenTipBall InkPenTip = iota
	InkPenTipChisel
)

// ColorRef is a possibly-absent RGB color, matching how note-tag and
// ink color properties pack "no color set" as a sentinel rather than
// omitting the property.
type ColorRef struct {
	R, G, B uint8
	Set     bool
}

// NoteTag is a to-do/flag marker attached to a RichText run (MS-ONE
// 2.2.45 NoteTagSharedDefinitionContainer + 2.3.8 jcidNoteTagContainer).
// Not present in the distilled original; OneNote's "Tags" pane is a
// common enough feature that a typed representation belongs in the
// content model rather than being silently dropped.
type NoteTag struct {
	Label          string
	Shape          NoteTagShape
	HighlightColor ColorRef
	TextColor      ColorRef
	Completed      bool
	DueDate        bool
}

// NoteTagShape is deliberately a coarse-grained int rather than the
// original's 150-plus-entry icon enumeration: the wire format
// distinguishes every icon glyph OneNote can render, but a reader has
// no use for more than "no icon", "checkbox", and "other glyph".
type NoteTagShape int

const (
	NoteTagShapeNone NoteTagShape = iota
	NoteTagShapeCheckbox
	NoteTagShapeOther
)

func parseNoteTagShape(v uint16) NoteTagShape {
	switch v {
	case 0:
		return NoteTagShapeNone
	case 1, 2, 3:
		return NoteTagShapeCheckbox
	default:
		return NoteTagShapeOther
	}
}

// Outline is one outline tree within a page: a list of top-level
// elements, each carrying its own nesting level and child elements.
type Outline struct {
	Elements []OutlineElement
}

// OutlineElement is one bullet/line of an Outline: its content objects
// (usually exactly one RichText, sometimes an Image/Table/Ink), its
// nesting level, and any nested child elements.
type OutlineElement struct {
	Level    uint8
	Content  []Content
	Children []OutlineElement
}

// MathInlineObject is an inline OneMath equation (MS-ONE's math
// formatting property). Not present in the distilled original; it is
// common enough in academic/engineering notebooks that dropping it to
// Unknown would lose meaningfully structured content.
type MathInlineObject struct {
	MathML string
}

// IFrame is an embedded web frame (MS-ONE 2.3.4 jcidIFrameNode). Not
// present in the distilled original; OneNote attaches "Insert Online
// Video"/web clippings this way.
type IFrame struct {
	Source      string
	OriginalURL string
}
