package onenote

import (
	"github.com/runbark/onestore/errs"
	"github.com/runbark/onestore/guid"
	"github.com/runbark/onestore/onestore"
)

// buildContent resolves id within space and dispatches on its JCID to
// build the typed Content variant. An object whose JCID this reader
// does not recognize becomes ContentKindUnknown rather than an error, so a
// single unsupported content node doesn't fail the whole page.
func buildContent(id guid.ExGuid, space *onestore.ObjectSpace) (Content, error) {
	obj, ok := space.Objects[id]
	if !ok {
		return Content{}, errs.New(errs.MalformedOneNoteData, "content object %v is missing", id)
	}
	ps := obj.PropSet.PropertySet

	switch bareJCID(obj.JCID) {
	case jcidRichTextNode:
		return Content{Kind: ContentKindRichText, RichText: buildRichText(ps)}, nil
	case jcidTableNode:
		t, err := buildTable(ps, space)
		if err != nil {
			return Content{}, err
		}
		return Content{Kind: ContentKindTable, Table: t}, nil
	case jcidImageNode:
		return Content{Kind: ContentKindImage, Image: buildImage(ps, space)}, nil
	case jcidEmbeddedFileNode:
		return Content{Kind: ContentKindEmbeddedFile, EmbeddedFile: buildEmbeddedFile(ps, space)}, nil
	case jcidInkNode:
		return Content{Kind: ContentKindInk, Ink: buildInk(ps, space)}, nil
	case jcidOutlineNode, jcidOutlineGroup:
		o, err := buildOutline(obj, space)
		if err != nil {
			return Content{}, err
		}
		return Content{Kind: ContentKindOutline, Outline: o}, nil
	default:
		return Content{Kind: ContentKindUnknown, Unknown: &UnknownContent{ObjectID: id, JCID: uint32(obj.JCID)}}, nil
	}
}

func buildRichText(ps onestore.PropertySet) *RichText {
	text, _ := propString(ps, propRichEditTextUnicode)
	lang, _ := propU32(ps, propRichEditTextLangID)
	isTitleText, _ := propBool(ps, propIsTitleText)
	isTitleDate, _ := propBool(ps, propIsTitleDate)
	isTitleTime, _ := propBool(ps, propIsTitleTime)
	return &RichText{
		Text:        text,
		Language:    lang,
		IsTitleText: isTitleText,
		IsTitleDate: isTitleDate,
		IsTitleTime: isTitleTime,
		Tags:        buildNoteTags(ps),
	}
}

func buildTable(ps onestore.PropertySet, space *onestore.ObjectSpace) (*Table, error) {
	rowCount, _ := propU32(ps, propRowCount)
	colCount, _ := propU32(ps, propColumnCount)
	bordersVisible, ok := propBool(ps, propTableBordersVisible)
	if !ok {
		bordersVisible = true
	}

	colWidths := parseF32Array(ps, propTableColumnWidths)

	var rows []TableRow
	for _, rowID := range propObjectRefs(ps, propElementChildNodes) {
		rowObj, ok := space.Objects[rowID]
		if !ok {
			continue
		}
		row, err := buildTableRow(rowObj.PropSet.PropertySet, space)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}

	return &Table{
		Rows:           rows,
		RowCount:       rowCount,
		ColumnCount:    colCount,
		ColumnWidths:   colWidths,
		BordersVisible: bordersVisible,
	}, nil
}

func buildTableRow(ps onestore.PropertySet, space *onestore.ObjectSpace) (TableRow, error) {
	var cells []TableCell
	for _, cellID := range propObjectRefs(ps, propElementChildNodes) {
		cellObj, ok := space.Objects[cellID]
		if !ok {
			continue
		}
		content, err := buildContentList(propObjectRefs(cellObj.PropSet.PropertySet, propContentChildNodes), space)
		if err != nil {
			return TableRow{}, err
		}
		cells = append(cells, TableCell{Content: content})
	}
	return TableRow{Cells: cells}, nil
}

// parseF32Array decodes the MS-ONE "count byte then packed little-endian
// f32s" shape TableColumnWidths/TableColumnsLocked use.
func parseF32Array(ps onestore.PropertySet, id uint32) []float32 {
	b, ok := propBytes(ps, id)
	if !ok || len(b) < 1 {
		return nil
	}
	body := b[1:]
	n := len(body) / 4
	out := make([]float32, 0, n)
	for i := 0; i < n; i++ {
		off := i * 4
		bits := uint32(body[off]) | uint32(body[off+1])<<8 | uint32(body[off+2])<<16 | uint32(body[off+3])<<24
		out = append(out, float32FromU32Bits(bits))
	}
	return out
}

func buildImage(ps onestore.PropertySet, space *onestore.ObjectSpace) *Image {
	width, _ := propF32(ps, propPictureWidth)
	height, _ := propF32(ps, propPictureHeight)
	filename, _ := propString(ps, propImageFilename)
	altText, _ := propString(ps, propImageAltText)
	text, _ := propString(ps, propRichEditTextUnicode)
	hyperlink, _ := propString(ps, propWzHyperlinkUrl)

	var data []byte
	if containerID, ok := propObjectRef(ps, propPictureContainer); ok {
		if container, ok := space.Objects[containerID]; ok {
			data = container.FileData
		}
	}

	return &Image{
		Data:         data,
		Filename:     filename,
		AltText:      altText,
		Text:         text,
		Width:        width,
		Height:       height,
		HyperlinkURL: hyperlink,
	}
}

func buildEmbeddedFile(ps onestore.PropertySet, space *onestore.ObjectSpace) *EmbeddedFile {
	filename, _ := propString(ps, propEmbeddedFileName)
	sourcePath, _ := propString(ps, propSourceFilepath)
	media := EmbeddedFileMediaUnknown
	if v, ok := propU32(ps, propIRecordMedia); ok {
		switch v {
		case 1:
			media = EmbeddedFileMediaAudio
		case 2:
			media = EmbeddedFileMediaVideo
		}
	}

	var data []byte
	if containerID, ok := propObjectRef(ps, propEmbeddedFileContainer); ok {
		if container, ok := space.Objects[containerID]; ok {
			data = container.FileData
		}
	}

	return &EmbeddedFile{
		Data:       data,
		Filename:   filename,
		SourcePath: sourcePath,
		MediaType:  media,
	}
}

func buildInk(ps onestore.PropertySet, space *onestore.ObjectSpace) *Ink {
	var strokes []InkStroke
	for _, strokeID := range propObjectRefs(ps, propInkStrokes) {
		strokeObj, ok := space.Objects[strokeID]
		if !ok {
			continue
		}
		strokes = append(strokes, buildInkStroke(strokeObj.PropSet.PropertySet))
	}
	return &Ink{Strokes: strokes}
}

func buildInkStroke(ps onestore.PropertySet) InkStroke {
	pointBytes, _ := propBytes(ps, propInkStrokePoints)
	points := make([]InkPoint, 0, len(pointBytes)/8)
	for off := 0; off+8 <= len(pointBytes); off += 8 {
		xBits := uint32(pointBytes[off]) | uint32(pointBytes[off+1])<<8 | uint32(pointBytes[off+2])<<16 | uint32(pointBytes[off+3])<<24
		yBits := uint32(pointBytes[off+4]) | uint32(pointBytes[off+5])<<8 | uint32(pointBytes[off+6])<<16 | uint32(pointBytes[off+7])<<24
		points = append(points, InkPoint{X: float32FromU32Bits(xBits), Y: float32FromU32Bits(yBits)})
	}

	color := ColorRef{}
	if v, ok := propU32(ps, propInkStrokeColor); ok {
		color = ColorRef{R: uint8(v), G: uint8(v >> 8), B: uint8(v >> 16), Set: true}
	}
	width, _ := propF32(ps, propInkStrokeWidth)
	tip := InkPenTipBall
	if v, ok := propU8(ps, propInkStrokeTip); ok && v != 0 {
		tip = InkPenTipChisel
	}

	return InkStroke{Points: points, Color: color, PenWidth: width, PenTip: tip}
}

func buildOutline(obj onestore.Object, space *onestore.ObjectSpace) (*Outline, error) {
	elements, err := buildOutlineElements(propObjectRefs(obj.PropSet.PropertySet, propElementChildNodes), space)
	if err != nil {
		return nil, err
	}
	return &Outline{Elements: elements}, nil
}

func buildOutlineElements(ids []guid.ExGuid, space *onestore.ObjectSpace) ([]OutlineElement, error) {
	elements := make([]OutlineElement, 0, len(ids))
	for _, id := range ids {
		obj, ok := space.Objects[id]
		if !ok {
			continue
		}
		el, err := buildOutlineElement(obj, space)
		if err != nil {
			return nil, err
		}
		elements = append(elements, el)
	}
	return elements, nil
}

func buildOutlineElement(obj onestore.Object, space *onestore.ObjectSpace) (OutlineElement, error) {
	ps := obj.PropSet.PropertySet
	level, _ := propU8(ps, propOutlineElementChildLevel)

	content, err := buildContentList(propObjectRefs(ps, propContentChildNodes), space)
	if err != nil {
		return OutlineElement{}, err
	}
	children, err := buildOutlineElements(propObjectRefs(ps, propElementChildNodes), space)
	if err != nil {
		return OutlineElement{}, err
	}

	return OutlineElement{Level: level, Content: content, Children: children}, nil
}

func buildContentList(ids []guid.ExGuid, space *onestore.ObjectSpace) ([]Content, error) {
	content := make([]Content, 0, len(ids))
	for _, id := range ids {
		c, err := buildContent(id, space)
		if err != nil {
			return nil, err
		}
		content = append(content, c)
	}
	return content, nil
}

func buildNoteTags(ps onestore.PropertySet) []NoteTag {
	label, hasLabel := propString(ps, propNoteTagLabel)
	if !hasLabel {
		return nil
	}
	shapeVal, _ := propU16(ps, propNoteTagShape)
	completed, _ := propBool(ps, propNoteTagCompleted)
	highlight := ColorRef{}
	if v, ok := propU32(ps, propNoteTagHighlightColor); ok {
		highlight = ColorRef{R: uint8(v), G: uint8(v >> 8), B: uint8(v >> 16), Set: true}
	}
	textColor := ColorRef{}
	if v, ok := propU32(ps, propNoteTagTextColor); ok {
		textColor = ColorRef{R: uint8(v), G: uint8(v >> 8), B: uint8(v >> 16), Set: true}
	}
	return []NoteTag{{
		Label:          label,
		Shape:          parseNoteTagShape(shapeVal),
		HighlightColor: highlight,
		TextColor:      textColor,
		Completed:      completed,
	}}
}
