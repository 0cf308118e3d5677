package onenoteexport

import (
	"strings"
	"testing"

	"github.com/runbark/onestore/onenote"
)

func TestSanitizeNameReplacesForbiddenCharacters(t *testing.T) {
	got := sanitizeName(`a/b\c:d*e?f"g<h>i|j`, "fallback")
	if strings.ContainsAny(got, `/\:*?"<>|`) {
		t.Fatalf("sanitizeName left a forbidden character in %q", got)
	}
}

func TestSanitizeNameFallsBackOnEmpty(t *testing.T) {
	if got := sanitizeName("   ", "Page3"); got != "Page3" {
		t.Fatalf("sanitizeName(blank) = %q, want fallback %q", got, "Page3")
	}
	if got := sanitizeName("", "Page3"); got != "Page3" {
		t.Fatalf("sanitizeName(empty) = %q, want fallback %q", got, "Page3")
	}
}

func TestSanitizeNameKeepsOrdinaryNames(t *testing.T) {
	if got := sanitizeName("  Grocery List  ", "fallback"); got != "Grocery List" {
		t.Fatalf("sanitizeName(ordinary) = %q, want %q", got, "Grocery List")
	}
}

func TestPageTextConcatenatesRichTextDepthFirst(t *testing.T) {
	page := onenote.Page{
		Content: []onenote.Content{
			{Kind: onenote.ContentKindRichText, RichText: &onenote.RichText{Text: "Title"}},
			{Kind: onenote.ContentKindOutline, Outline: &onenote.Outline{
				Elements: []onenote.OutlineElement{
					{
						Content: []onenote.Content{
							{Kind: onenote.ContentKindRichText, RichText: &onenote.RichText{Text: "Parent line"}},
						},
						Children: []onenote.OutlineElement{
							{
								Content: []onenote.Content{
									{Kind: onenote.ContentKindRichText, RichText: &onenote.RichText{Text: "Child line"}},
								},
							},
						},
					},
				},
			}},
		},
	}

	got := pageText(page)
	want := "Title\nParent line\nChild line\n"
	if got != want {
		t.Fatalf("pageText = %q, want %q", got, want)
	}
}

func TestPageTextSkipsEmptyRuns(t *testing.T) {
	page := onenote.Page{
		Content: []onenote.Content{
			{Kind: onenote.ContentKindRichText, RichText: &onenote.RichText{Text: ""}},
			{Kind: onenote.ContentKindRichText, RichText: &onenote.RichText{Text: "Only this"}},
		},
	}
	if got := pageText(page); got != "Only this\n" {
		t.Fatalf("pageText = %q, want %q", got, "Only this\n")
	}
}

func TestPageTextWalksTableCells(t *testing.T) {
	page := onenote.Page{
		Content: []onenote.Content{
			{Kind: onenote.ContentKindTable, Table: &onenote.Table{
				Rows: []onenote.TableRow{
					{Cells: []onenote.TableCell{
						{Content: []onenote.Content{
							{Kind: onenote.ContentKindRichText, RichText: &onenote.RichText{Text: "Cell A"}},
						}},
						{Content: []onenote.Content{
							{Kind: onenote.ContentKindRichText, RichText: &onenote.RichText{Text: "Cell B"}},
						}},
					}},
				},
			}},
		},
	}
	if got := pageText(page); got != "Cell A\nCell B\n" {
		t.Fatalf("pageText = %q, want %q", got, "Cell A\nCell B\n")
	}
}

func TestCollectAttachmentsFindsImagesAndFiles(t *testing.T) {
	content := []onenote.Content{
		{Kind: onenote.ContentKindImage, Image: &onenote.Image{Filename: "photo.png", Data: []byte{1, 2, 3}}},
		{Kind: onenote.ContentKindEmbeddedFile, EmbeddedFile: &onenote.EmbeddedFile{Filename: "notes.pdf", Data: []byte{4, 5}}},
		{Kind: onenote.ContentKindOutline, Outline: &onenote.Outline{
			Elements: []onenote.OutlineElement{
				{Content: []onenote.Content{
					{Kind: onenote.ContentKindImage, Image: &onenote.Image{Filename: "nested.png", Data: []byte{9}}},
				}},
			},
		}},
	}

	got := collectAttachments(content)
	if len(got) != 3 {
		t.Fatalf("collectAttachments found %d attachments, want 3", len(got))
	}
	names := map[string]bool{}
	for _, a := range got {
		names[a.filename] = true
	}
	for _, want := range []string{"photo.png", "notes.pdf", "nested.png"} {
		if !names[want] {
			t.Fatalf("collectAttachments missing %q, got %+v", want, got)
		}
	}
}

func TestCollectAttachmentsSkipsEmptyData(t *testing.T) {
	content := []onenote.Content{
		{Kind: onenote.ContentKindImage, Image: &onenote.Image{Filename: "empty.png"}},
	}
	if got := collectAttachments(content); len(got) != 0 {
		t.Fatalf("collectAttachments returned %d entries for empty image data, want 0", len(got))
	}
}
