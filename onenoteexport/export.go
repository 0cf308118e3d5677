// Package onenoteexport writes a parsed onenote.Notebook back out to an
// ordinary directory tree: one subdirectory per SectionGroup, one text
// file per page, and the embedded Image/EmbeddedFile attachments saved
// alongside it. Every file is written atomically via renameio so a
// crash mid-export never leaves a half-written file where a reader
// might see it.
package onenoteexport

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/renameio"

	"github.com/runbark/onestore/onenote"
)

// invalidPathChars matches the characters Windows forbids in a single
// path component, plus ASCII control characters; every one of them a
// group, section or page display name contains is replaced with "_" so
// the exported tree stays host-filesystem safe regardless of what odd
// characters a OneNote title carries.
var invalidPathChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)

func sanitizeName(name string, fallback string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return fallback
	}
	return invalidPathChars.ReplaceAllString(name, "_")
}

// ExtractTo writes nb's entries into dir, creating it and any
// subdirectories as needed. dir must already exist or be creatable by
// os.MkdirAll; it is not itself sanitized, since it is caller-supplied
// rather than derived from untrusted notebook content.
func ExtractTo(nb onenote.Notebook, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for i, entry := range nb.Entries {
		if err := extractEntry(entry, dir, i); err != nil {
			return err
		}
	}
	return nil
}

func extractEntry(entry onenote.Entry, dir string, index int) error {
	switch {
	case entry.Section != nil:
		return extractSection(*entry.Section, dir, index)
	case entry.Group != nil:
		return extractGroup(*entry.Group, dir, index)
	default:
		return nil
	}
}

func extractGroup(group onenote.SectionGroup, dir string, index int) error {
	name := sanitizeName(group.DisplayName, fmt.Sprintf("Group%d", index))
	groupDir := filepath.Join(dir, name)
	if err := os.MkdirAll(groupDir, 0o755); err != nil {
		return err
	}
	for i, entry := range group.Entries {
		if err := extractEntry(entry, groupDir, i); err != nil {
			return err
		}
	}
	return nil
}

func extractSection(section onenote.Section, dir string, index int) error {
	name := sanitizeName(section.DisplayName, fmt.Sprintf("Section%d", index))
	sectionDir := filepath.Join(dir, name)
	if err := os.MkdirAll(sectionDir, 0o755); err != nil {
		return err
	}
	pageNum := 0
	for _, series := range section.PageSeries {
		for _, page := range series.Pages {
			if err := extractPage(page, sectionDir, pageNum); err != nil {
				return err
			}
			pageNum++
		}
	}
	return nil
}

func extractPage(page onenote.Page, dir string, index int) error {
	name := sanitizeName(page.Title, fmt.Sprintf("Page%d", index))
	pageDir := filepath.Join(dir, name)
	if err := os.MkdirAll(pageDir, 0o755); err != nil {
		return err
	}

	if err := writeAtomic(filepath.Join(pageDir, "content.txt"), strings.NewReader(pageText(page))); err != nil {
		return err
	}

	attachments := collectAttachments(page.Content)
	for i, a := range attachments {
		destName := a.filename
		if destName == "" {
			destName = fmt.Sprintf("attachment%d%s", i, a.ext)
		}
		if err := writeAtomic(filepath.Join(pageDir, destName), bytes.NewReader(a.data)); err != nil {
			return err
		}
	}
	return nil
}

// writeAtomic saves r's contents to path via renameio.TempFile, so
// a reader of path either sees the old file or the complete new one,
// never a partial write.
func writeAtomic(path string, r io.Reader) error {
	t, err := renameio.TempFile("", path)
	if err != nil {
		return err
	}
	defer t.Cleanup()
	if _, err := io.Copy(t, r); err != nil {
		return err
	}
	return t.CloseAtomicallyReplace()
}

type attachment struct {
	filename string
	ext      string
	data     []byte
}

func collectAttachments(content []onenote.Content) []attachment {
	var out []attachment
	for _, c := range content {
		switch c.Kind {
		case onenote.ContentKindImage:
			if c.Image != nil && len(c.Image.Data) > 0 {
				out = append(out, attachment{filename: c.Image.Filename, ext: ".png", data: c.Image.Data})
			}
		case onenote.ContentKindEmbeddedFile:
			if c.EmbeddedFile != nil && len(c.EmbeddedFile.Data) > 0 {
				out = append(out, attachment{filename: c.EmbeddedFile.Filename, ext: ".bin", data: c.EmbeddedFile.Data})
			}
		case onenote.ContentKindTable:
			if c.Table != nil {
				for _, row := range c.Table.Rows {
					for _, cell := range row.Cells {
						out = append(out, collectAttachments(cell.Content)...)
					}
				}
			}
		case onenote.ContentKindOutline:
			if c.Outline != nil {
				out = append(out, collectOutlineAttachments(c.Outline.Elements)...)
			}
		}
	}
	return out
}

func collectOutlineAttachments(elements []onenote.OutlineElement) []attachment {
	var out []attachment
	for _, el := range elements {
		out = append(out, collectAttachments(el.Content)...)
		out = append(out, collectOutlineAttachments(el.Children)...)
	}
	return out
}

// pageText concatenates every RichText run reachable from page's
// content array, depth-first, one line per run.
func pageText(page onenote.Page) string {
	var b strings.Builder
	writePageText(&b, page.Content)
	return b.String()
}

func writePageText(b *strings.Builder, content []onenote.Content) {
	for _, c := range content {
		switch c.Kind {
		case onenote.ContentKindRichText:
			if c.RichText != nil && c.RichText.Text != "" {
				b.WriteString(c.RichText.Text)
				b.WriteString("\n")
			}
		case onenote.ContentKindOutline:
			if c.Outline != nil {
				writeOutlineText(b, c.Outline.Elements)
			}
		case onenote.ContentKindTable:
			if c.Table != nil {
				for _, row := range c.Table.Rows {
					for _, cell := range row.Cells {
						writePageText(b, cell.Content)
					}
				}
			}
		}
	}
}

func writeOutlineText(b *strings.Builder, elements []onenote.OutlineElement) {
	for _, el := range elements {
		writePageText(b, el.Content)
		writeOutlineText(b, el.Children)
	}
}

