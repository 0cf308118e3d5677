package onenote

import (
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	decoder "github.com/runbark/onestore"
	"github.com/runbark/onestore/errs"
	"github.com/runbark/onestore/onestore"
)

// Color is a notebook/section color (MS-ONE SectionColor/TocEntry
// color properties).
type Color = ColorRef

// Section is one .one file's content (§6): its display name and the
// page series it contains (almost always exactly one; MS-ONE allows
// more than one series per section file for legacy reasons this reader
// doesn't otherwise distinguish).
type Section struct {
	DisplayName string
	PageSeries  []PageSeries
}

// SectionGroup is a subdirectory carrying its own .onetoc2, recursively
// containing further Section/SectionGroup entries.
type SectionGroup struct {
	DisplayName string
	Entries     []Entry
	Color       *Color
}

// Entry is a Notebook/SectionGroup child: exactly one of Section or
// Group is non-nil.
type Entry struct {
	Section *Section
	Group   *SectionGroup
}

// Notebook is the top-level output of parsing a directory's .onetoc2
// (§6): its entries in TOC order and an optional notebook color.
type Notebook struct {
	Entries []Entry
	Color   *Color
}

// ParseNotebook reads dir's .onetoc2 file through fs, walks its table
// of contents, and recursively parses every Section/SectionGroup it
// names. Entries named OneNote_RecycleBin are skipped.
func ParseNotebook(fs FileSystem, dir string) (Notebook, error) {
	tocPath, err := findTocFile(fs, dir)
	if err != nil {
		return Notebook{}, err
	}
	data, err := fs.ReadFile(tocPath)
	if err != nil {
		return Notebook{}, err
	}
	store, err := decoder.Parse(data)
	if err != nil {
		return Notebook{}, err
	}
	if store.Type != onestore.OneStoreTypeTOC {
		return Notebook{}, errs.New(errs.NotATocFile, "%s is not a table-of-contents file", tocPath)
	}

	root, ok := store.RootObjectSpace()
	if !ok {
		return Notebook{}, notRootSpaceErr()
	}
	rootObj, ok := root.Root(onestore.RevisionRoleDefaultContent)
	if !ok {
		return Notebook{}, errs.New(errs.MalformedOneNoteData, "notebook TOC has no content root")
	}

	tocEntries, color, err := parseTocEntries(rootObj, root)
	if err != nil {
		return Notebook{}, err
	}

	entries, err := parseEntries(fs, dir, tocEntries)
	if err != nil {
		return Notebook{}, err
	}

	return Notebook{Entries: entries, Color: color}, nil
}

func findTocFile(fs FileSystem, dir string) (string, error) {
	names, err := fs.ReadDir(dir)
	if err != nil {
		return "", err
	}
	for _, name := range names {
		if strings.EqualFold(filepath.Ext(name), ".onetoc2") {
			return filepath.Join(dir, name), nil
		}
	}
	return "", errs.New(errs.TocFileMissing, "directory %s has no .onetoc2 file", dir)
}

// tocEntry is one resolved leaf of the TOC container tree: an ordering
// id (for sibling sort) and the filename it names, or a nested group
// with its own children.
type tocEntry struct {
	order    uint32
	filename string
	color    *Color
	children []tocEntry
}

func parseTocEntries(obj onestore.Object, space *onestore.ObjectSpace) ([]tocEntry, *Color, error) {
	if bareJCID(obj.JCID) != jcidTocContainer {
		return nil, nil, errs.New(errs.MalformedOneNoteData, "TOC content root has unexpected JCID 0x%x", obj.JCID)
	}
	entry, err := parseTocContainer(obj, space)
	if err != nil {
		return nil, nil, err
	}
	return entry.children, entry.color, nil
}

func parseTocContainer(obj onestore.Object, space *onestore.ObjectSpace) (tocEntry, error) {
	ps := obj.PropSet.PropertySet

	var color *Color
	if v, ok := propU32(ps, propSectionColor); ok {
		color = &Color{R: uint8(v), G: uint8(v >> 8), B: uint8(v >> 16), Set: true}
	}

	filename, hasFilename := propString(ps, propFolderChildFilename)
	order, _ := propU32(ps, propNotebookElementOrderingId)

	if hasFilename {
		return tocEntry{order: order, filename: filename, color: color}, nil
	}

	var children []tocEntry
	for _, childID := range propObjectRefs(ps, propTocChildren) {
		childObj, ok := space.Objects[childID]
		if !ok {
			continue
		}
		child, err := parseTocContainer(childObj, space)
		if err != nil {
			return tocEntry{}, err
		}
		children = append(children, child)
	}
	sort.Slice(children, func(i, j int) bool { return children[i].order < children[j].order })

	return tocEntry{order: order, children: children, color: color}, nil
}

// parseEntries resolves every tocEntry to either a Section (a .one
// file) or a SectionGroup (a subdirectory carrying its own .onetoc2),
// parsing sibling entries concurrently via an errgroup - each entry's
// bytes and resulting OneStore are independent, matching §5's
// "each parse_section/parse_notebook call is independent" model.
func parseEntries(fs FileSystem, dir string, tocEntries []tocEntry) ([]Entry, error) {
	entries := make([]Entry, len(tocEntries))
	var g errgroup.Group

	for i, te := range tocEntries {
		i, te := i, te
		g.Go(func() error {
			if te.filename == "" && len(te.children) > 0 {
				group, err := parseSectionGroupFromChildren(fs, dir, te)
				if err != nil {
					return err
				}
				entries[i] = Entry{Group: group}
				return nil
			}

			if te.filename == recycleBinDir {
				return nil
			}

			path, err := resolveEntryPath(dir, te.filename)
			if err != nil {
				return err
			}

			if fs.IsDirectory(path) {
				group, err := parseSectionGroup(fs, path)
				if err != nil {
					return err
				}
				group.Color = te.color
				entries[i] = Entry{Group: group}
				return nil
			}

			section, err := parseSectionFile(fs, path)
			if err != nil {
				return err
			}
			entries[i] = Entry{Section: section}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Section != nil || e.Group != nil {
			out = append(out, e)
		}
	}
	return out, nil
}

// parseSectionGroupFromChildren handles a TOC entry that names a nested
// group inline (no filename, only children) rather than pointing at a
// subdirectory's own .onetoc2 - used by section groups embedded
// directly in the parent TOC rather than split into a subdirectory.
func parseSectionGroupFromChildren(fs FileSystem, dir string, te tocEntry) (*SectionGroup, error) {
	entries, err := parseEntries(fs, dir, te.children)
	if err != nil {
		return nil, err
	}
	return &SectionGroup{Entries: entries, Color: te.color}, nil
}

func parseSectionGroup(fs FileSystem, dir string) (*SectionGroup, error) {
	notebook, err := ParseNotebook(fs, dir)
	if err != nil {
		return nil, err
	}
	return &SectionGroup{
		DisplayName: filepath.Base(dir),
		Entries:     notebook.Entries,
		Color:       notebook.Color,
	}, nil
}

func parseSectionFile(fs FileSystem, path string) (*Section, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, err
	}
	store, err := decoder.Parse(data)
	if err != nil {
		return nil, err
	}
	if store.Type != onestore.OneStoreTypeSection {
		return nil, errs.New(errs.NotASectionFile, "%s is not a section file", path)
	}

	section, err := parseSection(store)
	if err != nil {
		return nil, err
	}
	if section.DisplayName == "" {
		base := filepath.Base(path)
		section.DisplayName = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return section, nil
}

// parseSection builds a Section from a parsed .one file's root object
// space: the DefaultContent root (a SectionNode) names the page series
// ids, and the Metadata root (a SectionMetadataNode) names a display
// name override, when present.
func parseSection(store *onestore.OneStore) (*Section, error) {
	root, ok := store.RootObjectSpace()
	if !ok {
		return nil, notRootSpaceErr()
	}
	contentRoot, ok := root.Root(onestore.RevisionRoleDefaultContent)
	if !ok {
		return nil, errs.New(errs.MalformedOneNoteData, "section has no content root")
	}

	seriesIDs := propObjectRefs(contentRoot.PropSet.PropertySet, propElementChildNodes)
	var allSeries []PageSeries
	for _, id := range seriesIDs {
		series, err := parsePageSeries(id, store)
		if err != nil {
			return nil, err
		}
		allSeries = append(allSeries, series)
	}

	section := &Section{PageSeries: allSeries}
	if metadataRoot, ok := root.Root(onestore.RevisionRoleMetadata); ok {
		if name, ok := propString(metadataRoot.PropSet.PropertySet, propSectionDisplayName); ok {
			section.DisplayName = name
		}
	}
	return section, nil
}
