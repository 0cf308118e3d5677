// Package onenote implements the typed, high-level OneNote reader (§6):
// a FileSystem collaborator interface, a notebook/section-group/section
// walker built on top of onestore.Parse, and a typed Page/Content model
// assembled from each page object's property set.
package onenote

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/runbark/onestore/errs"
)

// FileSystem is the collaborator the notebook walker reads through.
// Implementations must be safe for concurrent use: Section and
// SectionGroup entries of the same notebook are walked concurrently
// (see parseEntries).
type FileSystem interface {
	IsDirectory(path string) bool
	ReadDir(path string) ([]string, error)
	ReadFile(path string) ([]byte, error)
	Exists(path string) bool
	// WriteFile and MakeDir are not called anywhere in this module
	// (package onenoteexport writes through os and renameio directly);
	// a read-only FileSystem may leave them unimplemented by returning
	// an error.
	WriteFile(path string, data []byte) error
	MakeDir(path string) error
}

// OSFileSystem is a FileSystem backed directly by the local filesystem.
type OSFileSystem struct{}

func (OSFileSystem) IsDirectory(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func (OSFileSystem) ReadDir(path string) ([]string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return names, nil
}

func (OSFileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (OSFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (OSFileSystem) WriteFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0o644)
}

func (OSFileSystem) MakeDir(path string) error {
	return os.MkdirAll(path, 0o755)
}

// recycleBinDir is filtered out of every directory walk (§6).
const recycleBinDir = "OneNote_RecycleBin"

// resolveEntryPath validates a section or section-group filename
// referenced from a TOC and joins it onto base. The name must be
// relative, must not contain a ".." component, must not be rooted at
// "/", and must not carry a Windows volume/UNC prefix; any of those
// shapes is rejected as InvalidPath. The final joined path must still
// canonicalize under base, or it is rejected as escaping the base
// directory (§8 property 6).
func resolveEntryPath(base, name string) (string, error) {
	if name == "" {
		return "", errs.New(errs.InvalidPath, "entry path is empty")
	}
	if filepath.IsAbs(name) || strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) {
		return "", errs.New(errs.InvalidPath, "entry path %q is rooted", name)
	}
	driveLetter := len(name) >= 2 && name[1] == ':' &&
		((name[0] >= 'A' && name[0] <= 'Z') || (name[0] >= 'a' && name[0] <= 'z'))
	if vol := filepath.VolumeName(name); vol != "" || driveLetter {
		return "", errs.New(errs.InvalidPath, "entry path %q carries a volume prefix", name)
	}
	for _, seg := range strings.FieldsFunc(name, func(r rune) bool { return r == '/' || r == '\\' }) {
		if seg == ".." {
			return "", errs.New(errs.InvalidPath, "entry path %q contains a parent-directory component", name)
		}
	}

	joined := filepath.Join(base, name)

	absBase, err := filepath.Abs(base)
	if err != nil {
		return "", errs.Wrap(errs.InvalidPath, err, "could not canonicalize base directory %q", base)
	}
	absJoined, err := filepath.Abs(joined)
	if err != nil {
		return "", errs.Wrap(errs.InvalidPath, err, "could not canonicalize entry path %q", joined)
	}
	absBase = filepath.Clean(absBase)
	absJoined = filepath.Clean(absJoined)
	if absJoined != absBase && !strings.HasPrefix(absJoined, absBase+string(filepath.Separator)) {
		return "", errs.New(errs.InvalidPath, "entry path %q escapes base directory %q", name, base)
	}

	return joined, nil
}
