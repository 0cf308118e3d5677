// Package packaging implements the outer FSSHTTPB file frame (§4.5): the
// four leading GUIDs that identify the format, the root storage-index
// pointer, the cell schema, and the embedded DataElementPackage. It also
// implements the embedded-package offset heuristic used when a legacy
// header turns out to wrap a package rather than a revision-store tree.
package packaging

import (
	"github.com/sirupsen/logrus"

	"github.com/runbark/onestore/errs"
	"github.com/runbark/onestore/fsshttpb"
	"github.com/runbark/onestore/guid"
	"github.com/runbark/onestore/legacyfile"
	"github.com/runbark/onestore/reader"
	"github.com/runbark/onestore/stream"
)

// PackageStoreGuid is the file_format value that selects the FSSHTTPB
// packaging format.
var PackageStoreGuid = guid.MustParse("638DE92F-A6D4-4BC1-9A36-B3FC2511A5B7")

// RevisionStoreGuid is the file_format value that selects the legacy
// revision-store format.
var RevisionStoreGuid = guid.MustParse("109ADD3F-911B-49F5-A5D0-1791EDC8AED8")

// Package is the parsed outer FSSHTTPB file frame.
type Package struct {
	FileType          guid.Guid
	File              guid.Guid
	LegacyFileVersion guid.Guid
	FileFormat        guid.Guid

	StorageIndex guid.ExGuid
	CellSchema   guid.Guid
	Elements     *fsshttpb.Package
}

// Parse reads a complete outer FSSHTTPB frame starting at r's current
// position: the four leading GUIDs, a reserved zero u32, a 32-bit
// OneNotePackaging start header, the root storage-index ExGuid, the
// cell-schema Guid, the DataElementPackage, and a matching 16-bit end
// header.
func Parse(r *reader.Reader) (*Package, error) {
	fileType, err := guid.Parse(r)
	if err != nil {
		return nil, err
	}
	file, err := guid.Parse(r)
	if err != nil {
		return nil, err
	}
	legacyFileVersion, err := guid.Parse(r)
	if err != nil {
		return nil, err
	}
	fileFormat, err := guid.Parse(r)
	if err != nil {
		return nil, err
	}

	if fileFormat.Equal(RevisionStoreGuid) {
		return nil, errs.New(errs.NotFssHttpBData, "file_format %v names the legacy revision-store format", fileFormat)
	}
	if !fileFormat.Equal(PackageStoreGuid) {
		return nil, errs.New(errs.MalformedOneStoreData, "file_format %v is neither package-store nor revision-store", fileFormat)
	}
	if !file.Equal(legacyFileVersion) {
		logrus.Warnf("packaging: file %v does not match legacy_file_version %v", file, legacyFileVersion)
	}

	reserved, err := r.GetU32()
	if err != nil {
		return nil, err
	}
	if reserved != 0 {
		return nil, errs.New(errs.MalformedFssHttpBData, "packaging reserved field is 0x%08x, want 0", reserved)
	}

	if _, err := stream.TryParse32Start(r, stream.ObjectTypePackaging); err != nil {
		return nil, err
	}
	storageIndex, err := guid.ParseExGuid(r)
	if err != nil {
		return nil, err
	}
	cellSchema, err := guid.Parse(r)
	if err != nil {
		return nil, err
	}
	elements, err := fsshttpb.ParsePackage(r)
	if err != nil {
		return nil, err
	}
	if _, err := stream.TryParse16End(r, stream.ObjectTypePackaging); err != nil {
		return nil, err
	}

	return &Package{
		FileType:          fileType,
		File:              file,
		LegacyFileVersion: legacyFileVersion,
		FileFormat:        fileFormat,
		StorageIndex:      storageIndex,
		CellSchema:        cellSchema,
		Elements:          elements,
	}, nil
}

// DetectEmbedded reports whether data is a legacy-framed file that
// actually wraps an embedded FSSHTTPB packaging rather than a
// revision-store file-node tree - the shape modern OneDrive downloads
// use. This placement is undocumented by MS-ONESTORE; it is inferred
// from observed files: a legacy header with a nil legacy_file_version,
// immediately followed (at the transaction log's end offset) by four
// GUIDs whose file_format names the package-store format.
func DetectEmbedded(data []byte) (int, bool) {
	header, err := legacyfile.ParseHeader(reader.New(data))
	if err != nil {
		return 0, false
	}
	if !header.LegacyFileVersion.IsNil() {
		return 0, false
	}

	ref := header.TransactionLogRef()
	end := ref.Stp() + ref.Cb()
	if end > uint64(len(data)) {
		return 0, false
	}
	offset := int(end)
	if offset+16*4 > len(data) {
		return 0, false
	}

	probe := reader.New(data[offset:])
	if _, err := guid.Parse(probe); err != nil { // file_type
		return 0, false
	}
	if _, err := guid.Parse(probe); err != nil { // file
		return 0, false
	}
	if _, err := guid.Parse(probe); err != nil { // legacy_file_version
		return 0, false
	}
	fileFormat, err := guid.Parse(probe)
	if err != nil {
		return 0, false
	}
	if !fileFormat.Equal(PackageStoreGuid) {
		return 0, false
	}
	return offset, true
}
