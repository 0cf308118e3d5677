// Package legacyfile implements the on-disk framing of the legacy
// revision-store format used by OneNote 2016-era .one/.onetoc2 files: the
// 1024-byte fixed header, the four chunk-reference shapes, the file-node
// record leader and its ~40 record kinds, the fragmented file-node-list
// chain, and the transaction log that supplies external node-count
// budgets for those lists.
package legacyfile

import (
	"github.com/runbark/onestore/errs"
	"github.com/runbark/onestore/guid"
	"github.com/runbark/onestore/reader"
)

// SectionFileTypeGuid is the file_type value for a .one section file.
var SectionFileTypeGuid = guid.MustParse("7B5C52E4-D88C-4DA7-AEB1-5378D02996D3")

// TocFileTypeGuid is the file_type value for a .onetoc2 table-of-contents
// file.
var TocFileTypeGuid = guid.MustParse("43FF2FA1-EFD9-4C76-9EE2-10EA5722765F")

// RevisionStoreFormatGuid is the only value file_format is allowed to take
// in a legacy header.
var RevisionStoreFormatGuid = guid.MustParse("109ADD3F-911B-49F5-A5D0-1791EDC8AED8")

// Header is the fixed 1024-byte legacy file header (MS-ONESTORE 2.3.1).
// Only the fields this decoder actually consumes downstream are exported;
// the rest are read past only to keep the cursor correctly positioned;
// apart from file_type and file_format, no field is validated.
type Header struct {
	FileType          guid.Guid
	LegacyFileVersion guid.Guid
	FileFormat        guid.Guid

	FreeChunkList    FileChunkReference64x32
	TransactionLog   FileChunkReference64x32
	FileNodeListRoot FileChunkReference64x32

	LegacyFreeChunkList    FileChunkReference32
	LegacyTransactionLog   FileChunkReference32
	LegacyFileNodeListRoot FileChunkReference32

	CTransactionsInLog uint32
}

// ParseHeader reads a legacy header from the start of r.
func ParseHeader(r *reader.Reader) (Header, error) {
	fileType, err := guid.Parse(r)
	if err != nil {
		return Header{}, err
	}
	if !fileType.Equal(SectionFileTypeGuid) && !fileType.Equal(TocFileTypeGuid) {
		return Header{}, errs.New(errs.MalformedOneNoteFileData,
			"file_type %v is neither the .one nor the .onetoc2 GUID", fileType)
	}
	if _, err := guid.Parse(r); err != nil { // guid_file, unused
		return Header{}, err
	}
	legacyFileVersion, err := guid.Parse(r)
	if err != nil {
		return Header{}, err
	}
	fileFormat, err := guid.Parse(r)
	if err != nil {
		return Header{}, err
	}
	if !fileFormat.Equal(RevisionStoreFormatGuid) {
		return Header{}, errs.New(errs.NotLocalOneStore,
			"file_format %v is not the legacy revision-store GUID", fileFormat)
	}
	// ffv_last_code_that_wrote_to_this_file .. ffv_oldest_code_that_may_read_this_file
	if err := r.Advance(4 * 4); err != nil {
		return Header{}, err
	}
	legacyFreeChunkList, err := ParseFileChunkReference32(r)
	if err != nil {
		return Header{}, err
	}
	legacyTransactionLog, err := ParseFileChunkReference32(r)
	if err != nil {
		return Header{}, err
	}
	cTransactionsInLog, err := r.GetU32()
	if err != nil {
		return Header{}, err
	}
	if err := r.Advance(4); err != nil { // cb_legacy_expected_file_length
		return Header{}, err
	}
	if err := r.Advance(8); err != nil { // rgb_placeholder, offset 104 here
		return Header{}, err
	}
	legacyFileNodeListRoot, err := ParseFileChunkReference32(r)
	if err != nil {
		return Header{}, err
	}
	// cb_legacy_free_space_in_free_chunk_list, the four legacy flag
	// bytes, guid_ancestor.
	if err := r.Advance(4 + 4 + 16); err != nil {
		return Header{}, err
	}
	if err := r.Advance(4); err != nil { // crc_name, offset 144 here
		return Header{}, err
	}
	if err := r.Advance(12); err != nil { // fcr_hashed_chunk_list
		return Header{}, err
	}
	transactionLog, err := ParseFileChunkReference64x32(r)
	if err != nil {
		return Header{}, err
	}
	fileNodeListRoot, err := ParseFileChunkReference64x32(r)
	if err != nil {
		return Header{}, err
	}
	freeChunkList, err := ParseFileChunkReference64x32(r)
	if err != nil {
		return Header{}, err
	}
	if err := r.Advance(8 + 8); err != nil { // cb_expected_file_length, cb_free_space_in_free_chunk_list
		return Header{}, err
	}
	if err := r.Advance(16); err != nil { // guid_file_version, offset 212 here
		return Header{}, err
	}
	// n_file_version_generation, guid_deny_read_file_version,
	// grf_debug_log_flags, fcr_debug_log,
	// fcr_alloc_verification_free_chunk_list, four bn_* fields.
	if err := r.Advance(8 + 16 + 4 + 12 + 12 + 4*4); err != nil {
		return Header{}, err
	}
	// rgb_reserved, offset 296 here.
	if err := r.Advance(728); err != nil {
		return Header{}, err
	}

	return Header{
		FileType:               fileType,
		LegacyFileVersion:      legacyFileVersion,
		FileFormat:             fileFormat,
		FreeChunkList:          freeChunkList,
		TransactionLog:         transactionLog,
		FileNodeListRoot:       fileNodeListRoot,
		LegacyFreeChunkList:    legacyFreeChunkList,
		LegacyTransactionLog:   legacyTransactionLog,
		LegacyFileNodeListRoot: legacyFileNodeListRoot,
		CTransactionsInLog:     cTransactionsInLog,
	}, nil
}

// RootFileNodeListRef returns the wide-format root file-node-list
// reference, falling back to the legacy narrow one if the wide one is
// nil (matching how every other chained reference in this header has a
// legacy and a modern sibling field).
func (h Header) RootFileNodeListRef() ChunkReference {
	if !h.FileNodeListRoot.IsNil() {
		return h.FileNodeListRoot
	}
	return h.LegacyFileNodeListRoot
}

// TransactionLogRef returns the wide-format transaction-log reference,
// falling back to the legacy narrow one.
func (h Header) TransactionLogRef() ChunkReference {
	if !h.TransactionLog.IsNil() {
		return h.TransactionLog
	}
	return h.LegacyTransactionLog
}
