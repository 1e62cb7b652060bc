// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dbcfile

// Header is the common interface every version's fixed-layout header
// decoder populates. Field meanings are shared across versions; a version
// that has no notion of a field (e.g. WDBC has no index column) returns
// the zero/absent value for it.
type Header interface {
	// Signature is the 4-byte magic that selected this header decoder.
	Signature() Signature

	// TableHash identifies the table's schema (its declared columns),
	// independent of the data it carries.
	TableHash() uint32

	// LayoutHash identifies the exact on-disk column layout (bit offsets,
	// widths, compression kinds) in effect for this file.
	LayoutHash() uint32

	// RecordCount is the number of rows in the Records segment.
	RecordCount() uint32

	// RecordSize is the byte size of a single row in the Records segment.
	RecordSize() uint32

	// FieldCount is the number of declared columns in the file.
	FieldCount() uint32

	// StringTableLength is the byte length of the StringBlock segment.
	StringTableLength() uint32

	// MinIndex and MaxIndex bound the row-id space covered by the
	// OffsetMap, when present.
	MinIndex() uint32
	MaxIndex() uint32

	// CopyTableLength is the byte length of the CopyTable segment (0 if
	// absent).
	CopyTableLength() uint32

	// IndexColumn is the declared column position carrying the row's
	// identifier, or -1 if the file has no declared index column.
	IndexColumn() int32

	// HasIndexTable reports whether a separate IndexTable segment assigns
	// row ids (as opposed to ids being a column of the record itself).
	HasIndexTable() bool

	// HasForeignIDs reports whether a RelationshipData segment is present.
	HasForeignIDs() bool

	// HasOffsetMap reports whether rows are addressed through a sparse
	// OffsetMap rather than packed contiguously by RecordSize.
	HasOffsetMap() bool
}

// baseHeader carries the fields every version populates directly; version
// headers embed it and override what differs.
type baseHeader struct {
	signature         Signature
	recordCount       uint32
	fieldCount        uint32
	recordSize        uint32
	stringTableLength uint32
	tableHash         uint32
	layoutHash        uint32
	minIndex          uint32
	maxIndex          uint32
	copyTableLength   uint32
	indexColumn       int32
	hasIndexTable     bool
	hasForeignIDs     bool
	hasOffsetMap      bool
}

func (h *baseHeader) Signature() Signature         { return h.signature }
func (h *baseHeader) TableHash() uint32            { return h.tableHash }
func (h *baseHeader) LayoutHash() uint32           { return h.layoutHash }
func (h *baseHeader) RecordCount() uint32          { return h.recordCount }
func (h *baseHeader) RecordSize() uint32           { return h.recordSize }
func (h *baseHeader) FieldCount() uint32           { return h.fieldCount }
func (h *baseHeader) StringTableLength() uint32    { return h.stringTableLength }
func (h *baseHeader) MinIndex() uint32             { return h.minIndex }
func (h *baseHeader) MaxIndex() uint32             { return h.maxIndex }
func (h *baseHeader) CopyTableLength() uint32      { return h.copyTableLength }
func (h *baseHeader) IndexColumn() int32           { return h.indexColumn }
func (h *baseHeader) HasIndexTable() bool          { return h.hasIndexTable }
func (h *baseHeader) HasForeignIDs() bool          { return h.hasForeignIDs }
func (h *baseHeader) HasOffsetMap() bool           { return h.hasOffsetMap }

// readHeader dispatches on sig and decodes the fixed-layout header that
// follows the magic at the start of w. On return w is positioned at the
// first byte of the segment chain.
func readHeader(sig Signature, w *window) (Header, error) {
	switch sig {
	case SignatureWDBC:
		return parseWDBCHeader(w)
	case SignatureWDB2:
		return parseWDB2Header(w)
	case SignatureWDB5:
		return parseWDB5Header(w)
	case SignatureWDC1:
		return parseWDC1Header(w)
	default:
		return nil, ErrUnsupportedSignature
	}
}
