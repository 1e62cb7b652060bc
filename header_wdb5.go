// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dbcfile

const (
	wdb5FlagHasOffsetMap  = 0x1
	wdb5FlagHasIndexTable = 0x2
)

// wdb5Header is WDB5's on-disk header:
//
//	uint32 RecordCount
//	uint32 FieldCount
//	uint32 RecordSize
//	uint32 StringTableSize
//	uint32 TableHash
//	uint32 LayoutHash
//	uint32 MinIndex
//	uint32 MaxIndex
//	uint32 Locale
//	uint32 CopyTableSize
//	uint16 Flags
//	uint16 IndexColumn
//
// Flags bit 0 marks a following OffsetMap segment; bit 1 marks a
// following IndexTable segment. A FieldInfo segment always follows,
// sized FieldCount*4 bytes (one (bit_offset, bit_size_exclusive) pair
// of uint16s per declared column).
func parseWDB5Header(w *window) (Header, error) {
	recordCount, err := w.readUint32()
	if err != nil {
		return nil, ErrTruncated
	}
	fieldCount, err := w.readUint32()
	if err != nil {
		return nil, ErrTruncated
	}
	recordSize, err := w.readUint32()
	if err != nil {
		return nil, ErrTruncated
	}
	stringTableSize, err := w.readUint32()
	if err != nil {
		return nil, ErrTruncated
	}
	tableHash, err := w.readUint32()
	if err != nil {
		return nil, ErrTruncated
	}
	layoutHash, err := w.readUint32()
	if err != nil {
		return nil, ErrTruncated
	}
	minIndex, err := w.readUint32()
	if err != nil {
		return nil, ErrTruncated
	}
	maxIndex, err := w.readUint32()
	if err != nil {
		return nil, ErrTruncated
	}
	if _, err := w.readUint32(); err != nil { // Locale
		return nil, ErrTruncated
	}
	copyTableSize, err := w.readUint32()
	if err != nil {
		return nil, ErrTruncated
	}
	flags, err := w.readUint16()
	if err != nil {
		return nil, ErrTruncated
	}
	indexColumn, err := w.readUint16()
	if err != nil {
		return nil, ErrTruncated
	}

	hasOffsetMap := flags&wdb5FlagHasOffsetMap != 0
	hasIndexTable := flags&wdb5FlagHasIndexTable != 0

	idxCol := int32(-1)
	if hasIndexTable {
		idxCol = int32(indexColumn)
	}

	return &baseHeader{
		signature:         SignatureWDB5,
		recordCount:       recordCount,
		fieldCount:        fieldCount,
		recordSize:        recordSize,
		stringTableLength: stringTableSize,
		tableHash:         tableHash,
		layoutHash:        layoutHash,
		minIndex:          minIndex,
		maxIndex:          maxIndex,
		copyTableLength:   copyTableSize,
		indexColumn:       idxCol,
		hasIndexTable:     hasIndexTable,
		hasOffsetMap:      hasOffsetMap,
	}, nil
}
