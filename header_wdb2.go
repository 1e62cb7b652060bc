// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dbcfile

// wdb2Header is WDB2's on-disk header, a WDBC header widened with a
// table hash, build number, timestamp and min/max row-id bookkeeping:
//
//	uint32 RecordCount
//	uint32 FieldCount
//	uint32 RecordSize
//	uint32 StringTableSize
//	uint32 TableHash
//	uint32 Build
//	uint32 TimestampLastWritten
//	uint32 MinIndex
//	uint32 MaxIndex
//	uint32 Locale
//
// Like WDBC, WDB2 has no separate index table, offset map, copy table or
// per-column field info; rows are packed contiguously, one StringBlock
// segment follows the Records segment.
func parseWDB2Header(w *window) (Header, error) {
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
	if _, err := w.readUint32(); err != nil { // Build
		return nil, ErrTruncated
	}
	if _, err := w.readUint32(); err != nil { // TimestampLastWritten
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

	return &baseHeader{
		signature:         SignatureWDB2,
		recordCount:       recordCount,
		fieldCount:        fieldCount,
		recordSize:        recordSize,
		stringTableLength: stringTableSize,
		tableHash:         tableHash,
		minIndex:          minIndex,
		maxIndex:          maxIndex,
		indexColumn:       -1,
	}, nil
}
