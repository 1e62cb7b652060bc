// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dbcfile

// wdbcHeader is WDBC's on-disk header, following the 4-byte magic:
//
//	uint32 RecordCount
//	uint32 FieldCount
//	uint32 RecordSize
//	uint32 StringTableSize
//
// WDBC has no index column, no offset map, no index table and no copy
// table; every row is a fixed RecordSize slice of the Records segment in
// declared order.
func parseWDBCHeader(w *window) (Header, error) {
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

	return &baseHeader{
		signature:         SignatureWDBC,
		recordCount:       recordCount,
		fieldCount:        fieldCount,
		recordSize:        recordSize,
		stringTableLength: stringTableSize,
		indexColumn:       -1,
	}, nil
}
