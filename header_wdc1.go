// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dbcfile

// wdc1Header is WDC1's on-disk header. It widens WDB5's header with
// explicit byte sizes for the palette, common-data and relationship
// segments, plus a column count for the ExtendedFieldInfo segment
// (which may cover fewer columns than FieldCount, e.g. a relationship
// column carries no extended entry of its own):
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
//	uint32 ExtendedFieldCount
//	uint32 PalletDataSize
//	uint32 CommonDataSize
//	uint32 RelationshipDataSize
type wdc1Header struct {
	baseHeader
	extendedFieldCount   uint32
	palletDataSize       uint32
	commonDataSize       uint32
	relationshipDataSize uint32
}

func parseWDC1Header(w *window) (Header, error) {
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
	extendedFieldCount, err := w.readUint32()
	if err != nil {
		return nil, ErrTruncated
	}
	palletDataSize, err := w.readUint32()
	if err != nil {
		return nil, ErrTruncated
	}
	commonDataSize, err := w.readUint32()
	if err != nil {
		return nil, ErrTruncated
	}
	relationshipDataSize, err := w.readUint32()
	if err != nil {
		return nil, ErrTruncated
	}

	hasOffsetMap := flags&wdb5FlagHasOffsetMap != 0
	hasIndexTable := flags&wdb5FlagHasIndexTable != 0

	idxCol := int32(-1)
	if hasIndexTable {
		idxCol = int32(indexColumn)
	}

	return &wdc1Header{
		baseHeader: baseHeader{
			signature:         SignatureWDC1,
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
			hasForeignIDs:     relationshipDataSize > 0,
		},
		extendedFieldCount:   extendedFieldCount,
		palletDataSize:       palletDataSize,
		commonDataSize:       commonDataSize,
		relationshipDataSize: relationshipDataSize,
	}, nil
}
