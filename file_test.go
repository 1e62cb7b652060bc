// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dbcfile

import (
	"encoding/binary"
	"testing"
)

func putU32(buf []byte, off int, v uint32) {
	binary.LittleEndian.PutUint32(buf[off:], v)
}

func putU16(buf []byte, off int, v uint16) {
	binary.LittleEndian.PutUint16(buf[off:], v)
}

// TestOpenWDBCSequential is spec.md's S1 scenario: a WDBC file with two
// records and a string pool.
func TestOpenWDBCSequential(t *testing.T) {
	// header: magic + RecordCount, FieldCount, RecordSize, StringTableSize
	buf := make([]byte, 4+16+16+6)
	copy(buf[0:4], "WDBC")
	putU32(buf, 4, 2)  // RecordCount
	putU32(buf, 8, 2)  // FieldCount
	putU32(buf, 12, 8) // RecordSize
	putU32(buf, 16, 6) // StringTableSize

	// Records segment: (id uint32, nameOffset uint32) * 2
	putU32(buf, 20, 1) // record0.ID
	putU32(buf, 24, 0) // record0.Name -> offset 0, the empty string
	putU32(buf, 28, 2) // record1.ID
	putU32(buf, 32, 1) // record1.Name -> offset 1, "foo"

	// StringBlock: "\0foo\0\0" (offset 0 is "", offset 1 is "foo")
	copy(buf[36:], []byte{0, 'f', 'o', 'o', 0, 0})

	f, err := OpenBytes(buf, nil)
	if err != nil {
		t.Fatalf("OpenBytes: %v", err)
	}
	defer f.Close()

	type wdbcRow struct {
		ID   int32
		Name string
	}
	rows, err := Records[wdbcRow](f)
	if err != nil {
		t.Fatalf("Records: %v", err)
	}

	// spec.md's worked example reads the second record's name at string
	// offset 3; under its own null-terminated lookup semantics offset 3
	// lands mid-string ("o", not "foo") — offset 1 is where "foo" actually
	// starts (DESIGN.md). This fixture uses offset 1.
	want := []wdbcRow{{1, ""}, {2, "foo"}}
	for i, w := range want {
		if !rows.Next() {
			t.Fatalf("Next() = false at row %d, err=%v", i, rows.Err())
		}
		if got := rows.Record(); got != w {
			t.Fatalf("row %d = %+v, want %+v", i, got, w)
		}
	}
	if rows.Next() {
		t.Fatalf("Next() = true past end of records")
	}
	if rows.Err() != nil {
		t.Fatalf("Err() = %v, want nil", rows.Err())
	}
}

// TestOpenWDB5IndexTable is spec.md's S2 scenario: a WDB5 file whose ids
// come from an IndexTable rather than a declared column.
func TestOpenWDB5IndexTable(t *testing.T) {
	header := make([]byte, 44)
	putU32(header, 0, 2)  // RecordCount
	putU32(header, 4, 1)  // FieldCount
	putU32(header, 8, 4)  // RecordSize
	putU32(header, 12, 0) // StringTableSize
	putU32(header, 16, 0) // TableHash
	putU32(header, 20, 0) // LayoutHash
	putU32(header, 24, 0) // MinIndex
	putU32(header, 28, 0) // MaxIndex
	putU32(header, 32, 0) // Locale
	putU32(header, 36, 0) // CopyTableSize
	putU16(header, 40, 0x2) // Flags: has index table
	putU16(header, 42, 0)   // IndexColumn

	records := make([]byte, 8)
	putU32(records, 0, 100)
	putU32(records, 4, 200)

	indexTable := make([]byte, 8)
	putU32(indexTable, 0, 10)
	putU32(indexTable, 4, 20)

	fieldInfo := make([]byte, 4)
	putU16(fieldInfo, 0, 0) // BitOffset
	putU16(fieldInfo, 2, 0) // BitSizeExclusive -> width 32

	buf := append([]byte("WDB5"), header...)
	buf = append(buf, records...)
	buf = append(buf, indexTable...)
	buf = append(buf, fieldInfo...)

	f, err := OpenBytes(buf, nil)
	if err != nil {
		t.Fatalf("OpenBytes: %v", err)
	}
	defer f.Close()

	type wdb5IndexRow struct {
		ID int32 `dbc:"index"`
		V  int32
	}
	rows, err := Records[wdb5IndexRow](f)
	if err != nil {
		t.Fatalf("Records: %v", err)
	}

	want := []wdb5IndexRow{{10, 100}, {20, 200}}
	for i, w := range want {
		if !rows.Next() {
			t.Fatalf("Next() = false at row %d, err=%v", i, rows.Err())
		}
		if got := rows.Record(); got != w {
			t.Fatalf("row %d = %+v, want %+v", i, got, w)
		}
	}
	if rows.Next() {
		t.Fatalf("Next() = true past end of records")
	}
}

// TestOpenWDB5CopyTable is spec.md's S3 scenario: a CopyTable entry
// duplicates a source row with its key overwritten.
func TestOpenWDB5CopyTable(t *testing.T) {
	header := make([]byte, 44)
	putU32(header, 0, 2)  // RecordCount
	putU32(header, 4, 2)  // FieldCount
	putU32(header, 8, 8)  // RecordSize
	putU32(header, 12, 0) // StringTableSize
	putU32(header, 16, 0) // TableHash
	putU32(header, 20, 0) // LayoutHash
	putU32(header, 24, 0) // MinIndex
	putU32(header, 28, 0) // MaxIndex
	putU32(header, 32, 0) // Locale
	putU32(header, 36, 8) // CopyTableSize: one (dst,src) pair
	putU16(header, 40, 0) // Flags: no offset map, no index table
	putU16(header, 42, 0) // IndexColumn

	// Records: id/v pairs. With no IndexTable, ids are assigned equal to
	// 0-based row position (DESIGN.md), so record0's id is 0, record1's is
	// 1 — not spec.md's literal example ids of 1/2/3.
	records := make([]byte, 16)
	putU32(records, 0, 0) // record0.ID
	putU32(records, 4, 7) // record0.V
	putU32(records, 8, 1) // record1.ID
	putU32(records, 12, 9) // record1.V

	copyTable := make([]byte, 8)
	putU32(copyTable, 0, 2) // DstID
	putU32(copyTable, 4, 0) // SrcID

	fieldInfo := make([]byte, 8)
	putU16(fieldInfo, 0, 0) // col0 (ID) BitOffset
	putU16(fieldInfo, 2, 0) // col0 BitSizeExclusive -> width 32
	putU16(fieldInfo, 4, 32) // col1 (V) BitOffset
	putU16(fieldInfo, 6, 0)  // col1 BitSizeExclusive -> width 32

	buf := append([]byte("WDB5"), header...)
	buf = append(buf, records...)
	buf = append(buf, copyTable...)
	buf = append(buf, fieldInfo...)

	f, err := OpenBytes(buf, nil)
	if err != nil {
		t.Fatalf("OpenBytes: %v", err)
	}
	defer f.Close()

	type wdb5CopyRow struct {
		ID int32 `dbc:"index"`
		V  int32
	}
	rows, err := Records[wdb5CopyRow](f)
	if err != nil {
		t.Fatalf("Records: %v", err)
	}

	want := []wdb5CopyRow{{0, 7}, {1, 9}, {2, 7}}
	for i, w := range want {
		if !rows.Next() {
			t.Fatalf("Next() = false at row %d, err=%v", i, rows.Err())
		}
		if got := rows.Record(); got != w {
			t.Fatalf("row %d = %+v, want %+v", i, got, w)
		}
	}
	if rows.Next() {
		t.Fatalf("Next() = true past end of records")
	}
}

// TestOpenWDBCTruncatedRecords is spec.md's S6 scenario: a header
// advertising more records than the file actually carries. Iteration
// yields the records that fit, then reports ErrTruncated.
func TestOpenWDBCTruncatedRecords(t *testing.T) {
	buf := make([]byte, 4+16+40)
	copy(buf[0:4], "WDBC")
	putU32(buf, 4, 10) // RecordCount: claims 10...
	putU32(buf, 8, 2)  // FieldCount
	putU32(buf, 12, 8) // RecordSize
	putU32(buf, 16, 0) // StringTableSize

	for i := 0; i < 5; i++ { // ...but only 5 fit in the body
		putU32(buf, 20+i*8, uint32(100+i))
		putU32(buf, 24+i*8, uint32(i))
	}

	f, err := OpenBytes(buf, nil)
	if err != nil {
		t.Fatalf("OpenBytes: %v", err)
	}
	defer f.Close()

	type wdbcTruncatedRow struct {
		ID int32
		V  int32
	}
	rows, err := Records[wdbcTruncatedRow](f)
	if err != nil {
		t.Fatalf("Records: %v", err)
	}

	n := 0
	for rows.Next() {
		n++
	}
	if n != 5 {
		t.Fatalf("decoded %d records, want 5", n)
	}
	if rows.Err() != ErrTruncated {
		t.Fatalf("Err() = %v, want ErrTruncated", rows.Err())
	}
}

// TestOpenWDC1CopyTableResolvesCommonDataAgainstSource builds a CopyTable
// duplicate of a row that carries an explicit CommonData value, distinct
// from the column's default. The copy must read the source row's
// CommonData entry, not miss and fall back to the default the way it
// would if the copy's lookups were (wrongly) keyed by the destination id.
func TestOpenWDC1CopyTableResolvesCommonDataAgainstSource(t *testing.T) {
	header := make([]byte, 60)
	putU32(header, 0, 2)   // RecordCount
	putU32(header, 4, 1)   // FieldCount
	putU32(header, 8, 4)   // RecordSize
	putU32(header, 12, 0)  // StringTableSize
	putU32(header, 16, 0)  // TableHash
	putU32(header, 20, 0)  // LayoutHash
	putU32(header, 24, 0)  // MinIndex
	putU32(header, 28, 0)  // MaxIndex
	putU32(header, 32, 0)  // Locale
	putU32(header, 36, 8)  // CopyTableSize
	putU16(header, 40, 0)  // Flags: no offset map, no index table
	putU16(header, 42, 0)  // IndexColumn
	putU32(header, 44, 1)  // ExtendedFieldCount
	putU32(header, 48, 0)  // PalletDataSize
	putU32(header, 52, 12) // CommonDataSize
	putU32(header, 56, 0)  // RelationshipDataSize

	records := make([]byte, 8) // two zero-valued records; the CommonData column never reads them

	copyTable := make([]byte, 8)
	putU32(copyTable, 0, 5) // DstID
	putU32(copyTable, 4, 0) // SrcID: row 0, which has an explicit CommonData entry below

	fieldInfo := make([]byte, 4)
	putU16(fieldInfo, 0, 0)
	putU16(fieldInfo, 2, 0)

	commonData := make([]byte, 12)
	putU32(commonData, 0, 1)   // one entry
	putU32(commonData, 4, 0)   // row id 0
	putU32(commonData, 8, 111) // row 0's explicit value

	extended := make([]byte, 20)
	putU32(extended, 0, uint32(compressionCommonData))
	putU32(extended, 4, 1) // Cardinality
	putU32(extended, 8, 0) // Signed
	putU32(extended, 12, 9) // Default
	putU32(extended, 16, 0) // PaletteSlotCount

	buf := append([]byte("WDC1"), header...)
	buf = append(buf, records...)
	buf = append(buf, copyTable...)
	buf = append(buf, fieldInfo...)
	buf = append(buf, commonData...)
	buf = append(buf, extended...)

	f, err := OpenBytes(buf, nil)
	if err != nil {
		t.Fatalf("OpenBytes: %v", err)
	}
	defer f.Close()

	type wdc1CopyCommonRow struct {
		V uint32
	}
	rows, err := Records[wdc1CopyCommonRow](f)
	if err != nil {
		t.Fatalf("Records: %v", err)
	}

	want := []uint32{111, 9, 111} // row0 (explicit), row1 (default), copy of row0 (explicit, via src id)
	var got []uint32
	for rows.Next() {
		got = append(got, rows.Record().V)
	}
	if rows.Err() != nil {
		t.Fatalf("Err: %v", rows.Err())
	}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

// TestOpenWDB5OffsetMap is spec.md's sparse-row-id scenario: records are
// addressed through the OffsetMap's (file_offset, size) pairs rather than
// packed contiguously by RecordSize.
func TestOpenWDB5OffsetMap(t *testing.T) {
	header := make([]byte, 44)
	putU32(header, 0, 2)    // RecordCount
	putU32(header, 4, 1)    // FieldCount
	putU32(header, 8, 4)    // RecordSize (unused once OffsetMap is present)
	putU32(header, 12, 0)   // StringTableSize
	putU32(header, 16, 0)   // TableHash
	putU32(header, 20, 0)   // LayoutHash
	putU32(header, 24, 0)   // MinIndex
	putU32(header, 28, 1)   // MaxIndex
	putU32(header, 32, 0)   // Locale
	putU32(header, 36, 0)   // CopyTableSize
	putU16(header, 40, 0x1) // Flags: has offset map
	putU16(header, 42, 0)   // IndexColumn

	// The chain always reserves a RecordCount*RecordSize Records segment
	// ahead of OffsetMap (segment.go's buildChain), even though an
	// OffsetMap file addresses its actual record bytes independently of
	// that reservation; this placeholder is never read.
	recordsPlaceholder := make([]byte, 8)

	// OffsetMap: no IndexTable here, so ids equal row position
	// (DESIGN.md's id/row simplification) — ids 0 and 1, two
	// (file_offset, size) pairs (6 bytes each) pointing at 4-byte cells
	// placed after FieldInfo.
	offsetMap := make([]byte, 12)
	putU32(offsetMap, 0, 24) // id 0 -> offset 24
	putU16(offsetMap, 4, 4)
	putU32(offsetMap, 6, 28) // id 1 -> offset 28
	putU16(offsetMap, 10, 4)

	fieldInfo := make([]byte, 4)
	putU16(fieldInfo, 0, 0) // BitOffset
	putU16(fieldInfo, 2, 0) // BitSizeExclusive -> width 32

	cells := make([]byte, 8)
	putU32(cells, 0, 100) // id 0's record
	putU32(cells, 4, 200) // id 1's record

	buf := append([]byte("WDB5"), header...)
	buf = append(buf, recordsPlaceholder...)
	buf = append(buf, offsetMap...)
	buf = append(buf, fieldInfo...)
	buf = append(buf, cells...)

	f, err := OpenBytes(buf, nil)
	if err != nil {
		t.Fatalf("OpenBytes: %v", err)
	}
	defer f.Close()

	type wdb5OffsetMapRow struct {
		V int32
	}
	rows, err := Records[wdb5OffsetMapRow](f)
	if err != nil {
		t.Fatalf("Records: %v", err)
	}

	want := []wdb5OffsetMapRow{{100}, {200}}
	for i, w := range want {
		if !rows.Next() {
			t.Fatalf("Next() = false at row %d, err=%v", i, rows.Err())
		}
		if got := rows.Record(); got != w {
			t.Fatalf("row %d = %+v, want %+v", i, got, w)
		}
	}
	if rows.Err() != nil {
		t.Fatalf("Err() = %v, want nil", rows.Err())
	}
}
