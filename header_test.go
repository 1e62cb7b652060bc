// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dbcfile

import "testing"

func TestParseWDBCHeader(t *testing.T) {
	buf := make([]byte, 16)
	putU32(buf, 0, 5)  // RecordCount
	putU32(buf, 4, 3)  // FieldCount
	putU32(buf, 8, 12) // RecordSize
	putU32(buf, 12, 7) // StringTableSize

	hdr, err := parseWDBCHeader(newWindow(buf))
	if err != nil {
		t.Fatalf("parseWDBCHeader: %v", err)
	}
	if hdr.RecordCount() != 5 || hdr.FieldCount() != 3 || hdr.RecordSize() != 12 || hdr.StringTableLength() != 7 {
		t.Fatalf("hdr = %+v", hdr)
	}
	if hdr.IndexColumn() != -1 || hdr.HasIndexTable() || hdr.HasOffsetMap() || hdr.HasForeignIDs() {
		t.Fatalf("WDBC header should have no index table, offset map or foreign ids")
	}
}

func TestParseWDBCHeaderTruncated(t *testing.T) {
	buf := make([]byte, 8) // short by 8 bytes
	if _, err := parseWDBCHeader(newWindow(buf)); err != ErrTruncated {
		t.Fatalf("parseWDBCHeader = %v, want ErrTruncated", err)
	}
}

func TestParseWDB2Header(t *testing.T) {
	buf := make([]byte, 40)
	putU32(buf, 0, 5)    // RecordCount
	putU32(buf, 4, 3)    // FieldCount
	putU32(buf, 8, 12)   // RecordSize
	putU32(buf, 12, 7)   // StringTableSize
	putU32(buf, 16, 123) // TableHash
	putU32(buf, 20, 0)   // Build
	putU32(buf, 24, 0)   // TimestampLastWritten
	putU32(buf, 28, 1)   // MinIndex
	putU32(buf, 32, 9)   // MaxIndex
	putU32(buf, 36, 0)   // Locale

	hdr, err := parseWDB2Header(newWindow(buf))
	if err != nil {
		t.Fatalf("parseWDB2Header: %v", err)
	}
	if hdr.TableHash() != 123 || hdr.MinIndex() != 1 || hdr.MaxIndex() != 9 {
		t.Fatalf("hdr = %+v", hdr)
	}
	if hdr.IndexColumn() != -1 {
		t.Fatalf("WDB2 header should have no index column")
	}
}

func TestParseWDB5HeaderFlags(t *testing.T) {
	buf := make([]byte, 44)
	putU32(buf, 0, 1)
	putU32(buf, 4, 1)
	putU32(buf, 8, 4)
	putU32(buf, 12, 0)
	putU32(buf, 16, 0)
	putU32(buf, 20, 0)
	putU32(buf, 24, 0)
	putU32(buf, 28, 0)
	putU32(buf, 32, 0)
	putU32(buf, 36, 0)
	putU16(buf, 40, 0x3) // both OffsetMap and IndexTable flags set
	putU16(buf, 42, 2)   // IndexColumn

	hdr, err := parseWDB5Header(newWindow(buf))
	if err != nil {
		t.Fatalf("parseWDB5Header: %v", err)
	}
	if !hdr.HasOffsetMap() || !hdr.HasIndexTable() {
		t.Fatalf("hdr = %+v, want both flags set", hdr)
	}
	if hdr.IndexColumn() != 2 {
		t.Fatalf("IndexColumn = %d, want 2", hdr.IndexColumn())
	}
}

func TestParseWDB5HeaderNoIndexTableIgnoresIndexColumn(t *testing.T) {
	buf := make([]byte, 44)
	putU16(buf, 40, 0) // no flags set
	putU16(buf, 42, 5) // IndexColumn present in the bytes but should be ignored

	hdr, err := parseWDB5Header(newWindow(buf))
	if err != nil {
		t.Fatalf("parseWDB5Header: %v", err)
	}
	if hdr.IndexColumn() != -1 {
		t.Fatalf("IndexColumn = %d, want -1 when HasIndexTable is false", hdr.IndexColumn())
	}
}

func TestParseWDC1HeaderForeignIDs(t *testing.T) {
	buf := make([]byte, 60)
	putU32(buf, 0, 2)  // RecordCount
	putU32(buf, 4, 1)  // FieldCount
	putU32(buf, 8, 4)  // RecordSize
	putU32(buf, 12, 0) // StringTableSize
	putU32(buf, 16, 0) // TableHash
	putU32(buf, 20, 0) // LayoutHash
	putU32(buf, 24, 0) // MinIndex
	putU32(buf, 28, 0) // MaxIndex
	putU32(buf, 32, 0) // Locale
	putU32(buf, 36, 0) // CopyTableSize
	putU16(buf, 40, 0) // Flags
	putU16(buf, 42, 0) // IndexColumn
	putU32(buf, 44, 1) // ExtendedFieldCount
	putU32(buf, 48, 0) // PalletDataSize
	putU32(buf, 52, 0) // CommonDataSize
	putU32(buf, 56, 8) // RelationshipDataSize

	hdr, err := parseWDC1Header(newWindow(buf))
	if err != nil {
		t.Fatalf("parseWDC1Header: %v", err)
	}
	if !hdr.HasForeignIDs() {
		t.Fatalf("hdr.HasForeignIDs() = false, want true when RelationshipDataSize > 0")
	}
	if hdr.Signature() != SignatureWDC1 {
		t.Fatalf("hdr.Signature() = %v, want WDC1", hdr.Signature())
	}
}

func TestReadHeaderUnsupportedSignature(t *testing.T) {
	if _, err := readHeader(Signature(0xDEADBEEF), newWindow(nil)); err != ErrUnsupportedSignature {
		t.Fatalf("readHeader = %v, want ErrUnsupportedSignature", err)
	}
}
