// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dbcfile

import "encoding/binary"

// compressionKind is a column's storage scheme, read from
// ExtendedFieldInfo (WDC1) or assumed None/Immediate for versions that
// carry no extended metadata.
type compressionKind uint32

const (
	compressionNone compressionKind = iota
	compressionImmediate
	compressionCommonData
	compressionPalette
	compressionPaletteArray
	compressionRelationshipData
)

// fieldInfoEntry is the per-column (bit_offset, bit_size_exclusive) pair
// every version after WDBC/WDB2 carries, one uint16 pair per column.
type fieldInfoEntry struct {
	BitOffset        uint16
	BitSizeExclusive uint16
}

// fieldInfoTable parses the FieldInfo segment: FieldCount entries, each a
// (bit_offset, bit_size_exclusive) pair, per spec.md §4.4.
type fieldInfoTable struct {
	entries []fieldInfoEntry
}

func (t *fieldInfoTable) parse(w *window, start, length uint32) error {
	count := length / 4
	t.entries = make([]fieldInfoEntry, 0, count)
	w.seek(start)
	for i := uint32(0); i < count; i++ {
		bitOffset, err := w.readUint16()
		if err != nil {
			return ErrTruncated
		}
		bitSizeExclusive, err := w.readUint16()
		if err != nil {
			return ErrTruncated
		}
		t.entries = append(t.entries, fieldInfoEntry{bitOffset, bitSizeExclusive})
	}
	return nil
}

// bitWidth returns the decoded bit width of entry i: 32 - BitSizeExclusive.
func (e fieldInfoEntry) bitWidth() uint32 {
	return 32 - uint32(e.BitSizeExclusive)
}

const extendedFieldInfoEntrySize = 20

// extendedFieldInfoEntry is one column's extended metadata, read as a
// fixed 20-byte record:
//
//	uint32 CompressionKind
//	uint32 Cardinality
//	uint32 Signed (0 or 1)
//	[4]byte Default   (type-punned little-endian reinterpretation)
//	uint32 PaletteSlotCount
type extendedFieldInfoEntry struct {
	Compression      compressionKind
	Cardinality      uint32
	Signed           uint32
	Default          [4]byte
	PaletteSlotCount uint32
}

// extendedFieldInfoTable parses the ExtendedFieldInfo segment present
// only in WDC1 files.
type extendedFieldInfoTable struct {
	entries []extendedFieldInfoEntry
}

func (t *extendedFieldInfoTable) parse(w *window, start, length uint32) error {
	count := length / extendedFieldInfoEntrySize
	t.entries = make([]extendedFieldInfoEntry, 0, count)
	w.seek(start)
	for i := uint32(0); i < count; i++ {
		raw, err := w.readBytes(extendedFieldInfoEntrySize)
		if err != nil {
			return ErrTruncated
		}
		var e extendedFieldInfoEntry
		e.Compression = compressionKind(binary.LittleEndian.Uint32(raw[0:4]))
		e.Cardinality = binary.LittleEndian.Uint32(raw[4:8])
		e.Signed = binary.LittleEndian.Uint32(raw[8:12])
		copy(e.Default[:], raw[12:16])
		e.PaletteSlotCount = binary.LittleEndian.Uint32(raw[16:20])
		t.entries = append(t.entries, e)
	}
	return nil
}

// columnMeta is the unified per-column metadata the deserializer
// generator consumes, merging FieldInfo's bit layout with
// ExtendedFieldInfo's compression/default/cardinality (or the WDBC/WDB2/
// WDB5 defaults when no extended segment exists).
type columnMeta struct {
	compression  compressionKind
	bitOffset    uint32
	bitWidth     uint32
	cardinality  uint32
	signed       bool
	defaultValue [4]byte
	paletteCount uint32
	// paletteOrigin is the starting cell index into PalletData for
	// Palette/PaletteArray columns, derived cumulatively from the
	// declared column order (spec.md §4.4).
	paletteOrigin uint32
}
