// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dbcfile

import "encoding/binary"

// commonDataTable holds, per column, a sparse row_id -> 4-byte value
// mapping. Rows absent from a column's map take that column's default
// (spec.md §3, §9: "type-punned little-endian reinterpretation of the
// 4-byte default").
//
// The segment's raw bytes encode one sub-block per CommonData column, in
// declared column order: a uint32 count followed by that many
// (uint32 row_id, [4]byte value) pairs. build splits those sub-blocks out
// once the set of CommonData columns is known from ExtendedFieldInfo,
// matching the lazy-handler lifecycle spec.md §3 allows.
type commonDataTable struct {
	raw     []byte
	byCol   map[int]map[uint32][4]byte
}

func (t *commonDataTable) parse(w *window, start, length uint32) error {
	w.seek(start)
	data, err := w.readBytes(length)
	if err != nil {
		return err
	}
	t.raw = data
	return nil
}

// build partitions the raw bytes into per-column maps, given the ordered
// list of column indices that carry CommonData compression.
func (t *commonDataTable) build(columns []int) error {
	t.byCol = make(map[int]map[uint32][4]byte, len(columns))
	pos := uint32(0)
	for _, col := range columns {
		if pos+4 > uint32(len(t.raw)) {
			return ErrTruncated
		}
		count := binary.LittleEndian.Uint32(t.raw[pos : pos+4])
		pos += 4
		m := make(map[uint32][4]byte, count)
		for i := uint32(0); i < count; i++ {
			if pos+8 > uint32(len(t.raw)) {
				return ErrTruncated
			}
			rowID := binary.LittleEndian.Uint32(t.raw[pos : pos+4])
			var val [4]byte
			copy(val[:], t.raw[pos+4:pos+8])
			m[rowID] = val
			pos += 8
		}
		t.byCol[col] = m
	}
	return nil
}

func (t *commonDataTable) lookup(col int, rowID uint32) ([4]byte, bool) {
	m, ok := t.byCol[col]
	if !ok {
		return [4]byte{}, false
	}
	v, ok := m[rowID]
	return v, ok
}
