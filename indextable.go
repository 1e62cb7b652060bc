// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dbcfile

// indexTable is a contiguous array of 4-byte row ids, one per record, in
// declared record order (spec.md §4.4).
type indexTable struct {
	ids []uint32
}

func (t *indexTable) parse(w *window, start, length uint32) error {
	count := length / 4
	t.ids = make([]uint32, 0, count)
	w.seek(start)
	for i := uint32(0); i < count; i++ {
		id, err := w.readUint32()
		if err != nil {
			return ErrTruncated
		}
		t.ids = append(t.ids, id)
	}
	return nil
}

func (t *indexTable) idForRow(row uint32) uint32 {
	if row >= uint32(len(t.ids)) {
		return 0
	}
	return t.ids[row]
}
