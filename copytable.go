// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dbcfile

// copyEntry is a single (dst_id, src_id) pair: the decoder materializes a
// copy of the record at src_id, then overwrites its key column with
// dst_id (spec.md §3).
type copyEntry struct {
	DstID uint32
	SrcID uint32
}

// copyTable is an array of copyEntry pairs, in table order.
type copyTable struct {
	entries []copyEntry
}

func (t *copyTable) parse(w *window, start, length uint32) error {
	count := length / 8
	t.entries = make([]copyEntry, 0, count)
	w.seek(start)
	for i := uint32(0); i < count; i++ {
		dst, err := w.readUint32()
		if err != nil {
			return ErrTruncated
		}
		src, err := w.readUint32()
		if err != nil {
			return ErrTruncated
		}
		t.entries = append(t.entries, copyEntry{dst, src})
	}
	return nil
}
