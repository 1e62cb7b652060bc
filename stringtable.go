// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dbcfile

// stringPool resolves a byte offset within the StringBlock segment to the
// null-terminated string starting there. Offset 0 is always the empty
// string; an offset outside the segment's bounds also yields the empty
// string (spec.md §4.4's lenient policy).
type stringPool struct {
	data []byte
}

func (p *stringPool) parse(w *window, start, length uint32) error {
	data, err := func() ([]byte, error) {
		w.seek(start)
		return w.readBytes(length)
	}()
	if err != nil {
		return err
	}
	p.data = data
	return nil
}

func (p *stringPool) get(offset uint32) string {
	if offset >= uint32(len(p.data)) {
		return ""
	}
	end := offset
	for end < uint32(len(p.data)) && p.data[end] != 0 {
		end++
	}
	return string(p.data[offset:end])
}
