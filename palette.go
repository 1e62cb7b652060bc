// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dbcfile

import "encoding/binary"

// paletteData is the flat array of 4-byte cells backing every
// Palette/PaletteArray column in the file. A column's own origin (first
// cell index) and count are derived from ExtendedFieldInfo in declared
// column order, not stored here (spec.md §4.4).
type paletteData struct {
	raw []byte
}

func (p *paletteData) parse(w *window, start, length uint32) error {
	w.seek(start)
	data, err := w.readBytes(length)
	if err != nil {
		return err
	}
	p.raw = data
	return nil
}

func (p *paletteData) cellCount() uint32 { return uint32(len(p.raw)) / 4 }

// cell returns the raw 4 bytes of palette cell i.
func (p *paletteData) cell(i uint32) ([4]byte, bool) {
	var out [4]byte
	off := i * 4
	if off+4 > uint32(len(p.raw)) {
		return out, false
	}
	copy(out[:], p.raw[off:off+4])
	return out, true
}

func (p *paletteData) cellUint32(i uint32) uint32 {
	c, ok := p.cell(i)
	if !ok {
		return 0
	}
	return binary.LittleEndian.Uint32(c[:])
}
