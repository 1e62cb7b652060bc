// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dbcfile

import (
	"encoding/binary"
	"math"
)

// window is a rebased, seekable view over the bytes that follow a file's
// header. Offset 0 of the window is the first byte after the header, so
// segment start offsets (themselves window-relative) can be used directly
// as read positions.
//
// A window owns a bitReader that coexists with its byte-aligned reads: any
// byte-aligned read resets the bit cursor first, per the bit cursor
// discipline in the package's design notes.
type window struct {
	data []byte
	pos  uint32
	bits bitReader
}

func newWindow(data []byte) *window {
	return &window{data: data}
}

func (w *window) position() uint32 { return w.pos }

func (w *window) size() uint32 { return uint32(len(w.data)) }

func (w *window) seek(absolute uint32) {
	w.pos = absolute
	w.bits.reset()
}

// resetBitCursor discards any partially-consumed byte, aligning the next
// read to a byte boundary. Byte-aligned reads call this before reading.
func (w *window) resetBitCursor() { w.bits.reset() }

func (w *window) readBytes(n uint32) ([]byte, error) {
	w.resetBitCursor()
	if n == 0 {
		return nil, nil
	}
	end := w.pos + n
	if end < w.pos || end > uint32(len(w.data)) {
		return nil, ErrTruncated
	}
	b := w.data[w.pos:end]
	w.pos = end
	return b, nil
}

func (w *window) readUint8() (uint8, error) {
	b, err := w.readBytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (w *window) readUint16() (uint16, error) {
	b, err := w.readBytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (w *window) readUint24() (uint32, error) {
	b, err := w.readBytes(3)
	if err != nil {
		return 0, err
	}
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16, nil
}

func (w *window) readUint32() (uint32, error) {
	b, err := w.readBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (w *window) readUint64() (uint64, error) {
	b, err := w.readBytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (w *window) readFloat32() (float32, error) {
	bits, err := w.readUint32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(bits), nil
}

// readCString reads a null-terminated string starting at the current
// position and advances past the terminator.
func (w *window) readCString() (string, error) {
	w.resetBitCursor()
	start := w.pos
	for w.pos < uint32(len(w.data)) {
		if w.data[w.pos] == 0 {
			s := string(w.data[start:w.pos])
			w.pos++
			return s, nil
		}
		w.pos++
	}
	return "", ErrTruncated
}

// bitReader holds the fractional byte retained between read_bits calls.
// Bits are consumed LSB-first out of successive bytes.
type bitReader struct {
	cur   uint64
	avail uint
}

func (b *bitReader) reset() {
	b.cur = 0
	b.avail = 0
}

// readBit reads a single bit from w, pulling a fresh byte into the
// retained cursor when it runs dry.
func (w *window) readBit() (uint64, error) {
	v, err := w.readBits(1)
	return v, err
}

// readBits reads n bits (1 <= n <= 64) from the window's bit cursor,
// consuming whole bytes from the underlying buffer as needed.
func (w *window) readBits(n uint) (uint64, error) {
	if n == 0 || n > 64 {
		return 0, ErrTypeMismatch
	}
	var result uint64
	var got uint
	for got < n {
		if w.bits.avail == 0 {
			if w.pos >= uint32(len(w.data)) {
				return 0, ErrTruncated
			}
			w.bits.cur = uint64(w.data[w.pos])
			w.bits.avail = 8
			w.pos++
		}
		take := n - got
		if take > w.bits.avail {
			take = w.bits.avail
		}
		mask := uint64(1)<<take - 1
		result |= (w.bits.cur & mask) << got
		w.bits.cur >>= take
		w.bits.avail -= take
		got += take
	}
	return result, nil
}
