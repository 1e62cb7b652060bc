// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dbcfile

// SegmentID enumerates the named regions a client-data file may carry.
// Not every version carries every segment; an absent segment is
// represented by a node with length 0 that still holds its place in the
// chain, so start-offset arithmetic stays uniform across versions.
type SegmentID int

const (
	SegmentRecords SegmentID = iota
	SegmentStringBlock
	SegmentOffsetMap
	SegmentIndexTable
	SegmentCopyTable
	SegmentFieldInfo
	SegmentPalletData
	SegmentCommonData
	SegmentRelationshipData
	SegmentExtendedFieldInfo
)

func (id SegmentID) String() string {
	switch id {
	case SegmentRecords:
		return "Records"
	case SegmentStringBlock:
		return "StringBlock"
	case SegmentOffsetMap:
		return "OffsetMap"
	case SegmentIndexTable:
		return "IndexTable"
	case SegmentCopyTable:
		return "CopyTable"
	case SegmentFieldInfo:
		return "FieldInfo"
	case SegmentPalletData:
		return "PalletData"
	case SegmentCommonData:
		return "CommonData"
	case SegmentRelationshipData:
		return "RelationshipData"
	case SegmentExtendedFieldInfo:
		return "ExtendedFieldInfo"
	default:
		return "Unknown"
	}
}

// regionHandler parses the bytes of a single segment, once its absolute
// bounds are known. Segments that need no companion data structure
// (currently only Records) carry a nil handler.
type regionHandler interface {
	parse(w *window, start, length uint32) error
}

// segment is one node of the doubly-linked region chain. Its absolute
// start offset is computed on demand by chasing prev links and summing
// lengths; the result is memoized and invalidated by insertAfter and
// insertBefore, the only two mutations the chain supports after it is
// built.
type segment struct {
	id      SegmentID
	length  uint32
	prev    *segment
	next    *segment
	handler regionHandler

	startValid bool
	start      uint32
}

func newSegment(id SegmentID, length uint32, handler regionHandler) *segment {
	return &segment{id: id, length: length, handler: handler}
}

// startOffset returns the segment's absolute offset within the window,
// computed as the sum of every predecessor's length.
func (s *segment) startOffset() uint32 {
	if s.startValid {
		return s.start
	}
	var start uint32
	if s.prev != nil {
		start = s.prev.startOffset() + s.prev.length
	}
	s.start = start
	s.startValid = true
	return start
}

// present reports whether the segment occupies any bytes.
func (s *segment) present() bool { return s.length > 0 }

func (s *segment) invalidateFrom() {
	for n := s; n != nil; n = n.next {
		n.startValid = false
	}
}

// insertAfter splices new after s, repairing both neighbours' pointers.
func (s *segment) insertAfter(next *segment) {
	old := s.next
	s.next = next
	next.prev = s
	next.next = old
	if old != nil {
		old.prev = next
	}
	s.invalidateFrom()
}

// insertBefore splices new before s, repairing both neighbours' pointers.
func (s *segment) insertBefore(prev *segment) {
	old := s.prev
	prev.next = s
	prev.prev = old
	s.prev = prev
	if old != nil {
		old.next = prev
	}
	if old != nil {
		old.invalidateFrom()
	} else {
		prev.invalidateFrom()
	}
}

// chain is the segment list for one open file, with a name-indexed lookup
// alongside the linked traversal order spec.md describes.
type chain struct {
	head *segment
	tail *segment
	byID map[SegmentID]*segment
}

func newChain() *chain {
	return &chain{byID: make(map[SegmentID]*segment)}
}

// append adds s to the end of the chain, preserving declared order.
func (c *chain) append(s *segment) {
	c.byID[s.id] = s
	if c.head == nil {
		c.head = s
		c.tail = s
		return
	}
	c.tail.insertAfter(s)
	c.tail = s
}

func (c *chain) get(id SegmentID) *segment {
	return c.byID[id]
}

// buildChain lays out the version-appropriate segment order over the
// window that follows the header, per the table in spec.md §6.
func buildChain(hdr Header) *chain {
	c := newChain()
	recordsLen := hdr.RecordCount() * hdr.RecordSize()
	c.append(newSegment(SegmentRecords, recordsLen, nil))
	c.append(newSegment(SegmentStringBlock, hdr.StringTableLength(), &stringPool{}))

	switch h := hdr.(type) {
	case *wdc1Header:
		c.append(newSegment(SegmentOffsetMap, offsetMapLength(hdr), &offsetMap{}))
		c.append(newSegment(SegmentIndexTable, indexTableLength(hdr), &indexTable{}))
		c.append(newSegment(SegmentCopyTable, hdr.CopyTableLength(), &copyTable{}))
		c.append(newSegment(SegmentFieldInfo, hdr.FieldCount()*4, &fieldInfoTable{}))
		c.append(newSegment(SegmentPalletData, h.palletDataSize, &paletteData{}))
		c.append(newSegment(SegmentCommonData, h.commonDataSize, &commonDataTable{}))
		c.append(newSegment(SegmentRelationshipData, h.relationshipDataSize, &relationshipTable{}))
		c.append(newSegment(SegmentExtendedFieldInfo, h.extendedFieldCount*extendedFieldInfoEntrySize, &extendedFieldInfoTable{}))

	case *baseHeader:
		if h.signature == SignatureWDB5 {
			c.append(newSegment(SegmentOffsetMap, offsetMapLength(hdr), &offsetMap{}))
			c.append(newSegment(SegmentIndexTable, indexTableLength(hdr), &indexTable{}))
			c.append(newSegment(SegmentCopyTable, hdr.CopyTableLength(), &copyTable{}))
			c.append(newSegment(SegmentFieldInfo, hdr.FieldCount()*4, &fieldInfoTable{}))
		}
	}

	return c
}

func offsetMapLength(hdr Header) uint32 {
	if !hdr.HasOffsetMap() {
		return 0
	}
	span := uint32(0)
	if hdr.MaxIndex() >= hdr.MinIndex() {
		span = hdr.MaxIndex() - hdr.MinIndex() + 1
	}
	return span * 6 // (uint32 offset, uint16 size) per id
}

func indexTableLength(hdr Header) uint32 {
	if !hdr.HasIndexTable() {
		return 0
	}
	return hdr.RecordCount() * 4
}
