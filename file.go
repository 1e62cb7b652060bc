// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dbcfile

import (
	"os"
	"reflect"

	mmap "github.com/edsrzf/mmap-go"

	"github.com/gowdbc/dbcfile/log"
)

// File is an open client-data table: its parsed header, its segment
// chain, and the merged per-column metadata the deserializer generator
// consumes. Every field below is populated once at open time and never
// mutated afterwards; the deserializer plan cache is not a field but the
// package-level planCache, a sync.Map.
type File struct {
	header Header
	chain  *chain

	stringPool   *stringPool
	offsetMap    *offsetMap
	indexTable   *indexTable
	copyTable    *copyTable
	fieldInfo    *fieldInfoTable
	extFieldInfo *extendedFieldInfoTable
	palette      *paletteData
	commonData   *commonDataTable
	relationship *relationshipTable

	// columns is nil for WDBC/WDB2 (no FieldInfo segment, sequential
	// byte-aligned decoding) and populated for WDB5/WDC1.
	columns []columnMeta

	// data is the segment-chain window: byte 0 is the first byte after
	// the header, matching every segment's startOffset().
	data []byte

	// idToRow maps an assigned record id back to its 0-based position in
	// the Records segment, built once when an IndexTable is present so
	// CopyTable entries can locate their source row.
	idToRow map[uint32]uint32

	// loadMask records which optional segments Options permitted parsing
	// for, consulted by hasSegment.
	loadMask SegmentMask

	// skipCopyRows mirrors Options.SkipCopyRows: when true, Records/Rows
	// iteration stops after the primary rows.
	skipCopyRows bool

	raw    mmap.MMap
	f      *os.File
	logger *log.Helper
}

// Open memory-maps the file at path and parses its header and segment
// chain.
func Open(path string, opts *Options) (*File, error) {
	osFile, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	data, err := mmap.Map(osFile, mmap.RDONLY, 0)
	if err != nil {
		osFile.Close()
		return nil, err
	}

	file, err := newFile(data, opts)
	if err != nil {
		data.Unmap()
		osFile.Close()
		return nil, err
	}
	file.raw = data
	file.f = osFile
	return file, nil
}

// OpenBytes parses a file already resident in memory. The caller retains
// ownership of data; File never mutates it.
func OpenBytes(data []byte, opts *Options) (*File, error) {
	return newFile(data, opts)
}

func newFile(data []byte, opts *Options) (*File, error) {
	sig, err := detectSignature(data)
	if err != nil {
		return nil, err
	}

	headerWindow := newWindow(data)
	if _, err := headerWindow.readUint32(); err != nil { // the magic itself
		return nil, ErrTruncated
	}
	hdr, err := readHeader(sig, headerWindow)
	if err != nil {
		return nil, err
	}

	body := data[headerWindow.position():]
	w := newWindow(body)
	ch := buildChain(hdr)
	mask := opts.segmentMask()

	for s := ch.head; s != nil; s = s.next {
		if s.handler == nil || !maskAllows(mask, s.id) {
			continue
		}
		if err := s.handler.parse(w, s.startOffset(), s.length); err != nil {
			return nil, err
		}
	}

	f := &File{
		header:       hdr,
		chain:        ch,
		data:         body,
		logger:       opts.logger(),
		loadMask:     mask,
		skipCopyRows: opts.skipCopyRows(),
	}

	f.stringPool = ch.get(SegmentStringBlock).handler.(*stringPool)

	if s := ch.get(SegmentOffsetMap); s != nil && maskAllows(mask, SegmentOffsetMap) {
		f.offsetMap = s.handler.(*offsetMap)
		f.offsetMap.minIndex = hdr.MinIndex()
	}
	if s := ch.get(SegmentIndexTable); s != nil && maskAllows(mask, SegmentIndexTable) {
		f.indexTable = s.handler.(*indexTable)
	}
	if s := ch.get(SegmentCopyTable); s != nil && maskAllows(mask, SegmentCopyTable) {
		f.copyTable = s.handler.(*copyTable)
	}
	if s := ch.get(SegmentFieldInfo); s != nil {
		f.fieldInfo = s.handler.(*fieldInfoTable)
	}
	if s := ch.get(SegmentPalletData); s != nil && maskAllows(mask, SegmentPalletData) {
		f.palette = s.handler.(*paletteData)
	}
	if s := ch.get(SegmentCommonData); s != nil && maskAllows(mask, SegmentCommonData) {
		f.commonData = s.handler.(*commonDataTable)
	}
	if s := ch.get(SegmentRelationshipData); s != nil && maskAllows(mask, SegmentRelationshipData) {
		f.relationship = s.handler.(*relationshipTable)
	}
	if s := ch.get(SegmentExtendedFieldInfo); s != nil {
		f.extFieldInfo = s.handler.(*extendedFieldInfoTable)
	}

	if f.fieldInfo != nil {
		f.columns = buildColumnMeta(f.fieldInfo, f.extFieldInfo)

		if f.commonData != nil {
			var commonCols []int
			for i, c := range f.columns {
				if c.compression == compressionCommonData {
					commonCols = append(commonCols, i)
				}
			}
			if len(commonCols) > 0 {
				if err := f.commonData.build(commonCols); err != nil {
					return nil, err
				}
			}
		}
	}

	if f.indexTable != nil {
		f.idToRow = make(map[uint32]uint32, len(f.indexTable.ids))
		for row, id := range f.indexTable.ids {
			f.idToRow[id] = uint32(row)
		}
	}

	f.logger.Debugf("opened %s file: %d records, %d fields", sig, hdr.RecordCount(), hdr.FieldCount())
	return f, nil
}

// buildColumnMeta merges FieldInfo's bit layout with ExtendedFieldInfo's
// compression/default/cardinality, or WDB5's implicit defaults
// (compression None, cardinality 1, bit layout from FieldInfo alone) when
// extended is nil. Palette/PaletteArray columns receive a
// cumulative paletteOrigin computed in declared column order, per
// spec.md §4.4.
func buildColumnMeta(fi *fieldInfoTable, extended *extendedFieldInfoTable) []columnMeta {
	cols := make([]columnMeta, len(fi.entries))
	var cellOffset uint32

	for i, e := range fi.entries {
		cm := columnMeta{
			bitOffset:   uint32(e.BitOffset),
			bitWidth:    e.bitWidth(),
			compression: compressionNone,
			cardinality: 1,
		}

		if extended != nil && i < len(extended.entries) {
			ext := extended.entries[i]
			cm.compression = ext.Compression
			cm.signed = ext.Signed != 0
			cm.defaultValue = ext.Default
			cm.paletteCount = ext.PaletteSlotCount
			if ext.Cardinality > 0 {
				cm.cardinality = ext.Cardinality
			}

			slots := ext.PaletteSlotCount
			if slots == 0 {
				slots = 1
			}
			switch ext.Compression {
			case compressionPalette:
				cm.paletteOrigin = cellOffset
				cellOffset += slots
			case compressionPaletteArray:
				cm.paletteOrigin = cellOffset
				cellOffset += slots * cm.cardinality
			}
		}

		cols[i] = cm
	}
	return cols
}

// hasSegment reports whether id is present in the chain, occupies at
// least one byte, and was not excluded by Options.LoadMask.
func (f *File) hasSegment(id SegmentID) bool {
	s := f.chain.get(id)
	return s != nil && s.present() && maskAllows(f.loadMask, id)
}

// maskAllows reports whether mask permits parsing segment id. Segments
// outside SegmentMask's scope (Records, StringBlock, FieldInfo,
// ExtendedFieldInfo) are always allowed: they carry the structural
// metadata every decode needs, not optional bulk data.
func maskAllows(mask SegmentMask, id SegmentID) bool {
	switch id {
	case SegmentOffsetMap:
		return mask&LoadOffsetMap != 0
	case SegmentIndexTable:
		return mask&LoadIndexTable != 0
	case SegmentCopyTable:
		return mask&LoadCopyTable != 0
	case SegmentPalletData:
		return mask&LoadPalette != 0
	case SegmentCommonData:
		return mask&LoadCommonData != 0
	case SegmentRelationshipData:
		return mask&LoadRelationship != 0
	default:
		return true
	}
}

// Header returns the file's parsed header.
func (f *File) Header() Header { return f.header }

// RecordCount returns the number of primary rows (not counting CopyTable
// duplicates emitted during iteration).
func (f *File) RecordCount() uint32 { return f.header.RecordCount() }

// Close releases the memory mapping, if Open (rather than OpenBytes)
// created one.
func (f *File) Close() error {
	if f.raw != nil {
		_ = f.raw.Unmap()
	}
	if f.f != nil {
		return f.f.Close()
	}
	return nil
}

// recordBytes returns the assigned id of the row at the given 0-based
// position within the Records segment, and the bytes that hold it: the
// OffsetMap's own (file_offset, size) pair when the file carries one
// (spec.md §3/§4.4: a file with an OffsetMap is sparse in row-id space
// and is never packed contiguously by RecordSize), or the fixed
// RecordSize slot at row*RecordSize otherwise.
func (f *File) recordBytes(row uint32) ([]byte, uint32, error) {
	id := row
	if f.indexTable != nil && f.header.HasIndexTable() {
		id = f.indexTable.idForRow(row)
	}

	if f.offsetMap != nil && f.header.HasOffsetMap() {
		entry, ok := f.offsetMap.at(id)
		if !ok || entry.Size == 0 {
			return nil, 0, ErrTruncated
		}
		start := entry.Offset
		end := start + uint32(entry.Size)
		if end < start || end > uint32(len(f.data)) {
			return nil, 0, ErrTruncated
		}
		return f.data[start:end], id, nil
	}

	size := f.header.RecordSize()
	start := row * size
	end := start + size
	if end > uint32(len(f.data)) {
		return nil, 0, ErrTruncated
	}
	return f.data[start:end], id, nil
}

// rowForID resolves an assigned record id back to its position in the
// Records segment, for CopyTable source lookups.
func (f *File) rowForID(id uint32) (uint32, bool) {
	if f.indexTable != nil && f.header.HasIndexTable() {
		row, ok := f.idToRow[id]
		return row, ok
	}
	if id >= f.header.RecordCount() {
		return 0, false
	}
	return id, true
}

// Rows iterates the records of a File decoded as T, including the
// primary Records segment followed by any CopyTable duplicates (each
// emitted with its declared key column overwritten, per spec.md §3).
type Rows[T any] struct {
	f     *File
	plan  *compiledPlan
	idx   uint32
	total uint32
	cur   T
	err   error
}

// Records begins decoding f's rows as T. The deserializer plan for
// (f.Header().Signature(), T) is compiled once and cached (spec.md §4.6,
// §5); every later call with the same pair reuses it.
func Records[T any](f *File) (*Rows[T], error) {
	var zero T
	t := reflect.TypeOf(zero)
	plan, err := compileSchema(f, t)
	if err != nil {
		return nil, err
	}
	total := f.header.RecordCount()
	if f.copyTable != nil && !f.skipCopyRows {
		total += uint32(len(f.copyTable.entries))
	}
	return &Rows[T]{f: f, plan: plan, total: total}, nil
}

// Next decodes the next row into an internal buffer, returned by Record.
// It returns false once rows are exhausted or a decode error occurs; Err
// distinguishes the two.
func (r *Rows[T]) Next() bool {
	if r.err != nil || r.idx >= r.total {
		return false
	}

	var data []byte
	var id uint32
	var isCopy bool
	var dstID uint32

	if r.idx < r.f.header.RecordCount() {
		d, rid, err := r.f.recordBytes(r.idx)
		if err != nil {
			r.err = err
			return false
		}
		data, id = d, rid
	} else {
		entry := r.f.copyTable.entries[r.idx-r.f.header.RecordCount()]
		srcRow, ok := r.f.rowForID(entry.SrcID)
		if !ok {
			r.err = ErrTruncated
			return false
		}
		// The copy's CommonData/Palette/Relationship/plain-column values
		// are resolved against the source row, exactly as if the source
		// record were decoded directly (spec.md §8 invariant 5: a copy
		// equals its source except the key field). Only the decoded key
		// gets overwritten to entry.DstID below, after the plan runs.
		d, srcID, err := r.f.recordBytes(srcRow)
		if err != nil {
			r.err = err
			return false
		}
		data, id, isCopy, dstID = d, srcID, true, entry.DstID
	}

	rr := newRecordReader(r.f, id, data)
	var rec T
	v := reflect.ValueOf(&rec).Elem()
	if err := r.plan.run(rr, v); err != nil {
		r.err = err
		return false
	}
	if isCopy {
		// The plan ran against the source row, so the key member holds
		// the source's id (from opIndexID or from its declared column);
		// the clone gets entry.DstID stamped here (spec.md §4.7). A
		// schema without a `dbc:"index"` member has nothing to stamp.
		_ = SetKey(&rec, int64(dstID))
	}
	r.cur = rec
	r.idx++
	return true
}

// Record returns the row most recently decoded by Next.
func (r *Rows[T]) Record() T { return r.cur }

// Err returns the error that stopped iteration, if any.
func (r *Rows[T]) Err() error { return r.err }
