// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dbcfile

import "github.com/gowdbc/dbcfile/log"

// SegmentMask selects which of a file's optional, data-bearing segments
// Open/OpenBytes actually parses. The zero value parses every segment
// present in the file; a caller who only needs the primary rows of a
// WDC1 file can set a mask that skips PalletData/CommonData/
// RelationshipData parsing, at the cost of ErrMissingSegment if the
// caller's schema later tries to read a column backed by a skipped
// segment.
type SegmentMask uint32

const (
	LoadOffsetMap SegmentMask = 1 << iota
	LoadIndexTable
	LoadCopyTable
	LoadPalette
	LoadCommonData
	LoadRelationship

	loadMaskAll = LoadOffsetMap | LoadIndexTable | LoadCopyTable | LoadPalette | LoadCommonData | LoadRelationship
)

// Options configures how Open/OpenBytes builds a File.
type Options struct {
	// Logger receives diagnostic messages while opening and decoding. A
	// nil Logger falls back to log.DefaultLogger(), an error-level
	// stdout logger.
	Logger log.Logger

	// SkipCopyRows excludes CopyTable duplicates from Records/Rows
	// iteration, leaving only the file's primary rows. The zero value
	// (false) includes them, matching the format's own default.
	SkipCopyRows bool

	// LoadMask restricts which optional segments are parsed. The zero
	// value parses every segment the file carries.
	LoadMask SegmentMask
}

func (o *Options) logger() *log.Helper {
	if o == nil || o.Logger == nil {
		return log.DefaultLogger()
	}
	return log.NewHelper(o.Logger)
}

func (o *Options) segmentMask() SegmentMask {
	if o == nil || o.LoadMask == 0 {
		return loadMaskAll
	}
	return o.LoadMask
}

func (o *Options) skipCopyRows() bool {
	return o != nil && o.SkipCopyRows
}
