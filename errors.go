// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dbcfile

import "errors"

// Errors returned while opening a file or building its header/segment chain.
var (
	// ErrUnsupportedSignature is returned when the 4-byte magic at offset 0
	// does not match one of WDBC, WDB2, WDB5 or WDC1.
	ErrUnsupportedSignature = errors.New("dbcfile: unsupported file signature")

	// ErrTruncated is returned when a read (header, segment or record)
	// would run past the end of the underlying stream.
	ErrTruncated = errors.New("dbcfile: unexpected end of stream")

	// ErrInvalidHeader is returned when a header's fields are internally
	// inconsistent (e.g. a negative-length segment implied by the header).
	ErrInvalidHeader = errors.New("dbcfile: invalid header")

	// ErrMissingSegment is returned at generation time when a column's
	// compression kind requires a segment the file does not carry.
	ErrMissingSegment = errors.New("dbcfile: required segment is absent")
)

// Errors returned while building a deserializer for a (file, schema) pair.
var (
	// ErrUnsupportedLayout is returned for a column compression kind the
	// decoder does not recognize.
	ErrUnsupportedLayout = errors.New("dbcfile: unsupported column layout")

	// ErrTypeMismatch is returned when a schema member's Go type cannot
	// hold the value a column produces.
	ErrTypeMismatch = errors.New("dbcfile: schema member type mismatch")

	// ErrSchemaArityMismatch is returned when the schema declares more
	// columns than the file has, and the surplus cannot be explained by
	// exactly one trailing relationship column.
	ErrSchemaArityMismatch = errors.New("dbcfile: schema/column count mismatch")

	// ErrUnsupportedKeyType is returned when the column designated as the
	// index is not a 32-bit signed or unsigned integer in the schema.
	ErrUnsupportedKeyType = errors.New("dbcfile: index column must be a 32-bit integer")
)
