// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package dbcfile decodes WDBC, WDB2, WDB5 and WDC1 client-data table
// files into caller-supplied record types.
//
// Each file is a typed, row-oriented table: a fixed-layout header,
// followed by a chain of named segments (the record region, a string
// pool, and — in later versions — an index map, a copy table, palette
// data, sparse common-value data and foreign-key relationship data).
// The caller supplies a Go struct describing one row; Open parses the
// header and segments, and Records builds (or reuses) a small compiled
// decoder for that (file version, struct) pair and iterates it over
// every row.
//
// The package never writes files back and never mutates a row in
// place; once opened, a File is read by a single goroutine through
// its Records iterator.
package dbcfile
