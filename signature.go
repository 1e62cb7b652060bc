// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dbcfile

// Signature identifies a client-data file's on-disk variant, read as the
// four magic bytes at offset 0 of the stream.
type Signature uint32

// Recognized file signatures, little-endian ASCII magic values.
const (
	// SignatureWDBC is the oldest variant: Records, StringBlock only.
	SignatureWDBC Signature = 0x43424457 // "WDBC"

	// SignatureWDB2 adds no new segments over WDBC but carries a wider
	// header (build/timestamp/min-max fields) used by some tables.
	SignatureWDB2 Signature = 0x32424457 // "WDB2"

	// SignatureWDB5 adds the optional OffsetMap, IndexTable and CopyTable
	// segments and per-column FieldInfo.
	SignatureWDB5 Signature = 0x35424457 // "WDB5"

	// SignatureWDC1 adds PalletData, CommonData, RelationshipData and
	// ExtendedFieldInfo on top of WDB5's segments.
	SignatureWDC1 Signature = 0x31434457 // "WDC1"
)

// String implements fmt.Stringer for Signature.
func (s Signature) String() string {
	return string([]byte{byte(s), byte(s >> 8), byte(s >> 16), byte(s >> 24)})
}

// detectSignature reads the 4-byte magic at the start of data without
// consuming it from the caller's perspective; it is used once, before any
// header is parsed, to choose which header decoder to run.
func detectSignature(data []byte) (Signature, error) {
	if len(data) < 4 {
		return 0, ErrTruncated
	}
	w := newWindow(data)
	raw, err := w.readUint32()
	if err != nil {
		return 0, err
	}
	sig := Signature(raw)
	switch sig {
	case SignatureWDBC, SignatureWDB2, SignatureWDB5, SignatureWDC1:
		return sig, nil
	default:
		return 0, ErrUnsupportedSignature
	}
}
