// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dbcfile

import (
	"fmt"
	"math"
	"reflect"
	"sync"

	"github.com/zeebo/xxh3"
)

// opKind is the opcode of one step in a compiled deserializer plan. The
// plan is the "interpreted plan" form spec.md §9 recommends over emitting
// and compiling code per schema: a flat slice of ops, walked once per
// record, each a tight switch over a small opcode set.
type opKind int

const (
	opIndexID opKind = iota
	opSeqNum
	opSeqStr
	opImmediateNum
	opImmediateStr
	opCommon
	opPalette
	opPaletteArray
	opRelationship
)

// readOp is one compiled step: where to write (path/slot) and how to
// produce the value (kind, plus the column metadata that read needs).
type readOp struct {
	kind   opKind
	path   []int
	slot   int // -1 for a scalar destination or a whole-array op
	target kind
	meta   columnMeta
	column int
}

// compiledPlan is cached per (file signature, schema type) pair and
// reused across every record of every file sharing that pair (spec.md
// §4.6, §5).
type compiledPlan struct {
	ops []readOp
}

var planCache sync.Map // map[uint64]*compiledPlan

func planCacheKey(sig Signature, t reflect.Type) uint64 {
	name := sig.String() + "|" + t.PkgPath() + "." + t.Name()
	return xxh3.HashString(name)
}

// compileSchema builds (or fetches from cache) the plan that decodes T
// against f. buildPlan also reads f's column metadata, segment presence
// and index-table flag, but the cache key holds only
// (f.header.Signature(), T): the first plan stored for a pair is reused
// for every later file with that pair. LoadOrStore keeps the first plan
// stored when two goroutines race on insertion.
func compileSchema(f *File, t reflect.Type) (*compiledPlan, error) {
	key := planCacheKey(f.header.Signature(), t)
	if cached, ok := planCache.Load(key); ok {
		return cached.(*compiledPlan), nil
	}

	plan, err := buildPlan(f, t)
	if err != nil {
		return nil, err
	}
	actual, _ := planCache.LoadOrStore(key, plan)
	return actual.(*compiledPlan), nil
}

func buildPlan(f *File, t reflect.Type) (*compiledPlan, error) {
	members, err := buildSchema(t)
	if err != nil {
		return nil, err
	}

	hdr := f.header
	sequential := f.columns == nil
	columns := f.columns

	var ops []readOp
	columnIndex := 0

	for mi, m := range members {
		if m.ignore {
			continue
		}

		if m.isIndex && hdr.HasIndexTable() {
			if m.cardinality != 1 || !numericKind(m.kind) {
				return nil, ErrTypeMismatch
			}
			ops = append(ops, readOp{kind: opIndexID, path: m.index, slot: -1, target: m.kind})
			continue
		}

		if sequential {
			for slot := 0; slot < m.cardinality; slot++ {
				s := slotFor(m, slot)
				if m.kind == kindString {
					ops = append(ops, readOp{kind: opSeqStr, path: m.index, slot: s, target: m.kind})
				} else {
					ops = append(ops, readOp{kind: opSeqNum, path: m.index, slot: s, target: m.kind})
				}
			}
			continue
		}

		if m.cardinality > 1 {
			if columnIndex >= len(columns) {
				return nil, ErrSchemaArityMismatch
			}
			first := columns[columnIndex]
			switch first.compression {
			case compressionNone, compressionImmediate:
				for slot := 0; slot < m.cardinality; slot++ {
					if columnIndex >= len(columns) {
						return nil, ErrSchemaArityMismatch
					}
					cm := columns[columnIndex]
					if cm.compression != compressionNone && cm.compression != compressionImmediate {
						return nil, ErrUnsupportedLayout
					}
					if err := checkWidth(m.kind, cm.bitWidth); err != nil {
						return nil, err
					}
					ops = append(ops, readOp{kind: opImmediateNum, path: m.index, slot: slot, target: m.kind, meta: cm, column: columnIndex})
					columnIndex++
				}
			case compressionPaletteArray:
				if !f.hasSegment(SegmentPalletData) {
					return nil, ErrMissingSegment
				}
				if first.cardinality != uint32(m.cardinality) {
					return nil, ErrTypeMismatch
				}
				if err := checkWidth(m.kind, 32); err != nil {
					return nil, err
				}
				ops = append(ops, readOp{kind: opPaletteArray, path: m.index, slot: -1, target: m.kind, meta: first, column: columnIndex})
				columnIndex++
			default:
				return nil, ErrUnsupportedLayout
			}
			continue
		}

		// Scalar member.
		if columnIndex >= len(columns) {
			remaining := remainingScalars(members, mi, hdr.HasIndexTable())
			if remaining == 1 && f.hasSegment(SegmentRelationshipData) {
				ops = append(ops, readOp{kind: opRelationship, path: m.index, slot: -1, target: m.kind})
				continue
			}
			return nil, ErrSchemaArityMismatch
		}

		meta := columns[columnIndex]
		switch meta.compression {
		case compressionNone, compressionImmediate:
			if m.kind == kindString {
				if meta.bitWidth != 32 {
					return nil, ErrTypeMismatch
				}
				ops = append(ops, readOp{kind: opImmediateStr, path: m.index, slot: -1, target: m.kind, meta: meta, column: columnIndex})
			} else {
				if err := checkWidth(m.kind, meta.bitWidth); err != nil {
					return nil, err
				}
				ops = append(ops, readOp{kind: opImmediateNum, path: m.index, slot: -1, target: m.kind, meta: meta, column: columnIndex})
			}
		case compressionCommonData:
			if !f.hasSegment(SegmentCommonData) {
				return nil, ErrMissingSegment
			}
			if m.kind == kindString {
				return nil, ErrTypeMismatch
			}
			ops = append(ops, readOp{kind: opCommon, path: m.index, slot: -1, target: m.kind, meta: meta, column: columnIndex})
		case compressionPalette:
			if !f.hasSegment(SegmentPalletData) {
				return nil, ErrMissingSegment
			}
			if m.kind == kindString {
				return nil, ErrTypeMismatch
			}
			ops = append(ops, readOp{kind: opPalette, path: m.index, slot: -1, target: m.kind, meta: meta, column: columnIndex})
		case compressionPaletteArray:
			return nil, ErrTypeMismatch
		case compressionRelationshipData:
			if !f.hasSegment(SegmentRelationshipData) {
				return nil, ErrMissingSegment
			}
			ops = append(ops, readOp{kind: opRelationship, path: m.index, slot: -1, target: m.kind, column: columnIndex})
		default:
			return nil, ErrUnsupportedLayout
		}
		columnIndex++
	}

	return &compiledPlan{ops: ops}, nil
}

func numericKind(k kind) bool {
	return k != kindString
}

func slotFor(m member, slot int) int {
	if m.cardinality == 1 {
		return -1
	}
	return slot
}

// remainingScalars counts the scalar read-slots from members[from:] that
// still need a file column (ignored and index-table members consume
// none).
func remainingScalars(members []member, from int, hasIndexTable bool) int {
	n := 0
	for _, m := range members[from:] {
		if m.ignore || (m.isIndex && hasIndexTable) {
			continue
		}
		n += m.cardinality
	}
	return n
}

func bitsForKind(k kind) uint32 {
	switch k {
	case kindInt8, kindUint8:
		return 8
	case kindInt16, kindUint16:
		return 16
	case kindInt32, kindUint32, kindFloat32:
		return 32
	case kindInt64, kindUint64:
		return 64
	default:
		return 0
	}
}

func checkWidth(k kind, bitWidth uint32) error {
	if bitWidth > bitsForKind(k) {
		return ErrTypeMismatch
	}
	return nil
}

func fieldFor(dest reflect.Value, path []int, slot int) reflect.Value {
	v := dest.FieldByIndex(path)
	if slot >= 0 {
		v = v.Index(slot)
	}
	return v
}

func setNumeric(v reflect.Value, k kind, raw uint64) {
	switch k {
	case kindInt8:
		v.SetInt(int64(int8(raw)))
	case kindInt16:
		v.SetInt(int64(int16(raw)))
	case kindInt32:
		v.SetInt(int64(int32(raw)))
	case kindInt64:
		v.SetInt(int64(raw))
	case kindUint8:
		v.SetUint(raw & 0xFF)
	case kindUint16:
		v.SetUint(raw & 0xFFFF)
	case kindUint32:
		v.SetUint(raw & 0xFFFFFFFF)
	case kindUint64:
		v.SetUint(raw)
	case kindFloat32:
		v.SetFloat(float64(math.Float32frombits(uint32(raw))))
	}
}

// run walks the plan once, filling dest (an addressable struct value of
// the schema type) from rr.
func (p *compiledPlan) run(rr *recordReader, dest reflect.Value) error {
	for _, op := range p.ops {
		switch op.kind {
		case opIndexID:
			setNumeric(fieldFor(dest, op.path, op.slot), op.target, uint64(rr.row))

		case opSeqNum:
			fv := fieldFor(dest, op.path, op.slot)
			switch bitsForKind(op.target) {
			case 8:
				v, err := rr.readUint8()
				if err != nil {
					return err
				}
				setNumeric(fv, op.target, uint64(v))
			case 16:
				v, err := rr.readUint16()
				if err != nil {
					return err
				}
				setNumeric(fv, op.target, uint64(v))
			case 32:
				if op.target == kindFloat32 {
					v, err := rr.readFloat32()
					if err != nil {
						return err
					}
					fv.SetFloat(float64(v))
				} else {
					v, err := rr.readUint32()
					if err != nil {
						return err
					}
					setNumeric(fv, op.target, uint64(v))
				}
			case 64:
				v, err := rr.readUint64()
				if err != nil {
					return err
				}
				setNumeric(fv, op.target, v)
			}

		case opSeqStr:
			s, err := rr.readStringSequential()
			if err != nil {
				return err
			}
			fieldFor(dest, op.path, op.slot).SetString(s)

		case opImmediateNum:
			raw, err := rr.readImmediate(op.meta.bitOffset, op.meta.bitWidth)
			if err != nil {
				return err
			}
			setNumeric(fieldFor(dest, op.path, op.slot), op.target, raw)

		case opImmediateStr:
			s, err := rr.readStringImmediate(op.meta.bitOffset)
			if err != nil {
				return err
			}
			fieldFor(dest, op.path, op.slot).SetString(s)

		case opCommon:
			raw := rr.readCommon(op.column, op.meta)
			setNumeric(fieldFor(dest, op.path, op.slot), op.target, uint64(raw))

		case opPalette:
			raw, err := rr.readPalette(op.meta)
			if err != nil {
				return err
			}
			setNumeric(fieldFor(dest, op.path, op.slot), op.target, uint64(raw))

		case opPaletteArray:
			vals, err := rr.readPaletteArray(op.meta)
			if err != nil {
				return err
			}
			arr := dest.FieldByIndex(op.path)
			for i, v := range vals {
				setNumeric(arr.Index(i), op.target, uint64(v))
			}

		case opRelationship:
			setNumeric(fieldFor(dest, op.path, op.slot), op.target, uint64(rr.readForeignKey()))

		default:
			return fmt.Errorf("dbcfile: unreachable opcode %d", op.kind)
		}
	}
	return nil
}
