// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dbcfile

import (
	"reflect"
	"testing"
)

func TestBuildPlanArityMismatchFails(t *testing.T) {
	type row struct {
		A int32
		B int32
	}
	f := &File{
		header:  &baseHeader{signature: SignatureWDB5, indexColumn: -1},
		chain:   newChain(),                   // no RelationshipData segment
		columns: []columnMeta{{bitWidth: 32}}, // only one file column, schema has two
	}
	if _, err := buildPlan(f, reflect.TypeOf(row{})); err != ErrSchemaArityMismatch {
		t.Fatalf("buildPlan = %v, want ErrSchemaArityMismatch", err)
	}
}

func TestBuildPlanSurplusMemberBecomesRelationshipWhenForeignIDsPresent(t *testing.T) {
	type row struct {
		A  int32
		FK int32
	}
	ch := newChain()
	ch.append(newSegment(SegmentRelationshipData, 8, &relationshipTable{}))
	f := &File{
		header:   &baseHeader{signature: SignatureWDC1, indexColumn: -1, hasForeignIDs: true},
		chain:    ch,
		loadMask: loadMaskAll,
		columns:  []columnMeta{{bitWidth: 32}},
	}
	plan, err := buildPlan(f, reflect.TypeOf(row{}))
	if err != nil {
		t.Fatalf("buildPlan: %v", err)
	}
	if len(plan.ops) != 2 {
		t.Fatalf("len(ops) = %d, want 2", len(plan.ops))
	}
	if plan.ops[1].kind != opRelationship {
		t.Fatalf("ops[1].kind = %v, want opRelationship", plan.ops[1].kind)
	}
}

func TestBuildPlanUnknownCompressionFails(t *testing.T) {
	type row struct {
		A int32
	}
	f := &File{
		header:  &baseHeader{signature: SignatureWDC1, indexColumn: -1},
		columns: []columnMeta{{bitWidth: 32, compression: compressionKind(99)}},
	}
	if _, err := buildPlan(f, reflect.TypeOf(row{})); err != ErrUnsupportedLayout {
		t.Fatalf("buildPlan = %v, want ErrUnsupportedLayout", err)
	}
}

func TestBuildPlanTypeMismatchOnNarrowSchemaMember(t *testing.T) {
	type row struct {
		A int8 // too narrow for a 32-bit column
	}
	f := &File{
		header:  &baseHeader{signature: SignatureWDC1, indexColumn: -1},
		columns: []columnMeta{{bitWidth: 32, compression: compressionImmediate}},
	}
	if _, err := buildPlan(f, reflect.TypeOf(row{})); err != ErrTypeMismatch {
		t.Fatalf("buildPlan = %v, want ErrTypeMismatch", err)
	}
}

func TestBuildPlanSequentialModeForWDBC(t *testing.T) {
	type row struct {
		A int32
		B string
	}
	f := &File{header: &baseHeader{signature: SignatureWDBC, indexColumn: -1}}
	plan, err := buildPlan(f, reflect.TypeOf(row{}))
	if err != nil {
		t.Fatalf("buildPlan: %v", err)
	}
	if len(plan.ops) != 2 || plan.ops[0].kind != opSeqNum || plan.ops[1].kind != opSeqStr {
		t.Fatalf("ops = %+v, want [opSeqNum, opSeqStr]", plan.ops)
	}
}

func TestPlanCacheKeyStableAcrossEquivalentTypes(t *testing.T) {
	type row struct{ A int32 }
	k1 := planCacheKey(SignatureWDBC, reflect.TypeOf(row{}))
	k2 := planCacheKey(SignatureWDBC, reflect.TypeOf(row{}))
	if k1 != k2 {
		t.Fatalf("planCacheKey not stable: %d != %d", k1, k2)
	}
}
