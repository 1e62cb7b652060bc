// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dbcfile

import (
	"fmt"
	"reflect"
)

// kind classifies a schema member's element type.
type kind int

const (
	kindInt8 kind = iota
	kindInt16
	kindInt32
	kindInt64
	kindUint8
	kindUint16
	kindUint32
	kindUint64
	kindFloat32
	kindString
)

func kindOf(t reflect.Type) (kind, bool) {
	switch t.Kind() {
	case reflect.Int8:
		return kindInt8, true
	case reflect.Int16:
		return kindInt16, true
	case reflect.Int32:
		return kindInt32, true
	case reflect.Int64:
		return kindInt64, true
	case reflect.Uint8:
		return kindUint8, true
	case reflect.Uint16:
		return kindUint16, true
	case reflect.Uint32:
		return kindUint32, true
	case reflect.Uint64:
		return kindUint64, true
	case reflect.Float32:
		return kindFloat32, true
	case reflect.String:
		return kindString, true
	default:
		return 0, false
	}
}

// member describes one leaf field of the flattened record schema: its
// element kind, array cardinality (1 for scalars), whether it is the
// declared index column, and the reflect.StructField path used to reach
// it from the record's addressable root value.
type member struct {
	name        string
	kind        kind
	cardinality int
	index       []int // reflect.Value.FieldByIndex path
	isIndex     bool
	ignore      bool
}

// buildSchema flattens t's exported fields, in declared order, into a
// list of scalar/array leaf members. Nested struct members are recursed
// into and their members spliced inline (spec.md §4.6 step 4). A field
// tagged `dbc:"-"` is skipped entirely (step 5); a field tagged
// `dbc:"index"` is marked as the row-identifier member (step 1).
func buildSchema(t reflect.Type) ([]member, error) {
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("dbcfile: schema type must be a struct, got %s", t.Kind())
	}
	return flatten(t, nil)
}

func flatten(t reflect.Type, prefix []int) ([]member, error) {
	var members []member
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" { // unexported
			continue
		}
		path := append(append([]int{}, prefix...), i)

		tag := f.Tag.Get("dbc")
		if tag == "-" {
			members = append(members, member{name: f.Name, ignore: true, index: path})
			continue
		}

		ft := f.Type
		cardinality := 1
		elemType := ft
		if ft.Kind() == reflect.Array {
			cardinality = ft.Len()
			elemType = ft.Elem()
		}

		if elemType.Kind() == reflect.Struct {
			nested, err := flatten(elemType, path)
			if err != nil {
				return nil, err
			}
			members = append(members, nested...)
			continue
		}

		k, ok := kindOf(elemType)
		if !ok {
			return nil, fmt.Errorf("dbcfile: unsupported schema member %s of type %s", f.Name, ft)
		}

		members = append(members, member{
			name:        f.Name,
			kind:        k,
			cardinality: cardinality,
			index:       path,
			isIndex:     tag == "index",
		})
	}
	return members, nil
}
