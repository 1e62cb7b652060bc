// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dbcfile

import "reflect"

// keyMember locates T's `dbc:"index"` member, the same member decode
// populates from the IndexTable or the sequential/immediate id column
// (spec.md §4.6 step 1, §4.8). It errors unless that member is a 32-bit
// integer, since spec.md ties the key accessor to a fixed integer width.
func keyMember(t reflect.Type) ([]int, error) {
	members, err := buildSchema(t)
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		if !m.isIndex {
			continue
		}
		if m.cardinality != 1 || (m.kind != kindInt32 && m.kind != kindUint32) {
			return nil, ErrUnsupportedKeyType
		}
		return m.index, nil
	}
	return nil, ErrUnsupportedKeyType
}

// KeyOf returns the value of rec's `dbc:"index"` member.
func KeyOf[T any](rec T) (int64, error) {
	t := reflect.TypeOf(rec)
	path, err := keyMember(t)
	if err != nil {
		return 0, err
	}
	v := reflect.ValueOf(rec).FieldByIndex(path)
	if v.Kind() == reflect.Int32 {
		return v.Int(), nil
	}
	return int64(v.Uint()), nil
}

// SetKey overwrites rec's `dbc:"index"` member in place, the operation
// CopyTable duplication relies on to stamp a clone with its destination
// id (spec.md §3).
func SetKey[T any](rec *T, key int64) error {
	t := reflect.TypeOf(*rec)
	path, err := keyMember(t)
	if err != nil {
		return err
	}
	v := reflect.ValueOf(rec).Elem().FieldByIndex(path)
	if v.Kind() == reflect.Int32 {
		v.SetInt(key)
	} else {
		v.SetUint(uint64(key))
	}
	return nil
}
