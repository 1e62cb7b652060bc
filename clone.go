// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dbcfile

// Clone returns an independent copy of rec (spec.md §4.7). buildSchema's
// kindOf only ever admits primitives, fixed-size arrays of primitives,
// strings and nested structs of the same — never slices, maps or
// pointers — so ordinary Go value assignment already performs the deep
// copy spec.md asks for: arrays and structs copy element-by-element, and
// strings are immutable, so two records sharing one string's backing
// bytes are still independent from the caller's point of view.
func Clone[T any](rec T) T {
	return rec
}
