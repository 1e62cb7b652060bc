// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package dbcfile

import "testing"

func TestCloneIsIndependent(t *testing.T) {
	type row struct {
		ID    int32
		Name  string
		Flags [3]uint8
	}

	orig := row{ID: 1, Name: "foo", Flags: [3]uint8{1, 2, 3}}
	dup := Clone(orig)

	dup.ID = 99
	dup.Name = "bar"
	dup.Flags[0] = 255

	if orig.ID != 1 || orig.Name != "foo" || orig.Flags[0] != 1 {
		t.Fatalf("mutating the clone changed the original: %+v", orig)
	}
	if dup.ID != 99 || dup.Name != "bar" || dup.Flags[0] != 255 {
		t.Fatalf("clone did not retain its own mutations: %+v", dup)
	}
}
